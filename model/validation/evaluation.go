package validation

import (
	"github.com/ethereum/go-ethereum/common"
)

// Reason codes attached to an evaluation, in the order they are produced.
const (
	ReasonResultUnavailable       = "result-unavailable"
	ReasonHashMismatch            = "hash-mismatch"
	ReasonPayloadSuccessFlagFalse = "payload-success-flag-false"
	ReasonPayloadErrorField       = "payload-error-field"
	ReasonIntegrityVerified       = "integrity-verified"
)

// Payload types reported for observability.
const (
	PayloadTypeJSONObject = "json-object"
	PayloadTypeJSONArray  = "json-array"
	PayloadTypeJSONValue  = "json-value"
	PayloadTypeText       = "text"
)

// Evaluation is the vote produced for one evaluation attempt together with
// the reasons that led to it. It is embedded into the commit record and never
// modified afterwards.
type Evaluation struct {
	Approve         bool                   `json:"approve"`
	Reasons         []string               `json:"reasons"`
	HashMatches     bool                   `json:"hashMatches"`
	ResultAvailable bool                   `json:"resultAvailable"`
	Worker          common.Address         `json:"worker"`
	ResultURI       string                 `json:"resultURI"`
	ComputedHash    *common.Hash           `json:"computedHash,omitempty"`
	Preview         string                 `json:"preview,omitempty"`
	PayloadType     string                 `json:"payloadType,omitempty"`
	Source          string                 `json:"source,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

// HasReason reports whether the evaluation carries the given reason code.
func (e *Evaluation) HasReason(reason string) bool {
	for _, r := range e.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}
