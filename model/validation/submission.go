package validation

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SubmissionInfo describes a worker's result as announced on-chain. It is
// immutable once created and only held while the job awaits validation.
type SubmissionInfo struct {
	JobID      JobID          `json:"jobId"`
	Worker     common.Address `json:"worker"`
	ResultHash common.Hash    `json:"resultHash"`
	ResultURI  string         `json:"resultURI"`
	Subdomain  string         `json:"subdomain,omitempty"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// FetchResult is the outcome of resolving a submission's result reference.
// A nil Payload means the result could not be obtained.
type FetchResult struct {
	Payload     *string `json:"-"`
	Source      string  `json:"source,omitempty"`
	ContentType string  `json:"contentType,omitempty"`
}

// Available reports whether a payload was obtained.
func (r FetchResult) Available() bool {
	return r.Payload != nil
}
