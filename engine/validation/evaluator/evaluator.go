// Package evaluator decides the vote of a validator for a submitted result.
// Evaluation is pure: the same fetch result and submission always yield the
// same vote and reasons.
package evaluator

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	jsoniter "github.com/json-iterator/go"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// PreviewLength is the number of characters of the payload kept for operators.
const PreviewLength = 200

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Evaluate returns the evaluation of the fetched result against the submission.
// The vote approves only if no reason was found to reject. The payload summary
// (preview, payload type, metadata) never influences the vote.
func Evaluate(result validation.FetchResult, submission *validation.SubmissionInfo) *validation.Evaluation {
	evaluation := &validation.Evaluation{
		Reasons: []string{},
		Source:  result.Source,
	}
	if submission != nil {
		evaluation.Worker = submission.Worker
		evaluation.ResultURI = submission.ResultURI
	}

	if !result.Available() {
		evaluation.Reasons = append(evaluation.Reasons, validation.ReasonResultUnavailable)
		return evaluation
	}
	payload := *result.Payload
	evaluation.ResultAvailable = true

	digest := crypto.Keccak256Hash([]byte(payload))
	evaluation.ComputedHash = &digest
	evaluation.HashMatches = submission != nil && digest == submission.ResultHash
	if !evaluation.HashMatches {
		evaluation.Reasons = append(evaluation.Reasons, validation.ReasonHashMismatch)
	}

	evaluation.Preview = preview(payload)
	metadata := make(map[string]interface{})
	if result.ContentType != "" {
		metadata["contentType"] = result.ContentType
	}

	var parsed interface{}
	if err := json.UnmarshalFromString(payload, &parsed); err != nil {
		evaluation.PayloadType = validation.PayloadTypeText
	} else {
		switch value := parsed.(type) {
		case map[string]interface{}:
			evaluation.PayloadType = validation.PayloadTypeJSONObject
			metadata["keys"] = sortedKeys(value)
			if success, ok := value["success"].(bool); ok && !success {
				evaluation.Reasons = append(evaluation.Reasons, validation.ReasonPayloadSuccessFlagFalse)
			}
			if msg, ok := value["error"].(string); ok && strings.TrimSpace(msg) != "" {
				evaluation.Reasons = append(evaluation.Reasons, validation.ReasonPayloadErrorField)
			}
		case []interface{}:
			evaluation.PayloadType = validation.PayloadTypeJSONArray
			metadata["length"] = len(value)
		default:
			evaluation.PayloadType = validation.PayloadTypeJSONValue
		}
	}
	if len(metadata) > 0 {
		evaluation.Metadata = metadata
	}

	if len(evaluation.Reasons) == 0 {
		evaluation.Reasons = append(evaluation.Reasons, validation.ReasonIntegrityVerified)
		evaluation.Approve = true
	}
	return evaluation
}

func preview(payload string) string {
	runes := []rune(payload)
	if len(runes) <= PreviewLength {
		return payload
	}
	return string(runes[:PreviewLength])
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
