package validation

import (
	"time"

	"github.com/agentjobs/validation-gateway/model/validation"
)

// RevealDelay returns how long to wait from now before revealing. The target
// is the later of the commit deadline and now, plus lead, capped one second
// before a known reveal deadline and never before now. Zero means no usable
// window could be derived.
func RevealDelay(now time.Time, round *validation.RoundMetadata, lead time.Duration) time.Duration {
	if round == nil {
		return 0
	}

	target := now
	if commitDeadline := round.CommitDeadlineTime(); commitDeadline.After(now) {
		target = commitDeadline
	}
	target = target.Add(lead)

	if revealDeadline := round.RevealDeadlineTime(); !revealDeadline.IsZero() {
		latest := revealDeadline.Add(-time.Second)
		if target.After(latest) {
			target = latest
		}
	}

	if !target.After(now) {
		return 0
	}
	return target.Sub(now)
}
