package validation

import (
	"math/big"
	"time"
)

// Config contains the configurable options of the validation engine.
type Config struct {
	MaxRetries          uint          // evaluation attempts per assignment, including the first
	RetryDelay          time.Duration // delay before a failed attempt is retried
	RevealLead          time.Duration // added to the commit deadline before revealing
	RevealFallbackDelay time.Duration // reveal delay used when the round gives no usable window
	NotificationTimeout time.Duration // bound for a single agent notification
	MinimumStake        *big.Int      // minimum validator stake; nil or zero disables the check
	HistorySize         uint          // number of completed assignments kept for listing
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:          3,
		RetryDelay:          30 * time.Second,
		RevealLead:          5 * time.Second,
		RevealFallbackDelay: 60 * time.Second,
		NotificationTimeout: 5 * time.Second,
		MinimumStake:        nil,
		HistorySize:         100,
	}
}
