// Package config defines the configuration of the validation gateway and
// loads it from command line flags, VGW_* environment variables and an
// optional YAML file.
package config

import (
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/hashicorp/go-multierror"
)

const (
	StoreBackendFiles  = "files"
	StoreBackendBadger = "badger"
)

// ValidatorConfig describes one validator key managed by the gateway.
type ValidatorConfig struct {
	Label      string `mapstructure:"label"`
	PrivateKey string `mapstructure:"key"`
	ENSName    string `mapstructure:"ens"`
	Webhook    string `mapstructure:"webhook"`
}

// Config is the complete configuration of the gateway process.
type Config struct {
	ConfigFile string `mapstructure:"config"`
	LogLevel   string `mapstructure:"loglevel"`

	// chain access
	RPCURL           string        `mapstructure:"rpc-url"`
	ChainID          uint64        `mapstructure:"chain-id"`
	ValidationModule string        `mapstructure:"validation-module"`
	JobRegistry      string        `mapstructure:"job-registry"`
	DisputeModule    string        `mapstructure:"dispute-module"`
	StakeManager     string        `mapstructure:"stake-manager"`
	ReadRetries      uint64        `mapstructure:"read-retries"`
	ReadRetryDelay   time.Duration `mapstructure:"read-retry-delay"`
	PollInterval     time.Duration `mapstructure:"poll-interval"`
	BatchSize        uint64        `mapstructure:"batch-size"`
	StartBlock       uint64        `mapstructure:"start-block"`

	Validators []ValidatorConfig `mapstructure:"validators"`

	// storage
	StoreBackend string `mapstructure:"store-backend"`
	StoreDir     string `mapstructure:"store-dir"`

	// evaluation
	ResultCacheDir  string        `mapstructure:"result-cache-dir"`
	FetchTimeout    time.Duration `mapstructure:"fetch-timeout"`
	FetchMaxBytes   int64         `mapstructure:"fetch-max-bytes"`
	FetchMemorySize int           `mapstructure:"fetch-memory-size"`

	// coordinator
	MaxRetries          uint          `mapstructure:"max-retries"`
	RetryDelay          time.Duration `mapstructure:"retry-delay"`
	RevealLead          time.Duration `mapstructure:"reveal-lead"`
	RevealFallbackDelay time.Duration `mapstructure:"reveal-fallback-delay"`
	NotificationTimeout time.Duration `mapstructure:"notification-timeout"`
	MinimumStake        *big.Int      `mapstructure:"minimum-stake"`
	HistorySize         uint          `mapstructure:"history-size"`

	// operations
	HTTPAddress      string  `mapstructure:"http-address"`
	MetricsAddress   string  `mapstructure:"metrics-address"`
	AuditLog         string  `mapstructure:"audit-log"`
	TraceSampleRatio float64 `mapstructure:"trace-sample-ratio"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		LogLevel:            "info",
		ChainID:             1,
		ReadRetries:         3,
		ReadRetryDelay:      500 * time.Millisecond,
		PollInterval:        12 * time.Second,
		BatchSize:           1000,
		StoreBackend:        StoreBackendFiles,
		StoreDir:            "data/validation",
		FetchTimeout:        10 * time.Second,
		FetchMaxBytes:       10 << 20,
		FetchMemorySize:     128,
		MaxRetries:          3,
		RetryDelay:          30 * time.Second,
		RevealLead:          5 * time.Second,
		RevealFallbackDelay: 60 * time.Second,
		NotificationTimeout: 5 * time.Second,
		HistorySize:         100,
		HTTPAddress:         ":8080",
	}
}

// Validate checks the configuration and returns all problems found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.RPCURL == "" {
		result = multierror.Append(result, fmt.Errorf("rpc-url is required"))
	} else if _, err := url.Parse(c.RPCURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid rpc-url: %w", err))
	}
	if c.ChainID == 0 {
		result = multierror.Append(result, fmt.Errorf("chain-id must be positive"))
	}

	if !common.IsHexAddress(c.ValidationModule) {
		result = multierror.Append(result, fmt.Errorf("validation-module is not a valid address: %q", c.ValidationModule))
	}
	for name, address := range map[string]string{
		"job-registry":   c.JobRegistry,
		"dispute-module": c.DisputeModule,
		"stake-manager":  c.StakeManager,
	} {
		if address != "" && !common.IsHexAddress(address) {
			result = multierror.Append(result, fmt.Errorf("%s is not a valid address: %q", name, address))
		}
	}
	if c.MinimumStake != nil && c.MinimumStake.Sign() > 0 && c.StakeManager == "" {
		result = multierror.Append(result, fmt.Errorf("minimum-stake requires stake-manager"))
	}

	if len(c.Validators) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one validator is required"))
	}
	labels := make(map[string]struct{}, len(c.Validators))
	for i, v := range c.Validators {
		if v.Label == "" {
			result = multierror.Append(result, fmt.Errorf("validator %d: label is required", i))
		} else if _, dup := labels[v.Label]; dup {
			result = multierror.Append(result, fmt.Errorf("validator %d: duplicate label %q", i, v.Label))
		}
		labels[v.Label] = struct{}{}
		if _, err := crypto.HexToECDSA(strings.TrimPrefix(v.PrivateKey, "0x")); err != nil {
			result = multierror.Append(result, fmt.Errorf("validator %d: invalid private key: %w", i, err))
		}
		if v.Webhook != "" {
			if u, err := url.Parse(v.Webhook); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				result = multierror.Append(result, fmt.Errorf("validator %d: webhook must be an http(s) url", i))
			}
		}
	}

	if c.StoreBackend != StoreBackendFiles && c.StoreBackend != StoreBackendBadger {
		result = multierror.Append(result, fmt.Errorf("store-backend must be %q or %q", StoreBackendFiles, StoreBackendBadger))
	}
	if c.StoreDir == "" {
		result = multierror.Append(result, fmt.Errorf("store-dir is required"))
	}

	if c.MaxRetries == 0 {
		result = multierror.Append(result, fmt.Errorf("max-retries must be at least 1"))
	}
	if c.ReadRetryDelay <= 0 {
		result = multierror.Append(result, fmt.Errorf("read-retry-delay must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"retry-delay":           c.RetryDelay,
		"reveal-fallback-delay": c.RevealFallbackDelay,
		"notification-timeout":  c.NotificationTimeout,
		"fetch-timeout":         c.FetchTimeout,
		"poll-interval":         c.PollInterval,
	} {
		if d <= 0 {
			result = multierror.Append(result, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.FetchMemorySize < 0 {
		result = multierror.Append(result, fmt.Errorf("fetch-memory-size must not be negative"))
	}
	if c.RevealLead < 0 {
		result = multierror.Append(result, fmt.Errorf("reveal-lead must not be negative"))
	}
	if c.BatchSize == 0 {
		result = multierror.Append(result, fmt.Errorf("batch-size must be positive"))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		result = multierror.Append(result, fmt.Errorf("trace-sample-ratio must be within [0, 1]"))
	}

	return result.ErrorOrNil()
}

// ParseValidator parses the command line form of a validator,
// "label=<label>;key=<hex>[;ens=<name>][;webhook=<url>]".
func ParseValidator(s string) (ValidatorConfig, error) {
	var v ValidatorConfig
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return ValidatorConfig{}, fmt.Errorf("invalid validator field %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "label":
			v.Label = value
		case "key":
			v.PrivateKey = value
		case "ens":
			v.ENSName = value
		case "webhook":
			v.Webhook = value
		default:
			return ValidatorConfig{}, fmt.Errorf("unknown validator field %q", key)
		}
	}
	return v, nil
}
