package config

import (
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables overriding flags, e.g.
// VGW_RPC_URL for --rpc-url.
const EnvPrefix = "VGW"

// All constant strings are used for CLI flag names and corresponding keys for config values.
const (
	flagConfig              = "config"
	flagLogLevel            = "loglevel"
	flagRPCURL              = "rpc-url"
	flagChainID             = "chain-id"
	flagValidationModule    = "validation-module"
	flagJobRegistry         = "job-registry"
	flagDisputeModule       = "dispute-module"
	flagStakeManager        = "stake-manager"
	flagReadRetries         = "read-retries"
	flagReadRetryDelay      = "read-retry-delay"
	flagPollInterval        = "poll-interval"
	flagBatchSize           = "batch-size"
	flagStartBlock          = "start-block"
	flagValidators          = "validators"
	flagStoreBackend        = "store-backend"
	flagStoreDir            = "store-dir"
	flagResultCacheDir      = "result-cache-dir"
	flagFetchTimeout        = "fetch-timeout"
	flagFetchMaxBytes       = "fetch-max-bytes"
	flagFetchMemorySize     = "fetch-memory-size"
	flagMaxRetries          = "max-retries"
	flagRetryDelay          = "retry-delay"
	flagRevealLead          = "reveal-lead"
	flagRevealFallbackDelay = "reveal-fallback-delay"
	flagNotificationTimeout = "notification-timeout"
	flagMinimumStake        = "minimum-stake"
	flagHistorySize         = "history-size"
	flagHTTPAddress         = "http-address"
	flagMetricsAddress      = "metrics-address"
	flagAuditLog            = "audit-log"
	flagTraceSampleRatio    = "trace-sample-ratio"
)

// InitializeFlags registers all gateway flags on the provided pflag set, using
// the given config for default values.
func InitializeFlags(flags *pflag.FlagSet, config *Config) {
	flags.String(flagConfig, config.ConfigFile, "path to an optional YAML config file")
	flags.String(flagLogLevel, config.LogLevel, "level for logging output")

	flags.String(flagRPCURL, config.RPCURL, "JSON-RPC endpoint of the chain")
	flags.Uint64(flagChainID, config.ChainID, "chain id used to sign transactions")
	flags.String(flagValidationModule, config.ValidationModule, "address of the validation module contract")
	flags.String(flagJobRegistry, config.JobRegistry, "address of the job registry contract, empty disables its events")
	flags.String(flagDisputeModule, config.DisputeModule, "address of the dispute module contract, empty disables its events")
	flags.String(flagStakeManager, config.StakeManager, "address of the stake manager contract, empty disables the stake check")
	flags.Uint64(flagReadRetries, config.ReadRetries, "number of retries of failed contract reads")
	flags.Duration(flagReadRetryDelay, config.ReadRetryDelay, "delay between retries of failed contract reads")
	flags.Duration(flagPollInterval, config.PollInterval, "interval between event log polls")
	flags.Uint64(flagBatchSize, config.BatchSize, "maximum number of blocks queried per event log poll")
	flags.Uint64(flagStartBlock, config.StartBlock, "first block to watch for events, 0 starts at the latest block")

	flags.StringArray(flagValidators, nil, "managed validator as label=<label>;key=<hex>[;ens=<name>][;webhook=<url>], may be repeated")

	flags.String(flagStoreBackend, config.StoreBackend, "commit record storage backend (files or badger)")
	flags.String(flagStoreDir, config.StoreDir, "directory of the commit record storage")

	flags.String(flagResultCacheDir, config.ResultCacheDir, "directory of pre-fetched results, empty disables the cache")
	flags.Duration(flagFetchTimeout, config.FetchTimeout, "timeout of a single result fetch")
	flags.Int64(flagFetchMaxBytes, config.FetchMaxBytes, "largest accepted result payload in bytes")
	flags.Int(flagFetchMemorySize, config.FetchMemorySize, "number of downloaded results kept in memory, 0 disables")

	flags.Uint(flagMaxRetries, config.MaxRetries, "evaluation attempts per assignment")
	flags.Duration(flagRetryDelay, config.RetryDelay, "delay before a failed evaluation is retried")
	flags.Duration(flagRevealLead, config.RevealLead, "time after the commit deadline at which the vote is revealed")
	flags.Duration(flagRevealFallbackDelay, config.RevealFallbackDelay, "reveal delay used when the round gives no usable reveal window")
	flags.Duration(flagNotificationTimeout, config.NotificationTimeout, "timeout of a single agent notification")
	flags.String(flagMinimumStake, bigString(config.MinimumStake), "minimum validator stake in wei, empty or 0 disables the check")
	flags.Uint(flagHistorySize, config.HistorySize, "number of completed assignments kept for listing")

	flags.String(flagHTTPAddress, config.HTTPAddress, "listen address of the HTTP API")
	flags.String(flagMetricsAddress, config.MetricsAddress, "listen address of a dedicated metrics server, empty serves metrics on the HTTP API only")
	flags.String(flagAuditLog, config.AuditLog, "path of the audit log, empty disables auditing")
	flags.Float64(flagTraceSampleRatio, config.TraceSampleRatio, "ratio of evaluation traces sampled, 0 disables tracing")
}

// Load reads the configuration from the flags, the environment and the config
// file named by the config flag, then validates it. Flags set on the command
// line take precedence over environment variables, which take precedence over
// the config file.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	err := v.BindPFlags(flags)
	if err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		err = v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("could not read config file %s: %w", path, err)
		}
	}

	config := DefaultConfig()
	err = v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		StringToBigIntHookFunc(),
		StringToValidatorHookFunc(),
	)))
	if err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// StringToBigIntHookFunc decodes decimal or 0x-prefixed hex strings into *big.Int.
func StringToBigIntHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(&big.Int{}) {
			return data, nil
		}
		switch value := data.(type) {
		case string:
			value = strings.TrimSpace(value)
			if value == "" {
				return (*big.Int)(nil), nil
			}
			n, ok := new(big.Int).SetString(value, 0)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", value)
			}
			return n, nil
		case int:
			return big.NewInt(int64(value)), nil
		case int64:
			return big.NewInt(value), nil
		case uint64:
			return new(big.Int).SetUint64(value), nil
		default:
			return data, nil
		}
	}
}

// StringToValidatorHookFunc decodes the command line form of a validator.
func StringToValidatorHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t != reflect.TypeOf(ValidatorConfig{}) {
			return data, nil
		}
		return ParseValidator(data.(string))
	}
}

func bigString(n *big.Int) string {
	if n == nil {
		return ""
	}
	return n.String()
}
