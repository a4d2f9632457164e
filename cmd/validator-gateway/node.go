package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"time"

	badgerdb "github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/config"
	"github.com/agentjobs/validation-gateway/engine/access/rest"
	validationengine "github.com/agentjobs/validation-gateway/engine/validation"
	"github.com/agentjobs/validation-gateway/engine/validation/fetcher"
	"github.com/agentjobs/validation-gateway/engine/validation/notifier"
	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/module/audit"
	"github.com/agentjobs/validation-gateway/module/chain"
	"github.com/agentjobs/validation-gateway/module/component"
	"github.com/agentjobs/validation-gateway/module/identity"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
	"github.com/agentjobs/validation-gateway/module/metrics"
	"github.com/agentjobs/validation-gateway/module/trace"
	"github.com/agentjobs/validation-gateway/module/util"
	"github.com/agentjobs/validation-gateway/storage"
	badgerstorage "github.com/agentjobs/validation-gateway/storage/badger"
	"github.com/agentjobs/validation-gateway/storage/files"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func newLogger(level string) (zerolog.Logger, error) {
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger(), nil
}

// run wires all components of the gateway and blocks until the context is
// cancelled or a component fails.
func run(ctx context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", cfg.RPCURL, err)
	}
	defer client.Close()

	chainID := new(big.Int).SetUint64(cfg.ChainID)
	wallets := make([]module.ValidatorWallet, 0, len(cfg.Validators))
	identities := make([]validation.Identity, 0, len(cfg.Validators))
	webhooks := make(map[common.Address]string)
	for _, v := range cfg.Validators {
		wallet, err := chain.WalletFromHex(v.PrivateKey, chainID)
		if err != nil {
			return fmt.Errorf("validator %s: %w", v.Label, err)
		}
		wallets = append(wallets, wallet)
		identities = append(identities, validation.Identity{
			Address: wallet.Address(),
			Label:   v.Label,
			ENSName: v.ENSName,
		})
		if v.Webhook != "" {
			webhooks[wallet.Address()] = v.Webhook
		}
		log.Info().Str("label", v.Label).Str("validator", wallet.Address().Hex()).Msg("managing validator key")
	}

	records, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error().Err(err).Msg("could not close commit record store")
		}
	}()

	var auditor module.Auditor = audit.Nop{}
	if cfg.AuditLog != "" {
		fileAuditor, err := audit.NewFileLogger(cfg.AuditLog)
		if err != nil {
			return err
		}
		defer fileAuditor.Close()
		auditor = fileAuditor
	}

	provider, shutdownTracing := trace.NewTracerProvider(log, cfg.TraceSampleRatio)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not flush traces")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewValidationCollector(registry)

	contract := chain.NewValidationClient(log, client, common.HexToAddress(cfg.ValidationModule),
		chain.WithReadRetries(cfg.ReadRetries, cfg.ReadRetryDelay))

	httpClient := &http.Client{}
	sockets := notifier.NewRegistry(log, cfg.NotificationTimeout)
	dispatcher := notifier.NewDispatcher(log, sockets, webhooks, httpClient, cfg.NotificationTimeout)

	fetchConfig := fetcher.DefaultConfig()
	fetchConfig.CacheDir = cfg.ResultCacheDir
	fetchConfig.Timeout = cfg.FetchTimeout
	fetchConfig.MaxBytes = cfg.FetchMaxBytes
	fetchConfig.MemorySize = cfg.FetchMemorySize

	engineConfig := validationengine.DefaultConfig()
	engineConfig.MaxRetries = cfg.MaxRetries
	engineConfig.RetryDelay = cfg.RetryDelay
	engineConfig.RevealLead = cfg.RevealLead
	engineConfig.RevealFallbackDelay = cfg.RevealFallbackDelay
	engineConfig.NotificationTimeout = cfg.NotificationTimeout
	engineConfig.MinimumStake = cfg.MinimumStake
	engineConfig.HistorySize = cfg.HistorySize

	engine, err := validationengine.New(
		log,
		engineConfig,
		collector,
		contract,
		records,
		fetcher.New(log, fetchConfig, httpClient),
		dispatcher,
		chain.NewStakeChecker(client, common.HexToAddress(cfg.StakeManager)),
		identity.NewStaticVerifier(identities...),
		trace.NewTelemetry(log, provider),
		auditor,
		wallets,
	)
	if err != nil {
		return fmt.Errorf("could not create validation engine: %w", err)
	}

	watcher := chain.NewEventWatcher(log, client, chain.Contracts{
		ValidationModule: common.HexToAddress(cfg.ValidationModule),
		JobRegistry:      common.HexToAddress(cfg.JobRegistry),
		DisputeModule:    common.HexToAddress(cfg.DisputeModule),
	}, engine, chain.WatcherConfig{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
		StartBlock:   cfg.StartBlock,
	})

	components := []component.Component{
		engine,
		watcher,
		rest.NewEngine(log, cfg.HTTPAddress, engine, http.HandlerFunc(sockets.HandleSocket), registry, metrics.NewRestCollector(registry)),
	}
	if cfg.MetricsAddress != "" {
		components = append(components, metrics.NewServer(log, cfg.MetricsAddress, registry))
	}

	return runComponents(ctx, log, components...)
}

// openStore opens the configured commit record backend and returns a function
// releasing it.
func openStore(cfg *config.Config) (storage.CommitRecords, func() error, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendBadger:
		opts := badgerdb.DefaultOptions(cfg.StoreDir).WithKeepL0InMemory(true).WithLogger(nil)
		db, err := badgerdb.Open(opts)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open badger store at %s: %w", cfg.StoreDir, err)
		}
		return badgerstorage.NewCommitRecords(db), db.Close, nil
	default:
		records, err := files.NewCommitRecords(cfg.StoreDir)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open file store at %s: %w", cfg.StoreDir, err)
		}
		return records, func() error { return nil }, nil
	}
}

// runComponents starts the components, waits until all are ready and blocks
// until the context is cancelled or one of them throws an irrecoverable error.
// It returns once all components are done.
func runComponents(ctx context.Context, log zerolog.Logger, components ...component.Component) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(ctx)

	readyAware := make([]module.ReadyDoneAware, 0, len(components))
	for _, c := range components {
		c.Start(signalerCtx)
		readyAware = append(readyAware, c)
	}

	select {
	case <-util.AllReady(readyAware...):
		log.Info().Msg("validation gateway started")
	case err := <-errChan:
		cancel()
		waitDone(log, readyAware)
		return fmt.Errorf("startup failed: %w", err)
	case <-time.After(startupTimeout):
		cancel()
		waitDone(log, readyAware)
		return errors.New("startup timed out")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down validation gateway")
	case runErr = <-errChan:
		log.Error().Err(runErr).Msg("irrecoverable component error")
	}
	cancel()
	waitDone(log, readyAware)
	return runErr
}

func waitDone(log zerolog.Logger, components []module.ReadyDoneAware) {
	select {
	case <-util.AllDone(components...):
	case <-time.After(shutdownTimeout):
		log.Warn().Msg("components did not shut down in time")
	}
}
