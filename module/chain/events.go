package chain

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/module/component"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

const (
	DefaultPollInterval = 12 * time.Second
	DefaultBatchSize    = 1000
)

// LogSource is the subset of the chain connection used to watch events. It
// is satisfied by *ethclient.Client.
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

// Contracts holds the addresses of the contracts emitting lifecycle events.
// A zero address disables the events of that contract.
type Contracts struct {
	ValidationModule common.Address
	JobRegistry      common.Address
	DisputeModule    common.Address
}

type WatcherConfig struct {
	PollInterval time.Duration
	BatchSize    uint64
	// StartBlock is the first block to process. Zero starts at the latest block.
	StartBlock uint64
}

func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		PollInterval: DefaultPollInterval,
		BatchSize:    DefaultBatchSize,
	}
}

type eventSource struct {
	contract abi.ABI
	address  common.Address
	name     string
}

// EventWatcher polls the lifecycle contracts for new logs and forwards the
// decoded events to the consumer in block order.
type EventWatcher struct {
	*component.ComponentManager
	log      zerolog.Logger
	source   LogSource
	consumer module.ValidationEvents
	config   WatcherConfig
	events   map[common.Hash]eventSource
	query    ethereum.FilterQuery
	next     uint64
	now      func() time.Time
}

var _ component.Component = (*EventWatcher)(nil)

func NewEventWatcher(log zerolog.Logger, source LogSource, contracts Contracts, consumer module.ValidationEvents, config WatcherConfig) *EventWatcher {
	w := &EventWatcher{
		log:      log.With().Str("component", "event_watcher").Logger(),
		source:   source,
		consumer: consumer,
		config:   config,
		events:   make(map[common.Hash]eventSource),
		now:      time.Now,
	}

	register := func(contract abi.ABI, address common.Address, names ...string) {
		if address == (common.Address{}) {
			return
		}
		w.query.Addresses = append(w.query.Addresses, address)
		for _, name := range names {
			w.events[contract.Events[name].ID] = eventSource{contract: contract, address: address, name: name}
		}
	}
	register(ValidationModuleABI, contracts.ValidationModule, EventValidatorsSelected)
	register(JobRegistryABI, contracts.JobRegistry, EventResultSubmitted, EventJobCompleted)
	register(DisputeModuleABI, contracts.DisputeModule, EventDisputeRaised, EventDisputeResolved)

	topics := make([]common.Hash, 0, len(w.events))
	for id := range w.events {
		topics = append(topics, id)
	}
	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Hex() < topics[j].Hex()
	})
	w.query.Topics = [][]common.Hash{topics}

	w.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(w.watchLoop).
		Build()
	return w
}

func (w *EventWatcher) watchLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	w.next = w.config.StartBlock
	if w.next == 0 {
		latest, err := w.source.BlockNumber(ctx)
		if err != nil {
			ctx.Throw(fmt.Errorf("could not get latest block: %w", err))
			return
		}
		w.next = latest
	}
	w.log.Info().Uint64("start_block", w.next).Msg("watching validation events")
	ready()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.poll(ctx)
			if err != nil {
				w.log.Warn().Err(err).Uint64("next_block", w.next).Msg("could not process new blocks")
			}
		}
	}
}

// poll processes the next batch of blocks. The position only advances once
// every log of the batch has been dispatched.
func (w *EventWatcher) poll(ctx context.Context) error {
	latest, err := w.source.BlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("could not get latest block: %w", err)
	}
	if w.next > latest {
		return nil
	}

	from := w.next
	to := from + w.config.BatchSize - 1
	if to > latest {
		to = latest
	}

	query := w.query
	query.FromBlock = new(big.Int).SetUint64(from)
	query.ToBlock = new(big.Int).SetUint64(to)
	logs, err := w.source.FilterLogs(ctx, query)
	if err != nil {
		return fmt.Errorf("could not filter logs in blocks %d-%d: %w", from, to, err)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	for _, lg := range logs {
		err := w.dispatch(lg)
		if err != nil {
			w.log.Error().Err(err).
				Uint64("block", lg.BlockNumber).
				Str("tx", lg.TxHash.Hex()).
				Msg("could not decode event, skipping")
		}
	}

	w.log.Debug().Uint64("from", from).Uint64("to", to).Int("logs", len(logs)).Msg("processed blocks")
	w.next = to + 1
	return nil
}

func (w *EventWatcher) dispatch(lg types.Log) error {
	if lg.Removed || len(lg.Topics) == 0 {
		return nil
	}
	source, ok := w.events[lg.Topics[0]]
	if !ok || source.address != lg.Address {
		return nil
	}

	values, err := decodeLog(source.contract, source.name, lg)
	if err != nil {
		return fmt.Errorf("could not decode %s: %w", source.name, err)
	}
	jobID, err := jobIDValue(values)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", source.name, err)
	}
	log := w.log.With().Str("event", source.name).Str(logging.KeyJobID, jobID.String()).Logger()

	switch source.name {
	case EventValidatorsSelected:
		validators, ok := values["validators"].([]common.Address)
		if !ok {
			return fmt.Errorf("unexpected validators type %T", values["validators"])
		}
		log.Info().Strs("validators", logging.Addresses(validators)).Msg("validators selected")
		w.consumer.OnValidatorSelected(jobID, validators)

	case EventResultSubmitted:
		worker, ok1 := values["worker"].(common.Address)
		resultHash, ok2 := values["resultHash"].([32]byte)
		resultURI, ok3 := values["resultURI"].(string)
		subdomain, ok4 := values["subdomain"].(string)
		if !ok1 || !ok2 || !ok3 || !ok4 {
			return fmt.Errorf("unexpected ResultSubmitted fields")
		}
		log.Info().Str("worker", logging.Address(worker)).Str("result_uri", resultURI).Msg("result submitted")
		w.consumer.OnResultSubmitted(&validation.SubmissionInfo{
			JobID:      jobID,
			Worker:     worker,
			ResultHash: common.Hash(resultHash),
			ResultURI:  resultURI,
			Subdomain:  subdomain,
			ReceivedAt: w.now().UTC(),
		})

	case EventJobCompleted:
		log.Info().Msg("job completed")
		w.consumer.OnJobCompleted(jobID)

	case EventDisputeRaised:
		claimant, ok1 := values["claimant"].(common.Address)
		evidence, ok2 := values["evidenceHash"].([32]byte)
		if !ok1 || !ok2 {
			return fmt.Errorf("unexpected DisputeRaised fields")
		}
		log.Info().Str("claimant", logging.Address(claimant)).Msg("dispute raised")
		w.consumer.OnDisputeRaised(jobID, claimant, common.Hash(evidence))

	case EventDisputeResolved:
		resolver, ok1 := values["resolver"].(common.Address)
		employerWins, ok2 := values["employerWins"].(bool)
		if !ok1 || !ok2 {
			return fmt.Errorf("unexpected DisputeResolved fields")
		}
		log.Info().Str("resolver", logging.Address(resolver)).Bool("employer_wins", employerWins).Msg("dispute resolved")
		w.consumer.OnDisputeResolved(jobID, resolver, employerWins)
	}
	return nil
}

// decodeLog unpacks both the data and the indexed topics of a log.
func decodeLog(contract abi.ABI, name string, lg types.Log) (map[string]interface{}, error) {
	event := contract.Events[name]
	values := make(map[string]interface{}, len(event.Inputs))

	err := contract.UnpackIntoMap(values, name, lg.Data)
	if err != nil {
		return nil, fmt.Errorf("could not unpack data: %w", err)
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if len(lg.Topics)-1 != len(indexed) {
		return nil, fmt.Errorf("expected %d indexed topics, got %d", len(indexed), len(lg.Topics)-1)
	}
	err = abi.ParseTopicsIntoMap(values, indexed, lg.Topics[1:])
	if err != nil {
		return nil, fmt.Errorf("could not parse topics: %w", err)
	}
	return values, nil
}

func jobIDValue(values map[string]interface{}) (validation.JobID, error) {
	raw, ok := values["jobId"].(*big.Int)
	if !ok {
		return 0, fmt.Errorf("unexpected job id type %T", values["jobId"])
	}
	jobID, ok := validation.JobIDFromBig(raw)
	if !ok {
		return 0, fmt.Errorf("job id %s out of range", raw)
	}
	return jobID, nil
}
