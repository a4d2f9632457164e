package validation

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/module/component"
	"github.com/agentjobs/validation-gateway/module/irrecoverable"
	"github.com/agentjobs/validation-gateway/storage"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

// Engine coordinates the commit-reveal participation of the validator keys
// managed by this process. It consumes chain events, evaluates submitted
// results, commits blinded votes and reveals them once the commit window
// closes. Durable commit records are the source of truth across restarts.
type Engine struct {
	component.Component
	cm *component.ComponentManager

	log       zerolog.Logger
	config    Config
	metrics   module.ValidationMetrics
	contract  module.ValidationContract
	records   storage.CommitRecords
	fetcher   module.ResultFetcher
	notifier  module.Notifier
	stake     module.StakeManager
	identity  module.IdentityVerifier
	telemetry module.Telemetry
	auditor   module.Auditor

	wallets    map[string]module.ValidatorWallet
	walletKeys []string // sorted keys of wallets
	now        func() time.Time

	// ctx bounds all chain calls and is cancelled on shutdown
	ctx    context.Context
	cancel context.CancelFunc

	spawnMu  sync.RWMutex
	inflight sync.WaitGroup

	mu          sync.Mutex
	assignments map[validation.JobID]map[string]*assignment
	submissions map[validation.JobID]*validation.SubmissionInfo
	history     *history
}

var _ module.ValidationEvents = (*Engine)(nil)

// New creates a validation engine for the given validator wallets.
// Expected errors:
//   - ErrNotConfigured if the validation contract or the commit record storage is missing
func New(
	log zerolog.Logger,
	config Config,
	metrics module.ValidationMetrics,
	contract module.ValidationContract,
	records storage.CommitRecords,
	fetcher module.ResultFetcher,
	notifier module.Notifier,
	stake module.StakeManager,
	identity module.IdentityVerifier,
	telemetry module.Telemetry,
	auditor module.Auditor,
	wallets []module.ValidatorWallet,
) (*Engine, error) {
	if contract == nil {
		return nil, ErrNotConfigured
	}
	if records == nil {
		return nil, fmt.Errorf("missing commit record storage: %w", ErrNotConfigured)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		log:         log.With().Str("engine", "validation").Logger(),
		config:      config,
		metrics:     metrics,
		contract:    contract,
		records:     records,
		fetcher:     fetcher,
		notifier:    notifier,
		stake:       stake,
		identity:    identity,
		telemetry:   telemetry,
		auditor:     auditor,
		wallets:     make(map[string]module.ValidatorWallet, len(wallets)),
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		assignments: make(map[validation.JobID]map[string]*assignment),
		submissions: make(map[validation.JobID]*validation.SubmissionInfo),
		history:     newHistory(config.HistorySize),
	}
	for _, wallet := range wallets {
		key := validation.AddressKey(wallet.Address())
		if _, ok := e.wallets[key]; ok {
			continue
		}
		e.wallets[key] = wallet
		e.walletKeys = append(e.walletKeys, key)
	}
	sort.Strings(e.walletKeys)

	e.cm = component.NewComponentManagerBuilder().
		AddWorker(e.recoverOnStart).
		AddWorker(e.shutdownOnCancel).
		Build()
	e.Component = e.cm

	return e, nil
}

// shutdownOnCancel waits for the component context to end, then cancels all
// armed timers and waits for in-flight work to return.
func (e *Engine) shutdownOnCancel(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ready()
	<-ctx.Done()
	e.shutdown()
}

func (e *Engine) shutdown() {
	e.cancel()

	// no new work can be spawned once the barrier is passed
	e.spawnMu.Lock()
	e.spawnMu.Unlock() //nolint:staticcheck

	e.mu.Lock()
	for _, bucket := range e.assignments {
		for _, a := range bucket {
			a.mu.Lock()
			a.stopTimers()
			a.mu.Unlock()
		}
	}
	e.mu.Unlock()

	e.inflight.Wait()
	e.log.Info().Msg("validation engine stopped")
}

// spawn runs f on its own goroutine unless the engine is shutting down.
func (e *Engine) spawn(f func()) bool {
	e.spawnMu.RLock()
	defer e.spawnMu.RUnlock()
	if e.ctx.Err() != nil {
		return false
	}
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		f()
	}()
	return true
}

func (e *Engine) assignmentLogger(a *assignment) zerolog.Logger {
	return e.log.With().
		Uint64(logging.KeyJobID, uint64(a.jobID)).
		Str(logging.KeyValidator, logging.Address(a.validator)).
		Logger()
}

// OnValidatorSelected creates an assignment for every managed validator of the
// committee that is not tracked yet. New assignments are rehydrated from the
// commit record storage before they are used.
func (e *Engine) OnValidatorSelected(jobID validation.JobID, validators []common.Address) {
	lg := e.log.With().Uint64(logging.KeyJobID, uint64(jobID)).Logger()

	var candidates []module.ValidatorWallet
	seen := make(map[string]struct{}, len(validators))
	e.mu.Lock()
	bucket := e.assignments[jobID]
	for _, validator := range validators {
		key := validation.AddressKey(validator)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		wallet, managed := e.wallets[key]
		if !managed {
			continue
		}
		if _, tracked := bucket[key]; tracked {
			continue
		}
		candidates = append(candidates, wallet)
	}
	e.mu.Unlock()

	if len(candidates) == 0 {
		lg.Debug().Int("committee_size", len(validators)).Msg("no untracked managed validator selected")
		return
	}

	for _, wallet := range candidates {
		a := newAssignment(jobID, wallet, e.now().UTC())
		e.rehydrate(a)

		e.mu.Lock()
		bucket := e.assignments[jobID]
		if bucket == nil {
			bucket = make(map[string]*assignment)
			e.assignments[jobID] = bucket
		}
		if _, tracked := bucket[a.key()]; tracked {
			e.mu.Unlock()
			continue
		}
		bucket[a.key()] = a
		submission := e.submissions[jobID]
		active := e.activeCountLocked()
		e.mu.Unlock()

		e.metrics.AssignmentsActive(active)

		a.mu.Lock()
		status := a.status
		a.mu.Unlock()

		lg := e.assignmentLogger(a)
		lg.Info().
			Str(logging.KeyStatus, string(status)).
			Msg("validator selected")

		switch {
		case status == validation.StatusCommitted:
			e.spawn(func() { e.scheduleReveal(a) })
		case status == validation.StatusRevealed:
		case submission != nil:
			e.spawn(func() { e.evaluateAndCommit(submission, a) })
		}
	}
}

// OnResultSubmitted remembers the submission of the job and starts an
// evaluation for every tracked assignment of the job.
func (e *Engine) OnResultSubmitted(submission *validation.SubmissionInfo) {
	if submission == nil {
		return
	}

	e.mu.Lock()
	e.submissions[submission.JobID] = submission
	targets := make([]*assignment, 0, len(e.assignments[submission.JobID]))
	for _, a := range e.assignments[submission.JobID] {
		targets = append(targets, a)
	}
	e.mu.Unlock()

	e.log.Info().
		Uint64(logging.KeyJobID, uint64(submission.JobID)).
		Str("worker", logging.Address(submission.Worker)).
		Str("result_uri", submission.ResultURI).
		Int("assignments", len(targets)).
		Msg("result submitted")

	for _, a := range targets {
		a := a
		e.spawn(func() { e.evaluateAndCommit(submission, a) })
	}
}

// OnJobCompleted cancels all timers of the job's assignments, moves them into
// the history and forgets the job. Durable records are kept.
func (e *Engine) OnJobCompleted(jobID validation.JobID) {
	e.mu.Lock()
	bucket := e.assignments[jobID]
	delete(e.assignments, jobID)
	delete(e.submissions, jobID)

	keys := make([]string, 0, len(bucket))
	for key := range bucket {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	now := e.now().UTC()
	for _, key := range keys {
		a := bucket[key]
		a.mu.Lock()
		a.stopTimers()
		a.mu.Unlock()

		// the history keeps the last lifecycle status
		e.history.add(a.snapshot())

		a.mu.Lock()
		if !a.status.Terminal() {
			a.setStatus(validation.StatusCompleted, now)
		}
		a.mu.Unlock()
	}
	active := e.activeCountLocked()
	e.mu.Unlock()

	e.metrics.AssignmentsActive(active)
	e.log.Info().
		Uint64(logging.KeyJobID, uint64(jobID)).
		Int("assignments", len(keys)).
		Msg("job completed")
}

// ListAssignments returns snapshots of all tracked assignments, ordered by job
// and validator, together with the history of completed ones.
func (e *Engine) ListAssignments() validation.AssignmentList {
	e.mu.Lock()
	tracked := make([]*assignment, 0)
	for _, bucket := range e.assignments {
		for _, a := range bucket {
			tracked = append(tracked, a)
		}
	}
	past := e.history.list()
	e.mu.Unlock()

	sort.Slice(tracked, func(i, j int) bool {
		if tracked[i].jobID != tracked[j].jobID {
			return tracked[i].jobID < tracked[j].jobID
		}
		return tracked[i].key() < tracked[j].key()
	})

	active := make([]validation.Snapshot, 0, len(tracked))
	for _, a := range tracked {
		active = append(active, a.snapshot())
	}
	return validation.AssignmentList{
		Active:  active,
		History: past,
	}
}

// CommitRecords returns the durable records of the job for all validators.
func (e *Engine) CommitRecords(jobID validation.JobID) ([]*validation.CommitRecord, error) {
	records, err := e.records.ByJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve commit records of job %d: %w", jobID, err)
	}
	return records, nil
}

func (e *Engine) activeCountLocked() int {
	count := 0
	for _, bucket := range e.assignments {
		count += len(bucket)
	}
	return count
}

// tracked returns the assignment of the validator for the job, if any.
func (e *Engine) tracked(jobID validation.JobID, key string) (*assignment, *validation.SubmissionInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	a, ok := e.assignments[jobID][key]
	return a, e.submissions[jobID], ok
}
