package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/module"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

// HeaderEventType carries the notification type on webhook requests.
const HeaderEventType = "X-Validation-Event"

const (
	// consecutive webhook failures after which an endpoint is skipped
	breakerFailures = 3
	// time an endpoint is skipped before a single trial request is allowed
	breakerCooldown = 30 * time.Second
)

// Dispatcher pushes notifications to the agent owning a validator key. A live
// socket is preferred; the configured webhook is the fallback. Failures are
// logged and reported as not delivered.
type Dispatcher struct {
	log      zerolog.Logger
	registry *Registry
	webhooks map[string]string
	breakers map[string]*gobreaker.CircuitBreaker
	client   *http.Client
	timeout  time.Duration
}

var _ module.Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. The registry may be nil if agents can
// only be reached by webhook.
func NewDispatcher(log zerolog.Logger, registry *Registry, webhooks map[common.Address]string, client *http.Client, timeout time.Duration) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	d := &Dispatcher{
		log:      log.With().Str("component", "notification_dispatcher").Logger(),
		registry: registry,
		webhooks: make(map[string]string, len(webhooks)),
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(webhooks)),
		client:   client,
		timeout:  timeout,
	}
	for addr, url := range webhooks {
		if url == "" {
			continue
		}
		d.webhooks[validation.AddressKey(addr)] = url
		if _, ok := d.breakers[url]; !ok {
			d.breakers[url] = d.newBreaker(url)
		}
	}
	return d
}

func (d *Dispatcher) newBreaker(url string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        url,
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			d.log.Info().
				Str("webhook", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("webhook circuit breaker state changed")
		},
	})
}

func (d *Dispatcher) Notify(ctx context.Context, validator common.Address, notification *validation.Notification) bool {
	if notification == nil {
		return false
	}
	n := *notification
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	lg := d.log.With().
		Str("id", n.ID).
		Str("type", string(n.Type)).
		Uint64(logging.KeyJobID, uint64(n.JobID)).
		Str(logging.KeyValidator, logging.Address(validator)).
		Logger()

	var errs *multierror.Error
	if d.registry != nil {
		delivered, err := d.registry.Send(ctx, validator, &n)
		if delivered {
			lg.Debug().Msg("notification delivered over socket")
			return true
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("socket: %w", err))
		}
	}

	url, ok := d.webhooks[validation.AddressKey(validator)]
	if ok {
		_, err := d.breakers[url].Execute(func() (interface{}, error) {
			return nil, d.post(ctx, url, &n)
		})
		if err == nil {
			lg.Debug().Msg("notification delivered over webhook")
			return true
		}
		errs = multierror.Append(errs, fmt.Errorf("webhook: %w", err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		lg.Warn().Err(err).Msg("notification not delivered")
	} else {
		lg.Debug().Msg("no agent endpoint for validator")
	}
	return false
}

func (d *Dispatcher) post(ctx context.Context, url string, n *validation.Notification) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("could not encode notification: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEventType, string(n.Type))

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
