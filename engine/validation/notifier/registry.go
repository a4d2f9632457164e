// Package notifier delivers best-effort notifications to the domain agents
// owning validator keys, over a live websocket or an HTTP webhook.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/agentjobs/validation-gateway/model/validation"
	"github.com/agentjobs/validation-gateway/utils/logging"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	MessageTypeRegister   = "register"
	MessageTypeRegistered = "registered"
)

// registerMessage is sent by an agent to announce the validator keys it owns.
type registerMessage struct {
	Type       string   `json:"type"`
	Validators []string `json:"validators"`
}

type agentConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// write sends one text frame, bounded by the earlier of the context deadline
// and the write timeout.
func (c *agentConn) write(ctx context.Context, data []byte, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	err := c.conn.SetWriteDeadline(deadline)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Registry keeps the live agent sockets by the validator keys they announced.
type Registry struct {
	log          zerolog.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu    sync.RWMutex
	conns map[string][]*agentConn
}

func NewRegistry(log zerolog.Logger, writeTimeout time.Duration) *Registry {
	return &Registry{
		log: log.With().Str("component", "agent_registry").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeTimeout: writeTimeout,
		conns:        make(map[string][]*agentConn),
	}
}

// HandleSocket upgrades the request to a websocket and serves the agent until
// the connection closes.
func (r *Registry) HandleSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Debug().Err(err).Msg("could not upgrade agent connection")
		return
	}
	agent := &agentConn{conn: conn}
	lg := r.log.With().Str("remote_addr", req.RemoteAddr).Logger()
	lg.Debug().Msg("agent connected")

	defer func() {
		r.remove(agent)
		_ = conn.Close()
		lg.Debug().Msg("agent disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lg.Warn().Err(err).Msg("agent connection closed unexpectedly")
			}
			return
		}

		var msg registerMessage
		err = json.Unmarshal(data, &msg)
		if err != nil {
			lg.Warn().Err(err).Msg("malformed agent message")
			continue
		}
		if msg.Type != MessageTypeRegister {
			continue
		}

		keys := r.register(agent, msg.Validators)
		lg.Info().Strs("validators", keys).Msg("agent registered")

		ack, err := json.Marshal(registerMessage{Type: MessageTypeRegistered, Validators: keys})
		if err != nil {
			lg.Error().Err(err).Msg("could not encode registration ack")
			continue
		}
		err = agent.write(context.Background(), ack, r.writeTimeout)
		if err != nil {
			lg.Warn().Err(err).Msg("could not acknowledge registration")
			return
		}
	}
}

// register adds the connection for the given validator addresses and returns
// their canonical keys. Invalid addresses are ignored.
func (r *Registry) register(agent *agentConn, validators []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(validators))
	for _, v := range validators {
		v = strings.TrimSpace(v)
		if !common.IsHexAddress(v) {
			continue
		}
		key := validation.AddressKey(common.HexToAddress(v))
		if !containsConn(r.conns[key], agent) {
			r.conns[key] = append(r.conns[key], agent)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (r *Registry) remove(agent *agentConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, conns := range r.conns {
		kept := conns[:0]
		for _, c := range conns {
			if c != agent {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			delete(r.conns, key)
			continue
		}
		r.conns[key] = kept
	}
}

// Connected reports whether an agent socket is registered for the validator.
func (r *Registry) Connected(validator common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[validation.AddressKey(validator)]) > 0
}

// Send writes the notification to the first registered socket of the
// validator that accepts it. It returns false without error if no socket is
// registered.
func (r *Registry) Send(ctx context.Context, validator common.Address, notification *validation.Notification) (bool, error) {
	r.mu.RLock()
	conns := append([]*agentConn(nil), r.conns[validation.AddressKey(validator)]...)
	r.mu.RUnlock()
	if len(conns) == 0 {
		return false, nil
	}

	data, err := json.Marshal(notification)
	if err != nil {
		return false, fmt.Errorf("could not encode notification: %w", err)
	}

	var result *multierror.Error
	for _, c := range conns {
		err := c.write(ctx, data, r.writeTimeout)
		if err == nil {
			return true, nil
		}
		r.log.Debug().Err(err).Str(logging.KeyValidator, logging.Address(validator)).Msg("socket write failed")
		result = multierror.Append(result, err)
	}
	return false, result.ErrorOrNil()
}

func containsConn(conns []*agentConn, c *agentConn) bool {
	for _, existing := range conns {
		if existing == c {
			return true
		}
	}
	return false
}
