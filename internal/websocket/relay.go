// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package websocket

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tablemap/internal/config"
	"github.com/tomtom215/tablemap/internal/logging"
	"github.com/tomtom215/tablemap/internal/metrics"
)

// Fan-out backends
const (
	BackendLocal     = "local"
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// Envelope kinds
const (
	EnvelopeUser = "user"
	EnvelopeRoom = "room"
)

const (
	defaultRelayTopic  = "tablemap.push"
	relayHandlerName   = "fanout-relay"
	relayBreakerName   = "fanout-relay"
	relayStartTimeout  = 30 * time.Second
	routerCloseTimeout = 10 * time.Second
)

// ErrRelayStopped is returned by Publish before Start or after Shutdown.
var ErrRelayStopped = errors.New("fanout relay is not running")

// Envelope carries one pre-marshalled event between nodes.
//
// A user envelope targets the channel the registry resolved on the
// publishing node; a room envelope targets a chat ID.
type Envelope struct {
	Kind    string          `json:"kind"`
	Target  string          `json:"target"`
	Channel string          `json:"channel,omitempty"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// Relay moves pushes between server instances over Watermill. The
// gochannel backend stays in process; the nats backend uses core NATS
// subjects, optionally against an embedded server. Every node receives
// every envelope and ignores its own.
type Relay struct {
	config   config.FanoutConfig
	nodeID   string
	logger   zerolog.Logger
	wmLogger watermill.LoggerAdapter
	breaker  *gobreaker.CircuitBreaker[any]

	// deliver is set by WithRelay
	deliver func(*Envelope)

	mu        sync.RWMutex
	running   bool
	embedded  *server.Server
	publisher message.Publisher
	router    *message.Router
	closers   []io.Closer
}

// NewRelay validates cfg and creates a stopped relay.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRelay(cfg config.FanoutConfig, logger zerolog.Logger) (*Relay, error) {
	switch cfg.Backend {
	case BackendGoChannel:
	case BackendNATS:
		if cfg.NATSURL == "" && !cfg.EmbeddedNATS {
			return nil, fmt.Errorf("nats fanout needs nats_url or embedded_nats")
		}
	default:
		return nil, fmt.Errorf("unsupported fanout backend %q", cfg.Backend)
	}
	if cfg.Topic == "" {
		cfg.Topic = defaultRelayTopic
	}
	if cfg.NodeID == "" {
		cfg.NodeID = uuid.New().String()
	}

	return &Relay{
		config:   cfg,
		nodeID:   cfg.NodeID,
		logger:   logger.With().Str("component", "fanout-relay").Str("node_id", cfg.NodeID).Logger(),
		wmLogger: watermill.NewSlogLogger(logging.NewSlogLogger()),
		breaker:  newRelayBreaker(),
	}, nil
}

func newRelayBreaker() *gobreaker.CircuitBreaker[any] {
	metrics.CircuitBreakerState.WithLabelValues(relayBreakerName).Set(0)
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        relayBreakerName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})
}

// NodeID identifies this instance in envelopes.
func (r *Relay) NodeID() string {
	return r.nodeID
}

// Start connects the publisher and subscriber and runs the Watermill
// router until ctx is canceled or Shutdown is called.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return nil
	}

	pub, sub, err := r.connect()
	if err != nil {
		r.abortStart()
		return err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: routerCloseTimeout}, r.wmLogger)
	if err != nil {
		r.abortStart()
		return fmt.Errorf("create watermill router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	router.AddConsumerHandler(relayHandlerName, r.config.Topic, sub, r.handle)

	go func() {
		if err := router.Run(ctx); err != nil {
			r.logger.Error().Err(err).Msg("relay router stopped with error")
		}
	}()

	select {
	case <-router.Running():
	case <-time.After(relayStartTimeout):
		_ = router.Close()
		r.abortStart()
		return fmt.Errorf("relay router not running within %s", relayStartTimeout)
	case <-ctx.Done():
		_ = router.Close()
		r.abortStart()
		return ctx.Err()
	}

	r.publisher = pub
	r.router = router
	r.running = true
	r.logger.Info().
		Str("backend", r.config.Backend).
		Str("topic", r.config.Topic).
		Msg("fanout relay started")
	return nil
}

// connect builds the backend pub/sub pair. Closers are recorded in close
// order as they are created.
func (r *Relay) connect() (message.Publisher, message.Subscriber, error) {
	if r.config.Backend == BackendGoChannel {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: relayQueueSize}, r.wmLogger)
		r.closers = append(r.closers, ch)
		return ch, ch, nil
	}

	url := r.config.NATSURL
	if r.config.EmbeddedNATS {
		ns, err := r.startEmbedded()
		if err != nil {
			return nil, nil, err
		}
		r.embedded = ns
		url = ns.ClientURL()
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("tablemap-" + r.nodeID),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				r.logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			r.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	// Core NATS: no stream, and no queue group so every node gets a copy
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, r.wmLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats publisher: %w", err)
	}
	r.closers = append(r.closers, pub)

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		SubscribersCount: 1,
		CloseTimeout:     routerCloseTimeout,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, r.wmLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("create nats subscriber: %w", err)
	}
	r.closers = append(r.closers, sub)

	return pub, sub, nil
}

// startEmbedded runs a NATS server in process. Port 0 picks a free port.
func (r *Relay) startEmbedded() (*server.Server, error) {
	port := r.config.EmbeddedNATSPort
	if port == 0 {
		port = server.RANDOM_PORT
	}
	ns, err := server.NewServer(&server.Options{
		ServerName: "tablemap-" + r.nodeID,
		Host:       "127.0.0.1",
		Port:       port,
		NoSigs:     true,
		NoLog:      true,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(relayStartTimeout) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}
	r.logger.Info().Str("url", ns.ClientURL()).Msg("embedded NATS server started")
	return ns, nil
}

// handle receives one envelope. Malformed payloads are logged and acked
// since retrying cannot fix them.
func (r *Relay) handle(msg *message.Message) error {
	var env Envelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		r.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("malformed relay envelope")
		return nil
	}
	if env.Origin == r.nodeID {
		metrics.RelayMessages.WithLabelValues("ignored").Inc()
		return nil
	}
	metrics.RelayMessages.WithLabelValues("received").Inc()
	if r.deliver != nil {
		r.deliver(&env)
	}
	return nil
}

// Publish sends env to every other node.
func (r *Relay) Publish(ctx context.Context, env *Envelope) error {
	r.mu.RLock()
	pub, running := r.publisher, r.running
	r.mu.RUnlock()
	if !running {
		return ErrRelayStopped
	}

	env.Origin = r.nodeID
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set("kind", env.Kind)

	if _, err := r.breaker.Execute(func() (any, error) {
		return nil, pub.Publish(r.config.Topic, msg)
	}); err != nil {
		return fmt.Errorf("publish envelope: %w", err)
	}
	metrics.RelayMessages.WithLabelValues("published").Inc()
	return nil
}

// Shutdown stops the router, closes the pub/sub pair and stops the
// embedded server.
func (r *Relay) Shutdown(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	r.running = false

	if err := r.router.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("relay router close failed")
	}
	r.router = nil
	r.publisher = nil
	r.closeAll()

	if r.embedded != nil {
		r.embedded.Shutdown()
		done := make(chan struct{})
		go func() {
			r.embedded.WaitForShutdown()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			r.logger.Warn().Msg("embedded NATS shutdown timed out")
		}
		r.embedded = nil
	}
	r.logger.Info().Msg("fanout relay stopped")
}

// closeAll closes publisher and subscriber. Must be called with r.mu held.
func (r *Relay) closeAll() {
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			r.logger.Debug().Err(err).Msg("relay close failed")
		}
	}
	r.closers = nil
}

// abortStart undoes a partial Start. Must be called with r.mu held.
func (r *Relay) abortStart() {
	r.closeAll()
	if r.embedded != nil {
		r.embedded.Shutdown()
		r.embedded = nil
	}
}

// IsRunning reports whether Publish will be attempted.
func (r *Relay) IsRunning() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}
