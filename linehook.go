// Package linehook authenticates LINE Messaging API webhook callbacks and
// dispatches the decoded events to application handlers. Each request is
// verified against the channel secret, decoded into typed events, and
// exposed to the application through a per-request Session that can
// register handlers, dispatch the batch, and reply or push through the
// Messaging API.
package linehook

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/RodrimaradoPT/linehook/line"
	"github.com/RodrimaradoPT/linehook/seen"
	"github.com/RodrimaradoPT/linehook/tap"
)

var (
	// ErrNoChannelSecret is returned by New when the channel secret is empty.
	ErrNoChannelSecret = errors.New("linehook: channel secret is required")
	// ErrNoChannelAccessToken is returned by New when the access token is empty.
	ErrNoChannelAccessToken = errors.New("linehook: channel access token is required")
)

// Config carries the channel credentials. The secret and access token are
// required; neither is ever logged. Verbose enables debug-level intake
// logging on the injected logger and has no other effect.
type Config struct {
	ChannelSecret      string
	ChannelAccessToken string
	Verbose            bool
}

// An Option customizes a Plugin at construction.
type Option func(*Plugin)

// WithLogger injects the logger used by the intake. Defaults to a no-op
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithHTTPClient overrides the HTTP client used for Messaging API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Plugin) {
		if hc != nil {
			p.client.HTTPClient = hc
		}
	}
}

// WithSeenStore enables redelivery filtering: events flagged as
// redeliveries whose webhook event ID was already recorded in store are
// dropped before the session is built.
func WithSeenStore(store seen.Store) Option {
	return func(p *Plugin) {
		p.seen = store
	}
}

// WithTap mirrors every decoded payload to the given debug broadcaster.
// Broadcast failures are logged and never fail the request.
func WithTap(b *tap.Broadcaster) Option {
	return func(p *Plugin) {
		p.tap = b
	}
}

// Plugin is the webhook intake. Construct one per channel and mount
// Handler on the callback route.
type Plugin struct {
	cfg    Config
	client *line.Client
	logger *zap.Logger
	seen   seen.Store
	tap    *tap.Broadcaster
}

// New validates the configuration and builds the intake. A missing secret
// or access token aborts construction.
func New(cfg Config, opts ...Option) (*Plugin, error) {
	if cfg.ChannelSecret == "" {
		return nil, ErrNoChannelSecret
	}
	if cfg.ChannelAccessToken == "" {
		return nil, ErrNoChannelAccessToken
	}

	p := &Plugin{
		cfg:    cfg,
		client: line.NewClient(cfg.ChannelAccessToken),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Client returns the Messaging API client bound to the configured access
// token.
func (p *Plugin) Client() *line.Client {
	return p.client
}

// debug logs at debug level only when Verbose is set.
func (p *Plugin) debug(msg string, fields ...zap.Field) {
	if p.cfg.Verbose {
		p.logger.Debug(msg, fields...)
	}
}
