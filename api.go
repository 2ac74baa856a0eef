package hass

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frankli0324/go-hass/internal/dialer"
	"github.com/frankli0324/go-hass/internal/http"
)

// DefaultTimeout is used when no timeout is given and the platform supports
// socket timeouts.
const DefaultTimeout = 5 * time.Second

const passwordHeader = "X-HA-access"

// API maps the REST endpoints of a Home Assistant instance to method calls.
// every call opens one connection and releases it before returning, on
// success and failure alike.
type API struct {
	client  *Client
	baseURL string
	headers Headers
	timeout time.Duration
	logger  *slog.Logger
}

type options struct {
	password   string
	timeout    time.Duration
	timeoutSet bool
	client     *Client
	caps       *Capabilities
	logger     *slog.Logger
}

type Option func(*options)

// WithPassword sends the legacy api password with every request.
func WithPassword(password string) Option {
	return func(o *options) { o.password = password }
}

// WithTimeout sets the socket timeout. zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout, o.timeoutSet = d, true }
}

// WithClient makes the API send requests through c.
func WithClient(c *Client) Option {
	return func(o *options) { o.client = c }
}

// WithCapabilities overrides the detected platform capabilities. ignored
// when a client is given with [WithClient].
func WithCapabilities(caps Capabilities) Option {
	return func(o *options) { o.caps = &caps }
}

// WithLogger adds the [Logging] middleware to a client created by [New] and
// logs failed [API.IsState] checks. a client given with [WithClient] keeps
// its own middlewares.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New returns an API for the instance at baseURL, e.g.
// "http://hass.local:8123". baseURL must not end with a slash.
func New(baseURL string, opts ...Option) (*API, error) {
	if strings.HasSuffix(baseURL, "/") {
		return nil, fmt.Errorf("%w: base url %q should not end with a /", ErrConfiguration, baseURL)
	}
	if _, err := http.ParseEndpoint(baseURL); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	client := o.client
	if client == nil {
		caps := DetectCapabilities()
		if o.caps != nil {
			caps = *o.caps
		}
		client = NewClient(dialer.NewCoreDialer(caps))
		if o.logger != nil {
			client.Use(Logging(o.logger))
		}
	}
	caps := client.Capabilities()

	timeout := o.timeout
	if !o.timeoutSet && caps.Timeout {
		timeout = DefaultTimeout
	} else if timeout > 0 && !caps.Timeout {
		return nil, ErrTimeoutUnsupported
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	a := &API{
		client:  client,
		baseURL: baseURL + "/api/",
		timeout: timeout,
		logger:  logger,
	}
	if o.password != "" {
		a.headers = a.headers.Add(passwordHeader, o.password)
	}
	return a, nil
}

// BaseURL returns the url every endpoint path is appended to.
func (a *API) BaseURL() string {
	return a.baseURL
}

func (a *API) Timeout() time.Duration {
	return a.timeout
}

// FireEvent fires an event of the given type, data may be nil.
func (a *API) FireEvent(ctx context.Context, eventType string, data interface{}) error {
	if err := a.call(ctx, MethodPost, "events/"+eventType, data, nil); err != nil {
		return fmt.Errorf("hass: fire event %s: %w", eventType, err)
	}
	return nil
}

// States returns the state of every entity.
func (a *API) States(ctx context.Context) ([]State, error) {
	var states []State
	if err := a.call(ctx, MethodGet, "states", nil, &states); err != nil {
		return nil, fmt.Errorf("hass: get states: %w", err)
	}
	return states, nil
}

func (a *API) GetState(ctx context.Context, entityID string) (*State, error) {
	var s State
	if err := a.call(ctx, MethodGet, "states/"+entityID, nil, &s); err != nil {
		return nil, fmt.Errorf("hass: get state %s: %w", entityID, err)
	}
	return &s, nil
}

// SetState creates or updates the state of an entity. attributes are only
// sent when not nil.
func (a *API) SetState(ctx context.Context, entityID string, state interface{}, attributes map[string]interface{}) (*State, error) {
	data := map[string]interface{}{"state": state}
	if attributes != nil {
		data["attributes"] = attributes
	}
	var s State
	if err := a.call(ctx, MethodPost, "states/"+entityID, data, &s); err != nil {
		return nil, fmt.Errorf("hass: set state %s: %w", entityID, err)
	}
	return &s, nil
}

// IsState reports whether entityID is in the given state. any error, a
// missing entity included, reports false.
func (a *API) IsState(ctx context.Context, entityID, state string) bool {
	s, err := a.GetState(ctx, entityID)
	if err != nil {
		a.logger.Debug("is state check failed", "entity_id", entityID, "error", err)
		return false
	}
	return s.State == state
}

// CallService calls domain.service with data, which may be nil. the response
// is decoded into out unless out is nil, in which case it is never read.
func (a *API) CallService(ctx context.Context, domain, service string, data, out interface{}) error {
	if err := a.call(ctx, MethodPost, "services/"+domain+"/"+service, data, out); err != nil {
		return fmt.Errorf("hass: call service %s.%s: %w", domain, service, err)
	}
	return nil
}

func (a *API) call(ctx context.Context, method, path string, data, out interface{}) error {
	req := &Request{
		Method:  method,
		URL:     a.baseURL + path,
		JSON:    data,
		Timeout: a.timeout,
		Header:  a.headers,
	}
	return a.client.CtxDoFunc(ctx, req, func(resp *Response) error {
		if err := resp.RaiseForStatus(); err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		return resp.JSON(out)
	})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
