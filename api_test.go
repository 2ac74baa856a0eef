package hass_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	hass "github.com/frankli0324/go-hass"
)

type recorded struct {
	Method, Path, Password, ContentType string
	Body                                []byte
}

// fakeHub is a tiny stand-in for the Home Assistant api.
type fakeHub struct {
	mu     sync.Mutex
	states map[string]hass.State
	seen   []recorded
}

func newFakeHub(t *testing.T) (*fakeHub, *httptest.Server) {
	hub := &fakeHub{states: map[string]hass.State{
		"sensor.temp": {EntityID: "sensor.temp", State: "21.5", Attributes: map[string]interface{}{"unit_of_measurement": "°C"}},
		"light.hall":  {EntityID: "light.hall", State: "off"},
	}}
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/api/states", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		hub.record(r)
		hub.mu.Lock()
		defer hub.mu.Unlock()
		list := make([]hass.State, 0, len(hub.states))
		for _, s := range hub.states {
			list = append(list, s)
		}
		json.NewEncoder(w).Encode(list)
	})
	mux.HandleFunc("/api/states/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body := hub.record(r)
		id := r.URL.Path[len("/api/states/"):]
		hub.mu.Lock()
		defer hub.mu.Unlock()
		if r.Method == nethttp.MethodPost {
			var in struct {
				State      interface{}            `json:"state"`
				Attributes map[string]interface{} `json:"attributes"`
			}
			if err := json.Unmarshal(body, &in); err != nil {
				nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
				return
			}
			s, _ := json.Marshal(in.State)
			state := string(s)
			if str, ok := in.State.(string); ok {
				state = str
			}
			hub.states[id] = hass.State{EntityID: id, State: state, Attributes: in.Attributes, LastChanged: time.Unix(0, 0).UTC()}
		}
		s, ok := hub.states[id]
		if !ok {
			nethttp.Error(w, "Entity not found", nethttp.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(s)
	})
	mux.HandleFunc("/api/events/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		hub.record(r)
		io.WriteString(w, `{"message": "Event fired."}`)
	})
	mux.HandleFunc("/api/services/", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		hub.record(r)
		if r.URL.Path == "/api/services/broken/service" {
			nethttp.Error(w, "boom", nethttp.StatusInternalServerError)
			return
		}
		io.WriteString(w, `[{"entity_id": "light.hall", "state": "on"}]`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return hub, server
}

func (h *fakeHub) record(r *nethttp.Request) []byte {
	body, _ := io.ReadAll(r.Body)
	h.mu.Lock()
	h.seen = append(h.seen, recorded{
		Method: r.Method, Path: r.URL.Path,
		Password:    r.Header.Get("X-HA-access"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	h.mu.Unlock()
	return body
}

func (h *fakeHub) last() recorded {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seen[len(h.seen)-1]
}

func TestNewValidation(t *testing.T) {
	if _, err := hass.New("http://hass.local:8123/"); !errors.Is(err, hass.ErrConfiguration) {
		t.Errorf("trailing slash: err = %v", err)
	}
	if _, err := hass.New("ws://hass.local"); !errors.Is(err, hass.ErrUnsupportedScheme) {
		t.Errorf("bad scheme: err = %v", err)
	}

	a, err := hass.New("http://hass.local:8123")
	if err != nil {
		t.Fatal(err)
	}
	if a.Timeout() != hass.DefaultTimeout {
		t.Errorf("Timeout() = %s, want default", a.Timeout())
	}
	if a.BaseURL() != "http://hass.local:8123/api/" {
		t.Errorf("BaseURL() = %q", a.BaseURL())
	}

	noTimeouts := hass.WithCapabilities(hass.Capabilities{TLS: true})
	if _, err := hass.New("http://hass.local", noTimeouts, hass.WithTimeout(time.Second)); !errors.Is(err, hass.ErrTimeoutUnsupported) {
		t.Errorf("unsupported timeout: err = %v", err)
	}
	a, err = hass.New("http://hass.local", noTimeouts)
	if err != nil {
		t.Fatal(err)
	}
	if a.Timeout() != 0 {
		t.Errorf("Timeout() = %s without timeout support", a.Timeout())
	}
}

func TestStates(t *testing.T) {
	hub, server := newFakeHub(t)
	a, err := hass.New(server.URL, hass.WithPassword("secret"))
	if err != nil {
		t.Fatal(err)
	}
	states, err := a.States(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(states) != 2 {
		t.Errorf("States() = %v", states)
	}
	if rec := hub.last(); rec.Method != "GET" || rec.Path != "/api/states" || rec.Password != "secret" {
		t.Errorf("request = %+v", rec)
	}
}

func TestGetState(t *testing.T) {
	_, server := newFakeHub(t)
	a, _ := hass.New(server.URL)

	s, err := a.GetState(context.Background(), "sensor.temp")
	if err != nil {
		t.Fatal(err)
	}
	if s.State != "21.5" || s.Attributes["unit_of_measurement"] != "°C" {
		t.Errorf("GetState() = %+v", s)
	}

	_, err = a.GetState(context.Background(), "sensor.missing")
	var se *hass.StatusError
	if !errors.Is(err, hass.ErrClientError) || !errors.As(err, &se) || se.StatusCode != 404 {
		t.Errorf("missing entity: err = %v", err)
	}
}

func TestSetState(t *testing.T) {
	hub, server := newFakeHub(t)
	a, _ := hass.New(server.URL)

	s, err := a.SetState(context.Background(), "sensor.cpu", 42.5, map[string]interface{}{"unit_of_measurement": "%"})
	if err != nil {
		t.Fatal(err)
	}
	if s.EntityID != "sensor.cpu" || s.State != "42.5" {
		t.Errorf("SetState() = %+v", s)
	}
	rec := hub.last()
	if rec.ContentType != "application/json" || string(rec.Body) != `{"attributes":{"unit_of_measurement":"%"},"state":42.5}` {
		t.Errorf("request = %+v, body %s", rec, rec.Body)
	}

	if _, err := a.SetState(context.Background(), "light.hall", "on", nil); err != nil {
		t.Fatal(err)
	}
	if body := string(hub.last().Body); body != `{"state":"on"}` {
		t.Errorf("body = %s", body)
	}
	if !a.IsState(context.Background(), "light.hall", "on") {
		t.Error("IsState(light.hall, on) = false")
	}
	if a.IsState(context.Background(), "light.nope", "on") {
		t.Error("IsState(light.nope, on) = true")
	}
}

func TestFireEvent(t *testing.T) {
	hub, server := newFakeHub(t)
	a, _ := hass.New(server.URL)

	if err := a.FireEvent(context.Background(), "doorbell", nil); err != nil {
		t.Fatal(err)
	}
	if rec := hub.last(); rec.Method != "POST" || rec.Path != "/api/events/doorbell" || len(rec.Body) != 0 {
		t.Errorf("request = %+v", rec)
	}
	if err := a.FireEvent(context.Background(), "button", map[string]int{"id": 3}); err != nil {
		t.Fatal(err)
	}
	if body := string(hub.last().Body); body != `{"id":3}` {
		t.Errorf("body = %s", body)
	}
}

func TestCallService(t *testing.T) {
	hub, server := newFakeHub(t)
	a, _ := hass.New(server.URL)

	var changed []hass.State
	err := a.CallService(context.Background(), "light", "turn_on", map[string]string{"entity_id": "light.hall"}, &changed)
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 1 || changed[0].State != "on" {
		t.Errorf("CallService() = %+v", changed)
	}
	if rec := hub.last(); rec.Path != "/api/services/light/turn_on" {
		t.Errorf("request = %+v", rec)
	}

	if err := a.CallService(context.Background(), "light", "turn_off", nil, nil); err != nil {
		t.Fatal(err)
	}
	err = a.CallService(context.Background(), "broken", "service", nil, nil)
	if !errors.Is(err, hass.ErrServerError) {
		t.Errorf("err = %v, want server error", err)
	}
}

func TestConnectionErrorSurfaces(t *testing.T) {
	_, server := newFakeHub(t)
	url := server.URL
	server.Close()

	a, _ := hass.New(url, hass.WithTimeout(time.Second))
	if _, err := a.States(context.Background()); !errors.Is(err, hass.ErrConnection) {
		t.Errorf("err = %v, want connection error", err)
	}
}

func TestLoggerLogsOncePerCall(t *testing.T) {
	_, server := newFakeHub(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client := hass.NewClient(nil)
	client.Use(hass.Logging(logger))
	for name, opts := range map[string][]hass.Option{
		"OwnClient":   {hass.WithLogger(logger)},
		"GivenClient": {hass.WithClient(client), hass.WithLogger(logger)},
	} {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			a, err := hass.New(server.URL, opts...)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := a.GetState(context.Background(), "sensor.temp"); err != nil {
				t.Fatal(err)
			}
			if n := strings.Count(buf.String(), "\n"); n != 1 {
				t.Errorf("logged %d lines, want 1:\n%s", n, buf.String())
			}
		})
	}
}
