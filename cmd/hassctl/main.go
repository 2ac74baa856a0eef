// hassctl talks to a Home Assistant instance over its REST api.
//
//	hassctl [-config hassctl.yaml] <command> [args]
//
// Commands:
//
//	states                          list every entity state
//	get <entity_id>                 print one entity state
//	set <entity_id> <state>         set an entity state
//	fire <event> [json]             fire an event
//	call <domain> <service> [json]  call a service
//	discover                        look for an instance on the local network
//	report                          poll the configured sensors until interrupted
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	hass "github.com/frankli0324/go-hass"
	"github.com/frankli0324/go-hass/dialer"
	"github.com/frankli0324/go-hass/discovery"
	"github.com/frankli0324/go-hass/internal/config"
	"github.com/frankli0324/go-hass/internal/logging"
	"github.com/frankli0324/go-hass/sensor"
)

// set at build time via ldflags
var version = "dev"

var errUsage = errors.New("usage: hassctl [-config file] states|get|set|fire|call|discover|report [args]")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		// the configured logger may not exist yet
		logging.Default().Error("hassctl failed", "error", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("hassctl", flag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("HASS_CONFIG"), "path to the YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)
	caps := hass.DetectCapabilities()
	log.Debug("capabilities detected", "timeout", caps.Timeout, "tls", caps.TLS)

	cmd, args := args[0], args[1:]
	if cmd == "discover" {
		info, err := discovery.Scan(ctx, discoveryConfig(cfg, log))
		if err != nil {
			return err
		}
		return printJSON(stdout, info)
	}

	api, err := connect(ctx, cfg, log, caps)
	if err != nil {
		return err
	}

	switch {
	case cmd == "states" && len(args) == 0:
		states, err := api.States(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, states)
	case cmd == "get" && len(args) == 1:
		state, err := api.GetState(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(stdout, state)
	case cmd == "set" && len(args) == 2:
		state, err := api.SetState(ctx, args[0], args[1], nil)
		if err != nil {
			return err
		}
		return printJSON(stdout, state)
	case cmd == "fire" && (len(args) == 1 || len(args) == 2):
		data, err := payload(args[1:])
		if err != nil {
			return err
		}
		return api.FireEvent(ctx, args[0], data)
	case cmd == "call" && (len(args) == 2 || len(args) == 3):
		data, err := payload(args[2:])
		if err != nil {
			return err
		}
		var changed []hass.State
		if err := api.CallService(ctx, args[0], args[1], data, &changed); err != nil {
			return err
		}
		return printJSON(stdout, changed)
	case cmd == "report" && len(args) == 0:
		return report(ctx, cfg, log, api)
	}
	return errUsage
}

// connect builds the api client from the config, discovering the instance
// when no url is configured.
func connect(ctx context.Context, cfg *config.Config, log *logging.Logger, caps hass.Capabilities) (*hass.API, error) {
	if err := cfg.RequireInstance(); err != nil {
		return nil, err
	}
	cd := dialer.NewCoreDialer(caps)
	cd.Interface = cfg.Hass.Interface
	cd.Logger = log.With("component", "dialer").Logger
	if r := cfg.Resolve; r.Network != "" || r.DNSServer != "" || len(r.StaticHosts) > 0 {
		cd.ResolveConfig = &dialer.ResolveConfig{
			CustomDNSServer: r.DNSServer,
			Network:         r.Network,
			StaticHosts:     r.StaticHosts,
		}
	}
	apiLog := log.With("component", "api").Logger
	client := hass.NewClient(cd)
	client.Use(hass.Logging(apiLog))

	opts := []hass.Option{hass.WithClient(client), hass.WithLogger(apiLog)}
	if cfg.Hass.Timeout != nil {
		opts = append(opts, hass.WithTimeout(*cfg.Hass.Timeout))
	}
	if cfg.Hass.URL != "" {
		if cfg.Hass.APIPassword != "" {
			opts = append(opts, hass.WithPassword(cfg.Hass.APIPassword))
		}
		return hass.New(cfg.Hass.URL, opts...)
	}
	api, err := discovery.GetInstance(ctx, discoveryConfig(cfg, log), cfg.Hass.APIPassword, opts...)
	if err != nil {
		return nil, fmt.Errorf("discovering instance: %w", err)
	}
	log.Info("instance discovered", "url", strings.TrimSuffix(api.BaseURL(), "/api/"))
	return api, nil
}

func discoveryConfig(cfg *config.Config, log *logging.Logger) discovery.Config {
	return discovery.Config{
		Addr:      cfg.Discovery.Addr,
		Timeout:   cfg.Discovery.Timeout,
		Interface: cfg.Hass.Interface,
		Logger:    log.With("component", "discovery").Logger,
	}
}

func report(ctx context.Context, cfg *config.Config, log *logging.Logger, api *hass.API) error {
	if len(cfg.Sensors) == 0 {
		return errors.New("no sensors configured")
	}
	sensors := make([]*sensor.Sensor, 0, len(cfg.Sensors))
	for _, sc := range cfg.Sensors {
		var opts []sensor.Option
		if sc.ReportDelta != nil {
			opts = append(opts, sensor.WithReportDelta(*sc.ReportDelta))
		}
		sensors = append(sensors, sensor.New(sc.EntityID, fileValue(sc.File, sc.Scale), sc.Unit, opts...))
	}
	log.Info("reporting sensors", "count", len(sensors), "interval", cfg.PollInterval)
	err := sensor.Poll(ctx, cfg.PollInterval, api, log.With("component", "sensor").Logger, sensors...)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// fileValue reads a number from path, e.g. a sysfs node, and multiplies it
// by scale. a zero scale leaves the number as is.
func fileValue(path string, scale float64) func() (float64, error) {
	if scale == 0 {
		scale = 1
	}
	return func() (float64, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %w", path, err)
		}
		return v * scale, nil
	}
}

// payload decodes the optional json argument of fire and call.
func payload(args []string) (interface{}, error) {
	if len(args) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(args[0]), &v); err != nil {
		return nil, fmt.Errorf("invalid json payload: %w", err)
	}
	return v, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
