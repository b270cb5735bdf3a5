// Package config loads the monitor configuration: capture timing, traffic
// mix, the page and inbox scenario, logging and the network surfaces.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"netmonsim/internal/analysis"
	"netmonsim/internal/capture"
	"netmonsim/internal/catalog"
	"netmonsim/internal/models"
	"netmonsim/internal/synth"
)

//go:embed default_scenario.yaml
var defaultScenario []byte

type Config struct {
	Capture  CaptureConfig `yaml:"capture"`
	Traffic  TrafficConfig `yaml:"traffic"`
	Anomaly  AnomalyConfig `yaml:"anomaly"`
	Scenario Scenario      `yaml:"scenario"`
	Log      LogConfig     `yaml:"log"`
	Server   ServerConfig  `yaml:"server"`
	Export   ExportConfig  `yaml:"export"`
}

type CaptureConfig struct {
	Interval       time.Duration `yaml:"interval"`
	QueueCapacity  int           `yaml:"queue_capacity"`
	WebStep        time.Duration `yaml:"web_step"`
	EmailStep      time.Duration `yaml:"email_step"`
	Alerts         bool          `yaml:"alerts"`
	AlertTTL       time.Duration `yaml:"alert_ttl"`
	RequireCapture bool          `yaml:"require_capture"`
}

type TrafficConfig struct {
	LocalAddress        string  `yaml:"local_address"`
	WebsiteShare        float64 `yaml:"website_share"`
	EmailShare          float64 `yaml:"email_share"`
	SystemShare         float64 `yaml:"system_share"`
	ResponseProbability float64 `yaml:"response_probability"`
	Seed                uint64  `yaml:"seed"`
}

type AnomalyConfig struct {
	HostCooldown  time.Duration `yaml:"host_cooldown"`
	RateThreshold int           `yaml:"rate_threshold"`
	RateWindow    time.Duration `yaml:"rate_window"`
}

// Scenario is the external page and email catalog plus optional system
// sources.
type Scenario struct {
	Pages  []models.Page          `yaml:"pages"`
	Emails []models.Email         `yaml:"emails"`
	System []models.TrafficSource `yaml:"system"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`   // used by the terminal UI, empty disables logging there
}

type ServerConfig struct {
	Addr         string  `yaml:"addr"`
	RedisURL     string  `yaml:"redis_url"`
	RedisChannel string  `yaml:"redis_channel"`
	CommandRate  float64 `yaml:"command_rate"` // websocket commands per second per client
	CommandBurst int     `yaml:"command_burst"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// Default returns the built-in configuration with the embedded scenario.
func Default() *Config {
	sc := synth.DefaultConfig()
	cc := capture.DefaultConfig()
	ac := analysis.DefaultConfig()

	cfg := &Config{
		Capture: CaptureConfig{
			Interval:       cc.Interval,
			QueueCapacity:  cc.QueueCapacity,
			WebStep:        cc.Burst.WebStep,
			EmailStep:      cc.Burst.EmailStep,
			Alerts:         cc.Burst.Alerts,
			AlertTTL:       cc.Burst.AlertTTL,
			RequireCapture: cc.Burst.RequireCapture,
		},
		Traffic: TrafficConfig{
			LocalAddress:        sc.LocalAddress,
			WebsiteShare:        sc.WebsiteShare,
			EmailShare:          sc.EmailShare,
			SystemShare:         sc.SystemShare,
			ResponseProbability: sc.ResponseProbability,
		},
		Anomaly: AnomalyConfig{
			HostCooldown:  ac.HostCooldown,
			RateThreshold: ac.RateThreshold,
			RateWindow:    ac.RateWindow,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			RedisChannel: "netmonsim:packets",
			CommandRate:  5,
			CommandBurst: 10,
		},
		Export: ExportConfig{Dir: "."},
	}
	if err := yaml.Unmarshal(defaultScenario, &cfg.Scenario); err != nil {
		panic(fmt.Sprintf("embedded scenario: %v", err))
	}
	return cfg
}

// Load overlays the YAML file at path onto the defaults. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges. It reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Capture.Interval <= 0 {
		errs = append(errs, errors.New("capture.interval must be positive"))
	}
	if c.Capture.QueueCapacity <= 0 {
		errs = append(errs, errors.New("capture.queue_capacity must be positive"))
	}
	if c.Capture.WebStep < 0 || c.Capture.EmailStep < 0 || c.Capture.AlertTTL < 0 {
		errs = append(errs, errors.New("capture burst timings must not be negative"))
	}

	t := c.Traffic
	if _, err := netip.ParseAddr(t.LocalAddress); err != nil {
		errs = append(errs, fmt.Errorf("traffic.local_address: %w", err))
	}
	if t.WebsiteShare < 0 || t.EmailShare < 0 || t.SystemShare < 0 {
		errs = append(errs, errors.New("traffic shares must not be negative"))
	} else if t.WebsiteShare+t.EmailShare+t.SystemShare == 0 {
		errs = append(errs, errors.New("traffic shares must not all be zero"))
	}
	if t.ResponseProbability < 0 || t.ResponseProbability > 1 {
		errs = append(errs, fmt.Errorf("traffic.response_probability %v out of [0,1]", t.ResponseProbability))
	}

	for i, p := range c.Scenario.Pages {
		if p.URL == "" {
			errs = append(errs, fmt.Errorf("scenario.pages[%d]: url is required", i))
		}
	}
	for i, e := range c.Scenario.Emails {
		if e.Sender == "" {
			errs = append(errs, fmt.Errorf("scenario.emails[%d]: sender is required", i))
		}
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", c.Log.Format))
	}
	if c.Server.CommandRate < 0 || c.Server.CommandBurst < 0 {
		errs = append(errs, errors.New("server command limits must not be negative"))
	}
	return errors.Join(errs...)
}

// Catalog builds the traffic source catalog from the scenario.
func (c *Config) Catalog() *catalog.Catalog {
	return catalog.Build(c.Scenario.Pages, c.Scenario.Emails, c.Scenario.System)
}

// SynthConfig returns the packet synthesizer settings.
func (c *Config) SynthConfig() synth.Config {
	return synth.Config{
		LocalAddress:        c.Traffic.LocalAddress,
		WebsiteShare:        c.Traffic.WebsiteShare,
		EmailShare:          c.Traffic.EmailShare,
		SystemShare:         c.Traffic.SystemShare,
		ResponseProbability: c.Traffic.ResponseProbability,
		Seed:                c.Traffic.Seed,
	}
}

// MonitorConfig returns the capture session and burst settings.
func (c *Config) MonitorConfig() capture.Config {
	return capture.Config{
		Interval:      c.Capture.Interval,
		QueueCapacity: c.Capture.QueueCapacity,
		Burst: capture.BurstConfig{
			WebStep:        c.Capture.WebStep,
			EmailStep:      c.Capture.EmailStep,
			RequireCapture: c.Capture.RequireCapture,
			Alerts:         c.Capture.Alerts,
			AlertTTL:       c.Capture.AlertTTL,
		},
	}
}

// DetectorConfig returns the anomaly detector settings.
func (c *Config) DetectorConfig() analysis.Config {
	ac := analysis.DefaultConfig()
	ac.HostCooldown = c.Anomaly.HostCooldown
	ac.RateThreshold = c.Anomaly.RateThreshold
	if c.Anomaly.RateWindow > 0 {
		ac.RateWindow = c.Anomaly.RateWindow
	}
	return ac
}
