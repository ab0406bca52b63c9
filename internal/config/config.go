package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/vango-dev/hermes/internal/errors"
	"github.com/vango-dev/hermes/pkg/toast"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hermes.json"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "HERMES_"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultNamespace is the default metrics namespace and tracer name.
	DefaultNamespace = "hermes"
)

// Config represents the complete hermes.json configuration.
type Config struct {
	// Host is the address the live server binds to.
	Host string `koanf:"host" json:"host" validate:"required"`

	// Port is the live server port.
	Port int `koanf:"port" json:"port" validate:"min=1,max=65535"`

	// MaxNotifications caps the visible queue. Zero means unbounded.
	MaxNotifications int `koanf:"max_notifications" json:"max_notifications" validate:"min=0"`

	// ListClasses are applied to the notification list element.
	ListClasses []string `koanf:"list_classes" json:"list_classes,omitempty"`

	// Styles maps a notification type to its classes and hold time.
	Styles map[string]StyleConfig `koanf:"styles" json:"styles" validate:"dive,keys,required,endkeys"`

	// Metrics configures the Prometheus observer.
	Metrics MetricsConfig `koanf:"metrics" json:"metrics"`

	// Tracing configures the OpenTelemetry observer.
	Tracing TracingConfig `koanf:"tracing" json:"tracing"`

	configPath string
}

// StyleConfig is the file form of a toast.Style.
type StyleConfig struct {
	Shared []string `koanf:"shared" json:"shared,omitempty"`
	In     []string `koanf:"in" json:"in,omitempty"`
	Paused []string `koanf:"paused" json:"paused,omitempty"`
	Out    []string `koanf:"out" json:"out,omitempty"`

	// PauseTime is the hold in milliseconds. Zero selects the default.
	PauseTime int `koanf:"pause_time" json:"pause_time,omitempty" validate:"min=0"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled" json:"enabled"`
	Namespace string `koanf:"namespace" json:"namespace" validate:"required_if=Enabled true"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `koanf:"enabled" json:"enabled"`
	TracerName string `koanf:"tracer_name" json:"tracer_name" validate:"required_if=Enabled true"`
}

// defaults returns the flattened default values.
func defaults() map[string]any {
	d := map[string]any{
		"host":                DefaultHost,
		"port":                DefaultPort,
		"max_notifications":   0,
		"list_classes":        []string{"toasts"},
		"metrics.enabled":     true,
		"metrics.namespace":   DefaultNamespace,
		"tracing.enabled":     false,
		"tracing.tracer_name": DefaultNamespace,
	}
	for typ, s := range toast.DefaultStyles() {
		prefix := "styles." + typ + "."
		d[prefix+"shared"] = s.Shared
		d[prefix+"in"] = s.Enter
		d[prefix+"paused"] = s.Paused
		d[prefix+"out"] = s.Exit
		d[prefix+"pause_time"] = int(toast.DefaultHold / time.Millisecond)
	}
	return d
}

// New creates a Config with default values.
func New() *Config {
	cfg, err := load("", false)
	if err != nil {
		// Defaults are static and always valid.
		panic(err)
	}
	return cfg
}

// Load reads configuration from path, layered over defaults and under
// HERMES_ environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, withEnv bool) (*Config, error) {
	k := koanf.New(".")

	// Apply defaults first
	d := defaults()
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := k.Set(key, d[key]); err != nil {
			return nil, errors.New("H021").Wrap(err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New("H020").
					WithDetail("No " + ConfigFileName + " found at " + path).
					WithSuggestion("Run 'hermes init' to write a default configuration")
			}
			return nil, errors.New("H020").Wrap(err)
		}

		fk := koanf.New(".")
		if err := fk.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, errors.New("H021").
				WithDetail("Failed to parse " + path + ": " + err.Error()).
				WithSuggestion("Check that " + path + " is valid JSON")
		}
		// A styles object replaces the defaults instead of merging.
		if fk.Exists("styles") {
			k.Delete("styles")
		}
		if err := k.Merge(fk); err != nil {
			return nil, errors.New("H021").Wrap(err)
		}
	}

	// Override with environment variables (highest priority)
	if withEnv {
		if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
			return nil, errors.New("H021").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.New("H021").
			WithDetail("Failed to decode configuration: " + err.Error())
	}
	cfg.configPath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform converts environment variable names to config keys.
// Example: HERMES_METRICS__ENABLED -> metrics.enabled
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

var validate = validator.New()

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
		return errors.New("H022").
			WithDetail(strings.Join(msgs, "; ")).
			Wrap(err)
	}
	return nil
}

// ToastStyles converts the configured styles to toast.Style values.
func (c *Config) ToastStyles() map[string]toast.Style {
	styles := make(map[string]toast.Style, len(c.Styles))
	for typ, s := range c.Styles {
		styles[typ] = toast.Style{
			Shared: s.Shared,
			Enter:  s.In,
			Paused: s.Paused,
			Exit:   s.Out,
			Hold:   time.Duration(s.PauseTime) * time.Millisecond,
		}
	}
	return styles
}

// Address returns the host:port string for the live server.
func (c *Config) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// URL returns the live server URL.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// SaveTo writes the configuration as indented JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("H021").Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H021").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// Discover returns the path of hermes.json in dir, or "" if there is none.
func Discover(dir string) string {
	if Exists(dir) {
		return filepath.Join(dir, ConfigFileName)
	}
	return ""
}
