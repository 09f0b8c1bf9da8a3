package orbitplane

import (
	"math"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	// ConfigEnv names the environment variable holding the directory of conf.toml (or conf.yaml).
	ConfigEnv = "ORBITPLANE_CONFIG"
	envPrefix = "ORBITPLANE"
)

// Config is the orbitplane configuration.
type Config struct {
	Scale     float64
	Reference Options
	Export    ExportConfig
	Horizons  HorizonsConfig
}

// HorizonsConfig holds the settings of the Horizons fetch.
type HorizonsConfig struct {
	URL     string
	Start   string
	Stop    string
	Step    string
	Timeout time.Duration
	Retries int
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("input.scale", DefaultScale)
	v.SetDefault("reference.mode", string(ModeReference))
	v.SetDefault("reference.position", 0)
	v.SetDefault("reference.velocity", AutoVelocityBody)
	v.SetDefault("reference.up", []float64{0, 0, 1})
	v.SetDefault("output.format", string(FormatLiteral))
	v.SetDefault("output.dimensions", 2)
	v.SetDefault("horizons.url", "https://ssd.jpl.nasa.gov/api/horizons.api")
	v.SetDefault("horizons.start", "2026-01-18")
	v.SetDefault("horizons.stop", "2026-02-17")
	v.SetDefault("horizons.step", "1 DAYS")
	v.SetDefault("horizons.timeout", 30*time.Second)
	v.SetDefault("horizons.retries", 3)
}

// NewViper returns a viper instance with the defaults, the environment overrides
// (ORBITPLANE_OUTPUT_FORMAT, ...) and the optional conf file from $ORBITPLANE_CONFIG or the
// working directory. A missing conf file is not an error.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("conf")
	if confPath := os.Getenv(ConfigEnv); confPath != "" {
		v.AddConfigPath(confPath)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.Wrap(err, "reading configuration")
		}
	}
	return v, nil
}

// LoadConfig reads the configuration from v and validates what every command needs.
// The Horizons settings are only checked by HorizonsConfig.Validate.
func LoadConfig(v *viper.Viper) (Config, error) {
	up, err := vectorFromConfig(v.Get("reference.up"))
	if err != nil {
		return Config{}, errors.Wrapf(ErrConfig, "reference.up: %s", err)
	}
	scale := v.GetFloat64("input.scale")
	conf := Config{
		Scale: scale,
		Reference: Options{
			Mode:         PlaneMode(strings.ToLower(v.GetString("reference.mode"))),
			PositionBody: v.GetInt("reference.position"),
			VelocityBody: v.GetInt("reference.velocity"),
			Up:           up,
		},
		Export: ExportConfig{
			Format:     Format(strings.ToLower(v.GetString("output.format"))),
			Dimensions: v.GetInt("output.dimensions"),
			Scale:      scale,
		},
		Horizons: HorizonsConfig{
			URL:     v.GetString("horizons.url"),
			Start:   v.GetString("horizons.start"),
			Stop:    v.GetString("horizons.stop"),
			Step:    v.GetString("horizons.step"),
			Timeout: v.GetDuration("horizons.timeout"),
			Retries: v.GetInt("horizons.retries"),
		},
	}
	return conf, conf.Validate()
}

// Validate validates the settings of the flattening: scale, reference plane and output.
func (c Config) Validate() error {
	if c.Scale <= 0 || math.IsInf(c.Scale, 0) || math.IsNaN(c.Scale) {
		return errors.Wrapf(ErrConfig, "input.scale must be positive and finite, got %g", c.Scale)
	}
	if err := c.Reference.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// Validate validates the settings of a Horizons fetch.
func (h HorizonsConfig) Validate() error {
	if h.URL == "" {
		return errors.Wrap(ErrConfig, "horizons.url must not be empty")
	}
	if h.Timeout <= 0 {
		return errors.Wrapf(ErrConfig, "horizons.timeout must be positive, got %s", h.Timeout)
	}
	if h.Retries < 0 {
		return errors.Wrapf(ErrConfig, "horizons.retries must not be negative, got %d", h.Retries)
	}
	return nil
}

// vectorFromConfig accepts a list of three numbers from TOML/YAML or a "x,y,z" / "x y z" string
// from the environment.
func vectorFromConfig(val interface{}) (Vector3, error) {
	var parts []interface{}
	switch t := val.(type) {
	case []interface{}:
		parts = t
	case []float64:
		for _, f := range t {
			parts = append(parts, f)
		}
	case []string:
		for _, s := range t {
			parts = append(parts, s)
		}
	case string:
		for _, s := range strings.FieldsFunc(t, func(r rune) bool { return r == ',' || r == ' ' }) {
			parts = append(parts, s)
		}
	default:
		return Vector3{}, errors.Errorf("unsupported value %v", val)
	}
	if len(parts) != 3 {
		return Vector3{}, errors.Errorf("need 3 components, got %d", len(parts))
	}
	comps := make([]float64, 3)
	for i, p := range parts {
		f, err := cast.ToFloat64E(p)
		if err != nil {
			return Vector3{}, err
		}
		comps[i] = f
	}
	return NewVector3(comps), nil
}
