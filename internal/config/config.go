package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSamplingRate    = 44100.0
	DefaultGainDB          = 0.0
	DefaultEpsilon         = 1e-9
	DefaultBranchTolerance = 1e-10
	DefaultSliderMaxDB     = 36.0
	DefaultSliderStepDB    = 0.1
	DefaultGainFile        = "output/gain.csv"
	DefaultSweepSteps      = 145
	DefaultLogLevel        = "info"
	EnvPrefix              = "HOWLSIM"
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Plant        string       `yaml:"plant" mapstructure:"plant"`
	Preset       string       `yaml:"preset" mapstructure:"preset"`
	SamplingRate float64      `yaml:"sampling_rate" mapstructure:"sampling_rate"`
	GainDB       float64      `yaml:"gain_db" mapstructure:"gain_db"`
	Inverted     bool         `yaml:"inverted" mapstructure:"inverted"`
	GainFile     string       `yaml:"gain_file" mapstructure:"gain_file"`
	LogLevel     string       `yaml:"log_level" mapstructure:"log_level"`
	Numerics     NumericsConf `yaml:"numerics" mapstructure:"numerics"`
	Slider       SliderConf   `yaml:"slider" mapstructure:"slider"`
	Sweep        SweepConf    `yaml:"sweep" mapstructure:"sweep"`
}

type NumericsConf struct {
	Epsilon         float64 `yaml:"epsilon" mapstructure:"epsilon"`
	BranchTolerance float64 `yaml:"branch_tolerance" mapstructure:"branch_tolerance"`
}

type SliderConf struct {
	MaxDB  float64 `yaml:"max_db" mapstructure:"max_db"`
	StepDB float64 `yaml:"step_db" mapstructure:"step_db"`
}

type SweepConf struct {
	MinDB   float64 `yaml:"min_db" mapstructure:"min_db"`
	MaxDB   float64 `yaml:"max_db" mapstructure:"max_db"`
	Steps   int     `yaml:"steps" mapstructure:"steps"`
	Workers int     `yaml:"workers" mapstructure:"workers"`
}

func DefaultConfig() *Config {
	return &Config{
		SamplingRate: DefaultSamplingRate,
		GainDB:       DefaultGainDB,
		GainFile:     DefaultGainFile,
		LogLevel:     DefaultLogLevel,
		Numerics: NumericsConf{
			Epsilon:         DefaultEpsilon,
			BranchTolerance: DefaultBranchTolerance,
		},
		Slider: SliderConf{
			MaxDB:  DefaultSliderMaxDB,
			StepDB: DefaultSliderStepDB,
		},
		Sweep: SweepConf{
			MinDB: -DefaultSliderMaxDB,
			MaxDB: DefaultSliderMaxDB,
			Steps: DefaultSweepSteps,
		},
	}
}

// Load reads the config file at path (optional when empty) and applies
// HOWLSIM_* environment overrides, e.g. HOWLSIM_SAMPLING_RATE or
// HOWLSIM_SLIDER_MAX_DB.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case !(c.SamplingRate > 0) || math.IsInf(c.SamplingRate, 0):
		return fmt.Errorf("%w: sampling_rate %g", ErrInvalidConfig, c.SamplingRate)
	case !(c.Numerics.Epsilon > 0):
		return fmt.Errorf("%w: numerics.epsilon %g", ErrInvalidConfig, c.Numerics.Epsilon)
	case c.Numerics.BranchTolerance < 0:
		return fmt.Errorf("%w: numerics.branch_tolerance %g", ErrInvalidConfig, c.Numerics.BranchTolerance)
	case !(c.Slider.MaxDB > 0) || !(c.Slider.StepDB > 0):
		return fmt.Errorf("%w: slider range %g step %g", ErrInvalidConfig, c.Slider.MaxDB, c.Slider.StepDB)
	case c.Sweep.Steps < 2 || c.Sweep.MaxDB <= c.Sweep.MinDB:
		return fmt.Errorf("%w: sweep %g..%g dB in %d steps", ErrInvalidConfig, c.Sweep.MinDB, c.Sweep.MaxDB, c.Sweep.Steps)
	}
	return nil
}

// Clamp limits a dB value to [-MaxDB, MaxDB].
func (s SliderConf) Clamp(db float64) float64 {
	return math.Max(-s.MaxDB, math.Min(s.MaxDB, db))
}

// setDefaults registers every key so AutomaticEnv can override it even when
// the file does not mention it.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("plant", d.Plant)
	v.SetDefault("preset", d.Preset)
	v.SetDefault("sampling_rate", d.SamplingRate)
	v.SetDefault("gain_db", d.GainDB)
	v.SetDefault("inverted", d.Inverted)
	v.SetDefault("gain_file", d.GainFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("numerics.epsilon", d.Numerics.Epsilon)
	v.SetDefault("numerics.branch_tolerance", d.Numerics.BranchTolerance)
	v.SetDefault("slider.max_db", d.Slider.MaxDB)
	v.SetDefault("slider.step_db", d.Slider.StepDB)
	v.SetDefault("sweep.min_db", d.Sweep.MinDB)
	v.SetDefault("sweep.max_db", d.Sweep.MaxDB)
	v.SetDefault("sweep.steps", d.Sweep.Steps)
	v.SetDefault("sweep.workers", d.Sweep.Workers)
}
