package qrtone

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings loadable from a YAML file via LoadConfig.
// The demo send/receive commands do not load it: they take their settings
// from command-line flags (qrtone-send uses ParseECCLevel for --ecc). The
// library API itself never reads configuration from disk.
type Config struct {
	SampleRate   float64  `yaml:"sampleRate"`
	ECCLevel     ECCLevel `yaml:"-"`
	ECCLevelName string   `yaml:"eccLevel"`
	CRC          bool     `yaml:"crc"`
	LogLevel     string   `yaml:"logLevel"`
}

// DefaultConfig mirrors the reference modem's defaults: 44.1kHz, ECC
// Quality, CRC enabled.
func DefaultConfig() Config {
	return Config{
		SampleRate:   44100,
		ECCLevel:     ECCQuality,
		ECCLevelName: "Q",
		CRC:          true,
		LogLevel:     "info",
	}
}

// LoadConfig reads a YAML configuration file, applying DefaultConfig for
// any field left unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("qrtone: reading config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("qrtone: parsing config %q: %w", path, err)
	}
	level, err := ParseECCLevel(cfg.ECCLevelName)
	if err != nil {
		return Config{}, err
	}
	cfg.ECCLevel = level
	return cfg, nil
}

// ParseECCLevel converts an ECC level letter (L/M/Q/H) to an ECCLevel.
func ParseECCLevel(name string) (ECCLevel, error) {
	switch name {
	case "", "Q":
		return ECCQuality, nil
	case "L":
		return ECCLow, nil
	case "M":
		return ECCMedium, nil
	case "H":
		return ECCHigh, nil
	default:
		return 0, fmt.Errorf("%w: unknown ecc level %q", ErrIllegalArgument, name)
	}
}
