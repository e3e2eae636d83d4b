package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"unigps/internal/stream"
	"unigps/internal/uni"
)

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Reader  ReaderConfig  `yaml:"reader"`
	Record  RecordConfig  `yaml:"record"`
	Replay  ReplayConfig  `yaml:"replay"`
	Relay   RelayConfig   `yaml:"relay"`
	Metrics MetricsConfig `yaml:"metrics"`
	Reset   ResetConfig   `yaml:"reset"`
	Log     LogConfig     `yaml:"log"`
}

// SourceConfig selects where receiver bytes come from.
type SourceConfig struct {
	// Type is serial, tcp or file.
	Type   string `yaml:"type"`
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`
	Addr   string `yaml:"addr"`
	Path   string `yaml:"path"`
}

type ReaderConfig struct {
	Protocols []string `yaml:"protocols"`
	Mode      string   `yaml:"mode"`
	ErrorMode string   `yaml:"error_mode"`
	Validate  *bool    `yaml:"validate"`
	Bitfields *bool    `yaml:"bitfields"`
	Parsing   *bool    `yaml:"parsing"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type ReplayConfig struct {
	Enable bool    `yaml:"enable"`
	Path   string  `yaml:"path"`
	Speed  float64 `yaml:"speed"`
	Loop   bool    `yaml:"loop"`
}

type RelayConfig struct {
	Enable bool   `yaml:"enable"`
	Dest   string `yaml:"dest"`
}

type MetricsConfig struct {
	// Listen is the HTTP address serving /metrics. Empty disables it.
	Listen string `yaml:"listen"`
}

// ResetConfig describes the GPIO line wired to the receiver RESET pin.
type ResetConfig struct {
	Enable bool          `yaml:"enable"`
	Chip   string        `yaml:"chip"`
	Line   string        `yaml:"line"`
	Pulse  time.Duration `yaml:"pulse"`
	Settle time.Duration `yaml:"settle"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Replay.Enable {
		if cfg.Replay.Path == "" {
			return fmt.Errorf("replay.path is required when replay.enable is true")
		}
		if cfg.Replay.Speed == 0 {
			cfg.Replay.Speed = 1
		}
		if cfg.Replay.Speed < 0 {
			return fmt.Errorf("replay.speed must be > 0")
		}
	} else {
		switch cfg.Source.Type {
		case "":
			return fmt.Errorf("source.type is required")
		case "serial":
			if cfg.Source.Device == "" {
				return fmt.Errorf("source.device is required when source.type is 'serial'")
			}
			if cfg.Source.Baud <= 0 {
				cfg.Source.Baud = 115200
			}
		case "tcp":
			if cfg.Source.Addr == "" {
				return fmt.Errorf("source.addr is required when source.type is 'tcp'")
			}
		case "file":
			if cfg.Source.Path == "" {
				return fmt.Errorf("source.path is required when source.type is 'file'")
			}
		default:
			return fmt.Errorf("source.type must be one of serial, tcp, file")
		}
	}

	if cfg.Record.Enable {
		if cfg.Record.Path == "" {
			return fmt.Errorf("record.path is required when record.enable is true")
		}
		if cfg.Replay.Enable {
			return fmt.Errorf("record and replay cannot both be enabled")
		}
	}

	if cfg.Relay.Enable && cfg.Relay.Dest == "" {
		return fmt.Errorf("relay.dest is required when relay.enable is true")
	}

	if cfg.Reset.Enable {
		if cfg.Reset.Line == "" {
			return fmt.Errorf("reset.line is required when reset.enable is true")
		}
		if cfg.Reset.Pulse <= 0 {
			cfg.Reset.Pulse = 100 * time.Millisecond
		}
		if cfg.Reset.Settle <= 0 {
			cfg.Reset.Settle = 500 * time.Millisecond
		}
	}

	// Reader defaults.
	if cfg.Reader.Mode == "" {
		cfg.Reader.Mode = "get"
	}
	if _, err := uni.ParseMode(cfg.Reader.Mode); err != nil {
		return fmt.Errorf("reader.mode must be one of get, set, poll, setpoll")
	}
	if cfg.Reader.ErrorMode == "" {
		cfg.Reader.ErrorMode = "log"
	}
	if _, err := stream.ParseErrorMode(cfg.Reader.ErrorMode); err != nil {
		return fmt.Errorf("reader.error_mode must be one of ignore, log, raise")
	}
	if _, err := stream.ParseProtocols(cfg.Reader.Protocols); err != nil {
		return fmt.Errorf("reader.protocols: %w", err)
	}
	cfg.Reader.Validate = defaultTrue(cfg.Reader.Validate)
	cfg.Reader.Bitfields = defaultTrue(cfg.Reader.Bitfields)
	cfg.Reader.Parsing = defaultTrue(cfg.Reader.Parsing)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}

func defaultTrue(b *bool) *bool {
	if b != nil {
		return b
	}
	t := true
	return &t
}

// StreamOptions translates the reader section into stream options.
func (c ReaderConfig) StreamOptions() ([]stream.Option, error) {
	mode, err := uni.ParseMode(c.Mode)
	if err != nil {
		return nil, err
	}
	errMode, err := stream.ParseErrorMode(c.ErrorMode)
	if err != nil {
		return nil, err
	}
	protocols, err := stream.ParseProtocols(c.Protocols)
	if err != nil {
		return nil, err
	}
	opts := []stream.Option{
		stream.WithMode(mode),
		stream.WithErrorMode(errMode),
		stream.WithProtocols(protocols),
	}
	if c.Validate != nil {
		opts = append(opts, stream.WithValidation(*c.Validate))
	}
	if c.Bitfields != nil {
		opts = append(opts, stream.WithBitfields(*c.Bitfields))
	}
	if c.Parsing != nil {
		opts = append(opts, stream.WithParsing(*c.Parsing))
	}
	return opts, nil
}
