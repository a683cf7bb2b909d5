package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/viper"

	"github.com/razeghi71/xmlq/engine"
)

// EnvPrefix prefixes every environment override, e.g. XMLQ_MAX_WORKERS.
const EnvPrefix = "XMLQ"

var ErrInvalidLogLevel = errors.New("invalid log level")

// Config is the CLI configuration.
type Config struct {
	ParallelThreshold int           `mapstructure:"parallel_threshold"`
	MaxWorkers        int           `mapstructure:"max_workers"`
	DefaultWorkers    int           `mapstructure:"default_workers"`
	Parallelism       int           `mapstructure:"parallelism"` // 0 detects the CPU count
	ProgressInterval  time.Duration `mapstructure:"progress_interval"`
	LogLevel          string        `mapstructure:"log_level"`
	LogFormat         string        `mapstructure:"log_format"` // logfmt or json
}

func setDefaults(v *viper.Viper) {
	def := engine.DefaultConfig()
	v.SetDefault("parallel_threshold", def.ParallelThreshold)
	v.SetDefault("max_workers", def.MaxWorkers)
	v.SetDefault("default_workers", def.DefaultWorkers)
	v.SetDefault("parallelism", 0)
	v.SetDefault("progress_interval", def.ProgressInterval)
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "logfmt")
}

// Load reads defaults, then file (if non-empty), then XMLQ_* environment
// variables. The file format follows its extension.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Engine returns the scheduler settings.
func (c Config) Engine() engine.Config {
	return engine.Config{
		ParallelThreshold: c.ParallelThreshold,
		MaxWorkers:        c.MaxWorkers,
		DefaultWorkers:    c.DefaultWorkers,
		ProgressInterval:  c.ProgressInterval,
	}
}

// Logger builds a leveled logger writing to w.
func (c Config) Logger(w io.Writer) (log.Logger, error) {
	var logger log.Logger
	if strings.EqualFold(c.LogFormat, "json") {
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	} else {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn", "":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	case "none":
		opt = level.AllowNone()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return level.NewFilter(logger, opt), nil
}
