package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig controls level, format and destination of every named logger.
type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Format     string `env:"LOG_FORMAT" envDefault:"text"` // text | json
	Output     string `env:"LOG_OUTPUT" envDefault:"stdout"` // stdout | file | both
	Path       string `env:"LOG_PATH" envDefault:"./logs"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"` // MB
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"7"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"7"` // days
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex
	config    *LogConfig
)

// ConfigFromEnv reads LOG_* variables, falling back to defaults.
func ConfigFromEnv() *LogConfig {
	cfg := &LogConfig{}
	if err := env.Parse(cfg); err != nil {
		return &LogConfig{Level: "info", Format: "text", Output: "stdout"}
	}
	return cfg
}

// Init sets the configuration used by loggers created afterwards.
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = ConfigFromEnv()
	}

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return err
		}
	}

	loggersMu.Lock()
	config = cfg
	loggers = make(map[string]*logrus.Logger)
	loggersMu.Unlock()
	return nil
}

// Get returns the named logger, creating it on first use.
func Get(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if config == nil {
		config = ConfigFromEnv()
	}

	if l, ok := loggers[name]; ok {
		return l
	}

	l := newLogger(name, config)
	loggers[name] = l
	return l
}

// App is the main application logger.
func App() *logrus.Logger {
	return Get("app")
}

// Audit receives one entry per state-changing business operation.
func Audit() *logrus.Logger {
	return Get("audit")
}

func newLogger(name string, cfg *LogConfig) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer
	if cfg.Output == "file" || cfg.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Path, name+".log"),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if cfg.Output == "stdout" || cfg.Output == "both" || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))

	return l
}
