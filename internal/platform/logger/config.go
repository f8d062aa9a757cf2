package logger

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn or error
	Format string `mapstructure:"format"` // json or console
}

func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  "info",
		Format: "json",
	}
}

func (c *LoggerConfig) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
