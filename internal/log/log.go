package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"

	maxFileSizeMB  = 100
	maxFileBackups = 5
	maxFileAgeDays = 14
)

var (
	once   sync.Once
	logger zerolog.Logger
)

func level(env string) zerolog.Level {
	switch env {
	case EnvDevelopment:
		return zerolog.TraceLevel
	case EnvTest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitLogger builds the process logger once. An empty filepath logs to stdout only.
func InitLogger(filepath string, env string) zerolog.Logger {
	once.Do(func() {
		zerolog.DurationFieldUnit = time.Millisecond
		zerolog.ErrorFieldName = "error"
		zerolog.ErrorStackFieldName = "stack-trace"
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.LevelFieldName = "level"
		zerolog.MessageFieldName = "message"
		zerolog.TimestampFieldName = "timestamp"

		var stdout io.Writer = os.Stdout
		if env == EnvDevelopment {
			stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		}
		writers := []io.Writer{stdout}
		if filepath != "" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath,
				MaxSize:    maxFileSizeMB,
				MaxBackups: maxFileBackups,
				MaxAge:     maxFileAgeDays,
				Compress:   true,
			})
		}

		logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(level(env)).
			Hook(AttachTraceIdFromContext()).
			With().
			Timestamp().
			Caller().
			Stack().
			Str(KeyEnv, env).
			Int("pid", os.Getpid()).
			Logger()

		logger.Info().
			Str(KeyTag, "InitLogger").
			Str(KeyProcess, "InitLogger").
			Msg("initialized logger")
	})
	return logger
}
