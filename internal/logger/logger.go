package logger

import (
	"os"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	return SetLevel(zerolog.DebugLevel)
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(level)

	return logger
}

// ApplyLevel sets the process-wide minimum level from a name such as
// "warn". Loggers built earlier are filtered too.
func ApplyLevel(logger zerolog.Logger, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logger.Warn().Str("level", level).Msg("unknown log level, keeping current level")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

var Module = fx.Provide(New)
