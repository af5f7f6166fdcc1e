package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// log is the package-global logger. It defaults to a no-op logger so
// library code can log unconditionally before Init runs (and in tests).
var log = zap.NewNop().Sugar()

// DefaultLogPath returns the default log file location at
// ~/.local/state/swifttrack/swifttrack.log. The UI owns stdout, so logs
// always go to a file.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "swifttrack.log")
	}
	return filepath.Join(home, ".local", "state", "swifttrack", "swifttrack.log")
}

// Init configures the global logger to write JSON-encoded entries to the
// given file with rotation. It returns a flush function to defer at exit.
func Init(path string) func() {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
	})

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		writer,
		zap.InfoLevel,
	)

	logger := zap.New(core, zap.AddCaller())
	log = logger.Sugar()

	return func() { _ = logger.Sync() }
}

// L returns the global sugared logger.
func L() *zap.SugaredLogger {
	return log
}
