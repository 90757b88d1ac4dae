package logger

import (
	"os"
	"strings"

	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the global logger instance. It is a no-op until InitLogger
	// runs, so packages may build their component loggers at any time.
	Log *zap.Logger = zap.NewNop()

	// level is shared by every logger built from Log so SetLevel applies
	// to component loggers created earlier.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Stages with their own logging defaults
const (
	stageDev  = "dev"
	stageTest = "test"
)

// lambdaFunctionEnv is set by the Lambda runtime.
const lambdaFunctionEnv = "AWS_LAMBDA_FUNCTION_NAME"

// LogComponent represents different system components for filtering
type LogComponent string

const (
	ComponentAPI        LogComponent = "api"
	ComponentDB         LogComponent = "database"
	ComponentAuth       LogComponent = "auth"
	ComponentSession    LogComponent = "session"
	ComponentMultisig   LogComponent = "multisig"
	ComponentDispatch   LogComponent = "dispatch"
	ComponentAudit      LogComponent = "audit"
	ComponentBundler    LogComponent = "bundler"
	ComponentMiddleware LogComponent = "middleware"
	ComponentServer     LogComponent = "server"
)

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level       string `json:"level"`
	Stage       string `json:"stage"`
	EnableJSON  bool   `json:"enable_json"`
	EnableColor bool   `json:"enable_color"`
}

// ConfigForStage returns the logging defaults of a stage. prod and dev run
// behind CloudWatch and log JSON, as does anything inside Lambda. The test
// stage logs warnings and above unless LOG_LEVEL says otherwise.
func ConfigForStage(stage string, getenv func(string) string) LoggerConfig {
	defaultLevel := "info"
	if stage == stageTest {
		defaultLevel = "warn"
	}
	lvl := getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = defaultLevel
	}

	jsonOutput := stage == constants.ProdEnvironment || stage == stageDev || getenv(lambdaFunctionEnv) != ""
	return LoggerConfig{
		Level:       lvl,
		Stage:       stage,
		EnableJSON:  jsonOutput,
		EnableColor: !jsonOutput && stage != stageTest,
	}
}

// InitLogger initializes the logger with the appropriate configuration
// based on the provided stage.
func InitLogger(stage string) {
	InitLoggerWithConfig(ConfigForStage(stage, os.Getenv))
}

// InitLoggerWithConfig initializes the logger with custom configuration
func InitLoggerWithConfig(config LoggerConfig) {
	var zapConfig zap.Config
	level.SetLevel(ParseLevel(config.Level))

	if config.EnableJSON {
		// JSON structured logging for CloudWatch
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.MessageKey = "message"
		zapConfig.EncoderConfig.LevelKey = "level"
		zapConfig.EncoderConfig.CallerKey = "caller"
		zapConfig.EncoderConfig.StacktraceKey = "stacktrace"
	} else {
		// Human-readable console logging
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		if config.EnableColor {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		zapConfig.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	zapConfig.Level = level
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.InitialFields = map[string]interface{}{
		"service": constants.ServiceName,
		"stage":   config.Stage,
	}

	zapConfig.DisableCaller = false
	// Stacktraces only outside prod, or in prod at debug level
	zapConfig.DisableStacktrace = config.Stage == constants.ProdEnvironment && level.Level() > zapcore.DebugLevel

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	Log = logger
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case constants.ErrorLevel:
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// SetLevel changes the level of the global logger and every component
// logger derived from it.
func SetLevel(name string) {
	level.SetLevel(ParseLevel(name))
}

// ForComponent returns a child of the global logger tagged with the component.
// It reads Log at call time, so callers that construct services before
// InitLogger runs still get the no-op logger rather than a nil pointer.
func ForComponent(component LogComponent) *zap.Logger {
	return Log.With(zap.String("component", string(component)))
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zapcore.Field) {
	Log.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zapcore.Field) {
	Log.Error(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zapcore.Field) {
	Log.Debug(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zapcore.Field) {
	Log.Warn(msg, fields...)
}

// Fatal logs a message at FatalLevel
// and then calls os.Exit(1)
func Fatal(msg string, fields ...zapcore.Field) {
	Log.Fatal(msg, fields...)
}

// With creates a child logger and adds structured context to it
func With(fields ...zapcore.Field) *zap.Logger {
	return Log.With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}
