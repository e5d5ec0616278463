// Package logger provides the process-wide structured logger used by every
// storage and engine package.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// Logger is the shared instance every package logs through.
	Logger *logrus.Logger
)

// Config controls where log output goes and at what level.
type Config struct {
	LogPath  string
	LogLevel string
}

// textFormatter prints "[time] [LEVL] (caller) message".
type textFormatter struct {
	TimestampFormat string
}

func (f *textFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)
	level := strings.ToUpper(entry.Level.String())
	if len(level) > 4 {
		level = level[:4]
	}
	caller := findCaller()

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(timestamp)
	b.WriteString("] [")
	b.WriteString(level)
	b.WriteString("] (")
	b.WriteString(caller)
	b.WriteString(") ")
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

// findCaller walks the stack past the logging framework's own frames.
func findCaller() string {
	for i := 2; i < 20; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.Contains(file, "/logrus/") || strings.Contains(file, "logger.go") {
			continue
		}
		funcName := runtime.FuncForPC(pc).Name()
		return filepath.Base(file) + ":" + funcName[strings.LastIndex(funcName, ".")+1:] + ":" + itoa(line)
	}
	return "unknown:unknown:0"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

// Init sets up Logger per cfg. Safe to call once at process startup; a zero
// Config logs to stdout at info level.
func Init(cfg Config) error {
	Logger = logrus.New()
	Logger.SetFormatter(&textFormatter{TimestampFormat: "15:04:05 MST 2006/01/02"})
	Logger.SetLevel(parseLevel(cfg.LogLevel))

	if cfg.LogPath == "" {
		Logger.SetOutput(os.Stdout)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		Logger.SetOutput(os.Stdout)
		Logger.Warnf("could not create log directory, falling back to stdout: %v", err)
		return nil
	}
	f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Logger.SetOutput(os.Stdout)
		Logger.Warnf("could not open log file %s, falling back to stdout: %v", cfg.LogPath, err)
		return nil
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, f))
	return nil
}

func init() {
	// A usable default so packages can log before Init is called (e.g. in tests).
	Logger = logrus.New()
	Logger.SetFormatter(&textFormatter{TimestampFormat: "15:04:05 MST 2006/01/02"})
	Logger.SetOutput(os.Stdout)
}
