// Package log is a small leveled key/value logger that writes to stderr
// only. Stdout is reserved for the operation results themselves: when
// the engine is driven by an MCP client, anything the logger prints to
// stdout would corrupt the protocol stream. Setting REDNOTE_QUIET=true
// suppresses everything below Error for clients that also choke on
// chatty stderr.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// QuietEnv is the environment variable that silences Debug/Info/Warn.
// Checked on every call, never cached, so a host process can flip it
// after the logger is constructed.
const QuietEnv = "REDNOTE_QUIET"

// Logger writes leveled key/value entries to a single writer.
type Logger struct {
	mu         sync.Mutex
	level      Level
	out        io.Writer
	baseFields []field
}

type field struct {
	key   string
	value any
}

// New creates a logger with the given minimum level, writing to stderr.
func New(level Level) *Logger {
	return &Logger{level: level, out: os.Stderr}
}

// NewWithWriter creates a logger with a custom writer. Useful for tests.
func NewWithWriter(level Level, w io.Writer) *Logger {
	return &Logger{level: level, out: w}
}

// SetLevel changes the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// With returns a child logger carrying additional base fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	child := &Logger{level: l.level, out: l.out}
	child.baseFields = append(child.baseFields, l.baseFields...)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			child.baseFields = append(child.baseFields, field{key, keysAndValues[i+1]})
		}
	}
	return child
}

func quiet() bool {
	return os.Getenv(QuietEnv) == "true"
}

func (l *Logger) log(level Level, msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.level.Enables(level) {
		return
	}
	if quiet() && level < Error {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %s", time.Now().Format("15:04:05"), level, msg)

	capacity := len(l.baseFields) + len(keysAndValues)/2
	fields := make(map[string]any, capacity)
	order := make([]string, 0, capacity)
	for _, f := range l.baseFields {
		if _, seen := fields[f.key]; !seen {
			order = append(order, f.key)
		}
		fields[f.key] = f.value
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if _, seen := fields[key]; !seen {
			order = append(order, key)
		}
		fields[key] = keysAndValues[i+1]
	}
	for _, k := range order {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	b.WriteByte('\n')

	io.WriteString(l.out, b.String())
}

// Debug logs at Debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.log(Debug, msg, keysAndValues...)
}

// Info logs at Info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.log(Info, msg, keysAndValues...)
}

// Warn logs at Warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.log(Warn, msg, keysAndValues...)
}

// Error logs at Error level. Always emitted, quiet mode included.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.log(Error, msg, keysAndValues...)
}

// --- Global logger ---

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
)

// SetDefault sets the global default logger.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Default returns the global logger, creating a stderr Info logger if
// none was set.
func Default() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()

	if l == nil {
		l = New(Info)
		SetDefault(l)
	}
	return l
}

// GlobalDebug logs at Debug level using the global logger.
func GlobalDebug(msg string, keysAndValues ...any) {
	Default().Debug(msg, keysAndValues...)
}

// GlobalInfo logs at Info level using the global logger.
func GlobalInfo(msg string, keysAndValues ...any) {
	Default().Info(msg, keysAndValues...)
}

// GlobalWarn logs at Warn level using the global logger.
func GlobalWarn(msg string, keysAndValues ...any) {
	Default().Warn(msg, keysAndValues...)
}

// GlobalError logs at Error level using the global logger.
func GlobalError(msg string, keysAndValues ...any) {
	Default().Error(msg, keysAndValues...)
}
