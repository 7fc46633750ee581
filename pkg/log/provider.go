package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	id3errors "github.com/YuminosukeSato/id3/pkg/errors"
)

// ZerologProvider is the default LoggerProvider. Every logger it hands out
// shares one zerolog.Logger and reads the provider level on each call, so
// SetLevel takes effect for loggers that already exist.
type ZerologProvider struct {
	mu    sync.RWMutex
	base  zerolog.Logger
	level Level
}

// NewZerologProvider creates a provider writing JSON lines to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	if w == nil {
		w = os.Stderr
	}
	return &ZerologProvider{
		base:  zerolog.New(w).With().Timestamp().Logger(),
		level: level,
	}
}

// NewConsoleProvider creates a provider that writes human readable lines,
// used by the CLI when stderr is a terminal.
func NewConsoleProvider(w io.Writer, level Level) *ZerologProvider {
	if w == nil {
		w = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return &ZerologProvider{
		base:  zerolog.New(cw).With().Timestamp().Logger(),
		level: level,
	}
}

// GetLogger implements LoggerProvider.
func (p *ZerologProvider) GetLogger() Logger {
	return &zerologLogger{p: p, zl: p.base}
}

// GetLoggerWithName implements LoggerProvider.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{p: p, zl: p.base.With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.
func (p *ZerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = level
}

func (p *ZerologProvider) currentLevel() Level {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

// warn writes a library warning. Warnings implementing
// zerolog.LogObjectMarshaler contribute their own fields.
func (p *ZerologProvider) warn(w error) {
	if p.currentLevel() > LevelWarn {
		return
	}
	ev := p.base.Warn().Str(ComponentKey, "warnings")
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		ev = ev.EmbedObject(m)
	}
	ev.Msg(w.Error())
}

type zerologLogger struct {
	p  *ZerologProvider
	zl zerolog.Logger
}

func (l *zerologLogger) Debug(msg string, fields ...any) {
	l.write(LevelDebug, msg, fields)
}

func (l *zerologLogger) Info(msg string, fields ...any) {
	l.write(LevelInfo, msg, fields)
}

func (l *zerologLogger) Warn(msg string, fields ...any) {
	l.write(LevelWarn, msg, fields)
}

func (l *zerologLogger) Error(msg string, fields ...any) {
	l.write(LevelError, msg, fields)
}

func (l *zerologLogger) With(fields ...any) Logger {
	return &zerologLogger{p: l.p, zl: l.zl.With().Fields(normalizeFields(fields)).Logger()}
}

func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return level >= l.p.currentLevel()
}

func (l *zerologLogger) write(level Level, msg string, fields []any) {
	if !l.Enabled(context.Background(), level) {
		return
	}
	ev := l.zl.WithLevel(toZerologLevel(level))
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			ev = ev.AnErr(ErrorKey, err)
			if st := extractStacktrace(err); st != "" {
				ev = ev.Str(StacktraceKey, st)
			}
			fields = fields[1:]
		}
	}
	ev.Fields(normalizeFields(fields)).Msg(msg)
}

// normalizeFields turns a key/value list into the form zerolog expects.
// Non-string keys are formatted; a dangling key gets a nil value.
func normalizeFields(fields []any) []any {
	out := make([]any, 0, len(fields)+1)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		var value any
		if i+1 < len(fields) {
			value = fields[i+1]
		}
		out = append(out, key, value)
	}
	return out
}

// extractStacktrace pulls the stack recorded by cockroachdb/errors, if any.
func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err)
	var parts []string
	for _, d := range details.SafeDetails {
		if strings.Contains(d, ".go:") {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, "\n")
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") into a
// Level. Matching ignores case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, id3errors.NewValidationError("log.level", "unknown log level", s)
	}
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelWarn)
)

func init() {
	id3errors.SetZerologWarnFunc(routeWarning)
}

func routeWarning(w error) {
	providerMu.RLock()
	p := provider
	providerMu.RUnlock()

	if zp, ok := p.(*ZerologProvider); ok {
		zp.warn(w)
		return
	}
	p.GetLoggerWithName("warnings").Warn(w.Error())
}

// SetProvider replaces the global provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetProvider returns the global provider.
func GetProvider() LoggerProvider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

// GetLogger returns a logger from the global provider.
func GetLogger() Logger {
	return GetProvider().GetLogger()
}

// GetLoggerWithName returns a component logger from the global provider.
func GetLoggerWithName(name string) Logger {
	return GetProvider().GetLoggerWithName(name)
}

// SetLevel sets the level of the global provider.
func SetLevel(level Level) {
	GetProvider().SetLevel(level)
}

// Setup installs a zerolog provider writing to w at the named level.
func Setup(level string, w io.Writer, console bool) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if console {
		SetProvider(NewConsoleProvider(w, lvl))
	} else {
		SetProvider(NewZerologProvider(w, lvl))
	}
	return nil
}

// SetOutput redirects the global provider to w as JSON lines, keeping the
// current level when the provider is a ZerologProvider.
func SetOutput(w io.Writer) {
	level := LevelWarn
	if zp, ok := GetProvider().(*ZerologProvider); ok {
		level = zp.currentLevel()
	}
	SetProvider(NewZerologProvider(w, level))
}
