package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// ErrFmtHandler is a slog handler that adds the cockroachdb/errors stack trace
// of an "error" attribute as a separate attribute.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps a slog handler so that records carrying an error
// attribute also carry StacktraceKey.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacktrace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			stacktrace = extractStacktrace(err)
		}
		return false
	})
	if stacktrace != "" {
		r.AddAttrs(slog.String(StacktraceKey, stacktrace))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// cloudReplaceAttr renames the standard slog keys to the Cloud Logging format.
func cloudReplaceAttr(groups []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.LevelKey:
		return slog.Attr{Key: "severity", Value: attr.Value}
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: attr.Value}
	case slog.SourceKey:
		return slog.Attr{Key: "logging.googleapis.com/sourceLocation", Value: attr.Value}
	}
	return attr
}

// SlogLogger adapts a *slog.Logger to the Logger interface.
type SlogLogger struct {
	logger *slog.Logger
}

func (l *SlogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, slogArgs(fields)...) }
func (l *SlogLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, slogArgs(fields)...) }
func (l *SlogLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, slogArgs(fields)...) }
func (l *SlogLogger) Error(msg string, fields ...any) { l.logger.Error(msg, slogArgs(fields)...) }

func (l *SlogLogger) With(fields ...any) Logger {
	return &SlogLogger{logger: l.logger.With(slogArgs(fields)...)}
}

func (l *SlogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// slogArgs turns a leading bare error into an ErrAttrKey attribute.
func slogArgs(fields []any) []any {
	if len(fields) == 0 {
		return fields
	}
	if err, ok := fields[0].(error); ok {
		return append([]any{slog.Any(ErrAttrKey, err)}, fields[1:]...)
	}
	return fields
}

// SlogProvider implements LoggerProvider with a slog JSON handler in the
// Cloud Logging format.
type SlogProvider struct {
	mu    sync.RWMutex
	level *slog.LevelVar
	root  *slog.Logger
}

// NewCloudProvider creates a provider writing Cloud Logging JSON lines.
func NewCloudProvider(w io.Writer, level Level) *SlogProvider {
	lv := &slog.LevelVar{}
	lv.Set(slog.Level(level))
	ops := slog.HandlerOptions{
		AddSource:   true,
		Level:       lv,
		ReplaceAttr: cloudReplaceAttr,
	}
	handler := WrapByErrFmtHandler(slog.NewJSONHandler(w, &ops))
	return &SlogProvider{level: lv, root: slog.New(handler)}
}

func (p *SlogProvider) GetLogger() Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &SlogLogger{logger: p.root}
}

func (p *SlogProvider) GetLoggerWithName(name string) Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return &SlogLogger{logger: p.root.With(ComponentAttr, name)}
}

func (p *SlogProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}
