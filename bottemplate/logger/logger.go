package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
)

const prefix = "PROGRESSION"

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeAPI     LogType = "API"
	TypeEngine  LogType = "ENG"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

var logTypes = map[string]LogType{
	"cmd":    TypeCommand,
	"db":     TypeDB,
	"api":    TypeAPI,
	"engine": TypeEngine,
	"error":  TypeError,
}

// these are folded into the message rather than printed as key=value
var internalAttrs = []string{"type", "name", "user_name", "status", "error", "error_location"}

var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"opening gateway connection",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"rate limit response headers",
	"sending heartbeat",
}

type CustomHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	groups []string
}

// NewHandler writes colored lines to out. A nil out means stdout.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *CustomHandler {
	if out == nil {
		out = os.Stdout
	}
	h := &CustomHandler{mu: &sync.Mutex{}, out: out}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(slices.Clip(h.attrs), attrs...)
	return &next
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(slices.Clip(h.groups), name)
	return &next
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(r.Message) {
		return nil
	}

	all := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	all = append(all, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		all = append(all, a)
		return true
	})

	levelColor, levelText := levelStyle(r.Level)
	message := formatMessage(r, all, h.opts.AddSource)

	var b strings.Builder
	for _, a := range all {
		if slices.Contains(internalAttrs, a.Key) {
			continue
		}
		key := a.Key
		if len(h.groups) > 0 {
			key = strings.Join(h.groups, ".") + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.out, "%s[%s] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		prefix,
		r.Time.Format("15:04:05"),
		levelColor,
		levelText,
		colorWhite,
		logType(all),
		message,
		b.String(),
		colorReset,
	)
	return err
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return colorRed, "ERROR"
	case level >= slog.LevelWarn:
		return colorYellow, "WARN"
	case level >= slog.LevelInfo:
		return colorGreen, "INFO"
	default:
		return colorPurple, "DEBUG"
	}
}

func formatMessage(r slog.Record, attrs []slog.Attr, addSource bool) string {
	message := r.Message

	if r.Level >= slog.LevelError {
		if loc := errorLocation(r, attrs, addSource); loc != "" {
			message = fmt.Sprintf("%s (%s)", message, loc)
		}
		if details := attrString(attrs, "error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	} else if details := attrString(attrs, "error"); details != "" {
		message = fmt.Sprintf("%s: %s", message, details)
	}

	cmdName, userName := attrString(attrs, "name"), attrString(attrs, "user_name")
	if cmdName != "" && userName != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, cmdName, userName)
	}
	if status := attrString(attrs, "status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}
	return message
}

func shouldSkipLog(msg string) bool {
	msg = strings.ToLower(msg)
	for _, skip := range skippedMessages {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func logType(attrs []slog.Attr) LogType {
	if t, ok := logTypes[attrString(attrs, "type")]; ok {
		return t
	}
	return TypeSystem
}

// attrString returns the last value recorded under key, so record attrs
// override handler attrs.
func attrString(attrs []slog.Attr, key string) string {
	for i := len(attrs) - 1; i >= 0; i-- {
		if attrs[i].Key == key {
			return attrs[i].Value.String()
		}
	}
	return ""
}

func errorLocation(r slog.Record, attrs []slog.Attr, addSource bool) string {
	if loc := attrString(attrs, "error_location"); loc != "" {
		return loc
	}
	if !addSource || r.PC == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

// Setup installs the handler as the process-wide default logger.
func Setup(level slog.Level, addSource bool) {
	slog.SetDefault(slog.New(NewHandler(os.Stdout, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})))
}

// Since is shorthand for the took attribute.
func Since(start time.Time) slog.Attr {
	return slog.Duration("took", time.Since(start))
}
