package gologger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type SlogOptions struct {
	Output io.Writer
	Level  string
	Format Format
	// Exit is called by Fatal after logging. Defaults to os.Exit.
	Exit func(code int)
}

// SlogLogger is a glog.Logger backed by log/slog.
type SlogLogger struct {
	logger *slog.Logger
	ctx    context.Context
	exit   func(code int)
}

func NewSlogLogger(options SlogOptions) *SlogLogger {
	output := options.Output
	if output == nil {
		output = os.Stderr
	}
	handlerOptions := &slog.HandlerOptions{Level: ParseLevel(options.Level)}
	var handler slog.Handler
	switch Format(strings.ToLower(strings.TrimSpace(string(options.Format)))) {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, handlerOptions)
	default:
		handler = slog.NewTextHandler(output, handlerOptions)
	}
	exit := options.Exit
	if exit == nil {
		exit = os.Exit
	}
	return &SlogLogger{logger: slog.New(handler), exit: exit}
}

// LevelTrace sits below slog's debug level.
const LevelTrace = slog.LevelDebug - 4

const levelFatal = slog.LevelError + 4

func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *SlogLogger) Trace(msg string, args ...any) { l.log(LevelTrace, msg, args...) }
func (l *SlogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *SlogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *SlogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *SlogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func (l *SlogLogger) Fatal(msg string, args ...any) {
	l.log(levelFatal, msg, args...)
	if l != nil && l.exit != nil {
		l.exit(1)
	}
}

func (l *SlogLogger) WithContext(ctx context.Context) glog.Logger {
	if l == nil {
		return glog.Nop()
	}
	clone := *l
	clone.ctx = ctx
	return &clone
}

// WithFields returns a logger that attaches fields to every record, sorted
// by key.
func (l *SlogLogger) WithFields(fields map[string]any) glog.Logger {
	if l == nil {
		return glog.Nop()
	}
	if len(fields) == 0 {
		return l
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	clone := *l
	clone.logger = l.logger.With(args...)
	return &clone
}

func (l *SlogLogger) log(level slog.Level, msg string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	ctx := l.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if len(args)%2 != 0 {
		args = append(args[:len(args)-1:len(args)-1], "extra", fmt.Sprint(args[len(args)-1]))
	}
	l.logger.Log(ctx, level, msg, args...)
}

// Provider hands out the same logger under a "logger" attribute per name.
type Provider struct {
	root *SlogLogger
}

func NewProvider(root *SlogLogger) *Provider {
	return &Provider{root: root}
}

func (p *Provider) GetLogger(name string) glog.Logger {
	if p == nil || p.root == nil {
		return glog.Nop()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return p.root
	}
	clone := *p.root
	clone.logger = p.root.logger.With("logger", name)
	return &clone
}

var (
	_ glog.Logger         = (*SlogLogger)(nil)
	_ glog.LoggerProvider = (*Provider)(nil)
)
