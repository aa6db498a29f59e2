// 指示: miu200521358
// Package logging はCLI向けの構造化ロガーを提供する。
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/muesli/termenv"
)

// Logger は書式付きメッセージを出力するロガーを表す。
type Logger struct {
	slogger *slog.Logger
	level   *slog.LevelVar
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(NewLogger(os.Stderr, slog.LevelInfo))
}

// DefaultLogger は既定ロガーを返す。
func DefaultLogger() *Logger {
	return defaultLogger.Load()
}

// SetDefaultLogger は既定ロガーを差し替える。nilの場合は何もしない。
func SetDefaultLogger(logger *Logger) {
	if logger == nil {
		return
	}
	defaultLogger.Store(logger)
}

// NewLogger は出力先とレベルからロガーを生成する。
func NewLogger(w io.Writer, level slog.Level) *Logger {
	levelVar := &slog.LevelVar{}
	levelVar.Set(level)
	return &Logger{
		slogger: slog.New(newTerminalHandler(w, levelVar)),
		level:   levelVar,
	}
}

// SetLevel はロガーの出力レベルを変更する。
func (l *Logger) SetLevel(level slog.Level) {
	if l == nil {
		return
	}
	l.level.Set(level)
}

// Level は現在の出力レベルを返す。
func (l *Logger) Level() slog.Level {
	if l == nil {
		return slog.LevelInfo
	}
	return l.level.Level()
}

// Slog は内部のslog.Loggerを返す。
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l.slogger
}

// Debug はDEBUGログを出力する。
func (l *Logger) Debug(format string, params ...any) {
	l.log(slog.LevelDebug, format, params...)
}

// Info はINFOログを出力する。
func (l *Logger) Info(format string, params ...any) {
	l.log(slog.LevelInfo, format, params...)
}

// Warn はWARNログを出力する。
func (l *Logger) Warn(format string, params ...any) {
	l.log(slog.LevelWarn, format, params...)
}

// Error はERRORログを出力する。
func (l *Logger) Error(format string, params ...any) {
	l.log(slog.LevelError, format, params...)
}

func (l *Logger) log(level slog.Level, format string, params ...any) {
	if l == nil {
		return
	}
	ctx := context.Background()
	if !l.slogger.Enabled(ctx, level) {
		return
	}
	l.slogger.Log(ctx, level, fmt.Sprintf(format, params...))
}

// ParseLevel は文字列からログレベルを解決する。
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("ログレベルが不正です: %s", name)
	}
}

// terminalHandler はレベル表記をtermenvで着色する1行形式のハンドラ。
type terminalHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	out    *termenv.Output
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
}

func newTerminalHandler(w io.Writer, level slog.Leveler) *terminalHandler {
	return &terminalHandler{
		mu:    &sync.Mutex{},
		w:     w,
		out:   termenv.NewOutput(w),
		level: level,
	}
}

// Enabled はレベルが出力対象か判定する。
func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle はレコードを1行で出力する。
func (h *terminalHandler) Handle(_ context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(h.levelTag(record.Level))
	sb.WriteByte(' ')
	sb.WriteString(record.Message)
	for _, attr := range h.attrs {
		h.appendAttr(&sb, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.appendAttr(&sb, h.qualify(attr))
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs は属性を引き継いだハンドラを返す。
func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, attr := range attrs {
		next.attrs = append(next.attrs, h.qualify(attr))
	}
	return &next
}

// WithGroup はグループ名を引き継いだハンドラを返す。
func (h *terminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

// qualify は現在のグループ名を属性キーへ付与する。
func (h *terminalHandler) qualify(attr slog.Attr) slog.Attr {
	if len(h.groups) == 0 {
		return attr
	}
	attr.Key = strings.Join(h.groups, ".") + "." + attr.Key
	return attr
}

func (h *terminalHandler) appendAttr(sb *strings.Builder, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(h.out.String(attr.Key).Faint().String())
	sb.WriteByte('=')
	sb.WriteString(attr.Value.String())
}

func (h *terminalHandler) levelTag(level slog.Level) string {
	tag := h.out.String(fmt.Sprintf("%-5s", level.String()))
	switch {
	case level >= slog.LevelError:
		return tag.Foreground(h.out.Color("1")).Bold().String()
	case level >= slog.LevelWarn:
		return tag.Foreground(h.out.Color("3")).String()
	case level >= slog.LevelInfo:
		return tag.Foreground(h.out.Color("6")).String()
	default:
		return tag.Faint().String()
	}
}
