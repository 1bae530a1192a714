package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
)

const loggerNameKey = "logger"

const (
	ansiCodeReset     = "\033[0m"
	ansiCodeRed       = "\033[31m"
	ansiCodeGreen     = "\033[32m"
	ansiCodeYellow    = "\033[33m"
	ansiCodeCyan      = "\033[36m"
	ansiCodeGray      = "\033[90m"
	ansiCodeUnderline = "\033[4m"
)

//nolint:gochecknoglobals
var ansiCodeMap = map[slog.Level]string{
	slog.LevelDebug: ansiCodeCyan,
	slog.LevelInfo:  ansiCodeGreen,
	slog.LevelWarn:  ansiCodeYellow,
	slog.LevelError: ansiCodeRed,
}

// ConsoleHandler implements slog.Handler with human-readable, optionally
// colored output suitable for terminals.
type ConsoleHandler struct {
	// Output is the destination for log output (typically os.Stdout or os.Stderr)
	Output io.Writer
	// Level is the minimum level for log records to be processed
	Level slog.Leveler
	// PkgLevels maps logger name prefixes to minimum log levels
	PkgLevels map[string]slog.Level
	// Source appends the caller to each line
	Source bool
	// NoColor disables ANSI escape codes
	NoColor bool

	attrs  []slog.Attr
	groups []string
}

var _ slog.Handler = (*ConsoleHandler)(nil)

// Handle implements slog.Handler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)

		return true
	})

	if !h.pkgEnabled(attrs, r.Level) {
		return nil
	}

	var line strings.Builder

	line.WriteString(h.color(ansiCodeGray, r.Time.Format("15:04:05.000000")))
	line.WriteString(" " + h.color(ansiCodeMap[r.Level], "["+r.Level.String()+"]"))
	line.WriteString(" " + r.Message)

	var prefix string

	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	if len(attrs) > 0 {
		line.WriteString(" " + h.color(ansiCodeGray, "|"))
		line.WriteString(h.renderAttrs(prefix, attrs))
	}

	if h.Source && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		fn := strings.Split(f.Function, string(os.PathSeparator))

		line.WriteString("\n-> " + h.color(ansiCodeGray, fn[len(fn)-1]+"()"))
		line.WriteString(" in " + h.color(ansiCodeUnderline, f.File+":"+strconv.Itoa(f.Line)))
	}

	_, err := fmt.Fprintln(h.Output, line.String())

	return err //nolint:wrapcheck
}

// pkgEnabled walks the dotted logger name from most to least specific and
// applies the first matching PkgLevels entry. The empty key matches everything.
func (h *ConsoleHandler) pkgEnabled(attrs []slog.Attr, level slog.Level) bool {
	if len(h.PkgLevels) == 0 {
		return true
	}

	var name string

	for _, attr := range attrs {
		if attr.Key == loggerNameKey {
			name = attr.Value.String()

			break
		}
	}

	parts := strings.Split(name, ".")

	for i := len(parts); i >= 0; i-- {
		if minLevel, ok := h.PkgLevels[strings.Join(parts[:i], ".")]; ok {
			return level >= minLevel
		}
	}

	return true
}

func (h *ConsoleHandler) color(code, text string) string {
	if h.NoColor || code == "" {
		return text
	}

	return code + text + ansiCodeReset
}

func (h *ConsoleHandler) renderAttrs(prefix string, attrs []slog.Attr) string {
	var out strings.Builder

	for _, attr := range attrs {
		if attr.Value.Kind() == slog.KindGroup {
			out.WriteString(h.renderAttrs(prefix+attr.Key+".", attr.Value.Group()))

			continue
		}

		out.WriteString(" " + prefix + attr.Key + "=" + h.color(ansiCodeGray, attr.Value.String()))
	}

	return out.String()
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)

	return &clone
}

// WithGroup implements slog.Handler.WithGroup.
func (h *ConsoleHandler) WithGroup(name string) Handler {
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)

	return &clone
}

// Enabled implements slog.Handler.Enabled.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.Level.Level() <= level
}
