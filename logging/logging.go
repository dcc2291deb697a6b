// Package logging builds the application logger and the request decorator.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Component is attached to every record emitted by the application logger.
const Component = "App"

// DefaultFile is where logs are written when no file is configured.
const DefaultFile = "./logs/app.log"

// Format selects the line encoding.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatPretty Format = "pretty"
)

// Config controls logger construction.
type Config struct {
	// Level is one of error, warn, info, debug. Empty means debug.
	Level string
	// File is the log file path. Its directory is created if needed.
	// Empty means DefaultFile; "-" disables the file sink.
	File string
	// Format is text unless set.
	Format Format
	// Stdout additionally mirrors records to standard output.
	Stdout bool
}

// ParseLevel maps a configured level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelError, fmt.Errorf("unknown log level %q (want error, warn, info or debug)", s)
	}
}

// New returns the application logger and a closer for its file sink.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var sinks []io.Writer
	closer := io.Closer(nopCloser{})

	file := cfg.File
	if file == "" {
		file = DefaultFile
	}
	if file != "-" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		sinks = append(sinks, f)
		closer = f
	}
	if cfg.Stdout {
		sinks = append(sinks, os.Stdout)
	}

	var w io.Writer = io.Discard
	if len(sinks) > 0 {
		w = io.MultiWriter(sinks...)
	}

	return NewWithWriter(w, level, cfg.Format), closer, nil
}

// NewWithWriter builds the application logger over an arbitrary writer.
func NewWithWriter(w io.Writer, level slog.Level, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	case FormatPretty:
		h = newPrettyJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("component", Component)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// PrettyJSONHandler prints each record as indented JSON, for local development.
type PrettyJSONHandler struct {
	*slog.JSONHandler
	writer io.Writer
	attrs  []slog.Attr
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyJSONHandler {
	return &PrettyJSONHandler{
		JSONHandler: slog.NewJSONHandler(w, opts),
		writer:      w,
	}
}

// WithAttrs keeps attributes so they are rendered by Handle.
func (h *PrettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrettyJSONHandler{
		JSONHandler: h.JSONHandler,
		writer:      h.writer,
		attrs:       append(slices.Clip(h.attrs), attrs...),
	}
}

func (h *PrettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs()+3)
	for _, a := range h.attrs {
		fields[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[a.Key] = a.Value.Any()
		return true
	})

	fields["time"] = r.Time.Format(time.RFC3339)
	fields["level"] = r.Level.String()
	fields["msg"] = r.Message

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return err
	}
	_, err = h.writer.Write(append(out, '\n'))
	return err
}

// Decorate wraps an HTTP handler and logs the start and completion of every
// request. Paths in ignoreList are served without logging.
func Decorate(ignoreList []string, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slices.Contains(ignoreList, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := uuid.NewString()
		startTime := time.Now()

		logger.Info("request_started",
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", requestID,
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info("request_completed",
			"path", r.URL.Path,
			"method", r.Method,
			"request_id", requestID,
			"status", rec.status,
			"duration_ms", float64(time.Since(startTime).Nanoseconds())/1e6,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
