package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelDebug, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, FormatText)

	logger.Debug("hidden")
	logger.Info("test message", "key", "value")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("debug record should be filtered at info level, got %q", output)
	}
	for _, want := range []string{"level=INFO", "component=App", `msg="test message"`, "key=value"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got %q", want, output)
		}
	}
}

func TestNewWithWriter_Pretty(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, slog.LevelInfo, FormatPretty)

	logger.Info("test message", "key", "value")

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\nOutput was: %s", err, buf.String())
	}
	if result["msg"] != "test message" {
		t.Errorf("Expected message 'test message', got '%v'", result["msg"])
	}
	if result["key"] != "value" {
		t.Errorf("Expected key 'value', got '%v'", result["key"])
	}
	if result["component"] != Component {
		t.Errorf("Expected component %q, got '%v'", Component, result["component"])
	}
	if result["level"] != "INFO" {
		t.Errorf("Expected level 'INFO', got '%v'", result["level"])
	}
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, closer, err := New(Config{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("written to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing record, got %q", data)
	}
}

func TestNew_UnknownLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud", File: "-"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestDecorateMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	tests := []struct {
		name       string
		path       string
		method     string
		ignoreList []string
		shouldLog  bool
	}{
		{
			name:       "Normal request",
			path:       "/api/products",
			method:     "GET",
			ignoreList: []string{"/api/healthcheck"},
			shouldLog:  true,
		},
		{
			name:       "Ignored path",
			path:       "/api/healthcheck",
			method:     "GET",
			ignoreList: []string{"/api/healthcheck"},
			shouldLog:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			req := httptest.NewRequest(tt.method, tt.path, nil)
			rr := httptest.NewRecorder()
			Decorate(tt.ignoreList, logger, handler).ServeHTTP(rr, req)

			output := buf.String()
			if !tt.shouldLog {
				if output != "" {
					t.Error("Expected no logging output, got some")
				}
				return
			}

			for _, want := range []string{"request_started", "request_completed", tt.path, tt.method, `"status":404`} {
				if !strings.Contains(output, want) {
					t.Errorf("Expected %q in logs, not found", want)
				}
			}
		})
	}
}

func TestRequestIDUniqueness(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	decorated := Decorate(nil, logger, handler)

	requestIDs := make(map[string]bool)
	for i := 0; i < 100; i++ {
		buf.Reset()
		decorated.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/test", nil))

		logEntries := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(logEntries) != 2 {
			t.Fatalf("Expected 2 log entries, got %d", len(logEntries))
		}

		var logEntry map[string]any
		if err := json.Unmarshal([]byte(logEntries[0]), &logEntry); err != nil {
			t.Fatalf("Failed to parse log output: %v", err)
		}

		requestID, ok := logEntry["request_id"].(string)
		if !ok {
			t.Fatal("request_id not found in log output")
		}
		if requestIDs[requestID] {
			t.Errorf("Duplicate request ID found: %s", requestID)
		}
		requestIDs[requestID] = true
	}
}

func TestDurationLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Decorate(nil, logger, handler).ServeHTTP(rr, httptest.NewRequest("GET", "/test", nil))

	logEntries := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(logEntries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(logEntries))
	}

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(logEntries[1]), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	duration, ok := logEntry["duration_ms"].(float64)
	if !ok {
		t.Fatal("duration_ms not found in log output")
	}
	if duration < 50 {
		t.Errorf("Expected duration >= 50ms, got %v", duration)
	}
}
