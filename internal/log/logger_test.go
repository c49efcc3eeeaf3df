package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoggerJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentApp, Output: &buf})

	logger.WithComponent(ComponentReport).Info("Report generated", FieldRows, 3)
	logger.Debug("hidden")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Report generated", lines[0]["msg"])
	assert.Equal(t, ComponentReport, lines[0][FieldComponent])
	assert.Equal(t, float64(3), lines[0][FieldRows])
}

func TestFieldsBuilder(t *testing.T) {
	fields := NewFields().
		WithOperation("dashboard").
		WithReport("success", 4, 12).
		WithRange("2024-03-01", "").
		WithError(nil)

	assert.Equal(t, "dashboard", fields[FieldOperation])
	assert.Equal(t, 4, fields[FieldRows])
	assert.Equal(t, int64(12), fields[FieldDuration])
	assert.Equal(t, "2024-03-01", fields[FieldRangeStart])
	assert.NotContains(t, fields, FieldRangeEnd)
	assert.NotContains(t, fields, FieldError)

	fields.WithError(errors.New("boom"))
	assert.Equal(t, "boom", fields[FieldError])
	assert.Len(t, fields.ToSlice(), len(fields)*2)
}

func TestContextMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "json", Component: ComponentHTTP, Output: &buf})

	handler := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		}),
	))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "req_1", lines[0][FieldRequestID])
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}

func TestFromContextOr(t *testing.T) {
	fallback := New(Config{Component: ComponentReport, Output: &bytes.Buffer{}})
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))

	scoped := New(Config{Component: ComponentHTTP, Output: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContextOr(ctx, fallback))
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf}))
	r := httptest.NewRequest(http.MethodPost, "/api/dashboard-data", nil)

	sl.LogHTTPEnd(context.Background(), r, "req_1", http.StatusBadGateway, 5, "10.0.0.1")
	sl.LogHTTPEnd(context.Background(), r, "req_2", http.StatusBadRequest, 5, "10.0.0.1")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "ERROR", lines[0]["level"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, false, lines[1][FieldSuccess])
}
