package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"moescrape/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level: "info",
				File:  filepath.Join(t.TempDir(), "test.log"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"fatal", zerolog.FatalLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(&buf).Level(zerolog.DebugLevel)
	logger := &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}

	t.Run("WithField carries over to the message", func(t *testing.T) {
		buf.Reset()
		logger.WithField("user_id", "u1").Info("scan started")
		out := buf.String()
		if !strings.Contains(out, `"user_id":"u1"`) {
			t.Errorf("output missing field: %s", out)
		}
		if !strings.Contains(out, "scan started") {
			t.Errorf("output missing message: %s", out)
		}
	})

	t.Run("WithFields merges with call fields", func(t *testing.T) {
		buf.Reset()
		derived := logger.WithFields(map[string]interface{}{"a": 1})
		derived.InfoWithFields("merged", map[string]interface{}{"b": 2})
		out := buf.String()
		if !strings.Contains(out, `"a":1`) || !strings.Contains(out, `"b":2`) {
			t.Errorf("output missing merged fields: %s", out)
		}
	})

	t.Run("WithError adds error field", func(t *testing.T) {
		buf.Reset()
		logger.WithError(errors.New("boom")).Warn("degraded")
		if !strings.Contains(buf.String(), "boom") {
			t.Errorf("output missing error: %s", buf.String())
		}
	})

	t.Run("WithError with nil returns same logger", func(t *testing.T) {
		if logger.WithError(nil) != Logger(logger) {
			t.Error("WithError(nil) should not derive a new logger")
		}
	})
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("plain message")
	tl.WithField("post_uuid", "p1").Warn("skipping post")
	tl.WithFields(map[string]interface{}{"a": 1}).
		WithField("b", 2).
		Error("failed")

	messages := tl.Messages()
	if len(messages) != 3 {
		t.Fatalf("Messages() returned %d messages, want 3", len(messages))
	}

	if !tl.HasMessage("plain message") {
		t.Error("HasMessage() did not find plain message")
	}

	// Derived loggers record into the root logger with merged fields
	warns := tl.MessagesByLevel("WARN")
	if len(warns) != 1 {
		t.Fatalf("MessagesByLevel(WARN) returned %d messages, want 1", len(warns))
	}
	if warns[0].Fields["post_uuid"] != "p1" {
		t.Errorf("WARN fields = %v, want post_uuid=p1", warns[0].Fields)
	}

	errs := tl.MessagesByLevel("ERROR")
	if len(errs) != 1 {
		t.Fatalf("MessagesByLevel(ERROR) returned %d messages, want 1", len(errs))
	}
	if errs[0].Fields["a"] != 1 || errs[0].Fields["b"] != 2 {
		t.Errorf("ERROR fields = %v, want a=1 b=2", errs[0].Fields)
	}

	tl.Clear()
	if len(tl.Messages()) != 0 {
		t.Error("Clear() left messages behind")
	}
}

func TestTestLoggerCallFields(t *testing.T) {
	tl := NewTestLogger()

	tl.InfoWithFields("fetching", map[string]interface{}{"offset": 500})

	messages := tl.MessagesByLevel("INFO")
	if len(messages) != 1 {
		t.Fatalf("MessagesByLevel(INFO) returned %d messages, want 1", len(messages))
	}
	if messages[0].Fields["offset"] != 500 {
		t.Errorf("fields = %v, want offset=500", messages[0].Fields)
	}
}
