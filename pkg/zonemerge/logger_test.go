package zonemerge

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLogger(t *testing.T) {
	logAll := func(l *Logger) {
		l.Debug("debug message")
		l.Info("info message")
		l.Warn("warn message")
		l.Error("error message")
	}

	tests := []struct {
		name           string
		level          LogLevel
		setupFunc      func(*Logger)
		expectedOutput []string
		notExpected    []string
	}{
		{
			name:           "debug level shows all messages",
			level:          LogDebug,
			setupFunc:      logAll,
			expectedOutput: []string{"[DEBUG] debug message", "[INFO] info message", "[WARN] warn message", "[ERROR] error message"},
		},
		{
			name:           "info level hides debug messages",
			level:          LogInfo,
			setupFunc:      logAll,
			expectedOutput: []string{"[INFO]", "[WARN]", "[ERROR]"},
			notExpected:    []string{"[DEBUG]", "debug message"},
		},
		{
			name:           "warn level shows only warnings and errors",
			level:          LogWarn,
			setupFunc:      logAll,
			expectedOutput: []string{"[WARN]", "[ERROR]"},
			notExpected:    []string{"[DEBUG]", "[INFO]"},
		},
		{
			name:        "off level shows nothing",
			level:       LogOff,
			setupFunc:   logAll,
			notExpected: []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"},
		},
		{
			name:  "structured fields",
			level: LogDebug,
			setupFunc: func(l *Logger) {
				l.WithFields(Fields{
					"zone": "body",
					"rows": 3,
				}).Debug("Rendering zone")
			},
			expectedOutput: []string{"[DEBUG] Rendering zone rows=3 zone=body"},
		},
		{
			name:  "format arguments",
			level: LogInfo,
			setupFunc: func(l *Logger) {
				l.Warn("job %s failed: %v", "a1", "boom")
			},
			expectedOutput: []string{"[WARN] job a1 failed: boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			tt.setupFunc(logger)

			output := buf.String()
			for _, expected := range tt.expectedOutput {
				if !strings.Contains(output, expected) {
					t.Errorf("Expected output to contain %q, but it didn't.\nOutput: %s", expected, output)
				}
			}
			for _, notExpected := range tt.notExpected {
				if strings.Contains(output, notExpected) {
					t.Errorf("Expected output NOT to contain %q, but it did.\nOutput: %s", notExpected, output)
				}
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LogDebug,
		"INFO":    LogInfo,
		"warn":    LogWarn,
		"warning": LogWarn,
		"error":   LogError,
		"off":     LogOff,
		"bogus":   LogInfo,
		"":        LogInfo,
	}
	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestGlobalLogger(t *testing.T) {
	original := GetLogger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogDebug))

	GetLogger().Debug("test debug")
	GetLogger().WithField("zone", "intro").Info("with field")

	output := buf.String()
	for _, expected := range []string{
		"[DEBUG] test debug",
		"[INFO] with field zone=intro",
	} {
		if !strings.Contains(output, expected) {
			t.Errorf("Expected output to contain %q, but it didn't.\nOutput: %s", expected, output)
		}
	}
}

func TestUpdateLoggerFromConfig(t *testing.T) {
	originalLogger := GetLogger()
	originalConfig := GetGlobalConfig()
	defer func() {
		SetLogger(originalLogger)
		SetGlobalConfig(originalConfig)
	}()

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, LogInfo))
	SetGlobalConfig(&Config{LogLevel: "debug", Workers: 1})

	if !GetLogger().Enabled(LogDebug) {
		t.Error("Expected global logger to switch to debug level")
	}
}

func TestLoggerEnabled(t *testing.T) {
	logger := NewLogger(nil, LogDebug)
	if !logger.Enabled(LogDebug) {
		t.Error("Expected debug records to be enabled at LogDebug level")
	}

	logger.SetLevel(LogWarn)
	tests := map[LogLevel]bool{
		LogDebug: false,
		LogInfo:  false,
		LogWarn:  true,
		LogError: true,
		LogOff:   false,
	}
	for level, want := range tests {
		if got := logger.Enabled(level); got != want {
			t.Errorf("Enabled(%v) = %v, want %v", level, got, want)
		}
	}
}

func TestLogLevelString(t *testing.T) {
	if got := LogLevel(42).String(); got != "UNKNOWN" {
		t.Errorf("String() = %q, want UNKNOWN", got)
	}
	if got := LogWarn.String(); got != "WARN" {
		t.Errorf("String() = %q, want WARN", got)
	}
}

func TestLoggerFieldsDoNotLeak(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogDebug)

	child := logger.WithField("zone", "body")
	child.WithField("row", 1).Info("child")
	logger.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "child row=1 zone=body") {
		t.Errorf("child line = %q", lines[0])
	}
	if strings.Contains(lines[1], "zone=") {
		t.Errorf("parent line carries child fields: %q", lines[1])
	}
}

func TestLoggerConcurrentChildren(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogInfo)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			logger.WithField("job", i).Info("done")
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Errorf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		if !strings.Contains(line, "[INFO] done job=") {
			t.Errorf("malformed line %q", line)
		}
	}
}
