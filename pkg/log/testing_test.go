package log

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestTestLoggerCapturesAllLevels(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "DUPLICATE_ATTRIBUTE")
	testLogger.Error("error message", fmt.Errorf("test error"), "error_code", "TEST_ERROR")

	if buffer.String() == "" {
		t.Fatal("Expected log output, got empty string")
	}

	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		if !testLogger.ContainsMessage(msg) {
			t.Errorf("%q not found in output", msg)
		}
	}

	if !testLogger.ContainsField("key1", "value1") {
		t.Error("Expected field key1=value1 not found")
	}
	if !testLogger.ContainsField("number", 42.0) {
		t.Error("Expected field number=42 not found")
	}
	if !testLogger.ContainsField(ErrorKey, "test error") {
		t.Error("Leading error should be recorded under the error key")
	}
	if !testLogger.ContainsField("error_code", "TEST_ERROR") {
		t.Error("Fields after the leading error should be kept")
	}
}

func TestTestLoggerWith(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(
		ModelNameKey, "DecisionTreeClassifier",
		ComponentKey, "tree",
	)
	contextLogger.Info("contextual message", OperationKey, OperationFit)

	if !testLogger.ContainsField(ModelNameKey, "DecisionTreeClassifier") {
		t.Error("Model name context not found")
	}
	if !testLogger.ContainsField(ComponentKey, "tree") {
		t.Error("Component context not found")
	}
	if !testLogger.ContainsField(OperationKey, OperationFit) {
		t.Error("Operation field not found")
	}
}

func TestTestLoggerLevelFiltering(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelWarn)

	testLogger.Debug("hidden debug")
	testLogger.Info("hidden info")
	testLogger.Warn("visible warn")
	testLogger.Error("visible error")

	if testLogger.ContainsMessage("hidden") {
		t.Error("Messages below the minimum level should be dropped")
	}
	if !testLogger.ContainsMessage("visible warn") || !testLogger.ContainsMessage("visible error") {
		t.Error("Messages at or above the minimum level should be kept")
	}

	ctx := context.Background()
	if testLogger.Enabled(ctx, LevelInfo) {
		t.Error("Info should not be enabled at Warn level")
	}
	if !testLogger.Enabled(ctx, LevelError) {
		t.Error("Error should be enabled at Warn level")
	}
}

func TestTestLoggerConcurrentWrites(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	child := testLogger.With(ComponentKey, "worker")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child.Info("subtree built", DepthKey, i)
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("GetLogEntries: %v", err)
	}
	if len(entries) != 8 {
		t.Errorf("expected 8 entries, got %d", len(entries))
	}
}

func TestTestLoggerProvider(t *testing.T) {
	provider, _ := NewTestLoggerProvider(LevelInfo)

	provider.GetLoggerWithName("cli").Info("named")
	provider.GetLogger().Debug("dropped")
	provider.SetLevel(LevelDebug)
	provider.GetLogger().Debug("kept")

	logger := provider.Logger()
	if !logger.ContainsField(ComponentKey, "cli") {
		t.Error("GetLoggerWithName should attach the component key")
	}
	if logger.ContainsMessage("dropped") {
		t.Error("Debug before SetLevel should be filtered")
	}
	if !logger.ContainsMessage("kept") {
		t.Error("Debug after SetLevel should be kept")
	}

	logger.Clear()
	if logger.GetBuffer().Len() != 0 {
		t.Error("Clear should empty the buffer")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %s, want %s", tt.level, got, tt.want)
		}
	}
}
