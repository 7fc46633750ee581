package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id3errors "github.com/YuminosukeSato/id3/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestZerologProviderWritesFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	logger := p.GetLoggerWithName("tree").With(ModelNameKey, "DecisionTreeClassifier")
	logger.Info("fit complete", SamplesKey, 14, DepthKey, 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "fit complete", lines[0]["message"])
	assert.Equal(t, "tree", lines[0][ComponentKey])
	assert.Equal(t, "DecisionTreeClassifier", lines[0][ModelNameKey])
	assert.EqualValues(t, 14, lines[0][SamplesKey])
	assert.EqualValues(t, 2, lines[0][DepthKey])
}

func TestZerologProviderLeadingError(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	err := id3errors.NewModelError("Fit", "cannot build tree", id3errors.ErrEmptyData)
	p.GetLogger().Error("fit failed", err, OperationKey, OperationFit)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Contains(t, lines[0][ErrorKey], "empty data")
	assert.Equal(t, OperationFit, lines[0][OperationKey])
}

func TestZerologProviderSetLevelAffectsExistingLoggers(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)
	logger := p.GetLogger()

	logger.Debug("hidden")
	assert.False(t, logger.Enabled(context.Background(), LevelDebug))

	p.SetLevel(LevelDebug)
	logger.Debug("shown")
	assert.True(t, logger.Enabled(context.Background(), LevelDebug))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestZerologProviderOddFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	p.GetLogger().Info("odd", 7, "seven", "dangling")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "seven", lines[0]["7"])
	assert.Contains(t, lines[0], "dangling")
	assert.Nil(t, lines[0]["dangling"])
}

func TestWarningsRouteThroughProvider(t *testing.T) {
	var buf bytes.Buffer
	prev := GetProvider()
	SetProvider(NewZerologProvider(&buf, LevelInfo))
	defer SetProvider(prev)

	id3errors.Warn(id3errors.NewDuplicateAttributeWarning("Outlook", 2))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "warnings", lines[0][ComponentKey])
	assert.Equal(t, "Outlook", lines[0]["attribute"])
	assert.Equal(t, "DuplicateAttributeWarning", lines[0]["type"])
}

func TestWarningsRouteThroughCustomProvider(t *testing.T) {
	tp, _ := NewTestLoggerProvider(LevelDebug)
	prev := GetProvider()
	SetProvider(tp)
	defer SetProvider(prev)

	id3errors.Warn(id3errors.NewBinningWarning(0, 4, 2))

	assert.True(t, tp.Logger().ContainsField(ComponentKey, "warnings"))
	assert.True(t, tp.Logger().ContainsMessage("4 bins requested"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"Error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				var verr *id3errors.ValidationError
				assert.True(t, id3errors.As(err, &verr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup(t *testing.T) {
	prev := GetProvider()
	defer SetProvider(prev)

	var buf bytes.Buffer
	require.NoError(t, Setup("debug", &buf, false))
	GetLoggerWithName("cli").Debug("hello")
	assert.Contains(t, buf.String(), `"ml.component":"cli"`)

	assert.Error(t, Setup("loud", &buf, false))
}

func TestSetOutputKeepsLevel(t *testing.T) {
	prev := GetProvider()
	defer SetProvider(prev)

	var first, second bytes.Buffer
	SetProvider(NewZerologProvider(&first, LevelDebug))
	SetOutput(&second)

	GetLogger().Debug("moved")
	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "moved")
}
