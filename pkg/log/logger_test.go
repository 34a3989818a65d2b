package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerrors "github.com/YuminosukeSato/skpmml/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)

	logger := provider.GetLoggerWithName("sklearn.tree").With(EstimatorKey, "sklearn.tree.DecisionTreeRegressor")
	logger.Debug("Encoding tree", FeaturesKey, 4)
	logger.Info("Encoded", SegmentsKey, 1)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "Encoding tree", entries[0]["message"])
	assert.Equal(t, "sklearn.tree", entries[0][ComponentAttr])
	assert.Equal(t, "sklearn.tree.DecisionTreeRegressor", entries[0][EstimatorKey])
	assert.Equal(t, 4.0, entries[0][FeaturesKey])
}

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelWarn)
	logger := provider.GetLogger()

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))

	provider.SetLevel(LevelDebug)
	provider.GetLogger().Debug("now shown")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "shown", entries[0]["message"])
	assert.Equal(t, "now shown", entries[1]["message"])
}

func TestZerologLoggerError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelDebug).GetLogger()

	err := skerrors.NewAttributeMissingError("sklearn.ensemble.IsolationForest", "estimators_")
	logger.Error("Conversion failed", err, FileKey, "model.json")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, "AttributeMissing", entry[ErrorKindKey])
	assert.Equal(t, "estimators_", entry["attribute"])
	assert.Equal(t, "model.json", entry[FileKey])
	assert.Contains(t, entry[ErrAttrKey], "estimators_")
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger("info", "json", &buf))
	defer skerrors.SetZerologWarnFunc(nil)

	skerrors.Warn(skerrors.NewVersionWarning("sklearn.svm.LinearSVC", "0.17", ">= 0.18, < 1.9"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0]["level"])
	assert.Equal(t, "warnings", entries[0][ComponentAttr])
	assert.Contains(t, entries[0]["message"], "0.17")
}

func TestTestLogger(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	testLogger.Debug("dropped")
	testLogger.With(EstimatorKey, "sklearn.svm.LinearSVR").Info("encoded", ClassesKey, 0)

	assert.False(t, testLogger.ContainsMessage("dropped"))
	assert.True(t, testLogger.ContainsMessage("encoded"))
	assert.True(t, testLogger.ContainsField(EstimatorKey, "sklearn.svm.LinearSVR"))
	assert.True(t, testLogger.ContainsField(ClassesKey, 0.0))

	testLogger.Clear()
	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCloudProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := NewCloudProvider(&buf, LevelInfo).GetLoggerWithName("converter")

	err := skerrors.NewSchemaSizeError("SubSchema", "features", 2, 3)
	logger.Error("Conversion failed", err)
	logger.Debug("hidden")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["severity"])
	assert.Equal(t, "Conversion failed", entries[0]["message"])
	assert.Equal(t, "converter", entries[0][ComponentAttr])
	assert.NotEmpty(t, entries[0][StacktraceKey])
}

func TestSetupLoggerRejectsUnknownFormat(t *testing.T) {
	err := SetupLogger("info", "xml", &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, skerrors.KindInvalidAttributeValue, skerrors.KindOf(err))
}

func TestSetupLoggerCloud(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetupLogger("info", "cloud", &buf))
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelWarn))
	defer skerrors.SetZerologWarnFunc(nil)

	GetLoggerWithName("converter").Error("Conversion failed", skerrors.New("boom"), EstimatorKey, "sklearn.svm.SVC")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["severity"])
	assert.Equal(t, "Conversion failed", entries[0]["message"])
	assert.Equal(t, "converter", entries[0][ComponentAttr])
	assert.Equal(t, "sklearn.svm.SVC", entries[0][EstimatorKey])
	assert.Contains(t, entries[0], ErrAttrKey)
}
