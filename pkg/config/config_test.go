package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/skpmml/pkg/errors"
)

func TestParse(t *testing.T) {
	t.Setenv("SKPMML_ROUNDS", "25")
	t.Setenv("SKPMML_EMPTY", "")

	cfg, err := Parse([]byte(`
log:
  level: debug
  format: json
convert:
  allow_missing: true
  num_iteration: ${SKPMML_ROUNDS}
  workers: ${SKPMML_EMPTY:-4}
header:
  copyright: ${SKPMML_UNSET:-ACME}
metrics:
  enabled: true
`))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 25, cfg.Convert.NumIteration)
	assert.Equal(t, 4, cfg.Convert.Workers)
	assert.Equal(t, "ACME", cfg.Header.Copyright)
	assert.True(t, cfg.Header.Timestamp, "defaults survive partial documents")
	assert.True(t, cfg.Metrics.Enabled)

	options := cfg.Options()
	assert.True(t, options.AllowMissing)
	assert.Equal(t, 25, options.NumIteration)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"unknown key", "convert:\n  rounds: 3\n", errors.KindUnknown},
		{"bad level", "log:\n  level: loud\n", errors.KindInvalidAttributeValue},
		{"bad format", "log:\n  format: xml\n", errors.KindInvalidAttributeValue},
		{"negative rounds", "convert:\n  num_iteration: -1\n", errors.KindInvalidAttributeValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skpmml.yaml")
	require.NoError(t, os.WriteFile(path, []byte("header:\n  description: churn model\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "churn model", cfg.Header.Description)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("SKPMML_A", "x")
	assert.Equal(t, "x-y-", substituteEnvVars("${SKPMML_A}-${SKPMML_B:-y}-${SKPMML_B}"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}
