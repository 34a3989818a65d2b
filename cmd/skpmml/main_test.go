package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const regressor = `{"__class__": "sklearn.linear_model.LinearRegression", "n_features_in_": 2,
	"coef_": {"__ndarray__": [1.0, 2.0]}, "intercept_": 0.5}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func writeDump(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "skpmml dev")
	assert.Contains(t, out, "PMML version: 4.4")
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "sklearn.linear_model.LinearRegression\n")
	assert.Contains(t, out, "lightgbm.sklearn.LGBMRegressor\n")
}

func TestConvertToStdout(t *testing.T) {
	input := writeDump(t, t.TempDir(), "model.json", regressor)
	out, err := run(t, "convert", "--input", input, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "<RegressionModel")
	assert.Contains(t, out, `<DataField name="x2"`)
}

func TestConvertFromStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetIn(strings.NewReader(regressor))
	root.SetArgs([]string{"convert", "--input", "-", "--log-level", "error"})
	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "<RegressionModel")
}

func TestConvertToFile(t *testing.T) {
	dir := t.TempDir()
	input := writeDump(t, dir, "model.json", regressor)
	output := filepath.Join(dir, "model.pmml")
	cfg := writeDump(t, dir, "skpmml.yaml", "header:\n  copyright: ACME\n  timestamp: false\nlog:\n  level: error\n")

	_, err := run(t, "convert", "-i", input, "-o", output, "--config", cfg)
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `copyright="ACME"`)
	assert.NotContains(t, string(data), "<Timestamp>")
}

func TestConvertBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeDump(t, dir, "a.json", regressor)
	b := writeDump(t, dir, "b.json", regressor)
	outDir := filepath.Join(dir, "out")
	textfile := filepath.Join(dir, "skpmml.prom")

	_, err := run(t, "convert", "-i", a, "-i", b, "--output-dir", outDir, "--metrics-textfile", textfile, "--log-level", "error")
	require.NoError(t, err)
	for _, name := range []string{"a.pmml", "b.pmml"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
	prom, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `skpmml_conversions_total{kind="Regressor",outcome="success"} 2`)
}

func TestConvertErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeDump(t, dir, "model.json", regressor)
	unsupported := writeDump(t, dir, "xgb.json", `{"__class__": "xgboost.sklearn.XGBClassifier"}`)
	badConfig := writeDump(t, dir, "bad.yaml", "log:\n  format: xml\n")

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"convert"}},
		{"several inputs without directory", []string{"convert", "-i", input, "-i", input}},
		{"output and directory", []string{"convert", "-i", input, "-o", "x.pmml", "--output-dir", dir}},
		{"bad config", []string{"convert", "-i", input, "--config", badConfig}},
		{"unsupported estimator", []string{"convert", "-i", unsupported, "--log-level", "error"}},
		{"failed batch", []string{"convert", "-i", input, "-i", unsupported, "--output-dir", dir, "--log-level", "error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}
