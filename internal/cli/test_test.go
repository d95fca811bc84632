package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: add-two
description: "Two adds get numbers 1 and 2"
steps:
  - add: { customer: Ana }
  - add: { customer: Bruno }
assertions:
  - type: numbers
    numbers: [1, 2]
`

const failingScenario = `
name: wrong-count
description: "Asserts a count that does not hold"
steps:
  - add: { customer: Ana }
assertions:
  - type: count
    count: 5
`

func writeScenarioFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestTestCommand_AllPass(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeScenarioFile(t, dir, "add.yaml", passingScenario)

	res := env.run("", "test", dir)
	require.Equal(t, ExitSuccess, res.Code, res.Stdout+res.Stderr)
	assert.Contains(t, res.Stdout, "✓ add-two")
	assert.Contains(t, res.Stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_Failure(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeScenarioFile(t, dir, "add.yaml", passingScenario)
	writeScenarioFile(t, dir, "count.yaml", failingScenario)

	res := env.run("", "test", dir)
	assert.Equal(t, ExitFailure, res.Code)
	assert.Contains(t, res.Stdout, "✗ wrong-count")
	assert.Contains(t, res.Stdout, "Expected: 5 records")
	assert.Contains(t, res.Stdout, "1 passed, 1 failed, 2 total")
	assert.Empty(t, res.Stderr)
}

func TestTestCommand_JSON(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeScenarioFile(t, dir, "count.yaml", failingScenario)

	res := env.run("", "--format", "json", "test", dir)
	assert.Equal(t, ExitFailure, res.Code)

	var result TestResult
	resp := decodeResponse(t, res.Stdout, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, testTraceID, resp.TraceID)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "wrong-count", result.Scenarios[0].Name)
}

func TestTestCommand_Filter(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeScenarioFile(t, dir, "add.yaml", passingScenario)
	writeScenarioFile(t, dir, "count.yaml", failingScenario)

	res := env.run("", "test", dir, "--filter", "add*")
	require.Equal(t, ExitSuccess, res.Code, res.Stdout)
	assert.Contains(t, res.Stdout, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_LoadError(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeScenarioFile(t, dir, "broken.yaml", "name: broken\n")

	res := env.run("", "test", dir)
	assert.Equal(t, ExitFailure, res.Code)
	assert.Contains(t, res.Stdout, "✗ broken.yaml")
	assert.Contains(t, res.Stdout, "failed to load scenario")
}

func TestTestCommand_GoldenUpdateAndCompare(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "scenarios")
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeScenarioFile(t, dir, "add.yaml", passingScenario)

	res := env.run("", "test", dir, "--update")
	require.Equal(t, ExitSuccess, res.Code, res.Stdout)

	goldenPath := filepath.Join(dir, "golden", "add.golden")
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "add-two"`)

	res = env.run("", "test", dir)
	require.Equal(t, ExitSuccess, res.Code, res.Stdout)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0644))
	res = env.run("", "test", dir)
	assert.Equal(t, ExitFailure, res.Code)
	assert.Contains(t, res.Stdout, "trace does not match golden file")
}

func TestTestCommand_NoScenarios(t *testing.T) {
	env := newTestEnv(t)

	res := env.run("", "test", env.dir)
	require.Equal(t, ExitSuccess, res.Code)
	assert.Equal(t, "No scenarios found.\n", res.Stdout)
}

func TestTestCommand_MissingDir(t *testing.T) {
	env := newTestEnv(t)

	res := env.run("", "test", filepath.Join(env.dir, "nope"))
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Contains(t, res.Stderr, "scenarios directory not found")
}

func TestTestCommand_MissingArgs(t *testing.T) {
	env := newTestEnv(t)

	res := env.run("", "test")
	assert.Equal(t, ExitCommandError, res.Code)
	assert.Contains(t, res.Stderr, "accepts 1 arg")
}
