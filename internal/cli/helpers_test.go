package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/entregas/internal/testutil"
)

const testTraceID = "test-trace-cli"

// cliResult captures one CLI invocation.
type cliResult struct {
	Code   int
	Stdout string
	Stderr string
}

// testEnv runs CLI invocations against one temp database with a fixed
// clock and trace id.
type testEnv struct {
	t     *testing.T
	dir   string
	db    string
	clock *testutil.FixedClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	return &testEnv{
		t:     t,
		dir:   dir,
		db:    filepath.Join(dir, "entregas.db"),
		clock: testutil.NewFixedClock(time.Time{}, time.Second),
	}
}

func (e *testEnv) run(stdin string, args ...string) cliResult {
	e.t.Helper()
	opts := &RootOptions{
		TraceGenerator: testutil.NewFixedTraceGenerator(testTraceID),
		Clock:          e.clock,
	}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	full := append([]string{"--db", e.db}, args...)
	code := run(opts, full, strings.NewReader(stdin), stdout, stderr)
	return cliResult{Code: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// jsonResponse is CLIResponse with the payload left undecoded.
type jsonResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *CLIError       `json:"error"`
	TraceID string          `json:"trace_id"`
}

func decodeResponse(t *testing.T, out string, data any) jsonResponse {
	t.Helper()
	var resp jsonResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "stdout: %s", out)
	if data != nil && len(resp.Data) > 0 {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir on Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
