package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeXIQ struct {
	mu          sync.Mutex
	cliTokens   []string
	switchedIDs []string
}

func (f *fakeXIQ) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.URL.Path == "/login":
			_, _ = io.WriteString(w, `{"access_token":"tok-main","token_type":"Bearer"}`)
		case r.URL.Path == "/account/home":
			if token == "tok-branch" {
				_, _ = io.WriteString(w, `{"id":2,"name":"Branch"}`)
				return
			}
			_, _ = io.WriteString(w, `{"id":1,"name":"Main"}`)
		case r.URL.Path == "/account/external":
			_, _ = io.WriteString(w, `[{"id":2,"name":"Branch"}]`)
		case r.URL.Path == "/account/:switch":
			f.mu.Lock()
			f.switchedIDs = append(f.switchedIDs, r.URL.Query().Get("id"))
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"access_token":"tok-branch"}`)
		case r.URL.Path == "/locations/building":
			if r.URL.Query().Get("name") != "HQ" {
				_, _ = io.WriteString(w, `{"page":1,"total_pages":0,"total_count":0,"data":[]}`)
				return
			}
			_, _ = io.WriteString(w, `{"page":1,"total_pages":1,"total_count":1,"data":[{"id":10,"name":"HQ","type":"BUILDING"}]}`)
		case r.URL.Path == "/locations/tree":
			assert.Equal(t, "10", r.URL.Query().Get("parentId"))
			_, _ = io.WriteString(w, `[{"id":11,"name":"Floor 1","type":"FLOOR","parent_id":10},{"id":12,"name":"Lobby AP","type":"BUILDING","parent_id":10}]`)
		case r.URL.Path == "/devices":
			assert.Equal(t, "11", r.URL.Query().Get("locationId"))
			_, _ = io.WriteString(w, `{"page":1,"total_pages":1,"total_count":2,"data":[`+
				`{"id":101,"hostname":"sw-floor1-a","connected":true},`+
				`{"id":102,"hostname":"sw-floor1-b","connected":true}]}`)
		case r.URL.Path == "/devices/:cli":
			f.mu.Lock()
			f.cliTokens = append(f.cliTokens, token)
			f.mu.Unlock()
			w.Header().Set("Location", "/operations/op-1")
			w.WriteHeader(http.StatusAccepted)
		case r.URL.Path == "/operations/op-1":
			_, _ = io.WriteString(w, `{"id":"op-1","done":true,"metadata":{"status":"SUCCEEDED"},"response":{"device_cli_outputs":{`+
				`"101":[{"output":"System Power Status: Normal\n","response_code":"SUCCEED"}],`+
				`"102":[{"output":"System Power Status: Redundant\n","response_code":"SUCCEED"}]}}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestRunWritesReportForBuilding(t *testing.T) {
	home := t.TempDir()
	fake := &fakeXIQ{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	stdout, stderr, err := executeCLI(t, home, server.URL, "", "--token", "tok-main", "--building", "HQ")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Collecting Location information")
	assert.Contains(t, stdout, "completed page 1 of 1 collecting Devices")
	assert.Contains(t, stdout, "Sent CLI command to 2 devices")
	assert.Contains(t, stdout, "Attempting to collect CLI responses - attempt 1 of 10")
	assert.Contains(t, stdout, "sw-floor1-a")
	assert.Contains(t, stdout, "Writing CSV File HQ_PoE_Check.csv")
	assert.Contains(t, stdout, "healthy: 2  needs attention: 0")

	report, err := os.ReadFile(filepath.Join(home, "out", "HQ_PoE_Check.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Device,Power Status\nsw-floor1-a,Normal\nsw-floor1-b,Redundant\n", string(report))
	assert.Equal(t, []string{"tok-main"}, fake.cliTokens)
}

func TestRunPromptsForCredentialsAndBuilding(t *testing.T) {
	home := t.TempDir()
	fake := &fakeXIQ{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	stdout, stderr, err := executeCLI(t, home, server.URL, "admin@example.com\nsecret\nHQ\n")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Enter your XIQ login credentials")
	assert.Contains(t, stdout, "Please enter the name of the building: ")
	assert.FileExists(t, filepath.Join(home, "out", "HQ_PoE_Check.csv"))
}

func TestRunSwitchesToExternalAccount(t *testing.T) {
	home := t.TempDir()
	fake := &fakeXIQ{}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	stdout, stderr, err := executeCLI(t, home, server.URL, "7\n0\n", "--token", "tok-main", "--building", "HQ", "--external")
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "0. Branch")
	assert.Contains(t, stdout, "1. Main (This is your main account)")
	assert.Contains(t, stdout, "Please enter a valid response!!")
	assert.Contains(t, stdout, "Logged into Branch")
	assert.Equal(t, []string{"2"}, fake.switchedIDs)
	assert.Equal(t, []string{"tok-branch"}, fake.cliTokens)
}

func TestRunRetriesUnknownBuildingThenAborts(t *testing.T) {
	home := t.TempDir()
	server := httptest.NewServer((&fakeXIQ{}).handler(t))
	t.Cleanup(server.Close)

	stdout, stderr, err := executeCLI(t, home, server.URL, "y\nAnnex\nn\n", "--token", "tok-main", "--building", "Nowhere")
	require.ErrorIs(t, err, errAborted)

	assert.Contains(t, stdout, "no building was found with the name Nowhere")
	assert.Contains(t, stdout, "no building was found with the name Annex")
	assert.Equal(t, 2, strings.Count(stdout, "would you like to try again?"))
	assert.Contains(t, stderr, exitMessage)
	assert.NoFileExists(t, filepath.Join(home, "out", "Nowhere_PoE_Check.csv"))
}

func TestRunFailsOnUnknownCheck(t *testing.T) {
	home := t.TempDir()
	server := httptest.NewServer((&fakeXIQ{}).handler(t))
	t.Cleanup(server.Close)

	_, stderr, err := executeCLI(t, home, server.URL, "", "--token", "tok-main", "--building", "HQ", "--check", "fans")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load check profile")
	assert.Contains(t, stderr, exitMessage)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "http://127.0.0.1:0", "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestChecksInitThenList(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "http://127.0.0.1:0", "", "checks", "init")
	require.NoError(t, err)
	path := filepath.Join(home, ".xiq", "checks.toml")
	assert.Equal(t, "wrote "+path+"\n", stdout)
	assert.FileExists(t, path)

	stdout, _, err = executeCLI(t, home, "http://127.0.0.1:0", "", "checks", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")

	stdout, _, err = executeCLI(t, home, "http://127.0.0.1:0", "", "checks", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "poe\tPower Status\tshow system power status")
}

func TestChecksInitHonoursCheckFileFlag(t *testing.T) {
	home := t.TempDir()
	target := filepath.Join(home, "profiles", "checks.toml")

	stdout, stderr, err := executeCLI(t, home, "http://127.0.0.1:0", "", "checks", "init", "--check-file", target)
	require.NoError(t, err, stderr)
	assert.Equal(t, "wrote "+target+"\n", stdout)
	assert.FileExists(t, target)
	assert.NoFileExists(t, filepath.Join(home, ".xiq", "checks.toml"))

	stdout, stderr, err = executeCLI(t, home, "http://127.0.0.1:0", "", "checks", "list", "--check-file", target)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "poe\tPower Status")
}

func executeCLI(t *testing.T, home, baseURL, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	chdir(t, home)
	t.Setenv("XIQ_API_BASE_URL", baseURL)
	t.Setenv("XIQ_API_TOKEN", "")
	t.Setenv("XIQ_LRO_INITIAL_WAIT", "0s")
	t.Setenv("XIQ_LRO_POLL_INTERVAL", "0s")
	t.Setenv("XIQ_LOG_FILE", filepath.Join(home, "xiq.log"))
	t.Setenv("XIQ_OUTPUT_DIR", filepath.Join(home, "out"))

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := run(root)
	return stdout.String(), stderr.String(), err
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
