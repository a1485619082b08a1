package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/cricscore/internal/scraper"
)

const fixturePath = "../extractor/testdata/live_strip.html"

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("failed to load fixture: %v", err)
	}
	return data
}

// sourceServer serves body with status
func sourceServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

// run executes the root command with args and returns stdout and the error
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runContext(t, context.Background(), stdin, args...)
}

func runContext(t *testing.T, ctx context.Context, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&app{stdout: &stdout, stderr: &stderr})
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func TestOnce(t *testing.T) {
	ts := sourceServer(t, http.StatusOK, fixture(t))

	out, err := run(t, "", "once", "--url", ts.URL, "--ttl", "0")
	if err != nil {
		t.Fatalf("once error: %v", err)
	}
	for _, s := range []string{"India", "Australia", "South Africa", "Last updated at", "(3 matches)"} {
		if !strings.Contains(out, s) {
			t.Errorf("output should contain %q, got:\n%s", s, out)
		}
	}
}

func TestOnce_JSONAndFilter(t *testing.T) {
	ts := sourceServer(t, http.StatusOK, fixture(t))

	tests := []struct {
		name   string
		filter string
		want   int
	}{
		{"no filter", "", 3},
		{"live", "live", 1},
		{"team", "team:africa", 1},
		{"result", "result", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", "once", "--url", ts.URL, "--format", "json", "--filter", tt.filter)
			if err != nil {
				t.Fatalf("once error: %v", err)
			}

			var got struct {
				Matches []json.RawMessage `json:"matches"`
			}
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("output is not valid JSON: %v\n%s", err, out)
			}
			if len(got.Matches) != tt.want {
				t.Errorf("got %d matches, want %d", len(got.Matches), tt.want)
			}
		})
	}
}

func TestOnce_NoMatches(t *testing.T) {
	ts := sourceServer(t, http.StatusOK, []byte("<html><body><p>No cricket today</p></body></html>"))

	out, err := run(t, "", "once", "--url", ts.URL)
	if err != nil {
		t.Fatalf("once error: %v", err)
	}
	if !strings.Contains(out, "No live matches available right now.") {
		t.Errorf("output = %q, want the empty-state message", out)
	}
	if exitCode(err) != ExitSuccess {
		t.Errorf("exit code = %d, want %d", exitCode(err), ExitSuccess)
	}
}

func TestOnce_FetchFailed(t *testing.T) {
	ts := sourceServer(t, http.StatusServiceUnavailable, []byte("down"))

	out, err := run(t, "", "once", "--url", ts.URL)
	if err == nil {
		t.Fatal("once should fail when the source is unreachable")
	}
	if !errors.Is(err, scraper.ErrFetchFailed) {
		t.Errorf("error = %v, want ErrFetchFailed", err)
	}
	if exitCode(err) != ExitFetchFailed {
		t.Errorf("exit code = %d, want %d", exitCode(err), ExitFetchFailed)
	}
	if !strings.Contains(out, "Could not reach the score source") {
		t.Errorf("output = %q, want the unreachable message", out)
	}
	if strings.Contains(out, "No live matches") {
		t.Error("a fetch failure must not look like an empty result")
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	ts := sourceServer(t, http.StatusOK, fixture(t))

	t.Run("log level", func(t *testing.T) {
		t.Setenv("CRICSCORE_LOG_LEVEL", "verbose")

		if _, err := run(t, "", "once", "--url", ts.URL); err == nil {
			t.Fatal("an invalid environment log level should fail without a flag")
		}
		out, err := run(t, "", "once", "--url", ts.URL, "--ttl", "0", "--log-level", "debug")
		if err != nil {
			t.Fatalf("--log-level should replace the environment value, got error: %v", err)
		}
		if !strings.Contains(out, "India") {
			t.Errorf("output = %q, want the fetched matches", out)
		}
	})

	t.Run("interval", func(t *testing.T) {
		t.Setenv("CRICSCORE_REFRESH_INTERVAL", "5")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := runContext(t, ctx, "", "watch", "--url", ts.URL); err == nil {
			t.Fatal("an invalid environment interval should fail without a flag")
		}
		if _, err := runContext(t, ctx, "", "watch", "--url", ts.URL, "--interval", "30"); err != nil {
			t.Fatalf("--interval should replace the environment value, got error: %v", err)
		}
	})
}

func TestFetch_FailureHasNoTimestamp(t *testing.T) {
	ts := sourceServer(t, http.StatusServiceUnavailable, []byte("down"))
	sc := scraper.New(scraper.NewHTTPSource(time.Second), nil, scraper.WithURL(ts.URL))

	snap := fetch(context.Background(), sc)
	if snap.Err == nil {
		t.Fatal("fetch() should report the unreachable source")
	}
	if !snap.FetchedAt.IsZero() {
		t.Errorf("FetchedAt = %s, want zero for a failed fetch", snap.FetchedAt)
	}
}

func TestExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, fixture(t), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "extract", path, "--format", "json")
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if n := strings.Count(out, `"status":`); n != 3 {
		t.Errorf("got %d records, want 3", n)
	}

	out, err = run(t, string(fixture(t)), "extract", "-", "--filter", "team:india")
	if err != nil {
		t.Fatalf("extract from stdin error: %v", err)
	}
	if !strings.Contains(out, "India") || strings.Contains(out, "South Africa") {
		t.Errorf("filtered stdin output = %q", out)
	}

	if _, err := run(t, "", "extract", filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Error("extract of a missing file should fail")
	}
}

func TestExtract_LoosePolicyFromConfig(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "page.html")
	if err := os.WriteFile(page, fixture(t), 0600); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "cricscore.yaml")
	if err := os.WriteFile(cfg, []byte("extract:\n  require_team_name: false\n  require_teams: false\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "--config", cfg, "extract", page, "--format", "json")
	if err != nil {
		t.Fatalf("extract error: %v", err)
	}
	if n := strings.Count(out, `"status":`); n != 4 {
		t.Errorf("got %d records with the loose policy, want 4", n)
	}
}

func TestNotify_DryRun(t *testing.T) {
	ts := sourceServer(t, http.StatusOK, fixture(t))

	out, err := run(t, "", "notify", "--url", ts.URL, "--results-only")
	if err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if !strings.Contains(out, "--- Tweet 1/2 ---") || !strings.Contains(out, "--- Tweet 2/2 ---") {
		t.Errorf("dry run should print two tweets, got:\n%s", out)
	}
	if strings.Contains(out, "South Africa") {
		t.Error("matches without a result should be skipped")
	}
}

func TestNotify_NothingToSend(t *testing.T) {
	ts := sourceServer(t, http.StatusOK, []byte("<html></html>"))

	out, err := run(t, "", "notify", "--url", ts.URL)
	if err != nil {
		t.Fatalf("notify error: %v", err)
	}
	if !strings.Contains(out, "No live matches available right now.") {
		t.Errorf("output = %q", out)
	}
}

func TestNotify_InvalidChannel(t *testing.T) {
	if _, err := run(t, "", "notify", "--channel", "carrier-pigeon"); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"interval below range", []string{"watch", "--interval", "5"}},
		{"interval above range", []string{"serve", "--interval", "601"}},
		{"interval off step", []string{"watch", "--interval", "15"}},
		{"bad log level", []string{"--log-level", "loud", "once"}},
		{"bad format", []string{"extract", "--format", "xml", fixturePath}},
		{"bad filter", []string{"extract", "--filter", "venue:perth", fixturePath}},
		{"negative ttl", []string{"--ttl", "-1", "once"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if exitCode(err) != ExitError {
				t.Errorf("exit code = %d, want %d", exitCode(err), ExitError)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	fetchErr := fmt.Errorf("fetching live scores: %w", &scraper.FetchError{URL: "http://x", StatusCode: 500})

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"generic", errors.New("boom"), ExitError},
		{"fetch failed", fetchErr, ExitFetchFailed},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
