package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/openfda"
)

// fakeOpenFDA serves the generic-name search of each known drug.
func fakeOpenFDA(t *testing.T, labels map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		for name, body := range labels {
			if search == openfda.SearchExpression(openfda.FieldGenericName, name) {
				_, _ = w.Write([]byte(body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupEnv(t *testing.T, upstreamURL string) {
	t.Helper()
	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_DIR", t.TempDir())
	t.Setenv("OPENFDA_BASE_URL", upstreamURL)
	t.Setenv("OPENFDA_TIMEOUT", "2s")
	t.Setenv("OPENFDA_RETRY_COUNT", "0")
	t.Setenv("UPSTREAM_PROBE_INTERVAL", "0")
}

// execute runs the command tree with args and returns what it wrote.
func execute(ctx context.Context, stdin string, args ...string) (string, string, error) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	// subcommands keep the context of their first run
	for _, c := range rootCmd.Commands() {
		c.SetContext(ctx)
	}
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		checkJSON = false
		verbose = false
		_ = logging.Close()
	}()

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}
