package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Overland-East-Bay/membership-tracker/internal/adapters/httpapi"
	memclock "github.com/Overland-East-Bay/membership-tracker/internal/adapters/memory/clock"
	postgres_testutil "github.com/Overland-East-Bay/membership-tracker/internal/adapters/postgres/testutil"
	"github.com/Overland-East-Bay/membership-tracker/internal/platform/config"
	"github.com/Overland-East-Bay/membership-tracker/internal/setup"
)

type backend string

const (
	backendMemory   backend = "memory"
	backendFile     backend = "file"
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "local":
		return []backend{backendMemory, backendFile, backendSQLite}
	case "memory":
		return []backend{backendMemory}
	case "file":
		return []backend{backendFile}
	case "sqlite":
		return []backend{backendSQLite}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendMemory, backendFile, backendSQLite, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|file|sqlite|postgres|local|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	client  *http.Client
	clock   *memclock.ManualClock

	// restart rebuilds the application on the same durable storage.
	restart func(t *testing.T)
}

func environFor(t *testing.T, b backend) map[string]string {
	t.Helper()

	environ := map[string]string{
		"MEMBERSHIPS_STORAGE_BACKEND": string(b),
		// A per-test key keeps shared databases isolated between runs.
		"MEMBERSHIPS_STORAGE_KEY": "itest-" + uuid.NewString(),
	}
	switch b {
	case backendMemory:
	case backendFile:
		environ["MEMBERSHIPS_STORAGE_FILE_DIR"] = t.TempDir()
	case backendSQLite:
		environ["MEMBERSHIPS_STORAGE_SQLITE_DSN"] = filepath.Join(t.TempDir(), "memberships.sqlite")
	case backendPostgres:
		dsn := os.Getenv(postgres_testutil.EnvDatabaseURL)
		if dsn == "" {
			t.Skipf("%s not set; skipping postgres integration tests", postgres_testutil.EnvDatabaseURL)
		}
		environ["MEMBERSHIPS_STORAGE_POSTGRES_DSN"] = dsn
	default:
		t.Fatalf("unknown backend: %s", b)
	}
	return environ
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	conf, err := config.ParseWithEnvironment(environFor(t, b))
	if err != nil {
		t.Fatalf("ParseWithEnvironment: %v", err)
	}
	clk := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	s := &testServer{clock: clk}
	var (
		srv *httptest.Server
		app *setup.App
	)
	stop := func() {
		if srv != nil {
			srv.Close()
		}
		if app != nil {
			app.Close()
		}
	}
	// Cleanup is tied to the outer test so a restart inside a subtest keeps
	// serving the remaining steps.
	t.Cleanup(func() { stop() })

	start := func(t *testing.T) {
		t.Helper()
		var err error
		app, err = setup.New(context.Background(), conf, nil, clk)
		if err != nil {
			t.Fatalf("setup.New: %v", err)
		}
		api := httpapi.NewServer(app.Service, app.Idempotency, clk, nil)
		srv = httptest.NewServer(httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{DisableMetrics: true}))
		s.baseURL = srv.URL
		s.client = srv.Client()
	}
	start(t)

	s.restart = func(t *testing.T) {
		t.Helper()
		if b == backendMemory {
			t.Skipf("memory backend does not survive a restart")
		}
		stop()
		start(t)
	}
	return s
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, headers map[string]string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
}

func requireHeaderPresent(t *testing.T, h http.Header, key string) {
	t.Helper()
	if strings.TrimSpace(h.Get(key)) == "" {
		t.Fatalf("expected header %q to be present", key)
	}
}
