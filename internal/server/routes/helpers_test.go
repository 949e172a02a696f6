package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/hubs"
	"github.com/hubs-api/hubs-api/internal/metrics"
	"github.com/hubs-api/hubs-api/internal/server"
	"github.com/hubs-api/hubs-api/internal/store"
)

func newTestApp(t *testing.T, db hubs.Database, clock func() time.Time) *fiber.App {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := metrics.New()
	app, err := server.NewApp(server.AppOptions{Logger: logger, Metrics: m})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	Register(app, Dependencies{
		Database: metrics.InstrumentDatabase(db, m),
		Logger:   logger,
		Clock:    clock,
		Gatherer: m.Registry,
	})
	return app
}

func newMemoryApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestApp(t, store.NewMemoryStore(), nil)
}

type testResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r testResponse) json(t *testing.T) map[string]any {
	t.Helper()
	var decoded map[string]any
	if err := json.Unmarshal(r.body, &decoded); err != nil {
		t.Fatalf("expected JSON object body, got %q: %v", r.body, err)
	}
	return decoded
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) testResponse {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return testResponse{status: resp.StatusCode, header: resp.Header, body: raw}
}

// failingDatabase 让每个操作都失败，用于覆盖 500 分支。
type failingDatabase struct {
	err error
}

func (f failingDatabase) Find(context.Context) ([]hubs.Hub, error) { return nil, f.err }
func (f failingDatabase) FindByID(context.Context, string) (*hubs.Hub, error) {
	return nil, f.err
}
func (f failingDatabase) Add(context.Context, hubs.Fields) (*hubs.Hub, error) {
	return nil, f.err
}
func (f failingDatabase) Update(context.Context, string, hubs.Fields) (*hubs.Hub, error) {
	return nil, f.err
}
func (f failingDatabase) Remove(context.Context, string) (bool, error) { return false, f.err }

// recordingDatabase 记录传入参数，验证处理器原样转发。
type recordingDatabase struct {
	*store.MemoryStore
	lastID     string
	lastFields hubs.Fields
	addCalls   int
}

func (r *recordingDatabase) Add(ctx context.Context, fields hubs.Fields) (*hubs.Hub, error) {
	r.addCalls++
	r.lastFields = fields
	return r.MemoryStore.Add(ctx, fields)
}

func (r *recordingDatabase) FindByID(ctx context.Context, id string) (*hubs.Hub, error) {
	r.lastID = id
	return r.MemoryStore.FindByID(ctx, id)
}

var errBoom = errors.New("connection refused")

func newStore() *store.MemoryStore {
	return store.NewMemoryStore()
}
