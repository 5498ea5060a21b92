package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/internal/infrastructure/export"
	"github.com/jhoicas/piecework-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/piecework-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/piecework-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "piecework-api-test"
	testExpMin    = 60
	driverID      = "driver-1"
	otherDriverID = "driver-2"
	managerID     = "manager-1"
)

type testAPI struct {
	app *fiber.App
	mem *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	mem := memory.NewStore()
	store := apppw.Store{Repos: mem.Repositories(), Tx: mem}
	opts := apppw.Options{
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC) },
	}
	stats := apppw.NewStatsUseCase(store.Repos, opts)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Catalog:   apppw.NewCatalogUseCase(store, opts),
		Resolver:  apppw.NewPriceResolverUseCase(store.Repos.Prices, opts),
		Accrual:   apppw.NewAccrualUseCase(store, opts),
		Stats:     stats,
		Reports:   apppw.NewReportUseCase(store.Repos, stats, opts, export.NewExcelRenderer(), export.NewPDFRenderer()),
		JWTSecret: testJWTSecret,
		Logger:    zerolog.Nop(),
	})
	return &testAPI{app: app, mem: mem}
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (a *testAPI) do(t *testing.T, method, path, auth string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}
