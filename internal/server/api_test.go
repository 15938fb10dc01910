package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ReC82/LodyLand/internal/auth"
	"github.com/ReC82/LodyLand/internal/content"
	"github.com/ReC82/LodyLand/internal/game"
	"github.com/ReC82/LodyLand/internal/progression"
	"github.com/ReC82/LodyLand/internal/state"
	"github.com/ReC82/LodyLand/internal/telemetry"
)

type apiFixture struct {
	api     *API
	router  http.Handler
	clock   *game.FakeClock
	cookies []*http.Cookie
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := content.Default()
	clock := game.NewFakeClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))
	api := &API{
		Engine: game.Engine{
			State:   state.NewMemoryRepo(),
			Content: store,
			Ledger:  progression.NewLedger(store),
			Events:  telemetry.NewMemoryRepository(),
			Clock:   clock,
		},
		Auth:   auth.NewService(24 * time.Hour),
		Events: telemetry.NewMemoryRepository(),
		Logger: log.New(io.Discard, "", 0),
	}
	return &apiFixture{api: api, router: api.Router(), clock: clock}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		f.cookies = cs
	}
	return rec
}

func (f *apiFixture) register(t *testing.T, name string) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/register", map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func body(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body(t, rec)["ok"])
}

func TestRegisterSetsSessionCookie(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/register", map[string]any{"name": "lody"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Result().Cookies())

	me := f.do(t, http.MethodGet, "/api/me", nil)
	assert.Equal(t, http.StatusOK, me.Code, me.Body.String())
}

func TestRegisterRejectsShortName(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/register", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, game.CodeInvalidName, body(t, rec)["error"])
}

func TestRegisterDuplicateNameConflicts(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "dupe")
	rec := f.do(t, http.MethodPost, "/api/register", map[string]any{"name": "dupe"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, game.CodeNameTaken, body(t, rec)["error"])
}

func TestLoginUnknownName(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(t, http.MethodPost, "/api/login", map[string]any{"name": "nobody"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	f := newAPIFixture(t)
	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/state"},
		{http.MethodGet, "/api/me"},
		{http.MethodPost, "/api/tiles/unlock"},
		{http.MethodPost, "/api/sell"},
		{http.MethodGet, "/api/daily"},
		{http.MethodGet, "/api/stats"},
	} {
		rec := f.do(t, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestContentRoutesArePublic(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/content/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resources []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resources))
	assert.NotEmpty(t, resources)

	rec = f.do(t, http.MethodGet, "/api/content/recipes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var recipes []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipes))
	assert.NotEmpty(t, recipes)
}

func TestUnlockAndCollectTile(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "collector")

	rec := f.do(t, http.MethodPost, "/api/tiles/unlock", map[string]any{"resource": "branch"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/tiles/1/collect", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Collecting again before the cooldown expires is rejected with the
	// retry timestamp.
	rec = f.do(t, http.MethodPost, "/api/tiles/1/collect", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	b := body(t, rec)
	assert.Equal(t, game.CodeOnCooldown, b["error"])
	assert.NotEmpty(t, b["until"])

	f.clock.Advance(5 * time.Second)
	rec = f.do(t, http.MethodPost, "/api/tiles/1/collect", nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCollectBadTileID(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "collector")

	rec := f.do(t, http.MethodPost, "/api/tiles/999/collect", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, game.CodeTileNotFound, body(t, rec)["error"])
}

func TestLockedResourceIsForbidden(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "lowlevel")

	// Stone needs level 2.
	rec := f.do(t, http.MethodPost, "/api/tiles/unlock", map[string]any{"resource": "stone"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, game.CodeLevelTooLow, body(t, rec)["error"])
}

func TestSellValidation(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "seller")

	rec := f.do(t, http.MethodPost, "/api/sell", map[string]any{"resource": "branch", "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, game.CodeInvalidQuantity, body(t, rec)["error"])
}

func TestBuyCardWithoutFunds(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "broke")

	rec := f.do(t, http.MethodPost, "/api/shop/cards/boost_branch_yield/buy", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, game.CodeNotEnoughCoins, body(t, rec)["error"])
}

func TestCraftMissingResources(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "crafter")

	rec := f.do(t, http.MethodPost, "/api/craft", map[string]any{"item_key": "item_rope"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	b := body(t, rec)
	assert.Equal(t, game.CodeNotEnoughRes, b["error"])
	assert.NotEmpty(t, b["missing"])
}

func TestDailyClaimRoundTrip(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "daily")

	rec := f.do(t, http.MethodGet, "/api/daily", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body(t, rec)["ready"])

	rec = f.do(t, http.MethodPost, "/api/daily/claim", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), body(t, rec)["streak"])

	rec = f.do(t, http.MethodPost, "/api/daily/claim", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	b := body(t, rec)
	assert.Equal(t, game.CodeAlreadyClaimed, b["error"])
	assert.NotEmpty(t, b["next_eligible_at"])
}

func TestLogoutRevokesSession(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "leaver")

	rec := f.do(t, http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/state", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "stats")

	rec := f.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/stats?since=not-a-date", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusForCode(game.CodeTileNotFound))
	assert.Equal(t, http.StatusBadRequest, statusForCode(game.CodeInvalidQuantity))
	assert.Equal(t, http.StatusForbidden, statusForCode(game.CodeLandLocked))
	assert.Equal(t, http.StatusConflict, statusForCode(game.CodeOnCooldown))
	assert.Equal(t, http.StatusConflict, statusForCode("something_new"))
}
