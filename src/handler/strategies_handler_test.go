package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategydesk/src/model"
	"strategydesk/src/repository"
)

type mockStrategyStore struct {
	createdReq  *model.CreateStrategyRequest
	createID    string
	deletedID   string
	activeID    string
	active      bool
	err         error
	calledCount int
}

func (m *mockStrategyStore) Create(_ context.Context, req *model.CreateStrategyRequest) (string, error) {
	m.calledCount++
	m.createdReq = req
	return m.createID, m.err
}

func (m *mockStrategyStore) Delete(_ context.Context, id string) error {
	m.calledCount++
	m.deletedID = id
	return m.err
}

func (m *mockStrategyStore) SetActive(_ context.Context, id string, active bool) error {
	m.calledCount++
	m.activeID = id
	m.active = active
	return m.err
}

type mockStrategyReader struct {
	views       []model.StrategyView
	filter      repository.StrategyFilter
	findID      string
	err         error
	calledCount int
}

func (m *mockStrategyReader) List(_ context.Context, filter repository.StrategyFilter) ([]model.StrategyView, error) {
	m.calledCount++
	m.filter = filter
	return m.views, m.err
}

func (m *mockStrategyReader) FindByID(_ context.Context, id string) (*model.StrategyView, error) {
	m.calledCount++
	m.findID = id
	if m.err != nil {
		return nil, m.err
	}
	return &m.views[0], nil
}

type mockRecorder struct {
	captured []*model.Exception
}

func (m *mockRecorder) Create(_ context.Context, exc *model.Exception) error {
	m.captured = append(m.captured, exc)
	return nil
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func withRouter(pattern, method string, h http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	return r
}

func TestListStrategiesHandler_Success(t *testing.T) {
	reader := &mockStrategyReader{views: []model.StrategyView{
		{Strategy: model.Strategy{ID: "strategy_2"}},
		{Strategy: model.Strategy{ID: "strategy_1"}},
	}}
	handler := ListStrategiesHandler(reader)

	req := httptest.NewRequest(http.MethodGet, "/api/strategies?user_id=user-1&strategy_type=time_based&limit=10", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Equal(t, 1, reader.calledCount)
	require.NotNil(t, reader.filter.UserID)
	require.Equal(t, "user-1", *reader.filter.UserID)
	require.NotNil(t, reader.filter.StrategyType)
	require.Equal(t, "TIME_BASED", *reader.filter.StrategyType)
	require.Equal(t, 10, reader.filter.Limit)

	body := decodeBody(t, rr)
	require.Equal(t, float64(2), body["count"])
	require.Len(t, body["strategies"], 2)
}

func TestListStrategiesHandler_NoFilters(t *testing.T) {
	reader := &mockStrategyReader{}
	handler := ListStrategiesHandler(reader)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/strategies", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, reader.filter.UserID)
	require.Nil(t, reader.filter.StrategyType)
	require.Zero(t, reader.filter.Limit)

	body := decodeBody(t, rr)
	require.Equal(t, float64(0), body["count"])
}

func TestListStrategiesHandler_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"abc", "0", "-5"} {
		reader := &mockStrategyReader{}
		rr := httptest.NewRecorder()
		ListStrategiesHandler(reader).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/strategies?limit="+limit, nil))

		require.Equal(t, http.StatusBadRequest, rr.Code, limit)
		require.Equal(t, "Invalid limit", decodeBody(t, rr)["error"])
		require.Zero(t, reader.calledCount)
	}
}

func TestListStrategiesHandler_RepoError(t *testing.T) {
	reader := &mockStrategyReader{err: errors.New("connection refused")}
	rr := httptest.NewRecorder()
	ListStrategiesHandler(reader).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/strategies", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, "Failed to fetch strategies", body["error"])
	require.Equal(t, "connection refused", body["details"])
}

func TestGetStrategyHandler(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		reader := &mockStrategyReader{views: []model.StrategyView{{Strategy: model.Strategy{ID: "strategy_1", Name: "ORB"}}}}
		h := withRouter("/api/strategies/{id}", http.MethodGet, GetStrategyHandler(reader))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/strategies/strategy_1", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "strategy_1", reader.findID)
		strategy := decodeBody(t, rr)["strategy"].(map[string]interface{})
		require.Equal(t, "ORB", strategy["name"])
	})

	t.Run("not found", func(t *testing.T) {
		reader := &mockStrategyReader{err: repository.ErrStrategyNotFound}
		h := withRouter("/api/strategies/{id}", http.MethodGet, GetStrategyHandler(reader))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/strategies/strategy_9", nil))

		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Strategy not found", decodeBody(t, rr)["error"])
	})
}

func TestCreateStrategyHandler_Success(t *testing.T) {
	store := &mockStrategyStore{createID: "strategy_1740820500000_abcdef123"}
	handler := CreateStrategyHandler(store, &mockRecorder{})

	payload := `{
		"user_id": "user-1",
		"name": "Opening range",
		"strategy_type": "TIME_BASED",
		"risk_management": {"stop_loss_value": "1.5"},
		"strategy_specific_data": {"order_legs": [{"quantity": 50}]}
	}`
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/strategies", strings.NewReader(payload)))

	require.Equal(t, http.StatusCreated, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, "strategy_1740820500000_abcdef123", body["strategy_id"])
	require.Equal(t, "Strategy created successfully", body["message"])

	require.NotNil(t, store.createdReq)
	require.Equal(t, "user-1", store.createdReq.UserID)
	require.JSONEq(t, `[{"quantity": 50}]`, string(store.createdReq.StrategySpecificData.OrderLegs))
}

func TestCreateStrategyHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		message string
	}{
		{name: "malformed json", payload: `{"user_id":`, message: "Invalid request body"},
		{name: "missing user", payload: `{"name":"n","strategy_type":"TIME_BASED"}`, message: "Validation failed"},
		{name: "missing name", payload: `{"user_id":"u","strategy_type":"TIME_BASED"}`, message: "Validation failed"},
		{name: "missing type", payload: `{"user_id":"u","name":"n"}`, message: "Validation failed"},
		{name: "blank required fields", payload: `{"user_id":"   ","name":"  ","strategy_type":" "}`, message: "Validation failed"},
		{
			name:    "unknown trailing mode",
			payload: `{"user_id":"u","name":"n","strategy_type":"TIME_BASED","profit_trailing":{"trailing_type":"moon"}}`,
			message: "Validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStrategyStore{}
			rr := httptest.NewRecorder()
			CreateStrategyHandler(store, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/strategies", strings.NewReader(tt.payload)))

			require.Equal(t, http.StatusBadRequest, rr.Code)
			require.Equal(t, tt.message, decodeBody(t, rr)["error"])
			require.Zero(t, store.calledCount)
		})
	}
}

func TestCreateStrategyHandler_TrimsBeforeStore(t *testing.T) {
	store := &mockStrategyStore{createID: "strategy_1"}

	rr := httptest.NewRecorder()
	CreateStrategyHandler(store, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/strategies",
		strings.NewReader(`{"user_id":" user-1 ","name":" ORB ","strategy_type":" time_based "}`)))

	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, "user-1", store.createdReq.UserID)
	require.Equal(t, "ORB", store.createdReq.Name)
	require.Equal(t, model.StrategyTypeTimeBased, store.createdReq.StrategyType)
}

func TestCreateStrategyHandler_StoreRejectsInvalid(t *testing.T) {
	store := &mockStrategyStore{err: repository.ErrStrategyInvalid}
	recorder := &mockRecorder{}

	rr := httptest.NewRecorder()
	CreateStrategyHandler(store, recorder).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/strategies",
		strings.NewReader(`{"user_id":"u","name":"n","strategy_type":"SWING"}`)))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "Validation failed", decodeBody(t, rr)["error"])
	require.Empty(t, recorder.captured)
}

func TestCreateStrategyHandler_StoreError(t *testing.T) {
	store := &mockStrategyStore{err: errors.New("insert into strategy_config: disk full")}
	recorder := &mockRecorder{}

	rr := httptest.NewRecorder()
	CreateStrategyHandler(store, recorder).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/strategies",
		strings.NewReader(`{"user_id":"u","name":"n","strategy_type":"PROGRAMMING"}`)))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	require.Equal(t, "Failed to create strategy", body["error"])
	require.Equal(t, "insert into strategy_config: disk full", body["details"])

	require.Len(t, recorder.captured, 1)
	assert.Equal(t, "CreateStrategy", recorder.captured[0].Method)
}

func TestDeleteStrategyHandler(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		store := &mockStrategyStore{}
		rr := httptest.NewRecorder()
		DeleteStrategyHandler(store, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/strategies", nil))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.JSONEq(t, `{"error":"Strategy ID is required"}`, rr.Body.String())
		require.Zero(t, store.calledCount)
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStrategyStore{err: repository.ErrStrategyNotFound}
		rr := httptest.NewRecorder()
		DeleteStrategyHandler(store, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/strategies?id=strategy_9", nil))

		require.Equal(t, http.StatusNotFound, rr.Code)
		require.Equal(t, "Strategy not found", decodeBody(t, rr)["error"])
	})

	t.Run("store failure", func(t *testing.T) {
		store := &mockStrategyStore{err: errors.New("deadlock detected")}
		recorder := &mockRecorder{}
		rr := httptest.NewRecorder()
		DeleteStrategyHandler(store, recorder).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/strategies?id=strategy_1", nil))

		require.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decodeBody(t, rr)
		require.Equal(t, "Failed to delete strategy", body["error"])
		require.Equal(t, "deadlock detected", body["details"])
		require.Len(t, recorder.captured, 1)
	})

	t.Run("deleted", func(t *testing.T) {
		store := &mockStrategyStore{}
		rr := httptest.NewRecorder()
		DeleteStrategyHandler(store, nil).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/strategies?id=strategy_1", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "strategy_1", store.deletedID)
		require.Equal(t, "strategy_1", decodeBody(t, rr)["strategy_id"])
	})
}

func TestUpdateStrategyStatusHandler(t *testing.T) {
	route := "/api/strategies/{id}/status"

	t.Run("deactivate", func(t *testing.T) {
		store := &mockStrategyStore{}
		h := withRouter(route, http.MethodPatch, UpdateStrategyStatusHandler(store))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/strategies/strategy_1/status", strings.NewReader(`{"is_active":false}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		require.Equal(t, "strategy_1", store.activeID)
		require.False(t, store.active)
		require.Equal(t, false, decodeBody(t, rr)["is_active"])
	})

	t.Run("missing flag", func(t *testing.T) {
		store := &mockStrategyStore{}
		h := withRouter(route, http.MethodPatch, UpdateStrategyStatusHandler(store))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/strategies/strategy_1/status", strings.NewReader(`{}`)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "Validation failed", decodeBody(t, rr)["error"])
		require.Zero(t, store.calledCount)
	})

	t.Run("unknown field", func(t *testing.T) {
		store := &mockStrategyStore{}
		h := withRouter(route, http.MethodPatch, UpdateStrategyStatusHandler(store))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/strategies/strategy_1/status", strings.NewReader(`{"active":true}`)))

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "Invalid request body", decodeBody(t, rr)["error"])
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockStrategyStore{err: repository.ErrStrategyNotFound}
		h := withRouter(route, http.MethodPatch, UpdateStrategyStatusHandler(store))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPatch, "/api/strategies/strategy_9/status", strings.NewReader(`{"is_active":true}`)))

		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}
