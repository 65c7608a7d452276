package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/World_Chronicle/internal/repository"
	"github.com/Dias221467/World_Chronicle/internal/services"
	"github.com/Dias221467/World_Chronicle/internal/store"
	jwtutil "github.com/Dias221467/World_Chronicle/pkg/jwt"
	"github.com/Dias221467/World_Chronicle/pkg/logger"
	"github.com/Dias221467/World_Chronicle/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTable  = "chronicle-test"
	testSecret = "test-secret"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	m.Run()
}

func newActivityTestHandler() *ActivityHandler {
	mem := store.NewMemoryStore(testTable)
	service := services.NewActivityService(
		repository.NewActivityRepository(mem, testTable),
		repository.NewAffiliationRepository(mem, testTable),
	)
	return NewActivityHandler(service)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestPostActivityHandler_UnauthenticatedReturnsJSONError(t *testing.T) {
	h := newActivityTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.PostActivityHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "UNAUTHENTICATED", string(body.Code))
}

func TestPostActivityHandler_MalformedBodyReturnsJSONError(t *testing.T) {
	h := newActivityTestHandler()
	token, err := jwtutil.GenerateToken("user-1", "maro@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	handler := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(h.PostActivityHandler))
	req := httptest.NewRequest(http.MethodPost, "/activities", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "INVALID_INPUT", string(body.Code))
}

func TestPostActivityHandler_ServiceErrorsKeepStableCodes(t *testing.T) {
	h := newActivityTestHandler()
	token, err := jwtutil.GenerateToken("user-1", "maro@example.com", testSecret, time.Hour)
	require.NoError(t, err)

	handler := middleware.AuthMiddleware(testSecret)(http.HandlerFunc(h.PostActivityHandler))
	req := httptest.NewRequest(http.MethodPost, "/activities",
		strings.NewReader(`{"affiliation_id":"aff-missing","content":"hello"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.Equal(t, "NOT_FOUND", string(body.Code))
}
