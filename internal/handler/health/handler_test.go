package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	hasKey bool
	models []string
}

func (s stubChecker) HasAPIKey() bool          { return s.hasKey }
func (s stubChecker) AvailableModels() []string { return s.models }

func serve(checker Checker) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	New(checker).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	return resp
}

func TestHealthWithKey(t *testing.T) {
	resp := serve(stubChecker{hasKey: true, models: []string{"deepseek-chat"}})

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","hasApiKey":true,"models":["deepseek-chat"]}`, resp.Body.String())
}

func TestHealthWithoutKey(t *testing.T) {
	resp := serve(nil)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok","hasApiKey":false}`, resp.Body.String())
}
