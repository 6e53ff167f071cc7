package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/config"
	"github.com/zinswerk/zinsrechner/internal/store"
	"github.com/zinswerk/zinsrechner/internal/validation"
	"github.com/zinswerk/zinsrechner/pkg/constants"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	service := calculator.NewService(validation.NewEngine(zap.NewNop()), zap.NewNop())
	defaults := config.Default().Calculator
	return NewHandler(zap.NewNop(), service, st, defaults, nil, "test")
}

func postJSON(t *testing.T, h http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func getPath(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestHandler(t)

	rec := getPath(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = getPath(t, h, "/api/version")
	assert.Equal(t, http.StatusOK, rec.Code)
	var version map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, "test", version["version"])
}

func TestValidateSingleField(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/validate", map[string]any{
		"field": "principal",
		"value": "-1.000,00",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result validation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, validation.FieldPrincipal, result.Errors[0].Field)
}

func TestValidateFieldMap(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/validate", map[string]any{
		"fields": map[string]any{
			"principal":  "10.000,00",
			"annualRate": 30,
			"years":      10,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result validation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Warnings, "30 percent rate should warn")
}

func TestValidateRejectsEmptyRequest(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/validate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculateValidForm(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/calculate", map[string]any{
		"principal":      10000,
		"monthlyPayment": 500,
		"annualRate":     4.0,
		"years":          10,
		"withTax":        true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Result.IsValid)
	require.NotNil(t, resp.Outcome)
	require.NotNil(t, resp.Outcome.Projection)
	assert.Greater(t, resp.Outcome.Projection.FinalBalance, 10000.0)
	assert.NotNil(t, resp.Outcome.Tax)
	require.NotNil(t, resp.Record, "valid calculations are persisted")
	assert.NotEmpty(t, resp.Record.ID)
}

func TestCalculateAcceptsGermanStrings(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/calculate", map[string]any{
		"principal":      "10.000,00 €",
		"monthlyPayment": "250,00",
		"annualRate":     "4,5 %",
		"years":          "10",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Outcome)
	assert.Greater(t, resp.Outcome.Projection.FinalBalance, 10000.0)
}

func TestCalculateBlocksInvalidForm(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/calculate", map[string]any{
		"principal":  -1000,
		"annualRate": 4.0,
		"years":      10,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Result.IsValid)
	assert.Nil(t, resp.Outcome, "invalid forms must not produce a projection")

	// Nothing may have been persisted.
	hist := getPath(t, h, "/api/history")
	require.Equal(t, http.StatusOK, hist.Code)
	var records []store.CalculationRecord
	require.NoError(t, json.Unmarshal(hist.Body.Bytes(), &records))
	assert.Empty(t, records)
}

func TestCalculateWithChurchTaxState(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/calculate", map[string]any{
		"principal":      100000,
		"annualRate":     5.0,
		"years":          10,
		"withTax":        true,
		"churchTaxState": "Bayern",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, constants.KirchensteuerBayernBW, resp.ChurchRate)
	require.NotNil(t, resp.Outcome.Tax)
	assert.Greater(t, resp.Outcome.Tax.ChurchTax, 0.0)
}

func TestCalculateUnknownState(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h, "/api/calculate", map[string]any{
		"principal":      1000,
		"annualRate":     4.0,
		"years":          10,
		"churchTaxState": "Atlantis",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	h := newTestHandler(t)

	for i := 0; i < 3; i++ {
		rec := postJSON(t, h, "/api/calculate", map[string]any{
			"principal":  1000,
			"annualRate": 4.0,
			"years":      5,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := getPath(t, h, "/api/history?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	var records []store.CalculationRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 2)

	rec = getPath(t, h, "/api/history?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChurchTaxEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rec := getPath(t, h, "/api/kirchensteuer")
	require.Equal(t, http.StatusOK, rec.Code)

	var rates []store.ChurchTaxRate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	assert.Len(t, rates, 16)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	rec := getPath(t, h, "/api/calculate")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerWithoutStore(t *testing.T) {
	service := calculator.NewService(validation.NewEngine(zap.NewNop()), zap.NewNop())
	h := NewHandler(zap.NewNop(), service, nil, config.Default().Calculator, nil, "")

	rec := getPath(t, h, "/api/history")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = postJSON(t, h, "/api/calculate", map[string]any{
		"principal":  1000,
		"annualRate": 4.0,
		"years":      5,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp calculateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Record, "no store, no persistence")
}
