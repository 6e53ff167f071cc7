// Package server exposes the calculator as a JSON HTTP API: validation,
// calculation, calculation history, and the seeded church-tax rates.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/config"
	"github.com/zinswerk/zinsrechner/internal/store"
	"github.com/zinswerk/zinsrechner/internal/validation"
	"github.com/zinswerk/zinsrechner/pkg/constants"
)

type handler struct {
	logger   *zap.Logger
	service  *calculator.Service
	store    *store.Store
	defaults config.CalculatorConfig
	maxBody  int64
	version  string
}

// NewHandler constructs the HTTP handler. The store may be nil; history
// and church-tax endpoints then answer 503 and calculations are not
// persisted.
func NewHandler(logger *zap.Logger, service *calculator.Service, st *store.Store,
	defaults config.CalculatorConfig, cfg *Config, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if service == nil {
		service = calculator.NewService(nil, logger)
	}

	maxBody := constants.DefaultMaxRequestBytes
	allowedOrigins := []string{"*"}
	if cfg != nil {
		if cfg.MaxRequestBytes > 0 {
			maxBody = cfg.MaxRequestBytes
		}
		if len(cfg.AllowedOrigins) > 0 {
			allowedOrigins = cfg.AllowedOrigins
		}
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:   logger,
		service:  service,
		store:    st,
		defaults: defaults,
		maxBody:  maxBody,
		version:  trimmedVersion,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/validate", h.handleValidate).Methods(http.MethodPost)
	r.HandleFunc("/api/calculate", h.handleCalculate).Methods(http.MethodPost)
	r.HandleFunc("/api/history", h.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/kirchensteuer", h.handleChurchTaxRates).Methods(http.MethodGet)
	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// Run serves the handler until the context is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, logger *zap.Logger, addr string, h http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "server.Run"),
			zap.String("address", addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type validateRequest struct {
	// Field plus Value validates a single field; Fields validates a map.
	Field  string         `json:"field,omitempty"`
	Value  any            `json:"value,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

type calculateRequest struct {
	Principal         any    `json:"principal"`
	MonthlyPayment    any    `json:"monthlyPayment,omitempty"`
	AnnualRate        any    `json:"annualRate"`
	Years             any    `json:"years"`
	InflationRate     any    `json:"inflationRate,omitempty"`
	CompoundFrequency int    `json:"compoundFrequency,omitempty"`
	WithTax           *bool  `json:"withTax,omitempty"`
	ChurchTaxState    string `json:"churchTaxState,omitempty"`
}

type calculateResponse struct {
	Result     validation.Result        `json:"result"`
	Outcome    *calculator.Outcome      `json:"outcome,omitempty"`
	Record     *store.CalculationRecord `json:"record,omitempty"`
	ChurchRate float64                  `json:"churchTaxRate,omitempty"`
	Duration   string                   `json:"duration"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}

	engine := h.service.Engine()

	if len(req.Fields) > 0 {
		values := make(map[validation.FieldName]any, len(req.Fields))
		for name, raw := range req.Fields {
			values[validation.FieldName(name)] = raw
		}
		h.respondJSON(w, http.StatusOK, engine.ValidateFields(values))
		return
	}

	if req.Field == "" {
		h.respondError(w, http.StatusBadRequest, "request must carry either field or fields")
		return
	}
	result := engine.ValidateField(validation.FieldName(req.Field), req.Value, validation.Context{})
	h.respondJSON(w, http.StatusOK, result)
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req calculateRequest
	if !h.decode(w, r, &req) {
		return
	}

	engine := h.service.Engine()
	// Each request is its own form lifecycle; stale error state from
	// earlier requests must not leak into this one.
	engine.ClearAllErrors()

	values := map[validation.FieldName]any{
		validation.FieldPrincipal:  req.Principal,
		validation.FieldAnnualRate: req.AnnualRate,
		validation.FieldYears:      req.Years,
	}
	if req.MonthlyPayment != nil {
		values[validation.FieldMonthlyPayment] = req.MonthlyPayment
	}
	if req.InflationRate != nil {
		values[validation.FieldInflationRate] = req.InflationRate
	}

	// The submit gate: nothing is calculated unless validation passes.
	result := engine.ValidateFields(values)
	if !result.IsValid {
		h.respondJSON(w, http.StatusUnprocessableEntity, calculateResponse{
			Result:   result,
			Duration: time.Since(start).String(),
		})
		return
	}

	form := validation.CalculatorForm{CompoundFrequency: req.CompoundFrequency}
	if form.CompoundFrequency == 0 {
		form.CompoundFrequency = h.defaults.CompoundFrequency
	}
	form.Principal, _ = engine.NumberValue(validation.FieldPrincipal, req.Principal)
	form.MonthlyPayment, _ = engine.NumberValue(validation.FieldMonthlyPayment, req.MonthlyPayment)
	form.AnnualRate, _ = engine.NumberValue(validation.FieldAnnualRate, req.AnnualRate)
	form.Years, _ = engine.NumberValue(validation.FieldYears, req.Years)
	if req.InflationRate != nil {
		form.InflationRate, _ = engine.NumberValue(validation.FieldInflationRate, req.InflationRate)
	}

	withTax := h.defaults.ApplyTax
	if req.WithTax != nil {
		withTax = *req.WithTax
	}

	taxOpts := calculator.TaxOptions{
		ChurchTaxRate: h.defaults.ChurchTaxRate,
		AllowanceUsed: h.defaults.AllowanceUsed,
	}
	var churchRate float64
	if req.ChurchTaxState != "" {
		if h.store == nil {
			h.respondError(w, http.StatusServiceUnavailable, "church tax lookup requires the store")
			return
		}
		rate, err := h.store.ChurchTaxRateFor(r.Context(), req.ChurchTaxState)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		taxOpts.ChurchTaxRate = rate
		churchRate = rate
	}

	outcome, result, err := h.service.Calculate(form, withTax, taxOpts)
	if err != nil {
		h.logger.Error("calculation failed",
			zap.String("op", "server.handleCalculate"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "calculation failed")
		return
	}
	if outcome == nil {
		h.respondJSON(w, http.StatusUnprocessableEntity, calculateResponse{
			Result:   result,
			Duration: time.Since(start).String(),
		})
		return
	}

	resp := calculateResponse{
		Result:     result,
		Outcome:    outcome,
		ChurchRate: churchRate,
		Duration:   time.Since(start).String(),
	}

	if h.store != nil {
		record, saveErr := h.store.SaveCalculation(r.Context(), form, outcome)
		if saveErr != nil {
			// History is best-effort; the calculation result still stands.
			h.logger.Warn("failed to persist calculation",
				zap.String("op", "server.handleCalculate"),
				zap.Error(saveErr),
			)
		} else {
			resp.Record = record
		}
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusServiceUnavailable, "history requires the store")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	records, err := h.store.ListCalculations(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list history",
			zap.String("op", "server.handleHistory"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if records == nil {
		records = []store.CalculationRecord{}
	}
	h.respondJSON(w, http.StatusOK, records)
}

func (h *handler) handleChurchTaxRates(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusServiceUnavailable, "church tax rates require the store")
		return
	}

	rates, err := h.store.ChurchTaxRates(r.Context())
	if err != nil {
		h.logger.Error("failed to list church tax rates",
			zap.String("op", "server.handleChurchTaxRates"),
			zap.Error(err),
		)
		h.respondError(w, http.StatusInternalServerError, "failed to list church tax rates")
		return
	}
	h.respondJSON(w, http.StatusOK, rates)
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBody))
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response",
			zap.String("op", "server.respondJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, errorResponse{Error: msg})
}
