package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/service"
	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// maxBodyBytes bounds a chart request body.
const maxBodyBytes = 1 << 16

// chartRequest is the body of POST /v1/charts.
type chartRequest struct {
	Instant   time.Time `json:"instant"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timezone  string    `json:"timezone"`
	Label     string    `json:"label,omitempty"`
}

// batchRequest is the body of POST /v1/charts/batch.
type batchRequest struct {
	Charts []chartRequest `json:"charts"`
}

// batchItem is one result of a batch. Exactly one of Chart and Error is set.
type batchItem struct {
	Index int            `json:"index"`
	Chart *service.Chart `json:"chart,omitempty"`
	Error string         `json:"error,omitempty"`
	Code  string         `json:"code,omitempty"`
}

type batchResponse struct {
	Results []batchItem `json:"results"`
	Failed  int         `json:"failed"`
}

// gateResponse is the body of GET /v1/gates/{degree}.
type gateResponse struct {
	Degree float64 `json:"degree"`
	Gate   int     `json:"gate"`
	Line   int     `json:"line"`
	Name   string  `json:"name"`
	Sign   string  `json:"sign"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// POST /v1/charts[?save=false]
func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	var body chartRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	save, err := s.saveParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	chart, err := s.svc.Compute(requestContext(r), body.toService(save))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if chart.Saved {
		w.Header().Set("Location", "/v1/charts/"+chart.ID)
	}
	writeJSON(w, http.StatusCreated, chart)
}

// POST /v1/charts/batch[?save=false]
func (s *Server) handleBatchCharts(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	if len(body.Charts) == 0 || len(body.Charts) > s.opts.MaxBatchSize {
		s.writeError(w, engine.NewValidationError(
			fmt.Sprintf("a batch holds 1 to %d charts, got %d", s.opts.MaxBatchSize, len(body.Charts)), nil))
		return
	}

	save, err := s.saveParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	reqs := make([]service.ChartRequest, len(body.Charts))
	for i, c := range body.Charts {
		reqs[i] = c.toService(save)
	}

	resp := batchResponse{Results: make([]batchItem, 0, len(reqs))}
	for _, res := range s.svc.ComputeBatch(requestContext(r), reqs) {
		item := batchItem{Index: res.Index, Chart: res.Chart}
		if res.Err != nil {
			item.Error, item.Code = s.errorBody(res.Err)
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c chartRequest) toService(save bool) service.ChartRequest {
	return service.ChartRequest{
		Birth: engine.BirthData{
			Instant:   c.Instant,
			Latitude:  c.Latitude,
			Longitude: c.Longitude,
			Timezone:  c.Timezone,
		},
		Label: c.Label,
		Save:  save,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return engine.NewValidationError("invalid request body", err)
	}
	return nil
}

func (s *Server) saveParam(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("save")
	if v == "" {
		return s.opts.DefaultSave, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, engine.NewValidationError(fmt.Sprintf("invalid save parameter %q", v), err)
	}
	return b, nil
}

// requestContext tags the request logger with the chi request ID.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		ctx = telemetry.FromContext(ctx).WithRequestID(reqID).WithContext(ctx)
	}
	return ctx
}

// GET /v1/charts?type=&limit=&offset=
func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		s.writeError(w, err)
		return
	}

	list, err := s.svc.List(r.Context(), r.URL.Query().Get("type"), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /v1/charts/{id}
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

// DELETE /v1/charts/{id}
func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /v1/gates/{degree}
func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "degree")
	degree, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.writeError(w, engine.NewValidationError(fmt.Sprintf("invalid degree %q", raw), err))
		return
	}

	gate, line, err := engine.MapDegree(degree)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gateResponse{
		Degree: degree,
		Gate:   int(gate),
		Line:   int(line),
		Name:   gate.Label(),
		Sign:   engine.ZodiacSign(degree),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps a classified error to an HTTP status.
func statusFor(err error) int {
	switch engine.ErrorCode(err) {
	case engine.ErrCodeValidation, engine.ErrCodeOutOfRangeDegree:
		return http.StatusBadRequest
	case engine.ErrCodeImprintNotFound, engine.ErrCodeImprintPrecisionNotFound:
		return http.StatusUnprocessableEntity
	case engine.ErrCodeNotFound:
		return http.StatusNotFound
	case engine.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	msg, code := s.errorBody(err)
	writeJSON(w, statusFor(err), errorResponse{Error: msg, Code: code})
}

// errorBody returns the client-facing message and code. Internal failures
// are logged and reported without detail.
func (s *Server) errorBody(err error) (string, string) {
	code := engine.ErrorCode(err)
	if statusFor(err) == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("Request failed")
		return "internal error", code
	}

	var chartErr *engine.ChartError
	if errors.As(err, &chartErr) {
		return chartErr.Message, code
	}
	return err.Error(), code
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, engine.NewValidationError(fmt.Sprintf("invalid %s %q", key, v), err)
	}
	return n, nil
}
