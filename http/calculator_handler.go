package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/inexabali-blip/calculator-nedvizhimosti/domain"
	"github.com/inexabali-blip/calculator-nedvizhimosti/service"
)

const maxBodyBytes = 1 << 20

type CalculatorHandler struct {
	calculator *service.CalculatorService
	reports    *service.ReportService
	log        *logrus.Logger
}

func NewCalculatorHandler(
	calculator *service.CalculatorService,
	reports *service.ReportService,
	log *logrus.Logger,
) *CalculatorHandler {
	return &CalculatorHandler{calculator: calculator, reports: reports, log: log}
}

// Calculate handles POST /rental/calculate.
func (h *CalculatorHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var inputs domain.CalculatorInputs
	if !h.decode(w, r, &inputs) {
		return
	}

	results := h.calculator.Calculate(r.Context(), inputs)
	h.writeJSON(w, http.StatusOK, domain.CalculationResponse{Inputs: inputs, Results: results})
}

// Apply handles POST /rental/apply: a partial update on top of the given
// snapshot, or on top of the defaults when none is sent.
func (h *CalculatorHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req domain.ApplyRequest
	if !h.decode(w, r, &req) {
		return
	}

	var base domain.CalculatorInputs
	if req.Inputs != nil {
		base = *req.Inputs
	} else {
		base, _ = h.calculator.Defaults(r.Context())
	}

	inputs, results := h.calculator.Apply(r.Context(), base, req.Changes)
	h.writeJSON(w, http.StatusOK, domain.CalculationResponse{Inputs: inputs, Results: results})
}

// Defaults handles GET /rental/defaults.
func (h *CalculatorHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	inputs, results := h.calculator.Defaults(r.Context())
	h.writeJSON(w, http.StatusOK, domain.CalculationResponse{Inputs: inputs, Results: results})
}

// Report handles POST /rental/report?locale=xx.
func (h *CalculatorHandler) Report(w http.ResponseWriter, r *http.Request) {
	var inputs domain.CalculatorInputs
	if !h.decode(w, r, &inputs) {
		return
	}

	report := h.reports.BuildReport(r.Context(), inputs, r.URL.Query().Get("locale"))
	h.writeJSON(w, http.StatusOK, report)
}

func (h *CalculatorHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into dst and answers the request itself on failure.
func (h *CalculatorHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		h.log.Debugf("Error decoding request body: %v", err)
		msg := "invalid request body"
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			msg = fmt.Sprintf("invalid request body: %v", err)
		}
		http.Error(w, msg, http.StatusBadRequest)
		return false
	}
	return true
}

// writeJSON encodes into a buffer first so a failed encode can still produce a
// clean 500.
func (h *CalculatorHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		h.log.Errorf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warnf("Error writing response: %v", err)
	}
}
