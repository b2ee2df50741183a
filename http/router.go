package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the calculator endpoints. Everything under /rental is rate
// limited per client IP. Request ids and access logging wrap the whole router
// so unmatched paths and wrong methods are covered too.
func NewRouter(h *CalculatorHandler, limiter *RateLimiter, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	limited := RateLimitMiddleware(limiter)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	r.Handle("/rental/calculate", limited(http.HandlerFunc(h.Calculate))).Methods(http.MethodPost)
	r.Handle("/rental/apply", limited(http.HandlerFunc(h.Apply))).Methods(http.MethodPost)
	r.Handle("/rental/defaults", limited(http.HandlerFunc(h.Defaults))).Methods(http.MethodGet)
	r.Handle("/rental/report", limited(http.HandlerFunc(h.Report))).Methods(http.MethodPost)

	return RequestIDMiddleware(LoggingMiddleware(log)(r))
}
