package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"CancelDash/api/constants"
	"CancelDash/internal/logger"
)

const HeaderRequestID = "X-Request-ID"

// CORSMiddleware allows the dashboard front end to call the service from
// another origin. Preflight requests are answered directly.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderAccessControlAllowOrigin, "*")
		w.Header().Set(constants.HeaderAccessControlAllowHeaders, "Content-Type, Cache-Control, "+HeaderRequestID)
		w.Header().Set(constants.HeaderAccessControlAllowMethods, "GET, POST, PUT, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogMiddleware tags each request with an id and logs its outcome.
func RequestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, reqID)

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		logger.L().Infow("request",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", extractClientIP(r),
		)
	})
}
