package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"CancelDash/api/constants"
	"CancelDash/internal/logger"
)

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get(constants.HeaderForwardedFor); xff != "" {
		return xff
	}
	return r.RemoteAddr
}

// createReverseProxy returns a reverse proxy handler for the given target URL
func createReverseProxy(target string) (http.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("bad target URL %s: %w", target, err)
	}
	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Audit("gateway proxy error", "target", target, "path", r.URL.Path, "error", err)
		RespondWithError(w, http.StatusBadGateway, "Upstream service unavailable")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)
		logger.Audit("gateway incoming request", "method", r.Method, "path", r.URL.Path, "client_ip", clientIP)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		proxy.ServeHTTP(rw, r)
		if rw.statusCode >= 400 {
			logger.Audit("gateway proxied with error",
				"target", target, "path", r.URL.Path, "status", rw.statusCode, "body", rw.body.String())
		} else {
			logger.Audit("gateway proxied", "target", target, "path", r.URL.Path, "status", rw.statusCode)
		}
	}, nil
}

// responseWriter wraps http.ResponseWriter to capture the status code, and
// the body of error responses
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps event streams flowing through the proxy.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// NewGatewayHandler routes /dashboard/ to the dashboard service.
func NewGatewayHandler(dashboardTarget string) (http.Handler, error) {
	mux := http.NewServeMux()

	dashboardProxy, err := createReverseProxy(dashboardTarget)
	if err != nil {
		return nil, err
	}
	mux.HandleFunc(constants.DashboardPrefix+"/", dashboardProxy)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API Gateway is healthy"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		logger.Audit("gateway route not found", "path", r.URL.Path, "remote", r.RemoteAddr)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("404 - Route not found"))
	})

	return mux, nil
}
