package api

import (
	"encoding/json"
	"net/http"

	"CancelDash/api/constants"
	"CancelDash/internal/logger"
)

// Error response helper
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	if status >= http.StatusInternalServerError {
		logger.L().Errorw("request failed", "status", status, "error", errMsg)
	} else {
		logger.L().Infow("request rejected", "status", status, "error", errMsg)
	}
	RespondWithJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithJSON writes payload as the JSON body with the given status.
func RespondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set(constants.ContentTypeText, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L().Warnw("failed to encode response", "error", err)
	}
}

// RespondWithPayload sends {"success": true, ...fields}.
func RespondWithPayload(w http.ResponseWriter, status int, fields map[string]interface{}) {
	resp := map[string]interface{}{"success": true}
	for k, v := range fields {
		resp[k] = v
	}
	RespondWithJSON(w, status, resp)
}

// LogInfo logs an informational message (wrapper for consistent logging)
func LogInfo(msg string, keysAndValues ...interface{}) {
	logger.L().Infow(msg, keysAndValues...)
}

// LogError logs an error message (wrapper for consistent logging)
func LogError(msg string, keysAndValues ...interface{}) {
	logger.L().Errorw(msg, keysAndValues...)
}
