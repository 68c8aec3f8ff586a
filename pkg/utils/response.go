package utils

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// RespondError 发送错误响应，details 为可读的原因说明。
func RespondError(w http.ResponseWriter, status int, message, details string) {
	RespondJSON(w, status, errorBody{Error: message, Details: details})
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
