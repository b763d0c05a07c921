package helpers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal response payload", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func RespondWithError(w http.ResponseWriter, status int, codes []string) {
	RespondWithJSON(w, status, map[string][]string{"errors": codes})
}
