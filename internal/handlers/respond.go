package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"idcards/internal/importer"
	"idcards/internal/service"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError переводит ошибку сервиса в HTTP-ответ. Всё неизвестное — 500
// с текстом ошибки в поле error.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, service.ErrNoCards):
		writeMessage(w, http.StatusNotFound, "No ID Cards found")
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "ID Card not found")
	case errors.Is(err, service.ErrDuplicateIDNumber):
		writeMessage(w, http.StatusBadRequest, "ID Number already exists")
	case errors.Is(err, service.ErrNoFile):
		writeMessage(w, http.StatusBadRequest, "No file uploaded")
	case errors.Is(err, importer.ErrUnsupportedFormat):
		writeMessage(w, http.StatusBadRequest, "Unsupported file format")
	case errors.Is(err, service.ErrBadInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrLoginTaken):
		writeMessage(w, http.StatusConflict, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.As(err, &maxErr):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		logger.Errorw(op+": internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Server error",
			"error":   err.Error(),
		})
	}
}
