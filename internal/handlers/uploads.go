package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"idcards/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadHandler отдаёт сохранённые фотографии по /uploads/{name}.
type UploadHandler struct {
	Files  storage.FileStore
	Logger *zap.SugaredLogger
}

func NewUploadHandler(files storage.FileStore, logger *zap.SugaredLogger) *UploadHandler {
	return &UploadHandler{Files: files, Logger: logger}
}

func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := h.Files.Open(r.Context(), name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			h.Logger.Warnw("uploads: open failed", "photo", name, "error", err)
		}
		// неизвестное и недопустимое имя неотличимы для клиента
		http.NotFound(w, r)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("uploads: copy failed", "photo", name, "error", err)
	}
}
