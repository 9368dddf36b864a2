package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"idcards/internal/service"
)

const bulkField = "file"

// BulkUpload импортирует удостоверения из xlsx/csv (поле file)
func (h *IDCardHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	path, err := h.saveUpload(r)
	if err != nil {
		writeError(w, h.Logger, "BulkUpload", err)
		return
	}

	res, err := h.CardService.Import(r.Context(), owner(r), path)
	if err != nil {
		writeError(w, h.Logger, "BulkUpload", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": fmt.Sprintf("%d ID cards imported successfully", res.Count),
		"count":   res.Count,
		"records": res.Records,
	})
}

// saveUpload копирует загруженный файл во временный файл с тем же расширением.
func (h *IDCardHandler) saveUpload(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", err
		}
		return "", service.ErrNoFile
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	src, fh, err := r.FormFile(bulkField)
	if err != nil {
		return "", service.ErrNoFile
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	tmp, err := os.CreateTemp("", "idcards-import-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("store upload: %w", err)
	}
	return tmp.Name(), nil
}
