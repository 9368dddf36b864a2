package handlers

import (
	"mime"
	"net/http"

	"idcards/internal/render"

	"github.com/go-chi/chi/v5"
)

// pdfResponse выставляет заголовки при первой записи: пока рендер не начал
// писать, ошибку ещё можно вернуть JSON-ом.
type pdfResponse struct {
	w       http.ResponseWriter
	name    string
	started bool
}

func (p *pdfResponse) Write(b []byte) (int, error) {
	if !p.started {
		p.started = true
		h := p.w.Header()
		h.Set("Content-Type", "application/pdf")
		h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": p.name}))
		p.w.WriteHeader(http.StatusOK)
	}
	return p.w.Write(b)
}

// Flush отправляет клиенту уже собранные страницы.
func (p *pdfResponse) Flush() {
	if p.started {
		_ = http.NewResponseController(p.w).Flush()
	}
}

// PDF отдаёт одно удостоверение
func (h *IDCardHandler) PDF(w http.ResponseWriter, r *http.Request) {
	doc, err := h.CardService.DocumentForCard(r.Context(), owner(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "PDF", err)
		return
	}
	h.writePDF(w, r, doc)
}

// PDFAll отдаёт все удостоверения владельца, по одному на страницу
func (h *IDCardHandler) PDFAll(w http.ResponseWriter, r *http.Request) {
	doc, err := h.CardService.DocumentForOwner(r.Context(), owner(r))
	if err != nil {
		writeError(w, h.Logger, "PDFAll", err)
		return
	}
	h.writePDF(w, r, doc)
}

func (h *IDCardHandler) writePDF(w http.ResponseWriter, r *http.Request, doc *render.Document) {
	out := &pdfResponse{w: w, name: doc.FileName}
	if err := h.CardService.WriteDocument(r.Context(), out, doc); err != nil {
		if !out.started {
			writeError(w, h.Logger, "PDF", err)
			return
		}
		h.Logger.Warnw("PDF: stream interrupted", "file", doc.FileName, "error", err)
	}
}
