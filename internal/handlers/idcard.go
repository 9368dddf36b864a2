package handlers

import (
	"net/http"
	"strings"

	"idcards/internal/config"
	"idcards/internal/middleware"
	"idcards/internal/model"
	"idcards/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// IDCardHandler обслуживает /api/idcards.
type IDCardHandler struct {
	CardService *service.IDCardService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewIDCardHandler создаёт хендлер удостоверений
func NewIDCardHandler(cardService *service.IDCardService, logger *zap.SugaredLogger, cfg *config.Config) *IDCardHandler {
	return &IDCardHandler{CardService: cardService, Logger: logger, Config: cfg}
}

func owner(r *http.Request) string {
	// маршрут закрыт WithAuth, владелец всегда есть
	uid, _ := middleware.GetUserIDFromContext(r.Context())
	return uid
}

// Create создаёт удостоверение из формы (фото — поле photo)
func (h *IDCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := readCardForm(r)
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	in, err := form.input()
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	photo, closePhoto, err := form.openPhoto()
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	defer closePhoto()
	in.Photo = photo

	card, err := h.CardService.Create(r.Context(), owner(r), in)
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "ID Card created",
		"idCard":  card,
	})
}

// List возвращает удостоверения владельца; photo — абсолютный URL или null
func (h *IDCardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.CardService.List(r.Context(), owner(r))
	if err != nil {
		writeError(w, h.Logger, "List", err)
		return
	}
	base := h.photoBaseURL(r)
	out := make([]model.IDCard, 0, len(cards))
	for _, c := range cards {
		if name := c.PhotoName(); name != "" {
			u := base + "/" + name
			c.Photo = &u
		} else {
			c.Photo = nil
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *IDCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, err := h.CardService.Get(r.Context(), owner(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, "Get", err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// Update применяет только присланные поля
func (h *IDCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := readCardForm(r)
	if err != nil {
		writeError(w, h.Logger, "Update", err)
		return
	}
	patch, err := form.patch()
	if err != nil {
		writeError(w, h.Logger, "Update", err)
		return
	}
	photo, closePhoto, err := form.openPhoto()
	if err != nil {
		writeError(w, h.Logger, "Update", err)
		return
	}
	defer closePhoto()
	patch.Photo = photo

	card, err := h.CardService.Update(r.Context(), owner(r), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Logger, "Update", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "ID Card updated",
		"card":    card,
	})
}

func (h *IDCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.CardService.Delete(r.Context(), owner(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, "Delete", err)
		return
	}
	writeMessage(w, http.StatusOK, "ID Card deleted")
}

// photoBaseURL — PHOTO_BASE_URL либо адрес, по которому пришёл запрос.
func (h *IDCardHandler) photoBaseURL(r *http.Request) string {
	if h.Config.PhotoBaseURL != "" {
		return h.Config.PhotoBaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}
	return scheme + "://" + r.Host + "/uploads"
}
