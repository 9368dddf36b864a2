package handlers

import (
	"net/http"
	"time"

	"idcards/internal/config"
	"idcards/internal/metrics"
	"idcards/internal/middleware"
	"idcards/internal/service"
	"idcards/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

const banner = "ID Card Backend is Running ✅"

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	cardService *service.IDCardService,
	userService *service.UserService,
	files storage.FileStore,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.WithLogging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithGzip)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	cardHandler := NewIDCardHandler(cardService, logger, config)
	uploadHandler := NewUploadHandler(files, logger)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(banner))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/uploads/{name}", uploadHandler.Serve)

	// Auth routes
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(20, time.Minute))
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
	})

	// ID card routes
	r.Route("/api/idcards", func(r chi.Router) {
		r.Use(middleware.WithAuth(config.AuthSecret))
		r.Use(chimw.RequestSize(config.MaxUploadBytes()))

		r.Post("/", cardHandler.Create)
		r.Get("/", cardHandler.List)
		r.Post("/bulk-upload", cardHandler.BulkUpload)
		r.Get("/pdf/all", cardHandler.PDFAll)
		r.Get("/pdf/{id}", cardHandler.PDF)
		r.Get("/{id}", cardHandler.Get)
		r.Put("/{id}", cardHandler.Update)
		r.Delete("/{id}", cardHandler.Delete)
	})

	return &Handler{Router: r}
}
