package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/vaultgate/pkg/health"
	"github.com/dmitrymomot/vaultgate/pkg/otp"
	"github.com/dmitrymomot/vaultgate/pkg/storage"
	"github.com/dmitrymomot/vaultgate/pkg/token"
)

// uploadFormOverhead covers multipart framing beyond the file payload
// when bounding the request body.
const uploadFormOverhead = 1 << 20

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Logger     *slog.Logger
	OTP        *otp.Manager
	Tokens     *token.Service
	Gateway    *storage.Gateway
	Validator  *storage.Validator
	Checker    *health.Checker
	PresignTTL time.Duration
	MaxBytes   int64
	Version    string
}

// Handler holds the wired dependencies behind the HTTP routes.
type Handler struct {
	log        *slog.Logger
	otp        *otp.Manager
	tokens     *token.Service
	gateway    *storage.Gateway
	validator  *storage.Validator
	checker    *health.Checker
	presignTTL time.Duration
	maxBytes   int64
	version    string
}

// New creates the HTTP handler set. A nil logger falls back to
// slog.Default.
func New(deps Deps) *Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:        log,
		otp:        deps.OTP,
		tokens:     deps.Tokens,
		gateway:    deps.Gateway,
		validator:  deps.Validator,
		checker:    deps.Checker,
		presignTTL: deps.PresignTTL,
		maxBytes:   deps.MaxBytes,
		version:    deps.Version,
	}
}

// Router builds the full route tree with the middleware chain.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(h.logRequests)
	r.Use(h.recoverPanics)
	r.Use(CORS)

	r.Get("/", h.handleRoot)
	r.Get("/health", h.checker.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/request-otp", h.handleRequestOTP)
		r.Post("/verify-otp", h.handleVerifyOTP)
	})

	r.Route("/files", func(r chi.Router) {
		r.Use(h.authenticate)
		r.Post("/upload", h.handleUpload)
		r.Get("/", h.handleList)
		r.Get("/info/*", h.handleInfo)
		r.Get("/download/*", h.handleDownload)
	})

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "vaultgate: zero-trust file gateway",
		"version": h.version,
		"status":  "operational",
	})
}
