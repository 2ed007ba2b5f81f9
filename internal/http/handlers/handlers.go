package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/http/response"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/repository"
	"github.com/aminebadraoui/whatsapp-leadgen-server/internal/service"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/auth"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/config"
	"github.com/aminebadraoui/whatsapp-leadgen-server/pkg/logger"
)

type claimsKey struct{}

type Handlers struct {
	authService    service.AuthService
	exportService  service.ExportService
	paymentService service.PaymentService
	sessionService service.SessionService
	bucketRepo     repository.BucketRepository
	contactRepo    repository.ContactRepository
	templateRepo   repository.TemplateRepository
	config         *config.Config
}

func New(
	authService service.AuthService,
	exportService service.ExportService,
	paymentService service.PaymentService,
	sessionService service.SessionService,
	bucketRepo repository.BucketRepository,
	contactRepo repository.ContactRepository,
	templateRepo repository.TemplateRepository,
	config *config.Config,
) *Handlers {
	return &Handlers{
		authService:    authService,
		exportService:  exportService,
		paymentService: paymentService,
		sessionService: sessionService,
		bucketRepo:     bucketRepo,
		contactRepo:    contactRepo,
		templateRepo:   templateRepo,
		config:         config,
	}
}

// Routes returns the full API route table.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/verify-token", h.VerifyToken)
	r.Post("/auth/send-magic-link", h.SendMagicLink)

	r.Post("/stripe/create-checkout-session", h.CreateCheckoutSession)
	r.Post("/stripe/webhook", h.StripeWebhook)

	r.Get("/buckets", h.ListBuckets)
	r.Post("/buckets", h.CreateBucket)
	r.Get("/buckets/{bucketID}/contacts", h.ListBucketContacts)

	// Exports mutate bucket contents and require a session token.
	r.With(h.RequireJWT()).Post("/export", h.ExportContacts)

	r.Get("/message-templates", h.ListTemplates)
	r.Post("/message-templates", h.CreateTemplate)
	r.Get("/message-templates/{id}", h.GetTemplate)
	r.Put("/message-templates/{id}", h.UpdateTemplate)
	r.Delete("/message-templates/{id}", h.DeleteTemplate)

	// Session vault (requires a session token)
	r.Route("/whatsapp-auth", func(r chi.Router) {
		r.Use(h.RequireJWT())
		r.Post("/save", h.SaveSession)
		r.Post("/verify", h.VerifySession)
		r.Post("/session-exists", h.SessionExists)
		r.Delete("/{accountID}/{sessionName}", h.DeleteSession)
	})

	return r
}

// RequireJWT guards routes behind a valid session token.
func (h *Handlers) RequireJWT() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.config.Auth.JWTSecret)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
				return
			}
			// Magic-link tokens are for the verify exchange only; they do
			// not authorize API access.
			if claims.Scope != auth.ScopeSession {
				response.WriteError(w, http.StatusUnauthorized, "Session token required", response.CodeInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), logger.AccountIDKey, claims.Sub)
			ctx = context.WithValue(ctx, claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey{}).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func urlParamInt64(r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
