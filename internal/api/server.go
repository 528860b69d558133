// Package api exposes the GoldPay REST API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goldenleaf/goldpay/internal/assistant"
	"github.com/goldenleaf/goldpay/internal/auth"
	"github.com/goldenleaf/goldpay/internal/middleware"
	"github.com/goldenleaf/goldpay/internal/service"
)

// Server wires the HTTP routes to the service layer.
type Server struct {
	users      *service.UserService
	payments   *service.PaymentService
	splits     *service.SplitService
	dashboards *service.DashboardService
	assistant  *assistant.Client
	jwt        *auth.JWTManager

	// payBaseURL is the public base for QR payment links,
	// e.g. "https://goldpay.app".
	payBaseURL string
}

// NewServer creates the API server.
func NewServer(
	users *service.UserService,
	payments *service.PaymentService,
	splits *service.SplitService,
	dashboards *service.DashboardService,
	assistantClient *assistant.Client,
	jwt *auth.JWTManager,
	payBaseURL string,
) *Server {
	return &Server{
		users:      users,
		payments:   payments,
		splits:     splits,
		dashboards: dashboards,
		assistant:  assistantClient,
		jwt:        jwt,
		payBaseURL: payBaseURL,
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS)
	r.Use(metricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(s.jwt))
				r.Get("/me", s.handleMe)
				r.Get("/balance", s.handleBalance)
			})
		})

		r.Post("/payments/send", s.handleSendPayment)

		r.Route("/split", func(r chi.Router) {
			r.Get("/my-groups", s.handleMyGroups)
			r.Post("/create-group", s.handleCreateGroup)
			r.Post("/create-bill", s.handleCreateBill)
			r.Get("/group/{groupID}/bills", s.handleGroupBills)
			r.Post("/bill/{billID}/settle", s.handleSettleBill)
		})

		r.Get("/dashboard/{email}", s.handleDashboard)

		r.Route("/profile", func(r chi.Router) {
			r.Get("/{email}", s.handleProfile)
			r.Get("/receiver/{qrCodeID}", s.handleQRReceiver)
			r.Post("/pay/{qrCodeID}", s.handleQRPay)
		})

		r.Post("/assistant/generate", s.handleAssistant)
	})

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a JSON error response. Service errors carry
// their own status; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		writeJSON(w, svcErr.Status, map[string]string{"error": svcErr.Message})
		return
	}
	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server error"})
}

// decodeJSON decodes a request body, rejecting malformed JSON.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return service.BadRequest("invalid request body")
	}
	return nil
}
