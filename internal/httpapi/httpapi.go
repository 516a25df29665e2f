package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"superpos/backend/internal/backup"
	"superpos/backend/internal/domain"
	"superpos/backend/internal/engine"
	"superpos/backend/internal/store"
)

type API struct {
	engine        *engine.Service
	auth          *AuthManager
	mirror        backup.Mirror
	allowedOrigin string
	loginLimiter  *attemptLimiter
}

func New(svc *engine.Service, auth *AuthManager, mirror backup.Mirror, allowedOrigin string) *API {
	if mirror == nil {
		mirror = backup.NoopMirror{}
	}
	return &API{
		engine:        svc,
		auth:          auth,
		mirror:        mirror,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
	}
}

func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(a.cors)

	r.Get("/healthz", a.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)

		// Cashier surface.
		r.Group(func(r chi.Router) {
			r.Use(a.requireRole(domain.RoleCashier, domain.RoleAdmin))

			r.Get("/products", a.handleListProducts)
			r.Get("/products/barcode/{code}", a.handleProductByBarcode)

			r.Post("/sales", a.handleCreateSale)
			r.Get("/sales", a.handleListSales)
			r.Get("/sales/{id}/items", a.handleSaleItems)

			r.Post("/shifts/open", a.handleShiftOpen)
			r.Post("/shifts/close", a.handleShiftClose)
			r.Get("/shifts/current", a.handleShiftCurrent)

			r.Get("/customers", a.handleListCustomers)
			r.Post("/customers", a.handleUpsertCustomer)
			r.Post("/customers/{id}/debt-payments", a.handlePayDebt)

			r.Post("/expenses", a.handleAddExpense)
			r.Get("/reports/overview", a.handleReport)
			r.Get("/settings", a.handleGetSettings)
		})

		// Manager surface.
		r.Group(func(r chi.Router) {
			r.Use(a.requireRole(domain.RoleAdmin))

			r.Post("/products", a.handleUpsertProduct)
			r.Delete("/sales/{id}", a.handleVoidSale)
			r.Post("/returns", a.handleCreateReturn)

			r.Get("/suppliers", a.handleListSuppliers)
			r.Post("/suppliers", a.handleUpsertSupplier)
			r.Post("/suppliers/{id}/payments", a.handlePaySupplier)
			r.Get("/purchase-invoices", a.handleListPurchases)
			r.Post("/purchase-invoices", a.handleAddPurchase)

			r.Post("/audits", a.handleStartAudit)
			r.Get("/audits/current", a.handleAuditSession)
			r.Put("/audits/current/items", a.handleUpdateAuditItem)
			r.Post("/audits/current/commit", a.handleCommitAudit)
			r.Post("/audits/current/cancel", a.handleCancelAudit)

			r.Put("/settings", a.handleUpdateSettings)
			r.Get("/users", a.handleListUsers)
			r.Post("/users", a.handleUpsertUser)
			r.Delete("/users/{id}", a.handleDeleteUser)

			r.Get("/snapshot", a.handleExportSnapshot)
			r.Put("/snapshot", a.handleImportSnapshot)
			r.Post("/snapshot/pull", a.handlePullSnapshot)
		})
	})

	return r
}

func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.allowedOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authorization := strings.TrimSpace(r.Header.Get("Authorization"))
			if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
				writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			token := strings.TrimSpace(authorization[len("Bearer "):])
			actor, err := a.auth.ParseToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err)
				return
			}
			if !isRoleAllowed(actor.Role, roles) {
				writeError(w, http.StatusForbidden, errors.New("forbidden role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(engine.WithActor(r.Context(), actor)))
		})
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, allow := range allowed {
		if role == allow {
			return true
		}
	}
	return false
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeEngineError maps the engine's sentinel taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrInvalidState), errors.Is(err, store.ErrStaleSnapshot):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 4<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
