// Package api exposes the generation pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"

	"fitforge/internal/generator"
	"fitforge/internal/llm"
	"fitforge/internal/plan"
	"fitforge/internal/store"
	"fitforge/internal/vault"
)

// userIDHeader carries the caller identity. Authentication itself is an
// external collaborator; a reverse proxy or gateway sets this header after
// verifying the session.
const userIDHeader = "X-User-ID"

// PlanGenerator is the orchestrator seam; tests substitute a stub.
type PlanGenerator interface {
	Generate(ctx context.Context, userID string, req *plan.GenerationRequest) (*generator.GeneratedPlan, error)
}

// ProviderFactory is the factory seam used by the ping endpoint.
type ProviderFactory interface {
	CreateProvider(cred *llm.VendorCredential) (llm.Provider, error)
}

// Server is the REST API server.
type Server struct {
	generator PlanGenerator
	factory   ProviderFactory
	vault     *vault.Vault
	creds     store.CredentialStore
	plans     store.PlanStore // nil when the caller owns persistence
	port      int
	log       logr.Logger
}

// NewServer creates a new API server.
func NewServer(gen PlanGenerator, factory ProviderFactory, v *vault.Vault, creds store.CredentialStore, port int, log logr.Logger) *Server {
	return &Server{
		generator: gen,
		factory:   factory,
		vault:     v,
		creds:     creds,
		port:      port,
		log:       log,
	}
}

// WithPlanStore attaches a plan store; generated plans are then persisted
// before the response is returned.
func (s *Server) WithPlanStore(p store.PlanStore) *Server {
	s.plans = p
	return s
}

// Router builds the HTTP route table. Split out from Start so tests can
// drive it with httptest.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(s.log))

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/plans/generate", s.generatePlan).Methods("POST")
	v1.HandleFunc("/llm/ping", s.pingLLM).Methods("POST")
	v1.HandleFunc("/config/credential", s.putCredential).Methods("PUT")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// Start starts the API server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("listening", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

// --- Handlers ---

// generatePlan runs the full pipeline for the authenticated user.
//
// POST /api/v1/plans/generate
func (s *Server) generatePlan(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing_identity", "no user identity supplied", nil)
		return
	}

	var req plan.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON", nil)
		return
	}

	result, err := s.generator.Generate(r.Context(), userID, &req)
	if err != nil {
		s.respondGenerationError(w, err)
		return
	}

	if s.plans != nil {
		if err := s.plans.SavePlan(r.Context(), userID, result.Document); err != nil {
			s.log.Error(err, "failed to persist generated plan", "requestId", result.RequestID)
			// The plan is still returned; persistence is best-effort here.
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// pingLLM tests connectivity to the user's configured provider (or the
// system default) with the cheapest possible vendor call.
//
// POST /api/v1/llm/ping
//
// Response:
//
//	{"provider":"openai","status":"ok","latency_ms":342}
//	{"provider":"openai","status":"error","error":"401 Unauthorized"}
func (s *Server) pingLLM(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing_identity", "no user identity supplied", nil)
		return
	}

	cred, err := s.creds.Credential(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}

	provider, err := s.factory.CreateProvider(cred)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "configuration", err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	type pingResponse struct {
		Provider  string `json:"provider"`
		Model     string `json:"model"`
		Status    string `json:"status"`
		LatencyMs int64  `json:"latency_ms"`
		Error     string `json:"error,omitempty"`
	}

	start := time.Now()
	pingErr := provider.TestConnection(ctx)
	resp := pingResponse{
		Provider:  provider.Name(),
		Model:     provider.Model(),
		LatencyMs: time.Since(start).Milliseconds(),
	}

	if pingErr != nil {
		resp.Status = "error"
		resp.Error = pingErr.Error()
		respondJSON(w, http.StatusOK, resp) // 200 with error body, not 5xx
		return
	}

	resp.Status = "ok"
	respondJSON(w, http.StatusOK, resp)
}

// putCredential encrypts and stores a vendor credential for the user. The
// plaintext key exists only for the duration of this request.
//
// PUT /api/v1/config/credential
func (s *Server) putCredential(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "missing_identity", "no user identity supplied", nil)
		return
	}

	var body struct {
		Provider    string `json:"provider"`
		APIKey      string `json:"apiKey"`
		Model       string `json:"model"`
		EndpointURL string `json:"endpointUrl"`
		Enabled     bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON", nil)
		return
	}
	if body.Provider == "" || body.APIKey == "" {
		respondError(w, http.StatusBadRequest, "invalid_body", "provider and apiKey are required", nil)
		return
	}

	encrypted, err := s.vault.Encrypt(body.APIKey)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encryption_error", err.Error(), nil)
		return
	}

	cred := &llm.VendorCredential{
		Provider:     body.Provider,
		EncryptedKey: encrypted,
		Model:        body.Model,
		EndpointURL:  body.EndpointURL,
		Enabled:      body.Enabled,
	}
	if err := s.creds.SaveCredential(r.Context(), userID, cred); err != nil {
		respondError(w, http.StatusInternalServerError, "store_error", err.Error(), nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondGenerationError maps the orchestrator's error taxonomy onto HTTP
// statuses while preserving the structured detail.
func (s *Server) respondGenerationError(w http.ResponseWriter, err error) {
	gerr, ok := err.(*generator.GenerationError)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
		return
	}

	status := statusForKind(gerr.Kind)
	msg := gerr.Error()
	if gerr.Err != nil {
		msg = gerr.Err.Error()
	}
	respondError(w, status, string(gerr.Kind), msg, gerr.ValidationErrors)
}

func statusForKind(kind generator.ErrorKind) int {
	switch kind {
	case generator.KindInvalidRequest:
		return http.StatusBadRequest
	case generator.KindConfiguration, generator.KindAuthentication:
		// Both need the user to fix their AI settings.
		return http.StatusUnprocessableEntity
	case generator.KindRateLimit:
		return http.StatusTooManyRequests
	case generator.KindTimeout:
		return http.StatusGatewayTimeout
	case generator.KindCancelled:
		// Client went away; nginx's non-standard 499 is conventional.
		return 499
	default:
		// Vendor failures and exhausted schema retries: upstream fault.
		return http.StatusBadGateway
	}
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, code, message string, details []plan.ValidationError) {
	respondJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func loggingMiddleware(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request",
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", time.Since(start),
			)
		})
	}
}
