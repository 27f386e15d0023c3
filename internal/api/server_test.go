package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"

	"fitforge/internal/generator"
	"fitforge/internal/llm"
	"fitforge/internal/plan"
	"fitforge/internal/store"
	"fitforge/internal/vault"
)

// stubGenerator returns a canned result or error.
type stubGenerator struct {
	result *generator.GeneratedPlan
	err    error

	gotUserID string
	gotReq    *plan.GenerationRequest
}

func (s *stubGenerator) Generate(_ context.Context, userID string, req *plan.GenerationRequest) (*generator.GeneratedPlan, error) {
	s.gotUserID = userID
	s.gotReq = req
	return s.result, s.err
}

type stubFactory struct {
	provider llm.Provider
	err      error
}

func (s *stubFactory) CreateProvider(*llm.VendorCredential) (llm.Provider, error) {
	return s.provider, s.err
}

func testVault(t *testing.T) *vault.Vault {
	t.Helper()
	master := make([]byte, 32)
	for i := range master {
		master[i] = byte(i + 1)
	}
	v, err := vault.New(master)
	if err != nil {
		t.Fatalf("vault.New() error = %v", err)
	}
	return v
}

func newTestServer(t *testing.T, gen PlanGenerator, factory ProviderFactory, st *store.InMemoryStore) *Server {
	t.Helper()
	return NewServer(gen, factory, testVault(t), st, 0, logr.Discard())
}

const generateBody = `{
  "profile": {"goals": "get stronger", "fitnessLevel": "beginner"},
  "equipment": ["dumbbells"],
  "modality": "strength",
  "schedule": {"sessionsPerWeek": 2, "sessionDurationMinutes": 40}
}`

func TestGeneratePlan_Success(t *testing.T) {
	st := store.NewInMemoryStore()
	gen := &stubGenerator{result: &generator.GeneratedPlan{
		RequestID: "req-1",
		Document:  &plan.WorkoutPlanDocument{PlanOverview: "ok"},
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Attempts:  1,
	}}
	srv := newTestServer(t, gen, &stubFactory{}, st).WithPlanStore(st)

	req := httptest.NewRequest("POST", "/api/v1/plans/generate", strings.NewReader(generateBody))
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if gen.gotUserID != "user-1" {
		t.Errorf("generator saw user %q, want user-1", gen.gotUserID)
	}
	if gen.gotReq.Modality != plan.ModalityStrength {
		t.Errorf("generator saw modality %q, want strength", gen.gotReq.Modality)
	}

	var resp generator.GeneratedPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", resp.RequestID)
	}

	if len(st.Plans("user-1")) != 1 {
		t.Error("generated plan was not persisted")
	}
}

func TestGeneratePlan_MissingIdentity(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{}, store.NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/plans/generate", strings.NewReader(generateBody))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGeneratePlan_InvalidBody(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{}, store.NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/plans/generate", strings.NewReader("{not json"))
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGeneratePlan_ErrorKindStatusMapping(t *testing.T) {
	cases := []struct {
		kind       generator.ErrorKind
		wantStatus int
	}{
		{generator.KindInvalidRequest, http.StatusBadRequest},
		{generator.KindConfiguration, http.StatusUnprocessableEntity},
		{generator.KindAuthentication, http.StatusUnprocessableEntity},
		{generator.KindRateLimit, http.StatusTooManyRequests},
		{generator.KindTimeout, http.StatusGatewayTimeout},
		{generator.KindCancelled, 499},
		{generator.KindVendor, http.StatusBadGateway},
		{generator.KindSchemaValidation, http.StatusBadGateway},
	}

	for _, c := range cases {
		t.Run(string(c.kind), func(t *testing.T) {
			gen := &stubGenerator{err: &generator.GenerationError{Kind: c.kind, Err: errors.New("boom")}}
			srv := newTestServer(t, gen, &stubFactory{}, store.NewInMemoryStore())

			req := httptest.NewRequest("POST", "/api/v1/plans/generate", strings.NewReader(generateBody))
			req.Header.Set(userIDHeader, "user-1")
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, req)

			if rec.Code != c.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, c.wantStatus)
			}
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if body.Error.Code != string(c.kind) {
				t.Errorf("error.code = %q, want %q", body.Error.Code, c.kind)
			}
		})
	}
}

func TestGeneratePlan_SchemaErrorCarriesDetails(t *testing.T) {
	gen := &stubGenerator{err: &generator.GenerationError{
		Kind: generator.KindSchemaValidation,
		ValidationErrors: []plan.ValidationError{
			{Path: "weeklySchedule[0].day", Message: "day is required", Code: plan.CodeRequired},
		},
	}}
	srv := newTestServer(t, gen, &stubFactory{}, store.NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/plans/generate", strings.NewReader(generateBody))
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "weeklySchedule[0].day") {
		t.Errorf("error body should carry validation detail paths: %s", rec.Body.String())
	}
}

func TestPingLLM_OK(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: "pong"})
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{provider: mock}, store.NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/llm/ping", nil)
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Provider string `json:"provider"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Status != "ok" || resp.Provider != "mock" {
		t.Errorf("resp = %+v, want status ok from mock", resp)
	}
}

func TestPingLLM_VendorFailureIs200WithErrorBody(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.AuthenticationError{Provider: "mock", Err: errors.New("401")}})
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{provider: mock}, store.NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/llm/ping", nil)
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with error body", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"error"`) {
		t.Errorf("body = %s, want error status", rec.Body.String())
	}
}

func TestPingLLM_ConfigurationErrorIs422(t *testing.T) {
	factory := &stubFactory{err: &llm.ConfigurationError{Reason: "no provider configured"}}
	srv := newTestServer(t, &stubGenerator{}, factory, store.NewInMemoryStore())

	req := httptest.NewRequest("POST", "/api/v1/llm/ping", nil)
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestPutCredential_EncryptsBeforeStoring(t *testing.T) {
	st := store.NewInMemoryStore()
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{}, st)

	body := `{"provider": "anthropic", "apiKey": "sk-ant-secret", "model": "claude-3-5-haiku-latest", "enabled": true}`
	req := httptest.NewRequest("PUT", "/api/v1/config/credential", strings.NewReader(body))
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body = %s", rec.Code, rec.Body.String())
	}

	cred, err := st.Credential(context.Background(), "user-1")
	if err != nil || cred == nil {
		t.Fatalf("Credential() = %v, %v, want stored credential", cred, err)
	}
	if cred.EncryptedKey == "sk-ant-secret" {
		t.Error("API key stored as plaintext")
	}
	if !vault.IsEncrypted(cred.EncryptedKey) {
		t.Errorf("EncryptedKey = %q, want vault payload", cred.EncryptedKey)
	}
	if got, err := srv.vault.Decrypt(cred.EncryptedKey); err != nil || got != "sk-ant-secret" {
		t.Errorf("Decrypt() = %q, %v, want the original key", got, err)
	}
	if !cred.Enabled || cred.Provider != "anthropic" {
		t.Errorf("stored credential = %+v", cred)
	}
}

func TestPutCredential_MissingFields(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{}, store.NewInMemoryStore())

	req := httptest.NewRequest("PUT", "/api/v1/config/credential", strings.NewReader(`{"provider": "openai"}`))
	req.Header.Set(userIDHeader, "user-1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{}, &stubFactory{}, store.NewInMemoryStore())

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
