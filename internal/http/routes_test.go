package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nklact/normaai/internal/auth"
	"github.com/nklact/normaai/internal/config"
	"github.com/nklact/normaai/internal/domain"
)

const sampleResponse = `Hello [CONTRACT_START]EMPLOYMENT CONTRACT

Concluded on ____ between TECH LLC (the Employer) and John Smith (the Employee).

Article 1.
The parties agree on an open-ended employment contract.

Article 2.
This agreement is made in three identical copies, one for each party.[CONTRACT_END] Bye`

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Config{
		Port:                   "8080",
		BaseURL:                "http://localhost:8080",
		DataDir:                t.TempDir(),
		ContractTTL:            time.Hour,
		CleanupInterval:        time.Hour,
		JWTSecret:              "secret",
		MaxBodyBytes:           1 * 1024 * 1024,
		IndividualMonthlyLimit: 5,
	}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return srv
}

func bearerToken(t *testing.T, plan string) string {
	t.Helper()

	token, _, err := auth.GenerateToken(domain.UserContext{
		UserID: "u1",
		Email:  "user@example.com",
		Plan:   plan,
	}, "secret", time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProcessRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/contracts/process", strings.NewReader(`{"response":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestProcessGeneratesDownloadableContract(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"response": sampleResponse})
	req := httptest.NewRequest(http.MethodPost, "/api/contracts/process", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, domain.PlanProfessional))
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.AssistantResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if result.Answer != "Hello Bye" {
		t.Fatalf("answer = %q, want %q", result.Answer, "Hello Bye")
	}
	if result.Contract == nil {
		t.Fatal("expected contract metadata")
	}
	if srv.Scheduler().QueueSize() != 1 {
		t.Fatalf("queue size = %d, want 1", srv.Scheduler().QueueSize())
	}

	downloadReq := httptest.NewRequest(http.MethodGet, "/api/contracts/"+result.Contract.FileID, nil)
	downloadRec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(downloadRec, downloadReq)

	if downloadRec.Code != http.StatusOK {
		t.Fatalf("expected 200 download, got %d", downloadRec.Code)
	}
	if ct := downloadRec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q, want application/pdf", ct)
	}
	if !strings.HasPrefix(downloadRec.Body.String(), "%PDF") {
		t.Fatal("download is not a PDF")
	}
}

func TestProcessDeniedForTrial(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	body, _ := json.Marshal(map[string]string{"response": sampleResponse})
	req := httptest.NewRequest(http.MethodPost, "/api/contracts/process", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearerToken(t, domain.PlanTrialRegistered))
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result domain.AssistantResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}

	if result.Contract != nil {
		t.Fatal("trial user must not get a document")
	}
	if !strings.HasPrefix(result.Answer, "Hello Bye") {
		t.Fatalf("narrative lost: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "Individual plan") {
		t.Fatalf("expected denial notice in %q", result.Answer)
	}
	if srv.Scheduler().QueueSize() != 0 {
		t.Fatalf("queue size = %d, want 0", srv.Scheduler().QueueSize())
	}
}

func TestDownloadRejectsMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/contracts/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDownloadUnknownID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCleanupAdminEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	statsReq := httptest.NewRequest(http.MethodGet, "/api/admin/cleanup/stats", nil)
	statsReq.Header.Set("Authorization", bearerToken(t, domain.PlanProfessional))
	statsRec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(statsRec, statsReq)

	if statsRec.Code != http.StatusOK {
		t.Fatalf("expected 200 stats, got %d", statsRec.Code)
	}

	var stats struct {
		QueueSize    int `json:"queueSize"`
		ExpiredCount int `json:"expiredCount"`
	}
	if err := json.Unmarshal(statsRec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.QueueSize != 0 || stats.ExpiredCount != 0 {
		t.Fatalf("fresh server stats = %+v, want zeros", stats)
	}

	sweepReq := httptest.NewRequest(http.MethodPost, "/api/admin/cleanup/sweep", nil)
	sweepReq.Header.Set("Authorization", bearerToken(t, domain.PlanProfessional))
	sweepRec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(sweepRec, sweepReq)

	if sweepRec.Code != http.StatusOK {
		t.Fatalf("expected 200 sweep, got %d", sweepRec.Code)
	}

	var sweep struct {
		Deleted int `json:"deleted"`
	}
	if err := json.Unmarshal(sweepRec.Body.Bytes(), &sweep); err != nil {
		t.Fatalf("decode sweep: %v", err)
	}
	if sweep.Deleted != 0 {
		t.Fatalf("deleted = %d, want 0 on an empty queue", sweep.Deleted)
	}
}

func TestContractMetadata(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/contracts/"+uuid.NewString()+"/metadata", nil)
	rec := httptest.NewRecorder()

	srv.Engine().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Exists {
		t.Fatal("exists must be false for an unknown id")
	}
}
