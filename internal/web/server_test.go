package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leaddist/internal/agents"
	"github.com/JonMunkholm/leaddist/internal/config"
	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/store"
)

// --- fakes ---

type fakeRoster struct {
	targets []core.DistributionTarget
}

func (f *fakeRoster) EligibleTargets(context.Context) ([]core.DistributionTarget, error) {
	return f.targets, nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	reqs []core.RecordRequest
	err  error
}

func (f *fakeRecorder) RecordDistribution(_ context.Context, req core.RecordRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.reqs = append(f.reqs, req)
	return fmt.Sprintf("dist-%d", len(f.reqs)), nil
}

func fiveTargets() []core.DistributionTarget {
	out := make([]core.DistributionTarget, core.RequiredTargets)
	for i := range out {
		out[i] = core.DistributionTarget{ID: fmt.Sprintf("agent-%d", i), Name: fmt.Sprintf("Agent %d", i)}
	}
	return out
}

type fakeAgents struct {
	mu     sync.Mutex
	agents map[string]agents.Agent
	next   int
}

func newFakeAgents() *fakeAgents {
	return &fakeAgents{agents: map[string]agents.Agent{}}
}

func (f *fakeAgents) List(context.Context) ([]agents.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]agents.Agent, 0, len(f.agents))
	for _, a := range f.agents {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAgents) Get(_ context.Context, id string) (agents.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[id]
	if !ok {
		return agents.Agent{}, agents.ErrNotFound
	}
	return a, nil
}

func (f *fakeAgents) Create(_ context.Context, in agents.CreateInput) (agents.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Name == "" {
		return agents.Agent{}, &agents.ValidationError{Fields: []agents.FieldError{{Field: "name", Message: "Name is required"}}}
	}
	for _, a := range f.agents {
		if a.Email == in.Email {
			return agents.Agent{}, agents.ErrDuplicateEmail
		}
	}
	f.next++
	a := agents.Agent{ID: fmt.Sprintf("a%d", f.next), Name: in.Name, Email: in.Email, IsActive: true}
	f.agents[a.ID] = a
	return a, nil
}

func (f *fakeAgents) Update(_ context.Context, id string, in agents.UpdateInput) (agents.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.agents[id]
	if !ok {
		return agents.Agent{}, agents.ErrNotFound
	}
	if in.Name != nil {
		a.Name = *in.Name
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
	f.agents[id] = a
	return a, nil
}

func (f *fakeAgents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.agents[id]; !ok {
		return agents.ErrNotFound
	}
	delete(f.agents, id)
	return nil
}

type fakeHistory struct {
	page, limit int
	items       []store.DistributionSummary
	dists       map[string]*store.Distribution
}

func (f *fakeHistory) ListDistributions(_ context.Context, page, limit int) (store.DistributionPage, error) {
	f.page, f.limit = page, limit
	if limit == 0 {
		limit = 10
	}
	return store.DistributionPage{
		Items:      f.items,
		Pagination: store.Pagination{Current: page, Pages: 1, Total: len(f.items), Limit: limit},
	}, nil
}

func (f *fakeHistory) GetDistribution(_ context.Context, id string) (*store.Distribution, error) {
	d, ok := f.dists[id]
	if !ok {
		return nil, store.ErrDistributionNotFound
	}
	return d, nil
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

// --- helpers ---

type apiResponse struct {
	Success             bool                `json:"success"`
	Message             string              `json:"message"`
	Code                string              `json:"code"`
	Count               *int                `json:"count"`
	Data                json.RawMessage     `json:"data"`
	Errors              []agents.FieldError `json:"errors"`
	ValidationErrors    []core.RowRejection `json:"validationErrors"`
	CurrentActiveAgents *int                `json:"currentActiveAgents"`
	Pagination          *store.Pagination   `json:"pagination"`
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 5 * time.Second
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Upload.MaxConcurrent = 2
	cfg.Upload.MaxWaitTime = 50 * time.Millisecond
	cfg.Upload.Timeout = 5 * time.Second
	cfg.Security.EnableCSP = true
	return cfg
}

type testEnv struct {
	srv      *Server
	roster   *fakeRoster
	recorder *fakeRecorder
	agents   *fakeAgents
	history  *fakeHistory
}

func newTestEnv(t *testing.T, mutate func(*config.Config, *Deps)) *testEnv {
	t.Helper()

	env := &testEnv{
		roster:   &fakeRoster{targets: fiveTargets()},
		recorder: &fakeRecorder{},
		agents:   newFakeAgents(),
		history:  &fakeHistory{dists: map[string]*store.Distribution{}},
	}
	cfg := testConfig()
	deps := Deps{
		Distributor: core.NewDistributor(env.roster, env.recorder),
		Agents:      env.agents,
		History:     env.history,
	}
	if mutate != nil {
		mutate(cfg, &deps)
	}

	srv, err := NewServer(cfg, deps)
	require.NoError(t, err)
	env.srv = srv
	return env
}

func (e *testEnv) do(req *http.Request) (*httptest.ResponseRecorder, apiResponse) {
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)

	var body apiResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec, body
}

func uploadRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

const contactSheet = "FirstName,Phone,Notes\n" +
	"Asha,98765 43210,call back\n" +
	"Ravi,555-1234,\n" +
	"Meera,+1 (555) 123-4567,vip\n" +
	"Short,12,too short\n"

// --- health and routing ---

func TestHealth(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, d *Deps) { d.Health = fakeHealth{} })

	rec, _ := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, "Server is running", got.Message)
	assert.Equal(t, Version, got.Version)
	assert.Equal(t, "up", got.Database)
	assert.Equal(t, 2, got.Uploads.MaxConcurrent)
	_, err := time.Parse(time.RFC3339, got.Timestamp)
	assert.NoError(t, err)
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, d *Deps) {
		d.Health = fakeHealth{err: errors.New("connection refused")}
	})

	rec, _ := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"down"`)
}

func TestNotFoundRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, body := env.do(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", body.Message)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, _ := env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestNewServer_RejectsMalformedAPIKeys(t *testing.T) {
	cfg := testConfig()
	cfg.Security.APIKeys = []string{"no-colon"}

	_, err := NewServer(cfg, Deps{
		Distributor: core.NewDistributor(nil, nil),
		Agents:      newFakeAgents(),
		History:     &fakeHistory{},
	})
	assert.Error(t, err)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config, _ *Deps) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"ops:k1"}
	})

	rec, _ := env.do(httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "health stays public")

	req := uploadRequest(t, "leads.csv", []byte(contactSheet))
	req.Header.Set("X-API-Key", "k1")
	rec, _ = env.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.recorder.reqs, 1)
	assert.Equal(t, "ops", env.recorder.reqs[0].UploadedBy)
}

// --- upload ---

func TestUpload_Success(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, body := env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, body.Success)
	assert.Equal(t, "File processed and distributed successfully", body.Message)

	var data uploadData
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "dist-1", data.ID)
	assert.Equal(t, 3, data.Summary.TotalRecords)
	assert.Equal(t, 1, data.Summary.SkippedCount)
	assert.Equal(t, core.RequiredTargets, data.Summary.AgentsUsed)
	require.Len(t, data.ValidationErrors, 1)
	assert.Equal(t, 5, data.ValidationErrors[0].Row)
	assert.Equal(t, "Phone number too short", data.ValidationErrors[0].Error)

	require.NotNil(t, data.Distribution)
	assert.Equal(t, "leads.csv", data.Distribution.SourceFileName)
	counts := make([]int, len(data.Distribution.Allocations))
	for i, a := range data.Distribution.Allocations {
		counts[i] = a.Count
	}
	assert.Equal(t, []int{1, 1, 1, 0, 0}, counts)

	require.Len(t, env.recorder.reqs, 1)
	assert.Equal(t, core.AnonymousPrincipal, env.recorder.reqs[0].UploadedBy)
}

func TestUpload_HTMXRendersSummary(t *testing.T) {
	env := newTestEnv(t, nil)

	req := uploadRequest(t, "leads.csv", []byte(contactSheet))
	req.Header.Set("HX-Request", "true")
	rec, _ := env.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-distribution-id="dist-1"`)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		fileName   string
		content    string
		targets    int
		wantStatus int
		wantCode   string
	}{
		{"no file", "", "", 5, http.StatusBadRequest, "FILE004"},
		{"unsupported type", "leads.txt", contactSheet, 5, http.StatusBadRequest, "FILE002"},
		{"missing headers", "leads.csv", "FirstName,Phone\nA,5551234\n", 5, http.StatusBadRequest, "VAL004"},
		{"header only", "leads.csv", "FirstName,Phone,Notes\n", 5, http.StatusBadRequest, "FILE005"},
		{"no valid rows", "leads.csv", "FirstName,Phone,Notes\n,5551234,\nB,12,\n", 5, http.StatusBadRequest, "VAL007"},
		{"too few agents", "leads.csv", contactSheet, 3, http.StatusBadRequest, "DST001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			env.roster.targets = fiveTargets()[:tt.targets]

			rec, body := env.do(uploadRequest(t, tt.fileName, []byte(tt.content)))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Empty(t, env.recorder.reqs, "nothing is recorded on failure")
		})
	}
}

func TestUpload_NoValidRowsIncludesRejections(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.do(uploadRequest(t, "leads.csv", []byte("FirstName,Phone,Notes\n,5551234,\nB,12,\n")))
	require.Len(t, body.ValidationErrors, 2)
	assert.Equal(t, 2, body.ValidationErrors[0].Row)
	assert.Equal(t, "Missing FirstName or Phone", body.ValidationErrors[0].Error)
	assert.Equal(t, 3, body.ValidationErrors[1].Row)
}

func TestUpload_TooFewAgentsReportsCount(t *testing.T) {
	env := newTestEnv(t, nil)
	env.roster.targets = fiveTargets()[:4]

	_, body := env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	require.NotNil(t, body.CurrentActiveAgents)
	assert.Equal(t, 4, *body.CurrentActiveAgents)
}

func TestUpload_FileTooLarge(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config, _ *Deps) { c.Upload.MaxFileSize = 64 })

	big := contactSheet + strings.Repeat("Extra,5551234,padding\n", 10)
	rec, body := env.do(uploadRequest(t, "leads.csv", []byte(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", body.Code)
}

func TestUpload_RosterChanged(t *testing.T) {
	env := newTestEnv(t, nil)
	env.recorder.err = store.ErrRosterChanged

	rec, body := env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DST003", body.Code)
}

func TestUpload_RecorderFailureIs500(t *testing.T) {
	env := newTestEnv(t, nil)
	env.recorder.err = errors.New("disk on fire")

	rec, body := env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "ERR000", body.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire", "technical detail stays in the log")
}

func TestUpload_Busy(t *testing.T) {
	limiter := core.NewUploadLimiter(1, 20*time.Millisecond)
	require.True(t, limiter.TryAcquire())
	defer limiter.Release()

	env := newTestEnv(t, func(_ *config.Config, d *Deps) { d.Limiter = limiter })

	rec, body := env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "UPL002", body.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestUpload_WaitsForSlot(t *testing.T) {
	limiter := core.NewUploadLimiter(1, 2*time.Second)
	require.True(t, limiter.TryAcquire())
	go func() {
		time.Sleep(20 * time.Millisecond)
		limiter.Release()
	}()

	env := newTestEnv(t, func(_ *config.Config, d *Deps) { d.Limiter = limiter })

	rec, _ := env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 0, limiter.ActiveCount(), "slot released after the run")

	rec, _ = env.do(uploadRequest(t, "leads.csv", []byte(contactSheet)))
	assert.Equal(t, http.StatusCreated, rec.Code, "free slot is taken without waiting")
	assert.Equal(t, 0, limiter.ActiveCount())
}

func TestUpload_HTMXErrorFragment(t *testing.T) {
	env := newTestEnv(t, nil)

	req := uploadRequest(t, "leads.csv", []byte("FirstName,Phone\nA,5551234\n"))
	req.Header.Set("HX-Request", "true")
	rec, _ := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Code: VAL004")
}

// --- agents ---

func TestAgents_CRUD(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, body := env.do(jsonRequest(http.MethodPost, "/api/agents",
		`{"name":"Asha","email":"asha@example.com","mobile":"9876543210","password":"secret1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Agent created successfully", body.Message)

	var created agents.Agent
	require.NoError(t, json.Unmarshal(body.Data, &created))
	require.NotEmpty(t, created.ID)

	rec, body = env.do(httptest.NewRequest(http.MethodGet, "/api/agents", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, body.Count)
	assert.Equal(t, 1, *body.Count)

	rec, body = env.do(jsonRequest(http.MethodPut, "/api/agents/"+created.ID, `{"name":"Asha K","isActive":false}`))
	require.Equal(t, http.StatusOK, rec.Code)
	var updated agents.Agent
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	assert.Equal(t, "Asha K", updated.Name)
	assert.False(t, updated.IsActive)

	rec, _ = env.do(httptest.NewRequest(http.MethodGet, "/api/agents/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = env.do(httptest.NewRequest(http.MethodDelete, "/api/agents/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Agent deleted successfully", body.Message)

	rec, body = env.do(httptest.NewRequest(http.MethodGet, "/api/agents/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "AGT001", body.Code)
}

func TestAgents_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	_, err := env.agents.Create(context.Background(), agents.CreateInput{Name: "Taken", Email: "taken@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"validation", jsonRequest(http.MethodPost, "/api/agents", `{"email":"x@example.com"}`), http.StatusBadRequest, "VAL001"},
		{"malformed json", jsonRequest(http.MethodPost, "/api/agents", `{"name":`), http.StatusBadRequest, "VAL002"},
		{"oversized body", jsonRequest(http.MethodPost, "/api/agents", `{"name":"`+strings.Repeat("a", maxJSONBody)+`"}`), http.StatusRequestEntityTooLarge, "VAL003"},
		{"duplicate email", jsonRequest(http.MethodPost, "/api/agents", `{"name":"Other","email":"taken@example.com"}`), http.StatusConflict, "AGT002"},
		{"update missing", jsonRequest(http.MethodPut, "/api/agents/zzz", `{"name":"New"}`), http.StatusNotFound, "AGT001"},
		{"delete missing", httptest.NewRequest(http.MethodDelete, "/api/agents/zzz", nil), http.StatusNotFound, "AGT001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := env.do(tt.req)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestAgents_ValidationListsFields(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.do(jsonRequest(http.MethodPost, "/api/agents", `{"email":"x@example.com"}`))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "name", body.Errors[0].Field)
	assert.Equal(t, "Name is required", body.Errors[0].Message)
}

// --- history ---

func TestListDistributions(t *testing.T) {
	env := newTestEnv(t, nil)
	env.history.items = []store.DistributionSummary{{ID: "d1", FileName: "a.csv", TotalRecords: 7}}

	rec, body := env.do(httptest.NewRequest(http.MethodGet, "/api/upload/distributions?page=2&limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, env.history.page)
	assert.Equal(t, 5, env.history.limit)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 2, body.Pagination.Current)

	var items []store.DistributionSummary
	require.NoError(t, json.Unmarshal(body.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "a.csv", items[0].FileName)
}

func TestListDistributions_InvalidParamsFallBack(t *testing.T) {
	env := newTestEnv(t, nil)

	rec, body := env.do(httptest.NewRequest(http.MethodGet, "/api/upload/distributions?page=-3&limit=abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.history.page)
	assert.Equal(t, 0, env.history.limit)
	assert.JSONEq(t, `[]`, string(body.Data))
}

func TestGetDistribution(t *testing.T) {
	env := newTestEnv(t, nil)
	env.history.dists["d1"] = &store.Distribution{
		ID:               "d1",
		UploadedBy:       "ops",
		DistributionPlan: &core.DistributionPlan{SourceFileName: "a.csv", TotalAccepted: 1},
	}

	rec, body := env.do(httptest.NewRequest(http.MethodGet, "/api/upload/distributions/d1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body.Data), `"fileName":"a.csv"`)
	assert.Contains(t, string(body.Data), `"uploadedBy":"ops"`)

	rec, body = env.do(httptest.NewRequest(http.MethodGet, "/api/upload/distributions/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "DST002", body.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.EmptyInputError{}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &core.TargetCountError{Found: 2}), http.StatusBadRequest},
		{&agents.ValidationError{}, http.StatusBadRequest},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("%w: %w", errInvalidBody, &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge},
		{agents.ErrNotFound, http.StatusNotFound},
		{store.ErrDistributionNotFound, http.StatusNotFound},
		{agents.ErrDuplicateEmail, http.StatusConflict},
		{fmt.Errorf("record distribution: %w", store.ErrRosterChanged), http.StatusConflict},
		{core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
