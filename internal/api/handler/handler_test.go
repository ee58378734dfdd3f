package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"haccp-flow/internal/access"
	"haccp-flow/internal/api/dto"
	"haccp-flow/internal/approval"
	"haccp-flow/internal/core/memory"
	"haccp-flow/internal/domain"
	"haccp-flow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memUsers map[uint]*domain.User

func (m memUsers) Create(ctx context.Context, u *domain.User) error { m[u.ID] = u; return nil }
func (m memUsers) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *memAudit) Record(ctx context.Context, e *domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, *e)
	return nil
}

func (a *memAudit) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.AuditEntry(nil), a.entries...), nil
}

type memFlag struct {
	mu sync.Mutex
	on bool
}

func (f *memFlag) Enabled(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on, nil
}

func (f *memFlag) Set(ctx context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = on
	return nil
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(ctx context.Context, intents []domain.NotificationIntent) {}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	users := memUsers{
		1:  {ID: 1, Role: domain.RoleEmployee, Active: true},
		2:  {ID: 2, Role: domain.RoleEmployee, Active: true},
		9:  {ID: 9, Role: domain.RoleManager, Active: true},
		99: {ID: 99, Role: domain.RoleAdmin, Active: true},
	}
	gate := access.NewGate(users)
	audit := &memAudit{}
	flag := &memFlag{}

	docs := service.NewDocumentService(service.Deps{
		Documents:  store,
		Engine:     approval.NewEngine(store, nil, logger),
		Audit:      audit,
		Dispatcher: nopDispatcher{},
		Gate:       gate,
		AuditMode:  flag,
		Logger:     logger,
	})
	auditSvc := service.NewAuditService(flag, audit, gate, logger)
	return NewRouter(NewDocumentHandler(docs, auditSvc), logger, promhttp.Handler())
}

func do(t *testing.T, r *gin.Engine, method, path string, actor uint, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != 0 {
		req.Header.Set(ActorHeader, fmt.Sprint(actor))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createDoc(t *testing.T, r *gin.Engine) (docID uint, taskIDs []uint) {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/documents", 9, dto.CreateDocumentRequest{
		Title: "Thawing log",
		Steps: []dto.StepDTO{
			{AssigneeID: 1, Action: "review"},
			{AssigneeID: 2, Action: "approve"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.CreateDocumentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, r, http.MethodGet, fmt.Sprintf("/api/v1/documents/%d", created.ID), 9, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var doc domain.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	for _, tk := range doc.Tasks {
		taskIDs = append(taskIDs, tk.ID)
	}
	return created.ID, taskIDs
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", 0, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/metrics", 0, nil).Code)
}

func TestRequiresActor(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/v1/inbox", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", decodeError(t, w).Code)
}

func TestDecisionFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	docID, tasks := createDoc(t, r)
	require.Len(t, tasks, 2)

	w := do(t, r, http.MethodGet, "/api/v1/inbox", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inbox []domain.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inbox))
	require.Len(t, inbox, 1)
	assert.Equal(t, tasks[0], inbox[0].ID)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[1]), 2, dto.DecisionRequest{Decision: "complete"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_yet_actionable", decodeError(t, w).Code)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 1, dto.DecisionRequest{Decision: "complete"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res dto.DecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, docID, res.DocumentID)
	assert.Equal(t, 1, res.CurrentStep)
	assert.Equal(t, 1, res.Notifications)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[1]), 2, dto.DecisionRequest{Decision: "reject", Comment: "missing data"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "rejected", res.DocumentStatus)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[1]), 2, dto.DecisionRequest{Decision: "reject"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "already_decided", decodeError(t, w).Code)
}

func TestDecisionErrorsOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	_, tasks := createDoc(t, r)

	cases := []struct {
		name   string
		path   string
		actor  uint
		body   any
		status int
		code   string
	}{
		{"unknown task", "/api/v1/tasks/4242/decision", 1, dto.DecisionRequest{Decision: "complete"}, http.StatusNotFound, "not_found"},
		{"bad decision", fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 1, dto.DecisionRequest{Decision: "approve"}, http.StatusBadRequest, "invalid_decision"},
		{"skip not allowed", fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 1, dto.DecisionRequest{Decision: "skip"}, http.StatusBadRequest, "skip_not_allowed"},
		{"not assignee", fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 2, dto.DecisionRequest{Decision: "complete"}, http.StatusForbidden, "not_assignee"},
		{"unknown user", fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 55, dto.DecisionRequest{Decision: "complete"}, http.StatusForbidden, "access_denied"},
		{"bad id", "/api/v1/tasks/abc/decision", 1, dto.DecisionRequest{Decision: "complete"}, http.StatusBadRequest, "bad_request"},
		{"missing decision", fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 1, map[string]string{}, http.StatusBadRequest, "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tc.path, tc.actor, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodPost, "/api/v1/documents", 9, dto.CreateDocumentRequest{
		Title: "No steps",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/documents", 9, dto.CreateDocumentRequest{
		Title: "Bad action",
		Steps: []dto.StepDTO{{AssigneeID: 1, Action: "stamp"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/documents/999", 9, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "document_not_found", decodeError(t, w).Code)
}

func TestAuditModeOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	_, tasks := createDoc(t, r)
	on := true

	w := do(t, r, http.MethodPut, "/api/v1/audit-mode", 1, dto.AuditModeRequest{Enabled: &on})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/audit-mode", 99, dto.AuditModeRequest{Enabled: &on})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/audit-mode", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":true}`, w.Body.String())

	w = do(t, r, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/decision", tasks[0]), 1, dto.DecisionRequest{Decision: "complete"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "audit_mode_locked", decodeError(t, w).Code)

	w = do(t, r, http.MethodGet, "/api/v1/audit-log?limit=10", 99, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []domain.AuditEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
}

func TestAuditLogLimitValidation(t *testing.T) {
	r := newTestRouter(t)
	createDoc(t, r)

	for _, q := range []string{"abc", "0", "-3", "1.5"} {
		w := do(t, r, http.MethodGet, "/api/v1/audit-log?limit="+q, 99, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "bad_request", decodeError(t, w).Code, q)
	}

	w := do(t, r, http.MethodGet, "/api/v1/audit-log?limit=1", 99, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodGet, "/api/v1/audit-log", 99, nil)
	require.Equal(t, http.StatusOK, w.Code)
}
