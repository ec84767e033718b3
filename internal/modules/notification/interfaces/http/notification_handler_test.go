package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/saransh1220/taskpulse/internal/gateway/middleware"
	"github.com/saransh1220/taskpulse/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/taskpulse/internal/modules/notification/application"
	"github.com/saransh1220/taskpulse/internal/modules/notification/domain"
	"github.com/saransh1220/taskpulse/internal/modules/notification/infrastructure/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// memNotificationRepo is an in-memory NotificationRepository good enough to
// run the whole handler surface against.
type memNotificationRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []domain.Notification
}

func (r *memNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	r.items = append(r.items, *n)
	return nil
}

func (r *memNotificationRepo) byRecipient(recipient uuid.UUID) []domain.Notification {
	out := []domain.Notification{}
	for _, n := range r.items {
		if n.Recipient == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *memNotificationRepo) ListByRecipient(ctx context.Context, recipient uuid.UUID, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.byRecipient(recipient)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) QueryByRecipient(ctx context.Context, recipient uuid.UUID, f domain.Filter, limit, offset int) ([]domain.Notification, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []domain.Notification{}
	for _, n := range r.byRecipient(recipient) {
		if f.Category != "" && n.Category != f.Category {
			continue
		}
		if f.Unread && n.Read {
			continue
		}
		matched = append(matched, n)
	}
	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memNotificationRepo) CountByRecipient(ctx context.Context, recipient uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byRecipient(recipient)), nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, recipient uuid.UUID, ids []int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := []int64{}
	for _, id := range ids {
		for i := range r.items {
			if r.items[i].ID == id && r.items[i].Recipient == recipient {
				r.items[i].Read = true
				updated = append(updated, id)
			}
		}
	}
	return updated, nil
}

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, recipient uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].Recipient == recipient {
			r.items[i].Read = true
		}
	}
	return nil
}

func (r *memNotificationRepo) Delete(ctx context.Context, recipient uuid.UUID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].Recipient == recipient {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *memNotificationRepo) UnreadCount(ctx context.Context, recipient uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.items {
		if n.Recipient == recipient && !n.Read {
			count++
		}
	}
	return count, nil
}

type memPreferenceRepo struct {
	mu    sync.Mutex
	prefs map[uuid.UUID]*domain.Preferences
}

func (r *memPreferenceRepo) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prefs[userID]
	if !ok {
		return nil, domain.ErrPreferencesNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPreferenceRepo) Upsert(ctx context.Context, p *domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.prefs == nil {
		r.prefs = map[uuid.UUID]*domain.Preferences{}
	}
	cp := *p
	r.prefs[p.UserID] = &cp
	return nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]domain.ListSnapshot
}

func (c *memCache) Get(ctx context.Context, userID uuid.UUID) (domain.ListSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.entries[userID]
	return snap, ok
}

func (c *memCache) Set(ctx context.Context, userID uuid.UUID, snap domain.ListSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[uuid.UUID]domain.ListSnapshot{}
	}
	c.entries[userID] = snap
}

func (c *memCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

type testEnv struct {
	server   *httptest.Server
	registry *websocket.Registry
	repo     *memNotificationRepo
	prefs    *memPreferenceRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := &memNotificationRepo{}
	prefs := &memPreferenceRepo{}
	registry := websocket.NewRegistry()
	hub := websocket.NewHub(registry)
	go hub.Run()
	t.Cleanup(hub.Stop)

	service := application.NewNotificationService(repo, prefs, &memCache{}, hub)
	handler := NewNotificationHandler(service, hub)
	prefHandler := NewPreferenceHandler(service)
	authMw := middleware.NewAuthMiddleware(testSecret)

	mux := http.NewServeMux()
	mux.Handle("GET /ws", authMw.RequireAuth(http.HandlerFunc(handler.Subscribe)))
	mux.Handle("GET /notifications", authMw.RequireAuth(http.HandlerFunc(handler.List)))
	mux.Handle("POST /notifications", authMw.RequireAuth(http.HandlerFunc(handler.Create)))
	mux.Handle("PATCH /notifications/{id}/read", authMw.RequireAuth(http.HandlerFunc(handler.MarkAsRead)))
	mux.Handle("PATCH /notifications/read-all", authMw.RequireAuth(http.HandlerFunc(handler.MarkAllAsRead)))
	mux.Handle("DELETE /notifications/{id}", authMw.RequireAuth(http.HandlerFunc(handler.Delete)))
	mux.Handle("GET /notifications/unread-count", authMw.RequireAuth(http.HandlerFunc(handler.UnreadCount)))
	mux.Handle("GET /preferences", authMw.RequireAuth(http.HandlerFunc(prefHandler.Get)))
	mux.Handle("PUT /preferences", authMw.RequireAuth(http.HandlerFunc(prefHandler.Update)))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{server: server, registry: registry, repo: repo, prefs: prefs}
}

func (e *testEnv) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := jwt.GenerateToken(testSecret, time.Hour, userID, "member")
	require.NoError(t, err)
	return token
}

// connect opens a websocket session authenticated via the ?token= query
// param and waits until the hub has registered it.
func (e *testEnv) connect(t *testing.T, userID uuid.UUID) *gorilla.Conn {
	t.Helper()
	before := e.registry.Count()

	wsURL := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/ws?token=" + e.token(t, userID)
	conn, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return e.registry.Count() > before
	}, time.Second, 10*time.Millisecond, "session never registered")
	return conn
}

func (e *testEnv) do(t *testing.T, method, path string, userID uuid.UUID, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+e.token(t, userID))

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readPush(t *testing.T, conn *gorilla.Conn) map[string]json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func assertNoPush(t *testing.T, conn *gorilla.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "expected no message, got: %s", data)
}

func TestCreate_FansOutToAllSessionsOnce(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	s1 := env.connect(t, userID)
	s2 := env.connect(t, userID)

	resp := env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "TASK_UPDATED",
		"title":    "Build failed",
		"message":  "CI run 138 failed on main",
		"priority": "HIGH",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, conn := range []*gorilla.Conn{s1, s2} {
		msg := readPush(t, conn)

		var msgType string
		require.NoError(t, json.Unmarshal(msg["type"], &msgType))
		assert.Equal(t, "notification", msgType)

		var pushed domain.Notification
		require.NoError(t, json.Unmarshal(msg["notification"], &pushed))
		assert.Equal(t, "Build failed", pushed.Title)
		assert.Equal(t, domain.CategoryTaskUpdated, pushed.Category)
		assert.Equal(t, domain.PriorityHigh, pushed.Priority)
		assert.False(t, pushed.Read)

		// Exactly once per session.
		assertNoPush(t, conn)
	}
}

func TestCreate_OtherUsersSessionsGetNothing(t *testing.T) {
	env := newTestEnv(t)
	recipient := uuid.New()
	bystander := uuid.New()

	conn := env.connect(t, bystander)

	resp := env.do(t, http.MethodPost, "/notifications", recipient, map[string]string{
		"category": "TASK_ASSIGNED",
		"title":    "New task",
		"message":  "You were assigned",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assertNoPush(t, conn)
}

func TestCreate_DisabledCategorySuppressedButStored(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	require.NoError(t, env.prefs.Upsert(context.Background(), &domain.Preferences{
		UserID: userID, TaskAssigned: true, TaskUpdated: false, TaskCompleted: true,
	}))

	conn := env.connect(t, userID)

	resp := env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "TASK_UPDATED",
		"title":    "Build failed",
		"message":  "CI run 139 failed",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// No live push, but the record is durable and retrievable.
	assertNoPush(t, conn)

	listResp := env.do(t, http.MethodGet, "/notifications", userID, nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var body struct {
		Data  []domain.Notification `json:"data"`
		Total int                   `json:"total"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "Build failed", body.Data[0].Title)
}

func TestCreate_NoOpenSessions(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	resp := env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "TASK_COMPLETED",
		"title":    "Done",
		"message":  "Task finished",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	resp := env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "NOT_A_CATEGORY",
		"title":    "x",
		"message":  "y",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "TASK_ASSIGNED",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubscribe_InvalidTokenRefused(t *testing.T) {
	env := newTestEnv(t)

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?token=garbage"
	_, resp, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, env.registry.Count())
}

func TestMarkAsRead(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	created := env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "TASK_ASSIGNED",
		"title":    "New task",
		"message":  "You were assigned",
	})
	require.Equal(t, http.StatusCreated, created.StatusCode)
	var n domain.Notification
	require.NoError(t, json.NewDecoder(created.Body).Decode(&n))

	resp := env.do(t, http.MethodPatch, "/notifications/1/read", userID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	count := env.do(t, http.MethodGet, "/notifications/unread-count", userID, nil)
	var body map[string]int
	require.NoError(t, json.NewDecoder(count.Body).Decode(&body))
	assert.Equal(t, 0, body["count"])
}

func TestMarkAsRead_ForeignNotificationLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	owner := uuid.New()
	attacker := uuid.New()

	created := env.do(t, http.MethodPost, "/notifications", owner, map[string]string{
		"category": "TASK_ASSIGNED",
		"title":    "New task",
		"message":  "You were assigned",
	})
	require.Equal(t, http.StatusCreated, created.StatusCode)

	resp := env.do(t, http.MethodPatch, "/notifications/1/read", attacker, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	created := env.do(t, http.MethodPost, "/notifications", userID, map[string]string{
		"category": "TASK_ASSIGNED",
		"title":    "New task",
		"message":  "You were assigned",
	})
	require.Equal(t, http.StatusCreated, created.StatusCode)

	resp := env.do(t, http.MethodDelete, "/notifications/1", userID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/notifications/1", userID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreferences_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New()

	// First read returns all-enabled defaults.
	resp := env.do(t, http.MethodGet, "/preferences", userID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var prefs domain.Preferences
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prefs))
	assert.True(t, prefs.TaskAssigned)
	assert.True(t, prefs.TaskUpdated)
	assert.True(t, prefs.TaskCompleted)

	// Opt out of one category.
	resp = env.do(t, http.MethodPut, "/preferences", userID, map[string]bool{
		"task_assigned":  true,
		"task_updated":   false,
		"task_completed": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/preferences", userID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&prefs))
	assert.False(t, prefs.TaskUpdated)
	assert.True(t, prefs.TaskAssigned)
}
