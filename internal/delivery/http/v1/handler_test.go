package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrcr/todoplane/internal/auth"
	v1 "github.com/lrcr/todoplane/internal/delivery/http/v1"
	"github.com/lrcr/todoplane/internal/images"
	"github.com/lrcr/todoplane/internal/services"
	"github.com/lrcr/todoplane/internal/store/memory"
)

type testServer struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := memory.New()
	require.NoError(t, st.SeedDemo(context.Background(), time.Now()))

	logger := zerolog.Nop()
	tasks := services.NewTaskService(logger, st)
	users := services.NewUserService(logger, st, "")
	codec := auth.NewTokenCodec("todoplane-test", []byte("0123456789abcdef"), time.Hour)
	verifier := auth.NewSessionVerifier(codec, users)

	handler := v1.New(v1.Deps{
		Logger:      logger,
		Tasks:       tasks,
		Users:       users,
		Verifier:    verifier,
		Codec:       codec,
		Images:      images.NewStaticLister(nil),
		DemoEnabled: true,
	})

	router := gin.New()
	router.GET("/",
		handler.HandleDemoAutoLogin,
		handler.HandleSessionMiddleware,
		func(c *gin.Context) {
			c.String(http.StatusOK, "index")
		},
	)
	router.POST("/auth/register", handler.HandleRegister)
	router.POST("/auth/login", handler.HandleLogin)
	router.POST("/auth/logout", handler.HandleLogout)
	router.POST("/demo-login", handler.HandleDemoLogin)

	session := router.Group("/", handler.HandleSessionMiddleware)
	session.GET("/tasks", handler.HandleListTasks)
	session.POST("/tasks", handler.HandleCreateTask)
	session.GET("/tasks/:id", handler.HandleGetTask)
	session.PATCH("/tasks/:id", handler.HandlePatchTask)
	session.DELETE("/tasks/:id", handler.HandleDeleteTask)
	session.GET("/api/tasks", handler.HandleListTasks)
	session.GET("/api/current_user", handler.HandleCurrentUser)
	session.GET("/images", handler.HandleListImages)

	admin := router.Group("/api/admin", handler.HandleSessionMiddleware, handler.HandleAdminMiddleware)
	admin.GET("/tasks", handler.HandleAdminListTasks)
	admin.DELETE("/tasks/:id", handler.HandleAdminDeleteTask)
	admin.GET("/users", handler.HandleAdminListUsers)
	admin.PATCH("/users/:id/role", handler.HandleAdminUpdateRole)
	admin.DELETE("/users/:id", handler.HandleAdminDeleteUser)

	return &testServer{router: router, store: st}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

// sessionToken extracts the session cookie set by a login response.
func sessionToken(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookie {
			return cookie.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func decodeJSONList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (ts *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"displayName": name,
		"email":       email,
		"password":    "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return sessionToken(t, rec)
}

func (ts *testServer) demoAdmin(t *testing.T) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/demo-login", "", gin.H{"userType": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionToken(t, rec)
}

func TestUnauthenticatedJSONGets401(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeJSON(t, rec)["message"], "log in")
}

func TestUnauthenticatedBrowserRedirectsToLogin(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/tasks", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	token := ts.register(t, "Alice", "alice@example.com")

	rec := ts.do(t, http.MethodGet, "/api/current_user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeJSON(t, rec)
	assert.Equal(t, "Alice", user["displayName"])
	assert.Equal(t, "user", user["role"])

	// Duplicate registration conflicts.
	rec = ts.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"displayName": "Imposter",
		"email":       "alice@example.com",
		"password":    "hunter2",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Password login works with the registered credentials.
	rec = ts.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "Alice", "alice@example.com")

	rec := ts.do(t, http.MethodPost, "/tasks", token, gin.H{"text": "Buy milk"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeJSON(t, rec)
	taskID := created["id"].(string)
	assert.Equal(t, "Buy milk", created["text"])
	assert.Equal(t, false, created["completed"])

	rec = ts.do(t, http.MethodPatch, "/tasks/"+taskID, token, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	patched := decodeJSON(t, rec)
	assert.Equal(t, true, patched["completed"])
	assert.Equal(t, "Buy milk", patched["text"])

	rec = ts.do(t, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSONList(t, rec), 1)

	rec = ts.do(t, http.MethodDelete, "/tasks/"+taskID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task deleted successfully", decodeJSON(t, rec)["message"])

	rec = ts.do(t, http.MethodDelete, "/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTask_Validation(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "Alice", "alice@example.com")

	// Missing text fails binding.
	rec := ts.do(t, http.MethodPost, "/tasks", token, gin.H{"completed": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Whitespace-only text fails validation.
	rec = ts.do(t, http.MethodPost, "/tasks", token, gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTasksAreOwnerScoped(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.register(t, "Alice", "alice@example.com")
	bobToken := ts.register(t, "Bob", "bob@example.com")

	rec := ts.do(t, http.MethodPost, "/tasks", aliceToken, gin.H{"text": "private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := decodeJSON(t, rec)["id"].(string)

	// Bob cannot see, patch or delete Alice's task; the id leaks
	// nothing, so the answer is 404 rather than 403.
	rec = ts.do(t, http.MethodGet, "/tasks/"+taskID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/tasks/"+taskID, bobToken, gin.H{"text": "stolen"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/tasks/"+taskID, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodGet, "/tasks", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSONList(t, rec))
}

func TestDemoLogin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/demo-login", "", gin.H{"userType": "user"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])

	token := sessionToken(t, rec)
	rec = ts.do(t, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	// The demo account comes pre-seeded with welcome tasks.
	assert.Len(t, decodeJSONList(t, rec), 3)
}

func TestDemoAutoLoginIssuesSession(t *testing.T) {
	ts := newTestServer(t)

	// A cookie-less visit gets a session for the demo user and the page.
	rec := ts.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index", rec.Body.String())

	token := sessionToken(t, rec)
	rec = ts.do(t, http.MethodGet, "/api/current_user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "demo@example.com", decodeJSON(t, rec)["email"])
}

func TestDemoAutoLoginKeepsExistingSession(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "Alice", "alice@example.com")

	rec := ts.do(t, http.MethodGet, "/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The existing session is left alone; no replacement cookie is set.
	for _, cookie := range rec.Result().Cookies() {
		assert.NotEqual(t, auth.SessionCookie, cookie.Name)
	}
}

func TestAdminSurfaceForbiddenForUsers(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "Alice", "alice@example.com")

	rec := ts.do(t, http.MethodGet, "/api/admin/tasks", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminListTasksAnnotatesOwner(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.register(t, "Alice", "alice@example.com")
	adminToken := ts.demoAdmin(t)

	rec := ts.do(t, http.MethodPost, "/tasks", aliceToken, gin.H{"text": "audit me"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/admin/tasks", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tasks := decodeJSONList(t, rec)
	var found bool
	for _, task := range tasks {
		if task["text"] == "audit me" {
			found = true
			assert.Equal(t, "Alice", task["userName"])
		}
	}
	assert.True(t, found)
}

func TestAdminCanDeleteAnyTask(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.register(t, "Alice", "alice@example.com")
	adminToken := ts.demoAdmin(t)

	rec := ts.do(t, http.MethodPost, "/tasks", aliceToken, gin.H{"text": "doomed"})
	require.Equal(t, http.StatusCreated, rec.Code)
	taskID := decodeJSON(t, rec)["id"].(string)

	rec = ts.do(t, http.MethodDelete, "/api/admin/tasks/"+taskID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/tasks", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeJSONList(t, rec))
}

func TestRoleChangeBitesOnNextRequest(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.register(t, "Alice", "alice@example.com")
	adminToken := ts.demoAdmin(t)

	rec := ts.do(t, http.MethodGet, "/api/current_user", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	aliceID := decodeJSON(t, rec)["id"].(string)

	// Alice cannot reach the admin surface yet.
	rec = ts.do(t, http.MethodGet, "/api/admin/users", aliceToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/api/admin/users/"+aliceID+"/role", adminToken, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User role updated to admin", decodeJSON(t, rec)["message"])

	// The old token now carries admin rights: the verifier reloads
	// the user on every request.
	rec = ts.do(t, http.MethodGet, "/api/admin/users", aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminUpdateRole_InvalidRole(t *testing.T) {
	ts := newTestServer(t)
	adminToken := ts.demoAdmin(t)

	rec := ts.do(t, http.MethodPatch, "/api/admin/users/"+memory.DemoUserID+"/role", adminToken, gin.H{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPatch, "/api/admin/users/missing/role", adminToken, gin.H{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	aliceToken := ts.register(t, "Alice", "alice@example.com")
	adminToken := ts.demoAdmin(t)

	rec := ts.do(t, http.MethodGet, "/api/current_user", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	aliceID := decodeJSON(t, rec)["id"].(string)

	rec = ts.do(t, http.MethodDelete, "/api/admin/users/"+aliceID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The deleted user's session no longer verifies.
	rec = ts.do(t, http.MethodGet, "/api/tasks", aliceToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == auth.SessionCookie {
			cleared = cookie.MaxAge < 0
		}
	}
	assert.True(t, cleared)
}

func TestListImages(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "Alice", "alice@example.com")

	rec := ts.do(t, http.MethodGet, "/images", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
