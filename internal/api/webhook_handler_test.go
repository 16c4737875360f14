package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wfunc/photon-webhook/internal/config"
	"github.com/wfunc/photon-webhook/internal/repository"
	"github.com/wfunc/photon-webhook/internal/utils"
	"github.com/wfunc/photon-webhook/internal/webhook"
)

const testWebhookSecret = "hook-secret"

// newTestServer 组装一套基于内存库的完整路由
func newTestServer(t *testing.T) (*Router, *utils.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := repository.SetupTestDB()
	t.Cleanup(func() { repository.CleanupTestDB(db) })

	hash, err := utils.HashSecret(testWebhookSecret)
	require.NoError(t, err)

	cfg := &config.Config{
		Title: config.TitleConfig{
			TitleID:        "TEST01",
			ScriptVersion:  "1.0",
			ScriptRevision: "7",
			ServerVersion:  "srv-1",
		},
		Security: config.SecurityConfig{
			JWT:           config.JWTConfig{Secret: "test-jwt-secret", ExpireHours: 1},
			WebhookSecret: hash,
		},
	}

	jwtManager := utils.NewJWTManager(cfg.Security.JWT.Secret, time.Hour)
	return NewRouter(db, cfg, zap.NewNop()), jwtManager
}

// postWebhook 以指定玩家身份调用Webhook端点
func postWebhook(t *testing.T, r *Router, jwtManager *utils.JWTManager, path, playerID string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	token, err := jwtManager.GenerateToken(playerID, "nick", "player")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", testWebhookSecret)
	req.Header.Set("X-Player-Token", token)

	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	return w
}

// decodeResponse 解析Webhook响应体
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) webhook.Response {
	t.Helper()
	var resp webhook.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// createPayload 合法的Create入参
func createPayload(gameID, userID string) map[string]interface{} {
	return map[string]interface{}{
		"AppId":         "app-1",
		"AppVersion":    "1.0",
		"Region":        "EU",
		"GameId":        gameID,
		"Type":          "Create",
		"ActorNr":       1,
		"UserId":        userID,
		"Nickname":      "nick",
		"CreateOptions": map[string]interface{}{"MaxPlayers": 4},
	}
}

// loadPayload 合法的Load入参
func loadPayload(gameID, userID string, createIfNotExists bool) map[string]interface{} {
	return map[string]interface{}{
		"AppId":             "app-1",
		"AppVersion":        "1.0",
		"Region":            "EU",
		"GameId":            gameID,
		"Type":              "Load",
		"ActorNr":           2,
		"UserId":            userID,
		"Nickname":          "nick",
		"CreateIfNotExists": createIfNotExists,
	}
}

func TestRoomCreated_Create(t *testing.T) {
	r, jwt := newTestServer(t)

	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", createPayload("G1", "U1"))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.Equal(t, 0, resp.ResultCode)
	assert.Equal(t, "OK", resp.Message)
	assert.Nil(t, resp.State)
}

func TestRoomCreated_ValidationFailureStillHTTP200(t *testing.T) {
	r, jwt := newTestServer(t)

	payload := createPayload("G1", "U1")
	delete(payload, "Region")
	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", payload)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.Equal(t, 1, resp.ResultCode)
	assert.Contains(t, resp.Message, "Missing argument: Region")
}

func TestRoomCreated_IdentityMismatch(t *testing.T) {
	r, jwt := newTestServer(t)

	// 令牌里的玩家是U2，入参声称U1
	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U2", createPayload("G1", "U1"))
	resp := decodeResponse(t, w)
	assert.Equal(t, 3, resp.ResultCode)
}

func TestRoomCreated_LoadNotFound(t *testing.T) {
	r, jwt := newTestServer(t)

	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", loadPayload("G-missing", "U1", false))
	resp := decodeResponse(t, w)
	assert.Equal(t, 5, resp.ResultCode)
	assert.Contains(t, resp.Message, "Room=G-missing not found")
}

func TestRoomCreated_LoadImplicitCreate(t *testing.T) {
	r, jwt := newTestServer(t)

	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", loadPayload("G-new", "U1", true))
	resp := decodeResponse(t, w)
	assert.Equal(t, 0, resp.ResultCode)
	assert.Equal(t, "Success", resp.Message)
	require.NotNil(t, resp.State)
	assert.Empty(t, *resp.State)
}

func TestRoomCreated_WrongPathType(t *testing.T) {
	r, jwt := newTestServer(t)

	payload := createPayload("G1", "U1")
	payload["Type"] = "Join"
	delete(payload, "CreateOptions")
	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", payload)
	resp := decodeResponse(t, w)
	assert.Equal(t, 2, resp.ResultCode)
	assert.Contains(t, resp.Message, "Wrong PathCreate Type=Join")
}

func TestRoomCreated_RequiresAuth(t *testing.T) {
	r, _ := newTestServer(t)

	body, _ := json.Marshal(createPayload("G1", "U1"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photon/room-created", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAcknowledgeEndpoints(t *testing.T) {
	r, jwt := newTestServer(t)

	paths := []string{
		"/api/v1/photon/room-joined",
		"/api/v1/photon/room-left",
		"/api/v1/photon/room-closed",
		"/api/v1/photon/room-property-updated",
		"/api/v1/photon/room-event-raised",
	}
	for _, path := range paths {
		w := postWebhook(t, r, jwt, path, "U1", createPayload("G1", "U1"))
		require.Equal(t, http.StatusOK, w.Code, path)
		resp := decodeResponse(t, w)
		assert.Equal(t, 0, resp.ResultCode, path)
		assert.Equal(t, "Success", resp.Message, path)
	}
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAdminEndpoints(t *testing.T) {
	r, jwt := newTestServer(t)

	// 准备一个房间
	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", createPayload("G1", "U1"))
	require.Equal(t, 0, decodeResponse(t, w).ResultCode)

	adminToken, err := jwt.GenerateToken("A1", "admin", "admin")
	require.NoError(t, err)
	adminGet := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := httptest.NewRecorder()
		r.GetEngine().ServeHTTP(rec, req)
		return rec
	}

	t.Run("查询房间", func(t *testing.T) {
		rec := adminGet("/api/v1/admin/rooms/G1")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"UserId":"U1"`)
	})

	t.Run("查询玩家索引", func(t *testing.T) {
		rec := adminGet("/api/v1/admin/players/U1/rooms")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "G1")
	})

	t.Run("查询事件", func(t *testing.T) {
		rec := adminGet("/api/v1/admin/events?name=on_game_created")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "on_game_created")
	})

	t.Run("普通玩家被拒绝", func(t *testing.T) {
		playerToken, err := jwt.GenerateToken("U1", "nick", "player")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/rooms/G1", nil)
		req.Header.Set("Authorization", "Bearer "+playerToken)
		rec := httptest.NewRecorder()
		r.GetEngine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("删除房间", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/rooms/G1", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		rec := httptest.NewRecorder()
		r.GetEngine().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = adminGet("/api/v1/admin/rooms/G1")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRoomCreatedThenLoad_RoundTrip(t *testing.T) {
	r, jwt := newTestServer(t)

	// 创建后未存档，按不存在处理
	w := postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", createPayload("G1", "U1"))
	require.Equal(t, 0, decodeResponse(t, w).ResultCode)

	w = postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", loadPayload("G1", "U1", false))
	resp := decodeResponse(t, w)
	assert.Equal(t, 5, resp.ResultCode)

	// 允许创建时走隐式创建
	w = postWebhook(t, r, jwt, "/api/v1/photon/room-created", "U1", loadPayload("G1", "U1", true))
	resp = decodeResponse(t, w)
	assert.Equal(t, 0, resp.ResultCode)
	assert.Equal(t, "Success", resp.Message)
}
