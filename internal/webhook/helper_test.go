package webhook

import (
	"testing"

	"github.com/wfunc/photon-webhook/internal/config"
	"github.com/wfunc/photon-webhook/internal/repository"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

// testStack 组装一套基于内存库的校验器与房间管理器
func testStack(t *testing.T) (*Validator, *RoomManager, repository.SharedGroupRepository, *gorm.DB) {
	t.Helper()

	db := repository.SetupTestDB()
	t.Cleanup(func() { repository.CleanupTestDB(db) })

	groups := repository.NewSharedGroupRepository(db)
	events := repository.NewTitleEventRepository(db)
	title := &config.TitleConfig{
		TitleID:        "TEST01",
		ScriptVersion:  "1.0",
		ScriptRevision: "7",
		ServerVersion:  "srv-1",
	}

	return NewValidator(events), NewRoomManager(groups, events, title), groups, db
}

// baseRequest 构造带公共字段的玩家级入参
func baseRequest(eventType, gameID, userID string) *RoomWebhookRequest {
	return &RoomWebhookRequest{
		AppId:      strPtr("app-1"),
		AppVersion: strPtr("1.0"),
		Region:     strPtr("EU"),
		GameId:     strPtr(gameID),
		Type:       strPtr(eventType),
		ActorNr:    intPtr(1),
		UserId:     strPtr(userID),
		Nickname:   strPtr("nick"),
	}
}

// createRequest 构造合法的Create入参
func createRequest(gameID, userID string) *RoomWebhookRequest {
	req := baseRequest(TypeCreate, gameID, userID)
	req.CreateOptions = []byte(`{"MaxPlayers":4}`)
	return req
}

// loadRequest 构造合法的Load入参
func loadRequest(gameID, userID string, createIfNotExists bool) *RoomWebhookRequest {
	req := baseRequest(TypeLoad, gameID, userID)
	req.ActorNr = intPtr(2)
	req.CreateIfNotExists = boolPtr(createIfNotExists)
	req.CreateOptions = []byte(`{"MaxPlayers":4}`)
	return req
}
