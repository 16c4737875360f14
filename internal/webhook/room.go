package webhook

import (
	"context"
	"encoding/json"

	"github.com/wfunc/photon-webhook/internal/config"
	"github.com/wfunc/photon-webhook/internal/errors"
	"github.com/wfunc/photon-webhook/internal/logger"
	"github.com/wfunc/photon-webhook/internal/repository"
	"go.uber.org/zap"
)

// WebhooksVersionLegacy 老协议版本（不带Nickname）
const WebhooksVersionLegacy = "1.0"

// WebhooksVersionCurrent 当前协议版本（带Nickname）
const WebhooksVersionCurrent = "1.2"

// RoomManager 房间生命周期管理器
// 负责创建、加载房间记录并维护玩家索引；所有存储失败原样上抛，不做重试
type RoomManager struct {
	groups repository.SharedGroupRepository
	events repository.TitleEventRepository
	title  *config.TitleConfig
	log    *zap.Logger
}

// NewRoomManager 创建房间生命周期管理器
func NewRoomManager(groups repository.SharedGroupRepository, events repository.TitleEventRepository, title *config.TitleConfig) *RoomManager {
	return &RoomManager{
		groups: groups,
		events: events,
		title:  title,
		log:    logger.WithModule("webhook"),
	}
}

// raise 产生错误信号，产生时即写入事件审计并记日志
func (m *RoomManager) raise(ctx context.Context, err *errors.WebhookError) error {
	m.events.Write(ctx, "webhook_exception", err, "", "")
	m.log.Warn("房间操作失败",
		zap.Int("result_code", int(err.Code)),
		zap.String("message", err.Message),
	)
	return err
}

// HandleCreate 处理房间创建
// 构建全新房间记录写入房间组，并把完整快照写入房主索引；重复调用为幂等覆盖
func (m *RoomManager) HandleCreate(ctx context.Context, req *RoomWebhookRequest, callerID, timestamp string) error {
	gameID := *req.GameId

	m.events.Write(ctx, "on_game_created", req, callerID, gameID)

	if err := m.groups.CreateGroup(ctx, gameID); err != nil {
		return err
	}

	// 环境快照只在创建时采集一次
	webhooksVersion := WebhooksVersionCurrent
	if req.Nickname == nil {
		webhooksVersion = WebhooksVersionLegacy
	}
	record := &RoomRecord{
		Env: EnvSnapshot{
			Region:          *req.Region,
			AppVersion:      *req.AppVersion,
			AppId:           *req.AppId,
			TitleId:         m.title.TitleID,
			ScriptVersion:   m.title.ScriptVersion,
			ScriptRevision:  m.title.ScriptRevision,
			ServerVersion:   m.title.ServerVersion,
			WebhooksVersion: webhooksVersion,
		},
		RoomOptions: req.CreateOptions,
		Creation: Creation{
			Timestamp: timestamp,
			UserId:    *req.UserId,
			Type:      *req.Type,
		},
		Actors: map[int]Actor{
			1: {UserId: *req.UserId, Inactive: false},
		},
		NextActorNr: 2,
	}

	if err := m.groups.UpdateData(ctx, gameID, record.Entries()); err != nil {
		return err
	}

	// 房主索引持有创建时刻的完整快照
	listID := GamesListID(callerID)
	if err := m.groups.CreateGroup(ctx, listID); err != nil {
		return err
	}
	if err := m.groups.UpdateEntry(ctx, listID, gameID, record); err != nil {
		return err
	}

	m.log.Info("房间已创建",
		zap.String("game_id", gameID),
		zap.String("owner", *req.UserId),
	)
	return nil
}

// HandleLoad 处理房间加载
// 先查调用方自己的索引，索引记录的房主不是调用方时改查真正房主的索引；
// 没有存档状态时按CreateIfNotExists决定报5还是隐式创建。
// 返回值：存档状态、是否走了隐式创建。
func (m *RoomManager) HandleLoad(ctx context.Context, req *RoomWebhookRequest, callerID, timestamp string) (string, bool, error) {
	gameID := *req.GameId

	record, err := m.lookupIndexed(ctx, GamesListID(callerID), gameID)
	if err != nil {
		return "", false, err
	}
	if record != nil && record.Creation.UserId != callerID {
		// 调用方不是房主，重定向到房主的索引
		record, err = m.lookupIndexed(ctx, GamesListID(record.Creation.UserId), gameID)
		if err != nil {
			return "", false, err
		}
	}

	if record == nil || record.State == "" {
		if req.CreateIfNotExists != nil && !*req.CreateIfNotExists {
			return "", false, m.raise(ctx, errors.Newf(errors.CodeRoomNotFound, timestamp, req,
				"Room=%s not found", gameID))
		}
		// 加载先于创建到达的良性竞态，按隐式创建处理
		if err := m.HandleCreate(ctx, req, callerID, timestamp); err != nil {
			return "", false, err
		}
		return "", true, nil
	}

	// 追加加载记录，只回写房间组；索引中的快照保持创建时状态
	if record.LoadEvents == nil {
		record.LoadEvents = make(map[string]LoadEvent)
	}
	record.LoadEvents[timestamp] = LoadEvent{
		ActorNr: *req.ActorNr,
		UserId:  *req.UserId,
	}

	if err := m.groups.CreateGroup(ctx, gameID); err != nil {
		return "", false, err
	}
	if err := m.groups.UpdateData(ctx, gameID, record.Entries()); err != nil {
		return "", false, err
	}

	m.log.Info("房间已加载",
		zap.String("game_id", gameID),
		zap.String("player", callerID),
	)
	return record.State, false, nil
}

// lookupIndexed 从指定索引组读取房间快照，条目不存在时返回nil
func (m *RoomManager) lookupIndexed(ctx context.Context, listID, gameID string) (*RoomRecord, error) {
	value, found, err := m.groups.GetEntry(ctx, listID, gameID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var record RoomRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRoom 读取房间记录（管理接口）
func (m *RoomManager) GetRoom(ctx context.Context, gameID string) (*RoomRecord, error) {
	exists, err := m.groups.GroupExists(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Newf(errors.CodeRoomNotFound, "", nil, "Room=%s not found", gameID)
	}

	data, err := m.groups.GetData(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return ParseRecordEntries(data)
}

// GetPlayerRooms 读取玩家索引中的全部房间快照（管理接口）
func (m *RoomManager) GetPlayerRooms(ctx context.Context, playerID string) (map[string]*RoomRecord, error) {
	data, err := m.groups.GetData(ctx, GamesListID(playerID))
	if err != nil {
		return nil, err
	}

	rooms := make(map[string]*RoomRecord, len(data))
	for gameID, value := range data {
		var record RoomRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			return nil, err
		}
		rooms[gameID] = &record
	}
	return rooms, nil
}

// DeleteRoom 删除房间（管理接口）
// 先摘除房主索引中的快照（空值即删除），再删除房间组
func (m *RoomManager) DeleteRoom(ctx context.Context, gameID string) error {
	record, err := m.GetRoom(ctx, gameID)
	if err != nil {
		return err
	}

	if record.Creation.UserId != "" {
		listID := GamesListID(record.Creation.UserId)
		err = m.groups.UpdateData(ctx, listID, map[string]interface{}{gameID: nil})
		if err != nil {
			return err
		}
	}

	if err := m.groups.DeleteGroup(ctx, gameID); err != nil {
		return err
	}

	m.log.Info("房间已删除", zap.String("game_id", gameID))
	return nil
}
