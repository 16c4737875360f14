package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/photon-webhook/internal/errors"
	"github.com/wfunc/photon-webhook/internal/logger"
	"github.com/wfunc/photon-webhook/internal/middleware"
	"github.com/wfunc/photon-webhook/internal/repository"
	"github.com/wfunc/photon-webhook/internal/utils"
	"github.com/wfunc/photon-webhook/internal/webhook"
	"go.uber.org/zap"
)

// WebhookHandler 房间Webhook处理器
// 房间服务器只看响应体里的ResultCode，HTTP层永远返回200
type WebhookHandler struct {
	validator *webhook.Validator
	rooms     *webhook.RoomManager
	events    repository.TitleEventRepository
	log       *zap.Logger
}

// NewWebhookHandler 创建Webhook处理器
func NewWebhookHandler(validator *webhook.Validator, rooms *webhook.RoomManager, events repository.TitleEventRepository) *WebhookHandler {
	return &WebhookHandler{
		validator: validator,
		rooms:     rooms,
		events:    events,
		log:       logger.WithModule("webhook"),
	}
}

// respond 输出Webhook响应
func (h *WebhookHandler) respond(c *gin.Context, resp webhook.Response) {
	c.JSON(http.StatusOK, resp)
}

// respondError 统一的错误恢复边界
// 错误信号映射为其结果码；其余错误一律归为255并带上类型名
func (h *WebhookHandler) respondError(c *gin.Context, err error) {
	if whErr, ok := errors.As(err); ok {
		h.respond(c, webhook.Response{
			ResultCode: int(whErr.Code),
			Message:    whErr.Message,
		})
		return
	}
	h.respond(c, webhook.Response{
		ResultCode: int(errors.CodeInternal),
		Message:    fmt.Sprintf("%T: %v", err, err),
	})
}

// RoomCreated 房间创建/加载回调
// 唯一会改动房间状态的入口：校验入参后按Type分派到创建或加载路径
// @Summary 房间创建/加载回调
// @Tags Photon
// @Accept json
// @Produce json
// @Param request body webhook.RoomWebhookRequest true "房间Webhook入参"
// @Success 200 {object} webhook.Response
// @Router /api/v1/photon/room-created [post]
func (h *WebhookHandler) RoomCreated(c *gin.Context) {
	ctx := c.Request.Context()
	timestamp := utils.ISOTimestamp()

	var req webhook.RoomWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, err)
		return
	}

	playerID := callerID(c)
	h.events.Write(ctx, "room_created", &req, playerID, gameID(&req))

	if err := h.validator.Check(ctx, &req, playerID, timestamp); err != nil {
		h.respondError(c, err)
		return
	}

	switch *req.Type {
	case webhook.TypeCreate:
		if err := h.rooms.HandleCreate(ctx, &req, playerID, timestamp); err != nil {
			h.respondError(c, err)
			return
		}
		logger.LogWebhookEvent("room_created", gameID(&req), playerID, 0)
		h.respond(c, webhook.Response{ResultCode: 0, Message: "OK"})

	case webhook.TypeLoad:
		state, created, err := h.rooms.HandleLoad(ctx, &req, playerID, timestamp)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if created {
			// 隐式创建：没有存档可回传
			empty := ""
			h.respond(c, webhook.Response{ResultCode: 0, Message: "Success", State: &empty})
			return
		}
		h.respond(c, webhook.Response{ResultCode: 0, Message: "OK", State: &state})

	default:
		// 其他类型不该打到这个入口
		whErr := errors.Newf(errors.CodeInvalidOperation, timestamp, gin.H{"Webhook": &req},
			"Wrong PathCreate Type=%s", *req.Type)
		h.events.Write(ctx, "webhook_exception", whErr, playerID, gameID(&req))
		h.log.Warn("错误的回调路径", zap.String("type", *req.Type))
		h.respondError(c, whErr)
	}
}

// RoomJoined 玩家加入回调，只记事件
func (h *WebhookHandler) RoomJoined(c *gin.Context) {
	h.acknowledge(c, "room_joined")
}

// RoomLeft 玩家离开回调，只记事件
func (h *WebhookHandler) RoomLeft(c *gin.Context) {
	h.acknowledge(c, "room_left")
}

// RoomClosed 房间关闭回调，只记事件
func (h *WebhookHandler) RoomClosed(c *gin.Context) {
	h.acknowledge(c, "room_closed")
}

// RoomPropertyUpdated 房间属性变更回调，只记事件
func (h *WebhookHandler) RoomPropertyUpdated(c *gin.Context) {
	h.acknowledge(c, "room_property_changed")
}

// RoomEventRaised 自定义事件回调，只记事件
func (h *WebhookHandler) RoomEventRaised(c *gin.Context) {
	h.acknowledge(c, "room_event_raised")
}

// acknowledge 记录事件并无条件确认成功（占位路径，暂无业务逻辑）
func (h *WebhookHandler) acknowledge(c *gin.Context, eventName string) {
	ctx := c.Request.Context()

	var req webhook.RoomWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, err)
		return
	}

	h.events.Write(ctx, eventName, &req, callerID(c), gameID(&req))
	logger.LogWebhookEvent(eventName, gameID(&req), callerID(c), 0)
	h.respond(c, webhook.Response{ResultCode: 0, Message: "Success"})
}

// callerID 取调用方玩家ID（未认证时为空串）
func callerID(c *gin.Context) string {
	playerID, _ := middleware.GetPlayerID(c)
	return playerID
}

// gameID 取入参中的房间ID（缺省时为空串）
func gameID(req *webhook.RoomWebhookRequest) string {
	if req.GameId == nil {
		return ""
	}
	return *req.GameId
}
