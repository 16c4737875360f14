package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/photon-webhook/internal/errors"
	"github.com/wfunc/photon-webhook/internal/repository"
	"github.com/wfunc/photon-webhook/internal/webhook"
)

// AdminHandler 管理接口处理器
type AdminHandler struct {
	rooms  *webhook.RoomManager
	events repository.TitleEventRepository
}

// NewAdminHandler 创建管理接口处理器
func NewAdminHandler(rooms *webhook.RoomManager, events repository.TitleEventRepository) *AdminHandler {
	return &AdminHandler{
		rooms:  rooms,
		events: events,
	}
}

// GetRoom 查询房间记录
// @Summary 查询房间记录
// @Tags Admin
// @Security Bearer
// @Produce json
// @Success 200 {object} webhook.RoomRecord
// @Router /api/v1/admin/rooms/{gameId} [get]
func (h *AdminHandler) GetRoom(c *gin.Context) {
	record, err := h.rooms.GetRoom(c.Request.Context(), c.Param("gameId"))
	if err != nil {
		if errors.Is(err, errors.CodeRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "ROOM_NOT_FOUND",
				"message": "房间不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "QUERY_FAILED",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteRoom 删除房间
// 显式的管理操作，房间不会被自动回收
// @Summary 删除房间
// @Tags Admin
// @Security Bearer
// @Success 200 {object} map[string]string
// @Router /api/v1/admin/rooms/{gameId} [delete]
func (h *AdminHandler) DeleteRoom(c *gin.Context) {
	gameID := c.Param("gameId")

	err := h.rooms.DeleteRoom(c.Request.Context(), gameID)
	if err != nil {
		if errors.Is(err, errors.CodeRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "ROOM_NOT_FOUND",
				"message": "房间不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "DELETE_FAILED",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "删除成功",
		"game_id": gameID,
	})
}

// GetPlayerRooms 查询玩家房间索引
// @Summary 查询玩家房间索引
// @Tags Admin
// @Security Bearer
// @Produce json
// @Router /api/v1/admin/players/{playerId}/rooms [get]
func (h *AdminHandler) GetPlayerRooms(c *gin.Context) {
	rooms, err := h.rooms.GetPlayerRooms(c.Request.Context(), c.Param("playerId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "QUERY_FAILED",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": c.Param("playerId"),
		"rooms":     rooms,
	})
}

// GetEvents 查询最近事件
// @Summary 查询最近事件
// @Tags Admin
// @Security Bearer
// @Produce json
// @Param name query string false "事件名过滤"
// @Param page query int false "页码"
// @Param page_size query int false "每页条数"
// @Router /api/v1/admin/events [get]
func (h *AdminHandler) GetEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	p := repository.NewPagination(page, pageSize)

	var (
		events interface{}
		err    error
	)
	if name := c.Query("name"); name != "" {
		events, err = h.events.FindByName(c.Request.Context(), name, p)
	} else {
		events, err = h.events.Recent(c.Request.Context(), p)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "QUERY_FAILED",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":     events,
		"pagination": p,
	})
}
