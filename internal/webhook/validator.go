package webhook

import (
	"context"
	"fmt"

	"github.com/wfunc/photon-webhook/internal/errors"
	"github.com/wfunc/photon-webhook/internal/logger"
	"github.com/wfunc/photon-webhook/internal/repository"
	"go.uber.org/zap"
)

// Validator 房间Webhook入参校验器
// 按固定顺序逐条检查，遇到第一个违规即返回错误信号
type Validator struct {
	events repository.TitleEventRepository
	log    *zap.Logger
}

// NewValidator 创建校验器
func NewValidator(events repository.TitleEventRepository) *Validator {
	return &Validator{
		events: events,
		log:    logger.WithModule("webhook"),
	}
}

// raise 产生错误信号
// 信号在产生时即写入事件审计并记日志，无论上层如何处理都可观测
func (v *Validator) raise(ctx context.Context, err *errors.WebhookError) error {
	v.events.Write(ctx, "webhook_exception", err, "", "")
	v.log.Warn("校验失败",
		zap.Int("result_code", int(err.Code)),
		zap.String("message", err.Message),
	)
	return err
}

// Check 校验房间Webhook入参
// callerID为平台鉴权得到的调用方身份，timestamp为本次调用的统一时间戳
func (v *Validator) Check(ctx context.Context, req *RoomWebhookRequest, callerID, timestamp string) error {
	// 所有事件类型的公共必填字段
	if req.AppId == nil {
		return v.raise(ctx, errors.MissingArgument("AppId", timestamp, req))
	}
	if req.AppVersion == nil {
		return v.raise(ctx, errors.MissingArgument("AppVersion", timestamp, req))
	}
	if req.Region == nil {
		return v.raise(ctx, errors.MissingArgument("Region", timestamp, req))
	}
	if req.GameId == nil {
		return v.raise(ctx, errors.MissingArgument("GameId", timestamp, req))
	}
	if req.Type == nil {
		return v.raise(ctx, errors.MissingArgument("Type", timestamp, req))
	}

	eventType := *req.Type
	if eventType != TypeClose && eventType != TypeSave {
		// 玩家级事件：必须带调用方的座位号与身份，且身份要与平台鉴权一致
		if req.ActorNr == nil {
			return v.raise(ctx, errors.MissingArgument("ActorNr", timestamp, req))
		}
		if req.UserId == nil {
			return v.raise(ctx, errors.MissingArgument("UserId", timestamp, req))
		}
		if *req.UserId != callerID {
			return v.raise(ctx, errors.Newf(errors.CodeIdentityMismatch, timestamp, req,
				"PlayerId=%s does not match UserId", callerID))
		}
		if req.Username == nil && req.Nickname == nil {
			return v.raise(ctx, errors.MissingArgument("Username/Nickname", timestamp, req))
		}
	} else {
		// 房间级事件：成员计数必填，附带成员快照时两者要吻合
		if req.ActorCount == nil {
			return v.raise(ctx, errors.MissingArgument("ActorCount", timestamp, req))
		}
		if req.State2 != nil && req.State2.ActorList != nil {
			if len(req.State2.ActorList) != *req.ActorCount {
				return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
					"ActorCount does not match ActorList.count", timestamp, req))
			}
		}
	}

	switch eventType {
	case TypeLoad:
		if req.CreateIfNotExists == nil {
			return v.raise(ctx, errors.MissingArgument("CreateIfNotExists", timestamp, req))
		}
	case TypeCreate:
		if req.CreateOptions == nil {
			return v.raise(ctx, errors.MissingArgument("CreateOptions", timestamp, req))
		}
		// 只有房主能以1号座位创建房间
		if *req.ActorNr != 1 {
			return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
				"ActorNr != 1 and Type == Create", timestamp, req))
		}
	case TypeJoin:
		// 无附加规则
	case TypePlayer:
		if req.TargetActor == nil {
			return v.raise(ctx, errors.MissingArgument("TargetActor", timestamp, req))
		}
		if req.Properties == nil {
			return v.raise(ctx, errors.MissingArgument("Properties", timestamp, req))
		}
		if req.Username != nil && req.State == nil {
			return v.raise(ctx, errors.MissingArgument("State", timestamp, req))
		}
	case TypeGame:
		if req.Properties == nil {
			return v.raise(ctx, errors.MissingArgument("Properties", timestamp, req))
		}
		if req.Username != nil && req.State == nil {
			return v.raise(ctx, errors.MissingArgument("State", timestamp, req))
		}
	case TypeEvent:
		if req.Data == nil {
			return v.raise(ctx, errors.MissingArgument("Data", timestamp, req))
		}
		if req.Username != nil && req.State == nil {
			return v.raise(ctx, errors.MissingArgument("State", timestamp, req))
		}
	case TypeSave:
		if req.State == nil {
			return v.raise(ctx, errors.MissingArgument("State", timestamp, req))
		}
		if *req.ActorCount <= 0 {
			return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
				"ActorCount <= 0 and Type == Save", timestamp, req))
		}
	case TypeClose:
		if *req.ActorCount != 0 {
			return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
				"ActorCount != 0 and Type == Close", timestamp, req))
		}
	case TypeLeave:
		// 已废弃的转发路径，任何情况下都拒绝
		return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
			"Deprecated forward plugin webhook!", timestamp, req))
	default:
		code, known := LeaveReasons[eventType]
		if !known {
			return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
				fmt.Sprintf("Unexpected Type:%s", eventType), "", nil))
		}
		if req.IsInactive == nil {
			return v.raise(ctx, errors.MissingArgument("IsInactive", timestamp, req))
		}
		if req.Reason == nil {
			return v.raise(ctx, errors.MissingArgument("Reason", timestamp, req))
		}
		// Type名与Reason码是同一原因的两种冗余编码，必须一致
		if code != *req.Reason {
			return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
				"Reason code does not match Leave Type string", timestamp, req))
		}
		if disallowedLeaveReasons[*req.Reason] {
			return v.raise(ctx, errors.New(errors.CodeInvalidOperation,
				"Unexpected LeaveReason", timestamp, req))
		}
	}

	return nil
}
