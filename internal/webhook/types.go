package webhook

import (
	"encoding/json"
	"strconv"
)

// GamesListSuffix 玩家房间索引组的键后缀
const GamesListSuffix = "_GamesList"

// GamesListID 返回玩家房间索引组的组ID
func GamesListID(playerID string) string {
	return playerID + GamesListSuffix
}

// 事件类型（房间服务器在Type字段中声明）
const (
	TypeCreate = "Create"
	TypeLoad   = "Load"
	TypeJoin   = "Join"
	TypePlayer = "Player"
	TypeGame   = "Game"
	TypeEvent  = "Event"
	TypeSave   = "Save"
	TypeClose  = "Close"
	TypeLeave  = "Leave"
)

// LeaveReasons 断线/离开原因枚举：Type名 -> Reason码
// 这是一个封闭枚举，房间服务器不会发送表外的原因码
var LeaveReasons = map[string]string{
	"ClientDisconnect":        "0",
	"ClientTimeoutDisconnect": "1",
	"ManagedDisconnect":       "2",
	"ServerDisconnect":        "3",
	"TimeoutDisconnect":       "4",
	"ConnectTimeout":          "5",
	"SwitchRoom":              "100",
	"LeaveRequest":            "101",
	"PlayerTtlTimedOut":       "102",
	"PeerLastTouchTimedout":   "103",
	"PluginRequest":           "104",
	"PluginFailedJoin":        "105",
}

// disallowedLeaveReasons 不允许走此路径的原因码
var disallowedLeaveReasons = map[string]bool{
	"1":   true,
	"100": true,
	"103": true,
	"105": true,
}

// RoomState2 房间级事件附带的成员快照
type RoomState2 struct {
	ActorList []json.RawMessage `json:"ActorList"`
}

// RoomWebhookRequest 房间Webhook入参
// 所有事件类型共用一个入参结构，可选字段用指针表达以便区分缺省与零值
type RoomWebhookRequest struct {
	// 所有事件类型都必填的字段
	AppId      *string `json:"AppId"`
	AppVersion *string `json:"AppVersion"`
	Region     *string `json:"Region"`
	GameId     *string `json:"GameId"`
	Type       *string `json:"Type"`

	// 玩家级事件字段
	ActorNr  *int    `json:"ActorNr"`
	UserId   *string `json:"UserId"`
	Username *string `json:"Username"`
	Nickname *string `json:"Nickname"`

	// 房间级事件（Close/Save）字段
	ActorCount *int        `json:"ActorCount"`
	State2     *RoomState2 `json:"State2"`

	// 按事件类型附加的字段
	CreateIfNotExists *bool           `json:"CreateIfNotExists"`
	CreateOptions     json.RawMessage `json:"CreateOptions"`
	TargetActor       *int            `json:"TargetActor"`
	Properties        json.RawMessage `json:"Properties"`
	Data              json.RawMessage `json:"Data"`
	State             json.RawMessage `json:"State"`
	IsInactive        *bool           `json:"IsInactive"`
	Reason            *string         `json:"Reason"`
}

// StateText 把入参中的State还原为存储文本
// State若是JSON字符串则取其内容，否则取原始JSON文本
func (r *RoomWebhookRequest) StateText() string {
	if r.State == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.State, &s); err == nil {
		return s
	}
	return string(r.State)
}

// Response 房间Webhook返回值，HTTP层永远返回200
type Response struct {
	ResultCode int     `json:"ResultCode"`
	Message    string  `json:"Message"`
	State      *string `json:"State,omitempty"`
}

// EnvSnapshot 创建房间时采集的环境元数据快照，此后不再变更
type EnvSnapshot struct {
	Region          string `json:"Region"`
	AppVersion      string `json:"AppVersion"`
	AppId           string `json:"AppId"`
	TitleId         string `json:"TitleId"`
	ScriptVersion   string `json:"ScriptVersion"`
	ScriptRevision  string `json:"ScriptRevision"`
	ServerVersion   string `json:"ServerVersion"`
	WebhooksVersion string `json:"WebhooksVersion"`
}

// Creation 房间创建记录，唯一标识房主
type Creation struct {
	Timestamp string `json:"Timestamp"`
	UserId    string `json:"UserId"`
	Type      string `json:"Type"`
}

// Actor 房间内的座位占用者
type Actor struct {
	UserId   string `json:"UserId"`
	Inactive bool   `json:"Inactive"`
}

// LoadEvent 一次加载/重连记录
type LoadEvent struct {
	ActorNr int    `json:"ActorNr"`
	UserId  string `json:"UserId"`
}

// RoomRecord 房间记录
// 在房间组中按字段拆成独立条目存储，在玩家索引组中整体存为单个条目
type RoomRecord struct {
	Env         EnvSnapshot          `json:"Env"`
	RoomOptions json.RawMessage      `json:"RoomOptions,omitempty"`
	Creation    Creation             `json:"Creation"`
	Actors      map[int]Actor        `json:"Actors"`
	NextActorNr int                  `json:"NextActorNr"`
	LoadEvents  map[string]LoadEvent `json:"LoadEvents,omitempty"`
	State       string               `json:"State,omitempty"`
}

// Entries 把房间记录展开为组条目写入集
// State是字符串，经存储层原样保存；其余字段由存储层JSON编码
func (r *RoomRecord) Entries() map[string]interface{} {
	entries := map[string]interface{}{
		"Env":         r.Env,
		"RoomOptions": r.RoomOptions,
		"Creation":    r.Creation,
		"Actors":      r.Actors,
		"NextActorNr": r.NextActorNr,
	}
	if r.LoadEvents != nil {
		entries["LoadEvents"] = r.LoadEvents
	}
	if r.State != "" {
		entries["State"] = r.State
	}
	return entries
}

// ParseRecordEntries 从组条目集还原房间记录
// State按原样文本读取（写入时未二次编码），其余字段JSON解码
func ParseRecordEntries(data map[string]string) (*RoomRecord, error) {
	record := &RoomRecord{}
	for key, value := range data {
		var err error
		switch key {
		case "Env":
			err = json.Unmarshal([]byte(value), &record.Env)
		case "RoomOptions":
			record.RoomOptions = json.RawMessage(value)
		case "Creation":
			err = json.Unmarshal([]byte(value), &record.Creation)
		case "Actors":
			err = json.Unmarshal([]byte(value), &record.Actors)
		case "NextActorNr":
			record.NextActorNr, err = strconv.Atoi(value)
		case "LoadEvents":
			err = json.Unmarshal([]byte(value), &record.LoadEvents)
		case "State":
			record.State = value
		}
		if err != nil {
			return nil, err
		}
	}
	return record, nil
}
