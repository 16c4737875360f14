package utils

import "time"

// ISOTimestampFormat 与房间服务器约定的ISO-8601毫秒时间戳格式
const ISOTimestampFormat = "2006-01-02T15:04:05.000Z"

// ISOTimestamp 生成当前UTC时间的ISO-8601时间戳字符串
// 该时间戳同时作为LoadEvents日志的键，毫秒精度足够区分同一房间的加载事件
func ISOTimestamp() string {
	return time.Now().UTC().Format(ISOTimestampFormat)
}

// FormatISOTimestamp 格式化指定时间为ISO-8601时间戳字符串
func FormatISOTimestamp(t time.Time) string {
	return t.UTC().Format(ISOTimestampFormat)
}
