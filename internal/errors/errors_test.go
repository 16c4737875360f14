package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(CodeMissingArgument, "Missing argument: GameId", "2024-01-01T00:00:00.000Z", map[string]string{"Type": "Create"})

	assert.Equal(t, CodeMissingArgument, err.Code)
	assert.Equal(t, "Missing argument: GameId", err.Message)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", err.Timestamp)
	assert.NotNil(t, err.Data)
	assert.Equal(t, "[1] Missing argument: GameId", err.Error())
}

func TestNewDefaultMessage(t *testing.T) {
	// 未提供消息时使用结果码默认描述
	err := New(CodeRoomNotFound, "", "ts", nil)
	assert.Equal(t, Describe(CodeRoomNotFound), err.Message)
}

func TestNewf(t *testing.T) {
	err := Newf(CodeRoomNotFound, "ts", nil, "Room=%s not found", "G1")
	assert.Equal(t, CodeRoomNotFound, err.Code)
	assert.Equal(t, "Room=G1 not found", err.Message)
}

func TestMissingArgument(t *testing.T) {
	err := MissingArgument("ActorNr", "ts", nil)
	assert.Equal(t, CodeMissingArgument, err.Code)
	assert.Equal(t, "Missing argument: ActorNr", err.Message)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ResultCode
	}{
		{"nil错误", nil, CodeOK},
		{"Webhook错误", New(CodeIdentityMismatch, "", "ts", nil), CodeIdentityMismatch},
		{"包装后的Webhook错误", fmt.Errorf("handle load: %w", New(CodeRoomNotFound, "", "ts", nil)), CodeRoomNotFound},
		{"普通错误", errors.New("database gone"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCode(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	err := New(CodeInvalidOperation, "ActorNr != 1 and Type == Create", "ts", nil)

	assert.True(t, Is(err, CodeInvalidOperation))
	assert.False(t, Is(err, CodeMissingArgument))
	assert.False(t, Is(nil, CodeInvalidOperation))
	assert.False(t, Is(errors.New("plain"), CodeInternal))
}

func TestAs(t *testing.T) {
	inner := New(CodeInternal, "boom", "ts", nil)
	wrapped := fmt.Errorf("outer: %w", inner)

	whErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, inner, whErr)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
