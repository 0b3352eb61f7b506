package lark

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMessenger(chatID string, create createMessageFunc) *Messenger {
	return &Messenger{create: create, chatID: chatID, logger: zap.NewNop()}
}

func TestMessenger_SendText(t *testing.T) {
	var got *larkIm.CreateMessageReq
	messageID := "om_123"
	m := newTestMessenger("oc_ops", func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
		got = req
		return &larkIm.CreateMessageResp{
			Data: &larkIm.CreateMessageRespData{MessageId: &messageID},
		}, nil
	})

	content := "[CRITICAL] \"Entry\" e1\nmissing date"
	require.NoError(t, m.SendText(context.Background(), content))

	require.NotNil(t, got)
	require.NotNil(t, got.Body)
	assert.Equal(t, "oc_ops", *got.Body.ReceiveId)
	assert.Equal(t, msgTypeText, *got.Body.MsgType)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(*got.Body.Content), &body))
	assert.Equal(t, content, body["text"])
}

func TestMessenger_SendTextFailures(t *testing.T) {
	errNetwork := errors.New("connection reset")

	tests := []struct {
		name    string
		chatID  string
		content string
		resp    *larkIm.CreateMessageResp
		err     error
	}{
		{name: "no chat", chatID: "", content: "hi"},
		{name: "no content", chatID: "oc_ops", content: ""},
		{name: "transport error", chatID: "oc_ops", content: "hi", err: errNetwork},
		{
			name:    "api error",
			chatID:  "oc_ops",
			content: "hi",
			resp:    &larkIm.CreateMessageResp{CodeError: larkcore.CodeError{Code: 230002, Msg: "bot not in chat"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			m := newTestMessenger(tt.chatID, func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
				called = true
				return tt.resp, tt.err
			})

			err := m.SendText(context.Background(), tt.content)
			assert.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
			if tt.resp == nil && tt.err == nil {
				assert.False(t, called)
			}
		})
	}
}
