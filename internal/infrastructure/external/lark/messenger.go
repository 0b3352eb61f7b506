package lark

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/garyjia/ledger-auditor/internal/application/port"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

const (
	receiveIDTypeChat = "chat_id"
	msgTypeText       = "text"
)

// createMessageFunc matches the SDK Im.Message.Create call
type createMessageFunc func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error)

// Messenger implements port.MessageSender by posting to a Lark group chat
type Messenger struct {
	create createMessageFunc
	chatID string
	logger *zap.Logger
}

// NewMessenger creates a new Lark message sender adapter
func NewMessenger(sdkClient *SDKClient, logger *zap.Logger) *Messenger {
	im := sdkClient.GetClient().Im.Message
	return &Messenger{
		create: func(ctx context.Context, req *larkIm.CreateMessageReq) (*larkIm.CreateMessageResp, error) {
			return im.Create(ctx, req)
		},
		chatID: sdkClient.GetChatID(),
		logger: logger,
	}
}

// SendText sends a text message to the configured chat
func (m *Messenger) SendText(ctx context.Context, content string) error {
	if m.chatID == "" {
		return fmt.Errorf("chatID cannot be empty")
	}

	if content == "" {
		return fmt.Errorf("content cannot be empty")
	}

	textContent, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return fmt.Errorf("failed to marshal text content: %w", err)
	}

	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDTypeChat).
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(m.chatID).
			MsgType(msgTypeText).
			Content(string(textContent)).
			Build()).
		Build()

	resp, err := m.create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("chat_id", m.chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("chat_id", m.chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}

	m.logger.Info("Message sent successfully",
		zap.String("message_id", messageID),
		zap.String("chat_id", m.chatID))

	return nil
}

// Verify interface compliance
var _ port.MessageSender = (*Messenger)(nil)
