package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leadstream-dev/go-leadstream/internal/common/httputil"
	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

// GatewayMessage — сообщение в том виде, как его отдаёт telegram-шлюз.
type GatewayMessage struct {
	ID             int64     `json:"id"`
	Text           string    `json:"text"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Links          []string  `json:"links"`
	ViewsCount     int64     `json:"views_count"`
	PostedAt       time.Time `json:"posted_at"`
}

type ChannelInfo struct {
	TgChannelID  int64  `json:"tg_channel_id"`
	Username     string `json:"username"`
	Title        string `json:"title"`
	MembersCount int64  `json:"members_count"`
}

type AuthSession struct {
	SessionRef string `json:"session_ref"`
	Status     string `json:"status"`
}

type TelegramGateway interface {
	GetChannelMessages(ctx context.Context, tgChannelID, afterMessageID int64, limit int) ([]GatewayMessage, error)
	ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error)
	GetDialogs(ctx context.Context, sessionRef string) ([]models.Dialog, error)
	StartAuth(ctx context.Context, phone string) (*AuthSession, error)
	VerifyAuth(ctx context.Context, sessionRef, code string) (*AuthSession, error)
}

type TelegramGatewayClient struct {
	client  *resty.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

func NewTelegramGatewayClient(baseURL, token string, cfg *config.Config, logger *slog.Logger) TelegramGateway {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "telegram_gateway")

	return &TelegramGatewayClient{
		client:  client,
		baseURL: baseURL,
		token:   token,
		logger:  logger,
	}
}

func (c *TelegramGatewayClient) request(ctx context.Context) *resty.Request {
	request := c.client.R().SetContext(ctx)

	if c.token != "" {
		request.SetHeader("Authorization", "Bearer "+c.token)
	}

	return request
}

func (c *TelegramGatewayClient) GetChannelMessages(
	ctx context.Context,
	tgChannelID, afterMessageID int64,
	limit int,
) ([]GatewayMessage, error) {
	url := fmt.Sprintf("%s/channels/%d/messages", c.baseURL, tgChannelID)

	var messages []GatewayMessage

	resp, err := c.request(ctx).
		SetQueryParam("after_id", fmt.Sprintf("%d", afterMessageID)).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&messages).
		Get(url)

	if err != nil {
		return nil, &errors.ErrGatewayUnavailable{Cause: err}
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("telegram-шлюз вернул статус: %d", resp.StatusCode())
	}

	return messages, nil
}

func (c *TelegramGatewayClient) ResolveChannel(ctx context.Context, username string) (*ChannelInfo, error) {
	url := c.baseURL + "/channels/resolve"

	var info ChannelInfo

	resp, err := c.request(ctx).
		SetQueryParam("username", username).
		SetResult(&info).
		Get(url)

	if err != nil {
		return nil, &errors.ErrGatewayUnavailable{Cause: err}
	}

	if resp.StatusCode() == 404 {
		return nil, &errors.ErrChannelNotFound{}
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("telegram-шлюз вернул статус: %d", resp.StatusCode())
	}

	return &info, nil
}

func (c *TelegramGatewayClient) GetDialogs(ctx context.Context, sessionRef string) ([]models.Dialog, error) {
	url := fmt.Sprintf("%s/accounts/%s/dialogs", c.baseURL, sessionRef)

	var dialogs []models.Dialog

	resp, err := c.request(ctx).
		SetResult(&dialogs).
		Get(url)

	if err != nil {
		return nil, &errors.ErrGatewayUnavailable{Cause: err}
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("telegram-шлюз вернул статус: %d", resp.StatusCode())
	}

	return dialogs, nil
}

func (c *TelegramGatewayClient) StartAuth(ctx context.Context, phone string) (*AuthSession, error) {
	url := c.baseURL + "/accounts/auth/start"

	var session AuthSession

	resp, err := c.request(ctx).
		SetBody(map[string]string{"phone": phone}).
		SetResult(&session).
		Post(url)

	if err != nil {
		return nil, &errors.ErrGatewayUnavailable{Cause: err}
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("telegram-шлюз вернул статус: %d", resp.StatusCode())
	}

	return &session, nil
}

func (c *TelegramGatewayClient) VerifyAuth(ctx context.Context, sessionRef, code string) (*AuthSession, error) {
	url := c.baseURL + "/accounts/auth/verify"

	var session AuthSession

	resp, err := c.request(ctx).
		SetBody(map[string]string{"session_ref": sessionRef, "code": code}).
		SetResult(&session).
		Post(url)

	if err != nil {
		return nil, &errors.ErrGatewayUnavailable{Cause: err}
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("telegram-шлюз вернул статус: %d", resp.StatusCode())
	}

	return &session, nil
}
