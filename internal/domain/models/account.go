package models

import (
	"time"
)

type TelegramAccountStatus string

const (
	AccountPending TelegramAccountStatus = "pending"
	AccountActive  TelegramAccountStatus = "active"
	AccountError   TelegramAccountStatus = "error"
)

// TelegramAccount — подключённый аккаунт-источник. Сессия хранится на
// стороне шлюза, здесь только ссылка на неё.
type TelegramAccount struct {
	ID         int64
	TenantID   int64
	Phone      string
	SessionRef string
	Status     TelegramAccountStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Dialog — канал или группа, доступная аккаунту-источнику.
type Dialog struct {
	TgChannelID  int64  `json:"tg_channel_id"`
	Username     string `json:"username"`
	Title        string `json:"title"`
	MembersCount int64  `json:"members_count"`
	IsChannel    bool   `json:"is_channel"`
}
