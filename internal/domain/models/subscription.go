package models

import (
	"time"
)

// Subscription — подписка арендатора на канал через подключённый
// Telegram-аккаунт. Определяет область сбора сообщений.
type Subscription struct {
	ID                int64
	TenantID          int64
	ChannelID         int64
	TelegramAccountID int64
	IsActive          bool
	Tags              []string
	CreatedAt         time.Time
}
