package models

import (
	"time"
)

// User — пользователь-арендатор. Настройки уведомлений лежат прямо на
// пользователе: флаги каналов доставки и флаги типов событий.
type User struct {
	ID        int64
	Email     string
	FullName  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	Preferences NotificationPreferences
	TelegramBot TelegramBotBinding
}

type NotificationPreferences struct {
	EmailEnabled             bool
	InAppEnabled             bool
	NotifyOnNewLead          bool
	NotifyOnLeadStatusChange bool
	NotifyOnLeadAssignment   bool
}

// TelegramBotBinding — состояние привязки бота: доставка в Telegram
// возможна только после верификации кода и сохранения ChatID.
type TelegramBotBinding struct {
	Enabled             bool
	ChatID              *int64
	VerificationCode    *string
	VerificationExpires *time.Time
}

func (b TelegramBotBinding) Bound() bool {
	return b.ChatID != nil
}
