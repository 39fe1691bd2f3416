package models

import (
	"time"
)

// Message — неизменяемая запись о собранном сообщении.
// После вставки никогда не обновляется.
type Message struct {
	ID          int64
	ChannelID   int64
	TgMessageID int64
	SenderID    string
	Text        string
	Links       []string
	ViewsCount  int64
	PostedAt    time.Time
	IngestedAt  time.Time
}

type Channel struct {
	ID              int64
	TgChannelID     int64
	Username        string
	Title           string
	IsActive        bool
	LastCollectedAt *time.Time
	LastMessageID   int64
	CreatedAt       time.Time
}
