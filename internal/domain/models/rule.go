package models

import (
	"time"
)

// Rule — правило мониторинга: промпт для LLM, порог уверенности
// и область каналов. ChannelIDs == nil означает все каналы арендатора.
type Rule struct {
	ID          int64
	TenantID    int64
	Name        string
	Description string
	Prompt      string
	Threshold   float64
	ChannelIDs  []int64
	IsActive    bool
	Schedule    string
	Generation  int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RuleChangeKind string

const (
	RulePromptChanged     RuleChangeKind = "prompt_changed"
	RuleThresholdChanged  RuleChangeKind = "threshold_changed"
	RuleChannelIDsChanged RuleChangeKind = "channel_ids_changed"
)

// RuleProgress — позиция анализа пары (правило, канал).
// Удаляется при смене промпта или порога: анализ начинается заново.
type RuleProgress struct {
	RuleID            int64
	ChannelID         int64
	LastMessageID     int64
	LastPostedAt      *time.Time
	MessagesEvaluated int64
	LeadsCreated      int64
	UpdatedAt         time.Time
}
