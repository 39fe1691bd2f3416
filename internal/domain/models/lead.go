package models

import (
	"time"
)

type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusInProgress LeadStatus = "in_progress"
	LeadStatusProcessed  LeadStatus = "processed"
	LeadStatusArchived   LeadStatus = "archived"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusInProgress, LeadStatusProcessed, LeadStatusArchived:
		return true
	}

	return false
}

// Lead — материализованное совпадение. Инвариант: не более одного
// актуального лида на пару (MessageID, RuleID); вытесненные при
// переобработке лиды помечаются SupersededByGeneration.
type Lead struct {
	ID                      int64
	TenantID                int64
	MessageID               int64
	RuleID                  int64
	Score                   float64
	Reasoning               string
	Entities                *ExtractedEntities
	Status                  LeadStatus
	AssigneeID              *int64
	Generation              int64
	SupersededByGeneration  *int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// LeadFilter — параметры выборки списка лидов и CSV-экспорта.
type LeadFilter struct {
	TenantID   int64
	Status     *LeadStatus
	RuleID     *int64
	ChannelID  *int64
	AssigneeID *int64
	MinScore   *float64
	DateFrom   *time.Time
	DateTo     *time.Time
	Skip       int
	Limit      int
}

// LeadDetail — лид с контекстом для карточки: сообщение, канал, правило.
type LeadDetail struct {
	Lead
	Message             *Message
	Channel             *Channel
	RuleName            string
	AssigneeName        string
	TelegramMessageLink string
}

type LeadStats struct {
	Total       int64
	ByStatus    map[LeadStatus]int64
	ByRule      map[string]int64
	ByChannel   map[string]int64
	AvgScore    float64
	RecentCount int64
}
