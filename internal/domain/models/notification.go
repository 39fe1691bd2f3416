package models

import (
	"time"
)

type NotificationType string

const (
	NotificationLeadCreated       NotificationType = "lead_created"
	NotificationLeadStatusChanged NotificationType = "lead_status_changed"
	NotificationLeadAssigned      NotificationType = "lead_assigned"
	NotificationRuleTriggered     NotificationType = "rule_triggered"
	NotificationSystem            NotificationType = "system"
)

type Notification struct {
	ID        int64
	TenantID  int64
	Type      NotificationType
	Title     string
	Message   string
	Payload   map[string]any
	IsRead    bool
	CreatedAt time.Time
}

type NotificationStats struct {
	Total  int64
	Unread int64
	ByType map[NotificationType]int64
}

// LeadEvent — доменное событие конвейера, передаётся диспетчеру
// уведомлений через Kafka (или HTTP при недоступности брокера).
type LeadEvent struct {
	Kind      NotificationType `json:"kind"`
	TenantID  int64            `json:"tenant_id"`
	LeadID    int64            `json:"lead_id"`
	RuleID    int64            `json:"rule_id"`
	RuleName  string           `json:"rule_name"`
	ChannelID int64            `json:"channel_id"`
	Channel   string           `json:"channel"`
	Score     float64          `json:"score"`
	OldStatus string           `json:"old_status,omitempty"`
	NewStatus string           `json:"new_status,omitempty"`
	Assignee  string           `json:"assignee,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
