package models

import (
	"time"
)

type AnalyticsSummary struct {
	PeriodDays     int
	TotalLeads     int64
	TotalMessages  int64
	TotalChannels  int64
	TotalRules     int64
	AvgScore       float64
	ConversionRate float64
	TopChannel     string
	TopRule        string
}

type TimeSeriesPoint struct {
	Bucket time.Time
	Count  int64
}

// FunnelStage — ступень воронки статусов. Percentage считается от числа
// лидов первой ступени; ConversionRate — от предыдущей ступени,
// у первой ступени отсутствует.
type FunnelStage struct {
	Stage          string
	Count          int64
	Percentage     float64
	ConversionRate *float64
}

type ChannelPerformance struct {
	ChannelID      int64
	Title          string
	TotalMessages  int64
	TotalLeads     int64
	AvgScore       float64
	ConversionRate float64
	LastLeadAt     *time.Time
}

type RulePerformance struct {
	RuleID     int64
	Name       string
	IsActive   bool
	TotalLeads int64
	AvgScore   float64
	Leads7d    int64
	Leads30d   int64
	LastLeadAt *time.Time
}

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

type Trend struct {
	Current   float64
	Previous  float64
	ChangePct float64
	Direction TrendDirection
}

// ActivityTrends — сравнение последних семи дней с предыдущими семью.
type ActivityTrends struct {
	Leads      Trend
	Messages   Trend
	Conversion Trend
}
