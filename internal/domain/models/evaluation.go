package models

import (
	"time"
)

// EvaluationTask — эфемерная единица работы для оценщика.
// Ключ идемпотентности — пара (MessageID, RuleID); Generation берётся
// из правила в момент постановки и разрешает гонки при переобработке.
type EvaluationTask struct {
	MessageID  int64
	RuleID     int64
	ChannelID  int64
	Generation int64
}

type ExtractedEntities struct {
	Contacts []string `json:"contacts"`
	Keywords []string `json:"keywords"`
	Budget   *string  `json:"budget"`
	Deadline *string  `json:"deadline"`
	Summary  string   `json:"summary"`
}

// EvaluationResult — разобранный вердикт модели по одной паре
// (сообщение, правило). Confidence всегда в [0, 1].
type EvaluationResult struct {
	IsMatch    bool
	Confidence float64
	Reasoning  string
	Entities   *ExtractedEntities
}

// EvaluationFailure — запись об эскалированной ошибке оценки:
// ответ модели не удалось разобрать даже после строгого повтора.
type EvaluationFailure struct {
	ID          int64
	MessageID   int64
	RuleID      int64
	Reason      string
	RawResponse string
	CreatedAt   time.Time
}
