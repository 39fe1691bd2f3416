package errors

import (
	"fmt"
)

type ErrRuleNotFound struct {
	RuleID int64
}

func (e *ErrRuleNotFound) Error() string {
	return fmt.Sprintf("правило не найдено: %d", e.RuleID)
}

func (e *ErrRuleNotFound) Is(target error) bool {
	_, ok := target.(*ErrRuleNotFound)
	return ok
}

type ErrLeadNotFound struct {
	LeadID int64
}

func (e *ErrLeadNotFound) Error() string {
	return fmt.Sprintf("лид не найден: %d", e.LeadID)
}

func (e *ErrLeadNotFound) Is(target error) bool {
	_, ok := target.(*ErrLeadNotFound)
	return ok
}

type ErrMessageNotFound struct {
	MessageID int64
}

func (e *ErrMessageNotFound) Error() string {
	return fmt.Sprintf("сообщение не найдено: %d", e.MessageID)
}

func (e *ErrMessageNotFound) Is(target error) bool {
	_, ok := target.(*ErrMessageNotFound)
	return ok
}

type ErrChannelNotFound struct {
	ChannelID int64
}

func (e *ErrChannelNotFound) Error() string {
	return fmt.Sprintf("канал не найден: %d", e.ChannelID)
}

func (e *ErrChannelNotFound) Is(target error) bool {
	_, ok := target.(*ErrChannelNotFound)
	return ok
}

type ErrSubscriptionNotFound struct {
	SubscriptionID int64
}

func (e *ErrSubscriptionNotFound) Error() string {
	return fmt.Sprintf("подписка не найдена: %d", e.SubscriptionID)
}

func (e *ErrSubscriptionNotFound) Is(target error) bool {
	_, ok := target.(*ErrSubscriptionNotFound)
	return ok
}

type ErrSubscriptionAlreadyExists struct {
	ChannelID int64
}

func (e *ErrSubscriptionAlreadyExists) Error() string {
	return fmt.Sprintf("подписка на канал %d уже существует", e.ChannelID)
}

func (e *ErrSubscriptionAlreadyExists) Is(target error) bool {
	_, ok := target.(*ErrSubscriptionAlreadyExists)
	return ok
}

type ErrAccountNotFound struct {
	AccountID int64
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("telegram-аккаунт не найден: %d", e.AccountID)
}

func (e *ErrAccountNotFound) Is(target error) bool {
	_, ok := target.(*ErrAccountNotFound)
	return ok
}

type ErrNotificationNotFound struct {
	NotificationID int64
}

func (e *ErrNotificationNotFound) Error() string {
	return fmt.Sprintf("уведомление не найдено: %d", e.NotificationID)
}

func (e *ErrNotificationNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotificationNotFound)
	return ok
}

type ErrUserNotFound struct {
	UserID int64
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("пользователь не найден: %d", e.UserID)
}

func (e *ErrUserNotFound) Is(target error) bool {
	_, ok := target.(*ErrUserNotFound)
	return ok
}

type ErrPromptTooShort struct {
	Length int
}

func (e *ErrPromptTooShort) Error() string {
	return fmt.Sprintf("промпт правила слишком короткий: %d символов, минимум 10", e.Length)
}

func (e *ErrPromptTooShort) Is(target error) bool {
	_, ok := target.(*ErrPromptTooShort)
	return ok
}

type ErrThresholdOutOfRange struct {
	Threshold float64
}

func (e *ErrThresholdOutOfRange) Error() string {
	return fmt.Sprintf("порог уверенности %v вне диапазона [0, 1]", e.Threshold)
}

func (e *ErrThresholdOutOfRange) Is(target error) bool {
	_, ok := target.(*ErrThresholdOutOfRange)
	return ok
}

type ErrChannelNotSubscribed struct {
	ChannelID int64
}

func (e *ErrChannelNotSubscribed) Error() string {
	return fmt.Sprintf("канал %d не входит в подписки арендатора", e.ChannelID)
}

func (e *ErrChannelNotSubscribed) Is(target error) bool {
	_, ok := target.(*ErrChannelNotSubscribed)
	return ok
}

type ErrInvalidLeadStatus struct {
	Status string
}

func (e *ErrInvalidLeadStatus) Error() string {
	return fmt.Sprintf("некорректный статус лида: %s", e.Status)
}

func (e *ErrInvalidLeadStatus) Is(target error) bool {
	_, ok := target.(*ErrInvalidLeadStatus)
	return ok
}

// ErrDuplicateLead — нарушение уникальности (message_id, rule_id).
// Для конвейера это не ошибка, а сигнал о повторной доставке задачи.
type ErrDuplicateLead struct {
	MessageID int64
	RuleID    int64
}

func (e *ErrDuplicateLead) Error() string {
	return fmt.Sprintf("лид для пары (сообщение %d, правило %d) уже существует", e.MessageID, e.RuleID)
}

func (e *ErrDuplicateLead) Is(target error) bool {
	_, ok := target.(*ErrDuplicateLead)
	return ok
}

// ErrEvaluationFailure — ответ модели не удалось разобрать даже после
// строгого повторного запроса. Никогда не интерпретируется как отсутствие
// совпадения.
type ErrEvaluationFailure struct {
	MessageID   int64
	RuleID      int64
	Reason      string
	RawResponse string
}

func (e *ErrEvaluationFailure) Error() string {
	return fmt.Sprintf("ошибка оценки пары (сообщение %d, правило %d): %s", e.MessageID, e.RuleID, e.Reason)
}

func (e *ErrEvaluationFailure) Is(target error) bool {
	_, ok := target.(*ErrEvaluationFailure)
	return ok
}

type ErrLLMTimeout struct {
	Cause error
}

func (e *ErrLLMTimeout) Error() string {
	return fmt.Sprintf("превышено время ожидания ответа LLM: %v", e.Cause)
}

func (e *ErrLLMTimeout) Unwrap() error {
	return e.Cause
}

func (e *ErrLLMTimeout) Is(target error) bool {
	_, ok := target.(*ErrLLMTimeout)
	return ok
}

type ErrVerificationCodeInvalid struct{}

func (e *ErrVerificationCodeInvalid) Error() string {
	return "код верификации не найден или истёк"
}

func (e *ErrVerificationCodeInvalid) Is(target error) bool {
	_, ok := target.(*ErrVerificationCodeInvalid)
	return ok
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrUnknownTransport struct {
	Transport string
}

func (e *ErrUnknownTransport) Error() string {
	return fmt.Sprintf("неизвестный транспорт событий: %s", e.Transport)
}

func (e *ErrUnknownTransport) Is(target error) bool {
	_, ok := target.(*ErrUnknownTransport)
	return ok
}

type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

func (e *ErrBadRequest) Is(target error) bool {
	_, ok := target.(*ErrBadRequest)
	return ok
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

type ErrBeginTransaction struct {
	Cause error
}

func (e *ErrBeginTransaction) Error() string {
	return fmt.Sprintf("ошибка при начале транзакции: %v", e.Cause)
}

func (e *ErrBeginTransaction) Unwrap() error {
	return e.Cause
}

type ErrCommitTransaction struct {
	Cause error
}

func (e *ErrCommitTransaction) Error() string {
	return fmt.Sprintf("ошибка при фиксации транзакции: %v", e.Cause)
}

func (e *ErrCommitTransaction) Unwrap() error {
	return e.Cause
}

type ErrGatewayUnavailable struct {
	Cause error
}

func (e *ErrGatewayUnavailable) Error() string {
	return fmt.Sprintf("telegram-шлюз недоступен: %v", e.Cause)
}

func (e *ErrGatewayUnavailable) Unwrap() error {
	return e.Cause
}

func (e *ErrGatewayUnavailable) Is(target error) bool {
	_, ok := target.(*ErrGatewayUnavailable)
	return ok
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
