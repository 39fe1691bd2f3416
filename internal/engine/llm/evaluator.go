package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/leadstream-dev/go-leadstream/internal/common/httputil"
	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

const (
	summaryFallbackRunes  = 200
	rawResponseLimitRunes = 4000

	evaluationTemperature = 0.2
	extractionTemperature = 0.1
	evaluationMaxTokens   = 300
	extractionMaxTokens   = 500
)

// EvaluationCacheKey детерминированно хэширует промпт и текст сообщения.
func EvaluationCacheKey(prompt, text string) string {
	h := sha256.New()
	h.Write([]byte(prompt))
	h.Write([]byte{0})
	h.Write([]byte(text))

	return "llm:eval:" + hex.EncodeToString(h.Sum(nil))
}

const evaluationSystemPrompt = `Ты — классификатор сообщений для поиска потенциальных клиентов.
Оцени, соответствует ли сообщение критерию, и ответь строго одним JSON-объектом
с тремя полями: is_match (bool), confidence (число от 0 до 1), reasoning (строка).
Никакого текста вне JSON.`

const evaluationStrictSystemPrompt = `Ты — классификатор сообщений для поиска потенциальных клиентов.
ВАЖНО: предыдущий ответ не удалось разобрать. Ответь РОВНО одним JSON-объектом
вида {"is_match": bool, "confidence": number, "reasoning": string} без markdown,
без пояснений и без текста вне JSON. Все три поля обязательны.`

const extractionSystemPrompt = `Извлеки из сообщения сведения о потенциальном клиенте и ответь строго
одним JSON-объектом с полями: contacts (массив строк), keywords (массив строк),
budget (строка или null), deadline (строка или null), summary (строка).
Никакого текста вне JSON.`

// Evaluator оценивает сообщения по промптам правил через LLM.
type Evaluator interface {
	Evaluate(ctx context.Context, rulePrompt, messageText string) (*models.EvaluationResult, error)
	ExtractEntities(ctx context.Context, messageText string) (*models.ExtractedEntities, error)
}

// EvaluationCache хранит разобранные вердикты по хэшу (промпт, текст).
type EvaluationCache interface {
	GetEvaluation(ctx context.Context, key string) (*models.EvaluationResult, error)
	SetEvaluation(ctx context.Context, key string, result *models.EvaluationResult) error
}

type OpenAIEvaluator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	cache   EvaluationCache
	logger  *slog.Logger
}

func NewOpenAIEvaluator(cfg *config.Config, cache EvaluationCache, logger *slog.Logger) *OpenAIEvaluator {
	clientConfig := openai.DefaultConfig(cfg.LLMAPIKey)
	clientConfig.BaseURL = cfg.LLMAPIURL
	clientConfig.HTTPClient = httputil.CreateResilientLLMClient(cfg, logger, "llm")

	burst := int(cfg.LLMRateLimitRPS)
	if burst < 1 {
		burst = 1
	}

	return &OpenAIEvaluator{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.LLMModel,
		timeout: cfg.LLMTimeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.LLMRateLimitRPS), burst),
		cache:   cache,
		logger:  logger,
	}
}

type verdictPayload struct {
	IsMatch    *bool    `json:"is_match"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

func (e *OpenAIEvaluator) Evaluate(ctx context.Context, rulePrompt, messageText string) (*models.EvaluationResult, error) {
	cacheKey := EvaluationCacheKey(rulePrompt, messageText)

	if e.cache != nil {
		cached, err := e.cache.GetEvaluation(ctx, cacheKey)
		if err != nil {
			e.logger.Warn("Ошибка чтения кэша оценок, продолжаем без кэша", "error", err)
		} else if cached != nil {
			metrics.RecordLLMCacheLookup(true)
			return cached, nil
		}

		metrics.RecordLLMCacheLookup(false)
	}

	userPrompt := fmt.Sprintf("Критерий: %s\n\nСообщение:\n%s", rulePrompt, messageText)

	raw, err := e.complete(ctx, "evaluate", evaluationSystemPrompt, userPrompt, evaluationTemperature, evaluationMaxTokens)
	if err != nil {
		return nil, err
	}

	result, parseErr := parseVerdict(raw)
	if parseErr != nil {
		e.logger.Warn("Ответ модели не удалось разобрать, повтор со строгим промптом",
			"error", parseErr,
		)

		raw, err = e.complete(ctx, "evaluate_retry", evaluationStrictSystemPrompt, userPrompt, evaluationTemperature, evaluationMaxTokens)
		if err != nil {
			return nil, err
		}

		result, parseErr = parseVerdict(raw)
		if parseErr != nil {
			return nil, &errors.ErrEvaluationFailure{
				Reason:      fmt.Sprintf("ответ модели не разобран после повтора: %v", parseErr),
				RawResponse: truncate(raw, rawResponseLimitRunes),
			}
		}
	}

	if e.cache != nil {
		if err := e.cache.SetEvaluation(ctx, cacheKey, result); err != nil {
			e.logger.Warn("Ошибка записи в кэш оценок", "error", err)
		}
	}

	return result, nil
}

func (e *OpenAIEvaluator) ExtractEntities(ctx context.Context, messageText string) (*models.ExtractedEntities, error) {
	raw, err := e.complete(ctx, "extract", extractionSystemPrompt, messageText, extractionTemperature, extractionMaxTokens)
	if err != nil {
		return fallbackEntities(messageText), nil
	}

	entities, parseErr := parseEntities(raw)
	if parseErr != nil {
		e.logger.Warn("Извлечение сущностей не разобрано, используем заглушку",
			"error", parseErr,
		)

		return fallbackEntities(messageText), nil
	}

	return entities, nil
}

func (e *OpenAIEvaluator) complete(ctx context.Context, operation, systemPrompt, userPrompt string, temperature float32, maxTokens int) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("ожидание лимитера запросов к LLM прервано: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})

	if err != nil {
		metrics.RecordLLMRequest(operation, "error", time.Since(start))

		if ctx.Err() != nil {
			return "", &errors.ErrLLMTimeout{Cause: err}
		}

		return "", fmt.Errorf("ошибка запроса к LLM: %w", err)
	}

	metrics.RecordLLMRequest(operation, "success", time.Since(start))

	if len(resp.Choices) == 0 {
		return "", &errors.ErrEvaluationFailure{Reason: "модель вернула пустой ответ"}
	}

	return resp.Choices[0].Message.Content, nil
}

// parseVerdict требует все три ключа и зажимает confidence в [0, 1].
func parseVerdict(raw string) (*models.EvaluationResult, error) {
	cleaned := stripCodeFence(raw)

	var payload verdictPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("невалидный JSON: %w", err)
	}

	if payload.IsMatch == nil {
		return nil, fmt.Errorf("отсутствует поле is_match")
	}

	if payload.Confidence == nil {
		return nil, fmt.Errorf("отсутствует поле confidence")
	}

	if payload.Reasoning == nil {
		return nil, fmt.Errorf("отсутствует поле reasoning")
	}

	confidence := *payload.Confidence
	if confidence < 0 {
		confidence = 0
	}

	if confidence > 1 {
		confidence = 1
	}

	return &models.EvaluationResult{
		IsMatch:    *payload.IsMatch,
		Confidence: confidence,
		Reasoning:  *payload.Reasoning,
	}, nil
}

func parseEntities(raw string) (*models.ExtractedEntities, error) {
	cleaned := stripCodeFence(raw)

	var entities models.ExtractedEntities
	if err := json.Unmarshal([]byte(cleaned), &entities); err != nil {
		return nil, fmt.Errorf("невалидный JSON: %w", err)
	}

	if entities.Contacts == nil {
		entities.Contacts = []string{}
	}

	if entities.Keywords == nil {
		entities.Keywords = []string{}
	}

	return &entities, nil
}

func fallbackEntities(messageText string) *models.ExtractedEntities {
	runes := []rune(messageText)
	if len(runes) > summaryFallbackRunes {
		runes = runes[:summaryFallbackRunes]
	}

	return &models.ExtractedEntities{
		Contacts: []string{},
		Keywords: []string{},
		Summary:  string(runes),
	}
}

// stripCodeFence убирает markdown-обёртку, которую модели иногда
// добавляют вокруг JSON.
func stripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
