package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
)

func TestParseVerdict_ValidResponse(t *testing.T) {
	raw := `{"is_match": true, "confidence": 0.85, "reasoning": "ищет подрядчика на разработку"}`

	result, err := parseVerdict(raw)
	require.NoError(t, err)

	assert.True(t, result.IsMatch)
	assert.InDelta(t, 0.85, result.Confidence, 0.0001)
	assert.Equal(t, "ищет подрядчика на разработку", result.Reasoning)
}

func TestParseVerdict_CodeFence(t *testing.T) {
	raw := "```json\n{\"is_match\": false, \"confidence\": 0.1, \"reasoning\": \"не по теме\"}\n```"

	result, err := parseVerdict(raw)
	require.NoError(t, err)

	assert.False(t, result.IsMatch)
	assert.InDelta(t, 0.1, result.Confidence, 0.0001)
}

func TestParseVerdict_MissingKeys(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "нет is_match", raw: `{"confidence": 0.5, "reasoning": "x"}`},
		{name: "нет confidence", raw: `{"is_match": true, "reasoning": "x"}`},
		{name: "нет reasoning", raw: `{"is_match": true, "confidence": 0.5}`},
		{name: "не JSON", raw: `скорее всего да`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseVerdict(tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestParseVerdict_ClampsConfidence(t *testing.T) {
	result, err := parseVerdict(`{"is_match": true, "confidence": 1.7, "reasoning": "x"}`)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, result.Confidence, 0.0001)

	result, err = parseVerdict(`{"is_match": false, "confidence": -0.3, "reasoning": "x"}`)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Confidence, 0.0001)
}

func TestParseEntities_DefaultsEmptySlices(t *testing.T) {
	entities, err := parseEntities(`{"contacts": null, "keywords": null, "budget": null, "deadline": null, "summary": "s"}`)
	require.NoError(t, err)

	assert.NotNil(t, entities.Contacts)
	assert.Empty(t, entities.Contacts)
	assert.NotNil(t, entities.Keywords)
	assert.Empty(t, entities.Keywords)
	assert.Nil(t, entities.Budget)
	assert.Equal(t, "s", entities.Summary)
}

func TestFallbackEntities_TruncatesSummary(t *testing.T) {
	long := make([]rune, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'ж')
	}

	entities := fallbackEntities(string(long))

	assert.Len(t, []rune(entities.Summary), summaryFallbackRunes)
	assert.Empty(t, entities.Contacts)
	assert.Empty(t, entities.Keywords)
}

func TestEvaluationCacheKey_Deterministic(t *testing.T) {
	first := EvaluationCacheKey("промпт", "текст")
	second := EvaluationCacheKey("промпт", "текст")
	other := EvaluationCacheKey("промпт2", "текст")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestOpenAIEvaluator_RequestParameters(t *testing.T) {
	var mu sync.Mutex

	requests := map[string]openai.ChatCompletionRequest{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		mu.Lock()
		requests[req.Messages[0].Content] = req
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"is_match\":false,\"confidence\":0.1,\"reasoning\":\"не по теме\",\"contacts\":[],\"keywords\":[],\"summary\":\"s\"}"}}]}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		LLMAPIURL:              server.URL,
		LLMAPIKey:              "test",
		LLMModel:               "gpt-4o-mini",
		LLMTimeout:             5 * time.Second,
		LLMRateLimitRPS:        100,
		ExternalRequestTimeout: 5 * time.Second,
		CBMinimumRequiredCalls: 100,
		CBFailureRateThreshold: 100,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluator := NewOpenAIEvaluator(cfg, nil, logger)

	_, err := evaluator.Evaluate(context.Background(), "ищут подрядчика", "текст сообщения")
	require.NoError(t, err)

	_, err = evaluator.ExtractEntities(context.Background(), "текст сообщения")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()

	evalReq, ok := requests[evaluationSystemPrompt]
	require.True(t, ok)
	assert.InDelta(t, evaluationTemperature, evalReq.Temperature, 0.0001)
	assert.Equal(t, evaluationMaxTokens, evalReq.MaxTokens)

	extractReq, ok := requests[extractionSystemPrompt]
	require.True(t, ok)
	assert.InDelta(t, extractionTemperature, extractReq.Temperature, 0.0001)
	assert.Equal(t, extractionMaxTokens, extractReq.MaxTokens)
}

func TestEvaluate_UnparseableAfterRetryCarriesRawResponse(t *testing.T) {
	raw := "скорее всего подходит, процентов на 80"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		payload, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": raw}},
			},
		})
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	cfg := &config.Config{
		LLMAPIURL:              server.URL,
		LLMAPIKey:              "test",
		LLMModel:               "gpt-4o-mini",
		LLMTimeout:             5 * time.Second,
		LLMRateLimitRPS:        100,
		ExternalRequestTimeout: 5 * time.Second,
		CBMinimumRequiredCalls: 100,
		CBFailureRateThreshold: 100,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	evaluator := NewOpenAIEvaluator(cfg, nil, logger)

	_, err := evaluator.Evaluate(context.Background(), "ищут подрядчика", "текст")
	require.Error(t, err)

	var failure *errors.ErrEvaluationFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, raw, failure.RawResponse)
}
