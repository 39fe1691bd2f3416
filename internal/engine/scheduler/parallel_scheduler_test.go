package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/scheduler"
	schedulermocks "github.com/leadstream-dev/go-leadstream/internal/engine/scheduler/mocks"
	"github.com/leadstream-dev/go-leadstream/internal/engine/service"
	repomocks "github.com/leadstream-dev/go-leadstream/internal/repository/mocks"
)

type schedulerFixture struct {
	collector    *schedulermocks.Collector
	processor    *schedulermocks.TaskProcessor
	claimer      *schedulermocks.TaskClaimer
	ruleRepo     *repomocks.RuleRepository
	progressRepo *repomocks.ProgressRepository
	messageRepo  *repomocks.MessageRepository
	subsRepo     *repomocks.SubscriptionRepository
	scheduler    *scheduler.ParallelScheduler
}

func newSchedulerFixture(opts scheduler.Options) *schedulerFixture {
	f := &schedulerFixture{
		collector:    new(schedulermocks.Collector),
		processor:    new(schedulermocks.TaskProcessor),
		claimer:      new(schedulermocks.TaskClaimer),
		ruleRepo:     new(repomocks.RuleRepository),
		progressRepo: new(repomocks.ProgressRepository),
		messageRepo:  new(repomocks.MessageRepository),
		subsRepo:     new(repomocks.SubscriptionRepository),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.scheduler = scheduler.NewParallelScheduler(
		f.collector,
		f.processor,
		f.claimer,
		f.ruleRepo,
		f.progressRepo,
		f.messageRepo,
		f.subsRepo,
		opts,
		logger,
	)

	return f
}

func defaultOptions() scheduler.Options {
	return scheduler.Options{
		CollectInterval:  time.Minute,
		EvalInterval:     time.Minute,
		BatchSize:        50,
		Workers:          2,
		LookbackDays:     5,
		LookbackMessages: 100,
	}
}

func scopedRule(channelIDs []int64) *models.Rule {
	return &models.Rule{
		ID:         10,
		TenantID:   1,
		Prompt:     "ищут разработчиков",
		Threshold:  0.8,
		ChannelIDs: channelIDs,
		IsActive:   true,
		Generation: 1,
	}
}

func channelMessages(ids ...int64) []*models.Message {
	messages := make([]*models.Message, 0, len(ids))
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range ids {
		messages = append(messages, &models.Message{
			ID:        id,
			ChannelID: 5,
			Text:      "сообщение",
			PostedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	return messages
}

func TestRunEvaluationCycle_NewPairUsesLookback(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(defaultOptions())

	f.claimer.On("ScopeVersion", mock.Anything).Return(int64(0), nil)
	f.ruleRepo.On("FindDue", mock.Anything, 50, 0).Return([]*models.Rule{scopedRule([]int64{5})}, nil)
	f.progressRepo.On("Find", mock.Anything, int64(10), int64(5)).Return(nil, nil)

	// Новая пара: ограниченное окно ретроспективы, а не весь канал.
	f.messageRepo.On("FindForEvaluation", mock.Anything, int64(5), (*time.Time)(nil), int64(0),
		mock.MatchedBy(func(since time.Time) bool { return !since.IsZero() }), 100).
		Return(channelMessages(1, 2), nil)

	f.claimer.On("ClaimTask", mock.Anything, mock.Anything, int64(10)).Return(true, nil)
	f.claimer.On("ReleaseClaim", mock.Anything, mock.Anything, int64(10)).Return(nil)
	f.processor.On("ProcessTask", mock.Anything, mock.Anything).Return(service.OutcomeNoMatch, nil)

	f.progressRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(progress *models.RuleProgress) bool {
		return progress.RuleID == 10 && progress.ChannelID == 5 &&
			progress.LastMessageID == 2 && progress.MessagesEvaluated == 2 &&
			progress.LeadsCreated == 0
	})).Return(nil)

	err := f.scheduler.RunEvaluationCycle(context.Background())

	require.NoError(t, err)
	f.processor.AssertNumberOfCalls(t, "ProcessTask", 2)
	f.progressRepo.AssertExpectations(t)
}

func TestRunEvaluationCycle_IncrementalAfterProgress(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(defaultOptions())

	lastPostedAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	progress := &models.RuleProgress{
		RuleID:        10,
		ChannelID:     5,
		LastMessageID: 2,
		LastPostedAt:  &lastPostedAt,
	}

	f.claimer.On("ScopeVersion", mock.Anything).Return(int64(0), nil)
	f.ruleRepo.On("FindDue", mock.Anything, 50, 0).Return([]*models.Rule{scopedRule([]int64{5})}, nil)
	f.progressRepo.On("Find", mock.Anything, int64(10), int64(5)).Return(progress, nil)

	// Курсор составной: к отметке времени добавляется последний ID.
	f.messageRepo.On("FindForEvaluation", mock.Anything, int64(5), &lastPostedAt, int64(2), mock.Anything, 50).
		Return(channelMessages(3), nil)

	f.claimer.On("ClaimTask", mock.Anything, int64(3), int64(10)).Return(true, nil)
	f.claimer.On("ReleaseClaim", mock.Anything, int64(3), int64(10)).Return(nil)
	f.processor.On("ProcessTask", mock.Anything, mock.Anything).Return(service.OutcomeMatch, nil)

	f.progressRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(p *models.RuleProgress) bool {
		return p.LastMessageID == 3 && p.LeadsCreated == 1 && p.MessagesEvaluated == 1
	})).Return(nil)

	err := f.scheduler.RunEvaluationCycle(context.Background())

	require.NoError(t, err)
	f.progressRepo.AssertExpectations(t)
}

func TestRunEvaluationCycle_NilScopeFallsBackToSubscriptions(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(defaultOptions())

	f.claimer.On("ScopeVersion", mock.Anything).Return(int64(0), nil)
	f.ruleRepo.On("FindDue", mock.Anything, 50, 0).Return([]*models.Rule{scopedRule(nil)}, nil)

	// channel_ids не заданы: область — все подписанные каналы арендатора.
	f.subsRepo.On("SubscribedChannelIDs", mock.Anything, int64(1)).Return([]int64{5}, nil)

	f.progressRepo.On("Find", mock.Anything, int64(10), int64(5)).Return(nil, nil)
	f.messageRepo.On("FindForEvaluation", mock.Anything, int64(5), (*time.Time)(nil), int64(0), mock.Anything, 100).
		Return([]*models.Message{}, nil)

	err := f.scheduler.RunEvaluationCycle(context.Background())

	require.NoError(t, err)
	f.subsRepo.AssertExpectations(t)
}

func TestRunEvaluationCycle_TransientFailureKeepsPosition(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(defaultOptions())

	f.claimer.On("ScopeVersion", mock.Anything).Return(int64(0), nil)
	f.ruleRepo.On("FindDue", mock.Anything, 50, 0).Return([]*models.Rule{scopedRule([]int64{5})}, nil)
	f.progressRepo.On("Find", mock.Anything, int64(10), int64(5)).Return(nil, nil)
	f.messageRepo.On("FindForEvaluation", mock.Anything, int64(5), (*time.Time)(nil), int64(0), mock.Anything, 100).
		Return(channelMessages(1), nil)

	f.claimer.On("ClaimTask", mock.Anything, int64(1), int64(10)).Return(true, nil)
	f.claimer.On("ReleaseClaim", mock.Anything, int64(1), int64(10)).Return(nil)
	f.processor.On("ProcessTask", mock.Anything, mock.Anything).
		Return(service.OutcomeFailed, assert.AnError)

	err := f.scheduler.RunEvaluationCycle(context.Background())

	require.NoError(t, err)
	f.progressRepo.AssertNotCalled(t, "Upsert")
}

func TestRunEvaluationCycle_ClaimedPairSkipped(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(defaultOptions())

	f.claimer.On("ScopeVersion", mock.Anything).Return(int64(0), nil)
	f.ruleRepo.On("FindDue", mock.Anything, 50, 0).Return([]*models.Rule{scopedRule([]int64{5})}, nil)
	f.progressRepo.On("Find", mock.Anything, int64(10), int64(5)).Return(nil, nil)
	f.messageRepo.On("FindForEvaluation", mock.Anything, int64(5), (*time.Time)(nil), int64(0), mock.Anything, 100).
		Return(channelMessages(1), nil)

	// Пара захвачена другим экземпляром движка: сообщение не оценено,
	// позиция этой порции не сдвигается.
	f.claimer.On("ClaimTask", mock.Anything, int64(1), int64(10)).Return(false, nil)

	err := f.scheduler.RunEvaluationCycle(context.Background())

	require.NoError(t, err)
	f.processor.AssertNotCalled(t, "ProcessTask")
	f.progressRepo.AssertNotCalled(t, "Upsert")
}

func TestRunEvaluationCycle_StaleGenerationKeepsPosition(t *testing.T) {
	t.Parallel()

	f := newSchedulerFixture(defaultOptions())

	f.claimer.On("ScopeVersion", mock.Anything).Return(int64(0), nil)
	f.ruleRepo.On("FindDue", mock.Anything, 50, 0).Return([]*models.Rule{scopedRule([]int64{5})}, nil)
	f.progressRepo.On("Find", mock.Anything, int64(10), int64(5)).Return(nil, nil)
	f.messageRepo.On("FindForEvaluation", mock.Anything, int64(5), (*time.Time)(nil), int64(0), mock.Anything, 100).
		Return(channelMessages(1, 2), nil)

	f.claimer.On("ClaimTask", mock.Anything, mock.Anything, int64(10)).Return(true, nil)
	f.claimer.On("ReleaseClaim", mock.Anything, mock.Anything, int64(10)).Return(nil)

	// Правило отредактировали во время цикла: UpdateRule удалил строки
	// прогресса и поднял поколение, задачи порции устарели. Upsert
	// воскресил бы удалённую позицию, и новое поколение не перечитало
	// бы окно ретроспективы по каналу.
	f.processor.On("ProcessTask", mock.Anything, mock.Anything).
		Return(service.OutcomeStale, nil)

	err := f.scheduler.RunEvaluationCycle(context.Background())

	require.NoError(t, err)
	f.processor.AssertNumberOfCalls(t, "ProcessTask", 2)
	f.progressRepo.AssertNotCalled(t, "Upsert")
}
