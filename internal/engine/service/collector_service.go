package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/clients"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

type Transactor interface {
	WithTransaction(ctx context.Context, txFunc func(ctx context.Context) error) error
}

// CollectorService опрашивает активные каналы через telegram-шлюз и
// складывает новые сообщения в хранилище. Сообщения неизменяемы,
// повторная вставка той же пары (канал, tg_message_id) игнорируется.
type CollectorService struct {
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
	gateway     clients.TelegramGateway
	batchLimit  int
	logger      *slog.Logger
}

func NewCollectorService(
	channelRepo repository.ChannelRepository,
	messageRepo repository.MessageRepository,
	gateway clients.TelegramGateway,
	batchLimit int,
	logger *slog.Logger,
) *CollectorService {
	return &CollectorService{
		channelRepo: channelRepo,
		messageRepo: messageRepo,
		gateway:     gateway,
		batchLimit:  batchLimit,
		logger:      logger,
	}
}

func (s *CollectorService) CollectAll(ctx context.Context) error {
	channels, err := s.channelRepo.FindActive(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Начало сбора сообщений",
		"channels", len(channels),
	)

	for _, channel := range channels {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.collectChannel(ctx, channel); err != nil {
			s.logger.Error("Ошибка при сборе сообщений канала",
				"error", err,
				"channelId", channel.ID,
				"username", channel.Username,
			)
		}
	}

	return nil
}

func (s *CollectorService) collectChannel(ctx context.Context, channel *models.Channel) error {
	messages, err := s.gateway.GetChannelMessages(ctx, channel.TgChannelID, channel.LastMessageID, s.batchLimit)
	if err != nil {
		metrics.RecordMessageIngested(channel.Username, "error")
		return err
	}

	if len(messages) == 0 {
		return nil
	}

	lastMessageID := channel.LastMessageID
	saved := 0

	for _, gm := range messages {
		inserted, err := s.messageRepo.Save(ctx, &models.Message{
			ChannelID:   channel.ID,
			TgMessageID: gm.ID,
			SenderID:    gm.SenderID,
			Text:        gm.Text,
			Links:       gm.Links,
			ViewsCount:  gm.ViewsCount,
			PostedAt:    gm.PostedAt,
		})
		if err != nil {
			metrics.RecordMessageIngested(channel.Username, "error")
			return err
		}

		if inserted {
			saved++

			metrics.RecordMessageIngested(channel.Username, "saved")
		} else {
			metrics.RecordMessageIngested(channel.Username, "duplicate")
		}

		if gm.ID > lastMessageID {
			lastMessageID = gm.ID
		}
	}

	if err := s.channelRepo.UpdateCollectState(ctx, channel.ID, lastMessageID, time.Now()); err != nil {
		return err
	}

	s.logger.Info("Сбор сообщений канала завершён",
		"channelId", channel.ID,
		"username", channel.Username,
		"received", len(messages),
		"saved", saved,
		"lastMessageId", lastMessageID,
	)

	return nil
}
