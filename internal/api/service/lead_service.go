package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

// LeadEventSink получает доменные события, рождённые на стороне API
// (смена статуса, назначение). События конвейера приходят через Kafka.
type LeadEventSink interface {
	HandleLeadEvent(ctx context.Context, event *models.LeadEvent) error
}

type LeadPatch struct {
	Status     *string
	AssigneeID *int64
}

type LeadService struct {
	leadRepo  repository.LeadRepository
	userRepo  repository.UserRepository
	eventSink LeadEventSink
	logger    *slog.Logger
}

func NewLeadService(
	leadRepo repository.LeadRepository,
	userRepo repository.UserRepository,
	eventSink LeadEventSink,
	logger *slog.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:  leadRepo,
		userRepo:  userRepo,
		eventSink: eventSink,
		logger:    logger,
	}
}

func (s *LeadService) ListLeads(ctx context.Context, filter *models.LeadFilter) ([]*models.Lead, int64, error) {
	leads, err := s.leadRepo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.leadRepo.CountByFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

func (s *LeadService) GetLead(ctx context.Context, tenantID, leadID int64) (*models.LeadDetail, error) {
	detail, err := s.leadRepo.FindDetail(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	detail.TelegramMessageLink = messageLink(detail.Channel, detail.Message)

	return detail, nil
}

func (s *LeadService) UpdateLead(ctx context.Context, tenantID, leadID int64, patch *LeadPatch) (*models.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if lead.TenantID != tenantID {
		return nil, &errors.ErrLeadNotFound{LeadID: leadID}
	}

	oldStatus := lead.Status
	oldAssignee := lead.AssigneeID

	if patch.Status != nil {
		status := models.LeadStatus(*patch.Status)
		if !status.Valid() {
			return nil, &errors.ErrInvalidLeadStatus{Status: *patch.Status}
		}

		lead.Status = status
	}

	if patch.AssigneeID != nil {
		lead.AssigneeID = patch.AssigneeID
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}

	s.emitChangeEvents(ctx, lead, oldStatus, oldAssignee)

	return lead, nil
}

func (s *LeadService) DeleteLead(ctx context.Context, tenantID, leadID int64) error {
	lead, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return err
	}

	if lead.TenantID != tenantID {
		return &errors.ErrLeadNotFound{LeadID: leadID}
	}

	return s.leadRepo.Delete(ctx, leadID)
}

func (s *LeadService) Stats(ctx context.Context, tenantID int64) (*models.LeadStats, error) {
	return s.leadRepo.Stats(ctx, tenantID)
}

// ExportCSV выгружает лиды по фильтру постранично, чтобы не держать
// всю выборку в памяти.
func (s *LeadService) ExportCSV(ctx context.Context, filter *models.LeadFilter, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "message_id", "rule_id", "score", "status", "assignee_id", "summary", "created_at"}
	if err := writer.Write(header); err != nil {
		return err
	}

	const pageSize = 500

	page := *filter
	page.Skip = 0
	page.Limit = pageSize

	for {
		leads, err := s.leadRepo.FindByFilter(ctx, &page)
		if err != nil {
			return err
		}

		for _, lead := range leads {
			if err := writer.Write(csvRow(lead)); err != nil {
				return err
			}
		}

		if len(leads) < pageSize {
			break
		}

		page.Skip += pageSize
	}

	writer.Flush()

	return writer.Error()
}

func (s *LeadService) emitChangeEvents(ctx context.Context, lead *models.Lead, oldStatus models.LeadStatus, oldAssignee *int64) {
	if lead.Status != oldStatus {
		event := &models.LeadEvent{
			Kind:       models.NotificationLeadStatusChanged,
			TenantID:   lead.TenantID,
			LeadID:     lead.ID,
			RuleID:     lead.RuleID,
			Score:      lead.Score,
			OldStatus:  string(oldStatus),
			NewStatus:  string(lead.Status),
			OccurredAt: time.Now(),
		}

		if err := s.eventSink.HandleLeadEvent(ctx, event); err != nil {
			s.logger.Error("Ошибка при доставке события о смене статуса",
				"error", err,
				"leadId", lead.ID,
			)
		}
	}

	if lead.AssigneeID != nil && (oldAssignee == nil || *oldAssignee != *lead.AssigneeID) {
		event := &models.LeadEvent{
			Kind:       models.NotificationLeadAssigned,
			TenantID:   lead.TenantID,
			LeadID:     lead.ID,
			RuleID:     lead.RuleID,
			Score:      lead.Score,
			Assignee:   s.assigneeName(ctx, *lead.AssigneeID),
			OccurredAt: time.Now(),
		}

		if err := s.eventSink.HandleLeadEvent(ctx, event); err != nil {
			s.logger.Error("Ошибка при доставке события о назначении",
				"error", err,
				"leadId", lead.ID,
			)
		}
	}
}

func (s *LeadService) assigneeName(ctx context.Context, assigneeID int64) string {
	user, err := s.userRepo.FindByID(ctx, assigneeID)
	if err != nil {
		return strconv.FormatInt(assigneeID, 10)
	}

	return user.FullName
}

func csvRow(lead *models.Lead) []string {
	assignee := ""
	if lead.AssigneeID != nil {
		assignee = strconv.FormatInt(*lead.AssigneeID, 10)
	}

	summary := ""
	if lead.Entities != nil {
		summary = lead.Entities.Summary
	}

	return []string{
		strconv.FormatInt(lead.ID, 10),
		strconv.FormatInt(lead.MessageID, 10),
		strconv.FormatInt(lead.RuleID, 10),
		strconv.FormatFloat(lead.Score, 'f', 2, 64),
		string(lead.Status),
		assignee,
		summary,
		lead.CreatedAt.Format(time.RFC3339),
	}
}

// messageLink строит ссылку t.me на исходное сообщение. Для приватных
// каналов используется форма t.me/c/<внутренний id>/<сообщение>.
func messageLink(channel *models.Channel, message *models.Message) string {
	if channel == nil || message == nil {
		return ""
	}

	if channel.Username != "" {
		return fmt.Sprintf("https://t.me/%s/%d", channel.Username, message.TgMessageID)
	}

	internalID := strings.TrimPrefix(strconv.FormatInt(channel.TgChannelID, 10), "-100")

	return fmt.Sprintf("https://t.me/c/%s/%d", internalID, message.TgMessageID)
}
