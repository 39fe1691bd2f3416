package service

import (
	"context"
	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/clients"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

// AccountGateway — часть API шлюза, нужная для подключения аккаунтов.
type AccountGateway interface {
	StartAuth(ctx context.Context, phone string) (*clients.AuthSession, error)
	VerifyAuth(ctx context.Context, sessionRef, code string) (*clients.AuthSession, error)
	GetDialogs(ctx context.Context, sessionRef string) ([]models.Dialog, error)
}

type AccountService struct {
	accountRepo repository.AccountRepository
	gateway     AccountGateway
	logger      *slog.Logger
}

func NewAccountService(accountRepo repository.AccountRepository, gateway AccountGateway, logger *slog.Logger) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

// ConnectAccount начинает авторизацию на шлюзе. Аккаунт сохраняется
// в статусе pending до подтверждения кода из SMS.
func (s *AccountService) ConnectAccount(ctx context.Context, tenantID int64, phone string) (*models.TelegramAccount, error) {
	if phone == "" {
		return nil, &errors.ErrBadRequest{Message: "не указан номер телефона"}
	}

	session, err := s.gateway.StartAuth(ctx, phone)
	if err != nil {
		return nil, err
	}

	account := &models.TelegramAccount{
		TenantID:   tenantID,
		Phone:      phone,
		SessionRef: session.SessionRef,
		Status:     models.AccountPending,
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("Начата авторизация аккаунта-источника",
		"accountId", account.ID,
		"tenantId", tenantID,
	)

	return account, nil
}

// VerifyAccount подтверждает код авторизации и активирует аккаунт.
func (s *AccountService) VerifyAccount(ctx context.Context, tenantID, accountID int64, code string) (*models.TelegramAccount, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	session, err := s.gateway.VerifyAuth(ctx, account.SessionRef, code)
	if err != nil {
		if updErr := s.accountRepo.UpdateStatus(ctx, account.ID, models.AccountError, account.SessionRef); updErr != nil {
			s.logger.Error("Ошибка при обновлении статуса аккаунта",
				"error", updErr,
				"accountId", account.ID,
			)
		}

		return nil, err
	}

	if err := s.accountRepo.UpdateStatus(ctx, account.ID, models.AccountActive, session.SessionRef); err != nil {
		return nil, err
	}

	account.Status = models.AccountActive
	account.SessionRef = session.SessionRef

	s.logger.Info("Аккаунт-источник подключён",
		"accountId", account.ID,
		"tenantId", tenantID,
	)

	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, tenantID int64) ([]*models.TelegramAccount, error) {
	return s.accountRepo.FindByTenant(ctx, tenantID)
}

func (s *AccountService) GetAccount(ctx context.Context, tenantID, accountID int64) (*models.TelegramAccount, error) {
	return s.accountRepo.FindByID(ctx, tenantID, accountID)
}

func (s *AccountService) DeleteAccount(ctx context.Context, tenantID, accountID int64) error {
	return s.accountRepo.Delete(ctx, tenantID, accountID)
}

// GetDialogs возвращает каналы, доступные подключённому аккаунту.
func (s *AccountService) GetDialogs(ctx context.Context, tenantID, accountID int64) ([]models.Dialog, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if account.Status != models.AccountActive {
		return nil, &errors.ErrBadRequest{Message: "аккаунт-источник не подключён"}
	}

	return s.gateway.GetDialogs(ctx, account.SessionRef)
}
