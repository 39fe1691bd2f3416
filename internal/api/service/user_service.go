package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

const verificationCodeTTL = 10 * time.Minute

// BindingCode — одноразовый код привязки Telegram-бота.
type BindingCode struct {
	Code      string
	ExpiresAt time.Time
}

// TelegramBotState — состояние привязки для выдачи наружу, без кода.
type TelegramBotState struct {
	Enabled bool
	Bound   bool
}

type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *UserService) GetPreferences(ctx context.Context, userID int64) (*models.NotificationPreferences, *TelegramBotState, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	state := &TelegramBotState{
		Enabled: user.TelegramBot.Enabled,
		Bound:   user.TelegramBot.Bound(),
	}

	return &user.Preferences, state, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID int64, prefs models.NotificationPreferences) error {
	if err := s.userRepo.UpdatePreferences(ctx, userID, prefs); err != nil {
		return err
	}

	s.logger.Info("Настройки уведомлений обновлены", "userId", userID)

	return nil
}

// GenerateBindingCode выдаёт шестизначный код, действующий десять минут.
// Повторный вызов заменяет прежний код.
func (s *UserService) GenerateBindingCode(ctx context.Context, userID int64) (*BindingCode, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	expires := time.Now().Add(verificationCodeTTL)

	if err := s.userRepo.SetVerificationCode(ctx, userID, code, expires); err != nil {
		return nil, err
	}

	s.logger.Info("Код привязки сгенерирован", "userId", userID)

	return &BindingCode{Code: code, ExpiresAt: expires}, nil
}

func (s *UserService) UnbindTelegram(ctx context.Context, userID int64) error {
	if err := s.userRepo.UnbindChat(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Привязка Telegram-бота снята", "userId", userID)

	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("ошибка при генерации кода привязки: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
