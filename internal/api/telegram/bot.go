package telegram

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// Bot принимает входящие сообщения для привязки чата к аккаунту
// и отправляет уведомления в уже привязанные чаты.
type Bot struct {
	api      *tgbotapi.BotAPI
	userRepo repository.UserRepository
	logger   *slog.Logger
	stopChan chan struct{}
}

func NewBot(token string, userRepo repository.UserRepository, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:      api,
		userRepo: userRepo,
		logger:   logger,
		stopChan: make(chan struct{}),
	}, nil
}

func (b *Bot) SendMessage(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	_, err := b.api.Send(msg)

	return err
}

func (b *Bot) Start() {
	b.logger.Info("Запуск Telegram поллера", "bot", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updatesChan := b.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-b.stopChan:
				b.logger.Info("Получен сигнал остановки поллера")
				return
			case update := <-updatesChan:
				b.processUpdate(&update)
			}
		}
	}()
}

func (b *Bot) Stop() {
	b.logger.Info("Остановка Telegram поллера")
	b.api.StopReceivingUpdates()
	close(b.stopChan)
}

func (b *Bot) processUpdate(update *tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	b.logger.Info("Получено сообщение",
		"chat_id", chatID,
		"text", text,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var response string

	switch {
	case text == "/start":
		response = "Привет! Чтобы получать уведомления о лидах, отправьте " +
			"шестизначный код привязки из настроек вашего аккаунта."
	case codePattern.MatchString(text):
		response = b.bindByCode(ctx, chatID, text)
	default:
		response = "Не понимаю эту команду. Отправьте /start или шестизначный код привязки."
	}

	if err := b.SendMessage(ctx, chatID, response); err != nil {
		b.logger.Error("Ошибка при отправке ответа",
			"error", err,
			"chat_id", chatID,
		)
	}
}

func (b *Bot) bindByCode(ctx context.Context, chatID int64, code string) string {
	user, err := b.userRepo.FindByVerificationCode(ctx, code)
	if err != nil {
		b.logger.Info("Код привязки не найден", "chat_id", chatID)

		return "Код не найден. Сгенерируйте новый код в настройках аккаунта."
	}

	if user.TelegramBot.VerificationExpires == nil || time.Now().After(*user.TelegramBot.VerificationExpires) {
		return "Срок действия кода истёк. Сгенерируйте новый код в настройках аккаунта."
	}

	if err := b.userRepo.BindChatID(ctx, user.ID, chatID); err != nil {
		b.logger.Error("Ошибка при привязке чата",
			"error", err,
			"userId", user.ID,
			"chat_id", chatID,
		)

		return "Произошла ошибка при привязке. Пожалуйста, попробуйте позже."
	}

	b.logger.Info("Чат привязан к аккаунту", "userId", user.ID, "chat_id", chatID)

	return "Готово! Теперь уведомления о лидах будут приходить в этот чат."
}
