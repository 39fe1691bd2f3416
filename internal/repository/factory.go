package repository

import (
	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/database"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/repository/orm"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

// Repositories — полный набор хранилищ, собранный фабрикой.
type Repositories struct {
	Messages      MessageRepository
	Channels      ChannelRepository
	Rules         RuleRepository
	Progress      ProgressRepository
	Leads         LeadRepository
	Subscriptions SubscriptionRepository
	Notifications NotificationRepository
	Users         UserRepository
	Accounts      AccountRepository
	Failures      FailureRepository
	Analytics     AnalyticsRepository
}

type Factory struct {
	db        *database.PostgresDB
	txManager *txs.TxManager
	config    *config.Config
	logger    *slog.Logger
}

func NewFactory(db *database.PostgresDB, txManager *txs.TxManager, config *config.Config, logger *slog.Logger) *Factory {
	return &Factory{
		db:        db,
		txManager: txManager,
		config:    config,
		logger:    logger,
	}
}

// CreateRepositories собирает хранилища по cfg.DatabaseAccessType.
// Поддержан только вариант SQUIRREL; ветка plain SQL убрана вместе с
// дублировавшими друг друга реализациями.
func (f *Factory) CreateRepositories() (*Repositories, error) {
	switch f.config.DatabaseAccessType {
	case config.SquirrelAccess:
		f.logger.Info("Создание ORM (Squirrel) репозиториев")

		return &Repositories{
			Messages:      orm.NewMessageRepository(f.db, f.txManager),
			Channels:      orm.NewChannelRepository(f.db, f.txManager),
			Rules:         orm.NewRuleRepository(f.db, f.txManager),
			Progress:      orm.NewProgressRepository(f.db, f.txManager),
			Leads:         orm.NewLeadRepository(f.db, f.txManager),
			Subscriptions: orm.NewSubscriptionRepository(f.db, f.txManager),
			Notifications: orm.NewNotificationRepository(f.db, f.txManager),
			Users:         orm.NewUserRepository(f.db, f.txManager),
			Accounts:      orm.NewAccountRepository(f.db, f.txManager),
			Failures:      orm.NewFailureRepository(f.db, f.txManager),
			Analytics:     orm.NewAnalyticsRepository(f.db, f.txManager),
		}, nil
	default:
		return nil, &errors.ErrUnknownDBAccessType{AccessType: string(f.config.DatabaseAccessType)}
	}
}
