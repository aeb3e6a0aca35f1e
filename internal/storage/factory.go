package storage

import (
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/config"
	"github.com/zapimob/zapimob/internal/pkg/queue"
	queue_memory "github.com/zapimob/zapimob/internal/pkg/queue/memory"
	queue_redis "github.com/zapimob/zapimob/internal/pkg/queue/redis"
	"github.com/zapimob/zapimob/internal/pkg/ratelimiter"
	limiter_memory "github.com/zapimob/zapimob/internal/pkg/ratelimiter/memory"
	limiter_redis "github.com/zapimob/zapimob/internal/pkg/ratelimiter/redis"
	"github.com/zapimob/zapimob/internal/storage/postgres"
	storage_redis "github.com/zapimob/zapimob/internal/storage/redis"
	"github.com/zapimob/zapimob/internal/storage/sqlite"
)

type Repositories struct {
	Channel          ChannelRepository
	Lead             LeadRepository
	Conversation     ConversationRepository
	Message          MessageRepository
	WhatsappMessage  WhatsappMessageRepository
	InstagramMessage InstagramMessageRepository
	Rule             AutoReplyRuleRepository
	Assistant        AssistantRepository
	Notification     NotificationRepository
	Account          BusinessAccountRepository
	Audit            AuditLogRepository
	User             UserRepository
	RedisClient      *storage_redis.Client // Pode ser nil se Redis estiver desabilitado
	ReplyQueue       queue.Queue
	RateLimiter      ratelimiter.Limiter
}

func NewRepositories(cfg config.Config, log *zap.Logger) (*Repositories, error) {
	log.Info("inicializando repositórios",
		zap.String("driver", cfg.Storage.Driver),
	)

	var (
		replyQueue  queue.Queue
		rateLimiter ratelimiter.Limiter
		storeRedis  *storage_redis.Client
		err         error
	)

	// Inicializa Redis apenas se explicitamente habilitado
	useRedis := cfg.Redis.Enabled

	if useRedis {
		log.Info("inicializando Redis...")
		storeRedis, err = storage_redis.New(cfg.Redis, log)
		if err != nil {
			log.Error("erro ao conectar com Redis", zap.Error(err))
			return nil, err
		}

		redisClient := storeRedis.RDB()
		replyQueue = queue_redis.NewQueue(redisClient, "autoreply:jobs")
		rateLimiter = limiter_redis.NewLimiter(redisClient)
		log.Info("Redis conectado, fila e limiter configurados")
	} else {
		log.Info("usando implementações em memória (Redis desabilitado)")
		replyQueue = queue_memory.NewQueue(10000)
		rateLimiter = limiter_memory.NewLimiter()
		storeRedis = nil
	}

	switch cfg.Storage.Driver {
	case "sqlite", "":
		log.Debug("criando conexão com SQLite")
		db, err := sqlite.New(cfg.Storage.DataDir, log)
		if err != nil {
			log.Error("erro ao conectar com SQLite", zap.Error(err))
			return nil, err
		}

		log.Info("repositórios SQLite criados com sucesso", zap.String("data_dir", cfg.Storage.DataDir))
		return &Repositories{
			Channel:          sqlite.NewChannelRepository(db),
			Lead:             sqlite.NewLeadRepository(db),
			Conversation:     sqlite.NewConversationRepository(db),
			Message:          sqlite.NewMessageRepository(db),
			WhatsappMessage:  sqlite.NewWhatsappMessageRepository(db),
			InstagramMessage: sqlite.NewInstagramMessageRepository(db),
			Rule:             sqlite.NewAutoReplyRuleRepository(db),
			Assistant:        sqlite.NewAssistantRepository(db),
			Notification:     sqlite.NewNotificationRepository(db),
			Account:          sqlite.NewBusinessAccountRepository(db),
			Audit:            sqlite.NewAuditLogRepository(db),
			User:             sqlite.NewUserRepository(db),
			RedisClient:      storeRedis,
			ReplyQueue:       replyQueue,
			RateLimiter:      rateLimiter,
		}, nil

	case "postgres":
		log.Debug("criando conexão com PostgreSQL")
		db, err := postgres.New(cfg.DB, log)
		if err != nil {
			log.Error("erro ao conectar com PostgreSQL", zap.Error(err))
			return nil, err
		}

		log.Info("repositórios PostgreSQL criados com sucesso")
		return &Repositories{
			Channel:          postgres.NewChannelRepository(db),
			Lead:             postgres.NewLeadRepository(db),
			Conversation:     postgres.NewConversationRepository(db),
			Message:          postgres.NewMessageRepository(db),
			WhatsappMessage:  postgres.NewWhatsappMessageRepository(db),
			InstagramMessage: postgres.NewInstagramMessageRepository(db),
			Rule:             postgres.NewAutoReplyRuleRepository(db),
			Assistant:        postgres.NewAssistantRepository(db),
			Notification:     postgres.NewNotificationRepository(db),
			Account:          postgres.NewBusinessAccountRepository(db),
			Audit:            postgres.NewAuditLogRepository(db),
			User:             postgres.NewUserRepository(db),
			RedisClient:      storeRedis,
			ReplyQueue:       replyQueue,
			RateLimiter:      rateLimiter,
		}, nil

	default:
		log.Error("driver de storage desconhecido",
			zap.String("driver", cfg.Storage.Driver),
		)
		return nil, &ErrUnknownDriver{Driver: cfg.Storage.Driver}
	}
}

type ErrUnknownDriver struct {
	Driver string
}

func (e *ErrUnknownDriver) Error() string {
	return "storage: driver desconhecido: " + e.Driver
}
