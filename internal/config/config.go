package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v10"
)

// Version é sobrescrita em build time via -ldflags.
var Version = "dev"

type Config struct {
	App       AppConfig
	DB        DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Meta      MetaConfig
	AI        AIConfig
	Dispatch  DispatchConfig
}

type AppConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

type StorageConfig struct {
	Driver  string `env:"DB_DRIVER" envDefault:"sqlite"`
	DataDir string `env:"DATA_DIR" envDefault:"/app/data"`
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"zapimob"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN retorna a string de conexão em formato aceito pelo pgxpool.
func (cfg DatabaseConfig) DSN() string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
}

type JWTConfig struct {
	Secret   string `env:"JWT_SECRET,required"`
	ExpHours int    `env:"JWT_EXP_HOURS" envDefault:"24"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"debug"`
}

type RateLimitConfig struct {
	Enabled       bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Requests      int    `env:"RATE_LIMIT_REQUESTS" envDefault:"300"`
	WindowSeconds int    `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	Prefix        string `env:"RATE_LIMIT_PREFIX" envDefault:"ratelimit:api"`
}

// MetaConfig cobre o webhook unificado da Meta (Instagram + WhatsApp Cloud).
type MetaConfig struct {
	VerifyToken string `env:"META_VERIFY_TOKEN,required"`
	AppSecret   string `env:"META_APP_SECRET"`
	// SkipSignatureCheck só tem efeito fora de produção; em produção a
	// assinatura é sempre exigida.
	SkipSignatureCheck bool   `env:"META_SKIP_SIGNATURE_CHECK" envDefault:"false"`
	GraphBaseURL       string `env:"META_GRAPH_BASE_URL" envDefault:"https://graph.facebook.com/v19.0"`
	// TokenEncKey habilita a cifra dos access tokens em repouso; vazio
	// mantém os tokens em texto puro.
	TokenEncKey string `env:"META_TOKEN_ENC_KEY"`
}

// AIConfig descreve a cadeia de provedores OpenAI-compatible tentados em
// ordem até o primeiro sucesso.
type AIConfig struct {
	PrimaryBaseURL   string `env:"AI_PRIMARY_BASE_URL" envDefault:"https://api.openai.com/v1"`
	PrimaryAPIKey    string `env:"AI_PRIMARY_API_KEY"`
	PrimaryModel     string `env:"AI_PRIMARY_MODEL" envDefault:"gpt-4o-mini"`
	SecondaryBaseURL string `env:"AI_SECONDARY_BASE_URL"`
	SecondaryAPIKey  string `env:"AI_SECONDARY_API_KEY"`
	SecondaryModel   string `env:"AI_SECONDARY_MODEL"`
	TertiaryBaseURL  string `env:"AI_TERTIARY_BASE_URL"`
	TertiaryAPIKey   string `env:"AI_TERTIARY_API_KEY"`
	TertiaryModel    string `env:"AI_TERTIARY_MODEL"`
	TimeoutSeconds   int    `env:"AI_TIMEOUT_SECONDS" envDefault:"8"`
}

type DispatchConfig struct {
	Workers int `env:"DISPATCH_WORKERS" envDefault:"4"`
}

// Load carrega as configurações da aplicação.
func Load() Config {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: não foi possível carregar variáveis: %v", err)
	}
	return cfg
}
