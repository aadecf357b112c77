package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       App
	HTTP      HTTP
	Probe     Probe
	Metrics   Metrics
	Postgres  Postgres
	Redis     Redis
	Datastore Datastore
	Wallet    Wallet
	Search    Search
	Ledger    Ledger
	Worker    Worker
	Bot       Bot
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"Prodi"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen  int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
	Namespace     string `env:"METRICS_NAMESPACE" envDefault:"prodi"`
}

type Datastore struct {
	Driver      string        `env:"DATASTORE_DRIVER" envDefault:"postgres"`
	RESTURL     string        `env:"DATASTORE_REST_URL"`
	RESTAPIKey  string        `env:"DATASTORE_REST_API_KEY" json:"-"`
	RESTTimeout time.Duration `env:"DATASTORE_REST_TIMEOUT" envDefault:"10s"`
}

type Wallet struct {
	ChallengeTTL time.Duration `env:"WALLET_CHALLENGE_TTL" envDefault:"5m"`
	SessionTTL   time.Duration `env:"WALLET_SESSION_TTL" envDefault:"24h"`
	SessionStore string        `env:"WALLET_SESSION_STORE" envDefault:"memory"`
	RedisPrefix  string        `env:"WALLET_REDIS_PREFIX" envDefault:"prodi:wallet:"`
}

type Search struct {
	SnapshotTTL  time.Duration `env:"SEARCH_SNAPSHOT_TTL" envDefault:"1m"`
	WarmInterval time.Duration `env:"SEARCH_WARM_INTERVAL" envDefault:"45s"`
	Limit        int           `env:"SEARCH_LIMIT" envDefault:"50"`
}

type Ledger struct {
	RPCURL         string        `env:"LEDGER_RPC_URL"`
	PrivateKey     string        `env:"LEDGER_PRIVATE_KEY" json:"-"`
	MemoMode       string        `env:"LEDGER_MEMO_MODE" envDefault:"sync"`
	AirdropTarget  uint64        `env:"LEDGER_AIRDROP_TARGET" envDefault:"100000000"`
	MaxRetries     uint          `env:"LEDGER_MAX_RETRIES" envDefault:"3"`
	ConfirmTimeout time.Duration `env:"LEDGER_CONFIRM_TIMEOUT" envDefault:"1m"`
}

// Enabled reports whether deals can be attested on the ledger.
func (l Ledger) Enabled() bool {
	return l.RPCURL != "" && l.PrivateKey != ""
}

type Worker struct {
	Concurrency     int           `env:"WORKER_CONCURRENCY" envDefault:"4"`
	ShutdownTimeout time.Duration `env:"WORKER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxRetry        int           `env:"WORKER_MEMO_MAX_RETRY" envDefault:"5"`
	TaskTimeout     time.Duration `env:"WORKER_MEMO_TIMEOUT" envDefault:"2m"`
}

type Bot struct {
	Token    string `env:"BOT_TOKEN" json:"-"`
	ChatID   int64  `env:"BOT_CHAT_ID"`
	AdminID  int64  `env:"BOT_ADMIN_ID"`
	PageSize int    `env:"BOT_PAGE_SIZE" envDefault:"5"`
}

// Enabled reports whether deal events are posted to the chat.
func (b Bot) Enabled() bool {
	return b.Token != "" && b.ChatID != 0
}

// DeskEnabled reports whether the operator commands are served.
func (b Bot) DeskEnabled() bool {
	return b.Token != "" && b.AdminID != 0
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	config.Ledger.PrivateKey = correctNewlines(config.Ledger.PrivateKey)

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) validate() error {
	switch c.Datastore.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("PG_DSN is required for the %s datastore", DriverPostgres)
		}
	case DriverREST:
		if c.Datastore.RESTURL == "" {
			return fmt.Errorf("DATASTORE_REST_URL is required for the %s datastore", DriverREST)
		}
	default:
		return fmt.Errorf("unknown DATASTORE_DRIVER %q", c.Datastore.Driver)
	}

	switch c.Wallet.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the %s session store", StoreRedis)
		}
	default:
		return fmt.Errorf("unknown WALLET_SESSION_STORE %q", c.Wallet.SessionStore)
	}

	switch c.Ledger.MemoMode {
	case MemoModeSync:
	case MemoModeQueued:
		if c.Redis.Address == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the %s memo mode", MemoModeQueued)
		}
	default:
		return fmt.Errorf("unknown LEDGER_MEMO_MODE %q", c.Ledger.MemoMode)
	}

	return nil
}

const (
	DriverPostgres = "postgres"
	DriverREST     = "rest"

	StoreMemory = "memory"
	StoreRedis  = "redis"

	MemoModeSync   = "sync"
	MemoModeQueued = "queued"
)

func correctNewlines(s string) string {
	return strings.NewReplacer(`"`, "", `\n`, "\n").Replace(strings.TrimSpace(s))
}
