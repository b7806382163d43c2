package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env is the process configuration. Server and terminal client read the same variables;
// each uses the part it needs.
type Env struct {
	AppAddr     string `env:"APP_ADDR" envDefault:":8080"`
	GinMode     string `env:"GIN_MODE"`
	Development bool   `env:"APP_DEV" envDefault:"false"`

	DBUser     string `env:"DB_USER" envDefault:"root"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1:3306"`
	DBName     string `env:"DB_NAME" envDefault:"travel_app"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"super-secret-key-change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"`

	PaymentGatewayURL string `env:"PAYMENT_GATEWAY_URL" envDefault:"https://pay.example.com/checkout"`
	PaymentSigningKey string `env:"PAYMENT_SIGNING_KEY" envDefault:"change-me"`
	Currency          string `env:"CURRENCY" envDefault:"IDR"`

	// Terminal client.
	APIBaseURL  string        `env:"CHECKOUT_API_URL" envDefault:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `env:"CHECKOUT_HTTP_TIMEOUT" envDefault:"15s"`
	TabID       string        `env:"CHECKOUT_TAB"`
	ResumeStore string        `env:"CHECKOUT_RESUME_STORE" envDefault:"badger"`
	BadgerDir   string        `env:"CHECKOUT_BADGER_DIR" envDefault:".checkout-state"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	SignalRelay bool          `env:"CHECKOUT_SIGNAL_RELAY" envDefault:"false"`
	VoucherDir  string        `env:"CHECKOUT_VOUCHER_DIR" envDefault:"."`
}

// LoadEnv reads .env when present, then the process environment.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return Env{}, err
	}
	cfg.AppAddr = strings.TrimSpace(cfg.AppAddr)
	if cfg.AppAddr == "" {
		cfg.AppAddr = ":8080"
	}
	cfg.GinMode = strings.TrimSpace(cfg.GinMode)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	return cfg, nil
}
