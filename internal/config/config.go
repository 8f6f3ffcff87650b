package config

import "time"

type Config struct {
	App      AppConfig      `env-prefix:"APP_"`
	HTTP     HTTPConfig     `env-prefix:"HTTP_"`
	Database DatabaseConfig `env-prefix:"DB_"`
	Engine   EngineConfig   `env-prefix:"ENGINE_"`
	Gemini   GeminiConfig   `env-prefix:"GEMINI_"`
}

type HTTPConfig struct {
	Addr string `env:"ADDR" env-default:":8081"`
}

type AppConfig struct {
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	Pretty          bool          `env:"PRETTY" env-default:"false"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type DatabaseConfig struct {
	Port          string `env:"PORT" env-default:"5432"`
	Host          string `env:"HOST" env-default:"localhost"`
	Name          string `env:"NAME" env-default:"postgres"`
	User          string `env:"USER" env-default:"user"`
	Password      string `env:"PASSWORD"`
	RetryAttempts uint   `env:"RETRY_ATTEMPTS" env-default:"3"`
	MaxConns      int32  `env:"MAX_CONNS" env-default:"5"`
	Migrate       bool   `env:"MIGRATE" env-default:"true"`
}

type EngineConfig struct {
	Debounce     time.Duration `env:"DEBOUNCE" env-default:"1s"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" env-default:"10s"`
}

type GeminiConfig struct {
	APIKey   string `env:"API_KEY"`
	BaseURL  string `env:"BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	Model    string `env:"MODEL" env-default:"gemini-2.5-flash"`
	Attempts uint   `env:"ATTEMPTS" env-default:"3"`
}

func (c DatabaseConfig) Addr() string {
	return c.Host + ":" + c.Port
}
