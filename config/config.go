package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"

	"KbjuCoachService/pkg/apperrors"
)

// Config содержит все настройки приложения
type Config struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Funnel   FunnelConfig   `mapstructure:"funnel"`
}

// PostgresConfig содержит настройки для PostgreSQL
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig содержит настройки для Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig содержит настройки HTTP-сервера
type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

// FunnelConfig содержит настройки воронки приглашения на консультацию
type FunnelConfig struct {
	// InviteDelay задержка перед отправкой приглашения после регистрации
	InviteDelay time.Duration `mapstructure:"invite_delay"`
	// ReminderIntervals интервалы напоминаний после приглашения
	ReminderIntervals []time.Duration `mapstructure:"reminder_intervals"`
	// ConsultationLink ссылка на запись к консультанту
	ConsultationLink string `mapstructure:"consultation_link"`
}

// LoadConfig загружает настройки из файла или переменных окружения
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Значения по умолчанию
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Если файл конфигурации не найден, используем переменные окружения
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Проверяем наличие переменных окружения и переопределяем значения конфигурации
	loadFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate проверяет согласованность загруженной конфигурации.
// Ошибка конфигурации фатальна при запуске.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return apperrors.NewConfigurationError("http.port", "порт должен быть в диапазоне 1-65535")
	}
	if c.Postgres.Host == "" {
		return apperrors.NewConfigurationError("postgres.host", "хост не задан")
	}
	if c.Postgres.DBName == "" {
		return apperrors.NewConfigurationError("postgres.dbname", "имя базы данных не задано")
	}
	if c.Redis.Addr == "" {
		return apperrors.NewConfigurationError("redis.addr", "адрес не задан")
	}
	if c.Funnel.InviteDelay <= 0 {
		return apperrors.NewConfigurationError("funnel.invite_delay", "задержка должна быть положительной")
	}
	for _, interval := range c.Funnel.ReminderIntervals {
		if interval <= 0 {
			return apperrors.NewConfigurationError("funnel.reminder_intervals", "интервалы должны быть положительными")
		}
	}
	return nil
}

func setDefaults() {
	// PostgreSQL defaults
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.username", "postgres")
	viper.SetDefault("postgres.password", "postgres")
	viper.SetDefault("postgres.dbname", "kbju_coach")
	viper.SetDefault("postgres.sslmode", "disable")

	// Redis defaults
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// HTTP defaults
	viper.SetDefault("http.port", 8080)

	// Настройки воронки: приглашение через 2 минуты после регистрации,
	// напоминания через 2 часа, сутки и неделю
	viper.SetDefault("funnel.invite_delay", 2*time.Minute)
	viper.SetDefault("funnel.reminder_intervals", []time.Duration{
		2 * time.Hour,
		24 * time.Hour,
		7 * 24 * time.Hour,
	})
	viper.SetDefault("funnel.consultation_link", "https://t.me/kbju_coach_consult")
}

func loadFromEnv() {
	// PostgreSQL from env
	if dbHost := os.Getenv("DB_HOST"); dbHost != "" {
		viper.Set("postgres.host", dbHost)
	}
	if dbPort := os.Getenv("DB_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			viper.Set("postgres.port", port)
		}
	}
	if dbUser := os.Getenv("DB_USER"); dbUser != "" {
		viper.Set("postgres.username", dbUser)
	}
	if dbPassword := os.Getenv("DB_PASSWORD"); dbPassword != "" {
		viper.Set("postgres.password", dbPassword)
	}
	if dbName := os.Getenv("DB_NAME"); dbName != "" {
		viper.Set("postgres.dbname", dbName)
	}

	// Redis from env
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		redisPort := "6379" // Default Redis port
		if port := os.Getenv("REDIS_PORT"); port != "" {
			redisPort = port
		}
		viper.Set("redis.addr", redisHost+":"+redisPort)
	}

	// HTTP from env
	if httpPort := os.Getenv("HTTP_PORT"); httpPort != "" {
		if port, err := strconv.Atoi(httpPort); err == nil {
			viper.Set("http.port", port)
		}
	}

	// Funnel from env
	if link := os.Getenv("CONSULTATION_LINK"); link != "" {
		viper.Set("funnel.consultation_link", link)
	}
}
