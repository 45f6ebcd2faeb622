package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hackbot/utils"
)

var envLoaded bool

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address" validate:"required_if=Enabled true"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// Config is read once at startup and passed to every component that needs
// it. Nothing reads the environment after Load returns.
type Config struct {
	Environment string `json:"environment" validate:"oneof=development production test"`
	LogLevel    string `json:"log_level"`

	Token   string `json:"-" validate:"required"`
	GuildID string `json:"guild_id" validate:"required"`

	TeamCreationEnabled   bool          `json:"team_creation_enabled"`
	TeamCreateChannel     string        `json:"team_create_channel" validate:"required"`
	ParticipantRole       string        `json:"participant_role" validate:"required"`
	OperatorRole          string        `json:"operator_role" validate:"required"`
	StaffRoles            []string      `json:"staff_roles"`
	RoleReactionMessageID string        `json:"role_reaction_message_id"`
	ConfirmTimeout        time.Duration `json:"confirm_timeout" validate:"gt=0"`
	ReservationTTL        time.Duration `json:"reservation_ttl" validate:"gt=0"`

	SentryDSN  string      `json:"-"`
	ServerPort string      `json:"server_port" validate:"required,numeric"`
	RateLimit  int         `json:"rate_limit" validate:"gte=0"`
	Redis      RedisConfig `json:"redis"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

// Load builds the configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		Token:   getEnv("DISCORD_TOKEN", ""),
		GuildID: getEnv("DISCORD_GUILD", ""),

		TeamCreationEnabled:   getEnvAsBool("TEAM_CREATION_ENABLED", false),
		TeamCreateChannel:     getEnv("TEAM_CREATE_CHANNEL", "team-create"),
		ParticipantRole:       getEnv("PARTICIPANT_ROLE", "participant"),
		OperatorRole:          getEnv("OPERATOR_ROLE", "organizer"),
		StaffRoles:            getEnvAsList("STAFF_ROLES", []string{"organizer", "mentor", "volunteer", "sponsor", "judge"}),
		RoleReactionMessageID: getEnv("ROLE_REACTION_MESSAGE_ID", ""),
		ConfirmTimeout:        getEnvAsDuration("CONFIRM_TIMEOUT", 20*time.Second),
		ReservationTTL:        getEnvAsDuration("RESERVATION_TTL", 2*time.Minute),

		SentryDSN:  getEnv("SENTRY_DSN", ""),
		ServerPort: getEnv("HTTP_PORT", "8080"),
		RateLimit:  getEnvAsInt("HTTP_RATE_LIMIT", 60),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if err := utils.ValidateStruct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		logrus.Warnf("Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

// getEnvAsBool treats any set, non-empty value that is not a recognised
// false value as true, so TEAM_CREATION_ENABLED=yes enables creation.
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return true
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// MaskToken keeps the first and last four characters of a secret.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return "*****"
	}
	return token[:4] + "*****" + token[len(token)-4:]
}

// Log writes the loaded configuration, secrets masked.
func (c Config) Log() {
	logrus.WithFields(logrus.Fields{
		"environment":           c.Environment,
		"guild_id":              c.GuildID,
		"token":                 MaskToken(c.Token),
		"team_creation_enabled": c.TeamCreationEnabled,
		"team_create_channel":   c.TeamCreateChannel,
		"participant_role":      c.ParticipantRole,
		"operator_role":         c.OperatorRole,
		"staff_roles":           c.StaffRoles,
		"confirm_timeout":       c.ConfirmTimeout.String(),
		"server_port":           c.ServerPort,
		"redis":                 c.Redis.Enabled,
		"sentry":                c.SentryDSN != "",
	}).Info("Loaded configuration")
}
