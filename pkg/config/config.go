package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Rating    RatingConfig
	Links     LinksConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig tunes how class rows are selected and rendered.
type DashboardConfig struct {
	EventsLimit  int
	Timezone     string
	RosterPath   string
	FeedbackPath string
	ProfilePath  string
}

// RatingConfig selects the survey question averaged into the instructor rating.
type RatingConfig struct {
	SurveyID      string
	QuestionKey   string
	EventFieldKey string
}

// LinksConfig holds fallback values for the external toolkit links and the
// settings cache toggle.
type LinksConfig struct {
	EmergencyProcedures  string
	InstructorHandbook   string
	RequestReimbursement string
	LogHours             string
	PaymentStatus        string
	CacheEnabled         bool
	CacheTTL             time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	eventsLimit := v.GetInt("DASHBOARD_EVENTS_LIMIT")
	if eventsLimit <= 0 {
		eventsLimit = 20
	}
	cfg.Dashboard = DashboardConfig{
		EventsLimit:  eventsLimit,
		Timezone:     v.GetString("DASHBOARD_TIMEZONE"),
		RosterPath:   v.GetString("ROSTER_PATH"),
		FeedbackPath: v.GetString("FEEDBACK_PATH"),
		ProfilePath:  v.GetString("PROFILE_PATH"),
	}

	cfg.Rating = RatingConfig{
		SurveyID:      v.GetString("RATING_SURVEY_ID"),
		QuestionKey:   v.GetString("RATING_QUESTION_KEY"),
		EventFieldKey: v.GetString("RATING_EVENT_FIELD_KEY"),
	}

	cfg.Links = LinksConfig{
		EmergencyProcedures:  v.GetString("LINK_EMERGENCY_PROCEDURES_URL"),
		InstructorHandbook:   v.GetString("LINK_INSTRUCTOR_HANDBOOK_URL"),
		RequestReimbursement: v.GetString("LINK_REQUEST_REIMBURSEMENT_URL"),
		LogHours:             v.GetString("LINK_LOG_HOURS_URL"),
		PaymentStatus:        v.GetString("LINK_PAYMENT_STATUS_URL"),
		CacheEnabled:         v.GetBool("ENABLE_SETTINGS_CACHE"),
		CacheTTL:             parseDuration(v.GetString("LINK_SETTINGS_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "instructor_companion")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_EVENTS_LIMIT", 20)
	v.SetDefault("DASHBOARD_TIMEZONE", "UTC")
	v.SetDefault("ROSTER_PATH", "/civicrm/event/participant")
	v.SetDefault("FEEDBACK_PATH", "/form/instructor_feedback")
	v.SetDefault("PROFILE_PATH", "/user/%d/instructor")

	v.SetDefault("RATING_SURVEY_ID", "instructor_feedback")
	v.SetDefault("RATING_QUESTION_KEY", "overall_satisfaction")
	v.SetDefault("RATING_EVENT_FIELD_KEY", "event_id")

	v.SetDefault("LINK_EMERGENCY_PROCEDURES_URL", "")
	v.SetDefault("LINK_INSTRUCTOR_HANDBOOK_URL", "")
	v.SetDefault("LINK_REQUEST_REIMBURSEMENT_URL", "")
	v.SetDefault("LINK_LOG_HOURS_URL", "")
	v.SetDefault("LINK_PAYMENT_STATUS_URL", "")
	v.SetDefault("ENABLE_SETTINGS_CACHE", false)
	v.SetDefault("LINK_SETTINGS_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
