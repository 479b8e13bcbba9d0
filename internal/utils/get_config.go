package utils

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Server configuration
	AppPort string `yaml:"APP_PORT"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT key
	JWTSecret string `yaml:"JWT_SECRET"`

	// Redis / valkey cache configuration
	RedisAddr       string `yaml:"REDIS_ADDR"`
	RedisPassword   string `yaml:"REDIS_PASSWORD"`
	RedisDB         string `yaml:"REDIS_DB"`
	CacheTTLSeconds string `yaml:"CACHE_TTL_SECONDS"`

	// Mailing configuration
	AppURL           string `yaml:"APP_URL"`
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Recommendation services
	AIModelURL    string `yaml:"AI_MODEL_URL"`
	AIMatchingURL string `yaml:"AI_MATCHING_URL"`

	// Background jobs
	ExpirySweepInterval string `yaml:"EXPIRY_SWEEP_INTERVAL"`
}

var config Config

func LoadConfig() {
	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Warnf("Error reading YAML file: %s", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Warnf("Error parsing YAML file: %s", err)
		return
	}
}

// GetConfig returns the value for key. A non-empty environment variable with the
// same name takes precedence over config.yaml.
func GetConfig(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	switch key {
	case "APP_PORT":
		return config.AppPort
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "JWT_SECRET":
		return config.JWTSecret
	case "REDIS_ADDR":
		return config.RedisAddr
	case "REDIS_PASSWORD":
		return config.RedisPassword
	case "REDIS_DB":
		return config.RedisDB
	case "CACHE_TTL_SECONDS":
		return config.CacheTTLSeconds
	case "APP_URL":
		return config.AppURL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "AI_MODEL_URL":
		return config.AIModelURL
	case "AI_MATCHING_URL":
		return config.AIMatchingURL
	case "EXPIRY_SWEEP_INTERVAL":
		return config.ExpirySweepInterval
	default:
		return ""
	}
}

func GetConfigDefault(key, def string) string {
	if v := GetConfig(key); v != "" {
		return v
	}
	return def
}

func GetConfigInt(key string, def int) int {
	v, err := strconv.Atoi(GetConfig(key))
	if err != nil {
		return def
	}
	return v
}

// GetConfigDuration accepts Go duration strings ("10m") or plain seconds.
func GetConfigDuration(key string, def time.Duration) time.Duration {
	raw := GetConfig(key)
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
