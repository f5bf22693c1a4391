package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	AppName       string
	MongoURI      string
	MongoDB       string
	JWTSecret     string
	TokenTTLHours int
	OTPLength     int
	OTPTTLMinutes int

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL      string
	RabbitExchange string
	RabbitQueue    string
	RabbitBindKey  string
	Concurrency    int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	SendEmail    bool

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Key      string
	S3Secret   string
}

func Load() Config {
	return Config{
		Port:          getenv("APP_PORT", "8080"),
		AppName:       getenv("APP_NAME", "nirmitee"),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "clinic_db"),
		JWTSecret:     getenv("JWT_USER_SECRETKEY", "default_secret_key"),
		TokenTTLHours: atoi(getenv("TOKEN_TTL_HOURS", "24")),
		OTPLength:     atoi(getenv("OTP_LENGTH", "4")),
		OTPTTLMinutes: atoi(getenv("OTP_EXPIRY_MINUTES", "10")),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "5")),

		RabbitURL:      getenv("RABBIT_URL", ""),
		RabbitExchange: getenv("RABBIT_EXCHANGE", "clinic.events"),
		RabbitQueue:    getenv("RABBIT_QUEUE", "mailq"),
		RabbitBindKey:  getenv("RABBIT_BIND_KEY", "mail.requested"),
		Concurrency:    atoi(getenv("RABBIT_CONCURRENCY", "4")),

		SMTPHost:     getenv("SMTP_HOST", "localhost"),
		SMTPPort:     atoi(getenv("SMTP_PORT", "587")),
		SMTPUser:     getenv("SMTP_USER", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		MailFrom:     getenv("COMPANY_EMAIL", "no-reply@nirmitee.io"),
		SendEmail:    getenv("SEND_EMAIL", "false") == "true",

		S3Bucket:   getenv("S3_BUCKET", ""),
		S3Region:   getenv("S3_REGION", "ap-south-1"),
		S3Endpoint: getenv("S3_ENDPOINT", ""),
		S3Key:      getenv("S3_ACCESS_KEY", ""),
		S3Secret:   getenv("S3_SECRET_KEY", ""),
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
