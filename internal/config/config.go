package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const (
	InventoryMemory = "memory"
	InventoryRedis  = "redis"
)

type Config struct {
	HTTPAddr     string
	CRDBDSN      string
	MongoURI     string
	RedisAddr    string
	RabbitURL    string
	OTLPEndpoint string

	BcryptCost       int
	IdempotencyTTL   time.Duration
	InventoryBackend string
	RateLimit        int
	RatePeriod       time.Duration
	OutboxInterval   time.Duration

	GovRepEmail          string
	GovRepPassword       string
	GovRepPaymentAccount string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	idempTTL, _ := time.ParseDuration(os.Getenv("IDEMPOTENCY_TTL"))
	if idempTTL == 0 {
		idempTTL = time.Hour
	}

	cost := 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrap(err, "parse BCRYPT_COST")
		}
		cost = n
	}

	rateLimit := 100
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrap(err, "parse RATE_LIMIT")
		}
		rateLimit = n
	}
	ratePeriod, _ := time.ParseDuration(os.Getenv("RATE_PERIOD"))
	if ratePeriod == 0 {
		ratePeriod = time.Minute
	}
	outboxInterval, _ := time.ParseDuration(os.Getenv("OUTBOX_INTERVAL"))
	if outboxInterval == 0 {
		outboxInterval = time.Second
	}

	backend := getenv("INVENTORY_BACKEND", InventoryMemory)
	if backend != InventoryMemory && backend != InventoryRedis {
		return nil, errors.Newf("unknown INVENTORY_BACKEND %q", backend)
	}
	if backend == InventoryRedis && os.Getenv("REDIS_ADDR") == "" {
		return nil, errors.New("INVENTORY_BACKEND=redis requires REDIS_ADDR")
	}

	return &Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		CRDBDSN:      os.Getenv("CRDB_DSN"),
		MongoURI:     os.Getenv("MONGO_URI"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		RabbitURL:    os.Getenv("RABBIT_URL"),
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		BcryptCost:       cost,
		IdempotencyTTL:   idempTTL,
		InventoryBackend: backend,
		RateLimit:        rateLimit,
		RatePeriod:       ratePeriod,
		OutboxInterval:   outboxInterval,

		GovRepEmail:          getenv("GOV_REP_EMAIL", "margaret.thatcher@gov.uk"),
		GovRepPassword:       getenv("GOV_REP_PASSWORD", "The Good times  "),
		GovRepPaymentAccount: getenv("GOV_REP_PAYMENT_ACCOUNT", "government@email.com"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
