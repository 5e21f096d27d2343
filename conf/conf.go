package conf

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/caarlos0/env/v11"
	"google.golang.org/protobuf/encoding/protojson"
)

// protojson options for Nakama api messages carried on the bus.
var Marshaler = &protojson.MarshalOptions{
	UseEnumNumbers: true,
}

var Unmarshaler = &protojson.UnmarshalOptions{
	DiscardUnknown: true,
}

var SnowlakeNode *snowflake.Node

// Config is read from the environment of the Nakama process.
type Config struct {
	NatsUrl string `env:"VIP_NATS_URL"`

	NotificationCap       int           `env:"VIP_NOTIFICATION_CAP"       envDefault:"50"`
	NotificationRetention time.Duration `env:"VIP_NOTIFICATION_RETENTION" envDefault:"720h"`
	PruneCron             string        `env:"VIP_PRUNE_CRON"             envDefault:"0 3 * * *"`

	MinioEndpoint  string `env:"VIP_MINIO_ENDPOINT"`
	MinioAccessKey string `env:"VIP_MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"VIP_MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"VIP_MINIO_USE_SSL"`
	TierBucket     string `env:"VIP_TIER_BUCKET" envDefault:"vip"`
	TierObject     string `env:"VIP_TIER_OBJECT" envDefault:"tiers.json"`

	SnowflakeNode int64 `env:"VIP_SNOWFLAKE_NODE" envDefault:"1"`
}

var Cfg = DefaultConfig()

func DefaultConfig() Config {
	return Config{
		NotificationCap:       50,
		NotificationRetention: 720 * time.Hour,
		PruneCron:             "0 3 * * *",
		TierBucket:            "vip",
		TierObject:            "tiers.json",
		SnowflakeNode:         1,
	}
}

// LoadConfigFromEnv returns the module configuration, falling back to
// defaults when the environment cannot be parsed.
func LoadConfigFromEnv() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.NotificationCap <= 0 {
		cfg.NotificationCap = 50
	}
	return cfg
}

func Init() {
	Cfg = LoadConfigFromEnv()
	var err error
	SnowlakeNode, err = snowflake.NewNode(Cfg.SnowflakeNode)
	if err != nil {
		panic(err)
	}
}
