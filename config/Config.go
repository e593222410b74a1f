package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kingsrook/qqq-client/analytics"
)

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"
const STORAGE_TYPE_INMEM StorageType = "memory"

type Config struct {
	BaseUrl          string
	Timeout          time.Duration
	LogLevel         string
	PollInterval     time.Duration
	PollTimeout      time.Duration
	MetadataCacheTTL time.Duration
	StorageType      StorageType
	RedisConfig      RedisStorageConfig
	AnalyticsConfig  analytics.DataCollectorConfig
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
	Password  string
	TTL       time.Duration
}

// FromViper reads the keys bound by the cli flags.
func FromViper(v *viper.Viper) (Config, error) {
	c := Config{
		BaseUrl:          strings.TrimRight(v.GetString("base-url"), "/"),
		Timeout:          v.GetDuration("timeout"),
		LogLevel:         v.GetString("log-level"),
		PollInterval:     v.GetDuration("poll-interval"),
		PollTimeout:      v.GetDuration("poll-timeout"),
		MetadataCacheTTL: v.GetDuration("metadata-ttl"),
		StorageType:      StorageType(v.GetString("storage-impl")),
		RedisConfig: RedisStorageConfig{
			Namespace: v.GetString("namespace"),
			Password:  v.GetString("redis-password"),
			TTL:       v.GetDuration("session-ttl"),
		},
	}
	if addrs := v.GetString("redis-addr"); addrs != "" {
		c.RedisConfig.Addrs = strings.Split(addrs, ",")
	}
	if file := v.GetString("analytics-file"); file != "" {
		c.AnalyticsConfig = analytics.DataCollectorConfig{
			FileName:      file,
			CollectorType: analytics.LOG_FILE_DATA_COLLECTOR,
		}
	}
	if c.StorageType == "" {
		c.StorageType = STORAGE_TYPE_INMEM
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.StorageType {
	case STORAGE_TYPE_INMEM:
	case STORAGE_TYPE_REDIS:
		if len(c.RedisConfig.Addrs) == 0 {
			return fmt.Errorf("storage %s requires at least one redis address", c.StorageType)
		}
	default:
		return fmt.Errorf("invalid storage type %s", c.StorageType)
	}
	if c.PollInterval < 0 || c.PollTimeout < 0 {
		return fmt.Errorf("poll interval and timeout must not be negative")
	}
	return nil
}
