package shared

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	PrefsTTL    time.Duration
	Tour        TourConfig
	Workers     int
}

// TourConfig is handed to the tour API client and the aggregator as-is.
type TourConfig struct {
	BaseURL     string
	ServiceKey  string
	AppName     string
	AreaCode    int
	PageSize    int
	RPS         int
	FanoutLimit int
	Timeout     time.Duration
}

// LoadDotEnv reads .env into the process environment when the file exists.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env load failed")
	}
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		PrefsTTL:    time.Duration(atoi("PREFS_TTL_DAYS", 7)) * 24 * time.Hour,
		Workers:     atoi("EXPORT_WORKERS", 4),
		Tour: TourConfig{
			BaseURL:     env("TOUR_BASE_URL", "http://apis.data.go.kr/B551011/KorService1"),
			ServiceKey:  env("TOUR_SERVICE_KEY", os.Getenv("NEXT_PUBLIC_TOUR_SERVICE_KEY")),
			AppName:     env("TOUR_APP_NAME", "GangwonGo"),
			AreaCode:    atoi("TOUR_AREA_CODE", 32),
			PageSize:    atoi("TOUR_PAGE_SIZE", 1000),
			RPS:         atoi("TOUR_RPS", 10),
			FanoutLimit: atoi("FANOUT_LIMIT", 8),
			Timeout:     time.Duration(atoi("TOUR_TIMEOUT_SECONDS", 20)) * time.Second,
		},
	}
	if c.Tour.ServiceKey == "" {
		log.Warn().Msg("TOUR_SERVICE_KEY is empty; upstream calls will be rejected")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
