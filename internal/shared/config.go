package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MetricsAddr    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	TMDBBase       string
	TMDBKey        string
	TMDBLang       string
	ReviewAPIBase  string
	PageSize       int
	CacheTTL       time.Duration
	SessionTTL     time.Duration
	WarmWorkers    int
	WarmPages      int
	SingleReview   bool
	ProfanityWords []string
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
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/moviereview?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisDB:       atoi("REDIS_DB", 0),
		RedisPass:     env("REDIS_PASSWORD", ""),
		TMDBBase:      env("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TMDBKey:       env("TMDB_API_KEY", ""),
		TMDBLang:      env("TMDB_LANG", "en-US"),
		ReviewAPIBase: env("REVIEW_API_BASE_URL", "http://localhost:8081"),
		PageSize:      atoi("PAGE_SIZE", 15),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL:    time.Duration(atoi("SESSION_TTL_SECONDS", 1800)) * time.Second,
		WarmWorkers:   atoi("WARM_WORKERS", 8),
		WarmPages:     atoi("WARM_PAGES", 3),
		SingleReview:  env("REVIEW_DUPLICATE_POLICY", "single") == "single",
	}
	if words := env("PROFANITY_WORDS", ""); words != "" {
		c.ProfanityWords = strings.Split(words, ",")
	}
	if c.TMDBKey == "" {
		log.Warn().Msg("TMDB_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
