package bootstrap

import (
	"errors"
	"io/fs"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort     string `mapstructure:"SERVER_PORT"`
	RedisUrl       string `mapstructure:"REDIS_URL"`
	MongoUri       string `mapstructure:"MONGO_URI"`
	MongoDatabase  string `mapstructure:"MONGO_DATABASE"`
	KatagoPath     string `mapstructure:"KATAGO_PATH"`
	KatagoModel    string `mapstructure:"KATAGO_MODEL"`
	KatagoConfig   string `mapstructure:"KATAGO_CONFIG"`
	KatagoVisits   int    `mapstructure:"KATAGO_VISITS"`
	PageLimitGames int    `mapstructure:"PAGE_LIMIT_GAMES"`
	IsLocalCors    bool   `mapstructure:"LOCAL_CORS"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]any{
	"SERVER_PORT":      "8080",
	"REDIS_URL":        "localhost:6379",
	"MONGO_URI":        "mongodb://localhost:27017",
	"MONGO_DATABASE":   "gofish",
	"KATAGO_PATH":      "./katago",
	"KATAGO_MODEL":     "",
	"KATAGO_CONFIG":    "",
	"KATAGO_VISITS":    500,
	"PAGE_LIMIT_GAMES": 20,
	"LOCAL_CORS":       false,
	"LOG_LEVEL":        "info",
}

// Setup reads cfgPath (a .env style file) on top of the defaults. Environment
// variables win over both. A missing file is not an error.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, err
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if cfg.PageLimitGames < 1 {
		cfg.PageLimitGames = defaults["PAGE_LIMIT_GAMES"].(int)
	}

	return &cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
