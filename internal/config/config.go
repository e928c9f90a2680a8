package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

var ErrUnknownStorage = errors.New("unknown storage")

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage    string        `yaml:"storage" env:"STORAGE" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	Redis      Redis         `yaml:"redis"`
	Game       Game          `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Game holds the settings every new session starts with. FlatScoring scores every won leaf of
// the hard search the same instead of preferring faster wins.
type Game struct {
	Mode        string `yaml:"mode" env:"GAME_MODE" env-default:"human_vs_human"`
	Difficulty  string `yaml:"difficulty" env:"GAME_DIFFICULTY" env-default:"easy"`
	FlatScoring bool   `yaml:"flat-scoring" env:"GAME_FLAT_SCORING"`
	Seed        int64  `yaml:"seed" env:"GAME_SEED"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	return config
}

// Load reads the yaml file at path, or only the environment when the file does not exist,
// and validates the result.
func Load(path string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	} else {
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	if _, err := that.Game.ParseMode(); err != nil {
		return err
	}

	if _, err := that.Game.ParseDifficulty(); err != nil {
		return err
	}

	if that.Storage != StorageMemory && that.Storage != StorageRedis {
		return fmt.Errorf("%w: %q", ErrUnknownStorage, that.Storage)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) ParseMode() (entity.Mode, error) {
	return entity.ParseMode(that.Mode)
}

func (that *Game) ParseDifficulty() (entity.Difficulty, error) {
	return entity.ParseDifficulty(that.Difficulty)
}
