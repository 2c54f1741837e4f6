package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	Server  ServerConfig  `yaml:"rest"`
	Storage StorageConfig `yaml:"storage"`
	JWT     JWTSecret     `yaml:"jwt"`
}

type ServerConfig struct {
	Port        string   `yaml:"port" env:"REST_PORT" env-default:"8080"`
	APIPrefix   string   `yaml:"api_prefix" env-default:"/api/v1"`
	CORSOrigins []string `yaml:"cors_origins" env-default:"http://localhost:3000"`
}

type StorageConfig struct {
	TemplatesPath   string        `yaml:"templates_path" env:"TEMPLATES_PATH" env-default:"./data/templates"`
	TmpPath         string        `yaml:"tmp_path" env:"TMP_PATH" env-default:"./data/tmp"`
	MaxUploadMB     int64         `yaml:"max_upload_mb" env-default:"32"`
	StagingTTL      time.Duration `yaml:"staging_ttl" env-default:"1h"`
	JanitorInterval time.Duration `yaml:"janitor_interval" env-default:"10m"`
	SetupWorkers    int           `yaml:"setup_workers" env-default:"4"`
}

// MaxUploadBytes is the upload limit applied to every request body.
func (s StorageConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

type JWTSecret struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

func MustLoad() *Config {
	path := fetchConfigPath()

	if path == "" {
		panic("Config file not found in path")
	}

	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var config Config
	log.Printf("Loading config from %s", path)
	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return nil, err
	}
	if config.Storage.TemplatesPath == config.Storage.TmpPath {
		return nil, fmt.Errorf("storage.templates_path and storage.tmp_path must differ")
	}
	return &config, nil
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "config path")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = "./config/local.yaml"
	}

	return res
}
