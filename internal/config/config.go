package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Store struct {
		MongoURI   string `yaml:"mongo_uri"` // MONGODB_URI env wins when set
		Database   string `yaml:"database"`
		Collection string `yaml:"collection"`
	} `yaml:"store"`

	Feed struct {
		PollSeconds int `yaml:"poll_seconds"`
	} `yaml:"feed"`

	Cleanup struct {
		MinIntervalHours int `yaml:"min_interval_hours"`
	} `yaml:"cleanup"`

	AI struct {
		Endpoint string `yaml:"endpoint"`
		Model    string `yaml:"model"`
	} `yaml:"ai"`
}

// Default returns the config written on first run.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "."
	cfg.Store.MongoURI = "mongodb://127.0.0.1:27017"
	cfg.Store.Database = "noticeboard"
	cfg.Store.Collection = "listings"
	cfg.Feed.PollSeconds = 15
	cfg.Cleanup.MinIntervalHours = 24
	cfg.AI.Endpoint = "https://api.openai.com/v1/chat/completions"
	cfg.AI.Model = "gpt-4o-mini"
	return cfg
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
