package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel        string          `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	Mode            string          `yaml:"mode" env:"MODE" env-default:"train"`
	Storage         Storage         `yaml:"storage"`
	Redis           Redis           `yaml:"redis"`
	Hyperparameters Hyperparameters `yaml:"hyperparameters"`
	Training        Schedule        `yaml:"training"`
	MinimaxTraining Schedule        `yaml:"minimax-training"`
	Evaluation      Evaluation      `yaml:"evaluation"`
}

type Storage struct {
	Driver       string `yaml:"driver" env-default:"file"`
	Dir          string `yaml:"dir" env-default:"./q_table_archive"`
	Table        string `yaml:"table" env-default:"qtable"`
	MinimaxTable string `yaml:"minimax-table" env-default:"qtable-max"`
	AllowEmpty   bool   `yaml:"allow-empty" env-default:"false"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Evaluation struct {
	Games   int `yaml:"games" env-default:"1000"`
	Workers int `yaml:"workers" env-default:"4"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	config.Training = config.Training.withDefaults(DefaultSchedule())
	config.MinimaxTraining = config.MinimaxTraining.withDefaults(DefaultMinimaxSchedule())

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
