package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Catalog struct {
		BaseURL  string        `mapstructure:"baseURL"`
		PageSize int           `mapstructure:"pageSize"`
		MaxItems int           `mapstructure:"maxItems"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"catalog"`
	Forecast struct {
		GeocodeURL  string        `mapstructure:"geocodeURL"`
		ForecastURL string        `mapstructure:"forecastURL"`
		HorizonDays int           `mapstructure:"horizonDays"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"forecast"`
	Judge struct {
		Model              string        `mapstructure:"model"`
		ScoringTemperature float32       `mapstructure:"scoringTemperature"`
		AnswerTemperature  float32       `mapstructure:"answerTemperature"`
		MaxOutputTokens    int32         `mapstructure:"maxOutputTokens"`
		Timeout            time.Duration `mapstructure:"timeout"`
	} `mapstructure:"judge"`
	Pipeline struct {
		DefaultTopN        int `mapstructure:"defaultTopN"`
		MaxScoreCandidates int `mapstructure:"maxScoreCandidates"`
	} `mapstructure:"pipeline"`
	Sessions struct {
		TTL time.Duration `mapstructure:"ttl"`
	} `mapstructure:"sessions"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	// Add file-based config paths
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	// Unmarshal the config into the Config struct
	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
