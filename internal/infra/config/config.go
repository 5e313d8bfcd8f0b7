package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "configs/config.yaml"

const defaultSystemPrompt = "你是一个专业的中英翻译专家。请将用户提供的中文翻译成准确、流畅的英文，并提取关键词。只返回JSON格式结果。"

// Config aggregates runtime configuration used across the service.
type Config struct {
	API         APIConfig         `yaml:"api"`
	Model       ModelConfig       `yaml:"model"`
	Translation TranslationConfig `yaml:"translation"`
	Server      ServerConfig      `yaml:"server"`
}

// APIConfig describes the remote chat completion endpoint.
type APIConfig struct {
	// Key is never read from the YAML file.
	Key            string  `yaml:"-"`
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds float64 `yaml:"timeout"`
}

// ModelConfig contains the sampling parameters sent upstream.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// TranslationConfig controls the prompt.
type TranslationConfig struct {
	KeywordCount int    `yaml:"keyword_count"`
	SystemPrompt string `yaml:"system_prompt"`
}

// ServerConfig controls the listener.
type ServerConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Reload bool   `yaml:"reload"`
}

// Timeout converts the configured seconds into a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

// Address returns the host:port pair the HTTP server binds to.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads configuration from the env file, the YAML file and environment variables.
// The YAML file is mandatory; the API key is not.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

// LoadFile builds a Config from the given YAML file plus environment overrides.
func LoadFile(path string) (*Config, error) {
	cfg := defaultConfig()
	if err := hydrateFromFile(cfg, path); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHSCOPE_API_KEY"); v != "" {
		cfg.API.Key = v
	} else if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = parsed
		}
	}
	if v := os.Getenv("SERVER_RELOAD"); v != "" {
		cfg.Server.Reload = v == "1" || strings.EqualFold(v, "true")
	}
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://dashscope.aliyuncs.com/compatible-mode/v1",
			TimeoutSeconds: 30,
		},
		Model: ModelConfig{
			Name:        "glm-4.7",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Translation: TranslationConfig{
			KeywordCount: 3,
			SystemPrompt: defaultSystemPrompt,
		},
		Server: ServerConfig{
			Host:   "0.0.0.0",
			Port:   8000,
			Reload: false,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url cannot be empty")
	}
	if c.API.TimeoutSeconds <= 0 {
		return errors.New("api.timeout must be positive")
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		return errors.New("model.name cannot be empty")
	}
	if c.Model.Temperature < 0 {
		return errors.New("model.temperature cannot be negative")
	}
	if c.Model.MaxTokens <= 0 {
		return errors.New("model.max_tokens must be positive")
	}
	if c.Translation.KeywordCount <= 0 {
		return errors.New("translation.keyword_count must be positive")
	}
	if strings.TrimSpace(c.Translation.SystemPrompt) == "" {
		return errors.New("translation.system_prompt cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server.port must be between 1 and 65535")
	}
	return nil
}
