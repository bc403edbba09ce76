package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pipelineorganics/aigeo/internal/utils"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 AIGEO_API_BASE
const EnvPrefix = "AIGEO"

// APIBaseEnv 是 API 基地址对应的环境变量名
const APIBaseEnv = EnvPrefix + "_API_BASE"

type Config struct {
	APIBase        string        `yaml:"api_base"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MeshSource     string        `yaml:"mesh_source"`
	HistoryLimit   int           `yaml:"history_limit"`
	Logging        LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// envOverrides 环境变量覆盖项，未设置的字段保持零值
type envOverrides struct {
	APIBase        string        `envconfig:"API_BASE"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT"`
	MeshSource     string        `envconfig:"MESH_SOURCE"`
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
	LogFile        string        `envconfig:"LOG_FILE"`
}

// Default 返回默认配置；API 基地址默认为空（界面显示 not set）
func Default() *Config {
	return &Config{
		HistoryLimit: utils.DefaultHistoryLimit,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig 按 默认值 < 配置文件 < .env < 环境变量 的优先级加载配置。
// 只在启动时调用一次。缺少 API 基地址不是错误。
func LoadConfig() (*Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}

	if err := loadDotenv(".env"); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	return cfg, nil
}

func loadFile() (*Config, error) {
	cfg := Default()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return cfg, nil
}

// loadDotenv 加载 .env 文件，不会覆盖已存在的环境变量
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("加载 %s 失败: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}

	if env.APIBase != "" {
		cfg.APIBase = env.APIBase
	}
	if env.RequestTimeout > 0 {
		cfg.RequestTimeout = env.RequestTimeout
	}
	if env.MeshSource != "" {
		cfg.MeshSource = env.MeshSource
	}
	if env.HistoryLimit > 0 {
		cfg.HistoryLimit = env.HistoryLimit
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Logging.File = env.LogFile
	}
	return nil
}

func (c *Config) normalize() {
	c.APIBase = strings.TrimSpace(c.APIBase)
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = utils.DefaultHistoryLimit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.File == "" {
		if path, err := utils.ConfigFile("aigeo.log"); err == nil {
			c.Logging.File = path
		}
	}
}

// APIBaseDisplay 返回界面上显示的 API 地址
func (c *Config) APIBaseDisplay() string {
	if c.APIBase == "" {
		return "not set"
	}
	return c.APIBase
}

func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// SaveAPIBase 只更新配置文件中的 API 基地址
func SaveAPIBase(apiBase string) error {
	cfg, err := loadFile()
	if err != nil {
		return err
	}
	cfg.APIBase = strings.TrimSpace(apiBase)
	return SaveConfig(cfg)
}

// Path 返回配置文件路径
func Path() (string, error) {
	return getConfigPath()
}

func getConfigPath() (string, error) {
	configDir, err := utils.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}
