package config

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"tablegen/internal/pkg/apperr"
)

// DefaultPromptSuffix 追加在需求描述后面的固定指令
const DefaultPromptSuffix = "请用规范的表格格式返回数据，第一行为表头，后续为数据行"

// Config 应用配置根结构
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Parser  ParserConfig  `mapstructure:"parser"`
	Export  ExportConfig  `mapstructure:"export"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Storage StorageConfig `mapstructure:"storage"`
}

// APIConfig 对话补全接口配置（对应配置文件中的 [API] 分组）
// 所有字段保持读取时的原始字符串，第一次使用时由 Resolve 校验和解析
type APIConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Model        string `mapstructure:"model"`
	APIBase      string `mapstructure:"api_base"`
	Temperature  string `mapstructure:"temperature"`
	MaxTokens    string `mapstructure:"max_tokens"`
	PromptSuffix string `mapstructure:"prompt_suffix"`
}

// ChatSettings 解析后的不可变请求参数
type ChatSettings struct {
	APIKey       string
	Model        string
	APIBase      string
	Temperature  float64
	MaxTokens    int
	PromptSuffix string
}

// ParserConfig 表格解析配置
type ParserConfig struct {
	Strict bool `mapstructure:"strict"` // 过滤分隔行并要求列数一致
}

// ExportConfig 本地导出配置
type ExportConfig struct {
	Dir string `mapstructure:"dir"` // 未指定输出路径时的默认目录
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置，URI 为空时不记录导出历史
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"` // 基础路径
	BaseURL  string `mapstructure:"base_url"`  // 基础URL（用于生成访问URL）
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`          // OSS端点
	Bucket          string `mapstructure:"bucket"`            // Bucket名称
	AccessKeyID     string `mapstructure:"access_key_id"`     // AccessKey ID
	AccessKeySecret string `mapstructure:"access_key_secret"` // AccessKey Secret
	PresignExpiry   int    `mapstructure:"presign_expiry"`    // 预签名URL过期时间（秒）
}

// Resolve 校验 [API] 分组并解析为 ChatSettings
// 缺失或无法解析的键返回 configuration 错误
func (c *APIConfig) Resolve() (*ChatSettings, error) {
	required := []struct {
		key   string
		value string
	}{
		{"api_key", c.APIKey},
		{"model", c.Model},
		{"api_base", c.APIBase},
		{"temperature", c.Temperature},
		{"max_tokens", c.MaxTokens},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return nil, apperr.New(apperr.KindConfiguration, "missing required key api."+r.key)
		}
	}

	temperature, err := strconv.ParseFloat(strings.TrimSpace(c.Temperature), 64)
	if err != nil || math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, apperr.New(apperr.KindConfiguration, "api.temperature is not a valid number").
			WithDetail(c.Temperature)
	}

	maxTokens, err := strconv.Atoi(strings.TrimSpace(c.MaxTokens))
	if err != nil || maxTokens <= 0 {
		return nil, apperr.New(apperr.KindConfiguration, "api.max_tokens is not a positive integer").
			WithDetail(c.MaxTokens)
	}

	suffix := c.PromptSuffix
	if strings.TrimSpace(suffix) == "" {
		suffix = DefaultPromptSuffix
	}

	return &ChatSettings{
		APIKey:       strings.TrimSpace(c.APIKey),
		Model:        strings.TrimSpace(c.Model),
		APIBase:      strings.TrimRight(strings.TrimSpace(c.APIBase), "/"),
		Temperature:  temperature,
		MaxTokens:    maxTokens,
		PromptSuffix: suffix,
	}, nil
}

// Validate 验证服务配置有效性
// [API] 分组不在这里校验，缺失的键在第一次请求时报错
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	return nil
}
