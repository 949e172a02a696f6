package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// 支持的存储驱动。
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// GlobalConfig 描述 HTTP 服务与日志等进程级参数。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	MetricsEnabled  bool     `mapstructure:"MetricsEnabled"`
	BodyLimit       int      `mapstructure:"BodyLimit"`
	ShutdownTimeout Duration `mapstructure:"ShutdownTimeout"`
}

// StoreConfig 决定 hubs 集合落在哪个后端。
type StoreConfig struct {
	Driver          string   `mapstructure:"Driver"`
	Path            string   `mapstructure:"Path"`
	DSN             string   `mapstructure:"DSN"`
	MaxOpenConns    int      `mapstructure:"MaxOpenConns"`
	ConnMaxLifetime Duration `mapstructure:"ConnMaxLifetime"`
}

// Config 是配置文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Store  StoreConfig  `mapstructure:"Store"`
}

// UsesSQL 表示当前驱动需要 DSN 与连接池参数。
func (s StoreConfig) UsesSQL() bool {
	return s.Driver == DriverMySQL || s.Driver == DriverPostgres
}

// Summary 输出日志友好的存储摘要，不包含 DSN 以免泄露凭证。
func (s StoreConfig) Summary() string {
	switch s.Driver {
	case DriverFile:
		return fmt.Sprintf("%s:%s", s.Driver, s.Path)
	default:
		return s.Driver
	}
}
