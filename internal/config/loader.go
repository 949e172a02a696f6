package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// DefaultListenPort 是未显式配置时的监听端口。
	DefaultListenPort = 4000

	envPrefix = "HUBS_API"
)

// dotEnvFile 为空时跳过 .env 加载，测试中可替换。
var dotEnvFile = ".env"

// Load 合并默认值、可选配置文件、.env 与 HUBS_API_* 环境变量，并执行校验。
// path 为空时仅使用默认值与环境变量。
func Load(path string) (*Config, error) {
	if err := loadDotEnv(dotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	applyStoreDefaults(&cfg.Store)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Store.Driver == DriverFile {
		absPath, err := filepath.Abs(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("无法解析存储目录: %w", err)
		}
		cfg.Store.Path = absPath
	}

	return &cfg, nil
}

// loadDotEnv 将 .env 中的键写入进程环境，已存在的环境变量不会被覆盖。
func loadDotEnv(file string) error {
	if file == "" {
		return nil
	}
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("读取 .env 失败: %w", err)
	}
	if err := godotenv.Load(file); err != nil {
		return fmt.Errorf("解析 .env 失败: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", DefaultListenPort)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("MetricsEnabled", true)
	v.SetDefault("BodyLimit", 4*1024*1024)
	v.SetDefault("ShutdownTimeout", "10s")
	v.SetDefault("Store.Driver", DriverMemory)
	v.SetDefault("Store.Path", "./data/hubs")
	v.SetDefault("Store.DSN", "")
	v.SetDefault("Store.MaxOpenConns", 10)
	v.SetDefault("Store.ConnMaxLifetime", "5m")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = DefaultListenPort
	}
	g.LogLevel = strings.ToLower(strings.TrimSpace(g.LogLevel))
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	if g.BodyLimit == 0 {
		g.BodyLimit = 4 * 1024 * 1024
	}
	if g.ShutdownTimeout.DurationValue() == 0 {
		g.ShutdownTimeout = Duration(10 * time.Second)
	}
}

func applyStoreDefaults(s *StoreConfig) {
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	if s.Driver == "" {
		s.Driver = DriverMemory
	}
	s.DSN = strings.TrimSpace(s.DSN)
	if s.MaxOpenConns == 0 {
		s.MaxOpenConns = 10
	}
	if s.ConnMaxLifetime.DurationValue() == 0 {
		s.ConnMaxLifetime = Duration(5 * time.Minute)
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
