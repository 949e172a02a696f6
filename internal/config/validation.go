package config

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var supportedDrivers = map[string]struct{}{
	DriverMemory:   {},
	DriverFile:     {},
	DriverMySQL:    {},
	DriverPostgres: {},
}

const supportedDriverList = "memory|file|mysql|postgres"

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", fmt.Sprintf("无法识别的日志级别: %s", g.LogLevel))
	}
	if g.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "不能为负数")
	}
	if g.BodyLimit <= 0 {
		return newFieldError("Global.BodyLimit", "必须大于 0")
	}
	if g.ShutdownTimeout.DurationValue() <= 0 {
		return newFieldError("Global.ShutdownTimeout", "必须大于 0")
	}

	return c.Store.validate()
}

func (s StoreConfig) validate() error {
	if _, ok := supportedDrivers[s.Driver]; !ok {
		return newFieldError(storeField("Driver"), "仅支持 "+supportedDriverList)
	}

	switch {
	case s.Driver == DriverFile:
		if s.Path == "" {
			return newFieldError(storeField("Path"), "file 驱动不能为空")
		}
	case s.UsesSQL():
		if s.DSN == "" {
			return newFieldError(storeField("DSN"), fmt.Sprintf("%s 驱动不能为空", s.Driver))
		}
		if s.MaxOpenConns <= 0 {
			return newFieldError(storeField("MaxOpenConns"), "必须大于 0")
		}
		if s.ConnMaxLifetime.DurationValue() <= 0 {
			return newFieldError(storeField("ConnMaxLifetime"), "必须大于 0")
		}
	}
	return nil
}
