package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RequestFields 提供请求级访问日志字段。
func RequestFields(requestID, method, path, route string, status int, latency time.Duration) logrus.Fields {
	return logrus.Fields{
		"action":     "request",
		"request_id": requestID,
		"method":     method,
		"path":       path,
		"route":      route,
		"status":     status,
		"latency_ms": latency.Milliseconds(),
	}
}

// StoreFields 描述一次集合操作，供处理器记录失败。
func StoreFields(requestID, op, hubID string) logrus.Fields {
	fields := logrus.Fields{
		"action":     "store_" + op,
		"request_id": requestID,
	}
	if hubID != "" {
		fields["hub_id"] = hubID
	}
	return fields
}
