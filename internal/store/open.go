package store

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/hubs-api/hubs-api/internal/config"
	"github.com/hubs-api/hubs-api/internal/hubs"
	"github.com/hubs-api/hubs-api/internal/logging"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open 根据 Store 配置构建后端，返回的 Closer 在进程退出时调用。
func Open(ctx context.Context, cfg config.StoreConfig, logger *logrus.Logger) (hubs.Database, io.Closer, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	fields := logrus.Fields{
		"action": "store_open",
		"driver": cfg.Driver,
	}

	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.WithFields(fields).Info("使用内存存储")
		return NewMemoryStore(), nopCloser{}, nil
	case config.DriverFile:
		st, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		fields["path"] = st.basePath
		logger.WithFields(fields).Info("使用文件存储")
		return st, nopCloser{}, nil
	case config.DriverMySQL:
		st, err := OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.WithFields(fields).Info("MySQL 存储就绪")
		return st, st, nil
	case config.DriverPostgres:
		st, err := OpenPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.WithFields(fields).Info("PostgreSQL 存储就绪")
		return st, st, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}
