package hubs

import (
	"context"
	"encoding/json"
	"fmt"
)

// Database 是处理器依赖的集合契约。"不存在" 用 nil hub 或 false 表达，
// 只有存储失败才返回 error。
type Database interface {
	// Find 按 id 升序返回全部 hub，成功时不返回 nil 切片。
	Find(ctx context.Context) ([]Hub, error)
	// FindByID 在记录不存在（包括 id 无法解析）时返回 nil, nil。
	FindByID(ctx context.Context, id string) (*Hub, error)
	// Add 分配 id 与时间戳后持久化。
	Add(ctx context.Context, fields Fields) (*Hub, error)
	// Update 合并 fields 到已有记录，不存在时返回 nil, nil。
	Update(ctx context.Context, id string, fields Fields) (*Hub, error)
	// Remove 删除记录，不存在时返回 false, nil。
	Remove(ctx context.Context, id string) (bool, error)
}

// OpError 包装存储层失败，记录失败的操作名。
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("hubs %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// MarshalJSON 供 500 响应的 err 字段使用。
func (e *OpError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(map[string]string{
		"op":      e.Op,
		"message": msg,
	})
}

// WrapError 在 err 非空时包装为 *OpError，已包装的错误原样返回。
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*OpError); ok {
		return err
	}
	return &OpError{Op: op, Err: err}
}
