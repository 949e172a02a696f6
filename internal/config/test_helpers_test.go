package config

import (
	"os"
	"path/filepath"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// withoutDotEnv 在测试期间禁用 .env 加载，避免工作目录中的文件影响断言。
func withoutDotEnv(t *testing.T) {
	t.Helper()
	prev := dotEnvFile
	dotEnvFile = ""
	t.Cleanup(func() { dotEnvFile = prev })
}
