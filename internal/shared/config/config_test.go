package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_绝对路径与类型解码(t *testing.T) {
	path := writeConf(t, `
app:
  name: backend-base
  env: Production
jwt:
  secret: s3cret
  ttl: 168h
mysql:
  host: localhost
  port: 3306
`)
	cfg := Load(path)
	require.Equal(t, "backend-base", cfg.App.Name)
	// 环境字符串归一化成小写
	require.Equal(t, EnvProduction, cfg.App.Env)
	require.True(t, cfg.App.Env.IsProduction())
	require.Equal(t, float64(168), cfg.JWT.TTL.Hours())
	require.Equal(t, 3306, cfg.MySQL.Port)
}

func TestLoad_APP_ENV覆盖配置文件(t *testing.T) {
	path := writeConf(t, `
app:
  env: development
`)
	t.Setenv("APP_ENV", "production")
	cfg := Load(path)
	require.True(t, cfg.App.Env.IsProduction())
}

func TestEnvironment_只认全字production(t *testing.T) {
	for _, e := range []Environment{EnvDevelopment, EnvTest, "staging", "prod", ""} {
		require.False(t, e.IsProduction(), "env=%q", e)
	}
	require.True(t, EnvProduction.IsProduction())
}

func TestLoad_文件不存在时panic(t *testing.T) {
	require.Panics(t, func() {
		Load(filepath.Join(t.TempDir(), "missing.yml"))
	})
}
