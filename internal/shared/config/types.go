package config

import "time"

// Environment 是部署环境标识。只区分 production 与其他：
// 生产环境下错误响应与日志里的 data/stack 一律剥离。
// 约束：进程启动时读一次，之后作为不可变值显式传给分类器/日志器，禁止调用点再读环境变量。
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTest        Environment = "test"
	EnvProduction  Environment = "production"
)

// IsProduction 只认全字 "production"，其余一律按非生产处理。
func (e Environment) IsProduction() bool {
	return e == EnvProduction
}

type Config struct {
	App        AppConfig        `yaml:"app" mapstructure:"app"`
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	JWT        JWTConfig        `yaml:"jwt" mapstructure:"jwt"`
	Realtime   RealtimeConfig   `yaml:"realtime" mapstructure:"realtime"`
}

type AppConfig struct {
	Name string      `yaml:"name" mapstructure:"name"`
	Env  Environment `yaml:"env" mapstructure:"env"` // 可被 APP_ENV 覆盖
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type MySQLConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	DBName   string `yaml:"dbname" mapstructure:"dbname"`
	MaxIdle  int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn  int    `yaml:"max_conn" mapstructure:"max_conn"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
}

type JWTConfig struct {
	Secret string        `yaml:"secret" mapstructure:"secret"` // 可被 JWT_SECRET 覆盖
	TTL    time.Duration `yaml:"ttl" mapstructure:"ttl"`       // 形如 "168h"
}

type RealtimeConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	SendBuffer int  `yaml:"send_buffer" mapstructure:"send_buffer"` // 单连接发送缓冲，慢消费者超限即断开
}
