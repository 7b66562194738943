package config

import (
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

var environmentType = reflect.TypeOf(Environment(""))

func load(configPath string) *Config {
	if !fileExist(configPath) {
		panic(fmt.Sprintf("config file not exist, configPath=%v", configPath))
	}

	v := viper.New()
	v.SetConfigFile(configPath)

	// 环境变量覆盖：APP_ENV / JWT_SECRET 优先于配置文件，
	// 便于同一份 conf.yml 在不同部署环境复用。
	_ = v.BindEnv("app.env", "APP_ENV")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")

	cfg := &Config{}
	// 注意：环境标识是“启动时读一次”的约定；热更新只刷新可动态调整的项，
	// app.env 变更不生效（分类器/日志器持有的是启动时的快照）。
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Println("config file changed:", e.Name)
		if err := unmarshal(v, cfg); err != nil {
			log.Printf("reload config failed, keep previous: %v", err)
		}
	})
	v.WatchConfig()

	if err := v.ReadInConfig(); err != nil {
		panic(err)
	}
	if err := unmarshal(v, cfg); err != nil {
		panic(err)
	}
	return cfg
}

func unmarshal(v *viper.Viper, cfg *Config) error {
	return v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		environmentHook(),
	)))
}

// environmentHook 把配置里的环境字符串归一化成 Environment（小写、去空白）。
func environmentHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != environmentType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		return Environment(strings.ToLower(strings.TrimSpace(s))), nil
	}
}
