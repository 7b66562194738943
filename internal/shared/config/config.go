package config

import (
	"os"
	"path/filepath"
)

const defaultConfigRelPath = "configs/conf.yml"

// Load 加载配置并返回：
// 1) 传入 cfgName（相对/绝对路径）则优先使用；
// 2) 否则从当前目录开始向上查找 `configs/conf.yml`。
// 配置损坏属于启动期致命错误，直接 panic，不进入错误分类管道。
func Load(cfgName string) *Config {
	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	var path string
	switch {
	case cfgName != "" && filepath.IsAbs(cfgName):
		path = cfgName
	case cfgName != "":
		path = filepath.Join(curDir, cfgName)
	default:
		path = findConfigUpward(curDir)
	}
	return load(path)
}

func findConfigUpward(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("config file not exist, searched configs/conf.yml from: " + startDir)
		}
		dir = parent
	}
}

func fileExist(fileName string) bool {
	_, err := os.Stat(fileName)
	return err == nil
}
