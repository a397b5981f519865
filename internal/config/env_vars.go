package config

import "strings"

type EnvVars struct {
	Port    string `yaml:"port" env:"PORT" env-default:"8080"`
	AppName string `yaml:"app_name" env:"APP_NAME" env-default:"Team Admin"`
	Env     string `yaml:"env" env:"ENV" env-default:"DEV"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	if e.Env == "" {
		return "DEV"
	}
	return e.Env
}
