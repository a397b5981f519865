package config

import "time"

// APIConfig describes the upstream REST API the console drives.
type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetRefreshPath() string
	GetTokenNotFoundSignal() string
}

type API struct {
	BaseURL       string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:5000/api/v1"`
	Timeout       time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"10s"`
	RefreshPath   string        `yaml:"refresh_path" env:"API_REFRESH_PATH" env-default:"/auth/refresh-token"`
	TokenNotFound string        `yaml:"token_not_found" env:"API_TOKEN_NOT_FOUND" env-default:"AUTH_TOKEN_NOT_FOUND"`
}

var _ APIConfig = API{}

func (a API) GetAPIBaseURL() string {
	return a.BaseURL
}

func (a API) GetAPITimeout() time.Duration {
	return a.Timeout
}

func (a API) GetRefreshPath() string {
	return a.RefreshPath
}

func (a API) GetTokenNotFoundSignal() string {
	return a.TokenNotFound
}
