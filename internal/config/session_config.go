package config

import "time"

type SessionConfig interface {
	GetMaxSessionAge() time.Duration
}

type Session struct {
	MaxAge time.Duration `yaml:"max_age" env:"SESSION_MAX_AGE" env-default:"24h"`
}

var _ SessionConfig = Session{}

func (s Session) GetMaxSessionAge() time.Duration {
	return s.MaxAge
}
