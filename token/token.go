package token

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// UserInfo is the identity carried inside a console access token.
// The signature is never verified here; the upstream API owns that.
type UserInfo struct {
	ID     string         `json:"id"`
	Email  string         `json:"email,omitempty"`
	Name   string         `json:"name,omitempty"`
	Role   string         `json:"role"`            // Always lower case
	Roles  []string       `json:"roles,omitempty"` // Lower cased, when the token carries a list
	Expiry time.Time      `json:"expiry,omitempty"`
	Claims map[string]any `json:"-"`
}

// IsAdmin reports whether the token belongs to an administrator.
func (u *UserInfo) IsAdmin() bool {
	if u == nil {
		return false
	}
	if u.Role == "admin" {
		return true
	}
	for _, r := range u.Roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// Expired reports whether the token has an exp claim in the past.
func (u *UserInfo) Expired() bool {
	return u != nil && !u.Expiry.IsZero() && NowTimeFunc().After(u.Expiry)
}

// Decode reads the claims of rawToken without verifying it.
// An empty token decodes to nil without error.
func Decode(rawToken string) (*UserInfo, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, nil
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, apperrors.Wrapf(err, "[token Decode] failed to parse token")
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("[token Decode] error extracting claims")
	}

	info := &UserInfo{
		ID:     firstString(claims, "id", "_id", "userId", "sub"),
		Email:  firstString(claims, "email"),
		Name:   firstString(claims, "name", "fullName"),
		Role:   strings.ToLower(firstString(claims, "role")),
		Claims: claims,
	}

	if rawRoles, ok := claims["roles"].([]any); ok {
		for _, r := range utils.ToStringSlice(rawRoles) {
			info.Roles = append(info.Roles, strings.ToLower(r))
		}
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Expiry = exp.Time
	}

	return info, nil
}

// Expiry returns the exp claim of rawToken, or the zero time when it is absent or unreadable.
func Expiry(rawToken string) time.Time {
	info, err := Decode(rawToken)
	if err != nil || info == nil {
		return time.Time{}
	}
	return info.Expiry
}

func firstString(claims jwtlib.MapClaims, keys ...string) string {
	for _, k := range keys {
		if s, ok := claims[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
