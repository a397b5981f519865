package adminapi

import (
	"context"
	"encoding/json"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/token"
)

// AdminRole is the only role allowed into the console.
const AdminRole = "Admin"

var ErrNotAdmin = apperrors.ErrNotAdmin

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type LoginResult struct {
	User         LoginUser `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone,omitempty"`
	Role            string `json:"role,omitempty"`
}

// Login authenticates against the API and, for admins only, stores the
// returned tokens as the session cookies.
func (a *API) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	env, err := decode[LoginResult](a.client.PostJSON(ctx, "/auths/login", req))
	if err != nil {
		return nil, err
	}
	if env.Data.User.Role != AdminRole {
		return nil, apperrors.Wrapf(ErrNotAdmin, "[adminapi Login] %s has role %q", req.Email, env.Data.User.Role)
	}
	// The API authorizes on the token's role, so it has to agree with the user record.
	if info, err := token.Decode(env.Data.AccessToken); err == nil && info != nil && info.Role != "" && !info.IsAdmin() {
		return nil, apperrors.Wrapf(ErrNotAdmin, "[adminapi Login] %s carries token role %q", req.Email, info.Role)
	}
	a.client.SetCredentials(env.Data.AccessToken, env.Data.RefreshToken)
	return &env.Data, nil
}

// Logout tells the API to end the session. Local credentials are dropped even if the call fails.
func (a *API) Logout(ctx context.Context) error {
	defer a.client.ClearCredentials()
	_, err := a.client.Post(ctx, "/auths/logout", "", nil)
	return err
}

func (a *API) ForgetPassword(ctx context.Context, email string) (*Raw, error) {
	return decode[json.RawMessage](a.client.PostJSON(ctx, "/auth/forget-password", map[string]string{"email": email}))
}

func (a *API) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*Raw, error) {
	return decode[json.RawMessage](a.client.PostJSON(ctx, "/auth/forget-password/verify-otp", req))
}

func (a *API) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Raw, error) {
	return decode[json.RawMessage](a.client.PostJSON(ctx, "/auth/reset-password", req))
}

func (a *API) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*Raw, error) {
	return decode[json.RawMessage](a.client.PatchJSON(ctx, "/auth/change-password", req))
}

// RegisterUser creates an account on behalf of the signed-in admin.
func (a *API) RegisterUser(ctx context.Context, req RegisterRequest) (*Raw, error) {
	return decode[json.RawMessage](a.client.PostJSON(ctx, "/auth/register", req))
}
