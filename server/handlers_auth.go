package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-admin-console/adminapi"
	"github.com/jrsteele09/go-admin-console/consolesession"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/rs/zerolog/log"
)

// LoginHandler signs the admin in against the API and starts a console session.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formValues(w, r)
		if err != nil {
			redirectWithError(w, r, RouteLogin, "Invalid login request")
			return
		}
		email := strings.TrimSpace(form.Get("email"))
		password := form.Get("password")
		if email == "" || password == "" {
			redirectWithError(w, r, RouteLogin, "Email and password are required")
			return
		}

		session, err := s.newSession()
		if err != nil {
			log.Err(err).Msg("Login: failed to create console session")
			redirectWithError(w, r, RouteLogin, "Login is unavailable")
			return
		}

		result, err := session.API.Login(r.Context(), adminapi.LoginRequest{Email: email, Password: password})
		if err != nil {
			log.Info().Err(err).Str("email", email).Msg("Login failed")
			formError(w, r, RouteLogin, err, "Login failed")
			return
		}
		setIdentity(session, result)

		if previous := sessionFromContext(r.Context()); previous != nil {
			_ = s.sessions.Delete(previous.ID)
		}
		if err := s.sessions.Upsert(session); err != nil {
			log.Err(err).Msg("Login: failed to store console session")
			redirectWithError(w, r, RouteLogin, "Login is unavailable")
			return
		}

		s.SetLoginSessionCookie(w, session.ID, r, int(s.config.GetMaxSessionAge().Seconds()))
		log.Info().Str("email", session.Email).Str("session_id", session.ID).Msg("Admin logged in")
		redirectSuccess(w, r, RouteDashboard)
	}
}

// setIdentity prefers the access token claims and fills the gaps from the login answer.
func setIdentity(session *consolesession.Session, result *adminapi.LoginResult) {
	info, err := token.Decode(result.AccessToken)
	if err != nil {
		log.Debug().Err(err).Msg("Login: access token is not a readable JWT")
	}
	session.SetIdentity(info)

	if session.UserID == "" {
		session.UserID = result.User.ID
	}
	if session.Email == "" {
		session.Email = result.User.Email
	}
	if session.Name == "" {
		session.Name = result.User.Name
	}
	if session.Role == "" {
		session.Role = strings.ToLower(result.User.Role)
	}
}

// LogoutHandler ends the upstream session and forgets the console session.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := sessionFromContext(r.Context()); session != nil {
			if err := session.API.Logout(r.Context()); err != nil {
				log.Warn().Err(err).Str("session_id", session.ID).Msg("Logout: upstream logout failed")
			}
			if err := s.sessions.Delete(session.ID); err != nil {
				log.Err(err).Msg("Logout: failed to delete console session")
			}
		}
		s.ClearLoginSessionCookie(w, r)
		redirectSuccess(w, r, RouteLogin)
	}
}

// anonymousAPI is a throwaway client for the signed-out password reset calls.
func (s *Server) anonymousAPI() (*adminapi.API, error) {
	session, err := s.newSession()
	if err != nil {
		return nil, err
	}
	return session.API, nil
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formValues(w, r)
		if err != nil {
			redirectWithError(w, r, RouteForgotPassword, "Invalid request")
			return
		}
		email := strings.TrimSpace(form.Get("email"))
		if email == "" {
			redirectWithError(w, r, RouteForgotPassword, "Email is required")
			return
		}
		if !s.sendResetCode(w, r, email, RouteForgotPassword) {
			return
		}
		redirectSuccess(w, r, RouteVerifyOTP)
	}
}

// ResendOTPHandler sends a new code to the email the reset was started with.
func (s *Server) ResendOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := resetEmail(r)
		if email == "" {
			redirectWithError(w, r, RouteForgotPassword, "Email not found. Please request a new one.")
			return
		}
		if !s.sendResetCode(w, r, email, RouteVerifyOTP) {
			return
		}
		redirectSuccess(w, r, RouteVerifyOTP)
	}
}

func (s *Server) sendResetCode(w http.ResponseWriter, r *http.Request, email, errorPath string) bool {
	api, err := s.anonymousAPI()
	if err != nil {
		log.Err(err).Msg("Forgot password: failed to create client")
		redirectWithError(w, r, errorPath, "Password reset is unavailable")
		return false
	}
	if _, err := api.ForgetPassword(r.Context(), email); err != nil {
		formError(w, r, errorPath, err, "Failed to send the reset code")
		return false
	}
	s.SetResetEmailCookie(w, email, r, resetEmailMaxAge)
	return true
}

func (s *Server) VerifyOTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formValues(w, r)
		if err != nil {
			redirectWithError(w, r, RouteVerifyOTP, "Invalid request")
			return
		}
		email := resetEmail(r)
		if email == "" {
			email = strings.TrimSpace(form.Get("email"))
		}
		if email == "" {
			redirectWithError(w, r, RouteForgotPassword, "Email not found. Please request a new one.")
			return
		}

		api, err := s.anonymousAPI()
		if err != nil {
			log.Err(err).Msg("Verify OTP: failed to create client")
			redirectWithError(w, r, RouteVerifyOTP, "Password reset is unavailable")
			return
		}
		req := adminapi.VerifyOTPRequest{Email: email, OTP: strings.TrimSpace(form.Get("otp"))}
		if _, err := api.VerifyOTP(r.Context(), req); err != nil {
			formError(w, r, RouteVerifyOTP, err, "Invalid code")
			return
		}
		redirectSuccess(w, r, RouteResetPassword)
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, err := formValues(w, r)
		if err != nil {
			redirectWithError(w, r, RouteResetPassword, "Invalid request")
			return
		}
		email := resetEmail(r)
		if email == "" {
			email = strings.TrimSpace(form.Get("email"))
		}
		if email == "" {
			redirectWithError(w, r, RouteForgotPassword, "Email not found. Please request a new one.")
			return
		}

		api, err := s.anonymousAPI()
		if err != nil {
			log.Err(err).Msg("Reset password: failed to create client")
			redirectWithError(w, r, RouteResetPassword, "Password reset is unavailable")
			return
		}
		req := adminapi.ResetPasswordRequest{
			Email:           email,
			Password:        form.Get("password"),
			ConfirmPassword: form.Get("confirmPassword"),
		}
		if _, err := api.ResetPassword(r.Context(), req); err != nil {
			formError(w, r, RouteResetPassword, err, "Failed to reset password")
			return
		}
		s.SetResetEmailCookie(w, "", r, -1)
		redirectSuccess(w, r, RouteLogin)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		form, err := formValues(w, r)
		if err != nil {
			redirectWithError(w, r, RouteUpdatePassword, "Invalid request")
			return
		}
		req := adminapi.ChangePasswordRequest{
			OldPassword:     form.Get("oldPassword"),
			Password:        form.Get("password"),
			ConfirmPassword: form.Get("confirmPassword"),
		}
		if _, err := session.API.ChangePassword(r.Context(), req); err != nil {
			formError(w, r, RouteUpdatePassword, err, "Failed to update password")
			return
		}
		redirectSuccess(w, r, RouteUpdateProfile)
	}
}
