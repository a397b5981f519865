package server

import "strings"

// consolePages maps every page route to its title. Each page is a shell that
// loads its data from the JSON API.
var consolePages = map[string]string{
	RouteLogin:          "Login",
	RouteForgotPassword: "Forgot Password",
	RouteVerifyOTP:      "Verify Code",
	RouteResetPassword:  "Reset Password",
	RouteDashboard:      "Dashboard",
	RouteUpdateProfile:  "Update Profile",
	RouteUpdatePassword: "Update Password",
	RouteAdminProfile:   "Admin Profile",
	RouteUsers:          "Users",
	RouteUsersCreate:    "Create User",
	RouteUsersEdit:      "Edit User",
	RouteTeams:          "Teams",
	RouteEvents:         "Events",
	RouteTeamTypes:      "Team Types",
	RouteAgeTypes:       "Age Types",
	RouteSeasonTypes:    "Season Types",
	RouteGameTypes:      "Game Types",
	RouteFAQ:            "FAQ",
	RouteFAQCreate:      "Create FAQ",
	RouteFAQEdit:        "Edit FAQ",
	RouteTerms:          "Terms & Conditions",
	RouteTermsCreate:    "Create Terms & Conditions",
	RoutePrivacy:        "Privacy Policy",
	RoutePrivacyCreate:  "Create Privacy Policy",
	RouteContacts:       "Contacts",
	RouteSettings:       "Settings",
}

// publicRoutes are only for signed-out users; signed-in users are sent to their profile.
var publicRoutes = map[string]bool{
	RouteLogin:          true,
	RouteForgotPassword: true,
	RouteVerifyOTP:      true,
	RouteResetPassword:  true,
}

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// PAGES
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.PageHandler("Home"), s.HTMLMiddleWare()...))
	for route, title := range consolePages {
		s.RegisterRouteHandler("GET "+route, ChainMiddleware(s.PageHandler(title), s.HTMLMiddleWare()...))
	}

	// AUTH
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthVerifyOTP, ChainMiddleware(s.VerifyOTPHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthResendOTP, ChainMiddleware(s.ResendOTPHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthResetPassword, ChainMiddleware(s.ResetPasswordHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthChangePassword, ChainMiddleware(s.ChangePasswordHandler(), s.HTMLMiddleWare(s.RequireSessionPage)...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionInfoHandler(), s.APIMiddleware()...))

	// PROFILE & USERS
	s.RegisterRouteHandler("GET "+RouteAPIProfile, ChainMiddleware(s.GetProfileHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIProfile, ChainMiddleware(s.UpdateProfileHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIUsers, ChainMiddleware(s.ListUsersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIUsers, ChainMiddleware(s.RegisterUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIUser, ChainMiddleware(s.GetUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIUser, ChainMiddleware(s.UpdateUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPIUser, ChainMiddleware(s.DisableUserHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIUserHide, ChainMiddleware(s.ToggleUserVisibilityHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIUserRestore, ChainMiddleware(s.RestoreUserHandler(), s.APIMiddleware()...))

	// CONTENT
	s.RegisterRouteHandler("GET "+RouteAPIContent, ChainMiddleware(s.GetContentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIContent, ChainMiddleware(s.CreateContentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIContentItem, ChainMiddleware(s.GetContentItemHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteAPIContentItem, ChainMiddleware(s.UpdateContentItemHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPIContentItem, ChainMiddleware(s.DeleteContentItemHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIContacts, ChainMiddleware(s.ListContactsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIContact, ChainMiddleware(s.GetContactHandler(), s.APIMiddleware()...))

	// TEAMS, EVENTS & TYPES
	s.RegisterRouteHandler("GET "+RouteAPICollection, ChainMiddleware(s.ListResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPICollection, ChainMiddleware(s.CreateResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPICollectionItem, ChainMiddleware(s.GetResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPICollectionItem, ChainMiddleware(s.UpdateResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPICollectionItem, ChainMiddleware(s.DeleteResourceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIDropdowns, ChainMiddleware(s.DropdownOptionsHandler(), s.APIMiddleware()...))

	// SETTINGS & DASHBOARD
	s.RegisterRouteHandler("GET "+RouteAPISettings, ChainMiddleware(s.GetSettingsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISettings, ChainMiddleware(s.SaveSettingsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIDashboard, ChainMiddleware(s.DashboardHandler(), s.APIMiddleware()...))
}

func isPublicRoute(path string) bool {
	return publicRoutes[path]
}

// isProtectedRoute reports whether path is a console page that needs credentials.
func isProtectedRoute(path string) bool {
	if path == RouteHome {
		return true
	}
	if publicRoutes[path] {
		return false
	}
	if _, ok := consolePages[path]; ok {
		return true
	}
	return strings.HasPrefix(path, "/users/edit/") || strings.HasPrefix(path, "/faq/edit/")
}
