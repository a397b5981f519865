package server

// Route path constants
// All console routes are defined here to ensure consistency and prevent typos
const (
	// Pages - Public (signed-out only)
	RouteLogin          = "/login"
	RouteForgotPassword = "/forgot-password"
	RouteVerifyOTP      = "/forgot-password/verify"
	RouteResetPassword  = "/forgot-password/verify/reset-password"

	// Pages - Protected
	RouteHome           = "/"
	RouteDashboard      = "/dashboard"
	RouteUpdateProfile  = "/update-profile"
	RouteUpdatePassword = "/update-password"
	RouteAdminProfile   = "/admin-profile"
	RouteUsers          = "/users"
	RouteUsersCreate    = "/users/create"
	RouteUsersEdit      = "/users/edit/{id}"
	RouteTeams          = "/teams"
	RouteEvents         = "/events"
	RouteTeamTypes      = "/team-types"
	RouteAgeTypes       = "/age-types"
	RouteSeasonTypes    = "/season-types"
	RouteGameTypes      = "/game-types"
	RouteFAQ            = "/faq"
	RouteFAQCreate      = "/faq/create"
	RouteFAQEdit        = "/faq/edit/{id}"
	RouteTerms          = "/terms"
	RouteTermsCreate    = "/terms/create"
	RoutePrivacy        = "/privacy"
	RoutePrivacyCreate  = "/privacy/create"
	RouteContacts       = "/contacts"
	RouteSettings       = "/settings"

	// Auth Routes - form posts, HTMX aware
	RouteAuthLogin          = "/auth/login"
	RouteAuthLogout         = "/auth/logout"
	RouteAuthForgotPassword = "/auth/forgot-password"
	RouteAuthVerifyOTP      = "/auth/verify-otp"
	RouteAuthResendOTP      = "/auth/resend-otp"
	RouteAuthResetPassword  = "/auth/reset-password"
	RouteAuthChangePassword = "/auth/change-password"
	RouteAuthSession        = "/auth/session"

	// JSON API Routes - forwarded to the upstream API with the session's credentials
	RouteAPIProfile        = "/api/profile"
	RouteAPIUsers          = "/api/users"
	RouteAPIUser           = "/api/users/{id}"
	RouteAPIUserHide       = "/api/users/{id}/hide"
	RouteAPIUserRestore    = "/api/users/{id}/restore"
	RouteAPIContent        = "/api/content/{kind}"
	RouteAPIContentItem    = "/api/content/{kind}/{id}"
	RouteAPIContacts       = "/api/contacts"
	RouteAPIContact        = "/api/contacts/{id}"
	RouteAPICollection     = "/api/resources/{collection}"
	RouteAPICollectionItem = "/api/resources/{collection}/{id}"
	RouteAPIDropdowns      = "/api/dropdown-options"
	RouteAPISettings       = "/api/settings"
	RouteAPIDashboard      = "/api/dashboard"

	RouteHealth = "/healthz"
)
