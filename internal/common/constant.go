package common

const (
	// TokenCookieName is the cookie that carries the session token.
	TokenCookieName = "token"

	// AuthorizationHeaderName carries "Bearer <token>".
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName is echoed back on every response.
	RequestIDHeaderName = "X-Request-ID"

	RoleUser  = "user"
	RoleAdmin = "admin"
)
