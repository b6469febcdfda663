package backend

// Credentials is the request body for /auth/login and /auth/signup
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User represents the authenticated account
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AuthResponse represents the response from /auth/login and /auth/signup
type AuthResponse struct {
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token"` // null on signup while email confirmation is pending
	TokenType   string `json:"token_type,omitempty"`
	User        User   `json:"user"`
}

// MeResponse represents the response from /auth/me
type MeResponse struct {
	User User `json:"user"`
}

// ErrorResponse is the error envelope the server returns on non-2xx
type ErrorResponse struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}
