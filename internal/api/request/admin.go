package request

type AdminLoginRequest struct {
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

// SignInRequest is sent by the front-end after the identity provider
// authenticated a user.
type SignInRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
