package schema

// Account.

// RegisterRequest creates an account (self-service or by an admin).
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest changes the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangeUsernameRequest renames the caller.
type ChangeUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

// ChangeEmailRequest changes the caller's email address.
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email"`
}

// AvatarRequest selects a predefined avatar.
type AvatarRequest struct {
	Avatar string `json:"avatar"`
}

// User administration.

// UserUpdate is a partial admin update of a user; nil fields are left unchanged.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

// SetPasswordRequest sets another user's password.
type SetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// Downloads.

// StartDownloadRequest starts a download source.
type StartDownloadRequest struct {
	CreateSymlinks bool `json:"create_symlinks"`
}

// CleanupRequest deletes files older than Days.
type CleanupRequest struct {
	Days int `json:"days"`
}
