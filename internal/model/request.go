package model

type RegisterRequest struct {
	Email           string  `json:"email" validate:"required,email"`
	Username        string  `json:"username" validate:"required,min=3,max=50,username"`
	FullName        *string `json:"full_name" validate:"omitempty,max=100"`
	Password        string  `json:"password" validate:"required,min=8,max=128,password_bytes,password_policy"`
	PasswordConfirm string  `json:"password_confirm" validate:"required,eqfield=Password"`
}

type CreateUserRequest struct {
	RegisterRequest
	IsActive    *bool `json:"is_active"`
	IsSuperuser bool  `json:"is_superuser"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,max=128,password_bytes,password_policy"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8,max=128,password_bytes,password_policy"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// NewUser is the validated, normalised input the services persist.
type NewUser struct {
	Email       string
	Username    string
	FullName    *string
	Password    string
	IsActive    bool
	IsSuperuser bool
}
