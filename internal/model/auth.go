package model

type AccessToken struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type RegisterResponse struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type GetProfileRequest struct{}

type GetProfileResponse struct {
	User User `json:"user"`
}

type UpdateProfileRequest struct {
	Name                 string                `json:"name"`
	Phone                string                `json:"phone"`
	PaymentSettings      *PaymentSettings      `json:"payment_settings"`
	NotificationSettings *NotificationSettings `json:"notification_settings"`
}

type UpdateProfileResponse struct {
	User User `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type ChangePasswordResponse struct{}
