package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type SetActiveOrganizationRequest struct {
	OrganizationID string `json:"organizationId" validate:"required,uuid"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	AccessToken          string       `json:"access_token"`
	RefreshToken         string       `json:"refresh_token"`
	TokenType            string       `json:"token_type"`
	ExpiresIn            int64        `json:"expires_in"`
	ActiveOrganizationID string       `json:"active_organization_id"`
	User                 UserResponse `json:"user"`
}
