package user

type credentialsInput struct {
	Body credentials
}

type credentials struct {
	Email    string `json:"email" doc:"Account email"`
	Password string `json:"password" doc:"Account password"`
}

type exchangeInput struct {
	Body exchangeRequest
}

type exchangeRequest struct {
	ProviderToken string `json:"provider_token" doc:"Access token issued by the identity provider"`
}

type authOutput struct {
	Body AuthResponse
}

type AuthResponse struct {
	Token string  `json:"token" doc:"Bearer JWT for the sync API"`
	User  Account `json:"user"`
}

type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
