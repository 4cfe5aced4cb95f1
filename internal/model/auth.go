package model

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageBody is the error shape returned by the remote API.
type MessageBody struct {
	Message string `json:"message"`
}
