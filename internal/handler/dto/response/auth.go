package response

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}
