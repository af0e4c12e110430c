package notification

// SSETokenResponse is returned by the stream token endpoint
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
