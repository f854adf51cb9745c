package config

// APIConfig defines the HTTP session API.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as "Bearer <token>" on every request.
	Token          string   `json:"token"`
	AllowedOrigins []string `json:"allowed_origins"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
