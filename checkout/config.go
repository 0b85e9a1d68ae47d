package checkout

import "time"

// Config is the configuration for the checkout application.
type Config struct {
	HTTPAddr string

	// GatewayBaseURL is the card-acquiring gateway, e.g. the sandbox
	// https://api.sandbox.checkout.com.
	GatewayBaseURL string
	// PublicKey authenticates tokenization. Safe to distribute.
	PublicKey string
	// SecretKey authenticates payments and lookups. In a real deployment
	// this credential stays server-side; both live here because both
	// protocol steps run in this one process.
	SecretKey string
	// GatewayTimeout bounds each gateway request. The 3DS challenge itself
	// is user-paced and happens outside this timeout.
	GatewayTimeout time.Duration

	// CallbackBaseURL is the externally reachable base the gateway
	// redirects to after the 3DS challenge. The two fixed callback targets
	// are derived from it.
	CallbackBaseURL string
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:        "localhost:8080",
		GatewayBaseURL:  "https://api.sandbox.checkout.com",
		GatewayTimeout:  30 * time.Second,
		CallbackBaseURL: "http://localhost:8080",
	}
}

// SuccessCallbackURL is the redirect target for a passed 3DS challenge.
func (c *Config) SuccessCallbackURL() string {
	return c.CallbackBaseURL + "/callbacks/3ds/success"
}

// FailureCallbackURL is the redirect target for a failed 3DS challenge.
func (c *Config) FailureCallbackURL() string {
	return c.CallbackBaseURL + "/callbacks/3ds/failure"
}
