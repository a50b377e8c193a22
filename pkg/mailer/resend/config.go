package resend

// Config holds Resend provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey string `yaml:"api_key" env:"RESEND_API_KEY"`
}

// Enabled reports whether the provider is configured.
func (c Config) Enabled() bool { return c.APIKey != "" }
