package config

// Config holds all configuration for the application.
type Config struct {
	DBName   string
	Port     string
	LogLevel string
	Slack    SlackConfig
	Turso    TursoConfig
	// ProjectID enables Pub/Sub event delivery when set.
	ProjectID string
	// AdminToken guards mutating routes. Empty disables the check.
	AdminToken string
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Enabled reports whether messages can be posted.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
