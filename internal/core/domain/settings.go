package domain

// AIProvider identifies the embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
)

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.APIKey == "" {
		return false
	}
	return true
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI:
		return true
	default:
		return false
	}
}
