package tool

// WebConfig configures the web kit.
type WebConfig struct {
	TavilyAPIKey string `json:"tavilyApiKey"`
	BaseURL      string `json:"baseUrl"`
	// Timeout bounds each remote call, in seconds.
	Timeout int `json:"timeout"`
}

func DefaultWebConfig() WebConfig {
	return WebConfig{BaseURL: "https://api.tavily.com", Timeout: 60}
}
