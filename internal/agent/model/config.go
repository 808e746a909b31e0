package model

// ================ Config ================

type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"720h"`
}

type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.1"`
}

type HandoffModelConfig struct {
	Model       string  `envconfig:"HANDOFF_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"HANDOFF_MAX_TOKENS" default:"800"`
	Temperature float32 `envconfig:"HANDOFF_TEMPERATURE" default:"0.3"`
}

type GuardrailConfig struct {
	MaxMessageChars   int `envconfig:"GUARDRAIL_MAX_MESSAGE_CHARS" default:"2000"`
	RequestsPerMinute int `envconfig:"GUARDRAIL_REQUESTS_PER_MINUTE" default:"30"`
}
