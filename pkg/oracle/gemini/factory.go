package gemini

import (
	"colosseum/pkg/config"
	"colosseum/pkg/oracle"
)

// GeminiFactory handles creation of Gemini Clients
type GeminiFactory struct{}

// Create implements ProviderFactory
func (f *GeminiFactory) Create(cfg oracle.ProviderGroupConfig, sys *config.SystemConfig) ([]oracle.Client, error) {
	var clients []oracle.Client

	// Cartesian Product: Models x Keys (prioritize models)
	for _, model := range cfg.Models {
		for _, key := range cfg.APIKeys {
			clients = append(clients, NewGeminiClient(key, model))
		}
	}
	return clients, nil
}

func init() {
	oracle.RegisterProvider("gemini", &GeminiFactory{})
}
