package ollama

import (
	"log"

	"colosseum/pkg/config"
	"colosseum/pkg/oracle"
)

// OllamaFactory handles creation of Ollama Clients
type OllamaFactory struct{}

// Create implements ProviderFactory
func (f *OllamaFactory) Create(cfg oracle.ProviderGroupConfig, sys *config.SystemConfig) ([]oracle.Client, error) {
	var clients []oracle.Client

	for _, model := range cfg.Models {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = sys.OllamaDefaultURL
		}
		client, err := NewOllamaClient(model, baseURL, cfg.Options)
		if err != nil {
			log.Printf("Failed to create Ollama client for model %s: %v", model, err)
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}

func init() {
	oracle.RegisterProvider("ollama", &OllamaFactory{})
}
