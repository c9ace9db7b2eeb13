package oracle

import (
	"fmt"
	"log"
	"time"

	"colosseum/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NewFromConfig 根據設定檔建立 oracle Client
func NewFromConfig(rawOracle jsoniter.RawMessage, system *config.SystemConfig) (Client, error) {
	var allAtomicClients []Client

	if rawOracle == nil {
		return nil, fmt.Errorf("missing 'oracle' config")
	}

	var groups []ProviderGroupConfig
	if err := json.Unmarshal(rawOracle, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse 'oracle' config: %v", err)
	}

	for _, group := range groups {
		log.Printf("Loading oracle group: %s (%d models)", group.Type, len(group.Models))

		factory, ok := GetProviderFactory(group.Type)
		if !ok {
			log.Printf("⚠️ Unknown provider type: %s", group.Type)
			continue
		}

		clients, err := factory.Create(group, system)
		if err != nil {
			log.Printf("⚠️ Failed to create clients for %s: %v", group.Type, err)
			continue
		}

		allAtomicClients = append(allAtomicClients, clients...)
	}

	if len(allAtomicClients) == 0 {
		return nil, fmt.Errorf("no oracle clients could be initialized")
	}

	log.Printf("✅ Total atomic oracle clients initialized: %d", len(allAtomicClients))

	// 如果只有一個，直接回傳
	if len(allAtomicClients) == 1 {
		return allAtomicClients[0], nil
	}

	// 否則包裹在 FallbackClient 中，並代入系統層級的重試設定
	return &FallbackClient{
		Clients:    allAtomicClients,
		MaxRetries: system.MaxRetries,
		RetryDelay: time.Duration(system.RetryDelayMs) * time.Millisecond,
	}, nil
}
