package web

import (
	"fmt"

	"colosseum/pkg/broadcast"
	"colosseum/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory 負責建立觀戰通道
type WebFactory struct{}

// Create 實作 broadcast.Factory
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, system *config.SystemConfig) (broadcast.Broadcaster, error) {
	var pCfg WebConfig
	if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse web config: %w", err)
	}

	return NewWebSpectator(pCfg), nil
}

func init() {
	broadcast.RegisterBroadcaster("web", &WebFactory{})
}
