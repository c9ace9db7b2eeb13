package telegram

import (
	"fmt"

	"colosseum/pkg/broadcast"
	"colosseum/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TelegramFactory 負責建立 Telegram notifiers
type TelegramFactory struct{}

// Create 實作 broadcast.Factory
func (f *TelegramFactory) Create(rawConfig jsoniter.RawMessage, system *config.SystemConfig) (broadcast.Broadcaster, error) {
	var tgCfg TelegramConfig
	if err := json.Unmarshal(rawConfig, &tgCfg); err != nil {
		return nil, fmt.Errorf("failed to parse telegram config: %w", err)
	}

	if tgCfg.Token == "" {
		return nil, fmt.Errorf("missing telegram token")
	}
	if tgCfg.ChatID == 0 {
		return nil, fmt.Errorf("missing telegram chat_id")
	}

	return NewTelegramNotifier(tgCfg)
}

func init() {
	broadcast.RegisterBroadcaster("telegram", &TelegramFactory{})
}
