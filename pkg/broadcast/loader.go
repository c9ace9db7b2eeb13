package broadcast

import (
	"log/slog"

	"colosseum/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

// LoadFromConfig acts as the central orchestration point for dynamic
// broadcaster initialization. It iterates through the provided configuration
// map, resolves factories, and registers the resulting broadcasters with
// the Manager.
func LoadFromConfig(mgr *Manager, configs map[string]jsoniter.RawMessage, system *config.SystemConfig) {
	for name, rawConfig := range configs {
		factory, ok := GetBroadcasterFactory(name)
		if !ok {
			slog.Warn("Unknown broadcaster type", "name", name)
			continue
		}

		b, err := factory.Create(rawConfig, system)
		if err != nil {
			slog.Error("Failed to create broadcaster", "name", name, "error", err)
			continue
		}

		// If Create returns nil (e.g., certain conditions not met but not an error), skip
		if b == nil {
			continue
		}

		mgr.Register(b)
		slog.Info("Broadcaster registered", "name", name)
	}
}
