package broadcast

import (
	"colosseum/pkg/config"

	jsoniter "github.com/json-iterator/go"
)

// Factory defines the abstract interface for platform-specific
// broadcaster creators. This allows the system to support new platforms
// (e.g., Discord, Slack) without modifying the core engine logic.
type Factory interface {
	// Create instantiates a concrete Broadcaster implementation using the
	// provided configuration and shared system resources.
	Create(rawConfig jsoniter.RawMessage, system *config.SystemConfig) (Broadcaster, error)
}

// broadcasterRegistry is an internal global map storing the mapping between
// platform names (e.g., "telegram") and their factory implementations.
var broadcasterRegistry = make(map[string]Factory)

// RegisterBroadcaster adds a new Factory to the global internal registry.
// This is typically called during the package's init() phase.
func RegisterBroadcaster(name string, factory Factory) {
	broadcasterRegistry[name] = factory
}

// GetBroadcasterFactory retrieves a registered Factory by platform name.
func GetBroadcasterFactory(name string) (Factory, bool) {
	f, ok := broadcasterRegistry[name]
	return f, ok
}
