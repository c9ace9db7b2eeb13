package broadcast

import (
	"fmt"
	"log"
	"sync"

	"colosseum/pkg/monitor"
)

// Broadcaster 定義一個對外的回報通道
// 每個已結算回合與每個 epoch 總結都會推送給所有已註冊的 Broadcaster，
// 推送失敗只記警告，絕不影響模擬本身的控制流程
type Broadcaster interface {
	// ID 回傳平台識別字串（例如 "web", "telegram"）
	ID() string

	// Start 啟動通道
	Start() error

	// Stop 停止通道
	Stop() error

	// OnRound 推送一個已結算的回合
	OnRound(r monitor.RoundReport)

	// OnEpoch 推送 epoch 總結
	OnEpoch(e monitor.EpochReport)
}

// Manager 負責管理所有的 Broadcasters 並統一派送回報
type Manager struct {
	broadcasters map[string]Broadcaster
	mu           sync.RWMutex
}

// NewManager 建立一個新的 Manager
func NewManager() *Manager {
	return &Manager{
		broadcasters: make(map[string]Broadcaster),
	}
}

// Register 註冊一個 Broadcaster
func (m *Manager) Register(b Broadcaster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasters[b.ID()] = b
}

// StartAll 啟動所有已註冊的 Broadcasters
func (m *Manager) StartAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, b := range m.broadcasters {
		log.Printf("Starting broadcaster: %s", id)
		if err := b.Start(); err != nil {
			return fmt.Errorf("failed to start broadcaster %s: %w", id, err)
		}
	}
	return nil
}

// StopAll 停止所有 Broadcasters
func (m *Manager) StopAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, b := range m.broadcasters {
		log.Printf("Stopping broadcaster: %s", id)
		if err := b.Stop(); err != nil {
			log.Printf("Error stopping broadcaster %s: %v", id, err)
		}
	}
}

// PublishRound 將一個已結算回合派送到所有通道
func (m *Manager) PublishRound(r monitor.RoundReport) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.broadcasters {
		b.OnRound(r)
	}
}

// PublishEpoch 將 epoch 總結派送到所有通道
func (m *Manager) PublishEpoch(e monitor.EpochReport) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.broadcasters {
		b.OnEpoch(e)
	}
}

// Count 回傳已註冊的通道數量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.broadcasters)
}

