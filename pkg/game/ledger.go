package game

import (
	"fmt"
	"strings"
	"sync"
)

// Ledger 管理每個 agent 的歷史帳本，append-only、回合遞增
// epoch 內不修改不刪除，只在 epoch 重置時整本清空
type Ledger struct {
	mu      sync.RWMutex
	entries map[string][]HistoryEntry
}

// NewLedger 建立空帳本
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[string][]HistoryEntry),
	}
}

// Append 為指定 agent 追加一筆紀錄
func (l *Ledger) Append(agent string, e HistoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries[agent] = append(l.entries[agent], e)
}

// Recent 回傳指定 agent 最近 n 筆紀錄的副本
// hasHistory 為 false 表示帳本還是空的（第一回合），呼叫端必須
// 以明確的「還沒有歷史」訊號組 context，而不是丟一個空序列
func (l *Ledger) Recent(agent string, n int) (window []HistoryEntry, hasHistory bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.entries[agent]
	if len(all) == 0 {
		return nil, false
	}

	start := len(all) - n
	if start < 0 {
		start = 0
	}

	window = make([]HistoryEntry, len(all)-start)
	copy(window, all[start:])
	return window, true
}

// Full 回傳指定 agent 的完整歷史副本，供 epoch 結束時的統計使用
func (l *Ledger) Full(agent string) []HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := l.entries[agent]
	cp := make([]HistoryEntry, len(all))
	copy(cp, all)
	return cp
}

// Len 回傳指定 agent 的紀錄筆數
func (l *Ledger) Len(agent string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries[agent])
}

// Reset 清空整本帳本，僅在 epoch 重置時呼叫
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[string][]HistoryEntry)
}

// WindowText 將最近 n 筆紀錄排版成提示詞用的文字區塊
// 帳本為空時回傳明確的首回合訊號（沿用原始玩法：開局出一手沒人猜得到的）
func (l *Ledger) WindowText(agent string, n int) string {
	window, hasHistory := l.Recent(agent, n)
	if !hasHistory {
		return "(there is no history of actions yet, this is the first move, open with a random move no one can guess)"
	}

	var sb strings.Builder
	sb.WriteString("here is the history of your recent actions:\n\n")
	for _, e := range window {
		if e.Amount > 0 {
			fmt.Fprintf(&sb, "round %d: %s %g at price %.2f\n", e.Round, e.Action, e.Amount, e.Price)
		} else {
			fmt.Fprintf(&sb, "round %d: %s\n", e.Round, e.Action)
		}
	}
	sb.WriteString("\nuse this history to make sure you don't repeat a pattern of actions that can be guessed")
	return sb.String()
}
