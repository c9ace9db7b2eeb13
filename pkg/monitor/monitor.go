package monitor

import "time"

// MoveReport 一名 agent 在單一回合的成交動作（已含 emoji 的顯示片段）
type MoveReport struct {
	Agent   string
	Display string
}

// RoundReport 代表一個已結算回合的監控訊息
type RoundReport struct {
	Timestamp   time.Time
	Epoch       int
	Round       int
	TotalRounds int
	Moves       []MoveReport
	Result      string
	Price       float64 // market 變體的當前價格，RPS 為 0
}

// EpochReport 代表一個 epoch 結束時的總結
type EpochReport struct {
	Timestamp      time.Time
	Epoch          int
	Summary        string
	Elapsed        time.Duration
	EntropyWarning bool // 和局比例過高，oracle 可能在重複自己
}

// Monitor 介面定義了監控器的行為
type Monitor interface {
	// Start 啟動監控器
	Start() error

	// Stop 停止監控器
	Stop() error

	// OnRound 接收並顯示一個已結算回合
	OnRound(r RoundReport)

	// OnEpoch 接收並顯示 epoch 總結
	OnEpoch(e EpochReport)
}
