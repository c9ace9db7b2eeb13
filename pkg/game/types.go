package game

// Kind 標識遊戲變體
type Kind string

const (
	KindRPS    Kind = "rps"    // 剪刀石頭布（零和，兩名 agent）
	KindMarket Kind = "market" // widget 商品市場（經濟結算，N 名 agent）
)

// ActionKind 列舉所有變體的合法動作標籤
// 解析時採嚴格白名單，標籤不在表內即視為格式錯誤
type ActionKind string

const (
	// RPS 變體
	ActionRock     ActionKind = "rock"
	ActionPaper    ActionKind = "paper"
	ActionScissors ActionKind = "scissors"

	// Market 變體
	ActionBuy  ActionKind = "buy"
	ActionSell ActionKind = "sell"
	ActionHold ActionKind = "hold"
)

// Action 是 oracle 回傳的結構化決策
// Amount 僅 market 變體有意義，hold 時一律為 0
type Action struct {
	Kind   ActionKind `json:"action"`
	Amount float64    `json:"amount,omitempty"`
}

// HistoryEntry 記錄一個 agent 在某回合「實際成交」的動作
// 建立後不可變：入帳的是結算後的動作，不是 agent 原本要求的動作
type HistoryEntry struct {
	Round  int        `json:"round"`
	Action ActionKind `json:"action"`
	Amount float64    `json:"amount"`
	Price  float64    `json:"price"`
}

// AgentState 每個 agent 的可變狀態，epoch 開始時由設定檔建立
// 不變量：Credits >= 0 且 Widgets >= 0，違反的動作在結算前即被拒絕
type AgentState struct {
	Name        string
	Personality string

	// Market 變體欄位，RPS 不使用
	Credits       float64
	Widgets       int
	ValueEstimate float64 // agent 的私有估值，僅供提示詞參考，不參與結算
}

// NetWorth 以當前價格即時計算淨值，永不快取以免過期
func (a *AgentState) NetWorth(currentPrice float64) float64 {
	return a.Credits + float64(a.Widgets)*currentPrice
}

// MarketState 整個 process 共享的環境狀態，由 epoch controller 獨佔持有
// 每回合由價格演化更新一次，其餘地方唯讀
type MarketState struct {
	CurrentPrice float64
	Round        int
}

// Scoreboard RPS 變體的勝負計數，epoch 結束時歸零
type Scoreboard struct {
	Wins  map[string]int
	Draws int
}

// NewScoreboard 建立空計分板
func NewScoreboard(names ...string) *Scoreboard {
	wins := make(map[string]int, len(names))
	for _, n := range names {
		wins[n] = 0
	}
	return &Scoreboard{Wins: wins}
}

// Reset 將所有計數歸零
func (s *Scoreboard) Reset() {
	for n := range s.Wins {
		s.Wins[n] = 0
	}
	s.Draws = 0
}
