package game

import "fmt"

// Rules 定義單一遊戲變體的能力介面
// RPS 與 market 共用回合/epoch 編排骨架，差異全部收在這個介面後面
// 啟動時依設定選定一次，之後不再切換
type Rules interface {
	// Kind 回傳變體標籤
	Kind() Kind

	// ParseAction 將 oracle 的原始文字轉成合法 Action
	// 格式層失敗（非 JSON、缺欄位、標籤不在白名單）回傳 *DecisionFormatError
	// 語意層失敗（數量非數字或為負）則降級為 hold 並附上非 nil 的說明
	// 這個區分是刻意的：解析壞掉要讓回合停下來，貪心的 agent 只需要被夾住
	ParseAction(agent string, raw string) (Action, *IllegalityNote, error)

	// Settle 將已驗證的 Action 套用到 agent 狀態
	// 回傳實際成交的動作（可能被降級為 hold）與非 nil 的降級說明
	// 經濟合法性在這裡以當下價格重新檢查，防止並行收集期間的過期讀取
	Settle(st *AgentState, act Action, mkt *MarketState) (Action, *IllegalityNote)

	// ResolveRound 在所有 agent 的動作都結算完後產生回合結果
	// RPS：判定勝負並更新計分板；market：回報當前價格摘要
	ResolveRound(states []*AgentState, acts []Action, board *Scoreboard, mkt *MarketState) string

	// EvolveState 每回合推進一次共享環境狀態（market 的價格隨機漫步）
	// RPS 為 no-op
	EvolveState(mkt *MarketState)

	// Summarize 產生 epoch 結束時的總結文字，並指出贏家
	Summarize(states []*AgentState, board *Scoreboard, mkt *MarketState, rounds int) string

	// Describe 將動作轉成帶 emoji 的人類可讀片段，供回合回報使用
	Describe(act Action) string
}

// New 依 Kind 建立對應的規則實作
func New(kind Kind, volatility float64) (Rules, error) {
	switch kind {
	case KindRPS:
		return &rpsRules{}, nil
	case KindMarket:
		if volatility <= 0 || volatility >= 1 {
			return nil, fmt.Errorf("market volatility must be in (0,1), got %g", volatility)
		}
		return &marketRules{volatility: volatility}, nil
	default:
		return nil, fmt.Errorf("unknown game kind: %q", kind)
	}
}
