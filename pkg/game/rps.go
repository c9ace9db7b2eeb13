package game

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// rpsRules 剪刀石頭布變體：零和、兩名 agent、無經濟狀態
// 勝負關係：rock > scissors > paper > rock
type rpsRules struct{}

// rpsEmoji 回合回報用的 emoji 對照表（沿用原始輸出格式）
var rpsEmoji = map[ActionKind]string{
	ActionRock:     "✊",
	ActionPaper:    "✋",
	ActionScissors: "✌️",
}

// beats[x] 回傳 x 能擊敗的動作
var beats = map[ActionKind]ActionKind{
	ActionRock:     ActionScissors,
	ActionScissors: ActionPaper,
	ActionPaper:    ActionRock,
}

func (r *rpsRules) Kind() Kind { return KindRPS }

// rawDecision 對應 oracle 的回應 schema {"action": string}
type rawDecision struct {
	Action *string `json:"action"`
	Amount float64 `json:"amount"`
}

func (r *rpsRules) ParseAction(agent string, raw string) (Action, *IllegalityNote, error) {
	var d rawDecision
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &d); err != nil {
		return Action{}, nil, &DecisionFormatError{Agent: agent, Raw: raw, Reason: err}
	}
	if d.Action == nil {
		return Action{}, nil, &DecisionFormatError{Agent: agent, Raw: raw, Reason: fmt.Errorf("missing required field 'action'")}
	}

	kind := ActionKind(strings.ToLower(strings.TrimSpace(*d.Action)))
	if _, ok := beats[kind]; !ok {
		return Action{}, nil, &DecisionFormatError{Agent: agent, Raw: raw, Reason: fmt.Errorf("invalid action received: %s", *d.Action)}
	}
	return Action{Kind: kind}, nil, nil
}

// Settle RPS 沒有可變的經濟狀態，動作本身即為成交結果
func (r *rpsRules) Settle(st *AgentState, act Action, mkt *MarketState) (Action, *IllegalityNote) {
	return act, nil
}

// DetermineWinner 純函式：兩個同時出的動作 → 勝負
// 對調標籤具對稱性：determineWinner(a,b) 為 A 勝 ⟺ determineWinner(b,a) 為 B 勝
func DetermineWinner(a, b Action) string {
	if a.Kind == b.Kind {
		return "draw"
	}
	if beats[a.Kind] == b.Kind {
		return "A wins"
	}
	return "B wins"
}

func (r *rpsRules) ResolveRound(states []*AgentState, acts []Action, board *Scoreboard, mkt *MarketState) string {
	// 兩個動作都到齊才判定，orchestrator 保證不會部分結算
	a, b := states[0], states[1]
	switch DetermineWinner(acts[0], acts[1]) {
	case "A wins":
		board.Wins[a.Name]++
		return fmt.Sprintf("%s wins", a.Name)
	case "B wins":
		board.Wins[b.Name]++
		return fmt.Sprintf("%s wins", b.Name)
	default:
		board.Draws++
		return "draw"
	}
}

// EvolveState RPS 沒有共享環境狀態需要推進
func (r *rpsRules) EvolveState(mkt *MarketState) {}

func (r *rpsRules) Summarize(states []*AgentState, board *Scoreboard, mkt *MarketState, rounds int) string {
	var sb strings.Builder
	sb.WriteString("🏆 Final Score:\n")
	for _, st := range states {
		fmt.Fprintf(&sb, "🎯 %s Wins: %d\n", st.Name, board.Wins[st.Name])
	}
	fmt.Fprintf(&sb, "🤝 Draws: %d\n", board.Draws)
	fmt.Fprintf(&sb, "🔄 Total Rounds: %d", rounds)
	return sb.String()
}

func (r *rpsRules) Describe(act Action) string {
	return fmt.Sprintf("%s %s", act.Kind, rpsEmoji[act.Kind])
}

// DrawFractionTooHigh 健康檢查：和局比例超過約 35% 表示 oracle 可能在
// 重複自己，需要更多 entropy。純診斷訊號，不改變任何控制流程
func DrawFractionTooHigh(board *Scoreboard, rounds int) bool {
	if rounds == 0 {
		return false
	}
	return float64(board.Draws) > (float64(rounds)/3)*1.05
}
