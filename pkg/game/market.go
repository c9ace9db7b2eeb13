package game

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// marketRules widget 商品市場變體：挂 N 名 agent 對同一個價格做買賣
// 金流不變量（credits/widgets >= 0）在結算時以當下價格重新檢查
type marketRules struct {
	volatility float64
}

var marketEmoji = map[ActionKind]string{
	ActionBuy:  "📈",
	ActionSell: "📉",
	ActionHold: "🤝",
}

func (m *marketRules) Kind() Kind { return KindMarket }

// marketDecision 對應 oracle 的回應 schema {"action": string, "amount": number}
// Amount 先收 raw bytes：非數字的 amount 是語意錯誤（降級），不是格式錯誤
type marketDecision struct {
	Action *string             `json:"action"`
	Amount jsoniter.RawMessage `json:"amount"`
}

var legalMarketActions = map[ActionKind]bool{
	ActionBuy:  true,
	ActionSell: true,
	ActionHold: true,
}

func (m *marketRules) ParseAction(agent string, raw string) (Action, *IllegalityNote, error) {
	var d marketDecision
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &d); err != nil {
		return Action{}, nil, &DecisionFormatError{Agent: agent, Raw: raw, Reason: err}
	}
	if d.Action == nil {
		return Action{}, nil, &DecisionFormatError{Agent: agent, Raw: raw, Reason: fmt.Errorf("missing required field 'action'")}
	}

	kind := ActionKind(strings.ToLower(strings.TrimSpace(*d.Action)))
	if !legalMarketActions[kind] {
		return Action{}, nil, &DecisionFormatError{Agent: agent, Raw: raw, Reason: fmt.Errorf("invalid action received: %s", *d.Action)}
	}

	// hold 一律強制 amount = 0，無論 oracle 回了什麼
	if kind == ActionHold {
		return Action{Kind: ActionHold}, nil, nil
	}

	var amount float64
	if len(d.Amount) == 0 {
		return Action{Kind: ActionHold}, &IllegalityNote{
			Agent:     agent,
			Requested: Action{Kind: kind},
			Reason:    "missing amount",
		}, nil
	}
	if err := json.Unmarshal(d.Amount, &amount); err != nil {
		return Action{Kind: ActionHold}, &IllegalityNote{
			Agent:     agent,
			Requested: Action{Kind: kind},
			Reason:    fmt.Sprintf("non-numeric amount %s", string(d.Amount)),
		}, nil
	}
	if amount < 0 || amount != math.Trunc(amount) {
		return Action{Kind: ActionHold}, &IllegalityNote{
			Agent:     agent,
			Requested: Action{Kind: kind, Amount: amount},
			Reason:    "amount must be a non-negative whole number",
		}, nil
	}

	return Action{Kind: kind, Amount: amount}, nil, nil
}

// Settle 以結算當下的價格重新驗證後套用交易
// 驗證時與結算時的價格一定相同（價格演化固定在收集動作之前跑），
// 但仍然重新檢查：並行收集下 agent 狀態可能因其他設計改動而過期，
// 被拒絕的訂單一律整筆退回，絕不部分成交
func (m *marketRules) Settle(st *AgentState, act Action, mkt *MarketState) (Action, *IllegalityNote) {
	price := mkt.CurrentPrice

	switch act.Kind {
	case ActionBuy:
		cost := act.Amount * price
		if cost > st.Credits {
			return Action{Kind: ActionHold}, &IllegalityNote{
				Agent:     st.Name,
				Requested: act,
				Reason:    fmt.Sprintf("insufficient credits (cost %.2f > credits %.2f)", cost, st.Credits),
			}
		}
		st.Credits -= cost
		st.Widgets += int(act.Amount)
		return act, nil

	case ActionSell:
		if act.Amount > float64(st.Widgets) {
			return Action{Kind: ActionHold}, &IllegalityNote{
				Agent:     st.Name,
				Requested: act,
				Reason:    fmt.Sprintf("insufficient widgets (%g > %d)", act.Amount, st.Widgets),
			}
		}
		st.Widgets -= int(act.Amount)
		st.Credits += act.Amount * price
		return act, nil

	default: // hold
		return Action{Kind: ActionHold}, nil
	}
}

func (m *marketRules) ResolveRound(states []*AgentState, acts []Action, board *Scoreboard, mkt *MarketState) string {
	return fmt.Sprintf("price %.2f", mkt.CurrentPrice)
}

// EvolveState 有界隨機漫步：newPrice = max(1, price + U)，
// U ~ Uniform[-price·V, +price·V]。下限 1 避免非正價格讓買賣經濟退化
func (m *marketRules) EvolveState(mkt *MarketState) {
	u := (rand.Float64()*2 - 1) * mkt.CurrentPrice * m.volatility
	mkt.CurrentPrice = math.Max(1, mkt.CurrentPrice+u)
}

// Summarize 以淨值排名決定贏家，同淨值時依 roster 先後順序
func (m *marketRules) Summarize(states []*AgentState, board *Scoreboard, mkt *MarketState, rounds int) string {
	ranked := make([]*AgentState, len(states))
	copy(ranked, states)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NetWorth(mkt.CurrentPrice) > ranked[j].NetWorth(mkt.CurrentPrice)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Final Standings (price %.2f):\n", mkt.CurrentPrice)
	for i, st := range ranked {
		fmt.Fprintf(&sb, "%d. %s - net worth %.2f (credits %.2f, widgets %d)\n",
			i+1, st.Name, st.NetWorth(mkt.CurrentPrice), st.Credits, st.Widgets)
	}
	fmt.Fprintf(&sb, "🎉 Winner: %s\n", ranked[0].Name)
	fmt.Fprintf(&sb, "🔄 Total Rounds: %d", rounds)
	return sb.String()
}

func (m *marketRules) Describe(act Action) string {
	if act.Amount > 0 {
		return fmt.Sprintf("%s %g %s", act.Kind, act.Amount, marketEmoji[act.Kind])
	}
	return fmt.Sprintf("%s %s", act.Kind, marketEmoji[act.Kind])
}
