package arena

import (
	"fmt"
	"strings"

	"colosseum/pkg/game"
)

// promptInput 組一次決策請求所需的全部 context
// oracle 不跨回合保存狀態，所有連續性都由這個結構餵進去
type promptInput struct {
	Agent       *game.AgentState
	Opponent    string // RPS 變體的對手名字
	Market      *game.MarketState
	HistoryTalk string // 已排版的歷史區塊（帳本窗口或 raw 檔案文字）
	Round       int
	TotalRounds int
	Extra       string // extra strategy line；寫越多回合越久，自行取捨
}

// buildPrompt 產生指定變體的提示詞
// 結尾固定要求 exact JSON：任何多餘文字都會讓解析失敗並中止回合，
// 這是刻意的，要讓提示詞本身的問題第一時間浮上來
func buildPrompt(kind game.Kind, in promptInput) string {
	var sb strings.Builder

	switch kind {
	case game.KindRPS:
		fmt.Fprintf(&sb, "you are %s and you are playing a game of rock paper scissors with %s\n", in.Agent.Name, in.Opponent)
	case game.KindMarket:
		fmt.Fprintf(&sb, "you are %s and you are trading widgets in a commodity market against other traders\n", in.Agent.Name)
	}

	if in.Agent.Personality != "" {
		sb.WriteString(in.Agent.Personality)
		sb.WriteString("\n")
	}

	if kind == game.KindMarket {
		fmt.Fprintf(&sb, "the current widget price is %.2f\n", in.Market.CurrentPrice)
		fmt.Fprintf(&sb, "you have %.2f credits and %d widgets\n", in.Agent.Credits, in.Agent.Widgets)
		if in.Agent.ValueEstimate > 0 {
			fmt.Fprintf(&sb, "you privately believe a widget is really worth about %.2f\n", in.Agent.ValueEstimate)
		}
	}

	sb.WriteString(in.HistoryTalk)
	sb.WriteString("\n")

	if in.Extra != "" {
		sb.WriteString(in.Extra)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "this is round %d of %d\n", in.Round, in.TotalRounds)

	switch kind {
	case game.KindRPS:
		sb.WriteString(`please only respond with exact JSON (in the format {"action": string}) and no other text`)
	case game.KindMarket:
		sb.WriteString(`please only respond with exact JSON (in the format {"action": "buy"|"sell"|"hold", "amount": number}) and no other text. amount must be 0 when action is hold`)
	}

	return sb.String()
}
