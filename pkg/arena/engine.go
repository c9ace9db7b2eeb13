package arena

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"colosseum/pkg/broadcast"
	"colosseum/pkg/config"
	"colosseum/pkg/game"
	"colosseum/pkg/monitor"
	"colosseum/pkg/oracle"
	"colosseum/pkg/persistence"
	"colosseum/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Engine 回合/epoch 編排器，整個模擬的唯一控制執行緒
// MarketState 與 Scoreboard 只在這條控制流上被改動：並行只發生在
// 「等 oracle 回話」的 I/O 邊界，絕不發生在狀態上
type Engine struct {
	client oracle.Client
	rules  game.Rules
	cfg    *config.Config
	sys    *config.SystemConfig
	mon    monitor.Monitor
	bc     *broadcast.Manager
	store  *persistence.DB // nil 表示停用稽核庫
	hist   *HistoryFile
	runID  string

	// epoch 內的可變狀態，resetEpoch 時整組重建
	agents []*game.AgentState
	ledger *game.Ledger
	board  *game.Scoreboard
	mkt    *game.MarketState
	epoch  int
}

// NewEngine 建立編排器
func NewEngine(
	client oracle.Client,
	rules game.Rules,
	cfg *config.Config,
	sys *config.SystemConfig,
	mon monitor.Monitor,
	bc *broadcast.Manager,
	store *persistence.DB,
) *Engine {
	return &Engine{
		client: client,
		rules:  rules,
		cfg:    cfg,
		sys:    sys,
		mon:    mon,
		bc:     bc,
		store:  store,
		hist:   NewHistoryFile(sys.HistoryFile),
		runID:  utils.GenerateID(),
		ledger: game.NewLedger(),
	}
}

// resetEpoch 從靜態設定重建全部可變狀態
// AgentState/MarketState/Scoreboard/Ledger 的生命週期由這裡獨佔管理
func (e *Engine) resetEpoch() error {
	e.agents = e.agents[:0]
	names := make([]string, 0, len(e.cfg.Agents))
	for _, a := range e.cfg.Agents {
		e.agents = append(e.agents, &game.AgentState{
			Name:          a.Name,
			Personality:   a.Personality,
			Credits:       a.Credits,
			Widgets:       a.Widgets,
			ValueEstimate: a.ValueEstimate,
		})
		names = append(names, a.Name)
	}
	e.board = game.NewScoreboard(names...)
	e.mkt = &game.MarketState{CurrentPrice: e.cfg.Game.InitialPrice}
	e.ledger.Reset()
	return e.hist.Reset()
}

// historyTalk 組歷史區塊：預設用結構化帳本窗口，
// raw_history 模式下改餵 history.txt 的原文（原始行為）
func (e *Engine) historyTalk(agent string) (string, error) {
	if e.cfg.Game.RawHistory {
		loaded, err := e.hist.Read()
		if err != nil {
			return "", err
		}
		if len(loaded) > 0 {
			return "here is the history of actions:\n\n" + loaded +
				"\nuse this history to make sure you don't repeat a pattern of actions that can be guessed", nil
		}
		return "(there is no history of actions yet, this is the first move, open with a random move no one can guess)", nil
	}
	return e.ledger.WindowText(agent, e.cfg.Game.HistoryWindow), nil
}

// opponentOf 回傳 RPS 變體裡另一名 agent 的名字
func (e *Engine) opponentOf(i int) string {
	for j, a := range e.agents {
		if j != i {
			return a.Name
		}
	}
	return ""
}

// playRound 跑完整一個回合：收集 → 驗證 → 結算 → 入帳 → 回報
// 任何一名 agent 的硬錯誤（格式/傳輸）都會讓整回合中止，
// 不做部分結算：RPS 缺一手算不出勝負，market 也要保住記錄順序的確定性
func (e *Engine) playRound(ctx context.Context, round int) error {
	// 價格演化固定在收集動作之前跑，讓同回合的驗證與結算看到同一個價格
	e.rules.EvolveState(e.mkt)
	e.mkt.Round = round

	prompts := make([]string, len(e.agents))
	for i, st := range e.agents {
		talk, err := e.historyTalk(st.Name)
		if err != nil {
			return err
		}
		in := promptInput{
			Agent:       st,
			Market:      e.mkt,
			HistoryTalk: talk,
			Round:       round,
			TotalRounds: e.cfg.Game.Rounds,
			Extra:       e.cfg.Game.ExtraStrategyLine,
		}
		if e.rules.Kind() == game.KindRPS {
			in.Opponent = e.opponentOf(i)
		}
		prompts[i] = buildPrompt(e.rules.Kind(), in)

		if e.sys.DebugPrompts {
			slog.Debug("Prompt", "agent", st.Name, "text", prompts[i])
		}
	}

	acts, notes, err := e.collectDecisions(ctx, prompts)
	if err != nil {
		return err
	}

	// 結算與入帳永遠依 roster 固定順序，與決策回來的先後無關，
	// 同一組決策下 concurrent 與 sequential 模式的結算順序必須一致
	applied := make([]game.Action, len(e.agents))
	for i, st := range e.agents {
		if notes[i] != nil {
			slog.Warn("⚠️ Economic illegality (parse)", "detail", notes[i].String())
		}
		act, note := e.rules.Settle(st, acts[i], e.mkt)
		if note != nil {
			slog.Warn("⚠️ Economic illegality (settlement)", "detail", note.String())
		}
		applied[i] = act

		// 每個 agent 每回合恰好入帳一筆，記的是實際成交的動作
		e.ledger.Append(st.Name, game.HistoryEntry{
			Round:  round,
			Action: act.Kind,
			Amount: act.Amount,
			Price:  e.mkt.CurrentPrice,
		})
	}

	result := e.rules.ResolveRound(e.agents, applied, e.board, e.mkt)

	now := time.Now()
	moves := make([]monitor.MoveReport, len(e.agents))
	parts := make([]string, len(e.agents))
	for i, st := range e.agents {
		display := e.rules.Describe(applied[i])
		moves[i] = monitor.MoveReport{Agent: st.Name, Display: display}
		parts[i] = fmt.Sprintf("%s: %s", st.Name, display)
	}

	line := fmt.Sprintf("%s - %s - Result: %s", now.Format(time.RFC3339), strings.Join(parts, " - "), result)
	if err := e.hist.AppendLine(line); err != nil {
		return err
	}

	// 稽核庫是外圍協作者，寫入失敗不該拖垮模擬本身
	if e.store != nil {
		for i, st := range e.agents {
			if err := e.store.RecordSettlement(persistence.AuditEntry{
				RunID:     e.runID,
				Epoch:     e.epoch,
				Round:     round,
				Agent:     st.Name,
				Action:    string(applied[i].Kind),
				Amount:    applied[i].Amount,
				Price:     e.mkt.CurrentPrice,
				Result:    result,
				CreatedAt: now,
			}); err != nil {
				slog.Warn("Failed to record settlement", "agent", st.Name, "error", err)
			}
		}
	}

	price := 0.0
	if e.rules.Kind() == game.KindMarket {
		price = e.mkt.CurrentPrice
	}
	report := monitor.RoundReport{
		Timestamp:   now,
		Epoch:       e.epoch,
		Round:       round,
		TotalRounds: e.cfg.Game.Rounds,
		Moves:       moves,
		Result:      result,
		Price:       price,
	}
	if e.mon != nil {
		e.mon.OnRound(report)
	}
	if e.bc != nil {
		e.bc.PublishRound(report)
	}

	if e.sys.Debug {
		slog.Debug("Round settled", "round", round, "result", result)
	}
	return nil
}

// collectDecisions 收齊所有 agent 的決策
// concurrent 模式下所有 oracle 請求同時在途，但結果一定等全部
// resolve（成功、降級或硬錯誤）之後才一起交給結算，沒有串流結算
func (e *Engine) collectDecisions(ctx context.Context, prompts []string) ([]game.Action, []*game.IllegalityNote, error) {
	acts := make([]game.Action, len(e.agents))
	notes := make([]*game.IllegalityNote, len(e.agents))

	decide := func(ctx context.Context, i int) error {
		st := e.agents[i]

		raw, err := e.client.Decide(ctx, prompts[i])
		if err != nil {
			return &oracle.TransportError{Agent: st.Name, Err: err}
		}

		if e.sys.Debug {
			slog.Debug("Raw decision", "agent", st.Name, "raw", raw)
		}

		act, note, perr := e.rules.ParseAction(st.Name, raw)
		if perr != nil {
			return perr
		}
		acts[i], notes[i] = act, note
		return nil
	}

	if e.cfg.Game.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i := range e.agents {
			g.Go(func() error {
				return decide(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	} else {
		for i := range e.agents {
			if err := decide(ctx, i); err != nil {
				return nil, nil, err
			}
		}
	}

	return acts, notes, nil
}
