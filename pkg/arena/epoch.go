package arena

import (
	"context"
	"log/slog"
	"time"

	"colosseum/pkg/config"
	"colosseum/pkg/game"
	"colosseum/pkg/monitor"
)

// Run 執行 epoch 迴圈：固定回合數 → 總結 → 全狀態重置，
// repeat 模式下無限重跑，否則跑完一個 epoch 就結束
// 任何回合的硬錯誤直接往上傳，不保存部分 epoch 的結果
func (e *Engine) Run(ctx context.Context, reloadCh <-chan struct{}) error {
	for {
		e.epoch++
		if err := e.resetEpoch(); err != nil {
			return err
		}

		slog.Info("🏟️ Epoch starting", "epoch", e.epoch, "game", string(e.rules.Kind()), "rounds", e.cfg.Game.Rounds, "concurrent", e.cfg.Game.Concurrent)

		start := time.Now()
		for round := 1; round <= e.cfg.Game.Rounds; round++ {
			if err := e.playRound(ctx, round); err != nil {
				return err
			}
		}
		elapsed := time.Since(start)

		summary := e.rules.Summarize(e.agents, e.board, e.mkt, e.cfg.Game.Rounds)

		// 和局比例健檢只對 RPS 有意義，而且只是診斷訊號
		entropyWarning := false
		if e.rules.Kind() == game.KindRPS {
			entropyWarning = game.DrawFractionTooHigh(e.board, e.cfg.Game.Rounds)
		}

		report := monitor.EpochReport{
			Timestamp:      time.Now(),
			Epoch:          e.epoch,
			Summary:        summary,
			Elapsed:        elapsed,
			EntropyWarning: entropyWarning,
		}
		if e.mon != nil {
			e.mon.OnEpoch(report)
		}
		if e.bc != nil {
			e.bc.PublishEpoch(report)
		}

		if !e.cfg.Game.Repeat {
			return nil
		}

		// epoch 邊界才消費 roster 變動訊號，epoch 進行中設定不可變
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-reloadCh:
			e.reloadConfig()
		default:
		}
	}
}

// reloadConfig 重新讀取 config.json，讓下一個 epoch 用新的 roster 開局
// 讀取失敗就留在舊設定上繼續跑，只記警告
func (e *Engine) reloadConfig() {
	cfg, _, err := config.Load()
	if err != nil {
		slog.Warn("Roster reload failed, keeping current config", "error", err)
		return
	}

	rules, err := game.New(game.Kind(cfg.Game.Kind), cfg.Game.Volatility)
	if err != nil {
		slog.Warn("Roster reload failed, keeping current config", "error", err)
		return
	}

	e.cfg = cfg
	e.rules = rules
	slog.Info("✅ Roster reloaded, applies from next epoch", "agents", len(cfg.Agents), "game", cfg.Game.Kind)
}
