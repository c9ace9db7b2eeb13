package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"colosseum/pkg/arena"
	"colosseum/pkg/broadcast"
	_ "colosseum/pkg/broadcast/autoload" // 自動註冊 Broadcasters
	"colosseum/pkg/config"
	"colosseum/pkg/game"
	"colosseum/pkg/monitor"
	"colosseum/pkg/oracle"
	_ "colosseum/pkg/oracle/autoload" // 自動註冊 Oracle Providers
	"colosseum/pkg/persistence"
)

func main() {
	monitor.PrintBanner()

	log.Println("==========================================")

	// --- 0. 讀取設定檔 ---
	cfg, sysCfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v\n", err)
	}
	monitor.SetupSlog(sysCfg.LogLevel)

	// --- 1. Oracle 設定 ---
	client, err := oracle.NewFromConfig(cfg.Oracle, sysCfg)
	if err != nil {
		log.Fatalf("❌ Failed to init oracle client: %v\n", err)
	}

	// --- 2. 遊戲規則 ---
	rules, err := game.New(game.Kind(cfg.Game.Kind), cfg.Game.Volatility)
	if err != nil {
		log.Fatalf("❌ Invalid game config: %v\n", err)
	}

	// --- 3. 稽核庫（可選）---
	var store *persistence.DB
	if sysCfg.AuditDB != "" {
		store, err = persistence.Open(sysCfg.AuditDB)
		if err != nil {
			log.Printf("⚠️ Warning: audit store disabled: %v\n", err)
			store = nil
		}
	}

	// --- 4. 回報通道 ---
	mon := monitor.NewCLIMonitor()
	_ = mon.Start()

	bc := broadcast.NewManager()
	broadcast.LoadFromConfig(bc, cfg.Broadcast, sysCfg)
	if err := bc.StartAll(); err != nil {
		log.Fatalf("❌ Failed to start broadcasters: %v\n", err)
	}

	// --- 5. 訊號處理與 roster 監看 ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal. Stopping services...")
		cancel()
	}()

	reloadCh := config.WatchRoster(ctx, "config.json")

	// --- 6. 開跑 ---
	engine := arena.NewEngine(client, rules, cfg, sysCfg, mon, bc, store)
	runErr := engine.Run(ctx, reloadCh)

	bc.StopAll()
	_ = mon.Stop()
	if store != nil {
		store.Close()
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		// 傳播上來的都是硬錯誤，分類只為了診斷訊息
		var transportErr *oracle.TransportError
		var formatErr *game.DecisionFormatError
		switch {
		case errors.As(runErr, &transportErr):
			log.Printf("❌ Error communicating with oracle: %v\n", transportErr)
		case errors.As(runErr, &formatErr):
			log.Printf("❌ Error parsing oracle decision: %v\n", formatErr)
		default:
			log.Printf("❌ Unexpected error: %v\n", runErr)
		}
		os.Exit(1)
	}

	log.Println("Bye!")
}
