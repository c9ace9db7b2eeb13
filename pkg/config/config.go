package config

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// AgentConfig 一名 agent 的靜態定義，epoch 開始時讀入後整個 epoch 不變
type AgentConfig struct {
	// Name is the unique identifier used in prompts, logs and the ledger.
	Name string `json:"name"`
	// Personality is free-form strategy text injected into the agent's prompt.
	Personality string `json:"personality"`
	// Credits is the starting credit balance (market game only).
	Credits float64 `json:"credits"`
	// Widgets is the starting widget inventory (market game only).
	Widgets int `json:"widgets"`
	// ValueEstimate is the agent's private belief about widget value.
	// Informational only, never enforced by settlement.
	ValueEstimate float64 `json:"value_estimate"`
}

// GameConfig 遊戲變體與 epoch 生命週期的控制項
type GameConfig struct {
	// Kind selects the game variant: "rps" or "market".
	Kind string `json:"kind"`
	// Rounds is the number of rounds per epoch.
	Rounds int `json:"rounds"`
	// Concurrent toggles whether all oracle requests for a round are
	// kept in flight simultaneously or issued strictly one at a time.
	Concurrent bool `json:"concurrent"`
	// Repeat loops epochs indefinitely when true; single shot when false.
	Repeat bool `json:"repeat"`
	// Volatility is the market price random-walk fraction V in (0,1).
	Volatility float64 `json:"volatility"`
	// InitialPrice is the widget price at epoch start (market game only).
	InitialPrice float64 `json:"initial_price"`
	// HistoryWindow is how many recent ledger entries go into each prompt.
	HistoryWindow int `json:"history_window"`
	// RawHistory feeds the append-only history.txt text into prompts
	// verbatim instead of the structured ledger window (original behavior).
	RawHistory bool `json:"raw_history"`
	// ExtraStrategyLine is appended to every prompt. The more you write
	// here the longer the rounds take, so it is a trade off.
	ExtraStrategyLine string `json:"extra_strategy_line"`
}

// Config 對應 config.json 的應用層設定
type Config struct {
	// Agents is the roster, in settlement/iteration order.
	Agents []AgentConfig `json:"agents"`
	// Game holds variant selection and epoch lifecycle controls.
	Game GameConfig `json:"game"`
	// Oracle holds the decision oracle provider groups in raw JSON,
	// decoded by the oracle package's provider registry.
	Oracle jsoniter.RawMessage `json:"oracle"`
	// Broadcast maps broadcaster identifiers (e.g. "web", "telegram")
	// to their specific configuration payloads in raw JSON format.
	Broadcast map[string]jsoniter.RawMessage `json:"broadcast"`
}

// Validate 啟動前的完整性檢查，擋掉初始化階段就註定失敗的設定
func (c *Config) Validate() error {
	if len(c.Oracle) == 0 {
		return fmt.Errorf("mandatory 'oracle' configuration is missing or empty")
	}
	if len(c.Agents) < 2 {
		return fmt.Errorf("at least 2 agents are required, got %d", len(c.Agents))
	}
	if c.Game.Kind == "rps" && len(c.Agents) != 2 {
		return fmt.Errorf("rps requires exactly 2 agents, got %d", len(c.Agents))
	}

	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent with empty name in roster")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate agent name: %s", a.Name)
		}
		seen[a.Name] = true
		if a.Credits < 0 || a.Widgets < 0 {
			return fmt.Errorf("agent %s has negative initial resources", a.Name)
		}
	}
	return nil
}

// applyDefaults 補上未設定的遊戲參數
func (c *Config) applyDefaults() {
	if c.Game.Rounds <= 0 {
		c.Game.Rounds = 25
	}
	if c.Game.Volatility <= 0 {
		c.Game.Volatility = 0.15
	}
	if c.Game.InitialPrice <= 0 {
		c.Game.InitialPrice = 100
	}
	if c.Game.HistoryWindow <= 0 {
		c.Game.HistoryWindow = 5
	}
}

// SystemConfig 引擎層的技術參數，對應 system.json
type SystemConfig struct {
	// MaxRetries is how many times a transient oracle transport error
	// is retried before the run gives up.
	MaxRetries int `json:"max_retries"`
	// RetryDelayMs is the wait between consecutive retry attempts.
	RetryDelayMs int `json:"retry_delay_ms"`
	// OllamaDefaultURL is the fallback endpoint for a local Ollama instance.
	OllamaDefaultURL string `json:"ollama_default_url"`
	// HistoryFile is the append-only textual audit log path.
	HistoryFile string `json:"history_file"`
	// AuditDB is the SQLite audit store path. Empty disables the store.
	AuditDB string `json:"audit_db"`
	// LogLevel sets the minimum severity for log output.
	// Accepted values: "debug", "info", "warn", "error". Default: "info".
	LogLevel string `json:"log_level"`
	// Debug logs every raw oracle decision and the running score.
	Debug bool `json:"debug"`
	// DebugPrompts logs the full prompt text sent for every decision.
	DebugPrompts bool `json:"debug_prompts"`
}

// DefaultSystemConfig 回傳安全的硬編碼預設值
// system.json 缺失或壞掉時以此為後備，保證引擎一定能啟動
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		MaxRetries:       3,
		RetryDelayMs:     500,
		OllamaDefaultURL: "http://localhost:11434",
		HistoryFile:      "history.txt",
		AuditDB:          "audit.db",
		LogLevel:         "info",
	}
}

// Load 從目前工作目錄讀取並解析設定檔
// config.json 為必要檔案，缺失即回傳錯誤；system.json 缺失則用預設值
func Load() (*Config, *SystemConfig, error) {
	appPath := "config.json"
	if _, err := os.Stat(appPath); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("config file '%s' not found. please create one", appPath)
	}

	appFile, err := os.ReadFile(appPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(appFile, &cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sysCfg := LoadSystemConfig("system.json")

	return &cfg, sysCfg, nil
}

// LoadSystemConfig attempts to load system settings, returns defaults if it fails
func LoadSystemConfig(path string) *SystemConfig {
	cfg := DefaultSystemConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		return cfg // File not found, use defaults
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(file, cfg); err != nil {
		return cfg // Parse failed, use defaults
	}

	return cfg
}
