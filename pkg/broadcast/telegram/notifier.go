package telegram

import (
	"fmt"
	"log/slog"

	"colosseum/pkg/monitor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramConfig encapsulates the credentials required to authenticate with
// the Telegram Bot API.
type TelegramConfig struct {
	Token  string `json:"token"`   // The secret BOT API string provided by @BotFather
	ChatID int64  `json:"chat_id"` // Destination chat for epoch summaries
}

// TelegramNotifier 把 epoch 總結推到指定的 Telegram chat
// 回合層級的流量太吵，只推 epoch；觀戰即時流走 web 通道
type TelegramNotifier struct {
	config TelegramConfig
	bot    *tgbotapi.BotAPI
}

// NewTelegramNotifier 建立 notifier 並驗證 bot token
func NewTelegramNotifier(cfg TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	return &TelegramNotifier{
		config: cfg,
		bot:    bot,
	}, nil
}

// ID returns the unique platform identifier "telegram".
func (t *TelegramNotifier) ID() string {
	return "telegram"
}

func (t *TelegramNotifier) Start() error {
	return nil
}

func (t *TelegramNotifier) Stop() error {
	return nil
}

// OnRound 實作 broadcast.Broadcaster，刻意不推送
func (t *TelegramNotifier) OnRound(r monitor.RoundReport) {}

// OnEpoch 推送 epoch 總結文字
func (t *TelegramNotifier) OnEpoch(e monitor.EpochReport) {
	text := fmt.Sprintf("Epoch %d finished in %.1fs\n\n%s", e.Epoch, e.Elapsed.Seconds(), e.Summary)
	if e.EntropyWarning {
		text += "\n\n⚠️ Too many draws, the model is repeating itself, needs entropy"
	}

	msg := tgbotapi.NewMessage(t.config.ChatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Warn("Failed to send telegram summary", "error", err)
	}
}
