package monitor

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// CLIMonitor implements the Monitor interface, providing a direct
// terminal-based visualization of every settled round and epoch summary.
type CLIMonitor struct {
	writer io.Writer // The output destination, typically os.Stdout.
}

// NewCLIMonitor creates a new CLI monitor
func NewCLIMonitor() *CLIMonitor {
	return &CLIMonitor{
		writer: os.Stdout,
	}
}

// Start starts the CLI monitor
func (m *CLIMonitor) Start() error {
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "💬 CLI Monitor Active - Settled rounds will appear here")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

// Stop stops the CLI monitor
func (m *CLIMonitor) Stop() error {
	return nil
}

// OnRound 顯示一個已結算的回合，格式沿用原始輸出：
// 🤖 alice throws rock ✊  🤖 bob throws paper ✋  🎉 Result: bob wins
func (m *CLIMonitor) OnRound(r RoundReport) {
	timestamp := r.Timestamp.Format("2006-01-02 15:04:05")

	var parts []string
	for _, mv := range r.Moves {
		parts = append(parts, fmt.Sprintf("🤖 %s throws %s", mv.Agent, mv.Display))
	}
	line := strings.Join(parts, "  ")
	if r.Price > 0 {
		line += fmt.Sprintf("  💹 price %.2f", r.Price)
	}
	line += fmt.Sprintf("  🎉 Result: %s", r.Result)

	// Use gray color for timestamp
	fmt.Fprintf(m.writer, "\033[90m[%s]\033[0m [%d/%d] %s\n", timestamp, r.Round, r.TotalRounds, line)
}

// OnEpoch 顯示 epoch 總結區塊
func (m *CLIMonitor) OnEpoch(e EpochReport) {
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, e.Summary)
	fmt.Fprintf(m.writer, "⏱️ Total Time Taken: %.1f seconds\n", e.Elapsed.Seconds())
	if e.EntropyWarning {
		fmt.Fprintln(m.writer, "⚠️ Too many draws, the model is repeating itself, needs entropy")
	}
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
}
