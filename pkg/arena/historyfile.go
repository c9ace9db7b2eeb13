package arena

import (
	"fmt"
	"os"
)

// HistoryFile 原始玩法的 append-only 文字稽核檔（history.txt）
// 每個已結算回合追加一行，epoch 重置時整檔清空
// raw_history 模式下檔案內容會原封不動餵回提示詞
type HistoryFile struct {
	path string
}

// NewHistoryFile 建立 handle，不動檔案本身
func NewHistoryFile(path string) *HistoryFile {
	return &HistoryFile{path: path}
}

// Reset 清空檔案（不存在則建立）
func (h *HistoryFile) Reset() error {
	if err := os.WriteFile(h.path, nil, 0644); err != nil {
		return fmt.Errorf("reset history file: %w", err)
	}
	return nil
}

// AppendLine 追加一行已結算回合的紀錄
func (h *HistoryFile) AppendLine(line string) error {
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append history file: %w", err)
	}
	return nil
}

// Read 回傳目前的完整內容
func (h *HistoryFile) Read() (string, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read history file: %w", err)
	}
	return string(data), nil
}
