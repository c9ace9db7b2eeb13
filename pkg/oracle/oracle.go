package oracle

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Client 通用決策 oracle 客戶端介面
// 一次請求對應一次回應：oracle 不跨回合保存任何狀態，
// 所有連續性都來自 core 餵進去的 context
type Client interface {
	// Decide 送出 context 文字，回傳 oracle 的原始回應文字
	// 回應是否符合 Action schema 由呼叫端驗證，這裡只負責傳輸
	Decide(ctx context.Context, prompt string) (string, error)

	// IsTransientError 判斷是否為暫時性錯誤 (如 503, Rate Limit)
	IsTransientError(err error) bool
}

// FallbackClient 支援多個 Client 分級嘗試
type FallbackClient struct {
	Clients    []Client
	MaxRetries int
	RetryDelay time.Duration
}

func (f *FallbackClient) Decide(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i, client := range f.Clients {
		if i > 0 {
			log.Printf("⚠️ Previous provider failed. Trying fallback provider #%d...", i+1)
		}

		// 使用配置的重試次數，若為 0 則至少執行 1 次
		maxRetries := f.MaxRetries
		if maxRetries <= 0 {
			maxRetries = 1
		}

		for retry := 1; retry <= maxRetries; retry++ {
			if retry > 1 {
				log.Printf("🔄 Retrying provider #%d (attempt %d/%d)...", i+1, retry, maxRetries)
				// 稍微等待一下再重試
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(time.Duration(retry-1) * f.RetryDelay):
				}
			}

			resp, err := client.Decide(ctx, prompt)
			if err == nil {
				return resp, nil
			}

			lastErr = err

			if client.IsTransientError(err) && retry < maxRetries {
				log.Printf("❌ Provider #%d failed with transient error: %v. Retrying...", i+1, err)
				continue
			}

			// 非暫時性錯誤，或者已達最大重試次數
			log.Printf("❌ Provider #%d failed: %v", i+1, err)
			break
		}
	}
	return "", fmt.Errorf("all fallback providers failed. Last error: %v", lastErr)
}

// IsTransientError 實作 Client 介面
// FallbackClient 的錯誤代表所有 child 都失敗了，視為非暫時性
func (f *FallbackClient) IsTransientError(err error) bool {
	return false
}
