package game

import "fmt"

// DecisionFormatError oracle 回應無法解析成該變體的 Action schema
// 屬於硬錯誤：直接中止該回合並往上傳遞，絕不猜測或靜默修正
// （解析壞掉代表 oracle/提示詞需要人工處理，自動重試只會掩蓋問題）
type DecisionFormatError struct {
	Agent  string
	Raw    string
	Reason error
}

func (e *DecisionFormatError) Error() string {
	return fmt.Sprintf("agent %s returned an unparseable decision: %v (raw: %q)", e.Agent, e.Reason, truncate(e.Raw, 120))
}

func (e *DecisionFormatError) Unwrap() error {
	return e.Reason
}

// IllegalityNote 記錄一次「格式正確但經濟上不合法」的動作降級
// 不是 error：動作已被強制改為 hold/0，round 照常進行，僅作為警告日誌
type IllegalityNote struct {
	Agent     string
	Requested Action
	Reason    string
}

func (n *IllegalityNote) String() string {
	return fmt.Sprintf("agent %s: %s %g rejected (%s), downgraded to hold", n.Agent, n.Requested.Kind, n.Requested.Amount, n.Reason)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
