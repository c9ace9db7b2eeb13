package oracle

import "fmt"

// TransportError oracle 端點不可達或傳輸層失敗
// 和解析失敗一樣會中止當前 run，分開只是為了診斷訊息：
// 「連不上 oracle」和「oracle 講了聽不懂的話」是兩種不同的壞法
type TransportError struct {
	Agent string
	Err   error
}

func (e *TransportError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("cannot reach oracle for agent %s: %v", e.Agent, e.Err)
	}
	return fmt.Sprintf("cannot reach oracle: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
