// Package autoload 以空白 import 觸發所有 oracle provider 的 init 註冊
package autoload

import (
	_ "colosseum/pkg/oracle/gemini"
	_ "colosseum/pkg/oracle/ollama"
	_ "colosseum/pkg/oracle/openailm"
)
