// Package autoload 以空白 import 觸發所有 broadcaster 的 init 註冊
package autoload

import (
	_ "colosseum/pkg/broadcast/telegram"
	_ "colosseum/pkg/broadcast/web"
)
