package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"colosseum/pkg/monitor"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

// WebConfig 觀戰伺服器設定
type WebConfig struct {
	Port int `json:"port"` // Default: 9453
}

// SafeConn websocket 連線不允許並行寫入，包一層鎖
type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteMessage(messageType int, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(messageType, data)
}

// frame 推送給觀戰端的統一封包格式
type frame struct {
	Type    string `json:"type"` // "round" | "epoch"
	Payload any    `json:"payload"`
}

// WebSpectator 觀戰通道：把每個已結算回合與 epoch 總結
// 以 JSON 即時推送給所有連上 /ws 的 websocket 客戶端
// 純單向 feed，不接受客戶端輸入
type WebSpectator struct {
	config      WebConfig
	server      *http.Server
	connections map[*SafeConn]struct{}
	mu          sync.RWMutex
}

// NewWebSpectator 建立觀戰通道
func NewWebSpectator(cfg WebConfig) *WebSpectator {
	if cfg.Port == 0 {
		cfg.Port = 9453
	}
	return &WebSpectator{
		config:      cfg,
		connections: make(map[*SafeConn]struct{}),
	}
}

func (c *WebSpectator) ID() string {
	return "web"
}

func (c *WebSpectator) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", c.handleWebSocket)

	addr := fmt.Sprintf(":%d", c.config.Port)
	c.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("Spectator feed listening", "port", c.config.Port)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Spectator feed server error", "error", err)
		}
	}()

	return nil
}

func (c *WebSpectator) Stop() error {
	c.mu.Lock()
	for conn := range c.connections {
		conn.Close()
	}
	c.connections = make(map[*SafeConn]struct{})
	c.mu.Unlock()

	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

func (c *WebSpectator) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	sc := &SafeConn{Conn: conn}

	c.mu.Lock()
	c.connections[sc] = struct{}{}
	c.mu.Unlock()

	slog.Info("Spectator connected", "remote", conn.RemoteAddr().String())

	// 讀取迴圈只為了偵測斷線，收到的資料一律丟棄
	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.connections, sc)
			c.mu.Unlock()
			sc.Close()
			slog.Info("Spectator disconnected", "remote", conn.RemoteAddr().String())
		}()
		for {
			if _, _, err := sc.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// OnRound 實作 broadcast.Broadcaster
func (c *WebSpectator) OnRound(r monitor.RoundReport) {
	c.push(frame{Type: "round", Payload: r})
}

// OnEpoch 實作 broadcast.Broadcaster
func (c *WebSpectator) OnEpoch(e monitor.EpochReport) {
	c.push(frame{Type: "epoch", Payload: e})
}

func (c *WebSpectator) push(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		slog.Warn("Failed to marshal spectator frame", "error", err)
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for conn := range c.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("Failed to push to spectator", "error", err)
		}
	}
}
