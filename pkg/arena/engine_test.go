package arena

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"colosseum/pkg/config"
	"colosseum/pkg/game"
	"colosseum/pkg/oracle"
)

// scriptedOracle 以 agent 為 key 的腳本回應，同一 agent 的最後一筆
// 回應會在後續回合重複使用。agent 名字從提示詞的開頭抓（"you are X and ..."）
type scriptedOracle struct {
	mu        sync.Mutex
	responses map[string][]string
	err       error
}

func (s *scriptedOracle) Decide(_ context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}

	fields := strings.Fields(prompt)
	if len(fields) < 3 || fields[0] != "you" || fields[1] != "are" {
		return "", fmt.Errorf("prompt does not open with an agent name: %q", prompt)
	}
	name := fields[2]

	s.mu.Lock()
	defer s.mu.Unlock()

	q := s.responses[name]
	if len(q) == 0 {
		return "", fmt.Errorf("no scripted response for agent %s", name)
	}
	resp := q[0]
	if len(q) > 1 {
		s.responses[name] = q[1:]
	}
	return resp, nil
}

func (s *scriptedOracle) IsTransientError(error) bool { return false }

func newTestEngine(t *testing.T, client oracle.Client, agents []config.AgentConfig, gameCfg config.GameConfig) *Engine {
	t.Helper()

	sys := config.DefaultSystemConfig()
	sys.HistoryFile = filepath.Join(t.TempDir(), "history.txt")
	sys.AuditDB = ""

	if gameCfg.HistoryWindow == 0 {
		gameCfg.HistoryWindow = 5
	}

	rules, err := game.New(game.Kind(gameCfg.Kind), gameCfg.Volatility)
	if err != nil {
		t.Fatalf("game rules: %v", err)
	}

	cfg := &config.Config{Agents: agents, Game: gameCfg}
	return NewEngine(client, rules, cfg, sys, nil, nil, nil)
}

func TestRun_RPSSingleEpoch(t *testing.T) {
	t.Parallel()

	client := &scriptedOracle{responses: map[string][]string{
		"alice": {`{"action": "rock"}`},
		"bob":   {`{"action": "paper"}`},
	}}
	e := newTestEngine(t, client,
		[]config.AgentConfig{{Name: "alice"}, {Name: "bob"}},
		config.GameConfig{Kind: "rps", Rounds: 1},
	)

	if err := e.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	if e.board.Wins["bob"] != 1 || e.board.Wins["alice"] != 0 || e.board.Draws != 0 {
		t.Fatalf("unexpected scoreboard: %+v", e.board)
	}
	if e.ledger.Len("alice") != 1 || e.ledger.Len("bob") != 1 {
		t.Fatalf("each agent must have exactly one ledger entry per round")
	}

	content, err := e.hist.Read()
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if !strings.Contains(content, "Result: bob wins") {
		t.Fatalf("history line missing result:\n%s", content)
	}
	// 紀錄行裡 agent 出手一律照 roster 順序排
	if strings.Index(content, "alice:") > strings.Index(content, "bob:") {
		t.Fatalf("history line must list agents in roster order:\n%s", content)
	}
}

func TestRun_AbortsOnFormatError(t *testing.T) {
	t.Parallel()

	client := &scriptedOracle{responses: map[string][]string{
		"alice": {`not json`},
		"bob":   {`{"action": "rock"}`},
	}}
	e := newTestEngine(t, client,
		[]config.AgentConfig{{Name: "alice"}, {Name: "bob"}},
		config.GameConfig{Kind: "rps", Rounds: 5},
	)

	err := e.Run(context.Background(), nil)
	var fe *game.DecisionFormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected DecisionFormatError, got %v", err)
	}
	if fe.Agent != "alice" {
		t.Fatalf("error should name the offending agent, got %q", fe.Agent)
	}

	// 回合中止時不做部分結算，帳本必須是空的
	if e.ledger.Len("alice") != 0 || e.ledger.Len("bob") != 0 {
		t.Fatalf("aborted round must not settle anything: alice=%d bob=%d",
			e.ledger.Len("alice"), e.ledger.Len("bob"))
	}
}

func TestRun_WrapsTransportError(t *testing.T) {
	t.Parallel()

	client := &scriptedOracle{err: errors.New("connection refused")}
	e := newTestEngine(t, client,
		[]config.AgentConfig{{Name: "alice"}, {Name: "bob"}},
		config.GameConfig{Kind: "rps", Rounds: 1},
	)

	err := e.Run(context.Background(), nil)
	var te *oracle.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if e.ledger.Len("alice") != 0 {
		t.Fatalf("failed round must not settle anything")
	}
}

func TestRun_MarketEpoch(t *testing.T) {
	t.Parallel()

	client := &scriptedOracle{responses: map[string][]string{
		"alice": {`{"action": "buy", "amount": 2}`, `{"action": "hold", "amount": 9}`},
		"bob":   {`{"action": "sell", "amount": 1}`},
	}}
	e := newTestEngine(t, client,
		[]config.AgentConfig{
			{Name: "alice", Credits: 1000},
			{Name: "bob", Credits: 0, Widgets: 5},
		},
		config.GameConfig{Kind: "market", Rounds: 2, Volatility: 0.15, InitialPrice: 100},
	)

	if err := e.Run(context.Background(), nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{"alice", "bob"} {
		if got := e.ledger.Len(name); got != 2 {
			t.Fatalf("%s should have 2 ledger entries, got %d", name, got)
		}
	}
	for _, st := range e.agents {
		if st.Credits < 0 || st.Widgets < 0 {
			t.Fatalf("invariant violated for %s: credits=%.2f widgets=%d", st.Name, st.Credits, st.Widgets)
		}
	}

	// 第二回合 alice 雖然附了 amount，hold 入帳時必須是 0
	entries := e.ledger.Full("alice")
	if entries[1].Action != game.ActionHold || entries[1].Amount != 0 {
		t.Fatalf("hold must be recorded with amount 0, got %+v", entries[1])
	}

	// bob 每回合賣 1 個，2 回合後庫存 3
	if e.agents[1].Widgets != 3 {
		t.Fatalf("bob should hold 3 widgets after two sells, got %d", e.agents[1].Widgets)
	}
}

func TestRun_SemanticDowngradeDoesNotAbort(t *testing.T) {
	t.Parallel()

	// 買不起的量是語意錯誤：降級成 hold，模擬照常跑完
	client := &scriptedOracle{responses: map[string][]string{
		"alice": {`{"action": "buy", "amount": 999999}`},
		"bob":   {`{"action": "hold", "amount": 0}`},
	}}
	e := newTestEngine(t, client,
		[]config.AgentConfig{
			{Name: "alice", Credits: 100},
			{Name: "bob", Credits: 100},
		},
		config.GameConfig{Kind: "market", Rounds: 1, Volatility: 0.15, InitialPrice: 100},
	)

	if err := e.Run(context.Background(), nil); err != nil {
		t.Fatalf("downgrade must not abort the run: %v", err)
	}

	entries := e.ledger.Full("alice")
	if len(entries) != 1 || entries[0].Action != game.ActionHold {
		t.Fatalf("rejected buy must be recorded as the applied hold, got %+v", entries)
	}
	if e.agents[0].Credits != 100 || e.agents[0].Widgets != 0 {
		t.Fatalf("rejected buy must not touch balances: %+v", e.agents[0])
	}
}

func TestCollectDecisions_ConcurrentMatchesSequential(t *testing.T) {
	t.Parallel()

	agents := []config.AgentConfig{{Name: "alice"}, {Name: "bob"}}
	prompts := []string{
		"you are alice and you are playing",
		"you are bob and you are playing",
	}

	run := func(concurrent bool) []game.Action {
		client := &scriptedOracle{responses: map[string][]string{
			"alice": {`{"action": "rock"}`},
			"bob":   {`{"action": "scissors"}`},
		}}
		e := newTestEngine(t, client, agents,
			config.GameConfig{Kind: "rps", Rounds: 1, Concurrent: concurrent})
		if err := e.resetEpoch(); err != nil {
			t.Fatalf("reset: %v", err)
		}
		acts, _, err := e.collectDecisions(context.Background(), prompts)
		if err != nil {
			t.Fatalf("collect (concurrent=%v): %v", concurrent, err)
		}
		return acts
	}

	seq := run(false)
	con := run(true)

	// 決策的歸位順序固定跟 roster 對齊，與收集模式無關
	if len(seq) != len(con) {
		t.Fatalf("length mismatch: %d vs %d", len(seq), len(con))
	}
	for i := range seq {
		if seq[i] != con[i] {
			t.Fatalf("slot %d differs: sequential=%+v concurrent=%+v", i, seq[i], con[i])
		}
	}
	if seq[0].Kind != game.ActionRock || seq[1].Kind != game.ActionScissors {
		t.Fatalf("decisions landed in the wrong slots: %+v", seq)
	}
}

func TestHistoryFile(t *testing.T) {
	t.Parallel()

	h := NewHistoryFile(filepath.Join(t.TempDir(), "history.txt"))

	// 檔案還不存在時讀到空字串
	content, err := h.Read()
	if err != nil || content != "" {
		t.Fatalf("missing file should read empty: %q %v", content, err)
	}

	if err := h.AppendLine("round one"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := h.AppendLine("round two"); err != nil {
		t.Fatalf("append: %v", err)
	}

	content, err = h.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if content != "round one\nround two\n" {
		t.Fatalf("unexpected content: %q", content)
	}

	if err := h.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	content, _ = h.Read()
	if content != "" {
		t.Fatalf("reset should truncate, got %q", content)
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	rps := buildPrompt(game.KindRPS, promptInput{
		Agent:       &game.AgentState{Name: "alice", Personality: "you always bluff"},
		Opponent:    "bob",
		Market:      &game.MarketState{},
		HistoryTalk: "(no history)",
		Round:       3,
		TotalRounds: 25,
	})
	if !strings.HasPrefix(rps, "you are alice and you are playing a game of rock paper scissors with bob") {
		t.Fatalf("rps prompt has wrong opening:\n%s", rps)
	}
	if !strings.Contains(rps, "you always bluff") {
		t.Fatalf("personality missing from prompt:\n%s", rps)
	}
	if !strings.Contains(rps, "this is round 3 of 25") {
		t.Fatalf("round counter missing from prompt:\n%s", rps)
	}
	if !strings.Contains(rps, `{"action": string}`) {
		t.Fatalf("rps JSON contract missing from prompt:\n%s", rps)
	}

	market := buildPrompt(game.KindMarket, promptInput{
		Agent:       &game.AgentState{Name: "carol", Credits: 500, Widgets: 2, ValueEstimate: 80},
		Market:      &game.MarketState{CurrentPrice: 104.5},
		HistoryTalk: "(no history)",
		Round:       1,
		TotalRounds: 10,
		Extra:       "never go all in",
	})
	for _, want := range []string{
		"the current widget price is 104.50",
		"you have 500.00 credits and 2 widgets",
		"really worth about 80.00",
		"never go all in",
		`"buy"|"sell"|"hold"`,
	} {
		if !strings.Contains(market, want) {
			t.Fatalf("market prompt missing %q:\n%s", want, market)
		}
	}
}

func TestEngineRawHistoryMode(t *testing.T) {
	t.Parallel()

	client := &scriptedOracle{responses: map[string][]string{
		"alice": {`{"action": "rock"}`},
		"bob":   {`{"action": "rock"}`},
	}}
	e := newTestEngine(t, client,
		[]config.AgentConfig{{Name: "alice"}, {Name: "bob"}},
		config.GameConfig{Kind: "rps", Rounds: 1, RawHistory: true},
	)
	if err := e.resetEpoch(); err != nil {
		t.Fatalf("reset: %v", err)
	}

	talk, err := e.historyTalk("alice")
	if err != nil {
		t.Fatalf("history talk: %v", err)
	}
	if !strings.Contains(talk, "first move") {
		t.Fatalf("empty raw history must return the first-move signal, got %q", talk)
	}

	if err := e.playRound(context.Background(), 1); err != nil {
		t.Fatalf("play round: %v", err)
	}

	// 有內容之後要原封不動餵回檔案文字
	talk, err = e.historyTalk("alice")
	if err != nil {
		t.Fatalf("history talk: %v", err)
	}
	raw, _ := e.hist.Read()
	if !strings.Contains(talk, strings.TrimSpace(raw)) {
		t.Fatalf("raw history mode should embed the file text verbatim:\ntalk=%q\nfile=%q", talk, raw)
	}
}
