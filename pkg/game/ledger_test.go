package game

import (
	"strings"
	"testing"
)

func TestLedgerRecent(t *testing.T) {
	t.Parallel()

	l := NewLedger()

	if _, has := l.Recent("alice", 5); has {
		t.Fatalf("empty ledger must report no history")
	}

	for i := 1; i <= 8; i++ {
		l.Append("alice", HistoryEntry{Round: i, Action: ActionRock})
	}

	window, has := l.Recent("alice", 5)
	if !has {
		t.Fatalf("ledger should have history after appends")
	}
	if len(window) != 5 {
		t.Fatalf("window size = %d, want 5", len(window))
	}
	if window[0].Round != 4 || window[4].Round != 8 {
		t.Fatalf("window should hold the most recent entries, got rounds %d..%d",
			window[0].Round, window[4].Round)
	}

	// 要求的窗口比現有紀錄長時回傳全部
	window, _ = l.Recent("alice", 100)
	if len(window) != 8 {
		t.Fatalf("oversized window = %d entries, want 8", len(window))
	}

	if l.Len("alice") != 8 || l.Len("bob") != 0 {
		t.Fatalf("unexpected lengths: alice=%d bob=%d", l.Len("alice"), l.Len("bob"))
	}
}

func TestLedgerReset(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Append("alice", HistoryEntry{Round: 1, Action: ActionPaper})
	l.Reset()
	if l.Len("alice") != 0 {
		t.Fatalf("reset should clear all entries")
	}
	if _, has := l.Recent("alice", 5); has {
		t.Fatalf("reset ledger must report no history")
	}
}

func TestLedgerWindowText(t *testing.T) {
	t.Parallel()

	l := NewLedger()

	first := l.WindowText("alice", 5)
	if !strings.Contains(first, "this is the first move") {
		t.Fatalf("empty ledger must emit the first-move signal, got %q", first)
	}

	l.Append("alice", HistoryEntry{Round: 1, Action: ActionBuy, Amount: 3, Price: 100})
	l.Append("alice", HistoryEntry{Round: 2, Action: ActionHold})

	text := l.WindowText("alice", 5)
	if !strings.Contains(text, "round 1: buy 3 at price 100.00") {
		t.Fatalf("buy entry missing from window text:\n%s", text)
	}
	if !strings.Contains(text, "round 2: hold") {
		t.Fatalf("hold entry missing from window text:\n%s", text)
	}
	if strings.Contains(text, "first move") {
		t.Fatalf("first-move signal must disappear once there is history")
	}
}

func TestLedgerFullReturnsCopy(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	l.Append("alice", HistoryEntry{Round: 1, Action: ActionRock})

	cp := l.Full("alice")
	cp[0].Round = 99

	if got := l.Full("alice")[0].Round; got != 1 {
		t.Fatalf("Full must return a copy, internal entry mutated to round %d", got)
	}
}
