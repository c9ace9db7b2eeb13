package broadcast

import (
	"errors"
	"testing"

	"colosseum/pkg/config"
	"colosseum/pkg/monitor"

	jsoniter "github.com/json-iterator/go"
)

// recordingBroadcaster 記錄收到的每一次推送
type recordingBroadcaster struct {
	id       string
	started  bool
	stopped  bool
	rounds   []monitor.RoundReport
	epochs   []monitor.EpochReport
	startErr error
}

func (r *recordingBroadcaster) ID() string { return r.id }

func (r *recordingBroadcaster) Start() error {
	r.started = true
	return r.startErr
}

func (r *recordingBroadcaster) Stop() error {
	r.stopped = true
	return nil
}

func (r *recordingBroadcaster) OnRound(rep monitor.RoundReport) {
	r.rounds = append(r.rounds, rep)
}

func (r *recordingBroadcaster) OnEpoch(e monitor.EpochReport) {
	r.epochs = append(r.epochs, e)
}

func TestManagerPublish(t *testing.T) {
	t.Parallel()

	mgr := NewManager()
	a := &recordingBroadcaster{id: "a"}
	b := &recordingBroadcaster{id: "b"}
	mgr.Register(a)
	mgr.Register(b)

	if mgr.Count() != 2 {
		t.Fatalf("expected 2 broadcasters, got %d", mgr.Count())
	}

	if err := mgr.StartAll(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !a.started || !b.started {
		t.Fatalf("all broadcasters should be started")
	}

	mgr.PublishRound(monitor.RoundReport{Round: 1, Result: "draw"})
	mgr.PublishEpoch(monitor.EpochReport{Epoch: 1, Summary: "done"})

	for _, rb := range []*recordingBroadcaster{a, b} {
		if len(rb.rounds) != 1 || rb.rounds[0].Result != "draw" {
			t.Fatalf("%s missed the round report: %+v", rb.id, rb.rounds)
		}
		if len(rb.epochs) != 1 || rb.epochs[0].Summary != "done" {
			t.Fatalf("%s missed the epoch report: %+v", rb.id, rb.epochs)
		}
	}

	mgr.StopAll()
	if !a.stopped || !b.stopped {
		t.Fatalf("all broadcasters should be stopped")
	}
}

func TestManagerStartAllPropagatesFailure(t *testing.T) {
	t.Parallel()

	mgr := NewManager()
	mgr.Register(&recordingBroadcaster{id: "broken", startErr: errors.New("port in use")})

	if err := mgr.StartAll(); err == nil {
		t.Fatalf("expected start failure to propagate")
	}
}

// stubFactory 包一個固定的 Broadcaster 實例
type stubFactory struct {
	b   Broadcaster
	err error
}

func (f *stubFactory) Create(jsoniter.RawMessage, *config.SystemConfig) (Broadcaster, error) {
	return f.b, f.err
}

func TestLoadFromConfig(t *testing.T) {
	rb := &recordingBroadcaster{id: "stub"}
	RegisterBroadcaster("stub", &stubFactory{b: rb})
	RegisterBroadcaster("broken", &stubFactory{err: errors.New("bad config")})

	mgr := NewManager()
	LoadFromConfig(mgr, map[string]jsoniter.RawMessage{
		"stub":    []byte(`{}`),
		"broken":  []byte(`{}`),
		"unknown": []byte(`{}`),
	}, config.DefaultSystemConfig())

	// 建立失敗與未知平台都只是跳過，不影響其他通道
	if mgr.Count() != 1 {
		t.Fatalf("only the healthy broadcaster should register, got %d", mgr.Count())
	}
}
