package progress

import (
	"errors"
	"io"
	"testing"
)

// recorder implements Progress and records every call.
type recorder struct {
	calls  []string
	active bool
}

func (r *recorder) Start(message string) error {
	r.calls = append(r.calls, "start:"+message)
	r.active = true
	return nil
}

func (r *recorder) Update(message string) error {
	r.calls = append(r.calls, "update:"+message)
	return nil
}

func (r *recorder) Success(message string) error {
	r.calls = append(r.calls, "success:"+message)
	r.active = false
	return nil
}

func (r *recorder) Failure(message string) error {
	r.calls = append(r.calls, "failure:"+message)
	r.active = false
	return nil
}

func (r *recorder) Stop() error {
	r.active = false
	return nil
}

func (r *recorder) IsActive() bool { return r.active }

func TestRunSteps(t *testing.T) {
	r := &recorder{}
	var ran []string

	err := RunSteps(r,
		Step{Message: "Loading", Done: "Loaded", Run: func() error { ran = append(ran, "load"); return nil }},
		Step{Message: "Generating", Run: func() error { ran = append(ran, "generate"); return nil }},
	)
	if err != nil {
		t.Fatalf("RunSteps() error = %v", err)
	}

	want := []string{"start:Loading", "success:Loaded", "start:Generating", "success:Generating"}
	if len(r.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", r.calls, want)
	}
	for i := range want {
		if r.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, r.calls[i], want[i])
		}
	}
	if len(ran) != 2 {
		t.Errorf("ran = %v", ran)
	}
}

func TestRunSteps_StopsAtFailure(t *testing.T) {
	r := &recorder{}
	boom := errors.New("boom")
	second := false

	err := RunSteps(r,
		Step{Message: "Loading", Run: func() error { return boom }},
		Step{Message: "Generating", Run: func() error { second = true; return nil }},
	)
	if !errors.Is(err, boom) {
		t.Errorf("RunSteps() error = %v, want boom", err)
	}
	if second {
		t.Error("step after failure ran")
	}
	if r.calls[len(r.calls)-1] != "failure:Loading" {
		t.Errorf("last call = %s", r.calls[len(r.calls)-1])
	}
}

func TestSpinner_Disabled(t *testing.T) {
	s := New(&Config{Type: TypeNone, Enabled: true})

	if err := s.Start("working"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsActive() {
		t.Error("disabled spinner should never be active")
	}
	if err := s.Success("done"); err != nil {
		t.Errorf("Success() error = %v", err)
	}
}

func TestSpinner_Lifecycle(t *testing.T) {
	config := DefaultConfig()
	config.Writer = io.Discard
	s := NewSpinner(config)

	if err := s.Start("working"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsActive() {
		t.Error("expected active spinner")
	}
	if err := s.Start("again"); err == nil {
		t.Error("expected error starting an active spinner")
	}
	_ = s.Update("still working")
	if err := s.Success("done"); err != nil {
		t.Errorf("Success() error = %v", err)
	}
	if s.IsActive() {
		t.Error("spinner still active after Success")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
