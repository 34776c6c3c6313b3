package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/raghav-misra/buddard/internal/core/game"
	"github.com/raghav-misra/buddard/internal/core/trigger"
)

type stubSink struct {
	calls int
	err   error
}

func (s *stubSink) Deliver(context.Context, trigger.Alert) error {
	s.calls++
	return s.err
}

func TestMultiAttemptsEverySink(t *testing.T) {
	a := &stubSink{err: errors.New("first down")}
	b := &stubSink{}
	c := &stubSink{err: errors.New("third down")}

	err := Multi{a, b, c}.Deliver(context.Background(), trigger.Alert{})
	if !errors.Is(err, a.err) {
		t.Errorf("err = %v, want the first failure", err)
	}
	for i, s := range []*stubSink{a, b, c} {
		if s.calls != 1 {
			t.Errorf("sink %d called %d times, want 1", i, s.calls)
		}
	}
}

type reportingSink struct {
	stubSink
	gameOvers int
}

func (s *reportingSink) GameOver(context.Context, string, int, int, int) error {
	s.gameOvers++
	return nil
}

func TestMultiGameOverSkipsPlainSinks(t *testing.T) {
	plain := &stubSink{}
	reporting := &reportingSink{}

	err := Multi{plain, reporting}.GameOver(context.Background(), "0022500001", 110, 102, 3)
	if err != nil {
		t.Fatal(err)
	}
	if reporting.gameOvers != 1 {
		t.Errorf("reporting sink got %d summaries, want 1", reporting.gameOvers)
	}
	if plain.calls != 0 {
		t.Errorf("plain sink was invoked %d times for a summary", plain.calls)
	}
}

func TestMultiEmpty(t *testing.T) {
	if err := (Multi{}).Deliver(context.Background(), trigger.Alert{}); err != nil {
		t.Errorf("empty Multi returned %v", err)
	}
}

func TestConsoleSink(t *testing.T) {
	a := trigger.Alert{
		PlayerName: "Nikola Jokic",
		Stat:       game.StatPoints,
		Direction:  trigger.DirectionHigh,
		Current:    22,
		Minutes:    28,
		Low:        24.4,
		High:       27.1,
		Reasoning:  "Q3 Perf=1.57. Hot Hand",
	}
	if err := (ConsoleSink{}).Deliver(context.Background(), a); err != nil {
		t.Errorf("console deliver: %v", err)
	}

	a.Direction = trigger.DirectionLow
	if err := (ConsoleSink{}).Deliver(context.Background(), a); err != nil {
		t.Errorf("console deliver low: %v", err)
	}
}
