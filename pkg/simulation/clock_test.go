package simulation

import (
	"testing"
	"time"
)

func TestFixedStep_Advance(t *testing.T) {
	tick := 10 * time.Millisecond

	type frame struct {
		dt      time.Duration
		want    int
		pending time.Duration
	}
	tests := []struct {
		name     string
		maxTicks int
		frames   []frame
		total    uint64
	}{
		{
			name:     "carries remainder",
			maxTicks: 5,
			frames: []frame{
				{25 * time.Millisecond, 2, 5 * time.Millisecond},
				{4 * time.Millisecond, 0, 9 * time.Millisecond},
				{1 * time.Millisecond, 1, 0},
			},
			total: 3,
		},
		{
			name:     "cap drops backlog",
			maxTicks: 5,
			frames: []frame{
				{time.Second, 5, 0},
				{10 * time.Millisecond, 1, 0},
			},
			total: 6,
		},
		{
			name:     "negative delta ignored",
			maxTicks: 5,
			frames: []frame{
				{-time.Second, 0, 0},
				{15 * time.Millisecond, 1, 5 * time.Millisecond},
			},
			total: 1,
		},
		{
			name:     "uncapped",
			maxTicks: 0,
			frames: []frame{
				{time.Second + 3*time.Millisecond, 100, 3 * time.Millisecond},
			},
			total: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFixedStep(tick, tt.maxTicks)
			for i, fr := range tt.frames {
				if got := f.Advance(fr.dt); got != fr.want {
					t.Errorf("frame %d: Advance(%v) = %d; want %d", i, fr.dt, got, fr.want)
				}
				if f.Pending() != fr.pending {
					t.Errorf("frame %d: Pending = %v; want %v", i, f.Pending(), fr.pending)
				}
			}
			if f.Tick() != tt.total {
				t.Errorf("Tick = %d; want %d", f.Tick(), tt.total)
			}
		})
	}
}

func TestFixedStep_Reset(t *testing.T) {
	f := NewFixedStep(10*time.Millisecond, 5)
	f.Advance(37 * time.Millisecond)
	f.Reset()
	if f.Tick() != 0 || f.Pending() != 0 {
		t.Errorf("after Reset: Tick %d Pending %v; want zero", f.Tick(), f.Pending())
	}
	// numbering restarts at 1
	f.Advance(10 * time.Millisecond)
	if f.Tick() != 1 {
		t.Errorf("first tick after Reset = %d; want 1", f.Tick())
	}
}

func TestTickDuration(t *testing.T) {
	tests := []struct {
		rate int
		want time.Duration
	}{
		{60, 16666666 * time.Nanosecond},
		{50, 20 * time.Millisecond},
		{1, time.Second},
		{0, time.Second},
		{-5, time.Second},
	}
	for _, tt := range tests {
		if got := TickDuration(tt.rate); got != tt.want {
			t.Errorf("TickDuration(%d) = %v; want %v", tt.rate, got, tt.want)
		}
	}
}

func TestNewFixedStep_PanicsOnZeroTick(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewFixedStep(0, 5) did not panic")
		}
	}()
	NewFixedStep(0, 5)
}
