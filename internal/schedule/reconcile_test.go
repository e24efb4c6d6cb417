package schedule

import (
	"math/rand"
	"testing"
	"time"
)

func slotAt(t *testing.T, loc *time.Location, day, hour int) Slot {
	t.Helper()
	start := time.Date(2026, 9, day, hour, 0, 0, 0, loc)
	return Slot{ID: SlotID(start), Start: start, Duration: time.Hour}
}

func TestReconcileExcludesBookedIDs(t *testing.T) {
	loc := mustLoc(t)
	candidates := []Slot{slotAt(t, loc, 8, 9), slotAt(t, loc, 8, 10), slotAt(t, loc, 8, 11)}
	booked := []string{candidates[1].ID}

	open := Reconcile(candidates, booked, nil, 0)
	if len(open) != 2 {
		t.Fatalf("got %d slots, want 2", len(open))
	}
	for _, s := range open {
		if s.ID == booked[0] {
			t.Errorf("booked slot %s survived", s.ID)
		}
	}
}

func TestReconcileExcludesBusyOverlap(t *testing.T) {
	loc := mustLoc(t)
	candidates := []Slot{slotAt(t, loc, 8, 9), slotAt(t, loc, 8, 10), slotAt(t, loc, 8, 11)}

	tests := []struct {
		name string
		busy BusyInterval
		want []int // surviving candidate indexes
	}{
		{
			name: "event inside one slot",
			busy: BusyInterval{
				Start: time.Date(2026, 9, 8, 10, 15, 0, 0, loc),
				End:   time.Date(2026, 9, 8, 10, 45, 0, 0, loc),
			},
			want: []int{0, 2},
		},
		{
			name: "event spanning two slots",
			busy: BusyInterval{
				Start: time.Date(2026, 9, 8, 9, 30, 0, 0, loc),
				End:   time.Date(2026, 9, 8, 10, 30, 0, 0, loc),
			},
			want: []int{2},
		},
		{
			name: "event ending exactly at slot start",
			busy: BusyInterval{
				Start: time.Date(2026, 9, 8, 8, 0, 0, 0, loc),
				End:   time.Date(2026, 9, 8, 9, 0, 0, 0, loc),
			},
			want: []int{0, 1, 2},
		},
		{
			name: "event starting exactly at slot end",
			busy: BusyInterval{
				Start: time.Date(2026, 9, 8, 10, 0, 0, 0, loc),
				End:   time.Date(2026, 9, 8, 11, 0, 0, 0, loc),
			},
			want: []int{0, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open := Reconcile(candidates, nil, []BusyInterval{tt.busy}, 0)
			if len(open) != len(tt.want) {
				t.Fatalf("got %d slots, want %d", len(open), len(tt.want))
			}
			for i, idx := range tt.want {
				if open[i].ID != candidates[idx].ID {
					t.Errorf("slot %d = %s, want %s", i, open[i].ID, candidates[idx].ID)
				}
			}
		})
	}
}

func TestReconcileEitherSourceExcludes(t *testing.T) {
	loc := mustLoc(t)
	candidates := []Slot{slotAt(t, loc, 8, 9), slotAt(t, loc, 8, 10)}
	busy := []BusyInterval{{
		Start: time.Date(2026, 9, 8, 9, 0, 0, 0, loc),
		End:   time.Date(2026, 9, 8, 10, 0, 0, 0, loc),
	}}
	booked := []string{candidates[1].ID}

	if open := Reconcile(candidates, booked, busy, 0); len(open) != 0 {
		t.Errorf("got %d slots, want 0", len(open))
	}
}

func TestReconcileCap(t *testing.T) {
	loc := mustLoc(t)
	var candidates []Slot
	for hour := 9; hour < 18; hour++ {
		candidates = append(candidates, slotAt(t, loc, 8, hour))
	}

	open := Reconcile(candidates, nil, nil, 3)
	if len(open) != 3 {
		t.Fatalf("got %d slots, want 3", len(open))
	}
	for i := range open {
		if open[i].ID != candidates[i].ID {
			t.Errorf("cap changed ordering at %d", i)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	loc := mustLoc(t)
	rng := rand.New(rand.NewSource(7))

	var candidates []Slot
	for day := 7; day < 12; day++ {
		for hour := 9; hour < 18; hour++ {
			candidates = append(candidates, slotAt(t, loc, day, hour))
		}
	}
	var busy []BusyInterval
	for i := 0; i < 12; i++ {
		start := time.Date(2026, 9, 7+rng.Intn(5), 8+rng.Intn(10), rng.Intn(60), 0, 0, loc)
		busy = append(busy, BusyInterval{Start: start, End: start.Add(time.Duration(15+rng.Intn(120)) * time.Minute)})
	}
	booked := []string{candidates[3].ID, candidates[17].ID}

	first := Reconcile(candidates, booked, busy, 20)
	second := Reconcile(first, booked, busy, 20)
	if len(first) != len(second) {
		t.Fatalf("second pass changed count: %d -> %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("second pass changed slot %d", i)
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name           string
		aStart, aEnd   time.Time
		bStart, bEnd   time.Time
		want           bool
	}{
		{"identical", base, base.Add(time.Hour), base, base.Add(time.Hour), true},
		{"touching ends", base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"contained", base, base.Add(time.Hour), base.Add(10 * time.Minute), base.Add(20 * time.Minute), true},
		{"disjoint", base, base.Add(time.Hour), base.Add(3 * time.Hour), base.Add(4 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}
