package enrollment

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		states []LessonState
		exp    Summary
		done   bool
	}{
		{
			name: "no lessons",
			exp:  Summary{},
		},
		{
			name:   "two of three",
			states: []LessonState{{"l1", true}, {"l2", true}, {"l3", false}},
			exp:    Summary{CompletedLessons: 2, TotalLessons: 3, Percent: 66.66},
		},
		{
			name:   "all of three",
			states: []LessonState{{"l1", true}, {"l2", true}, {"l3", true}},
			exp:    Summary{CompletedLessons: 3, TotalLessons: 3, Percent: 100},
			done:   true,
		},
		{
			name:   "none of two",
			states: []LessonState{{"l1", false}, {"l2", false}},
			exp:    Summary{TotalLessons: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.states)
			if diff := cmp.Diff(tt.exp, got); diff != "" {
				t.Fatalf("unexpected summary (-want +got):\n%s", diff)
			}
			if got.Done() != tt.done {
				t.Fatalf("expected done %v, got %v", tt.done, got.Done())
			}
		})
	}
}

func TestSummarizePercentBounds(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for completed := 0; completed <= total; completed++ {
			states := make([]LessonState, total)
			for i := 0; i < completed; i++ {
				states[i].Completed = true
			}

			s := Summarize(states)
			if s.Percent < 0 || s.Percent > 100 {
				t.Fatalf("%d/%d: percent %v out of bounds", completed, total, s.Percent)
			}
			if (s.Percent == 100) != s.Done() {
				t.Fatalf("%d/%d: percent %v disagrees with done %v", completed, total, s.Percent, s.Done())
			}
		}
	}
}
