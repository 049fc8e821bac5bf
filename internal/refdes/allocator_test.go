package refdes

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAllocator_UnseenPrefixStartsAtOne(t *testing.T) {
	a := NewAllocator()
	require.Equal(t, 1, a.Next("R"))
	require.Equal(t, 1, a.Next("R"), "Next must not have side effects")
}

func TestAllocator_CommitAdvances(t *testing.T) {
	a := NewAllocator()
	a.Commit("R", 1)
	require.Equal(t, 2, a.Next("R"))
	require.Equal(t, 1, a.Next("C"), "prefixes are independent")
}

func TestAllocator_CommitNeverDecreases(t *testing.T) {
	a := NewAllocator()
	a.Commit("C", 7)
	a.Commit("C", 3)
	require.Equal(t, 8, a.Next("C"))
}

func TestAllocator_CommitIgnoresNonPositive(t *testing.T) {
	a := NewAllocator()
	a.Commit("R", 0)
	a.Commit("R", -4)
	require.Equal(t, 1, a.Next("R"))
	require.Empty(t, a.Snapshot())
}

func TestAllocator_SnapshotIsCopy(t *testing.T) {
	a := NewAllocator()
	a.Commit("U", 2)
	snap := a.Snapshot()
	snap["U"] = 100
	require.Equal(t, 3, a.Next("U"))
}

// TestProperty_NextIsMaxCommittedPlusOne verifies Next(P) == max(committed n for P) + 1.
func TestProperty_NextIsMaxCommittedPlusOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := NewAllocator()
		prefixes := []string{"R", "C", "L", "Q"}
		maxSeen := map[string]int{}

		steps := rapid.IntRange(0, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			p := rapid.SampledFrom(prefixes).Draw(t, "prefix")
			n := rapid.IntRange(1, 500).Draw(t, "n")
			a.Commit(p, n)
			if n > maxSeen[p] {
				maxSeen[p] = n
			}
		}

		for _, p := range prefixes {
			want := 1
			if m, ok := maxSeen[p]; ok {
				want = m + 1
			}
			if got := a.Next(p); got != want {
				t.Fatalf("Next(%q) = %d, want %d", p, got, want)
			}
		}
	})
}

func TestFormat(t *testing.T) {
	require.Equal(t, "R1", Format("R", 1))
	require.Equal(t, "TP12", Format("TP", 12))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in     string
		prefix string
		n      int
		ok     bool
	}{
		{"R1", "R", 1, true},
		{"TP12", "TP", 12, true},
		{"C007", "C", 7, true},
		{"R0", "", 0, false},
		{"R", "", 0, false},
		{"42", "", 0, false},
		{"", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			prefix, n, ok := Parse(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.prefix, prefix)
			require.Equal(t, tt.n, n)
		})
	}
}
