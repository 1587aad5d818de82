package reconcile

import "testing"

func maskedPositions(mask []bool) []int {
	var out []int
	for i, b := range mask {
		if b {
			out = append(out, i)
		}
	}
	return out
}

func TestLisPositionsCanonical(t *testing.T) {
	// Old positions of [c a b e d]: the stable chain is a, b, e.
	mask := lisPositions([]int{2, 0, 1, 4, 3})
	got := maskedPositions(mask)
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected positions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected positions %v, got %v", want, got)
		}
	}
}

func TestLisPositionsSorted(t *testing.T) {
	mask := lisPositions([]int{0, 1, 2, 3})
	for i, b := range mask {
		if !b {
			t.Errorf("position %d of a sorted sequence should be stable", i)
		}
	}
}

func TestLisPositionsReversed(t *testing.T) {
	mask := lisPositions([]int{3, 2, 1, 0})
	count := 0
	for _, b := range mask {
		if b {
			count++
		}
	}
	if count != 1 {
		t.Errorf("a reversed sequence has exactly one stable position, got %d", count)
	}
}

func TestLisPositionsSkipsSentinels(t *testing.T) {
	// -1 marks freshly created rows; they never join the subsequence.
	mask := lisPositions([]int{-1, 0, -1, 1})
	if mask[0] || mask[2] {
		t.Error("sentinel positions must not be marked stable")
	}
	if !mask[1] || !mask[3] {
		t.Error("expected the increasing pair to be stable")
	}
}

func TestLisPositionsEmpty(t *testing.T) {
	if got := lisPositions(nil); len(got) != 0 {
		t.Errorf("expected empty mask, got %v", got)
	}
	mask := lisPositions([]int{-1, -1})
	if mask[0] || mask[1] {
		t.Error("all-sentinel input has no stable positions")
	}
}
