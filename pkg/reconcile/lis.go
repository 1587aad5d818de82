package reconcile

// lisPositions marks the positions of one longest increasing subsequence
// of seq. Negative entries are sentinels for unmatched rows and never
// participate.
//
// Patience-sorting technique: tails[len-1] holds the position of the
// smallest tail value of any increasing run of length len. Each element
// binary-searches its insertion point and records its predecessor, and
// the subsequence is rebuilt by backtracking from the position that first
// reached the maximal length. O(n log n) time, O(n) space.
func lisPositions(seq []int) []bool {
	n := len(seq)
	mask := make([]bool, n)
	if n == 0 {
		return mask
	}

	tails := make([]int, 0, n)
	prev := make([]int, n)
	end := -1

	for i, v := range seq {
		if v < 0 {
			continue
		}
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := int(uint(lo+hi) >> 1)
			if seq[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prev[i] = tails[lo-1]
		} else {
			prev[i] = -1
		}
		if lo == len(tails) {
			tails = append(tails, i)
			end = i
		} else {
			tails[lo] = i
		}
	}

	for i := end; i >= 0; i = prev[i] {
		mask[i] = true
	}
	return mask
}
