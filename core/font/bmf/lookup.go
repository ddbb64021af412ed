package bmf

// Lookup finds the glyph metric for a 16-bit character code.
//
// The coarse index entry for the high byte, plus the low byte, gives a first
// guess for the position of the glyph. If the guess does not hit the right
// group, the range between the index entry and the guess is binary searched
// for the high byte. Inside the group, bounded by the PrevNum/NextNum of the
// record found, the low byte is binary searched.
//
// Clamping and probe order follow the table format exactly, as existing font
// data files depend on it. A miss is not an error: clients usually skip the
// character.
func (f *Font) Lookup(code uint16) (Metric, bool) {
	n := len(f.Metrics)
	if n == 0 {
		return Metric{}, false
	}
	first, second := uint8(code>>8), uint8(code)
	index := int(f.Index[first])
	offset := index + int(second)
	if offset < 0 {
		return Metric{}, false
	}
	if offset >= n {
		offset = n - 1
	}
	if f.Metrics[offset].First != first {
		if index < 0 {
			index = 0
		}
		offset = searchMetrics(f.Metrics, index, offset, func(m *Metric) int {
			return int(m.First) - int(first)
		})
		if offset < 0 {
			return Metric{}, false
		}
	}
	if f.Metrics[offset].Second != second {
		m := &f.Metrics[offset]
		left, right := offset-int(m.PrevNum), offset+int(m.NextNum)
		offset = searchMetrics(f.Metrics, left, right, func(m *Metric) int {
			return int(m.Second) - int(second)
		})
		if offset < 0 {
			return Metric{}, false
		}
	}
	return f.Metrics[offset], true
}

// LookupRune finds the glyph metric for a code point. Code points outside
// the 16-bit range are never found.
func (f *Font) LookupRune(r rune) (Metric, bool) {
	if r < 0 || r > 0xffff {
		return Metric{}, false
	}
	return f.Lookup(uint16(r))
}

// Contains reports whether the table holds a glyph for r.
func (f *Font) Contains(r rune) bool {
	_, ok := f.LookupRune(r)
	return ok
}

// searchMetrics binary searches metrics[lo…hi] (inclusive bounds). cmp
// returns the sign of (element − key). It returns the position of the first
// probe comparing equal, or -1. Empty or out-of-range windows are a miss.
func searchMetrics(metrics []Metric, lo, hi int, cmp func(*Metric) int) int {
	if lo < 0 || hi >= len(metrics) {
		return -1
	}
	for lo <= hi {
		i := lo + (hi-lo)>>1
		c := cmp(&metrics[i])
		if c == 0 {
			return i
		}
		if c < 0 {
			lo = i + 1
		} else {
			hi = i - 1
		}
	}
	return -1
}
