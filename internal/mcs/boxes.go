package mcs

import "math"

// box is a hyperrectangle whose base point is its center.
type box struct {
	lo, hi []float64
	x      []float64
	f      float64
	level  int
	nsplit []int
}

func (b *box) clone() *box {
	return &box{
		lo:     append([]float64(nil), b.lo...),
		hi:     append([]float64(nil), b.hi...),
		x:      append([]float64(nil), b.x...),
		f:      b.f,
		level:  b.level,
		nsplit: append([]int(nil), b.nsplit...),
	}
}

// splitCoordinate picks the coordinate with the largest width relative to
// the root box. It returns -1 when every coordinate is degenerate.
func (b *box) splitCoordinate(width []float64) int {
	best, bestRel := -1, 0.0
	for i := range b.x {
		if width[i] <= 0 {
			continue
		}
		rel := (b.hi[i] - b.lo[i]) / width[i]
		if rel > bestRel {
			best, bestRel = i, rel
		}
	}
	return best
}

// boxList holds every box of a run, bucketed by level.
type boxList struct {
	levels [][]*box
	smax   int
	count  int
}

func newBoxList(smax int) *boxList {
	return &boxList{
		levels: make([][]*box, smax+1),
		smax:   smax,
	}
}

func (l *boxList) add(b *box) {
	l.levels[b.level] = append(l.levels[b.level], b)
	l.count++
}

func (l *boxList) remove(b *box) {
	bucket := l.levels[b.level]
	for k, c := range bucket {
		if c == b {
			bucket[k] = bucket[len(bucket)-1]
			l.levels[b.level] = bucket[:len(bucket)-1]
			l.count--
			return
		}
	}
}

// lowest returns the box with the smallest value at the given level.
func (l *boxList) lowest(level int) *box {
	var found *box
	for _, b := range l.levels[level] {
		if found == nil || b.f < found.f {
			found = b
		}
	}
	return found
}

// open reports whether any box can still be split.
func (l *boxList) open() bool {
	for s := 1; s < l.smax; s++ {
		if len(l.levels[s]) > 0 {
			return true
		}
	}
	return false
}

// split trisects b along coordinate i, evaluating the two outer centers.
// b keeps the middle third. It returns false when the evaluation budget ran
// out; in that case b is left untouched.
func (l *boxList) split(b *box, i int, e *evaluator) bool {
	third := (b.hi[i] - b.lo[i]) / 3

	left := b.clone()
	left.hi[i] = b.lo[i] + third
	left.x[i] = b.x[i] - third

	right := b.clone()
	right.lo[i] = b.hi[i] - third
	right.x[i] = b.x[i] + third

	fl, ok := e.eval(left.x)
	if !ok {
		return false
	}
	fr, ok := e.eval(right.x)
	if !ok {
		return false
	}
	left.f, right.f = fl, fr

	l.remove(b)
	b.lo[i] = left.hi[i]
	b.hi[i] = right.lo[i]

	for _, c := range []*box{b, left, right} {
		c.nsplit[i]++
		c.level = min(c.level+1, l.smax)
		l.add(c)
	}
	return true
}

// finalize moves a box that cannot be split to the final level.
func (l *boxList) finalize(b *box) {
	l.remove(b)
	b.level = l.smax
	l.add(b)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(1)
	}
	return v
}
