package bridge

import (
	"errors"
	"fmt"
	"sort"
)

// Shape is one (box capacity, dimension) combination.
type Shape struct {
	SMax int `yaml:"smax" json:"smax"`
	N    int `yaml:"n" json:"n"`
}

func (s Shape) String() string {
	return fmt.Sprintf("smax=%d n=%d", s.SMax, s.N)
}

// Range enables every N in [MinN, MaxN] with SMax chosen at run time
// within [MinSMax, MaxSMax].
type Range struct {
	MinN    int `yaml:"min_n" json:"minN"`
	MaxN    int `yaml:"max_n" json:"maxN"`
	MinSMax int `yaml:"min_smax" json:"minSMax"`
	MaxSMax int `yaml:"max_smax" json:"maxSMax"`
}

// Menu lists the supported shapes.
type Menu struct {
	Pairs []Shape `yaml:"pairs" json:"pairs"`
	Range *Range  `yaml:"range,omitempty" json:"range,omitempty"`
}

// DefaultMenu returns the built-in pairs. The range form is off.
func DefaultMenu() Menu {
	return Menu{
		Pairs: []Shape{
			{SMax: 20, N: 6},
			{SMax: 21, N: 6},
			{SMax: 22, N: 6},
			{SMax: 20, N: 8},
			{SMax: 25, N: 8},
		},
	}
}

// Validate checks that every entry describes a runnable shape.
func (m Menu) Validate() error {
	if len(m.Pairs) == 0 && m.Range == nil {
		return errors.New("menu has no pairs and no range")
	}
	seen := make(map[Shape]bool, len(m.Pairs))
	for _, p := range m.Pairs {
		if p.N < 1 || p.SMax < 1 {
			return fmt.Errorf("menu pair %v: smax and n must be positive", p)
		}
		if seen[p] {
			return fmt.Errorf("menu pair %v listed twice", p)
		}
		seen[p] = true
	}
	if r := m.Range; r != nil {
		if r.MinN < 1 || r.MaxN < r.MinN {
			return fmt.Errorf("menu range: invalid n interval [%d, %d]", r.MinN, r.MaxN)
		}
		if r.MinSMax < 1 || r.MaxSMax < r.MinSMax {
			return fmt.Errorf("menu range: invalid smax interval [%d, %d]", r.MinSMax, r.MaxSMax)
		}
	}
	return nil
}

// sortedPairs returns the pairs ordered by N, then SMax.
func (m Menu) sortedPairs() []Shape {
	pairs := append([]Shape(nil), m.Pairs...)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].N != pairs[j].N {
			return pairs[i].N < pairs[j].N
		}
		return pairs[i].SMax < pairs[j].SMax
	})
	return pairs
}
