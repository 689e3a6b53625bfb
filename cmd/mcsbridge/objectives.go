package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/mcsbridge/internal/mcs"
)

// objectiveFactory builds a test objective for dimension n.
type objectiveFactory func(n int) mcs.Objective

var objectives = map[string]objectiveFactory{
	"sphere":         func(int) mcs.Objective { return sphere },
	"shifted-sphere": shiftedSphere,
	"rastrigin":      func(int) mcs.Objective { return rastrigin },
	"rosenbrock":     func(int) mcs.Objective { return rosenbrock },
	"constant":       func(int) mcs.Objective { return func([]float64) float64 { return 1 } },
}

func objectiveNames() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupObjective(name string, n int) (mcs.Objective, error) {
	factory, ok := objectives[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q (available: %v)", name, objectiveNames())
	}
	return factory(n), nil
}

func sphere(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// shiftedCenter is the minimizer of shifted-sphere: coordinate i sits at
// 0.5*sin(i+1), which stays inside [-1, 1].
func shiftedCenter(n int) []float64 {
	c := make([]float64, n)
	for i := range c {
		c[i] = 0.5 * math.Sin(float64(i+1))
	}
	return c
}

func shiftedSphere(n int) mcs.Objective {
	c := shiftedCenter(n)
	return func(x []float64) float64 {
		sum := 0.0
		for i, v := range x {
			d := v - c[i]
			sum += d * d
		}
		return sum
	}
}

func rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

func rosenbrock(x []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}
