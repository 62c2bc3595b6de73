// Package model contains domain models passed between layers.
package model

import "gonum.org/v1/gonum/floats"

// euclidean is the L-norm order passed to floats.Distance.
const euclidean = 2

// DataPoint is a single sensor sample for one joint in one bin.
type DataPoint struct {
	Velocity float64 // joint velocity
	Position float64 // joint position
	Effort   float64 // joint effort
}

func (p DataPoint) vector() [3]float64 {
	return [3]float64{p.Velocity, p.Position, p.Effort}
}

// Distance returns the unweighted Euclidean distance between a and b over the
// raw velocity, position and effort values. The three axes are not scaled, so
// callers must not assume they are commensurable.
func Distance(a, b DataPoint) float64 {
	av, bv := a.vector(), b.vector()
	return floats.Distance(av[:], bv[:], euclidean)
}
