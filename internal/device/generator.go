package device

import (
	"math/rand/v2"
	"sync"
)

// Random is the randomness a generator draws from. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// Generator derives the next reading of a sensor from the current one.
type Generator interface {
	Next(current, min, max float64) float64
}

const mutationChance = 0.5

// lockedRandom serialises access to a source shared between sensor loops.
type lockedRandom struct {
	mu sync.Mutex
	r  Random
}

func (l *lockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRandom) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// newDefaultRandom returns a goroutine safe source seeded from the runtime.
func newDefaultRandom() Random {
	return &lockedRandom{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// SoilMoistureGenerator moves the value by 1..5 in a random direction and
// keeps it inside [min,max].
type SoilMoistureGenerator struct{ Rand Random }

func (g SoilMoistureGenerator) Next(current, min, max float64) float64 {
	if g.Rand.Float64() >= mutationChance {
		return current
	}
	step := float64(1 + g.Rand.IntN(5))
	if g.Rand.IntN(2) == 0 {
		step = -step
	}
	return clamp(current+step, min, max)
}

// LightGenerator drifts by an integer in [-10,10]. Bounds are not applied.
type LightGenerator struct{ Rand Random }

func (g LightGenerator) Next(current, _, _ float64) float64 {
	if g.Rand.Float64() >= mutationChance {
		return current
	}
	return current + float64(g.Rand.IntN(21)-10)
}

// HumidityGenerator drifts by an integer in [-5,5]. Bounds are not applied.
type HumidityGenerator struct{ Rand Random }

func (g HumidityGenerator) Next(current, _, _ float64) float64 {
	if g.Rand.Float64() >= mutationChance {
		return current
	}
	return current + float64(g.Rand.IntN(11)-5)
}

// TemperatureGenerator drifts by a real in [-1,1). Bounds are not applied.
type TemperatureGenerator struct{ Rand Random }

func (g TemperatureGenerator) Next(current, _, _ float64) float64 {
	if g.Rand.Float64() >= mutationChance {
		return current
	}
	return current + g.Rand.Float64()*2 - 1
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
