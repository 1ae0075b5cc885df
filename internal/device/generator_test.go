package device

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

const ticks = 2000

func TestSoilMoistureGenerator_StaysInBounds(t *testing.T) {
	g := SoilMoistureGenerator{Rand: rand.New(rand.NewPCG(1, 2))}
	v := 50.0
	for i := 0; i < ticks; i++ {
		next := g.Next(v, 0, 100)
		assert.GreaterOrEqual(t, next, 0.0)
		assert.LessOrEqual(t, next, 100.0)
		assert.LessOrEqual(t, math.Abs(next-v), 5.0)
		v = next
	}
}

func TestSoilMoistureGenerator_ClampsAtEdges(t *testing.T) {
	up := SoilMoistureGenerator{Rand: fixedRandom{f: 0.1}}
	assert.Equal(t, 100.0, up.Next(98, 0, 100))
	assert.Equal(t, 45.0, up.Next(40, 0, 100))

	// narrow band with a non-zero floor
	g := SoilMoistureGenerator{Rand: rand.New(rand.NewPCG(3, 4))}
	v := 20.0
	for i := 0; i < ticks; i++ {
		v = g.Next(v, 20, 22)
		assert.GreaterOrEqual(t, v, 20.0)
		assert.LessOrEqual(t, v, 22.0)
	}
}

func TestLightGenerator_IntegerSteps(t *testing.T) {
	g := LightGenerator{Rand: rand.New(rand.NewPCG(5, 6))}
	v := 1000.0
	for i := 0; i < ticks; i++ {
		next := g.Next(v, 0, 3000)
		d := next - v
		assert.LessOrEqual(t, math.Abs(d), 10.0)
		assert.Equal(t, math.Trunc(d), d)
		v = next
	}
}

func TestHumidityGenerator_IntegerSteps(t *testing.T) {
	g := HumidityGenerator{Rand: rand.New(rand.NewPCG(7, 8))}
	v := 50.0
	for i := 0; i < ticks; i++ {
		next := g.Next(v, 0, 100)
		d := next - v
		assert.LessOrEqual(t, math.Abs(d), 5.0)
		assert.Equal(t, math.Trunc(d), d)
		v = next
	}
}

func TestTemperatureGenerator_Step(t *testing.T) {
	g := TemperatureGenerator{Rand: rand.New(rand.NewPCG(9, 10))}
	v := 20.0
	for i := 0; i < ticks; i++ {
		next := g.Next(v, -20, 80)
		d := next - v
		assert.GreaterOrEqual(t, d, -1.0-1e-9)
		assert.Less(t, d, 1.0+1e-9)
		v = next
	}
}

func TestUnclampedGenerators_IgnoreBounds(t *testing.T) {
	r := fixedRandom{f: 0.1}
	assert.Equal(t, 110.0, LightGenerator{Rand: r}.Next(100, 0, 100))
	assert.Equal(t, 105.0, HumidityGenerator{Rand: r}.Next(100, 0, 100))
	assert.InDelta(t, 79.2, TemperatureGenerator{Rand: r}.Next(80, -20, 80), 1e-9)
}

func TestGenerators_NoMutation(t *testing.T) {
	r := fixedRandom{f: 0.9}
	for _, g := range []Generator{
		SoilMoistureGenerator{Rand: r},
		LightGenerator{Rand: r},
		HumidityGenerator{Rand: r},
		TemperatureGenerator{Rand: r},
	} {
		assert.Equal(t, 42.0, g.Next(42, 0, 100))
	}
}
