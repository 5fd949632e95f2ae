package initializers

import (
	"math"
	"math/rand"
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlorotUniformLimit(t *testing.T) {
	const fanIn, fanOut = 27, 576
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))

	g := GlorotUniform()
	assert.InDelta(t, limit, g.Limit(fanIn, fanOut), 1e-12)

	ws := make([]float64, 5000)
	g.Set(fanIn, fanOut, rand.New(rand.NewSource(1)), ws)

	for _, w := range ws {
		require.True(t, w >= -limit && w < limit, "weight %v outside ±%v", w, limit)
	}

	mean, err := stats.Mean(ws)
	require.NoError(t, err)
	assert.InDelta(t, 0, mean, limit/10)
}

func TestHeNormalVariance(t *testing.T) {
	const fanIn = 50
	ws := make([]float64, 20000)
	He().Set(fanIn, 10, rand.New(rand.NewSource(2)), ws)

	sd, err := stats.StandardDeviation(ws)
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(2.0/fanIn), sd, 0.01)

	max, err := stats.Max(ws)
	require.NoError(t, err)
	assert.LessOrEqual(t, max, 2*math.Sqrt(2.0/fanIn)/.87962566103423978+1e-9)
}

func TestTruncNormalStaysTruncated(t *testing.T) {
	var gen *truncNormal = TruncNormal().Mean(1).SD(0.5)
	assert.Equal(t, 1.0, gen.µ)
	assert.Equal(t, 0.5, gen.σ)

	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 20000; i++ {
		v := gen.Gen(rng)
		require.True(t, v >= 0 && v <= 2, "value %v beyond 2 sds", v)
	}
}

func TestNamed(t *testing.T) {
	const fanIn, fanOut = 36, 72

	limits := map[string]float64{
		"glorot-uniform": math.Sqrt(6.0 / (fanIn + fanOut)),
		"he-uniform":     math.Sqrt(6.0 / fanIn),
		"lecun-uniform":  math.Sqrt(3.0 / fanIn),
	}
	sds := map[string]float64{
		"glorot": math.Sqrt(2.0 / (fanIn + fanOut)),
		"xavier": math.Sqrt(2.0 / (fanIn + fanOut)),
		"he":     math.Sqrt(2.0 / fanIn),
		"lecun":  math.Sqrt(1.0 / fanIn),
	}
	require.Len(t, Names(), len(limits)+len(sds))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			ini, err := Named(name)
			require.NoError(t, err)

			ws := make([]float64, 20000)
			ini.Set(fanIn, fanOut, rand.New(rand.NewSource(5)), ws)

			if limit, ok := limits[name]; ok {
				for _, w := range ws {
					require.True(t, w >= -limit && w < limit, "weight %v outside ±%v", w, limit)
				}
				return
			}

			sd, err := stats.StandardDeviation(ws)
			require.NoError(t, err)
			assert.InDelta(t, sds[name], sd, sds[name]/20)
		})
	}

	def, err := Named("")
	require.NoError(t, err)
	assert.Equal(t, Default(), def)

	_, err = Named("orthogonal")
	assert.True(t, errors.Is(err, ErrUnknownInit))
}

func TestUniformAndZeros(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	ws := make([]float64, 100)

	Uniform().Bounds(2, -2).Set(0, 0, rng, ws)
	for _, w := range ws {
		require.True(t, w >= -2 && w < 2)
	}

	Zeros().Set(0, 0, rng, ws)
	for _, w := range ws {
		require.Zero(t, w)
	}
}

func TestSetDefault(t *testing.T) {
	assert.Error(t, SetDefault("nope", 1))
	assert.Error(t, SetDefault("normal-sd", math.NaN()))

	old := defaultValue["normal-mean"]
	defer func() { defaultValue["normal-mean"] = old }()

	require.NoError(t, SetDefault("normal-mean", 4))
	assert.Equal(t, 4.0, Normal().µ)
}

func TestSameSeedSameWeights(t *testing.T) {
	a := make([]float64, 10)
	b := make([]float64, 10)
	Default().Set(9, 9, rand.New(rand.NewSource(42)), a)
	Default().Set(9, 9, rand.New(rand.NewSource(42)), b)
	assert.Equal(t, a, b)
}
