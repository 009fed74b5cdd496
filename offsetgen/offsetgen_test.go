package offsetgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isoroute/toolpath/clip"
	"github.com/isoroute/toolpath/polygonbuilder"
	"github.com/isoroute/toolpath/primitive"
)

func TestGenerate_SingleTraceIsolation(t *testing.T) {
	set := primitive.Set{Primitives: []primitive.Primitive{
		primitive.Trace{
			Start: primitive.Point{X: 0, Y: 0}, End: primitive.Point{X: 10, Y: 0},
			Width: 0.2, Mode: primitive.Linear, Polarity: primitive.Dark,
		},
	}}
	opts := polygonbuilder.DefaultOptions()
	source, _ := polygonbuilder.Build(set, opts)

	layers, err := Generate(source, Params{
		ToolDiameter: 0.2,
		Passes:       1,
		StepOver:     0.5,
		Direction:    External,
		JoinType:     clip.Round,
		EndType:      clip.ClosedPolygon,
		MiterLimit:   2.0,
		Scale:        opts.Scale,
	})
	require.NoError(t, err)
	require.Len(t, layers, 1)
	require.Len(t, layers[0].Paths, 1)

	area := clip.Area64(layers[0].Paths[0]) / (opts.Scale * opts.Scale)
	assert.InDelta(t, 4.205, area, 0.15)
}

func TestGenerate_InvalidParameters(t *testing.T) {
	_, err := Generate(nil, Params{ToolDiameter: 0, Passes: 1, StepOver: 0.5})
	assert.Error(t, err)

	_, err = Generate(nil, Params{ToolDiameter: 1, Passes: 0, StepOver: 0.5})
	assert.Error(t, err)

	_, err = Generate(nil, Params{ToolDiameter: 1, Passes: 1, StepOver: 1.5})
	assert.Error(t, err)
}

func TestGenerate_MultiplePassesDeltaProgression(t *testing.T) {
	set := primitive.Set{Primitives: []primitive.Primitive{
		primitive.Circle{Center: primitive.Point{X: 0, Y: 0}, Radius: 1, Polarity: primitive.Dark},
	}}
	opts := polygonbuilder.DefaultOptions()
	source, _ := polygonbuilder.Build(set, opts)

	layers, err := Generate(source, Params{
		ToolDiameter: 0.2,
		Passes:       3,
		StepOver:     0.5,
		Direction:    External,
		JoinType:     clip.Round,
		EndType:      clip.ClosedPolygon,
		MiterLimit:   2.0,
		Scale:        opts.Scale,
	})
	require.NoError(t, err)
	require.Len(t, layers, 3)
	assert.InDelta(t, 0.1, layers[0].Delta, 1e-9)
	assert.InDelta(t, 0.2, layers[1].Delta, 1e-9)
	assert.InDelta(t, 0.3, layers[2].Delta, 1e-9)
}
