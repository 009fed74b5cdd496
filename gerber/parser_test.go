package gerber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isoroute/toolpath/primitive"
)

func TestParse_SimpleTrace(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\n%ADD10C,0.200000*%\nD10*\nG01*\nX0Y0D02*\nX1000000Y0D01*\nM02*\n"
	res, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, res.Set.Primitives, 1)

	tr, ok := res.Set.Primitives[0].(primitive.Trace)
	require.True(t, ok)
	assert.InDelta(t, 0, tr.Start.X, 1e-6)
	assert.InDelta(t, 100, tr.End.X, 1e-6)
	assert.InDelta(t, 0.2, tr.Width, 1e-6)
	assert.Equal(t, primitive.Dark, tr.Polarity)
}

func TestParse_FlashWithPolarity(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\n%ADD11C,0.5*%\n%LPC*%\nD11*\nX500000Y500000D03*\nM02*\n"
	res, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, res.Set.Primitives, 1)

	fl, ok := res.Set.Primitives[0].(primitive.Flash)
	require.True(t, ok)
	assert.Equal(t, primitive.Clear, fl.Polarity)
	assert.InDelta(t, 50, fl.Position.X, 1e-6)
	assert.Equal(t, primitive.ShapeCircle, fl.Aperture.Shape)
}

func TestParse_UndefinedApertureWarns(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\nD99*\nX0Y0D03*\nM02*\n"
	res, err := Parse(src)
	require.NoError(t, err)
	assert.Empty(t, res.Set.Primitives)
	require.NotEmpty(t, res.Set.Warnings)
}

func TestParse_Region(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\nG36*\nX0Y0D02*\nG01*\nX1000000Y0D01*\nX1000000Y1000000D01*\nX0Y1000000D01*\nX0Y0D01*\nG37*\nM02*\n"
	res, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, res.Set.Primitives, 1)

	reg, ok := res.Set.Primitives[0].(primitive.Region)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(reg.Points), 4)
}

func TestParse_MacroAperture(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOMM*%\n%AMDONUT*\n1,1,0.5,0,0*\n1,0,0.25,0,0*\n%\n%ADD12DONUT*%\nD12*\nX0Y0D03*\nM02*\n"
	res, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, res.Set.Primitives, 1)

	fl, ok := res.Set.Primitives[0].(primitive.Flash)
	require.True(t, ok)
	assert.Equal(t, primitive.ShapeMacro, fl.Aperture.Shape)
	require.Len(t, fl.Aperture.Primitives, 2)

	box := fl.Aperture.BoundingBox()
	assert.InDelta(t, -0.25, box.MinX, 1e-6)
	assert.InDelta(t, 0.25, box.MaxX, 1e-6)
}

func TestParse_InchUnitsConvertToMM(t *testing.T) {
	src := "%FSLAX24Y24*%\n%MOIN*%\n%ADD10C,0.01*%\nD10*\nX0Y0D02*\nX100000Y0D01*\nM02*\n"
	res, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, res.Set.Primitives, 1)
	tr := res.Set.Primitives[0].(primitive.Trace)
	assert.InDelta(t, 254, tr.End.X, 1e-3)
}
