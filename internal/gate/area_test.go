package gate_test

import (
	"errors"
	"math"
	"testing"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/gate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitConversion(t *testing.T) {
	assert.Equal(t, 250.0, gate.MetersToCentimeters(2.5))
	assert.Equal(t, 2.5, gate.CentimetersToMeters(250))
	assert.InDelta(t, 5.0, gate.AreaM2(200, 250), 1e-12)
}

func TestComputeAreas_Scenario(t *testing.T) {
	areas, err := gate.ComputeAreas(200, 250, 50, gate.TypeSectional)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, areas.TotalM2, 1e-9)
	assert.InDelta(t, 1.0, areas.GlassM2, 1e-9)
	assert.InDelta(t, 4.0, areas.GateM2, 1e-9)
}

func TestComputeAreas_PartsAddUpToTotal(t *testing.T) {
	widths := []float64{0, 1, 87.5, 200, 499.9, 1200}
	heights := []float64{0, 3, 150, 250, 612.3}

	for _, w := range widths {
		for _, h := range heights {
			for _, fraction := range []float64{0, 0.1, 0.5, 0.99, 1} {
				g := h * fraction
				areas, err := gate.ComputeAreas(w, h, g, gate.TypeUnknown)
				require.NoError(t, err, "w=%v h=%v g=%v", w, h, g)

				assert.InDelta(t, areas.TotalM2, areas.GateM2+areas.GlassM2, 1e-9, "w=%v h=%v g=%v", w, h, g)
				assert.GreaterOrEqual(t, areas.GateM2, 0.0)
				assert.GreaterOrEqual(t, areas.GlassM2, 0.0)
			}
		}
	}
}

func TestComputeAreas_NoGlass(t *testing.T) {
	areas, err := gate.ComputeAreas(300, 200, 0, gate.TypeRolling)
	require.NoError(t, err)

	assert.Equal(t, 0.0, areas.GlassM2)
	assert.InDelta(t, 6.0, areas.GateM2, 1e-9)
}

func TestComputeAreas_IsDeterministic(t *testing.T) {
	first, err := gate.ComputeAreas(123.4, 210.5, 33.3, gate.TypeSwing)
	require.NoError(t, err)
	second, err := gate.ComputeAreas(123.4, 210.5, 33.3, gate.TypeSwing)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeAreas_InvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		glass         float64
		field         string
	}{
		{"negative width", -1, 200, 0, "width"},
		{"negative height", 100, -0.5, 0, "height"},
		{"negative glass height", 100, 200, -10, "glassHeight"},
		{"NaN width", math.NaN(), 200, 0, "width"},
		{"infinite height", 100, math.Inf(1), 0, "height"},
		{"glass above height", 200, 250, 251, "glassHeight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.ComputeAreas(tt.width, tt.height, tt.glass, gate.TypeUnknown)
			require.Error(t, err)
			assert.True(t, errors.Is(err, gate.ErrInvalidDimension))

			var fe *gate.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestAreaRules_OverrideTotalArea(t *testing.T) {
	rules := gate.AreaRules{
		gate.TypeSliding: func(d gate.Dimensions) float64 {
			// sliding gates are priced including the run-off length
			return gate.AreaM2(d.WidthCm*1.5, d.HeightCm)
		},
	}

	areas, err := rules.Compute(gate.Dimensions{WidthCm: 400, HeightCm: 200, GlassHeightCm: 50}, gate.TypeSliding)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, areas.TotalM2, 1e-9)
	assert.InDelta(t, 2.0, areas.GlassM2, 1e-9)
	assert.InDelta(t, 10.0, areas.GateM2, 1e-9)

	plain, err := rules.Compute(gate.Dimensions{WidthCm: 400, HeightCm: 200, GlassHeightCm: 50}, gate.TypeSwing)
	require.NoError(t, err)
	assert.InDelta(t, 8.0, plain.TotalM2, 1e-9)
}

func TestAreaRules_RejectInvalidOverride(t *testing.T) {
	tests := []struct {
		name string
		rule gate.AreaRule
	}{
		{"negative", func(gate.Dimensions) float64 { return -1 }},
		{"NaN", func(gate.Dimensions) float64 { return math.NaN() }},
		{"below glass area", func(gate.Dimensions) float64 { return 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := gate.AreaRules{gate.TypeDoor: tt.rule}
			_, err := rules.Compute(gate.Dimensions{WidthCm: 200, HeightCm: 250, GlassHeightCm: 50}, gate.TypeDoor)
			assert.ErrorIs(t, err, gate.ErrInvalidDimension)
		})
	}
}

func TestParseType(t *testing.T) {
	assert.Equal(t, gate.TypeUnknown, gate.ParseType(""))
	assert.Equal(t, gate.TypeUnknown, gate.ParseType("   "))
	assert.Equal(t, gate.TypeSectional, gate.ParseType(" Sektionaltor "))
	assert.Equal(t, gate.Type("falttor"), gate.ParseType("Falttor"))
}
