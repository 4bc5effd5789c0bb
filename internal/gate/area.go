package gate

import "strings"

// Type classifies a gate. It is user supplied; the constants are the types
// the product catalog knows about.
type Type string

const (
	TypeUnknown   Type = "unknown"
	TypeSectional Type = "sektionaltor"
	TypeRolling   Type = "rolltor"
	TypeSliding   Type = "schiebetor"
	TypeSwing     Type = "drehtor"
	TypeDoor      Type = "tuer"
)

// KnownTypes returns the gate types offered in the type selection step.
func KnownTypes() []Type {
	return []Type{TypeSectional, TypeRolling, TypeSliding, TypeSwing, TypeDoor}
}

// ParseType normalizes free text into a Type. Empty input becomes TypeUnknown.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return TypeUnknown
	}
	return Type(s)
}

// Dimensions are the raw wizard inputs in centimeters.
type Dimensions struct {
	WidthCm       float64
	HeightCm      float64
	GlassHeightCm float64
}

// Areas are derived from Dimensions, in square meters.
// GateM2 + GlassM2 == TotalM2 holds for every value produced by this package.
type Areas struct {
	TotalM2 float64
	GlassM2 float64
	GateM2  float64
}

// AreaRule replaces the total area of a gate type. The result is validated
// before use and must not be smaller than the glass area.
type AreaRule func(d Dimensions) float64

// AreaRules maps gate types to their total area override. A nil map or a
// missing entry means width * height.
type AreaRules map[Type]AreaRule

// ComputeAreas derives the areas of a gate without any per-type rule.
func ComputeAreas(widthCm, heightCm, glassHeightCm float64, gateType Type) (Areas, error) {
	return AreaRules(nil).Compute(Dimensions{
		WidthCm:       widthCm,
		HeightCm:      heightCm,
		GlassHeightCm: glassHeightCm,
	}, gateType)
}

// Compute validates d and derives its areas, applying the rule registered for gateType.
func (r AreaRules) Compute(d Dimensions, gateType Type) (Areas, error) {
	if err := d.Validate(); err != nil {
		return Areas{}, err
	}

	total := AreaM2(d.WidthCm, d.HeightCm)
	glass := 0.0
	if d.GlassHeightCm > 0 {
		glass = AreaM2(d.WidthCm, d.GlassHeightCm)
	}

	if rule := r[gateType]; rule != nil {
		override := rule(d)
		if !isFinite(override) || override < 0 {
			return Areas{}, fieldError(ErrInvalidDimension, "totalArea", "area rule returned an invalid area")
		}
		if override < glass {
			return Areas{}, fieldError(ErrInvalidDimension, "totalArea", "area rule returned less than the glass area")
		}
		total = override
	}

	gateArea := total - glass
	if gateArea < 0 {
		gateArea = 0
	}

	return Areas{TotalM2: total, GlassM2: glass, GateM2: gateArea}, nil
}

// Validate checks that all dimensions are finite, non-negative and that the
// glass height does not exceed the height.
func (d Dimensions) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"width", d.WidthCm},
		{"height", d.HeightCm},
		{"glassHeight", d.GlassHeightCm},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return fieldError(ErrInvalidDimension, f.name, "must be a finite number")
		}
		if f.value < 0 {
			return fieldError(ErrInvalidDimension, f.name, "must not be negative")
		}
	}
	if d.GlassHeightCm > d.HeightCm {
		return fieldError(ErrInvalidDimension, "glassHeight", "must not exceed the height")
	}
	return nil
}
