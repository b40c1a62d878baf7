package metadata

import "github.com/spaghettifunk/prism/engine/math"

/** @brief The closed set of light kinds a scene can carry. */
type LightKind uint8

const (
	LightKindDirectional LightKind = iota
	LightKindPoint
	LightKindSpot
)

func (k LightKind) String() string {
	switch k {
	case LightKindDirectional:
		return "directional"
	case LightKindPoint:
		return "point"
	case LightKindSpot:
		return "spot"
	}
	return "unknown"
}

/** @brief Payload of a directional light. */
type DirectionalLight struct {
	Direction math.Vec3
}

/** @brief Payload of a point light. Attenuation is (constant, linear, quadratic). */
type PointLight struct {
	Attenuation math.Vec3
}

/**
 * @brief Payload of a spot light. Cutoffs are half-angles of the inner and
 * outer cone, in degrees.
 */
type SpotLight struct {
	Direction   math.Vec3
	Attenuation math.Vec3
	InnerCutoff float32
	OuterCutoff float32
}

/**
 * @brief A scene light. Kind selects which payload is meaningful; the fields
 * every kind shares live on Light itself. Position is ignored by
 * directional lights.
 */
type Light struct {
	Kind      LightKind
	Position  math.Vec3
	Color     math.Vec3
	Intensity float32

	Directional DirectionalLight
	Point       PointLight
	Spot        SpotLight
}

func defaultAttenuation() math.Vec3 {
	return math.NewVec3(1.0, 0.09, 0.032)
}

/**
 * @brief Creates a white directional light of intensity 1.
 */
func NewDirectionalLight(direction math.Vec3) Light {
	return Light{
		Kind:        LightKindDirectional,
		Color:       math.NewVec3One(),
		Intensity:   1.0,
		Directional: DirectionalLight{Direction: direction},
	}
}

/**
 * @brief Creates a white point light of intensity 1 with the default
 * attenuation (1, 0.09, 0.032).
 */
func NewPointLight(position math.Vec3) Light {
	return Light{
		Kind:      LightKindPoint,
		Position:  position,
		Color:     math.NewVec3One(),
		Intensity: 1.0,
		Point:     PointLight{Attenuation: defaultAttenuation()},
	}
}

/**
 * @brief Creates a white spot light of intensity 1 with cone half-angles
 * 12.5 and 17.5 degrees and the default attenuation.
 */
func NewSpotLight(position, direction math.Vec3) Light {
	return Light{
		Kind:      LightKindSpot,
		Position:  position,
		Color:     math.NewVec3One(),
		Intensity: 1.0,
		Spot: SpotLight{
			Direction:   direction,
			Attenuation: defaultAttenuation(),
			InnerCutoff: 12.5,
			OuterCutoff: 17.5,
		},
	}
}

/** @brief The single ambient term of a scene. */
type AmbientLight struct {
	Color     math.Vec3
	Intensity float32
}

func NewAmbientLight() AmbientLight {
	return AmbientLight{Color: math.NewVec3One()}
}
