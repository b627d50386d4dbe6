package geometry

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a linear-space RGBA color. Decoders convert from the encoded
// (sRGB) values they read before storing.
type Color struct {
	R, G, B, A float64
}

// NewColorFromSRGB linearizes an 8-bit sRGB triple.
func NewColorFromSRGB(r, g, b uint8) Color {
	return NewColorFromSRGBFloats(float64(r)/255, float64(g)/255, float64(b)/255)
}

// NewColorFromSRGBFloats linearizes an sRGB triple with components in [0, 1].
func NewColorFromSRGBFloats(r, g, b float64) Color {
	lr, lg, lb := colorful.Color{R: r, G: g, B: b}.LinearRgb()
	return Color{R: lr, G: lg, B: lb, A: 1}
}

// White is the fallback color when an STL file declares no color at all.
func White() Color {
	return Color{R: 1, G: 1, B: 1, A: 1}
}

// Material is a renderer-agnostic material descriptor. STL decoding fills in
// Diffuse only; COLLADA profile_COMMON fills the rest.
type Material struct {
	Name              string
	Diffuse           Color
	Emissive          Color
	Specular          Color
	Shininess         float64
	Reflectivity      float64
	IndexOfRefraction float64
	DoubleSided       bool
	TextureName       string
}

// DefaultMaterial is used when a COLLADA material reference cannot be
// resolved: flat blue, double sided.
func DefaultMaterial() *Material {
	return &Material{
		Name:        "default",
		Diffuse:     Color{B: 1, A: 1},
		DoubleSided: true,
	}
}
