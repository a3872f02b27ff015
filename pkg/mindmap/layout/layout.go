// Package layout places new mind-map nodes relative to their parent.
//
// Placement is advisory: a child is put one column to the right of its
// parent and the fan of siblings is centered on the parent's y-coordinate.
// Existing nodes are never repositioned, and users may drag any node
// afterwards, so collisions with unrelated subtrees are not resolved.
//
// For a parent at (px, py) that already has k children, the new child is
// placed at:
//
//	x = px + HorizontalSpacing
//	y = py + k*VerticalSpacing - k*VerticalSpacing/2
//
// The computation is pure: the same parent position and child index always
// yield the same point.
package layout

import (
	"math"

	"github.com/matzehuels/mindmap/pkg/errors"
)

// Default spacing between a parent and its children, in canvas units.
const (
	DefaultHorizontalSpacing = 200
	DefaultVerticalSpacing   = 80
)

// Point is a position on the editor canvas.
type Point struct {
	X float64 `json:"x" bson:"x" yaml:"x"`
	Y float64 `json:"y" bson:"y" yaml:"y"`
}

// IsFinite reports whether both coordinates are finite real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Config holds the fixed spacing constants used for child placement.
type Config struct {
	HorizontalSpacing float64 `toml:"horizontal_spacing"`
	VerticalSpacing   float64 `toml:"vertical_spacing"`
}

// DefaultConfig returns the standard 200x80 spacing.
func DefaultConfig() Config {
	return Config{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
	}
}

// Validate rejects spacing that is non-positive or not finite.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"horizontal_spacing": c.HorizontalSpacing,
		"vertical_spacing":   c.VerticalSpacing,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "layout %s must be a positive number, got %v", name, v)
		}
	}
	return nil
}

// ChildPosition computes where the next child of a parent at parent goes,
// given the number of children the parent already has. The new child's
// 0-based index among its siblings is existingChildren.
func (c Config) ChildPosition(parent Point, existingChildren int) Point {
	if existingChildren < 0 {
		existingChildren = 0
	}
	childIndex := float64(existingChildren)
	existing := float64(existingChildren)
	return Point{
		X: parent.X + c.HorizontalSpacing,
		Y: parent.Y + childIndex*c.VerticalSpacing - existing*c.VerticalSpacing/2,
	}
}
