package routing

import (
	"fmt"
	"strings"
)

// Pin is the resolved location of a component pin and the outward direction a
// trace must leave it in.
type Pin struct {
	Position  Point
	Direction Point
}

// Jog is one step of a jogged lead extension: turn, then run Length.
type Jog struct {
	Turn   string
	Length float64
}

// LeadOptions describes the extension built out from a pin.
type LeadOptions struct {
	Straight float64
	Jogs     []Jog
}

// LeadExtension is the lead built out from one pin. Points run from the pin to the tip.
type LeadExtension struct {
	Points    []Point
	Direction Point // heading at the tip
}

// Tip is the point where routing between anchors begins or ends.
func (l LeadExtension) Tip() Point { return l.Points[len(l.Points)-1] }

func (l LeadExtension) Length() float64 { return PathLength(l.Points) }

// BuildLead extends a pin straight along its direction, then applies each jog.
func BuildLead(pin Pin, opts LeadOptions) (LeadExtension, error) {
	dir := pin.Direction.Unit()
	if dir.Norm() == 0 {
		return LeadExtension{}, fmt.Errorf("pin at (%g, %g) has no direction: %w", pin.Position.X, pin.Position.Y, ErrInvalidPin)
	}
	if opts.Straight < 0 {
		return LeadExtension{}, fmt.Errorf("negative straight lead %g: %w", opts.Straight, ErrInvalidJog)
	}

	points := []Point{pin.Position}
	tip := pin.Position
	if opts.Straight > 0 {
		tip = tip.Add(dir.Scale(opts.Straight))
		points = append(points, tip)
	}

	for i, jog := range opts.Jogs {
		switch strings.ToUpper(strings.TrimSpace(jog.Turn)) {
		case "L", "LEFT":
			dir = dir.RotateLeft()
		case "R", "RIGHT":
			dir = dir.RotateRight()
		case "F", "FORWARD", "":
		default:
			return LeadExtension{}, fmt.Errorf("jog %d: unknown turn %q: %w", i, jog.Turn, ErrInvalidJog)
		}
		if jog.Length < 0 {
			return LeadExtension{}, fmt.Errorf("jog %d: negative length %g: %w", i, jog.Length, ErrInvalidJog)
		}
		if jog.Length == 0 {
			continue
		}
		tip = tip.Add(dir.Scale(jog.Length))
		points = append(points, tip)
	}

	return LeadExtension{Points: points, Direction: dir}, nil
}
