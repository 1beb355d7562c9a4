// Package routing plans interconnect traces between two component pins: lead
// extensions, per-segment straight / A* / meander strategies, meander length
// balancing and final polyline assembly.
package routing

import (
	"fmt"
	"log"
	"strings"
)

// PinRef names a pin on a component.
type PinRef struct {
	Component string `json:"component" yaml:"component"`
	Pin       string `json:"pin" yaml:"pin"`
}

func (r PinRef) String() string { return r.Component + "." + r.Pin }

// PinResolver looks up a pin's position and outward direction.
type PinResolver interface {
	ResolvePin(component, pin string) (Pin, error)
}

// PinTable is an in-memory PinResolver keyed by "component.pin".
type PinTable map[string]Pin

func (t PinTable) Add(component, pin string, p Pin) {
	t[PinRef{Component: component, Pin: pin}.String()] = p
}

func (t PinTable) ResolvePin(component, pin string) (Pin, error) {
	p, ok := t[PinRef{Component: component, Pin: pin}.String()]
	if !ok {
		return Pin{}, fmt.Errorf("%s.%s: %w", component, pin, ErrPinNotFound)
	}
	return p, nil
}

// RouteOptions is one route definition with every quantity already in millimetres.
type RouteOptions struct {
	StartPin    PinRef
	EndPin      PinRef
	TotalLength float64
	Anchors     []Point
	Between     map[int]string // segment index -> S, PF or M
	StartLead   LeadOptions
	EndLead     LeadOptions
}

// RoutePlan is the result of one planning pass.
type RoutePlan struct {
	Head      LeadExtension
	Tail      LeadExtension // runs from the end pin out to its tip
	Segments  []RouteSegment
	Budget    Budget
	Points    []Point
	Length    float64
	Requested float64
	Warnings  []error
}

// Planner runs the mixed-route pass: leads, per-segment strategies, meander
// balancing and assembly.
type Planner struct {
	pins   PinResolver
	router *SegmentRouter
}

func NewPlanner(pins PinResolver, ctx RouteContext) *Planner {
	return &Planner{pins: pins, router: NewSegmentRouter(ctx)}
}

// Make plans one route. Fatal errors abort the pass; non-fatal conditions are
// collected on the plan's Warnings.
func (p *Planner) Make(opts RouteOptions) (*RoutePlan, error) {
	graph, err := NewAnchorGraph(opts.Anchors, opts.Between)
	if err != nil {
		return nil, err
	}

	head, err := p.lead("start", opts.StartPin, opts.StartLead)
	if err != nil {
		return nil, err
	}
	tail, err := p.lead("end", opts.EndPin, opts.EndLead)
	if err != nil {
		return nil, err
	}

	plan := &RoutePlan{
		Head:      head,
		Tail:      tail,
		Segments:  make([]RouteSegment, graph.Segments()),
		Requested: opts.TotalLength,
	}

	// Fixed segments first; their lengths feed the meander budget.
	fixed := []float64{head.Length(), tail.Length()}
	var meanders []int
	var baselines []float64
	for i := 0; i < graph.Segments(); i++ {
		from, to := graph.Endpoints(i, head.Tip(), tail.Tip())
		if graph.Strategy(i) == Meandered {
			meanders = append(meanders, i)
			baselines = append(baselines, from.Distance(to))
			continue
		}
		seg, err := p.router.Route(i, graph.Strategy(i), from, to, 0)
		if err != nil {
			return nil, err
		}
		plan.Segments[i] = seg
		fixed = append(fixed, seg.Length())
	}

	plan.Budget = Balance(opts.TotalLength, fixed, baselines)
	for k, i := range meanders {
		from, to := graph.Endpoints(i, head.Tip(), tail.Tip())
		seg, err := p.router.Route(i, Meandered, from, to, plan.Budget.Targets[k])
		if err != nil {
			return nil, err
		}
		plan.Segments[i] = seg
	}

	parts := make([][]Point, 0, len(plan.Segments)+2)
	parts = append(parts, head.Points)
	for _, seg := range plan.Segments {
		if seg.Warning != nil {
			plan.Warnings = append(plan.Warnings, seg.Warning)
		}
		parts = append(parts, seg.points)
	}
	parts = append(parts, reversed(tail.Points))

	plan.Points, err = Assemble(parts...)
	if err != nil {
		return nil, fmt.Errorf("assemble %s -> %s: %w", opts.StartPin, opts.EndPin, err)
	}
	plan.Length = PathLength(plan.Points)

	log.Printf("route %s -> %s: segments=%s points=%d length=%.4f requested=%.4f warnings=%d",
		opts.StartPin, opts.EndPin, strategyTags(plan.Segments), len(plan.Points),
		plan.Length, plan.Requested, len(plan.Warnings))

	return plan, nil
}

func (p *Planner) lead(end string, ref PinRef, opts LeadOptions) (LeadExtension, error) {
	pin, err := p.pins.ResolvePin(ref.Component, ref.Pin)
	if err != nil {
		return LeadExtension{}, fmt.Errorf("resolve %s pin: %w", end, err)
	}
	l, err := BuildLead(pin, opts)
	if err != nil {
		return LeadExtension{}, fmt.Errorf("%s lead from %s: %w", end, ref, err)
	}
	return l, nil
}

func strategyTags(segments []RouteSegment) string {
	tags := make([]string, len(segments))
	for i, s := range segments {
		tags[i] = s.Strategy.Tag()
	}
	return strings.Join(tags, ",")
}
