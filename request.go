package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mixed-route-planner/routing"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRequest marks route definitions that cannot be turned into planner options.
var ErrInvalidRequest = errors.New("invalid route request")

type PinSpec struct {
	Component string      `json:"component" yaml:"component"`
	Pin       string      `json:"pin" yaml:"pin"`
	Position  [2]Quantity `json:"position" yaml:"position"`
	Direction [2]float64  `json:"direction" yaml:"direction"`
}

type PinInputs struct {
	StartPin routing.PinRef `json:"start_pin" yaml:"start_pin"`
	EndPin   routing.PinRef `json:"end_pin" yaml:"end_pin"`
}

// LeadSpec jogged extensions are ordered [turn, length] pairs, e.g. ["R", "200um"].
type LeadSpec struct {
	StartStraight        Quantity      `json:"start_straight" yaml:"start_straight"`
	EndStraight          Quantity      `json:"end_straight" yaml:"end_straight"`
	StartJoggedExtension [][2]Quantity `json:"start_jogged_extension,omitempty" yaml:"start_jogged_extension,omitempty"`
	EndJoggedExtension   [][2]Quantity `json:"end_jogged_extension,omitempty" yaml:"end_jogged_extension,omitempty"`
}

type MeanderSpec struct {
	Spacing   Quantity `json:"spacing" yaml:"spacing"`
	Asymmetry Quantity `json:"asymmetry" yaml:"asymmetry"`
}

type AdvancedSpec struct {
	AvoidCollision *bool `json:"avoid_collision,omitempty" yaml:"avoid_collision,omitempty"`
	SearchBudget   int   `json:"search_budget,omitempty" yaml:"search_budget,omitempty"`
}

// ObstacleSpec is an inline keep-out polygon, listed without the closing point.
type ObstacleSpec struct {
	Name   string        `json:"name" yaml:"name"`
	Points [][2]Quantity `json:"points" yaml:"points"`
}

// RouteRequest is one route definition as written by a user, in JSON or YAML.
// Lengths are unit strings or bare millimetres.
type RouteRequest struct {
	Name              string         `json:"name,omitempty" yaml:"name,omitempty"`
	PinInputs         PinInputs      `json:"pin_inputs" yaml:"pin_inputs"`
	Pins              []PinSpec      `json:"pins" yaml:"pins"`
	TotalLength       Quantity       `json:"total_length" yaml:"total_length"`
	StepSize          Quantity       `json:"step_size,omitempty" yaml:"step_size,omitempty"`
	Anchors           [][2]Quantity  `json:"anchors,omitempty" yaml:"anchors,omitempty"`
	BetweenAnchors    map[int]string `json:"between_anchors,omitempty" yaml:"between_anchors,omitempty"`
	Advanced          AdvancedSpec   `json:"advanced" yaml:"advanced"`
	Meander           MeanderSpec    `json:"meander" yaml:"meander"`
	PreventShortEdges *bool          `json:"prevent_short_edges,omitempty" yaml:"prevent_short_edges,omitempty"`
	Fillet            Quantity       `json:"fillet,omitempty" yaml:"fillet,omitempty"`
	Snap              any            `json:"snap,omitempty" yaml:"snap,omitempty"` // accepted so existing definitions load; no effect
	Lead              LeadSpec       `json:"lead" yaml:"lead"`
	TraceWidth        Quantity       `json:"trace_width,omitempty" yaml:"trace_width,omitempty"`
	Layer             string         `json:"layer,omitempty" yaml:"layer,omitempty"`
	Chip              string         `json:"chip,omitempty" yaml:"chip,omitempty"`
	Obstacles         []ObstacleSpec `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`

	// Design variables usable in place of any length, e.g. cpw_width: 10um.
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// RouteMeta is carried through to exports; geometry never reads it.
type RouteMeta struct {
	Name       string  `json:"name,omitempty"`
	TraceWidth float64 `json:"traceWidth"`
	Layer      string  `json:"layer"`
	Chip       string  `json:"chip"`
}

// ResolvedRoute is a RouteRequest with every quantity in millimetres.
type ResolvedRoute struct {
	Options   routing.RouteOptions
	Context   routing.RouteContext
	Pins      routing.PinTable
	Obstacles []routing.Obstacle // inline obstacles only
	Meta      RouteMeta
}

// Resolve converts the request into planner input, starting from base for
// anything the request leaves unset.
func (req *RouteRequest) Resolve(base routing.RouteContext) (*ResolvedRoute, error) {
	p := LengthParser{Vars: req.Variables}
	out := &ResolvedRoute{Context: base, Pins: routing.PinTable{}}

	if err := req.resolvePins(p, out.Pins); err != nil {
		return nil, err
	}

	var err error
	opts := routing.RouteOptions{
		StartPin: req.PinInputs.StartPin,
		EndPin:   req.PinInputs.EndPin,
		Between:  req.BetweenAnchors,
	}
	if opts.TotalLength, err = p.Parse(req.TotalLength, 0); err != nil {
		return nil, fmt.Errorf("total_length: %w", err)
	}
	if opts.Anchors, err = parsePoints(p, req.Anchors); err != nil {
		return nil, fmt.Errorf("anchors: %w", err)
	}
	if opts.StartLead, err = parseLead(p, req.Lead.StartStraight, req.Lead.StartJoggedExtension); err != nil {
		return nil, fmt.Errorf("lead start: %w", err)
	}
	if opts.EndLead, err = parseLead(p, req.Lead.EndStraight, req.Lead.EndJoggedExtension); err != nil {
		return nil, fmt.Errorf("lead end: %w", err)
	}
	out.Options = opts

	if err := req.resolveContext(p, &out.Context); err != nil {
		return nil, err
	}

	for i, o := range req.Obstacles {
		ring, err := parseRing(p, o.Points)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d (%s): %w", i, o.Name, err)
		}
		out.Obstacles = append(out.Obstacles, routing.Obstacle{Name: o.Name, Ring: ring})
	}

	width := req.TraceWidth
	if width == "" {
		width = "cpw_width"
	}
	out.Meta = RouteMeta{Name: req.Name, Layer: req.Layer, Chip: req.Chip}
	if out.Meta.TraceWidth, err = p.Parse(width, 0); err != nil {
		return nil, fmt.Errorf("trace_width: %w", err)
	}
	if out.Meta.Layer == "" {
		out.Meta.Layer = "1"
	}
	if out.Meta.Chip == "" {
		out.Meta.Chip = "main"
	}

	return out, nil
}

func (req *RouteRequest) resolvePins(p LengthParser, table routing.PinTable) error {
	for _, spec := range req.Pins {
		if spec.Component == "" || spec.Pin == "" {
			return fmt.Errorf("pin entry needs component and pin: %w", ErrInvalidRequest)
		}
		pos, err := parsePoint(p, spec.Position)
		if err != nil {
			return fmt.Errorf("pin %s.%s position: %w", spec.Component, spec.Pin, err)
		}
		table.Add(spec.Component, spec.Pin, routing.Pin{
			Position:  pos,
			Direction: routing.Point{X: spec.Direction[0], Y: spec.Direction[1]},
		})
	}
	return nil
}

func (req *RouteRequest) resolveContext(p LengthParser, ctx *routing.RouteContext) error {
	var err error
	if ctx.StepSize, err = p.Parse(req.StepSize, ctx.StepSize); err != nil {
		return fmt.Errorf("step_size: %w", err)
	}
	if ctx.StepSize <= 0 {
		return fmt.Errorf("step_size must be positive: %w", ErrInvalidRequest)
	}
	if req.Advanced.AvoidCollision != nil {
		ctx.AvoidCollision = *req.Advanced.AvoidCollision
	}
	// The base budget is a ceiling; requests may only lower it.
	if b := req.Advanced.SearchBudget; b > 0 && (ctx.SearchBudget <= 0 || b < ctx.SearchBudget) {
		ctx.SearchBudget = b
	}

	m := &ctx.Meander
	if m.Spacing, err = p.Parse(req.Meander.Spacing, m.Spacing); err != nil {
		return fmt.Errorf("meander spacing: %w", err)
	}
	if m.Asymmetry, err = p.Parse(req.Meander.Asymmetry, m.Asymmetry); err != nil {
		return fmt.Errorf("meander asymmetry: %w", err)
	}
	if req.PreventShortEdges != nil {
		m.PreventShortEdges = *req.PreventShortEdges
	}
	fillet, err := p.Parse(req.Fillet, 0)
	if err != nil {
		return fmt.Errorf("fillet: %w", err)
	}
	// Two fillets have to fit on every edge.
	if fillet > 0 {
		m.MinEdgeLength = 2 * fillet
	}
	return nil
}

func parsePoint(p LengthParser, q [2]Quantity) (routing.Point, error) {
	x, err := p.Parse(q[0], 0)
	if err != nil {
		return routing.Point{}, err
	}
	y, err := p.Parse(q[1], 0)
	if err != nil {
		return routing.Point{}, err
	}
	return routing.Point{X: x, Y: y}, nil
}

func parsePoints(p LengthParser, qs [][2]Quantity) ([]routing.Point, error) {
	points := make([]routing.Point, 0, len(qs))
	for i, q := range qs {
		pt, err := parsePoint(p, q)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		points = append(points, pt)
	}
	return points, nil
}

func parseRing(p LengthParser, qs [][2]Quantity) (orb.Ring, error) {
	points, err := parsePoints(p, qs)
	if err != nil {
		return nil, err
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 points: %w", ErrInvalidRequest)
	}
	ring := make(orb.Ring, 0, len(points)+1)
	for _, pt := range points {
		ring = append(ring, pt.Orb())
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

func parseLead(p LengthParser, straight Quantity, jogs [][2]Quantity) (routing.LeadOptions, error) {
	var lead routing.LeadOptions
	var err error
	if lead.Straight, err = p.Parse(straight, 0); err != nil {
		return lead, err
	}
	for i, j := range jogs {
		length, err := p.Parse(j[1], 0)
		if err != nil {
			return lead, fmt.Errorf("jog %d: %w", i, err)
		}
		lead.Jogs = append(lead.Jogs, routing.Jog{Turn: string(j[0]), Length: length})
	}
	return lead, nil
}

// decodeRouteRequest reads one JSON object, rejecting unknown fields.
func decodeRouteRequest(r io.Reader) (*RouteRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req RouteRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode route json: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("body must contain only one JSON object: %w", ErrInvalidRequest)
	}
	return &req, nil
}

// loadRouteFile reads a route definition. .json files are JSON, anything else YAML.
func loadRouteFile(path string) (*RouteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file %q: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return decodeRouteRequest(bytes.NewReader(data))
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var req RouteRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode route yaml %q: %w", path, err)
	}
	return &req, nil
}
