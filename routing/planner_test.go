package routing

import (
	"errors"
	"math"
	"testing"
)

// panicPins fails the test if anything asks it for a pin.
type panicPins struct{ t *testing.T }

func (p panicPins) ResolvePin(component, pin string) (Pin, error) {
	p.t.Fatalf("pin %s.%s resolved before strategy validation", component, pin)
	return Pin{}, nil
}

func twoPins(start, startDir, end, endDir Point) PinTable {
	pins := PinTable{}
	pins.Add("Q0", "b", Pin{Position: start, Direction: startDir})
	pins.Add("Q1", "a", Pin{Position: end, Direction: endDir})
	return pins
}

func baseOptions() RouteOptions {
	return RouteOptions{
		StartPin: PinRef{Component: "Q0", Pin: "b"},
		EndPin:   PinRef{Component: "Q1", Pin: "a"},
	}
}

func TestMakeAllStraight(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{1, 0}, Point{1, 1}, Point{0, 1})
	opts := baseOptions()
	opts.Anchors = []Point{{1, 0}}

	plan, err := NewPlanner(pins, DefaultRouteContext()).Make(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Point{{0, 0}, {1, 0}, {1, 1}}
	if !samePoints(plan.Points, want) {
		t.Errorf("points = %v, want %v", plan.Points, want)
	}
	if plan.Budget.Active {
		t.Error("no meanders, budget should be inactive")
	}
	if math.Abs(plan.Length-2) > 1e-12 {
		t.Errorf("length = %.4f, want 2", plan.Length)
	}
}

func TestMakeSingleMeander(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{1, 0}, Point{10, 0}, Point{-1, 0})
	opts := baseOptions()
	opts.TotalLength = 14
	opts.Between = map[int]string{0: "M"}

	ctx := RouteContext{Meander: MeanderOptions{Spacing: 2}}
	plan, err := NewPlanner(pins, ctx).Make(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", plan.Warnings)
	}
	if math.Abs(plan.Length-14) > 0.01 {
		t.Errorf("length = %.4f, want 14 +/- 0.01", plan.Length)
	}
	if plan.Points[0] != (Point{0, 0}) || plan.Points[len(plan.Points)-1] != (Point{10, 0}) {
		t.Errorf("route runs %v -> %v, want pin to pin", plan.Points[0], plan.Points[len(plan.Points)-1])
	}
}

func TestMakeMixedRouteHitsTotalLength(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{1, 0}, Point{20, 0}, Point{-1, 0})
	opts := baseOptions()
	opts.TotalLength = 30
	opts.Anchors = []Point{{5, 0}, {15, 0}}
	opts.Between = map[int]string{0: "S", 1: "M", 2: "S"}
	opts.StartLead = LeadOptions{Straight: 1}
	opts.EndLead = LeadOptions{Straight: 1}

	ctx := RouteContext{
		Meander: MeanderOptions{Spacing: 1, PreventShortEdges: true, MinEdgeLength: 0.2},
	}
	plan, err := NewPlanner(pins, ctx).Make(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(plan.Length-30) > 1e-6 {
		t.Errorf("length = %.6f, want 30", plan.Length)
	}
	if got := plan.Budget.Targets[0]; math.Abs(got-20) > 1e-9 {
		t.Errorf("meander target = %.4f, want 20", got)
	}
	if len(plan.Segments) != 3 || plan.Segments[1].Strategy != Meandered {
		t.Errorf("segments = %d, middle %v; want 3 with a meander in the middle", len(plan.Segments), plan.Segments[1].Strategy)
	}
}

func TestMakeTwoMeandersShareTheBudget(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{1, 0}, Point{20, 0}, Point{-1, 0})
	opts := baseOptions()
	opts.TotalLength = 40
	opts.Anchors = []Point{{10, 0}}
	opts.Between = map[int]string{0: "M", 1: "M"}

	plan, err := NewPlanner(pins, RouteContext{Meander: MeanderOptions{Spacing: 1}}).Make(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, seg := range plan.Segments {
		if math.Abs(seg.Length()-20) > 1e-6 {
			t.Errorf("segment %d length = %.6f, want 20", i, seg.Length())
		}
	}
	if math.Abs(plan.Length-40) > 1e-6 {
		t.Errorf("length = %.6f, want 40", plan.Length)
	}
}

func TestMakeImpossibleMeanderWarns(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{1, 0}, Point{10, 0}, Point{-1, 0})
	opts := baseOptions()
	opts.TotalLength = 6
	opts.Between = map[int]string{0: "M"}

	plan, err := NewPlanner(pins, RouteContext{Meander: MeanderOptions{Spacing: 2}}).Make(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Warnings) != 1 || !errors.Is(plan.Warnings[0], ErrLengthUnsatisfied) {
		t.Fatalf("warnings = %v, want one LengthUnsatisfiedWarning", plan.Warnings)
	}
	want := []Point{{0, 0}, {10, 0}}
	if !samePoints(plan.Points, want) {
		t.Errorf("points = %v, want straight %v", plan.Points, want)
	}
}

func TestMakeInvalidStrategyBeforeGeometry(t *testing.T) {
	opts := baseOptions()
	opts.Anchors = []Point{{1, 0}}
	opts.Between = map[int]string{0: "Z"}

	_, err := NewPlanner(panicPins{t}, DefaultRouteContext()).Make(opts)

	var invalid *InvalidStrategyError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidStrategyError", err)
	}
}

func TestMakePathfinderAroundObstacle(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{1, 0}, Point{10, 0}, Point{-1, 0})
	opts := baseOptions()
	opts.Between = map[int]string{0: "PF"}

	idx := NewObstacleIndex([]Obstacle{square("qubit", 4, -1, 6, 1)})
	ctx := RouteContext{StepSize: 0.5, AvoidCollision: true, Obstacles: idx}
	plan, err := NewPlanner(pins, ctx).Make(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", plan.Warnings)
	}
	for i := 1; i < len(plan.Points); i++ {
		if !idx.SegmentClear(plan.Points[i-1], plan.Points[i]) {
			t.Errorf("hop %v -> %v crosses the obstacle", plan.Points[i-1], plan.Points[i])
		}
	}
	if len(plan.Points) < 3 {
		t.Errorf("points = %v, want a detour", plan.Points)
	}
}

func TestMakeMissingPin(t *testing.T) {
	opts := baseOptions()
	_, err := NewPlanner(PinTable{}, DefaultRouteContext()).Make(opts)
	if !errors.Is(err, ErrPinNotFound) {
		t.Fatalf("err = %v, want ErrPinNotFound", err)
	}
}

func TestMakeDegenerateRoute(t *testing.T) {
	pins := twoPins(Point{2, 2}, Point{1, 0}, Point{2, 2}, Point{-1, 0})
	_, err := NewPlanner(pins, DefaultRouteContext()).Make(baseOptions())
	if !errors.Is(err, ErrDegenerateRoute) {
		t.Fatalf("err = %v, want ErrDegenerateRoute", err)
	}
}

func TestMakeAlwaysHasTwoPoints(t *testing.T) {
	pins := twoPins(Point{0, 0}, Point{0, 1}, Point{3, 0}, Point{0, 1})
	for _, tag := range []string{"S", "PF", "M"} {
		opts := baseOptions()
		opts.TotalLength = 5
		opts.Anchors = []Point{{1.5, 2}}
		opts.Between = map[int]string{0: tag, 1: tag}
		opts.StartLead = LeadOptions{Straight: 0.5}
		opts.EndLead = LeadOptions{Straight: 0.5}

		plan, err := NewPlanner(pins, DefaultRouteContext()).Make(opts)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tag, err)
		}
		if len(plan.Points) < 2 {
			t.Errorf("%s: points = %v, want at least 2", tag, plan.Points)
		}
	}
}
