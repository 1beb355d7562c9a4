package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"strings"
	"testing"

	"mixed-route-planner/routing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func samplePlan(t *testing.T) (*routing.RoutePlan, []routing.Obstacle) {
	t.Helper()

	pins := routing.PinTable{}
	pins.Add("Q0", "b", routing.Pin{Position: routing.Point{X: 0, Y: 0}, Direction: routing.Point{X: 1, Y: 0}})
	pins.Add("Q1", "a", routing.Pin{Position: routing.Point{X: 20, Y: 0}, Direction: routing.Point{X: -1, Y: 0}})

	obstacles := []routing.Obstacle{{
		Name: "pad",
		Ring: orb.Ring{{16, -1}, {17, -1}, {17, 1}, {16, 1}, {16, -1}},
	}}
	ctx := routing.DefaultRouteContext()
	ctx.StepSize = 0.5
	ctx.Meander = routing.MeanderOptions{Spacing: 1}
	ctx.Obstacles = routing.NewObstacleIndex(obstacles)

	plan, err := routing.NewPlanner(pins, ctx).Make(routing.RouteOptions{
		StartPin:    routing.PinRef{Component: "Q0", Pin: "b"},
		EndPin:      routing.PinRef{Component: "Q1", Pin: "a"},
		TotalLength: 30,
		Anchors:     []routing.Point{{X: 5, Y: 0}, {X: 14, Y: 0}},
		Between:     map[int]string{1: "M", 2: "PF"},
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return plan, obstacles
}

func TestRouteFeatureCollection(t *testing.T) {
	plan, obstacles := samplePlan(t)
	meta := RouteMeta{Name: "bus", TraceWidth: 0.01, Layer: "1", Chip: "main"}

	data, err := routeFeatureCollection(plan, meta, obstacles).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// route + 3 segments + 1 obstacle
	if len(fc.Features) != 5 {
		t.Fatalf("features = %d, want 5", len(fc.Features))
	}

	route := fc.Features[0]
	ls, ok := route.Geometry.(orb.LineString)
	if !ok || len(ls) != len(plan.Points) {
		t.Fatalf("route geometry = %T with %d points, want LineString of %d", route.Geometry, len(ls), len(plan.Points))
	}
	if got := route.Properties.MustFloat64("length"); math.Abs(got-plan.Length) > 1e-9 {
		t.Errorf("length property = %g, want %g", got, plan.Length)
	}
	if route.Properties.MustString("layer") != "1" || route.Properties.MustFloat64("trace_width") != 0.01 {
		t.Errorf("route properties = %v", route.Properties)
	}

	meander := fc.Features[2]
	if meander.Properties.MustString("strategy") != "M" {
		t.Errorf("segment 1 strategy = %v, want M", meander.Properties["strategy"])
	}
	if _, ok := meander.Properties["target"]; !ok {
		t.Error("meander segment should carry its target")
	}

	if _, ok := fc.Features[4].Geometry.(orb.Polygon); !ok {
		t.Errorf("last feature = %T, want obstacle polygon", fc.Features[4].Geometry)
	}
}

func TestWarningMessagesSerialize(t *testing.T) {
	w := &routing.LengthUnsatisfiedWarning{Segment: 0, Requested: 5, Achieved: 10, Reason: "target shorter than chord"}
	data, err := json.Marshal(warningMessages([]error{w}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "chord") {
		t.Errorf("warnings json = %s", data)
	}
}

func TestRenderPreview(t *testing.T) {
	plan, obstacles := samplePlan(t)

	var buf bytes.Buffer
	opts := PreviewOptions{Width: 400, Padding: 20, Caption: true}
	if err := RenderPreview(&buf, plan, obstacles, opts); err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 400 {
		t.Errorf("width = %d, want 400", img.Bounds().Dx())
	}
	if img.Bounds().Dy() <= 40 {
		t.Errorf("height = %d, want room for the route inside the padding", img.Bounds().Dy())
	}
}

func TestRenderPreviewVerticalRoute(t *testing.T) {
	plan := &routing.RoutePlan{Points: []routing.Point{{X: 0, Y: 0}, {X: 0, Y: 100}}, Length: 100}

	var buf bytes.Buffer
	if err := RenderPreview(&buf, plan, nil, PreviewOptions{Width: 100, Padding: 10}); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	// Capped at twice the inner width plus padding, give or take rounding.
	if img.Bounds().Dy() > 2*80+20+1 {
		t.Errorf("height = %d, want the tall route fitted", img.Bounds().Dy())
	}
}

func TestRenderPreviewDegenerate(t *testing.T) {
	plan := &routing.RoutePlan{Points: []routing.Point{{X: 1, Y: 1}}}
	if err := RenderPreview(&bytes.Buffer{}, plan, nil, DefaultPreviewOptions()); err == nil {
		t.Fatal("expected an error for a single-point plan")
	}
}

func TestRenderSummary(t *testing.T) {
	plan, _ := samplePlan(t)
	out := renderSummary("bus", plan, RouteMeta{Chip: "main", Layer: "1", TraceWidth: 0.01})

	for _, want := range []string{"bus", "length", "M", "PF", "target"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderPreviewOverlappingObstacles(t *testing.T) {
	plan := &routing.RoutePlan{Points: []routing.Point{{X: 0, Y: -1}, {X: 3, Y: -1}}, Length: 3}
	obstacles := []routing.Obstacle{
		{Name: "ccw", Ring: orb.Ring{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}},
		{Name: "cw", Ring: orb.Ring{{1, 1}, {1, 3}, {3, 3}, {3, 1}, {1, 1}}},
	}

	var buf bytes.Buffer
	if err := RenderPreview(&buf, plan, obstacles, PreviewOptions{Width: 340, Padding: 20}); err != nil {
		t.Fatalf("render: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}

	// 100 px/mm; (1.5, 1.5) lies inside both squares.
	r, g, b, _ := img.At(170, 170).RGBA()
	for _, v := range []uint32{r >> 8, g >> 8, b >> 8} {
		if v < 220 || v > 228 {
			t.Fatalf("overlap pixel = (%d, %d, %d), want obstacle grey", r>>8, g>>8, b>>8)
		}
	}
}

func TestRenderPreviewLongRoute(t *testing.T) {
	points := make([]routing.Point, 0, 2001)
	for i := 0; i <= 2000; i++ {
		points = append(points, routing.Point{X: float64(i) * 0.005, Y: float64(i%2) * 0.5})
	}
	plan := &routing.RoutePlan{Points: points, Length: routing.PathLength(points)}

	var buf bytes.Buffer
	if err := RenderPreview(&buf, plan, nil, DefaultPreviewOptions()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func BenchmarkRenderPreview(b *testing.B) {
	points := make([]routing.Point, 0, 401)
	for i := 0; i <= 400; i++ {
		points = append(points, routing.Point{X: float64(i) * 0.025, Y: float64(i%2) * 0.5})
	}
	plan := &routing.RoutePlan{Points: points, Length: routing.PathLength(points)}
	opts := DefaultPreviewOptions()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := RenderPreview(io.Discard, plan, nil, opts); err != nil {
			b.Fatal(err)
		}
	}
}
