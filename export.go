package main

import (
	"mixed-route-planner/routing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// routeFeatureCollection renders a plan as GeoJSON: the route centerline, one
// feature per segment, and the keep-out obstacles it was planned against.
func routeFeatureCollection(plan *routing.RoutePlan, meta RouteMeta, obstacles []routing.Obstacle) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	route := geojson.NewFeature(routing.LineString(plan.Points))
	route.Properties["kind"] = "route"
	route.Properties["name"] = meta.Name
	route.Properties["length"] = plan.Length
	route.Properties["requested"] = plan.Requested
	route.Properties["trace_width"] = meta.TraceWidth
	route.Properties["layer"] = meta.Layer
	route.Properties["chip"] = meta.Chip
	route.Properties["warnings"] = warningMessages(plan.Warnings)
	fc.Append(route)

	for _, seg := range plan.Segments {
		f := geojson.NewFeature(routing.LineString(append([]routing.Point{seg.From}, seg.Points()...)))
		f.Properties["kind"] = "segment"
		f.Properties["index"] = seg.Index
		f.Properties["strategy"] = seg.Strategy.Tag()
		f.Properties["length"] = seg.Length()
		if seg.Strategy == routing.Meandered {
			f.Properties["target"] = seg.Target
		}
		fc.Append(f)
	}

	for _, f := range obstacleFeatures(obstacles).Features {
		fc.Append(f)
	}
	return fc
}

func obstacleFeatures(obstacles []routing.Obstacle) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, o := range obstacles {
		f := geojson.NewFeature(orb.Polygon{o.Ring})
		f.Properties["kind"] = "obstacle"
		f.Properties["name"] = o.Name
		fc.Append(f)
	}
	return fc
}

func warningMessages(warnings []error) []string {
	msgs := make([]string, 0, len(warnings))
	for _, w := range warnings {
		msgs = append(msgs, w.Error())
	}
	return msgs
}
