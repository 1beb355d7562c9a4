package main

import (
	"context"
	"sync"

	"mixed-route-planner/routing"
)

var (
	serviceConfig = Config{PreviewWidth: 800}

	globalObstacles *routing.ObstacleIndex
	obstacleMutex   sync.RWMutex
)

func currentObstacles() *routing.ObstacleIndex {
	obstacleMutex.RLock()
	defer obstacleMutex.RUnlock()
	return globalObstacles
}

func setObstacles(obstacles []routing.Obstacle) {
	idx := routing.NewObstacleIndex(obstacles)
	obstacleMutex.Lock()
	globalObstacles = idx
	obstacleMutex.Unlock()
}

// plannedRoute is a finished plan plus what exports need alongside it.
type plannedRoute struct {
	Plan      *routing.RoutePlan
	Meta      RouteMeta
	Obstacles []routing.Obstacle // everything the plan was checked against
}

// planRoute resolves req against the service defaults and plans it. Inline
// obstacles are added to the server's keep-out set for this request only.
func planRoute(ctx context.Context, req *RouteRequest) (result *plannedRoute, err error) {
	defer timeOp(ctx, "plan_route")(&err)

	resolved, err := req.Resolve(serviceConfig.routeContext())
	if err != nil {
		return nil, err
	}

	idx := currentObstacles()
	if len(resolved.Obstacles) > 0 {
		merged := append(idx.Obstacles(), resolved.Obstacles...)
		idx = routing.NewObstacleIndex(routing.MergeContained(merged))
	}
	resolved.Context.Obstacles = idx

	// The client may have gone away while obstacles were merged.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	plan, err := routing.NewPlanner(resolved.Pins, resolved.Context).Make(resolved.Options)
	if err != nil {
		return nil, err
	}

	return &plannedRoute{Plan: plan, Meta: resolved.Meta, Obstacles: idx.Obstacles()}, nil
}
