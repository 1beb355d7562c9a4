package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mixed-route-planner/routing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
)

// loadObstaclesFromPath loads keep-out polygons from a GeoJSON file, or from every
// *.geojson file when path is a directory.
func loadObstaclesFromPath(path string, epsilon float64) ([]routing.Obstacle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat obstacles %q: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.geojson"))
		if err != nil {
			return nil, err
		}
	}

	log.Printf("Loading keep-out obstacles from %d GeoJSON files...\n", len(files))

	var all []routing.Obstacle
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		obstacles, err := parseObstacles(data, epsilon)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}
		all = append(all, obstacles...)
		log.Printf("   ✅ Loaded %d obstacles from %s\n", len(obstacles), filepath.Base(file))
	}

	merged := routing.MergeContained(all)
	log.Printf("Total keep-out obstacles: %d (%d after merging nested ones)\n", len(all), len(merged))
	return merged, nil
}

// parseObstacles reads the outer ring of every Polygon / MultiPolygon feature.
// Holes are ignored: a trace may not enter the outer ring at all.
func parseObstacles(data []byte, epsilon float64) ([]routing.Obstacle, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}

	var obstacles []routing.Obstacle
	for i, f := range fc.Features {
		name := f.Properties.MustString("name", fmt.Sprintf("obstacle-%d", i))

		var polygons []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		default:
			log.Printf("⚠️  Skipping %s: geometry %T is not a polygon\n", name, f.Geometry)
			continue
		}

		for k, poly := range polygons {
			if len(poly) == 0 || len(poly[0]) < 4 {
				continue
			}
			ring := poly[0].Clone()
			if epsilon > 0 {
				ring = simplify.DouglasPeucker(epsilon).Ring(ring)
			}
			obstacleName := name
			if len(polygons) > 1 {
				obstacleName = fmt.Sprintf("%s-%d", name, k)
			}
			obstacles = append(obstacles, routing.Obstacle{Name: obstacleName, Ring: ring})
		}
	}
	return obstacles, nil
}
