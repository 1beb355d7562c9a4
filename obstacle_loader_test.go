package main

import (
	"os"
	"path/filepath"
	"testing"
)

const keepOutGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Q0-pad"},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[2,0],[2,2],[0,2],[0,0]]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "inner"},
      "geometry": {"type": "Polygon", "coordinates": [[[0.5,0.5],[1,0.5],[1,1],[0.5,1],[0.5,0.5]]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "MultiPolygon", "coordinates": [
        [[[5,5],[6,5],[6,6],[5,6],[5,5]]],
        [[[8,8],[9,8],[9,9],[8,9],[8,8]]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"name": "label"},
      "geometry": {"type": "Point", "coordinates": [3,3]}
    }
  ]
}`

func TestParseObstacles(t *testing.T) {
	obstacles, err := parseObstacles([]byte(keepOutGeoJSON), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(obstacles) != 4 {
		t.Fatalf("got %d obstacles, want 4", len(obstacles))
	}

	names := []string{obstacles[0].Name, obstacles[1].Name, obstacles[2].Name, obstacles[3].Name}
	want := []string{"Q0-pad", "inner", "obstacle-2-0", "obstacle-2-1"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestParseObstaclesSimplifies(t *testing.T) {
	// The midpoint on the bottom edge is redundant.
	data := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},
	  "geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0.0001],[2,0],[2,2],[0,2],[0,0]]]}}]}`

	obstacles, err := parseObstacles([]byte(data), 0.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(obstacles[0].Ring); got != 5 {
		t.Errorf("ring has %d points after simplification, want 5", got)
	}
}

func TestParseObstaclesBadJSON(t *testing.T) {
	if _, err := parseObstacles([]byte("{not json"), 0); err == nil {
		t.Fatal("expected an error for malformed GeoJSON")
	}
}

func TestLoadObstaclesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "chip.geojson"), []byte(keepOutGeoJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.geojson"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	obstacles, err := loadObstaclesFromPath(dir, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "inner" sits inside "Q0-pad" and is merged away.
	if len(obstacles) != 3 {
		t.Errorf("got %d obstacles, want 3", len(obstacles))
	}
	for _, o := range obstacles {
		if o.Name == "inner" {
			t.Error("nested obstacle should have been merged")
		}
	}
}

func TestLoadObstaclesMissingPath(t *testing.T) {
	if _, err := loadObstaclesFromPath(filepath.Join(t.TempDir(), "missing.geojson"), 0); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}
