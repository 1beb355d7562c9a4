package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	in := flag.String("in", "", "route definition (.yaml or .json); plans once and exits instead of serving")
	geojsonOut := flag.String("geojson", "", "write the planned route as GeoJSON to this file")
	pngOut := flag.String("png", "", "write a PNG preview of the planned route to this file")
	obstaclesPath := flag.String("obstacles", "", "keep-out GeoJSON file or directory (overrides OBSTACLES_PATH)")
	flag.Parse()

	cfg := loadConfig()
	if *obstaclesPath != "" {
		cfg.ObstaclesPath = *obstaclesPath
	}
	serviceConfig = cfg

	if cfg.ObstaclesPath != "" {
		obstacles, err := loadObstaclesFromPath(cfg.ObstaclesPath, cfg.SimplifyEpsilon)
		if err != nil {
			log.Fatal(err)
		}
		setObstacles(obstacles)
	}

	if *in != "" {
		if err := runOnce(*in, *geojsonOut, *pngOut); err != nil {
			log.Fatal(err)
		}
		return
	}

	serve(cfg)
}

// runOnce plans a single route file and prints a summary.
func runOnce(path, geojsonOut, pngOut string) error {
	req, err := loadRouteFile(path)
	if err != nil {
		return err
	}

	ctx := withRequestID(context.Background())
	result, err := planRoute(ctx, req)
	if err != nil {
		return fmt.Errorf("plan %s: %w", path, err)
	}

	fmt.Println(renderSummary(req.Name, result.Plan, result.Meta))

	if geojsonOut != "" {
		data, err := routeFeatureCollection(result.Plan, result.Meta, result.Obstacles).MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode geojson: %w", err)
		}
		if err := os.WriteFile(geojsonOut, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", geojsonOut, err)
		}
		log.Printf("✅ GeoJSON written to %s\n", geojsonOut)
	}

	if pngOut != "" {
		f, err := os.Create(pngOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", pngOut, err)
		}
		opts := DefaultPreviewOptions()
		opts.Width = serviceConfig.PreviewWidth
		if err := RenderPreview(f, result.Plan, result.Obstacles, opts); err != nil {
			f.Close()
			return fmt.Errorf("render preview: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", pngOut, err)
		}
		log.Printf("✅ Preview written to %s\n", pngOut)
	}

	return nil
}

func newRouter() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", corsMiddleware(routeHandler))
	mux.HandleFunc("/route.geojson", corsMiddleware(routeGeoJSONHandler))
	mux.HandleFunc("/route.png", corsMiddleware(routePNGHandler))
	mux.HandleFunc("/obstacles", corsMiddleware(obstaclesHandler))
	mux.HandleFunc("/health", corsMiddleware(healthHandler))
	return loggingMiddleware(mux)
}

func serve(cfg Config) {
	log.Println("========================================")
	log.Println("🚀 Mixed Route Planner Server")
	log.Println("========================================")
	log.Printf("   Keep-out obstacles: %d\n", currentObstacles().Len())
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route              - Plan a route, JSON report")
	log.Println("  POST /route.geojson      - Plan a route, GeoJSON export")
	log.Println("  POST /route.png          - Plan a route, PNG preview")
	log.Println("  GET  /obstacles          - Current keep-out set as GeoJSON")
	log.Println("  POST /obstacles          - Replace the keep-out set")
	log.Println("  GET  /health             - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
