package main

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"

	"mixed-route-planner/routing"
)

const maxBodyBytes = 8 << 20

// SegmentReport is the per-segment part of the length report.
type SegmentReport struct {
	Index    int     `json:"index"`
	Strategy string  `json:"strategy"`
	Length   float64 `json:"length"`
	Target   float64 `json:"target,omitempty"`
	Points   int     `json:"points"`
	Warning  string  `json:"warning,omitempty"`
}

type RouteResponse struct {
	Path            []routing.Point `json:"path"`
	Success         bool            `json:"success"`
	Message         string          `json:"message,omitempty"`
	Length          float64         `json:"length,omitempty"`
	RequestedLength float64         `json:"requestedLength,omitempty"`
	Segments        []SegmentReport `json:"segments,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	Meta            *RouteMeta      `json:"meta,omitempty"`
}

func newRouteResponse(result *plannedRoute) RouteResponse {
	plan := result.Plan
	resp := RouteResponse{
		Path:            plan.Points,
		Success:         true,
		Length:          plan.Length,
		RequestedLength: plan.Requested,
		Warnings:        warningMessages(plan.Warnings),
		Meta:            &result.Meta,
	}
	for _, seg := range plan.Segments {
		report := SegmentReport{
			Index:    seg.Index,
			Strategy: seg.Strategy.Tag(),
			Length:   seg.Length(),
			Target:   seg.Target,
			Points:   len(seg.Points()),
		}
		if seg.Warning != nil {
			report.Warning = seg.Warning.Error()
		}
		resp.Segments = append(resp.Segments, report)
	}
	if len(plan.Warnings) > 0 {
		resp.Message = "route planned with warnings"
	}
	return resp
}

// planErrorStatus maps request problems to 400 and planning failures to 422.
func planErrorStatus(err error) int {
	if errors.Is(err, ErrBadQuantity) || errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusUnprocessableEntity
}

// planFromRequest runs the shared part of the /route handlers. It writes the
// error response itself and reports whether the caller should continue.
func planFromRequest(w http.ResponseWriter, r *http.Request) (*plannedRoute, bool) {
	log.Println("========================================")
	log.Printf("📍 Route request received (%s)\n", r.URL.Path)
	defer log.Println("========================================")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return nil, false
	}

	defer r.Body.Close()
	req, err := decodeRouteRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		writeError(w, r, http.StatusBadRequest, "invalid route request body")
		return nil, false
	}

	log.Printf("   %s.%s -> %s.%s, anchors=%d total_length=%q\n",
		req.PinInputs.StartPin.Component, req.PinInputs.StartPin.Pin,
		req.PinInputs.EndPin.Component, req.PinInputs.EndPin.Pin,
		len(req.Anchors), req.TotalLength)

	result, err := planRoute(r.Context(), req)
	if err != nil {
		log.Printf("❌ Planning failed: %v\n", err)
		writeError(w, r, planErrorStatus(err), err.Error())
		return nil, false
	}

	plan := result.Plan
	if len(plan.Warnings) > 0 {
		log.Printf("⚠️  Route planned with %d warnings\n", len(plan.Warnings))
	} else {
		log.Printf("✅ Route planned with %d points\n", len(plan.Points))
	}
	log.Printf("   Length: %.4f mm (requested %.4f mm)\n", plan.Length, plan.Requested)
	return result, true
}

// POST /route - plan a route and return the length report
func routeHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := planFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, newRouteResponse(result))
}

// POST /route.geojson - plan a route and return it with its obstacles as GeoJSON
func routeGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := planFromRequest(w, r)
	if !ok {
		return
	}

	data, err := routeFeatureCollection(result.Plan, result.Meta, result.Obstacles).MarshalJSON()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "encode geojson failed")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// POST /route.png - plan a route and return a preview image
func routePNGHandler(w http.ResponseWriter, r *http.Request) {
	result, ok := planFromRequest(w, r)
	if !ok {
		return
	}

	opts := DefaultPreviewOptions()
	opts.Width = serviceConfig.PreviewWidth

	var buf bytes.Buffer
	if err := RenderPreview(&buf, result.Plan, result.Obstacles, opts); err != nil {
		log.Printf("❌ Preview failed: %v\n", err)
		writeError(w, r, http.StatusInternalServerError, "render preview failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

// GET /obstacles - current keep-out set as GeoJSON
// POST /obstacles - replace the keep-out set; ?force=true when one is loaded
func obstaclesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := obstacleFeatures(currentObstacles().Obstacles()).MarshalJSON()
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "encode geojson failed")
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)

	case http.MethodPost:
		replaceObstacles(w, r)

	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func replaceObstacles(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Replace keep-out obstacles request received")
	defer log.Println("========================================")

	existing := currentObstacles().Len()
	force := r.URL.Query().Get("force") == "true"
	if existing > 0 && !force {
		log.Println("⚠️  Keep-out set already loaded")
		log.Println("   To replace it, add ?force=true to the request")
		writeError(w, r, http.StatusConflict, "keep-out set already loaded; set force=true to replace it")
		return
	}
	if existing > 0 {
		log.Printf("🔄 Force replace requested - dropping %d obstacles...\n", existing)
	}

	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read body")
		return
	}

	obstacles, err := parseObstacles(data, serviceConfig.SimplifyEpsilon)
	if err != nil {
		log.Printf("❌ Invalid GeoJSON: %v\n", err)
		writeError(w, r, http.StatusBadRequest, "invalid GeoJSON FeatureCollection")
		return
	}
	merged := routing.MergeContained(obstacles)
	setObstacles(merged)

	log.Printf("✅ Keep-out set replaced: %d obstacles (%d before merging)\n", len(merged), len(obstacles))
	writeJSON(w, r, http.StatusOK, map[string]any{
		"success":      true,
		"numObstacles": len(merged),
		"numParsed":    len(obstacles),
	})
}

// GET /health - Health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	idx := currentObstacles()

	body := map[string]any{
		"status":       "ready",
		"numObstacles": idx.Len(),
	}
	if b, ok := idx.Bound(); ok {
		body["obstacleBound"] = [2][2]float64{{b.Min[0], b.Min[1]}, {b.Max[0], b.Max[1]}}
	}
	writeJSON(w, r, http.StatusOK, body)
}
