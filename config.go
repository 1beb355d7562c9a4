package main

import (
	"log"
	"os"
	"strconv"

	"mixed-route-planner/routing"

	"github.com/joho/godotenv"
)

// Config is the service configuration, read from the environment and an optional .env file.
type Config struct {
	Port            string
	ObstaclesPath   string
	SearchBudget    int
	SimplifyEpsilon float64 // keep-out ring simplification threshold in mm, 0 disables
	PreviewWidth    int
}

func loadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️  No .env file found (using environment variables)")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		ObstaclesPath:   getEnv("OBSTACLES_PATH", ""),
		SearchBudget:    getEnvInt("SEARCH_BUDGET", routing.DefaultSearchBudget),
		SimplifyEpsilon: getEnvFloat("SIMPLIFY_EPSILON", 0),
		PreviewWidth:    getEnvInt("PREVIEW_WIDTH", 800),
	}
}

// routeContext is the base context every request starts from.
func (c Config) routeContext() routing.RouteContext {
	ctx := routing.DefaultRouteContext()
	if c.SearchBudget > 0 {
		ctx.SearchBudget = c.SearchBudget
	}
	return ctx
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️  %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using %g", key, v, fallback)
		return fallback
	}
	return f
}
