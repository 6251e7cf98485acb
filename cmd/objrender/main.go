package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"obj-gl-renderer/internal/batch"
	"obj-gl-renderer/internal/config"
	"obj-gl-renderer/internal/logging"
	"obj-gl-renderer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Render only first N models for testing")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	inputDir := flag.String("input", "", "Directory scanned for .obj files")
	outputDir := flag.String("output", "", "Output directory (default: <input>/renders)")
	size := flag.Int("size", 0, "Output image size in pixels (default: 512)")
	colorHex := flag.String("color", "", "Base color as #rrggbb (default: #a0a0aa)")
	matcap := flag.String("matcap", "", "Matcap image path or URL")
	simplify := flag.Float64("simplify", 0, "Keep this fraction of faces (0-1)")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()
	logging.Setup(*verbose)

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		InputDir:  *inputDir,
		OutputDir: *outputDir,
		Matcap:    *matcap,
		Size:      *size,
		Workers:   *workers,
		Color:     *colorHex,
		Simplify:  *simplify,
	})

	if cfg.InputDir == "" {
		fmt.Fprintln(os.Stderr, "Error: no input directory. Use -input flag or config.json.")
		os.Exit(1)
	}
	baseColor, err := cfg.BaseColor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jobs, err := batch.DiscoverJobs(cfg.InputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Limit for testing
	if *testN > 0 && *testN < len(jobs) {
		jobs = jobs[:*testN]
	}

	if len(jobs) == 0 {
		fmt.Println("No models to render.")
		os.Exit(0)
	}

	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		FovY:        cfg.FovY,
		Yaw:         cfg.Yaw,
		Pitch:       cfg.Pitch,
		Color:       baseColor,
		Simplify:    cfg.Simplify,
	}
	if cfg.Matcap != "" {
		img, err := texture.Decode(ctx, cfg.Matcap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading matcap: %v\n", err)
			os.Exit(1)
		}
		batchCfg.Matcap = img
		fmt.Printf("Matcap: %s (%dx%d)\n", cfg.Matcap, img.Rect.Dx(), img.Rect.Dy())
	}

	// Print summary
	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}

	fmt.Printf("OBJ Software Renderer → WebP%s\n", mode)
	fmt.Printf("Models: %d, Workers: %d, Size: %d (x%d)\n", len(jobs), cfg.Workers, cfg.RenderSize, cfg.Supersample)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	results := batch.Run(ctx, batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(jobs))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
