package batch

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/camera"
	"obj-gl-renderer/internal/logging"
	"obj-gl-renderer/internal/mathutil"
	"obj-gl-renderer/internal/mesh"
	"obj-gl-renderer/internal/render"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir   string
	RenderSize  int
	Supersample int
	Workers     int
	FovY        float32
	Yaw         float32 // degrees around +Y, 0 looks from +Z
	Pitch       float32 // degrees above the horizon
	Color       color.NRGBA
	Matcap      *image.NRGBA // shared read-only by all workers
	Simplify    float64      // keep this fraction of faces; 0 or >= 1 keeps all
}

// Job is one model to render.
type Job struct {
	Name  string // manifest name, also the output path without extension
	Model string // path or URL of the OBJ file
}

// Result holds the outcome of processing one job.
type Result struct {
	Name     string
	Model    string
	Image    string // output path relative to OutputDir
	Vertices int
	Faces    int
	Duration time.Duration
	Success  bool
	Error    string
}

// DiscoverJobs finds every .obj file under dir. Job names are the paths
// relative to dir without extension, with forward slashes, sorted.
func DiscoverJobs(dir string) ([]Job, error) {
	var jobs []Job
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".obj") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
		jobs = append(jobs, Job{Name: name, Model: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", dir, err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// Run processes all jobs using a worker pool. Failures are recorded in the
// matching Result and do not stop the run. Jobs not started before ctx is
// canceled fail with the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f models/sec\n", p, total, rate)
				}
			}
		}
	}()

	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				if err := ctx.Err(); err != nil {
					results[idx] = Result{Name: jobs[idx].Name, Model: jobs[idx].Model, Error: err.Error()}
				} else {
					results[idx] = processJob(ctx, cfg, jobs[idx])
				}
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// Camera returns a camera looking at box from the configured yaw and
// pitch, framed so the whole box is visible.
func (cfg Config) Camera(box mathutil.AABB) *camera.Camera {
	yaw := float64(mgl32.DegToRad(cfg.Yaw))
	pitch := float64(mgl32.DegToRad(cfg.Pitch))
	dir := mgl32.Vec3{
		float32(math.Sin(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Cos(yaw) * math.Cos(pitch)),
	}
	up := mgl32.Vec3{0, 1, 0}
	if math.Abs(math.Cos(pitch)) < 1e-3 {
		up = mgl32.Vec3{0, 0, -1}
	}
	cam := camera.New(dir, mgl32.Vec3{}, up)
	if cfg.FovY > 0 {
		cam.FovY = cfg.FovY
	}
	cam.Frame(box)
	return cam
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	start := time.Now()
	res := Result{Name: job.Name, Model: job.Model}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(start)
		logging.Logger().Warn("render failed", "model", job.Model, "err", err)
		return res
	}

	m, err := mesh.LoadOBJ(ctx, job.Model)
	if err != nil {
		return fail(err)
	}
	if len(m.Faces) == 0 {
		return fail(fmt.Errorf("no faces in %s", job.Model))
	}
	if cfg.Simplify > 0 && cfg.Simplify < 1 {
		m = m.Simplify(cfg.Simplify)
	}
	res.Vertices, res.Faces = len(m.Positions), len(m.Faces)

	img := render.Mesh(m, cfg.Camera(m.Bounds), render.Options{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		Color:       cfg.Color,
		Matcap:      cfg.Matcap,
		Light:       render.DefaultLightConfig(),
	})

	res.Image = job.Name + ".webp"
	outPath := filepath.Join(cfg.OutputDir, filepath.FromSlash(res.Image))
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fail(err)
	}
	if err := writeWebP(outPath, img); err != nil {
		return fail(err)
	}

	res.Success = true
	res.Duration = time.Since(start)
	return res
}

func writeWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("WebP encode: %w", err)
	}
	return f.Close()
}
