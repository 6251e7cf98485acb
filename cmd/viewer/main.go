package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/config"
	"obj-gl-renderer/internal/gpu/glbackend"
	"obj-gl-renderer/internal/logging"
)

const (
	rotateSpeed    = 1.5 // radians per second
	translateSpeed = 0.8 // scene radii per second
)

func init() {
	// GLFW and GL calls must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	model := flag.String("model", "", "OBJ path/URL or primitive: cube, plane, sphere, torus")
	matcap := flag.String("matcap", "", "Matcap image path or URL")
	cubemap := flag.String("cubemap", "", "Directory holding six cube map faces")
	colorHex := flag.String("color", "", "Base color as #rrggbb")
	simplify := flag.Float64("simplify", 0, "Keep this fraction of faces (0-1)")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()
	logging.Setup(*verbose)

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *model == "" && flag.NArg() > 0 {
		*model = flag.Arg(0)
	}
	cfg.Resolve(config.Flags{
		Model:      *model,
		Matcap:     *matcap,
		CubemapDir: *cubemap,
		Color:      *colorHex,
		Simplify:   *simplify,
	})

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 4)

	win, err := glfw.CreateWindow(cfg.WindowWidth, cfg.WindowHeight, "OBJ viewer", nil, nil)
	if err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	dev, err := glbackend.New()
	if err != nil {
		return err
	}
	s, err := newScene(context.Background(), dev, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d vertices, %d faces\n", s.mesh.Name, len(s.mesh.Positions), len(s.mesh.Faces))
	fmt.Println("Arrows rotate, WASD/QE move, R resets, Esc quits.")

	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyR:
			s.cam.Reset()
		}
	})

	step := s.mesh.Bounds.Radius()
	if step <= 0 {
		step = 1
	}
	last := glfw.GetTime()
	for !win.ShouldClose() {
		now := glfw.GetTime()
		dt := float32(now - last)
		last = now

		held := func(k glfw.Key) float32 {
			if win.GetKey(k) == glfw.Press {
				return 1
			}
			return 0
		}
		yaw := (held(glfw.KeyRight) - held(glfw.KeyLeft)) * rotateSpeed * dt
		pitch := (held(glfw.KeyDown) - held(glfw.KeyUp)) * rotateSpeed * dt
		if yaw != 0 || pitch != 0 {
			s.cam.RotateEuler(yaw, pitch)
		}
		move := mgl32.Vec3{
			held(glfw.KeyA) - held(glfw.KeyD),
			held(glfw.KeyE) - held(glfw.KeyQ),
			held(glfw.KeyW) - held(glfw.KeyS),
		}
		if move != (mgl32.Vec3{}) {
			s.cam.Translate(move.Mul(translateSpeed * step * dt))
		}

		fbw, fbh := win.GetFramebufferSize()
		if err := s.draw(fbw, fbh); err != nil {
			return err
		}
		win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}
