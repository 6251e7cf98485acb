package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"obj-gl-renderer/internal/logging"
	"obj-gl-renderer/internal/mesh"
)

func main() {
	simplify := flag.Float64("simplify", 0, "Decimate to this fraction of faces before reporting")
	out := flag.String("write", "", "Write the (simplified) mesh to this OBJ file")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: objinfo [flags] <model.obj|url>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	logging.Setup(*verbose)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *out != "" && flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -write needs exactly one model")
		os.Exit(2)
	}

	failed := false
	for _, loc := range flag.Args() {
		m, err := mesh.LoadOBJ(context.Background(), loc)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			failed = true
			continue
		}
		if *simplify > 0 && *simplify < 1 {
			before := len(m.Faces)
			m = m.Simplify(*simplify)
			fmt.Printf("Simplified: %d -> %d faces\n", before, len(m.Faces))
		}
		report(loc, m)

		if *out != "" {
			if err := writeOBJ(*out, m); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Wrote %s\n", *out)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func writeOBJ(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mesh.WriteOBJ(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func report(loc string, m *mesh.Mesh) {
	s := m.Stats()
	b := s.Bounds
	size := b.Size()
	fmt.Printf("%s (%s)\n", loc, m.Name)
	fmt.Printf("  Vertices: %d, Faces: %d, Degenerate: %d, Unused vertices: %d\n",
		s.Vertices, s.Faces, s.Degenerate, s.Unused)
	if b.IsEmpty() {
		fmt.Println("  BBox: empty")
		return
	}
	fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n",
		b.Min[0], b.Max[0], b.Min[1], b.Max[1], b.Min[2], b.Max[2])
	fmt.Printf("  Size: %.3f x %.3f x %.3f, radius %.3f\n", size[0], size[1], size[2], b.Radius())
	fmt.Printf("  Surface area: %.4f\n", s.Area)

	// Area by dominant face direction
	areaByDir := map[string]float64{}
	for _, f := range m.Faces {
		n := m.FaceNormal(f)
		area := float64(n.Len()) / 2
		if area == 0 {
			continue
		}
		ax, ay, az := math.Abs(float64(n[0])), math.Abs(float64(n[1])), math.Abs(float64(n[2]))
		var dir string
		switch {
		case ax >= ay && ax >= az:
			dir = sign(n[0]) + "X"
		case ay >= az:
			dir = sign(n[1]) + "Y"
		default:
			dir = sign(n[2]) + "Z"
		}
		areaByDir[dir] += area
	}
	fmt.Print("  Area by facing:")
	for _, dir := range []string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"} {
		pct := 0.0
		if s.Area > 0 {
			pct = 100 * areaByDir[dir] / s.Area
		}
		fmt.Printf(" %s %.1f%%", dir, pct)
	}
	fmt.Println()
}

func sign(v float32) string {
	if v < 0 {
		return "-"
	}
	return "+"
}
