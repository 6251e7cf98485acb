package mesh

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"obj-gl-renderer/internal/fetch"
	"obj-gl-renderer/internal/logging"
	"obj-gl-renderer/internal/mathutil"
	"obj-gl-renderer/internal/textsrc"
)

// ParseError reports a malformed line of OBJ text.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mesh: obj line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadOBJ loads an OBJ file from a local path or an http(s) URL.
func LoadOBJ(ctx context.Context, location string) (*Mesh, error) {
	rc, err := fetch.Open(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	defer rc.Close()

	m, err := ParseOBJ(rc)
	if err != nil {
		return nil, err
	}
	base := path.Base(strings.ReplaceAll(location, "\\", "/"))
	m.Name = strings.TrimSuffix(base, path.Ext(base))
	logging.Logger().Info("mesh loaded", "location", location,
		"vertices", len(m.Positions), "faces", len(m.Faces))
	if s := m.Stats(); s.Degenerate > 0 {
		logging.Logger().Warn("mesh has degenerate faces", "location", location, "count", s.Degenerate)
	}
	return m, nil
}

// ParseOBJ reads the OBJ subset used by the toolkit:
//
//	v x y z      vertex position
//	f a b c      triangle, 1-based position indices
//	# ...        comment
//
// In face tokens only the part before the first '/' is used, and indices
// past the third are ignored. Other keywords (vn, vt, o, g, s, usemtl,
// mtllib, ...) are skipped. Malformed numbers, short faces and indices
// outside 1..len(vertices) are reported as *ParseError.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []mgl32.Vec3
		faces     []Face
		// Faces may reference vertices declared later in the file, so
		// range checks wait until the end.
		faceLines []int
	)

	sc := bufio.NewScanner(textsrc.NewReader(r))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, &ParseError{lineNo, line, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields)-1)}
			}
			var p mgl32.Vec3
			for k := 0; k < 3; k++ {
				f, err := strconv.ParseFloat(fields[1+k], 32)
				if err != nil {
					return nil, &ParseError{lineNo, line, err}
				}
				p[k] = float32(f)
			}
			if !mathutil.IsFinite(p) {
				return nil, &ParseError{lineNo, line, fmt.Errorf("non-finite coordinate")}
			}
			positions = append(positions, p)
		case "f":
			if len(fields) < 4 {
				return nil, &ParseError{lineNo, line, fmt.Errorf("face needs 3 indices, got %d", len(fields)-1)}
			}
			var f Face
			for k := 0; k < 3; k++ {
				tok := fields[1+k]
				if i := strings.IndexByte(tok, '/'); i >= 0 {
					tok = tok[:i]
				}
				idx, err := strconv.ParseInt(tok, 10, 32)
				if err != nil {
					return nil, &ParseError{lineNo, line, err}
				}
				if idx < 1 {
					return nil, &ParseError{lineNo, line, fmt.Errorf("index %d: only positive 1-based indices are supported", idx)}
				}
				f[k] = uint32(idx - 1)
			}
			if len(fields) > 4 {
				logging.Logger().Debug("obj: extra face indices ignored", "line", lineNo, "count", len(fields)-1)
			}
			faces = append(faces, f)
			faceLines = append(faceLines, lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("mesh: read obj: %w", err)
	}

	n := uint32(len(positions))
	for i, f := range faces {
		for _, idx := range f {
			if idx >= n {
				return nil, &ParseError{Line: faceLines[i], Text: fmt.Sprintf("f %d %d %d", f[0]+1, f[1]+1, f[2]+1),
					Err: fmt.Errorf("index %d out of range (%d vertices)", idx+1, n)}
			}
		}
	}

	return New("", positions, faces), nil
}

// WriteOBJ writes m in the same subset ParseOBJ reads, with 1-based faces.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "# %s\n", m.Name)
	}
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", fmtFloat(p[0]), fmtFloat(p[1]), fmtFloat(p[2]))
	}
	for _, f := range m.Faces {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("mesh: write obj: %w", err)
	}
	return nil
}

func fmtFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}
