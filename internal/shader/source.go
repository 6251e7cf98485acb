package shader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"obj-gl-renderer/internal/fetch"
	"obj-gl-renderer/internal/gpu"
	"obj-gl-renderer/internal/textsrc"
)

// Script is a shader embedded in an HTML document as
// <script id="..." type="x-shader/x-vertex">.
type Script struct {
	ID     string
	Type   string
	Source string
}

// ParseStage maps a script type attribute to a pipeline stage.
func ParseStage(scriptType string) (gpu.Stage, bool) {
	switch strings.ToLower(strings.TrimSpace(scriptType)) {
	case "x-shader/x-vertex", "text/x-vertex":
		return gpu.VertexStage, true
	case "x-shader/x-fragment", "text/x-fragment":
		return gpu.FragmentStage, true
	}
	return 0, false
}

// Scripts returns every <script> element with an id, keyed by id. The
// document is decoded through the BOM-aware text reader first.
func Scripts(r io.Reader) (map[string]Script, error) {
	doc, err := html.Parse(textsrc.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("shader: parse html: %w", err)
	}
	out := make(map[string]Script)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			s := Script{}
			for _, a := range n.Attr {
				switch a.Key {
				case "id":
					s.ID = a.Val
				case "type":
					s.Type = a.Val
				}
			}
			if s.ID != "" {
				var b strings.Builder
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						b.WriteString(c.Data)
					}
				}
				s.Source = b.String()
				out[s.ID] = s
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

// SourceFromHTML returns the text of the <script> element with the given id.
func SourceFromHTML(r io.Reader, id string) (string, error) {
	scripts, err := Scripts(r)
	if err != nil {
		return "", err
	}
	s, ok := scripts[id]
	if !ok {
		return "", fmt.Errorf("shader: no script with id %q", id)
	}
	return s.Source, nil
}

// LoadSource reads a shader file or URL.
func LoadSource(ctx context.Context, location string) (string, error) {
	rc, err := fetch.Open(ctx, location)
	if err != nil {
		return "", fmt.Errorf("shader: %w", err)
	}
	defer rc.Close()
	src, err := textsrc.ReadString(rc)
	if err != nil {
		return "", fmt.Errorf("shader: read %s: %w", location, err)
	}
	return src, nil
}

// NewFromHTML builds a program from two script elements of one HTML
// document. The script types must declare the expected stages.
func NewFromHTML(dev gpu.Device, r io.Reader, vertexID, fragmentID string) (*Program, error) {
	scripts, err := Scripts(r)
	if err != nil {
		return nil, err
	}
	var src [2]string
	for i, id := range []string{vertexID, fragmentID} {
		s, ok := scripts[id]
		if !ok {
			return nil, fmt.Errorf("shader: no script with id %q", id)
		}
		stage, ok := ParseStage(s.Type)
		if !ok || stage != gpu.Stage(i) {
			return nil, fmt.Errorf("shader: script %q has type %q, want %s", id, s.Type, gpu.Stage(i))
		}
		src[i] = s.Source
	}
	return New(dev, src[0], src[1])
}
