package font

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Glyph is one character cell of the atlas, in atlas pixels.
type Glyph struct {
	ID       rune
	X, Y     int
	Width    int
	Height   int
	XOffset  int
	YOffset  int
	XAdvance int
}

// maxPages caps the page ids a descriptor may declare.
const maxPages = 256

// Descriptor is the parsed content of an AngelCode BMFont text file.
type Descriptor struct {
	Face       string
	LineHeight int
	Base       int
	ScaleW     int
	ScaleH     int
	Pages      []string
	Glyphs     map[rune]Glyph
}

// Parse reads the BMFont text format. Only page 0 is used for rendering;
// kerning pairs are ignored.
func Parse(r io.Reader) (*Descriptor, error) {
	d := &Descriptor{Glyphs: make(map[rune]Glyph)}
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		tag, attrs := splitLine(s.Text())
		switch tag {
		case "info":
			d.Face = attrs["face"]
		case "common":
			var err error
			if d.LineHeight, err = attrInt(attrs, "lineHeight"); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if d.Base, err = attrInt(attrs, "base"); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if d.ScaleW, err = attrInt(attrs, "scaleW"); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if d.ScaleH, err = attrInt(attrs, "scaleH"); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		case "page":
			id, err := attrInt(attrs, "id")
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if id < 0 || id >= maxPages {
				return nil, fmt.Errorf("line %d: page id %d out of range", line, id)
			}
			for len(d.Pages) <= id {
				d.Pages = append(d.Pages, "")
			}
			d.Pages[id] = attrs["file"]
		case "char":
			g, err := parseGlyph(attrs)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			d.Glyphs[g.ID] = g
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if d.ScaleW <= 0 || d.ScaleH <= 0 {
		return nil, fmt.Errorf("missing or invalid common block")
	}
	if len(d.Glyphs) == 0 {
		return nil, fmt.Errorf("font has no glyphs")
	}
	return d, nil
}

func parseGlyph(attrs map[string]string) (Glyph, error) {
	var g Glyph
	fields := []struct {
		key string
		dst *int
	}{
		{"x", &g.X}, {"y", &g.Y},
		{"width", &g.Width}, {"height", &g.Height},
		{"xoffset", &g.XOffset}, {"yoffset", &g.YOffset},
		{"xadvance", &g.XAdvance},
	}
	id, err := attrInt(attrs, "id")
	if err != nil {
		return g, err
	}
	g.ID = rune(id)
	for _, f := range fields {
		if *f.dst, err = attrInt(attrs, f.key); err != nil {
			return g, err
		}
	}
	return g, nil
}

func attrInt(attrs map[string]string, key string) (int, error) {
	v, ok := attrs[key]
	if !ok {
		return 0, fmt.Errorf("missing attribute %q", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %q: %w", key, err)
	}
	return n, nil
}

// splitLine splits `tag key=value key="quoted value"` into its parts.
func splitLine(line string) (string, map[string]string) {
	line = strings.TrimSpace(line)
	tag, rest, _ := strings.Cut(line, " ")
	attrs := make(map[string]string)
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		key, after, ok := strings.Cut(rest, "=")
		if !ok {
			break
		}
		var value string
		if strings.HasPrefix(after, `"`) {
			end := strings.IndexByte(after[1:], '"')
			if end < 0 {
				value, rest = after[1:], ""
			} else {
				value, rest = after[1:end+1], after[end+2:]
			}
		} else {
			value, rest, _ = strings.Cut(after, " ")
		}
		attrs[key] = value
	}
	return tag, attrs
}
