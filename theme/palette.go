package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a GIMP palette. Operators can swap the region colors for a
// venue by pointing the config at one.
type Palette struct {
	Name   string
	Colors []colorful.Color
}

// LoadGPL reads a GIMP .gpl palette file
func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ReadGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ReadGPL parses palette text. Lines that aren't "R G B [label]" entries
// (header, Columns, comments) are ignored.
func ReadGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if name, ok := strings.CutPrefix(line, "Name:"); ok {
			p.Name = strings.TrimSpace(name)
			continue
		}
		if c, ok := gplEntry(line); ok {
			p.Colors = append(p.Colors, c)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors")
	}
	return p, nil
}

// gplEntry parses the leading three 0-255 channels of a palette row
func gplEntry(line string) (colorful.Color, bool) {
	if strings.HasPrefix(line, "#") {
		return colorful.Color{}, false
	}
	f := strings.Fields(line)
	if len(f) < 3 {
		return colorful.Color{}, false
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return colorful.Color{}, false
		}
		rgb[i] = uint8(min(max(v, 0), 255))
	}
	return colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}, true
}

// Index returns the color at i, clamped to the palette
func (p *Palette) Index(i int) colorful.Color {
	return p.Colors[min(max(i, 0), len(p.Colors)-1)]
}
