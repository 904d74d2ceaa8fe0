package diagram

import (
	"fmt"
	"sort"
	"strconv"
)

// Color is an RGBA highlight color. It is only obtained through ColorOf.
type Color struct {
	r, g, b uint8
	a       float64
}

var namedColors = map[string]Color{
	"red":    {r: 255, g: 0, b: 0, a: 0.2},
	"green":  {r: 0, g: 255, b: 0, a: 0.1},
	"blue":   {r: 0, g: 0, b: 255, a: 0.1},
	"yellow": {r: 255, g: 255, b: 0, a: 0.5},
	"gray":   {r: 0, g: 0, b: 0, a: 0.1},
}

// ColorOf resolves a color name. Unknown names, including the empty string,
// resolve to fully transparent black.
func ColorOf(name string) Color {
	if c, ok := namedColors[name]; ok {
		return c
	}
	return Color{}
}

// KnownColor reports whether name is one of the named colors.
func KnownColor(name string) bool {
	_, ok := namedColors[name]
	return ok
}

// ColorNames returns the recognized color names in sorted order.
func ColorNames() []string {
	names := make([]string, 0, len(namedColors))
	for name := range namedColors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RGBA returns the channel values.
func (c Color) RGBA() (r, g, b uint8, a float64) {
	return c.r, c.g, c.b, c.a
}

// String formats the color as "rgb(r, g, b, a)" with the shortest alpha.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d, %s)", c.r, c.g, c.b, strconv.FormatFloat(c.a, 'f', -1, 64))
}
