// Package emoji resolves application emoji names to their platform
// render strings. The catalog is built once at startup from the
// platform's emoji listing and read-only afterwards.
package emoji

import "fmt"

// Fallback is rendered when a name has no uploaded emoji.
const Fallback = ":x:"

// Catalog maps emoji names to render strings like <:name:id>.
type Catalog struct {
	emojis map[string]string
}

// NewCatalog builds a catalog from a name -> render string map.
func NewCatalog(emojis map[string]string) *Catalog {
	m := make(map[string]string, len(emojis))
	for k, v := range emojis {
		m[k] = v
	}
	return &Catalog{emojis: m}
}

// Lookup resolves a name. Single-character names are stored with a
// trailing underscore (platform names must be at least two runes).
func (c *Catalog) Lookup(name string) string {
	if len(name) == 1 {
		name += "_"
	}
	if c == nil {
		return Fallback
	}
	if e, ok := c.emojis[name]; ok {
		return e
	}
	return Fallback
}

// Number resolves the emoji for a digit.
func (c *Catalog) Number(n int) string {
	return c.Lookup(fmt.Sprintf("%d", n))
}

// Letter resolves the emoji for the nth letter, 1-based (1 = A).
func (c *Catalog) Letter(n int) string {
	return c.Lookup(string(rune('A' + n - 1)))
}

// Len reports how many emojis were loaded.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.emojis)
}
