package window

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

type cacheKey struct {
	typ    Type
	length int
}

// Cache keeps generated coefficients keyed by type and length. It is safe for
// concurrent use; returned slices are shared and must not be modified.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey][]float64
}

// NewCache returns an empty coefficient cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]float64)}
}

// Coefficients returns the cached coefficients for t and length, generating
// them on first use.
func (c *Cache) Coefficients(t Type, length int) ([]float64, error) {
	key := cacheKey{typ: t, length: length}

	c.mu.Lock()
	defer c.mu.Unlock()

	if coeffs, ok := c.entries[key]; ok {
		return coeffs, nil
	}

	coeffs, err := Generate(t, length)
	if err != nil {
		return nil, err
	}

	c.entries[key] = coeffs

	return coeffs, nil
}

// Apply multiplies buf in-place by cached coefficients.
func (c *Cache) Apply(t Type, buf []float64) error {
	if len(buf) == 0 {
		return nil
	}

	coeffs, err := c.Coefficients(t, len(buf))
	if err != nil {
		return err
	}

	vecmath.MulBlockInPlace(buf, coeffs)

	return nil
}

// Len returns the number of cached coefficient sets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
