package catalog

// cell caches the first accepted result of a computation until reset.
type cell[T any] struct {
	value T
	set   bool
}

// get returns the cached value, or runs compute and caches its result when
// compute reports ok. A rejected result is returned but not cached.
func (c *cell[T]) get(compute func() (T, bool)) T {
	if c.set {
		return c.value
	}
	v, ok := compute()
	if ok {
		c.value = v
		c.set = true
	}
	return v
}

func (c *cell[T]) cached() bool {
	return c.set
}

func (c *cell[T]) reset() {
	var zero T
	c.value = zero
	c.set = false
}
