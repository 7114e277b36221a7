package terrain

// Cache memoizes per-column terrain queries for the in-bounds world
// square. Entries are write-once until Reset; values never change for
// a given seed, so there is no invalidation beyond a world switch.
type Cache struct {
	size   int
	height []int16 // -1 unset
	water  []int16 // -2 unset, -1 no water
	biome  []int8  // -1 unset
	shore  []int8  // -1 unset, else 0/1
}

func NewCache(size int) *Cache {
	c := &Cache{
		size:   size,
		height: make([]int16, size*size),
		water:  make([]int16, size*size),
		biome:  make([]int8, size*size),
		shore:  make([]int8, size*size),
	}
	c.Reset()
	return c
}

// Reset clears every memoized entry. Used when switching worlds so
// nothing computed under the old seed survives.
func (c *Cache) Reset() {
	for i := range c.height {
		c.height[i] = -1
		c.water[i] = -2
		c.biome[i] = -1
		c.shore[i] = -1
	}
}

func (c *Cache) idx(x, z int) (int, bool) {
	if x < 0 || z < 0 || x >= c.size || z >= c.size {
		return 0, false
	}
	return z*c.size + x, true
}
