package scanner

// Context is the accumulator shared by every callback invocation of a scan.
type Context map[string]any

// Clone returns a shallow copy. A nil Context clones to an empty one.
func (c Context) Clone() Context {
	clone := make(Context, len(c))
	for key, value := range c {
		clone[key] = value
	}
	return clone
}

// Merge copies every entry of other into c, overwriting existing keys.
func (c Context) Merge(other Context) {
	for key, value := range other {
		c[key] = value
	}
}
