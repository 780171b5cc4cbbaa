package ir

// claim implements the set-once-or-confirm rule shared by the per-stage
// layout properties (invocations, vertices, primitive modes, depth
// layout, xfb strides, local sizes): the first declared value wins, and
// every later declaration must match it exactly.
func claim[T comparable](dst *T, unset, v T) bool {
	if *dst != unset {
		return *dst == v
	}
	*dst = v
	return true
}
