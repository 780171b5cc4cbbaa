package ir

// Range is a generic closed 1-D interval [Start, Last].
type Range struct {
	Start int
	Last  int
}

// Overlap reports whether the two closed intervals intersect.
func (r Range) Overlap(rhs Range) bool {
	return r.Last >= rhs.Start && r.Start <= rhs.Last
}

// IoRange is a 3-D rectangle: the set of (location, component, index)
// triples lying within the location range, component range, and index
// value. Locations don't alias unless all other dimensions overlap too.
type IoRange struct {
	Location  Range
	Component Range
	Basic     BasicType
	Index     int
}

// Overlap reports whether the two IO rectangles intersect.
func (r IoRange) Overlap(rhs IoRange) bool {
	return r.Location.Overlap(rhs.Location) && r.Component.Overlap(rhs.Component) && r.Index == rhs.Index
}

// OffsetRange is a 2-D rectangle: the set of (binding, offset) pairs
// lying within the binding range and offset range.
type OffsetRange struct {
	Binding Range
	Offset  Range
}

// Overlap reports whether the two offset rectangles intersect.
func (r OffsetRange) Overlap(rhs OffsetRange) bool {
	return r.Binding.Overlap(rhs.Binding) && r.Offset.Overlap(rhs.Offset)
}

// XfbStrideNotSet marks a transform-feedback buffer whose stride has
// not been declared.
const XfbStrideNotSet = ^uint32(0)

// MaxXfbBuffers bounds the xfb_buffer layout value.
const MaxXfbBuffers = 4

// XfbBuffer tracks everything needed per transform-feedback buffer.
type XfbBuffer struct {
	Ranges         []Range // byte offsets already assigned
	Stride         uint32
	ImplicitStride uint32
	ContainsDouble bool
}

// NewXfbBuffer returns a buffer with no declared stride and nothing
// claimed.
func NewXfbBuffer() XfbBuffer {
	return XfbBuffer{Stride: XfbStrideNotSet}
}
