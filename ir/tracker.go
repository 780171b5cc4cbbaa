package ir

// io bucket indices for used-location tracking.
const (
	ioIn = iota
	ioOut
	ioUniform
	ioBuffer
	ioCount
)

// ioBucket maps a storage qualifier to its used-location bucket, or -1
// when the storage has no location space.
func ioBucket(storage StorageQualifier) int {
	switch storage {
	case StorageIn:
		return ioIn
	case StorageOut:
		return ioOut
	case StorageUniform:
		return ioUniform
	case StorageBuffer:
		return ioBuffer
	default:
		return -1
	}
}

// Tracker records the external resource surface a unit has claimed:
// I/O locations, atomic-counter offsets, specialization-constant ids,
// and transform-feedback buffer layouts. One Tracker per unit; Merge
// re-checks collisions across the union.
type Tracker struct {
	usedIo       [ioCount][]IoRange
	usedAtomics  []OffsetRange
	usedConstIDs map[int]bool
	xfbBuffers   [MaxXfbBuffers]XfbBuffer
	ioAccessed   map[string]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	t := &Tracker{
		usedConstIDs: make(map[int]bool),
		ioAccessed:   make(map[string]bool),
	}
	for i := range t.xfbBuffers {
		t.xfbBuffers[i] = NewXfbBuffer()
	}
	return t
}

// AddUsedLocation claims the location footprint of a declaration and
// checks it against everything already claimed in the same bucket. It
// returns the number of locations consumed, and sets typeCollision when
// the claim overlaps an existing range of a different basic type.
// Overlapping redeclarations of the identical type are tolerated.
func (t *Tracker) AddUsedLocation(q Qualifier, typ Type, stage Stage) (size int, typeCollision bool) {
	set := ioBucket(q.Storage)
	if set < 0 || !q.HasLocation() {
		return 0, false
	}

	if q.Storage == StorageUniform || q.Storage == StorageBuffer {
		size = ComputeTypeUniformLocationSize(typ)
	} else {
		typ.Qualifier = q
		size = ComputeTypeLocationSize(typ, stage)
	}

	// An unqualified component claims the whole location.
	components := Range{0, 3}
	if q.HasComponent() {
		components = Range{q.Component, q.Component + typ.Components() - 1}
	}

	index := 0
	if q.HasIndex() {
		index = q.Index
	}

	r := IoRange{
		Location:  Range{q.Location, q.Location + size - 1},
		Component: components,
		Basic:     typ.Basic,
		Index:     index,
	}
	return size, t.checkLocationRange(set, r)
}

// checkLocationRange tests a claim against a bucket and records it.
// Returns true on an incompatible-type collision.
func (t *Tracker) checkLocationRange(set int, r IoRange) bool {
	collision := false
	for _, prev := range t.usedIo[set] {
		if prev.Overlap(r) && prev.Basic != r.Basic {
			collision = true
			break
		}
	}
	t.usedIo[set] = append(t.usedIo[set], r)
	return collision
}

// AddUsedOffsets claims numOffsets atomic-counter offsets at (binding,
// offset) and reports whether the claim was free of collisions. The
// claim is recorded either way so later checks see the full picture.
func (t *Tracker) AddUsedOffsets(binding, offset, numOffsets int) bool {
	r := OffsetRange{
		Binding: Range{binding, binding},
		Offset:  Range{offset, offset + numOffsets - 1},
	}
	ok := true
	for _, prev := range t.usedAtomics {
		if prev.Overlap(r) {
			ok = false
			break
		}
	}
	t.usedAtomics = append(t.usedAtomics, r)
	return ok
}

// AddUsedConstantID registers a specialization-constant id, returning
// false if the id was already used.
func (t *Tracker) AddUsedConstantID(id int) bool {
	if t.usedConstIDs[id] {
		return false
	}
	t.usedConstIDs[id] = true
	return true
}

// SetXfbBufferStride declares the stride of an xfb buffer. The first
// caller's value wins; later calls must confirm it or get false.
func (t *Tracker) SetXfbBufferStride(buffer int, stride uint32) bool {
	if buffer < 0 || buffer >= MaxXfbBuffers {
		return false
	}
	return claim(&t.xfbBuffers[buffer].Stride, XfbStrideNotSet, stride)
}

// XfbStride returns the declared stride of an xfb buffer, or
// XfbStrideNotSet.
func (t *Tracker) XfbStride(buffer int) uint32 {
	if buffer < 0 || buffer >= MaxXfbBuffers {
		return XfbStrideNotSet
	}
	return t.xfbBuffers[buffer].Stride
}

// AddXfbBufferOffset claims [XfbOffset, XfbOffset+size) bytes of the
// declaration's xfb buffer, growing the implicit stride. It returns -1
// on success or the start of the already-claimed range it collides
// with.
func (t *Tracker) AddXfbBufferOffset(typ Type) int {
	q := typ.Qualifier
	if !q.HasXfb() || q.XfbBuffer >= MaxXfbBuffers || q.XfbOffset == LayoutNotSet {
		return -1
	}
	buf := &t.xfbBuffers[q.XfbBuffer]

	size, containsDouble := ComputeTypeXfbSize(typ)
	if containsDouble {
		buf.ContainsDouble = true
	}

	r := Range{q.XfbOffset, q.XfbOffset + int(size) - 1}
	for _, prev := range buf.Ranges {
		if prev.Overlap(r) {
			return prev.Start
		}
	}
	buf.Ranges = append(buf.Ranges, r)

	if end := uint32(r.Last + 1); end > buf.ImplicitStride {
		buf.ImplicitStride = end
	}
	return -1
}

// AddIoAccessed records that a named I/O object was statically read or
// written.
func (t *Tracker) AddIoAccessed(name string) {
	t.ioAccessed[name] = true
}

// InIoAccessed reports whether the named I/O object was statically
// accessed.
func (t *Tracker) InIoAccessed(name string) bool {
	return t.ioAccessed[name]
}

// ComputeTypeLocationSize returns the number of input/output locations
// a type consumes: arrays scale by element count, matrices take one
// column's footprint per column, and double-based vectors wider than
// two components take two consecutive locations — except vertex-stage
// inputs and fragment-stage outputs, which always fit one.
func ComputeTypeLocationSize(typ Type, stage Stage) int {
	if typ.IsArray() {
		n := typ.ArraySize
		if n == ImplicitArraySize {
			n = 1
		}
		return n * ComputeTypeLocationSize(typ.ElementType(), stage)
	}
	if typ.IsMatrix() {
		column := NewVectorType(typ.Basic, typ.MatrixRows)
		column.Qualifier = typ.Qualifier
		return typ.MatrixCols * ComputeTypeLocationSize(column, stage)
	}
	if typ.Basic == Double && typ.Vector > 2 {
		if stage == StageVertex && typ.Qualifier.Storage == StorageIn {
			return 1
		}
		if stage == StageFragment && typ.Qualifier.Storage == StorageOut {
			return 1
		}
		return 2
	}
	return 1
}

// ComputeTypeUniformLocationSize returns the number of uniform
// locations a type consumes: one per array element, one for everything
// else.
func ComputeTypeUniformLocationSize(typ Type) int {
	if typ.IsArray() {
		n := typ.ArraySize
		if n == ImplicitArraySize {
			n = 1
		}
		return n * ComputeTypeUniformLocationSize(typ.ElementType())
	}
	return 1
}

// ComputeTypeXfbSize returns the byte footprint of a type captured into
// a transform-feedback buffer and whether the type contains a double
// (which forces 8-byte alignment of the containing buffer).
func ComputeTypeXfbSize(typ Type) (size uint32, containsDouble bool) {
	scalar := uint32(4)
	if typ.Basic == Double {
		scalar = 8
		containsDouble = true
	}
	n := uint32(typ.Components())
	if typ.IsArray() {
		count := typ.ArraySize
		if count == ImplicitArraySize {
			count = 1
		}
		n *= uint32(count)
	}
	return scalar * n, containsDouble
}
