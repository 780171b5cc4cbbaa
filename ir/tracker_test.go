package ir

import "testing"

func outAt(location int) Qualifier {
	q := NewQualifier(StorageOut)
	q.Location = location
	return q
}

func TestComputeTypeLocationSize(t *testing.T) {
	vec4 := NewVectorType(Float, 4)
	arr := vec4
	arr.ArraySize = 3

	tests := []struct {
		name string
		typ  Type
		want int
	}{
		{"float scalar", NewType(Float), 1},
		{"vec4", vec4, 1},
		{"dvec2", NewVectorType(Double, 2), 1},
		{"dvec3", NewVectorType(Double, 3), 2},
		{"dvec4", NewVectorType(Double, 4), 2},
		{"mat4", NewMatrixType(Float, 4, 4), 4},
		{"dmat2x3", NewMatrixType(Double, 2, 3), 4},
		{"vec4[3]", arr, 3},
	}
	for _, tt := range tests {
		if got := ComputeTypeLocationSize(tt.typ, StageVertex); got != tt.want {
			t.Errorf("%s: size = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestComputeTypeLocationSize_DoubleStageDependence(t *testing.T) {
	withStorage := func(typ Type, storage StorageQualifier) Type {
		typ.Qualifier = NewQualifier(storage)
		return typ
	}
	dvec4 := NewVectorType(Double, 4)

	tests := []struct {
		name  string
		typ   Type
		stage Stage
		want  int
	}{
		{"vertex in", withStorage(dvec4, StorageIn), StageVertex, 1},
		{"vertex out", withStorage(dvec4, StorageOut), StageVertex, 2},
		{"fragment out", withStorage(dvec4, StorageOut), StageFragment, 1},
		{"fragment in", withStorage(dvec4, StorageIn), StageFragment, 2},
		{"geometry in", withStorage(dvec4, StorageIn), StageGeometry, 2},
		{"vertex in dmat2x3", withStorage(NewMatrixType(Double, 2, 3), StorageIn), StageVertex, 2},
	}
	for _, tt := range tests {
		if got := ComputeTypeLocationSize(tt.typ, tt.stage); got != tt.want {
			t.Errorf("%s: size = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestTracker_VertexInputDoubleSingleSlot(t *testing.T) {
	tr := NewTracker()

	in := NewQualifier(StorageIn)
	in.Location = 0
	size, collision := tr.AddUsedLocation(in, NewVectorType(Double, 4), StageVertex)
	if size != 1 || collision {
		t.Fatalf("vertex-in dvec4 claim = (%d, %v), want (1, false)", size, collision)
	}

	// Location 1 stays free because the input took a single slot.
	next := NewQualifier(StorageIn)
	next.Location = 1
	if _, collision := tr.AddUsedLocation(next, NewVectorType(Float, 4), StageVertex); collision {
		t.Error("location 1 must be free after a single-slot dvec4 input")
	}
}

func TestComputeTypeUniformLocationSize(t *testing.T) {
	mat4 := NewMatrixType(Float, 4, 4)
	if got := ComputeTypeUniformLocationSize(mat4); got != 1 {
		t.Errorf("mat4 uniform size = %d, want 1", got)
	}
	arr := NewVectorType(Float, 4)
	arr.ArraySize = 5
	if got := ComputeTypeUniformLocationSize(arr); got != 5 {
		t.Errorf("vec4[5] uniform size = %d, want 5", got)
	}
}

func TestComputeTypeXfbSize(t *testing.T) {
	size, hasDouble := ComputeTypeXfbSize(NewVectorType(Float, 4))
	if size != 16 || hasDouble {
		t.Errorf("vec4 xfb = (%d, %v), want (16, false)", size, hasDouble)
	}
	size, hasDouble = ComputeTypeXfbSize(NewVectorType(Double, 2))
	if size != 16 || !hasDouble {
		t.Errorf("dvec2 xfb = (%d, %v), want (16, true)", size, hasDouble)
	}
}

func TestTracker_AddUsedLocationCollision(t *testing.T) {
	tr := NewTracker()

	// dvec3 at location 0 takes locations 0..1.
	size, collision := tr.AddUsedLocation(outAt(0), NewVectorType(Double, 3), StageVertex)
	if size != 2 || collision {
		t.Fatalf("first claim = (%d, %v), want (2, false)", size, collision)
	}

	// A float vec4 at location 1 lands inside the double's range.
	size, collision = tr.AddUsedLocation(outAt(1), NewVectorType(Float, 4), StageVertex)
	if size != 1 || !collision {
		t.Errorf("overlapping different type = (%d, %v), want (1, true)", size, collision)
	}

	// Location 2 is free.
	if _, collision = tr.AddUsedLocation(outAt(2), NewVectorType(Float, 4), StageVertex); collision {
		t.Error("location 2 must be free")
	}
}

func TestTracker_AddUsedLocationSameTypeTolerated(t *testing.T) {
	tr := NewTracker()
	typ := NewVectorType(Float, 4)

	tr.AddUsedLocation(outAt(3), typ, StageVertex)
	if _, collision := tr.AddUsedLocation(outAt(3), typ, StageVertex); collision {
		t.Error("identical-type redeclaration must not collide")
	}
}

func TestTracker_AddUsedLocationDisjointComponents(t *testing.T) {
	tr := NewTracker()

	qa := outAt(0)
	qa.Component = 0
	qb := outAt(0)
	qb.Component = 1

	tr.AddUsedLocation(qa, NewType(Float), StageVertex)
	if _, collision := tr.AddUsedLocation(qb, NewType(Int), StageVertex); collision {
		t.Error("disjoint components at one location must not collide")
	}

	// Same component, different type: collision.
	qc := outAt(0)
	qc.Component = 0
	if _, collision := tr.AddUsedLocation(qc, NewType(Int), StageVertex); !collision {
		t.Error("same component with a different type must collide")
	}
}

func TestTracker_AddUsedLocationIndexSeparates(t *testing.T) {
	tr := NewTracker()

	qa := outAt(0)
	qa.Index = 0
	qb := outAt(0)
	qb.Index = 1

	tr.AddUsedLocation(qa, NewType(Float), StageFragment)
	if _, collision := tr.AddUsedLocation(qb, NewType(Int), StageFragment); collision {
		t.Error("different dual-source indexes must not collide")
	}
}

func TestTracker_BucketsIndependent(t *testing.T) {
	tr := NewTracker()

	in := NewQualifier(StorageIn)
	in.Location = 0
	tr.AddUsedLocation(in, NewType(Float), StageVertex)

	if _, collision := tr.AddUsedLocation(outAt(0), NewType(Int), StageVertex); collision {
		t.Error("in and out locations live in separate spaces")
	}
}

func TestTracker_NoLocationNoClaim(t *testing.T) {
	tr := NewTracker()
	size, collision := tr.AddUsedLocation(NewQualifier(StorageOut), NewType(Float), StageVertex)
	if size != 0 || collision {
		t.Errorf("unlocated declaration = (%d, %v), want (0, false)", size, collision)
	}
}

func TestTracker_AddUsedOffsets(t *testing.T) {
	tr := NewTracker()

	if !tr.AddUsedOffsets(0, 0, 2) {
		t.Error("first claim must succeed")
	}
	if tr.AddUsedOffsets(0, 1, 1) {
		t.Error("offset 1 is inside the claimed range")
	}
	if !tr.AddUsedOffsets(0, 2, 1) {
		t.Error("offset 2 is free")
	}
	if !tr.AddUsedOffsets(1, 0, 1) {
		t.Error("another binding is a separate space")
	}
}

func TestTracker_AddUsedConstantID(t *testing.T) {
	tr := NewTracker()
	if !tr.AddUsedConstantID(7) {
		t.Error("first use of id 7 must succeed")
	}
	if tr.AddUsedConstantID(7) {
		t.Error("second use of id 7 must fail")
	}
	if !tr.AddUsedConstantID(8) {
		t.Error("id 8 is free")
	}
}

func TestTracker_SetXfbBufferStride(t *testing.T) {
	tr := NewTracker()

	if !tr.SetXfbBufferStride(1, 64) {
		t.Error("first stride declaration must succeed")
	}
	if !tr.SetXfbBufferStride(1, 64) {
		t.Error("confirming the same stride must succeed")
	}
	if tr.SetXfbBufferStride(1, 32) {
		t.Error("contradicting stride must fail")
	}
	if got := tr.XfbStride(1); got != 64 {
		t.Errorf("stride = %d, the first declaration must win", got)
	}
	if tr.SetXfbBufferStride(MaxXfbBuffers, 16) {
		t.Error("out-of-range buffer must fail")
	}
}

func TestTracker_AddXfbBufferOffset(t *testing.T) {
	tr := NewTracker()

	vec4 := NewVectorType(Float, 4)
	vec4.Qualifier.XfbBuffer = 0
	vec4.Qualifier.XfbOffset = 0

	if got := tr.AddXfbBufferOffset(vec4); got != -1 {
		t.Fatalf("first claim = %d, want -1", got)
	}

	// Bytes 8..23 collide with the claimed 0..15.
	overlapping := NewVectorType(Float, 4)
	overlapping.Qualifier.XfbBuffer = 0
	overlapping.Qualifier.XfbOffset = 8
	if got := tr.AddXfbBufferOffset(overlapping); got != 0 {
		t.Errorf("overlap = %d, want the colliding range start 0", got)
	}

	next := NewVectorType(Double, 2)
	next.Qualifier.XfbBuffer = 0
	next.Qualifier.XfbOffset = 16
	if got := tr.AddXfbBufferOffset(next); got != -1 {
		t.Errorf("claim at 16 = %d, want -1", got)
	}
}

func TestTracker_IoAccessed(t *testing.T) {
	tr := NewTracker()
	if tr.InIoAccessed("color") {
		t.Error("nothing accessed yet")
	}
	tr.AddIoAccessed("color")
	if !tr.InIoAccessed("color") {
		t.Error("access not recorded")
	}
}
