package ir

import (
	"strconv"
	"strings"

	"github.com/gogpu/glslang/diag"
)

// Profile distinguishes the source-language profile.
type Profile uint8

const (
	ProfileNone Profile = iota
	ProfileCore
	ProfileCompatibility
	ProfileEs
)

// ResourceType classifies a bindable resource for binding shifts.
type ResourceType uint8

const (
	ResSampler ResourceType = iota
	ResTexture
	ResImage
	ResUbo
	ResSsbo
	ResUav

	ResCount
)

// resourceName returns the process-log name of a shifted resource
// class.
func resourceName(res ResourceType) string {
	switch res {
	case ResSampler:
		return "shift-sampler-binding"
	case ResTexture:
		return "shift-texture-binding"
	case ResImage:
		return "shift-image-binding"
	case ResUbo:
		return "shift-UBO-binding"
	case ResSsbo:
		return "shift-ssbo-binding"
	case ResUav:
		return "shift-uav-binding"
	default:
		return ""
	}
}

// TextureSamplerTransformMode controls combined texture/sampler
// rewriting.
type TextureSamplerTransformMode uint8

const (
	TexSampTransKeep TextureSamplerTransformMode = iota
	TexSampTransUpgradeTextureRemoveSampler
)

// LayoutGeometry is a geometry/tessellation primitive layout.
type LayoutGeometry uint8

const (
	GeometryNone LayoutGeometry = iota
	GeometryPoints
	GeometryLines
	GeometryLinesAdjacency
	GeometryLineStrip
	GeometryTriangles
	GeometryTrianglesAdjacency
	GeometryTriangleStrip
	GeometryQuads
	GeometryIsolines
)

// VertexSpacing is a tessellation spacing mode.
type VertexSpacing uint8

const (
	SpacingNone VertexSpacing = iota
	SpacingEqual
	SpacingFractionalEven
	SpacingFractionalOdd
)

// VertexOrder is a tessellation winding order.
type VertexOrder uint8

const (
	OrderNone VertexOrder = iota
	OrderCw
	OrderCcw
)

// LayoutDepth is a fragment depth layout.
type LayoutDepth uint8

const (
	DepthNone LayoutDepth = iota
	DepthAny
	DepthGreater
	DepthLess
	DepthUnchanged
)

// SpvVersion records the client and target environment versions
// negotiated for binary output.
type SpvVersion struct {
	Spv    int // 0 means no binary target
	Vulkan int
	OpenGl int
}

// ProcessLog records, in order, every normalization decision made while
// a unit was processed, for embedding as build provenance. Entries are
// of the form "process arg0 arg1 ..."; the log is append-only.
type ProcessLog struct {
	processes []string
}

// AddProcess starts a new process entry.
func (p *ProcessLog) AddProcess(process string) {
	p.processes = append(p.processes, process)
}

// AddArgument appends an argument to the latest entry.
func (p *ProcessLog) AddArgument(arg string) {
	if len(p.processes) == 0 {
		return
	}
	p.processes[len(p.processes)-1] += " " + arg
}

// AddIntArgument appends a numeric argument to the latest entry.
func (p *ProcessLog) AddIntArgument(arg int) {
	p.AddArgument(strconv.Itoa(arg))
}

// AddIfNonZero records "process value" only when value is non-zero.
func (p *ProcessLog) AddIfNonZero(process string, value int) {
	if value != 0 {
		p.AddProcess(process)
		p.AddIntArgument(value)
	}
}

// Processes returns the recorded entries.
func (p *ProcessLog) Processes() []string { return p.processes }

// Intermediate owns everything one compilation unit accumulates while
// its tree is built. It is single-threaded; independent units may be
// built concurrently as long as each owns its own Intermediate, which
// stays true until the explicit Merge step.
type Intermediate struct {
	stage   Stage
	profile Profile
	version int
	spv     SpvVersion

	sink diag.Sink

	entryPointName        string
	entryPointMangledName string
	numEntryPoints        int
	numPushConstants      int
	recursive             bool

	treeRoot Node

	// Per-stage set-once layout state.
	invocations     int
	vertices        int
	inputPrimitive  LayoutGeometry
	outputPrimitive LayoutGeometry
	vertexSpacing   VertexSpacing
	vertexOrder     VertexOrder
	pointMode       bool
	localSize       [3]int
	localSizeSpecID [3]int
	depthLayout     LayoutDepth
	depthReplacing  bool

	originUpperLeft    bool
	pixelCenterInteger bool
	earlyFragmentTests bool
	postDepthCoverage  bool
	xfbMode            bool
	multiStream        bool

	// Configuration (set once per unit, before building).
	autoMapBindings     bool
	autoMapLocations    bool
	invertY             bool
	flattenUniformArray bool
	useUnknownFormat    bool
	hlslOffsets         bool
	useStorageBuffer    bool
	hlslIoMapping       bool
	texSampTransMode    TextureSamplerTransformMode
	shiftBinding        [ResCount]uint
	shiftBindingForSet  [ResCount]map[uint]uint
	resourceSetBinding  []string

	tracker             *Tracker
	callGraph           *CallGraph
	processes           ProcessLog
	requestedExtensions map[string]bool

	sourceFile string
	symbolID   int64
}

// NewIntermediate creates the context for one compilation unit,
// reporting diagnostics through sink.
func NewIntermediate(stage Stage, sink diag.Sink) *Intermediate {
	i := &Intermediate{
		stage:               stage,
		sink:                sink,
		invocations:         LayoutNotSet,
		vertices:            LayoutNotSet,
		localSize:           [3]int{1, 1, 1},
		localSizeSpecID:     [3]int{LayoutNotSet, LayoutNotSet, LayoutNotSet},
		tracker:             NewTracker(),
		callGraph:           &CallGraph{},
		requestedExtensions: make(map[string]bool),
	}
	return i
}

// Stage returns the unit's pipeline stage.
func (i *Intermediate) Stage() Stage { return i.stage }

// SetVersion sets the source version.
func (i *Intermediate) SetVersion(v int) { i.version = v }

// Version returns the source version.
func (i *Intermediate) Version() int { return i.version }

// SetProfile sets the source profile.
func (i *Intermediate) SetProfile(p Profile) { i.profile = p }

// Profile returns the source profile.
func (i *Intermediate) Profile() Profile { return i.profile }

// SetSpv records the negotiated client and target environment and logs
// both as processes.
func (i *Intermediate) SetSpv(s SpvVersion) {
	i.spv = s

	// client processes
	if s.Vulkan > 0 {
		i.processes.AddProcess("client vulkan100")
	}
	if s.OpenGl > 0 {
		i.processes.AddProcess("client opengl100")
	}

	// target-environment processes
	if s.Vulkan > 0 {
		i.processes.AddProcess("target-env vulkan1.0")
	}
	if s.OpenGl > 0 {
		i.processes.AddProcess("target-env opengl")
	}
}

// Spv returns the negotiated binary-output versions.
func (i *Intermediate) Spv() SpvVersion { return i.spv }

// SetEntryPointName declares the entry point and logs the decision.
func (i *Intermediate) SetEntryPointName(name string) {
	i.entryPointName = name
	i.processes.AddProcess("entry-point")
	i.processes.AddArgument(name)
}

// EntryPointName returns the declared entry point name.
func (i *Intermediate) EntryPointName() string { return i.entryPointName }

// SetEntryPointMangledName records the mangled form used in the tree.
func (i *Intermediate) SetEntryPointMangledName(name string) { i.entryPointMangledName = name }

// EntryPointMangledName returns the mangled entry point name.
func (i *Intermediate) EntryPointMangledName() string { return i.entryPointMangledName }

// IncrementEntryPointCount counts a definition of the entry point.
func (i *Intermediate) IncrementEntryPointCount() { i.numEntryPoints++ }

// NumEntryPoints returns how many entry-point definitions were seen.
func (i *Intermediate) NumEntryPoints() int { return i.numEntryPoints }

// AddPushConstantCount counts a push-constant block declaration.
func (i *Intermediate) AddPushConstantCount() { i.numPushConstants++ }

// IsRecursive reports whether finalization found call-graph recursion.
func (i *Intermediate) IsRecursive() bool { return i.recursive }

// SetTreeRoot installs the unit's root node.
func (i *Intermediate) SetTreeRoot(root Node) { i.treeRoot = root }

// TreeRoot returns the unit's root node.
func (i *Intermediate) TreeRoot() Node { return i.treeRoot }

// Tracker returns the unit's resource tracker.
func (i *Intermediate) Tracker() *Tracker { return i.tracker }

// CallGraph returns the unit's call graph.
func (i *Intermediate) CallGraph() *CallGraph { return i.callGraph }

// AddToCallGraph records a caller→callee edge as a function-call node
// is built.
func (i *Intermediate) AddToCallGraph(caller, callee string) {
	i.callGraph.Add(caller, callee)
}

// AddRequestedExtension accumulates an enabled or required extension.
func (i *Intermediate) AddRequestedExtension(extension string) {
	i.requestedExtensions[extension] = true
}

// ExtensionRequested reports whether an extension was requested.
func (i *Intermediate) ExtensionRequested(extension string) bool {
	return i.requestedExtensions[extension]
}

// RequestedExtensions returns all requested extensions.
func (i *Intermediate) RequestedExtensions() []string {
	exts := make([]string, 0, len(i.requestedExtensions))
	for e := range i.requestedExtensions {
		exts = append(exts, e)
	}
	return exts
}

// SetSourceFile records the source file name for provenance.
func (i *Intermediate) SetSourceFile(file string) { i.sourceFile = file }

// SourceFile returns the recorded source file name.
func (i *Intermediate) SourceFile() string { return i.sourceFile }

// Processes returns the unit's process log entries.
func (i *Intermediate) Processes() []string { return i.processes.Processes() }

// AddProcess appends one process entry.
func (i *Intermediate) AddProcess(process string) { i.processes.AddProcess(process) }

// AddProcessArgument appends an argument to the latest process entry.
func (i *Intermediate) AddProcessArgument(arg string) { i.processes.AddArgument(arg) }

// Set-once per-stage layout properties. Each is a claim-or-confirm:
// the first declaration wins, later declarations must agree.

// SetInvocations claims the geometry invocation count.
func (i *Intermediate) SetInvocations(n int) bool { return claim(&i.invocations, LayoutNotSet, n) }

// Invocations returns the claimed invocation count or LayoutNotSet.
func (i *Intermediate) Invocations() int { return i.invocations }

// SetVertices claims the output vertex count.
func (i *Intermediate) SetVertices(n int) bool { return claim(&i.vertices, LayoutNotSet, n) }

// Vertices returns the claimed vertex count or LayoutNotSet.
func (i *Intermediate) Vertices() int { return i.vertices }

// SetInputPrimitive claims the input primitive topology.
func (i *Intermediate) SetInputPrimitive(p LayoutGeometry) bool {
	return claim(&i.inputPrimitive, GeometryNone, p)
}

// InputPrimitive returns the claimed input topology.
func (i *Intermediate) InputPrimitive() LayoutGeometry { return i.inputPrimitive }

// SetOutputPrimitive claims the output primitive topology.
func (i *Intermediate) SetOutputPrimitive(p LayoutGeometry) bool {
	return claim(&i.outputPrimitive, GeometryNone, p)
}

// OutputPrimitive returns the claimed output topology.
func (i *Intermediate) OutputPrimitive() LayoutGeometry { return i.outputPrimitive }

// SetVertexSpacing claims the tessellation spacing.
func (i *Intermediate) SetVertexSpacing(s VertexSpacing) bool {
	return claim(&i.vertexSpacing, SpacingNone, s)
}

// VertexSpacing returns the claimed spacing.
func (i *Intermediate) VertexSpacing() VertexSpacing { return i.vertexSpacing }

// SetVertexOrder claims the tessellation winding order.
func (i *Intermediate) SetVertexOrder(o VertexOrder) bool {
	return claim(&i.vertexOrder, OrderNone, o)
}

// VertexOrder returns the claimed winding order.
func (i *Intermediate) VertexOrder() VertexOrder { return i.vertexOrder }

// SetDepth claims the fragment depth layout.
func (i *Intermediate) SetDepth(d LayoutDepth) bool { return claim(&i.depthLayout, DepthNone, d) }

// Depth returns the claimed depth layout.
func (i *Intermediate) Depth() LayoutDepth { return i.depthLayout }

// SetLocalSize claims one dimension of the compute local work-group
// size. A size of 1 counts as undeclared.
func (i *Intermediate) SetLocalSize(dim, size int) bool {
	if i.localSize[dim] > 1 {
		return i.localSize[dim] == size
	}
	i.localSize[dim] = size
	return true
}

// LocalSize returns one dimension of the local work-group size.
func (i *Intermediate) LocalSize(dim int) int { return i.localSize[dim] }

// SetLocalSizeSpecID claims the specialization id of one local-size
// dimension.
func (i *Intermediate) SetLocalSizeSpecID(dim, id int) bool {
	return claim(&i.localSizeSpecID[dim], LayoutNotSet, id)
}

// LocalSizeSpecID returns the specialization id of one local-size
// dimension, or LayoutNotSet.
func (i *Intermediate) LocalSizeSpecID(dim int) int { return i.localSizeSpecID[dim] }

// SetXfbBufferStride claims the stride of one transform-feedback
// buffer.
func (i *Intermediate) SetXfbBufferStride(buffer int, stride uint32) bool {
	return i.tracker.SetXfbBufferStride(buffer, stride)
}

// XfbStride returns the claimed stride of one xfb buffer.
func (i *Intermediate) XfbStride(buffer int) uint32 { return i.tracker.XfbStride(buffer) }

// Sticky single-direction flags (never un-set, no value to confirm).

// SetPointMode marks tessellation point mode.
func (i *Intermediate) SetPointMode() { i.pointMode = true }

// PointMode reports tessellation point mode.
func (i *Intermediate) PointMode() bool { return i.pointMode }

// SetOriginUpperLeft marks the fragment origin as upper-left.
func (i *Intermediate) SetOriginUpperLeft() { i.originUpperLeft = true }

// OriginUpperLeft reports the fragment origin convention.
func (i *Intermediate) OriginUpperLeft() bool { return i.originUpperLeft }

// SetPixelCenterInteger marks integer pixel centers.
func (i *Intermediate) SetPixelCenterInteger() { i.pixelCenterInteger = true }

// PixelCenterInteger reports integer pixel centers.
func (i *Intermediate) PixelCenterInteger() bool { return i.pixelCenterInteger }

// SetEarlyFragmentTests marks early fragment tests.
func (i *Intermediate) SetEarlyFragmentTests() { i.earlyFragmentTests = true }

// EarlyFragmentTests reports early fragment tests.
func (i *Intermediate) EarlyFragmentTests() bool { return i.earlyFragmentTests }

// SetPostDepthCoverage marks post-depth coverage.
func (i *Intermediate) SetPostDepthCoverage() { i.postDepthCoverage = true }

// PostDepthCoverage reports post-depth coverage.
func (i *Intermediate) PostDepthCoverage() bool { return i.postDepthCoverage }

// SetDepthReplacing marks that the shader writes gl_FragDepth.
func (i *Intermediate) SetDepthReplacing() { i.depthReplacing = true }

// IsDepthReplacing reports whether the shader writes depth.
func (i *Intermediate) IsDepthReplacing() bool { return i.depthReplacing }

// SetXfbMode marks that any xfb layout was used.
func (i *Intermediate) SetXfbMode() { i.xfbMode = true }

// XfbMode reports whether transform feedback is in use.
func (i *Intermediate) XfbMode() bool { return i.xfbMode }

// SetMultiStream marks multi-stream geometry output.
func (i *Intermediate) SetMultiStream() { i.multiStream = true }

// IsMultiStream reports multi-stream geometry output.
func (i *Intermediate) IsMultiStream() bool { return i.multiStream }

// Configuration setters; each records its decision in the process log.

// SetAutoMapBindings enables automatic binding assignment.
func (i *Intermediate) SetAutoMapBindings(m bool) {
	i.autoMapBindings = m
	if m {
		i.processes.AddProcess("auto-map-bindings")
	}
}

// AutoMapBindings reports automatic binding assignment.
func (i *Intermediate) AutoMapBindings() bool { return i.autoMapBindings }

// SetAutoMapLocations enables automatic location assignment.
func (i *Intermediate) SetAutoMapLocations(m bool) {
	i.autoMapLocations = m
	if m {
		i.processes.AddProcess("auto-map-locations")
	}
}

// AutoMapLocations reports automatic location assignment.
func (i *Intermediate) AutoMapLocations() bool { return i.autoMapLocations }

// SetInvertY enables Y-axis inversion of the vertex position output.
func (i *Intermediate) SetInvertY(invert bool) {
	i.invertY = invert
	if invert {
		i.processes.AddProcess("invert-y")
	}
}

// InvertY reports Y-axis inversion.
func (i *Intermediate) InvertY() bool { return i.invertY }

// SetFlattenUniformArrays enables flattening of uniform arrays.
func (i *Intermediate) SetFlattenUniformArrays(flatten bool) {
	i.flattenUniformArray = flatten
	if flatten {
		i.processes.AddProcess("flatten-uniform-arrays")
	}
}

// FlattenUniformArrays reports uniform-array flattening.
func (i *Intermediate) FlattenUniformArrays() bool { return i.flattenUniformArray }

// SetNoStorageFormat marks storage images as having unknown format.
func (i *Intermediate) SetNoStorageFormat(b bool) {
	i.useUnknownFormat = b
	if b {
		i.processes.AddProcess("no-storage-format")
	}
}

// NoStorageFormat reports unknown-format storage images.
func (i *Intermediate) NoStorageFormat() bool { return i.useUnknownFormat }

// SetHlslOffsets selects source-language-specific packing rules.
func (i *Intermediate) SetHlslOffsets() {
	i.hlslOffsets = true
	i.processes.AddProcess("hlsl-offsets")
}

// UsingHlslOffsets reports source-language-specific packing rules.
func (i *Intermediate) UsingHlslOffsets() bool { return i.hlslOffsets }

// SetUseStorageBuffer treats buffer blocks as storage buffers rather
// than uniform blocks.
func (i *Intermediate) SetUseStorageBuffer() {
	i.useStorageBuffer = true
	i.processes.AddProcess("use-storage-buffer")
}

// UsingStorageBuffer reports storage-buffer treatment.
func (i *Intermediate) UsingStorageBuffer() bool { return i.useStorageBuffer }

// SetHlslIoMapping selects source-language-specific IO mapping.
func (i *Intermediate) SetHlslIoMapping(b bool) {
	i.hlslIoMapping = b
	if b {
		i.processes.AddProcess("hlsl-iomap")
	}
}

// UsingHlslIoMapping reports source-language-specific IO mapping.
func (i *Intermediate) UsingHlslIoMapping() bool { return i.hlslIoMapping }

// SetTextureSamplerTransformMode selects combined texture/sampler
// rewriting.
func (i *Intermediate) SetTextureSamplerTransformMode(mode TextureSamplerTransformMode) {
	i.texSampTransMode = mode
}

// TextureSamplerTransformMode returns the rewriting mode.
func (i *Intermediate) TextureSamplerTransformMode() TextureSamplerTransformMode {
	return i.texSampTransMode
}

// SetShiftBinding sets the global binding shift for one resource class.
func (i *Intermediate) SetShiftBinding(res ResourceType, shift uint) {
	i.shiftBinding[res] = shift
	if name := resourceName(res); name != "" {
		i.processes.AddIfNonZero(name, int(shift))
	}
}

// ShiftBinding returns the global binding shift for a resource class.
func (i *Intermediate) ShiftBinding(res ResourceType) uint { return i.shiftBinding[res] }

// SetShiftBindingForSet sets a per-descriptor-set binding shift. A zero
// shift is a no-op.
func (i *Intermediate) SetShiftBindingForSet(res ResourceType, shift, set uint) {
	if shift == 0 {
		return
	}
	if i.shiftBindingForSet[res] == nil {
		i.shiftBindingForSet[res] = make(map[uint]uint)
	}
	i.shiftBindingForSet[res][set] = shift

	if name := resourceName(res); name != "" {
		i.processes.AddProcess(name)
		i.processes.AddIntArgument(int(shift))
		i.processes.AddIntArgument(int(set))
	}
}

// ShiftBindingForSet returns the per-set shift for a resource class, or
// -1 when none is configured for that set.
func (i *Intermediate) ShiftBindingForSet(res ResourceType, set uint) int {
	shift, ok := i.shiftBindingForSet[res][set]
	if !ok {
		return -1
	}
	return int(shift)
}

// SetResourceSetBinding records the explicit resource-set binding list.
func (i *Intermediate) SetResourceSetBinding(bindings []string) {
	i.resourceSetBinding = bindings
	if len(bindings) > 0 {
		i.processes.AddProcess("resource-set-binding")
		for _, b := range bindings {
			i.processes.AddArgument(b)
		}
	}
}

// ResourceSetBinding returns the explicit resource-set binding list.
func (i *Intermediate) ResourceSetBinding() []string { return i.resourceSetBinding }

// Resource-usage pass-throughs with unit-level bookkeeping.

// AddUsedLocation claims a declaration's location footprint, reporting
// an incompatible-type collision through the sink.
func (i *Intermediate) AddUsedLocation(q Qualifier, typ Type, loc diag.Loc) int {
	size, collision := i.tracker.AddUsedLocation(q, typ, i.stage)
	if collision {
		i.sink.Error(loc, "overlapping use of location with different type", "location "+strconv.Itoa(q.Location))
	}
	return size
}

// AddUsedOffsets claims atomic-counter offsets, reporting collisions.
func (i *Intermediate) AddUsedOffsets(binding, offset, numOffsets int, loc diag.Loc) bool {
	if !i.tracker.AddUsedOffsets(binding, offset, numOffsets) {
		i.sink.Error(loc, "atomic counters sharing the same offset", "binding "+strconv.Itoa(binding))
		return false
	}
	return true
}

// AddUsedConstantID claims a specialization-constant id, reporting a
// duplicate.
func (i *Intermediate) AddUsedConstantID(id int, loc diag.Loc) bool {
	if !i.tracker.AddUsedConstantID(id) {
		i.sink.Error(loc, "specialization-constant id already used", "constant_id "+strconv.Itoa(id))
		return false
	}
	return true
}

// AddIoAccessed records static access of a named I/O object.
func (i *Intermediate) AddIoAccessed(name string) { i.tracker.AddIoAccessed(name) }

// InIoAccessed reports static access of a named I/O object.
func (i *Intermediate) InIoAccessed(name string) bool { return i.tracker.InIoAccessed(name) }

// error reports a unit-scope (no location) error.
func (i *Intermediate) error(text, context string) {
	i.sink.Error(diag.Loc{File: i.sourceFile}, text, context)
}

// warn reports a unit-scope warning.
func (i *Intermediate) warn(text, context string) {
	i.sink.Warn(diag.Loc{File: i.sourceFile}, text, context)
}

// mangledBase strips a mangled function name back to its source
// spelling ("main(" → "main").
func mangledBase(name string) string {
	if idx := strings.IndexByte(name, '('); idx >= 0 {
		return name[:idx]
	}
	return name
}
