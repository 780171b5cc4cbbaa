package ir

import (
	"strconv"

	"github.com/agnivade/levenshtein"
)

// Linking: merging two already-finalized per-unit trees into one
// program, then the whole-program checks that only make sense with the
// complete view.

// AddLinkerObject appends a global-scope symbol to the unit's
// linker-objects list, creating the tree scaffolding on first use.
func (i *Intermediate) AddLinkerObject(sym *Symbol) {
	root := i.growRoot()
	linker := i.findLinkerObjects()
	if linker == nil {
		linker = &Aggregate{Op: OpLinkerObjects}
		linker.typ = NewType(Void)
		root.Children = append(root.Children, linker)
	}
	linker.Children = append(linker.Children, sym)
}

// AddFunctionBody appends a function definition to the unit's tree,
// keeping the linker-objects aggregate last.
func (i *Intermediate) AddFunctionBody(fn *Aggregate) {
	root := i.growRoot()
	if n := len(root.Children); n > 0 {
		if agg, ok := root.Children[n-1].(*Aggregate); ok && agg.Op == OpLinkerObjects {
			root.Children = append(root.Children[:n-1], fn, agg)
			return
		}
	}
	root.Children = append(root.Children, fn)
}

// growRoot returns the root sequence aggregate, creating it on demand.
func (i *Intermediate) growRoot() *Aggregate {
	if root, ok := i.treeRoot.(*Aggregate); ok {
		return root
	}
	root := &Aggregate{Op: OpSequence}
	root.typ = NewType(Void)
	if i.treeRoot != nil {
		root.Children = append(root.Children, i.treeRoot)
	}
	i.treeRoot = root
	return root
}

// findLinkerObjects returns the tree's linker-objects aggregate, or
// nil.
func (i *Intermediate) findLinkerObjects() *Aggregate {
	root, ok := i.treeRoot.(*Aggregate)
	if !ok {
		return nil
	}
	for _, child := range root.Children {
		if agg, ok := child.(*Aggregate); ok && agg.Op == OpLinkerObjects {
			return agg
		}
	}
	return nil
}

// functions returns the tree's function-definition aggregates.
func (i *Intermediate) functions() []*Aggregate {
	root, ok := i.treeRoot.(*Aggregate)
	if !ok {
		return nil
	}
	var fns []*Aggregate
	for _, child := range root.Children {
		if agg, ok := child.(*Aggregate); ok && agg.Op == OpFunction {
			fns = append(fns, agg)
		}
	}
	return fns
}

// Merge links another unit targeting the same stage into this one,
// transferring ownership of the unit's nodes. The secondary unit must
// not be used afterwards.
func (i *Intermediate) Merge(unit *Intermediate) {
	if i.stage != unit.stage {
		i.error("stages must match when linking into a single stage", unit.stage.String())
		return
	}
	if i.version != unit.version {
		i.error("versions must match when linking into a single stage", strconv.Itoa(unit.version))
	}
	if i.profile != unit.profile {
		i.error("profiles must match when linking into a single stage", "")
	}
	if i.entryPointName != unit.entryPointName {
		i.error("entry point names must match when linking", unit.entryPointName)
	}

	i.numEntryPoints += unit.numEntryPoints
	i.numPushConstants += unit.numPushConstants
	i.recursive = i.recursive || unit.recursive

	i.confirmStageState(unit)
	i.mergeTrees(unit)
	i.mergeTracker(unit)

	i.callGraph.Merge(unit.callGraph)
	for e := range unit.requestedExtensions {
		i.requestedExtensions[e] = true
	}
	for _, p := range unit.processes.Processes() {
		i.processes.AddProcess(p)
	}
}

// confirmStageState re-claims every set-once stage property with the
// secondary unit's value, reporting contradictions.
func (i *Intermediate) confirmStageState(unit *Intermediate) {
	type confirmation struct {
		name string
		ok   bool
	}
	checks := []confirmation{
		{"invocations", unit.invocations == LayoutNotSet || i.SetInvocations(unit.invocations)},
		{"max_vertices", unit.vertices == LayoutNotSet || i.SetVertices(unit.vertices)},
		{"input primitive", unit.inputPrimitive == GeometryNone || i.SetInputPrimitive(unit.inputPrimitive)},
		{"output primitive", unit.outputPrimitive == GeometryNone || i.SetOutputPrimitive(unit.outputPrimitive)},
		{"vertex spacing", unit.vertexSpacing == SpacingNone || i.SetVertexSpacing(unit.vertexSpacing)},
		{"vertex order", unit.vertexOrder == OrderNone || i.SetVertexOrder(unit.vertexOrder)},
		{"depth layout", unit.depthLayout == DepthNone || i.SetDepth(unit.depthLayout)},
	}
	for dim := 0; dim < 3; dim++ {
		checks = append(checks,
			confirmation{"local_size", unit.localSize[dim] <= 1 || i.SetLocalSize(dim, unit.localSize[dim])},
			confirmation{"local_size id", unit.localSizeSpecID[dim] == LayoutNotSet || i.SetLocalSizeSpecID(dim, unit.localSizeSpecID[dim])},
		)
	}
	for _, c := range checks {
		if !c.ok {
			i.error("contradicting layout declarations across linked units", c.name)
		}
	}

	i.pointMode = i.pointMode || unit.pointMode
	i.originUpperLeft = i.originUpperLeft || unit.originUpperLeft
	i.pixelCenterInteger = i.pixelCenterInteger || unit.pixelCenterInteger
	i.earlyFragmentTests = i.earlyFragmentTests || unit.earlyFragmentTests
	i.postDepthCoverage = i.postDepthCoverage || unit.postDepthCoverage
	i.depthReplacing = i.depthReplacing || unit.depthReplacing
	i.xfbMode = i.xfbMode || unit.xfbMode
	i.multiStream = i.multiStream || unit.multiStream
}

// mergeTrees appends the secondary unit's function bodies and linker
// objects to this unit's tree, checking cross-unit agreement of
// global-scope declarations.
func (i *Intermediate) mergeTrees(unit *Intermediate) {
	for _, fn := range unit.functions() {
		i.AddFunctionBody(fn)
	}

	unitLinker := unit.findLinkerObjects()
	if unitLinker == nil {
		return
	}
	for _, obj := range unitLinker.Children {
		sym, ok := obj.(*Symbol)
		if !ok {
			continue
		}
		if existing := i.lookupLinkerObject(sym.Name); existing != nil {
			i.mergeErrorCheck(existing, sym)
			continue
		}
		i.AddLinkerObject(sym)
	}
}

// lookupLinkerObject finds a linker object by name, or nil.
func (i *Intermediate) lookupLinkerObject(name string) *Symbol {
	linker := i.findLinkerObjects()
	if linker == nil {
		return nil
	}
	for _, obj := range linker.Children {
		if sym, ok := obj.(*Symbol); ok && sym.Name == name {
			return sym
		}
	}
	return nil
}

// mergeErrorCheck verifies that two same-name global declarations from
// different units agree on type, qualification, and array size,
// resolving implicitly sized arrays against an explicit size declared
// in the other unit.
func (i *Intermediate) mergeErrorCheck(sym, unitSym *Symbol) {
	mergeImplicitArraySizes(sym.Type(), unitSym.Type())

	st, ut := *sym.Type(), *unitSym.Type()
	if !st.SameShape(ut) {
		i.sink.Error(unitSym.Loc(), "linked shaders disagree on global type", sym.Name)
		return
	}
	if !st.SameQualification(ut) {
		i.sink.Error(unitSym.Loc(), "linked shaders disagree on global qualification", sym.Name)
	}
}

// mergeImplicitArraySizes resolves an implicitly sized array on either
// side to the explicit size declared on the other.
func mergeImplicitArraySizes(a, b *Type) {
	switch {
	case a.IsImplicitlySizedArray() && b.IsArray() && !b.IsImplicitlySizedArray():
		a.ArraySize = b.ArraySize
	case b.IsImplicitlySizedArray() && a.IsArray() && !a.IsImplicitlySizedArray():
		b.ArraySize = a.ArraySize
	}
}

// mergeTracker unions the secondary unit's used-resource sets into this
// unit's tracker, re-running the collision checks: a location free in
// each unit individually may still collide once merged.
func (i *Intermediate) mergeTracker(unit *Intermediate) {
	for set := 0; set < ioCount; set++ {
		for _, r := range unit.tracker.usedIo[set] {
			if i.tracker.checkLocationRange(set, r) {
				i.error("overlapping use of location with different type across linked units",
					"location "+strconv.Itoa(r.Location.Start))
			}
		}
	}
	for _, r := range unit.tracker.usedAtomics {
		if !i.tracker.AddUsedOffsets(r.Binding.Start, r.Offset.Start, r.Offset.Last-r.Offset.Start+1) {
			i.error("atomic counters sharing the same offset across linked units",
				"binding "+strconv.Itoa(r.Binding.Start))
		}
	}
	for id := range unit.tracker.usedConstIDs {
		if !i.tracker.AddUsedConstantID(id) {
			i.error("specialization-constant id used in multiple linked units", "constant_id "+strconv.Itoa(id))
		}
	}
	for buf := range unit.tracker.xfbBuffers {
		ub := unit.tracker.xfbBuffers[buf]
		if ub.Stride != XfbStrideNotSet && !i.tracker.SetXfbBufferStride(buf, ub.Stride) {
			i.error("contradicting xfb_stride across linked units", "xfb_buffer "+strconv.Itoa(buf))
		}
		pb := &i.tracker.xfbBuffers[buf]
		pb.ContainsDouble = pb.ContainsDouble || ub.ContainsDouble
		for _, r := range ub.Ranges {
			for _, prev := range pb.Ranges {
				if prev.Overlap(r) {
					i.error("overlapping xfb_offset across linked units", "xfb_buffer "+strconv.Itoa(buf))
					break
				}
			}
			pb.Ranges = append(pb.Ranges, r)
			if end := uint32(r.Last + 1); end > pb.ImplicitStride {
				pb.ImplicitStride = end
			}
		}
	}
	for name := range unit.tracker.ioAccessed {
		i.tracker.ioAccessed[name] = true
	}
}

// FinalCheck runs the whole-program validation that needs the complete
// linked view: call-graph cycle and dead-code analysis, entry-point
// presence, and I/O location consistency. keepUncalled retains the
// bodies of never-called functions, for library builds.
func (i *Intermediate) FinalCheck(keepUncalled bool) {
	if i.callGraph.CheckCycles(i.sink) {
		i.recursive = true
	}

	bodies := make(map[string]bool)
	for _, fn := range i.functions() {
		bodies[mangledBase(fn.Name)] = true
	}

	switch {
	case i.numEntryPoints == 0 || !bodies[i.entryPointName]:
		context := i.entryPointName
		if hint := i.closestFunctionName(bodies); hint != "" {
			context += " (did you mean " + hint + "?)"
		}
		i.error("missing entry point", context)
	case i.numEntryPoints > 1:
		i.error("duplicate entry point", i.entryPointName)
	}

	dead := i.callGraph.CheckBodies(i.sink, i.entryPointName, bodies, keepUncalled)
	if len(dead) > 0 {
		i.pruneBodies(dead)
	}

	i.stageCheck()
	i.inOutLocationCheck()
}

// closestFunctionName suggests the defined function nearest the missing
// entry point name, within a small edit distance.
func (i *Intermediate) closestFunctionName(bodies map[string]bool) string {
	if i.entryPointName == "" {
		return ""
	}
	best, bestDist := "", 4
	for name := range bodies {
		if d := levenshtein.ComputeDistance(i.entryPointName, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// pruneBodies drops the function definitions named in dead from the
// tree.
func (i *Intermediate) pruneBodies(dead []string) {
	root, ok := i.treeRoot.(*Aggregate)
	if !ok {
		return
	}
	deadSet := make(map[string]bool, len(dead))
	for _, name := range dead {
		deadSet[name] = true
	}
	kept := root.Children[:0]
	for _, child := range root.Children {
		if fn, ok := child.(*Aggregate); ok && fn.Op == OpFunction && deadSet[mangledBase(fn.Name)] {
			continue
		}
		kept = append(kept, child)
	}
	root.Children = kept
}

// stageCheck validates the stage-specific layout state that becomes
// mandatory once the whole program is visible.
func (i *Intermediate) stageCheck() {
	switch i.stage {
	case StageGeometry:
		if i.inputPrimitive == GeometryNone {
			i.error("at least one shader must specify an input layout", "")
		}
		if i.outputPrimitive == GeometryNone {
			i.error("at least one shader must specify an output layout", "")
		}
		if i.vertices == LayoutNotSet {
			i.error("at least one shader must specify a layout(max_vertices = value)", "")
		}
	case StageTessEvaluation:
		if i.inputPrimitive == GeometryNone {
			i.error("at least one shader must specify an input layout primitive", "")
		}
	default:
	}
}

// inOutLocationCheck ensures every statically-accessed I/O variable has
// a resolvable location: an explicit one, or automatic assignment
// enabled.
func (i *Intermediate) inOutLocationCheck() {
	linker := i.findLinkerObjects()
	if linker == nil {
		return
	}
	for _, obj := range linker.Children {
		sym, ok := obj.(*Symbol)
		if !ok {
			continue
		}
		q := sym.Type().Qualifier
		if q.Storage != StorageIn && q.Storage != StorageOut {
			continue
		}
		if !i.tracker.InIoAccessed(sym.Name) {
			continue
		}
		if !q.HasLocation() && !i.autoMapLocations {
			i.sink.Error(sym.Loc(), "statically accessed io variable without an assigned location", sym.Name)
		}
	}
}
