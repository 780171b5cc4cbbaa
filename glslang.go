// Package glslang is the semantic core of a shading-language front
// end: it builds a validated, typed intermediate representation from
// AST-construction requests and links multiple compilation units into
// one program.
//
// The package does not parse text and does not emit binary output; it
// sits between an external parser and an external code generator:
//
//	unit := glslang.NewUnit(ir.StageFragment, opts)
//	... parser drives unit.Intermediate node construction ...
//	err := glslang.Link(logger, unit)          // finalize one unit
//	err := glslang.Link(logger, vsA, vsB)      // or link several
//
// The macro record/replay machinery used by the preprocessor lives in
// the pp subpackage; diagnostics collection in diag.
package glslang

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/glslang/diag"
	"github.com/gogpu/glslang/ir"
)

// ShiftForSet is one per-descriptor-set binding shift.
type ShiftForSet struct {
	Shift uint `yaml:"shift"`
	Set   uint `yaml:"set"`
}

// Options is the per-unit configuration surface. Every field is
// independently toggleable; each one set is recorded in the unit's
// process log. The zero value disables everything.
type Options struct {
	EntryPoint           string `yaml:"entry-point"`
	AutoMapBindings      bool   `yaml:"auto-map-bindings"`
	AutoMapLocations     bool   `yaml:"auto-map-locations"`
	InvertY              bool   `yaml:"invert-y"`
	FlattenUniformArrays bool   `yaml:"flatten-uniform-arrays"`
	NoStorageFormat      bool   `yaml:"no-storage-format"`
	HlslOffsets          bool   `yaml:"hlsl-offsets"`
	UseStorageBuffer     bool   `yaml:"use-storage-buffer"`
	HlslIoMapping        bool   `yaml:"hlsl-iomap"`

	// TextureSamplerUpgrade rewrites combined texture/samplers into
	// separate texture and sampler objects.
	TextureSamplerUpgrade bool `yaml:"texture-sampler-upgrade"`

	// ShiftBindings maps a resource class name (sampler, texture,
	// image, ubo, ssbo, uav) to a global binding shift.
	ShiftBindings map[string]uint `yaml:"shift-bindings"`

	// ShiftBindingsForSet maps a resource class name to per-set
	// shifts.
	ShiftBindingsForSet map[string][]ShiftForSet `yaml:"shift-bindings-for-set"`

	ResourceSetBindings []string `yaml:"resource-set-bindings"`

	VulkanClient int `yaml:"vulkan-client"`
	OpenGlClient int `yaml:"opengl-client"`
}

// DefaultOptions returns options with a conventional entry point and
// everything else off.
func DefaultOptions() Options {
	return Options{EntryPoint: "main"}
}

// LoadOptions reads YAML-encoded options.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	data, err := io.ReadAll(r)
	if err != nil {
		return opts, fmt.Errorf("reading options: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("decoding options: %w", err)
	}
	return opts, nil
}

// resourceType maps an option key to its resource class.
func resourceType(name string) (ir.ResourceType, bool) {
	switch name {
	case "sampler":
		return ir.ResSampler, true
	case "texture":
		return ir.ResTexture, true
	case "image":
		return ir.ResImage, true
	case "ubo":
		return ir.ResUbo, true
	case "ssbo":
		return ir.ResSsbo, true
	case "uav":
		return ir.ResUav, true
	default:
		return 0, false
	}
}

// Unit couples one compilation unit's intermediate context with its
// diagnostics collector. One Unit per source shader; units are
// independent until linked.
type Unit struct {
	Intermediate *ir.Intermediate
	Diags        *diag.Collector
}

// NewUnit creates a compilation unit for a stage and applies the
// configuration, recording each decision in the process log.
func NewUnit(stage ir.Stage, opts Options) (*Unit, error) {
	diags := &diag.Collector{}
	im := ir.NewIntermediate(stage, diags)

	if opts.EntryPoint != "" {
		im.SetEntryPointName(opts.EntryPoint)
	}
	im.SetAutoMapBindings(opts.AutoMapBindings)
	im.SetAutoMapLocations(opts.AutoMapLocations)
	im.SetInvertY(opts.InvertY)
	im.SetFlattenUniformArrays(opts.FlattenUniformArrays)
	im.SetNoStorageFormat(opts.NoStorageFormat)
	if opts.HlslOffsets {
		im.SetHlslOffsets()
	}
	if opts.UseStorageBuffer {
		im.SetUseStorageBuffer()
	}
	im.SetHlslIoMapping(opts.HlslIoMapping)
	if opts.TextureSamplerUpgrade {
		im.SetTextureSamplerTransformMode(ir.TexSampTransUpgradeTextureRemoveSampler)
	} else {
		im.SetTextureSamplerTransformMode(ir.TexSampTransKeep)
	}

	for name, shift := range opts.ShiftBindings {
		res, ok := resourceType(name)
		if !ok {
			return nil, fmt.Errorf("unknown resource class %q in shift-bindings", name)
		}
		im.SetShiftBinding(res, shift)
	}
	for name, shifts := range opts.ShiftBindingsForSet {
		res, ok := resourceType(name)
		if !ok {
			return nil, fmt.Errorf("unknown resource class %q in shift-bindings-for-set", name)
		}
		for _, s := range shifts {
			im.SetShiftBindingForSet(res, s.Shift, s.Set)
		}
	}
	im.SetResourceSetBinding(opts.ResourceSetBindings)

	if opts.VulkanClient > 0 || opts.OpenGlClient > 0 {
		im.SetSpv(ir.SpvVersion{Vulkan: opts.VulkanClient, OpenGl: opts.OpenGlClient})
	}

	return &Unit{Intermediate: im, Diags: diags}, nil
}

// Err returns the unit's accumulated errors as one error, or nil.
func (u *Unit) Err() error { return u.Diags.Err() }

// LinkOptions configures the link step.
type LinkOptions struct {
	// KeepUncalled retains the bodies of functions never reached from
	// the entry point, for library builds.
	KeepUncalled bool
}

// Link merges the given units of one stage into the primary (first)
// unit and runs whole-program finalization on the result. Secondary
// units transfer ownership of their trees and must not be used
// afterwards. Returns the primary unit's accumulated errors, or nil.
func Link(logger *zap.Logger, primary *Unit, rest ...*Unit) error {
	return LinkWithOptions(logger, LinkOptions{}, primary, rest...)
}

// LinkWithOptions is Link with explicit link options.
func LinkWithOptions(logger *zap.Logger, opts LinkOptions, primary *Unit, rest ...*Unit) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, unit := range rest {
		logger.Debug("merging unit",
			zap.Stringer("stage", unit.Intermediate.Stage()),
			zap.String("source", unit.Intermediate.SourceFile()))
		primary.Intermediate.Merge(unit.Intermediate)

		// Secondary diagnostics ride along so one collector holds the
		// whole program's messages.
		for _, m := range unit.Diags.Messages {
			switch m.Severity {
			case diag.SeverityError:
				primary.Diags.Error(m.Loc, m.Text, m.Context)
			case diag.SeverityWarning:
				primary.Diags.Warn(m.Loc, m.Text, m.Context)
			default:
				primary.Diags.Note(m.Loc, m.Text, m.Context)
			}
		}
	}

	primary.Intermediate.FinalCheck(opts.KeepUncalled)

	for _, p := range primary.Intermediate.Processes() {
		logger.Debug("process", zap.String("entry", p))
	}
	logger.Debug("link finished",
		zap.Int("errors", primary.Diags.NumErrors()),
		zap.Int("warnings", primary.Diags.NumWarnings()),
		zap.Bool("recursive", primary.Intermediate.IsRecursive()))

	return primary.Diags.Err()
}
