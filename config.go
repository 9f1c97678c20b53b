package blockmesh

import "github.com/scigolib/blockmesh/mesh"

// Source tags the three ways a Mesh can be produced, per the tagged-
// variant loader design note. Only RawVolume is fully implemented
// in-repo; Container reads back the pipeline's own artifact family.
// BinaryGrid (the legacy UGRID/FUN3D style reader) is an external
// collaborator's concern and is rejected with KindUnsupportedInput --
// see loader.go.
type Source int

const (
	SourceContainer Source = iota
	SourceRawVolume
	SourceBinaryGrid
)

// ScalarSelection is the scalar-field filtering directive a caller
// supplies, mirroring filter_value_names's four modes plus an explicit
// name list.
type ScalarSelection struct {
	Mode  string // "all", "first", "none", "pick", or "" for explicit Names
	Names []string
}

// Config is the pipeline's injected configuration -- no package-level
// state, matching §5's "no global state beyond command-line
// configuration, which is injected".
type Config struct {
	Source Source
	Path   string

	// Container-source fields.
	ZoneName string

	// RawVolume-source fields.
	VolumeSize       volumeSize
	DecimateFraction float64
	RandSeed1        uint64
	RandSeed2        uint64

	Scalars ScalarSelection

	MirrorPlanes []mesh.MirrorPlane

	MaxDepth int
	MaxCells int

	Workers int

	Verbose    bool
	NoWrite    bool
	ExportCSV  bool
	OutputBase string // output prefix; partial/block-mesh/csv paths are derived from it
}

type volumeSize = [3]uint32

// PartialPath returns the output prefix's partial-artifact path.
func (c Config) PartialPath() string { return c.OutputBase + ".partial.bmc" }

// BlockMeshPath returns the output prefix's block-mesh-artifact path.
func (c Config) BlockMeshPath() string { return c.OutputBase + ".blocks.bmc" }

// OverviewCSVPath returns the output prefix's overview.csv path.
func (c Config) OverviewCSVPath() string { return c.OutputBase + ".overview.csv" }

// FilledSlotsCSVPath returns the output prefix's filled_slots.csv path.
func (c Config) FilledSlotsCSVPath() string { return c.OutputBase + ".filled_slots.csv" }
