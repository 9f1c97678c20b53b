package blockmesh

import (
	"context"

	"github.com/scigolib/blockmesh/artifact"
	"github.com/scigolib/blockmesh/corner"
	"github.com/scigolib/blockmesh/kdtree"
	"github.com/scigolib/blockmesh/leafmesh"
	"github.com/scigolib/blockmesh/mesh"
)

// Result is what Pipeline.Run reports back to its caller -- summary
// counters, mostly useful for logging and the optional CSV exports.
type Result struct {
	OriginalVertexCount int
	OriginalCellCount   int
	NodeCount           int
	LeafCount           int
	TotalVertexCount    int
	TotalCellCount      int
	Leaves              []*mesh.Mesh
}

// Pipeline drives the full sequence described in §2: load, build,
// serialize, sample, extract, write. It holds no state beyond the
// Config it is constructed with.
type Pipeline struct {
	cfg Config
}

// NewPipeline constructs a Pipeline for the given configuration.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes the pipeline end to end, writing the two output
// artifacts (and optional CSV summaries) unless cfg.NoWrite is set.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	cfg := p.cfg

	m, err := LoadMesh(cfg)
	if err != nil {
		return nil, err
	}

	tree, err := kdtree.Build(ctx, m, kdtree.Options{
		MaxDepth: cfg.MaxDepth,
		MaxCells: cfg.MaxCells,
		Workers:  cfg.Workers,
	})
	if err != nil {
		return nil, newError(KindResourceExhaustion, "building kd tree", err)
	}
	serialized := tree.Serialize()

	scalarNames := m.ScalarNames()

	cornerRes, err := corner.Sample(ctx, m, serialized, m.Box, scalarNames, corner.Options{Workers: cfg.Workers})
	if err != nil {
		return nil, newError(KindResourceExhaustion, "sampling corner values", err)
	}

	leaves, err := leafmesh.Extract(ctx, m, serialized, leafmesh.Options{Workers: cfg.Workers})
	if err != nil {
		return nil, newError(KindResourceExhaustion, "extracting leaf meshes", err)
	}

	result := &Result{
		OriginalVertexCount: len(m.Positions),
		OriginalCellCount:   m.CellCount(),
		NodeCount:           tree.NodeCount(),
		LeafCount:           tree.LeafCount,
		Leaves:              leaves,
	}
	for _, leaf := range leaves {
		result.TotalVertexCount += len(leaf.Positions)
		result.TotalCellCount += leaf.CellCount()
	}

	if cfg.NoWrite {
		return result, nil
	}

	in := artifact.PartialInput{
		Serialized:  serialized,
		NodeCount:   tree.NodeCount(),
		LeafCount:   tree.LeafCount,
		Box:         m.Box,
		Corners:     cornerRes,
		Ranges:      cornerRes.Ranges,
		ScalarNames: scalarNames,
	}
	if err := artifact.WritePair(cfg.PartialPath(), cfg.BlockMeshPath(), in, leaves); err != nil {
		return nil, newError(KindResourceExhaustion, "writing output artifacts", err)
	}

	if cfg.ExportCSV {
		stats := artifact.OverviewStats{
			TotalVerts:      result.TotalVertexCount,
			TotalCells:      result.TotalCellCount,
			OriginalVerts:   result.OriginalVertexCount,
			OriginalCells:   result.OriginalCellCount,
			LeafCount:       result.LeafCount,
			TargetLeafCells: cfg.MaxCells,
		}
		if err := artifact.WriteOverviewCSV(cfg.OverviewCSVPath(), stats); err != nil {
			return nil, newError(KindResourceExhaustion, "writing overview csv", err)
		}
		if err := artifact.WriteFilledSlotsCSV(cfg.FilledSlotsCSVPath(), leaves); err != nil {
			return nil, newError(KindResourceExhaustion, "writing filled-slots csv", err)
		}
	}

	return result, nil
}
