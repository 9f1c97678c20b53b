package blockmesh

import (
	"encoding/binary"
	"math"
	"math/rand/v2"

	"github.com/scigolib/blockmesh/internal/container"
	"github.com/scigolib/blockmesh/mesh"
	"github.com/scigolib/blockmesh/volume"
)

// LoadMesh produces an in-memory Mesh from the configured source,
// dispatching on the tagged Source variant per §9's design note.
func LoadMesh(cfg Config) (*mesh.Mesh, error) {
	var m *mesh.Mesh
	var err error

	switch cfg.Source {
	case SourceRawVolume:
		m, err = loadRawVolume(cfg)
	case SourceContainer:
		m, err = loadContainer(cfg)
	case SourceBinaryGrid:
		return nil, newError(KindUnsupportedInput, "binary grid (legacy UGRID/FUN3D) loading", nil)
	default:
		return nil, newError(KindUnsupportedInput, "unknown mesh source", nil)
	}
	if err != nil {
		return nil, err
	}

	if len(cfg.MirrorPlanes) > 0 {
		m.Mirror(cfg.MirrorPlanes)
	}
	return m, nil
}

// loadRawVolume synthesizes a tetrahedralized mesh from a structured
// grid, optionally decimating it, grounded on
// load_mesh.py:load_mesh_from_raw.
func loadRawVolume(cfg Config) (*mesh.Mesh, error) {
	size := volume.Size(cfg.VolumeSize)

	var connectivity []uint32
	var err error
	if cfg.DecimateFraction > 0 {
		rng := rand.New(rand.NewPCG(cfg.RandSeed1, cfg.RandSeed2))
		connectivity, _, err = volume.BuildDecimated(size, cfg.DecimateFraction, rng)
	} else {
		connectivity, err = volume.Build(size)
	}
	if err != nil {
		return nil, newError(KindMalformedInput, "raw volume tetrahedralization", err)
	}

	rawPositions := volume.Positions(size)
	positions := make([]mesh.Vec3, len(rawPositions)/3)
	for i := range positions {
		positions[i] = mesh.Vec3{X: rawPositions[i*3], Y: rawPositions[i*3+1], Z: rawPositions[i*3+2]}
	}

	values := map[string][]float32{}
	if selectScalars(cfg.Scalars, []string{"Default"})["Default"] {
		// No sample data accompanies a synthesized grid; Default is an
		// all-zero placeholder field, matching the source's behavior
		// when the raw data buffer is absent.
		values["Default"] = make([]float32, len(positions))
	}

	m, err := mesh.New(positions, connectivity, values)
	if err != nil {
		return nil, newError(KindMalformedInput, "raw volume mesh assembly", err)
	}
	return m, nil
}

// loadContainer reads an unstructured mesh back from the pipeline's own
// container format -- the same Zone layout buildZone writes (§4.6) --
// rather than a real third-party scientific container byte format,
// which §1 marks out of scope.
func loadContainer(cfg Config) (*mesh.Mesh, error) {
	root, err := container.Open(cfg.Path)
	if err != nil {
		return nil, newError(KindUnsupportedInput, "opening container input", err)
	}

	base := root.Find("Base")
	if base == nil {
		return nil, newError(KindMalformedInput, "container input missing Base group", nil)
	}

	zoneName := cfg.ZoneName
	if zoneName == "" {
		zoneName = "Zone1"
	}
	zone := base.Find(zoneName)
	if zone == nil {
		return nil, newError(KindMalformedInput, "container input missing "+zoneName, nil)
	}

	coords := zone.Find("GridCoordinates")
	if coords == nil {
		return nil, newError(KindMalformedInput, "zone missing GridCoordinates", nil)
	}
	xg, yg, zg := coords.Find("CoordinateX"), coords.Find("CoordinateY"), coords.Find("CoordinateZ")
	if xg == nil || yg == nil || zg == nil {
		return nil, newError(KindMalformedInput, "zone missing coordinate arrays", nil)
	}
	xs, ys, zs := decodeF32Array(xg.Data), decodeF32Array(yg.Data), decodeF32Array(zg.Data)
	if len(xs) != len(ys) || len(ys) != len(zs) {
		return nil, newError(KindMalformedInput, "zone coordinate arrays have mismatched lengths", nil)
	}
	positions := make([]mesh.Vec3, len(xs))
	for i := range positions {
		positions[i] = mesh.Vec3{X: xs[i], Y: ys[i], Z: zs[i]}
	}

	elem := zone.Find("GridElements")
	if elem == nil {
		return nil, newError(KindMalformedInput, "zone missing GridElements", nil)
	}
	connGroup := elem.Find("ElementConnectivity")
	if connGroup == nil {
		return nil, newError(KindMalformedInput, "zone missing ElementConnectivity", nil)
	}
	oneBased := decodeU32Array(connGroup.Data)
	connectivity := make([]uint32, len(oneBased))
	for i, v := range oneBased {
		if v == 0 {
			return nil, newError(KindMalformedInput, "element connectivity has a zero (non-one-based) index", nil)
		}
		connectivity[i] = v - 1
	}

	values := map[string][]float32{}
	if sol := zone.Find("FlowSolution"); sol != nil {
		names := make([]string, 0, len(sol.Children))
		for _, c := range sol.Children {
			names = append(names, c.Name)
		}
		selected := selectScalars(cfg.Scalars, names)
		for _, c := range sol.Children {
			if selected[c.Name] {
				values[c.Name] = decodeF32Array(c.Data)
			}
		}
	}

	m, err := mesh.New(positions, connectivity, values)
	if err != nil {
		return nil, newError(KindMalformedInput, "container input mesh assembly", err)
	}
	return m, nil
}

// selectScalars applies filter_value_names's four named modes, or an
// explicit-name intersection, to the set of scalar names a source
// offers.
func selectScalars(sel ScalarSelection, available []string) map[string]bool {
	chosen := make(map[string]bool, len(available))
	switch sel.Mode {
	case "all":
		for _, n := range available {
			chosen[n] = true
		}
	case "first":
		if len(available) > 0 {
			chosen[available[0]] = true
		}
	case "none", "pick":
		// "pick" is the source's interactive prompt, explicitly
		// peripheral per §1; treat it as selecting nothing here.
	default:
		want := make(map[string]bool, len(sel.Names))
		for _, n := range sel.Names {
			want[n] = true
		}
		for _, n := range available {
			if want[n] {
				chosen[n] = true
			}
		}
	}
	return chosen
}

func decodeF32Array(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

func decodeU32Array(buf []byte) []uint32 {
	out := make([]uint32, len(buf)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return out
}
