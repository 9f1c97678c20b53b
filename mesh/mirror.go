package mesh

// MirrorPlane is an optional reflection plane along one axis. Each
// entry names its own axis; an axis with no entry is not mirrored.
type MirrorPlane struct {
	Axis  int
	Value float32
}

// Mirror duplicates the mesh 2^len(planes) times and reflects each copy
// about the supplied planes, exactly reproducing mesh.py's mirror():
// each plane doubles the mesh, and within each doubling only the
// "upper" half of the duplicates (selected by the low bit of the
// duplicate index corresponding to that plane, in application order)
// gets reflected.
func (m *Mesh) Mirror(planes []MirrorPlane) {
	if len(planes) == 0 {
		return
	}

	dupeFactor := 1 << uint(len(planes))

	origConnLen := len(m.Connectivity)
	origPosLen := len(m.Positions)

	newConn := make([]uint32, origConnLen*dupeFactor)
	for i := 0; i < dupeFactor; i++ {
		copy(newConn[i*origConnLen:(i+1)*origConnLen], m.Connectivity)
	}

	newPos := make([]Vec3, origPosLen*dupeFactor)
	for i := 0; i < dupeFactor; i++ {
		copy(newPos[i*origPosLen:(i+1)*origPosLen], m.Positions)
	}

	newValues := make(map[string][]float32, len(m.Values))
	for name, buf := range m.Values {
		dup := make([]float32, len(buf)*dupeFactor)
		for i := 0; i < dupeFactor; i++ {
			copy(dup[i*len(buf):(i+1)*len(buf)], buf)
		}
		newValues[name] = dup
	}

	for i := 1; i < dupeFactor; i++ {
		offset := uint32(origPosLen * i)
		for j := i * origConnLen; j < (i+1)*origConnLen; j++ {
			newConn[j] += offset
		}
	}

	for planeIdx, plane := range planes {
		for i := 1; i < dupeFactor; i++ {
			if i&(1<<uint(planeIdx)) == 0 {
				continue
			}
			for j := i * origPosLen; j < (i+1)*origPosLen; j++ {
				v := newPos[j]
				switch plane.Axis {
				case 0:
					v.X = 2*plane.Value - v.X
				case 1:
					v.Y = 2*plane.Value - v.Y
				default:
					v.Z = 2*plane.Value - v.Z
				}
				newPos[j] = v
			}
		}
	}

	m.Connectivity = newConn
	m.Positions = newPos
	m.Values = newValues
	m.RecalculateBox()
	m.RecalculateLimits()
}
