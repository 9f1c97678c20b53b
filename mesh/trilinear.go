package mesh

import "math"

// CreateValuesFromRaw samples a structured scalar volume `data` (laid
// out as i + j*dims[0] + k*dims[0]*dims[1]) at each of the mesh's
// vertex positions via trilinear interpolation, after rescaling the
// mesh's own bounding box onto the volume's index space. Grounded on
// mesh.py:create_values_from_raw.
func (m *Mesh) CreateValuesFromRaw(name string, data []float32, dims [3]int) {
	valAt := func(i, j, k int) float32 {
		return data[i+j*dims[0]+k*dims[0]*dims[1]]
	}

	transform := func(p Vec3) Vec3 {
		return Vec3{
			X: (p.X - m.Box.Min.X) / (m.Box.Max.X - m.Box.Min.X) * float32(dims[0]-1),
			Y: (p.Y - m.Box.Min.Y) / (m.Box.Max.Y - m.Box.Min.Y) * float32(dims[1]-1),
			Z: (p.Z - m.Box.Min.Z) / (m.Box.Max.Z - m.Box.Min.Z) * float32(dims[2]-1),
		}
	}

	sample := func(p Vec3) float32 {
		xf, yf, zf := int(math.Floor(float64(p.X))), int(math.Floor(float64(p.Y))), int(math.Floor(float64(p.Z)))
		xc, yc, zc := int(math.Ceil(float64(p.X))), int(math.Ceil(float64(p.Y))), int(math.Ceil(float64(p.Z)))

		fff := valAt(xf, yf, zf)
		ffc := valAt(xf, yf, zc)
		fcf := valAt(xf, yc, zf)
		fcc := valAt(xf, yc, zc)
		cff := valAt(xc, yf, zf)
		cfc := valAt(xc, yf, zc)
		ccf := valAt(xc, yc, zf)
		ccc := valAt(xc, yc, zc)

		xcp := p.X - float32(xf)
		ycp := p.Y - float32(yf)
		zcp := p.Z - float32(zf)
		xfp := 1 - xcp
		yfp := 1 - ycp
		zfp := 1 - zcp

		return fff*xfp*yfp*zfp + ffc*xfp*yfp*zcp + fcf*xfp*ycp*zfp + fcc*xfp*ycp*zcp +
			cff*xcp*yfp*zfp + cfc*xcp*yfp*zcp + ccf*xcp*ycp*zfp + ccc*xcp*ycp*zcp
	}

	out := make([]float32, len(m.Positions))
	for i, p := range m.Positions {
		out[i] = sample(transform(p))
	}

	if m.Values == nil {
		m.Values = make(map[string][]float32)
	}
	m.Values[name] = out
	m.RecalculateLimits()
}
