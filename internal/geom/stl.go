package geom

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
)

// stlHeaderSize is the fixed byte length of a binary STL header.
const stlHeaderSize = 80

// WriteSTL writes the mesh to w in binary STL format, little-endian, one
// 50-byte record per triangle. The header is padded or truncated to the
// 80-byte STL header field. Face normals are computed from the triangle
// winding; degenerate triangles get a zero normal, which STL consumers
// treat as "derive it yourself".
func WriteSTL(w io.Writer, m Mesh, header string) error {
	if !m.Valid() {
		return fmt.Errorf("mesh has out-of-range triangle indices")
	}

	var head [stlHeaderSize]byte
	copy(head[:], header)
	if _, err := w.Write(head[:]); err != nil {
		return fmt.Errorf("write stl header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Triangles))); err != nil {
		return fmt.Errorf("write stl triangle count: %w", err)
	}

	// 12 floats (normal + 3 vertices) + attribute byte count.
	rec := make([]byte, 4*12+2)
	for _, t := range m.Triangles {
		n := m.Normal(t)
		if l := n.Norm(); l > 0 {
			n = n.Mul(1 / l)
		}
		putVec(rec[0:], n)
		putVec(rec[12:], m.Vertices[t[0]])
		putVec(rec[24:], m.Vertices[t[1]])
		putVec(rec[36:], m.Vertices[t[2]])
		rec[48], rec[49] = 0, 0
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("write stl triangle: %w", err)
		}
	}
	return nil
}

func putVec(b []byte, v r3.Vector) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
