package geom

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
)

func TestWriteSTL_Layout(t *testing.T) {
	m := unitTriangleMesh()

	var buf bytes.Buffer
	if err := WriteSTL(&buf, m, "surfacer test"); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}

	data := buf.Bytes()
	wantLen := 84 + 50*len(m.Triangles)
	if len(data) != wantLen {
		t.Fatalf("output length %d, want %d", len(data), wantLen)
	}
	if !bytes.HasPrefix(data, []byte("surfacer test")) {
		t.Error("header string missing from output")
	}
	if count := binary.LittleEndian.Uint32(data[80:84]); count != 1 {
		t.Errorf("triangle count = %d, want 1", count)
	}

	// Record layout: unit normal, then the three vertices.
	rec := data[84:]
	normal := readVec(rec[0:])
	if normal.Sub(r3.Vector{Z: 1}).Norm() > 1e-6 {
		t.Errorf("face normal = %v, want +Z", normal)
	}
	if v := readVec(rec[12:]); v != (r3.Vector{}) {
		t.Errorf("first vertex = %v, want origin", v)
	}
	if attr := binary.LittleEndian.Uint16(rec[48:]); attr != 0 {
		t.Errorf("attribute byte count = %d, want 0", attr)
	}
}

func TestWriteSTL_LongHeaderTruncated(t *testing.T) {
	var buf bytes.Buffer
	header := strings.Repeat("x", 200)
	if err := WriteSTL(&buf, Mesh{}, header); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	if buf.Len() != 84 {
		t.Errorf("empty mesh output length %d, want 84", buf.Len())
	}
	if count := binary.LittleEndian.Uint32(buf.Bytes()[80:84]); count != 0 {
		t.Errorf("triangle count = %d, want 0", count)
	}
}

func TestWriteSTL_InvalidMesh(t *testing.T) {
	m := unitTriangleMesh()
	m.Triangles[0][2] = 99

	var buf bytes.Buffer
	if err := WriteSTL(&buf, m, ""); err == nil {
		t.Fatal("expected error for out-of-range triangle index")
	}
	if buf.Len() != 0 {
		t.Errorf("invalid mesh still wrote %d bytes", buf.Len())
	}
}

func TestWriteSTL_DegenerateTriangleZeroNormal(t *testing.T) {
	m := Mesh{
		Vertices:  []r3.Vector{{X: 1}, {X: 1}, {X: 1}},
		Triangles: []Triangle{{0, 1, 2}},
	}

	var buf bytes.Buffer
	if err := WriteSTL(&buf, m, ""); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	normal := readVec(buf.Bytes()[84:])
	if normal != (r3.Vector{}) {
		t.Errorf("degenerate triangle normal = %v, want zero", normal)
	}
}

func readVec(b []byte) r3.Vector {
	return r3.Vector{
		X: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	}
}
