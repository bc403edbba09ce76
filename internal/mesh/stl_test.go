package mesh

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTriangles() []Triangle {
	return []Triangle{
		tri(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0}),
		tri(Vec3{0, 0, 0}, Vec3{0, 0, 2.5}, Vec3{-1.25, 0, 0}),
	}
}

func TestParseBinary(t *testing.T) {
	req := require.New(t)
	data := createBinarySTL("electrode", sampleTriangles())

	g, err := Parse(data)

	req.NoError(err)
	req.Equal("electrode", g.Name)
	req.Equal(2, g.TriangleCount())
	req.Equal(sampleTriangles()[1].V, g.Triangles[1].V)
	req.Equal(sampleTriangles()[0].Normal, g.Triangles[0].Normal)
}

func TestParseBinaryWithSolidHeader(t *testing.T) {
	req := require.New(t)
	// 很多导出器会在二进制头部写入 "solid"
	data := createBinarySTL("solid lattice", sampleTriangles())

	g, err := Parse(data)

	req.NoError(err)
	req.Equal("lattice", g.Name)
	req.Equal(2, g.TriangleCount())
}

func TestParseBinaryEmpty(t *testing.T) {
	g, err := Parse(createBinarySTL("", nil))
	require.NoError(t, err)
	require.True(t, g.IsEmpty())
}

func TestParseBinaryTruncated(t *testing.T) {
	data := createBinarySTL("part", sampleTriangles())

	_, err := Parse(data[:len(data)-10])
	require.ErrorIs(t, err, ErrTruncatedSTL)

	_, err = Parse(data[:40])
	require.ErrorIs(t, err, ErrTruncatedSTL)
}

func TestParseASCII(t *testing.T) {
	req := require.New(t)
	data := createASCIISTL("gyroid part", sampleTriangles())

	g, err := Parse(data)

	req.NoError(err)
	req.Equal("gyroid part", g.Name)
	req.Equal(2, g.TriangleCount())
	req.Equal(sampleTriangles()[1].V, g.Triangles[1].V)
}

func TestParseASCIIMultipleSolidsAndCase(t *testing.T) {
	req := require.New(t)
	doc := "  SOLID a\nFACET NORMAL 0 0 1\nOUTER LOOP\nVERTEX 0 0 0\nVERTEX 1 0 0\nVERTEX 0 1 0\nENDLOOP\nENDFACET\nENDSOLID a\n" +
		"solid b\nfacet normal 0 0 1\nouter loop\nvertex 1e1 0 0\nvertex 0 -2.5E-1 0\nvertex 0 0 3\nendloop\nendfacet\nendsolid b\n"

	g, err := Parse([]byte(doc))

	req.NoError(err)
	req.Equal("a", g.Name)
	req.Equal(2, g.TriangleCount())
	req.Equal(Vec3{10, 0, 0}, g.Triangles[1].V[0])
	req.Equal(Vec3{0, -0.25, 0}, g.Triangles[1].V[1])
}

func TestParseASCIIErrors(t *testing.T) {
	tests := map[string]string{
		"two vertices":  "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\nendsolid x\n",
		"bad number":    "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 zero 0\n",
		"stray vertex":  "solid x\nvertex 0 0 0\nendsolid x\n",
		"four vertices": "solid x\nfacet normal 0 0 1\nvertex 0 0 0\nvertex 0 0 0\nvertex 0 0 0\nvertex 0 0 0\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidSTL)
		})
	}

	_, err := Parse([]byte("solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\n"))
	require.ErrorIs(t, err, ErrTruncatedSTL)
}

func TestParseASCIISkipsUnknownLines(t *testing.T) {
	req := require.New(t)
	doc := "solid colored\n" +
		"color 0.8 0.2 0.2 1\n" +
		"facet normal 0 0 1\n" +
		" outer loop\n" +
		"  vertex 0 0 0\n" +
		"  vertex 1 0 0\n" +
		"  vertex 0 1 0\n" +
		" endloop\n" +
		" color 0.1 0.1 0.1 1\n" +
		"endfacet\n" +
		"endsolid colored\n"

	g, err := Parse([]byte(doc))

	req.NoError(err)
	req.Equal("colored", g.Name)
	req.Equal(1, g.TriangleCount())
	req.Equal(Vec3{1, 0, 0}, g.Triangles[0].V[1])
}

func TestWriteBinaryRoundTrip(t *testing.T) {
	req := require.New(t)
	src := &Geometry{Name: "normalized", Triangles: boxMesh(Vec3{-1, -2, -3}, Vec3{4, 5, 6})}
	Normalize(src)

	var buf bytes.Buffer
	req.NoError(WriteBinary(&buf, src))
	req.Equal(84+50*len(src.Triangles), buf.Len())

	got, err := Parse(buf.Bytes())
	req.NoError(err)
	req.Equal(src.Name, got.Name)
	req.Equal(src.Triangles, got.Triangles)
}
