package mesh

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// createBinarySTL 按给定三角形生成二进制 STL
func createBinarySTL(header string, tris []Triangle) []byte {
	buf := new(bytes.Buffer)

	h := make([]byte, 80)
	copy(h, header)
	buf.Write(h)

	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, t := range tris {
		binary.Write(buf, binary.LittleEndian, [3]float32{t.Normal.X, t.Normal.Y, t.Normal.Z})
		for _, v := range t.V {
			binary.Write(buf, binary.LittleEndian, [3]float32{v.X, v.Y, v.Z})
		}
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}

	return buf.Bytes()
}

// createASCIISTL 按给定三角形生成 ASCII STL
func createASCIISTL(name string, tris []Triangle) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "solid %s\n", name)
	for _, t := range tris {
		fmt.Fprintf(&sb, "  facet normal %g %g %g\n", t.Normal.X, t.Normal.Y, t.Normal.Z)
		sb.WriteString("    outer loop\n")
		for _, v := range t.V {
			fmt.Fprintf(&sb, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		sb.WriteString("    endloop\n  endfacet\n")
	}
	fmt.Fprintf(&sb, "endsolid %s\n", name)
	return []byte(sb.String())
}

func tri(a, b, c Vec3) Triangle {
	return Triangle{Normal: b.Sub(a).Cross(c.Sub(a)).Normalize(), V: [3]Vec3{a, b, c}}
}

// boxMesh 返回 min 到 max 的轴对齐长方体的 12 个三角形
func boxMesh(lo, hi Vec3) []Triangle {
	p := func(x, y, z int) Vec3 {
		v := lo
		if x == 1 {
			v.X = hi.X
		}
		if y == 1 {
			v.Y = hi.Y
		}
		if z == 1 {
			v.Z = hi.Z
		}
		return v
	}
	quads := [][4]Vec3{
		{p(0, 0, 0), p(1, 0, 0), p(1, 1, 0), p(0, 1, 0)},
		{p(0, 0, 1), p(0, 1, 1), p(1, 1, 1), p(1, 0, 1)},
		{p(0, 0, 0), p(0, 0, 1), p(1, 0, 1), p(1, 0, 0)},
		{p(0, 1, 0), p(1, 1, 0), p(1, 1, 1), p(0, 1, 1)},
		{p(0, 0, 0), p(0, 1, 0), p(0, 1, 1), p(0, 0, 1)},
		{p(1, 0, 0), p(1, 0, 1), p(1, 1, 1), p(1, 1, 0)},
	}
	var out []Triangle
	for _, q := range quads {
		out = append(out, tri(q[0], q[1], q[2]), tri(q[0], q[2], q[3]))
	}
	return out
}
