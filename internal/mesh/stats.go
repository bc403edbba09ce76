package mesh

import "fmt"

// Stats 用于显示的几何体统计信息
type Stats struct {
	Name        string
	Triangles   int
	Vertices    int
	Box         Box
	MaxDim      float32
	SurfaceArea float64
}

func Measure(g *Geometry) Stats {
	box := g.BoundingBox()
	return Stats{
		Name:        g.Name,
		Triangles:   g.TriangleCount(),
		Vertices:    g.VertexCount(),
		Box:         box,
		MaxDim:      box.MaxDim(),
		SurfaceArea: g.SurfaceArea(),
	}
}

// Lines 把统计信息格式化为多行文本
func (s Stats) Lines() []string {
	size := s.Box.Size()
	c := s.Box.Center()
	return []string{
		fmt.Sprintf("triangles: %d", s.Triangles),
		fmt.Sprintf("bbox min:  (%.4g, %.4g, %.4g)", s.Box.Min.X, s.Box.Min.Y, s.Box.Min.Z),
		fmt.Sprintf("bbox max:  (%.4g, %.4g, %.4g)", s.Box.Max.X, s.Box.Max.Y, s.Box.Max.Z),
		fmt.Sprintf("center:    (%.4g, %.4g, %.4g)", c.X, c.Y, c.Z),
		fmt.Sprintf("size:      %.4g x %.4g x %.4g", size.X, size.Y, size.Z),
		fmt.Sprintf("area:      %.4g", s.SurfaceArea),
	}
}
