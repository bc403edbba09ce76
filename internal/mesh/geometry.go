package mesh

import (
	"github.com/samber/lo"
)

// Triangle 是一个 STL 面片。法向量原样保留，只有顶点参与归一化
type Triangle struct {
	Normal Vec3
	V      [3]Vec3
}

// Geometry 有序的三角形集合，不含拓扑信息
type Geometry struct {
	Name      string
	Triangles []Triangle
}

func (g *Geometry) TriangleCount() int {
	return len(g.Triangles)
}

// VertexCount 顶点数（不合并共享顶点）
func (g *Geometry) VertexCount() int {
	return len(g.Triangles) * 3
}

func (g *Geometry) IsEmpty() bool {
	return len(g.Triangles) == 0
}

// Vertices 按三角形顺序返回所有顶点
func (g *Geometry) Vertices() []Vec3 {
	return lo.FlatMap(g.Triangles, func(t Triangle, _ int) []Vec3 {
		return t.V[:]
	})
}

// Clone 深拷贝
func (g *Geometry) Clone() *Geometry {
	out := &Geometry{Name: g.Name, Triangles: make([]Triangle, len(g.Triangles))}
	copy(out.Triangles, g.Triangles)
	return out
}

// Box 轴对齐包围盒
type Box struct {
	Min, Max Vec3
}

func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size 各轴方向的尺寸
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// MaxDim 最大尺寸
func (b Box) MaxDim() float32 {
	s := b.Size()
	return lo.Max([]float32{s.X, s.Y, s.Z})
}

// BoundingBox 计算所有顶点的包围盒，空几何体返回零值
func (g *Geometry) BoundingBox() Box {
	if g.IsEmpty() {
		return Box{}
	}
	first := g.Triangles[0].V[0]
	box := Box{Min: first, Max: first}
	for _, t := range g.Triangles {
		for _, v := range t.V {
			box.Min = box.Min.min(v)
			box.Max = box.Max.max(v)
		}
	}
	return box
}

func (g *Geometry) Translate(d Vec3) {
	for i := range g.Triangles {
		for j := range g.Triangles[i].V {
			g.Triangles[i].V[j] = g.Triangles[i].V[j].Add(d)
		}
	}
}

func (g *Geometry) Scale(s float32) {
	for i := range g.Triangles {
		for j := range g.Triangles[i].V {
			g.Triangles[i].V[j] = g.Triangles[i].V[j].Scale(s)
		}
	}
}

// SurfaceArea 所有三角形面积之和
func (g *Geometry) SurfaceArea() float64 {
	total := 0.0
	for _, t := range g.Triangles {
		e1 := t.V[1].Sub(t.V[0])
		e2 := t.V[2].Sub(t.V[0])
		total += float64(e1.Cross(e2).Length()) / 2
	}
	return total
}
