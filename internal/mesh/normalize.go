package mesh

// Normalize 把包围盒中心移到原点，并等比缩放使最大尺寸为 1。
// maxDim 为 0（例如只有一个点）时只平移不缩放；空几何体不做处理。
func Normalize(g *Geometry) {
	if g.IsEmpty() {
		return
	}

	center := g.BoundingBox().Center()
	g.Translate(center.Scale(-1))

	maxDim := g.BoundingBox().MaxDim()
	if maxDim > 0 {
		g.Scale(1 / maxDim)
	}
}
