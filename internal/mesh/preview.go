package mesh

import "strings"

// ViewPosition 预览相机位置，朝向原点
var ViewPosition = Vec3{1.8, 1.2, 1.8}

// depthRamp 由远到近
const depthRamp = ".:-=+*#%@"

// Preview 从 ViewPosition 正交投影顶点和面片重心，生成 width x height 的字符画，
// 每格保留最近的点。终端字符高约为宽的两倍，所以水平方向拉伸一倍。
func Preview(g *Geometry, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	grid := make([][]byte, height)
	depth := make([][]float32, height)
	for r := range grid {
		grid[r] = []byte(strings.Repeat(" ", width))
		depth[r] = make([]float32, width)
	}

	if g == nil || g.IsEmpty() {
		return toLines(grid)
	}

	forward := ViewPosition.Scale(-1).Normalize()
	right := forward.Cross(Vec3{0, 1, 0}).Normalize()
	up := right.Cross(forward)

	type sample struct{ x, y, z float32 }
	samples := make([]sample, 0, len(g.Triangles)*4)
	var xmax, ymax, zmin, zmax float32
	first := true
	add := func(p Vec3) {
		s := sample{p.Dot(right), p.Dot(up), -p.Dot(forward)}
		samples = append(samples, s)
		xmax, ymax = max(xmax, abs32(s.x)), max(ymax, abs32(s.y))
		if first {
			zmin, zmax, first = s.z, s.z, false
		}
		zmin, zmax = min(zmin, s.z), max(zmax, s.z)
	}
	for _, t := range g.Triangles {
		for _, v := range t.V {
			add(v)
		}
		add(t.V[0].Add(t.V[1]).Add(t.V[2]).Scale(1.0 / 3))
	}

	halfW := float32(width-1) / 2
	halfH := float32(height-1) / 2
	// 每单位长度对应的行数，列数是它的两倍
	var k float32
	switch {
	case xmax > 0 && ymax > 0:
		k = min(halfW/(2*xmax), halfH/ymax)
	case xmax > 0:
		k = halfW / (2 * xmax)
	case ymax > 0:
		k = halfH / ymax
	}

	for _, s := range samples {
		col := int(halfW + s.x*2*k + 0.5)
		row := int(halfH - s.y*k + 0.5)
		if col < 0 || col >= width || row < 0 || row >= height {
			continue
		}
		if grid[row][col] != ' ' && depth[row][col] >= s.z {
			continue
		}
		depth[row][col] = s.z
		grid[row][col] = shade(s.z, zmin, zmax)
	}

	return toLines(grid)
}

func shade(z, zmin, zmax float32) byte {
	if zmax <= zmin {
		return depthRamp[len(depthRamp)-1]
	}
	i := int((z - zmin) / (zmax - zmin) * float32(len(depthRamp)-1))
	return depthRamp[i]
}

func toLines(grid [][]byte) []string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = string(row)
	}
	return lines
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
