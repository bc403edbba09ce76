package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	ErrInvalidSTL   = errors.New("invalid STL data")
	ErrTruncatedSTL = errors.New("truncated STL data")
)

const (
	binaryHeaderSize = 80
	binaryFacetSize  = 50
)

// binaryFacet 对应二进制 STL 中 50 字节的一条记录
type binaryFacet struct {
	Normal    [3]float32
	Vertices  [3][3]float32
	Attribute uint16
}

// Parse 解析二进制或 ASCII STL。数据长度与头部面片数吻合时按二进制解析，
// 因此头部以 "solid" 开头的二进制文件也能正确读取。
func Parse(data []byte) (*Geometry, error) {
	if isBinary(data) {
		return parseBinary(data)
	}
	if hasSolidPrefix(data) {
		return parseASCII(data)
	}
	return parseBinary(data)
}

func isBinary(data []byte) bool {
	if len(data) < binaryHeaderSize+4 {
		return false
	}
	count := binary.LittleEndian.Uint32(data[binaryHeaderSize:])
	return uint64(len(data)) == binaryHeaderSize+4+uint64(count)*binaryFacetSize
}

func hasSolidPrefix(data []byte) bool {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	return len(trimmed) >= 5 && strings.EqualFold(string(trimmed[:5]), "solid")
}

func parseBinary(data []byte) (*Geometry, error) {
	if len(data) < binaryHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncatedSTL, len(data), binaryHeaderSize+4)
	}

	r := bytes.NewReader(data)
	header := make([]byte, binaryHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("reading facet count: %w", err)
	}

	if uint64(r.Len()) < uint64(count)*binaryFacetSize {
		return nil, fmt.Errorf("%w: header declares %d facets, payload holds %d",
			ErrTruncatedSTL, count, r.Len()/binaryFacetSize)
	}

	g := &Geometry{
		Name:      headerName(header),
		Triangles: make([]Triangle, count),
	}
	var rec binaryFacet
	for i := range g.Triangles {
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, fmt.Errorf("reading facet %d: %w", i, err)
		}
		t := &g.Triangles[i]
		t.Normal = Vec3{rec.Normal[0], rec.Normal[1], rec.Normal[2]}
		for j, v := range rec.Vertices {
			t.V[j] = Vec3{v[0], v[1], v[2]}
		}
	}

	return g, nil
}

func headerName(header []byte) string {
	name := strings.TrimRight(string(header), "\x00 ")
	if hasSolidPrefix([]byte(name)) {
		name = strings.TrimSpace(name[5:])
	}
	return name
}

// parseASCII 读取 solid/facet/vertex 结构，一个文件中的多个 solid 合并
func parseASCII(data []byte) (*Geometry, error) {
	g := &Geometry{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		current  Triangle
		inFacet  bool
		vertices int
		lineNo   int
	)

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "solid":
			if g.Name == "" && len(fields) > 1 {
				g.Name = strings.Join(fields[1:], " ")
			}
		case "facet":
			if inFacet {
				return nil, fmt.Errorf("%w: line %d: facet inside facet", ErrInvalidSTL, lineNo)
			}
			current = Triangle{}
			inFacet = true
			vertices = 0
			if len(fields) >= 5 && strings.EqualFold(fields[1], "normal") {
				n, err := parseVec(fields[2:5])
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, lineNo, err)
				}
				current.Normal = n
			}
		case "vertex":
			if !inFacet || vertices >= 3 || len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: unexpected vertex", ErrInvalidSTL, lineNo)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, lineNo, err)
			}
			current.V[vertices] = v
			vertices++
		case "endfacet":
			if !inFacet || vertices != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrInvalidSTL, lineNo, vertices)
			}
			g.Triangles = append(g.Triangles, current)
			inFacet = false
		default:
			// outer loop、endloop、endsolid 以及导出器扩展（如 color）都忽略
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning ASCII STL: %w", err)
	}
	if inFacet {
		return nil, fmt.Errorf("%w: unterminated facet", ErrTruncatedSTL)
	}

	return g, nil
}

func parseVec(fields []string) (Vec3, error) {
	var out [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Vec3{}, err
		}
		out[i] = float32(v)
	}
	return Vec3{out[0], out[1], out[2]}, nil
}

// WriteBinary 以二进制 STL 写出 g
func WriteBinary(w io.Writer, g *Geometry) error {
	header := make([]byte, binaryHeaderSize)
	copy(header, g.Name)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(g.Triangles))); err != nil {
		return fmt.Errorf("writing facet count: %w", err)
	}

	bw := bufio.NewWriter(w)
	for i, t := range g.Triangles {
		rec := binaryFacet{Normal: [3]float32{t.Normal.X, t.Normal.Y, t.Normal.Z}}
		for j, v := range t.V {
			rec.Vertices[j] = [3]float32{v.X, v.Y, v.Z}
		}
		if err := binary.Write(bw, binary.LittleEndian, &rec); err != nil {
			return fmt.Errorf("writing facet %d: %w", i, err)
		}
	}
	return bw.Flush()
}
