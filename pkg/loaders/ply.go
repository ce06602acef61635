package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/log"
)

var logger = log.New("loaders")

// ErrUnsupportedPLYFormat is returned for PLY files this reader cannot decode
var ErrUnsupportedPLYFormat = errors.New("loaders: unsupported PLY format")

// maxPLYPrealloc bounds slice preallocation from header counts; larger meshes grow while reading
const maxPLYPrealloc = 1 << 20

// PLYHeader is the parsed header of a PLY file
type PLYHeader struct {
	Format   string // "ascii", "binary_little_endian" or "binary_big_endian"
	Version  string
	Elements []PLYElement
}

// PLYElement is one element block, such as "vertex" or "face"
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty is a scalar or list property of an element
type PLYProperty struct {
	Name     string
	Type     string // scalar type, or the item type of a list
	IsList   bool
	ListType string // type of the list count
}

// LoadPLY reads a PLY file into a triangle mesh
func LoadPLY(filename string) (*geometry.TriangleMesh, error) {
	start := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	logger.Infof("loaded %s: %d vertices, %d triangles in %v",
		filename, len(mesh.Positions), len(mesh.Indices), time.Since(start))
	return mesh, nil
}

// ReadPLY decodes an ASCII or binary PLY stream. Polygons are fan-triangulated.
// Vertex normals and texture coordinates are kept when the file has them.
func ReadPLY(r io.Reader) (*geometry.TriangleMesh, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, err
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &asciiValueReader{r: br}
	case "binary_little_endian":
		values = &binaryValueReader{r: br, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValueReader{r: br, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedPLYFormat, header.Format)
	}

	mesh := &geometry.TriangleMesh{}
	for _, el := range header.Elements {
		var err error
		switch el.Name {
		case "vertex":
			err = readPLYVertices(values, el, mesh)
		case "face":
			err = readPLYFaces(values, el, mesh)
		default:
			err = skipPLYElement(values, el)
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s element: %w", el.Name, err)
		}
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// parsePLYHeader reads up to and including the end_header line
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	first := true
	for {
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, fmt.Errorf("failed to read PLY header: %w", err)
		}
		line = strings.TrimSpace(line)

		if first {
			if line != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrUnsupportedPLYFormat)
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}
		if err == io.EOF {
			return nil, fmt.Errorf("failed to read PLY header: %w", io.ErrUnexpectedEOF)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line %q", line)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line %q", line)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property %q before any element", line)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			el := &header.Elements[len(header.Elements)-1]
			el.Properties = append(el.Properties, prop)
		default:
			return nil, fmt.Errorf("unknown header line %q", line)
		}
	}
	return header, nil
}

// parsePLYProperty parses the words after "property"
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 1 && parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("invalid list property definition %v", parts)
		}
		if plyTypeSize(parts[1]) == 0 || plyTypeSize(parts[2]) == 0 {
			return PLYProperty{}, fmt.Errorf("%w: list types %s %s", ErrUnsupportedPLYFormat, parts[1], parts[2])
		}
		return PLYProperty{IsList: true, ListType: parts[1], Type: parts[2], Name: parts[3]}, nil
	}
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("invalid property definition %v", parts)
	}
	if plyTypeSize(parts[0]) == 0 {
		return PLYProperty{}, fmt.Errorf("%w: property type %s", ErrUnsupportedPLYFormat, parts[0])
	}
	return PLYProperty{Type: parts[0], Name: parts[1]}, nil
}

// plyTypeSize returns the size in bytes of a PLY scalar type, or 0 if unknown
func plyTypeSize(t string) int {
	switch t {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

func readPLYVertices(values plyValueReader, el PLYElement, mesh *geometry.TriangleMesh) error {
	const (
		slotX = iota
		slotY
		slotZ
		slotNX
		slotNY
		slotNZ
		slotU
		slotV
		slotCount
	)
	slots := make([]int, len(el.Properties))
	var seen [slotCount]bool
	for i, p := range el.Properties {
		slots[i] = -1
		if p.IsList {
			continue
		}
		switch p.Name {
		case "x":
			slots[i] = slotX
		case "y":
			slots[i] = slotY
		case "z":
			slots[i] = slotZ
		case "nx":
			slots[i] = slotNX
		case "ny":
			slots[i] = slotNY
		case "nz":
			slots[i] = slotNZ
		case "u", "s", "texture_u":
			slots[i] = slotU
		case "v", "t", "texture_v":
			slots[i] = slotV
		}
		if slots[i] >= 0 {
			seen[slots[i]] = true
		}
	}
	if !seen[slotX] || !seen[slotY] || !seen[slotZ] {
		return fmt.Errorf("vertex element lacks x, y or z")
	}
	hasNormals := seen[slotNX] && seen[slotNY] && seen[slotNZ]
	hasUVs := seen[slotU] && seen[slotV]

	capacity := min(el.Count, maxPLYPrealloc)
	mesh.Positions = make([]core.Vec3, 0, capacity)
	if hasNormals {
		mesh.Normals = make([]core.Vec3, 0, capacity)
	}
	if hasUVs {
		mesh.UVs = make([]core.Vec2, 0, capacity)
	}

	var v [slotCount]float64
	for i := 0; i < el.Count; i++ {
		for j, p := range el.Properties {
			if p.IsList {
				if err := skipPLYList(values, p); err != nil {
					return err
				}
				continue
			}
			x, err := values.Read(p.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", i, err)
			}
			if slots[j] >= 0 {
				v[slots[j]] = x
			}
		}
		mesh.Positions = append(mesh.Positions, core.NewVec3(v[slotX], v[slotY], v[slotZ]))
		if hasNormals {
			mesh.Normals = append(mesh.Normals, core.NewVec3(v[slotNX], v[slotNY], v[slotNZ]).Normalize())
		}
		if hasUVs {
			mesh.UVs = append(mesh.UVs, core.NewVec2(v[slotU], v[slotV]))
		}
	}
	return nil
}

func readPLYFaces(values plyValueReader, el PLYElement, mesh *geometry.TriangleMesh) error {
	mesh.Indices = make([][3]int, 0, min(el.Count, maxPLYPrealloc))
	indices := make([]int, 0, 8)
	for i := 0; i < el.Count; i++ {
		for _, p := range el.Properties {
			if !p.IsList || (p.Name != "vertex_indices" && p.Name != "vertex_index") {
				if err := skipPLYProperty(values, p); err != nil {
					return err
				}
				continue
			}

			n, err := values.Read(p.ListType)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			indices = indices[:0]
			for k := 0; k < int(n); k++ {
				idx, err := values.Read(p.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", i, err)
				}
				indices = append(indices, int(idx))
			}
			// fan around the first vertex
			for k := 1; k+1 < len(indices); k++ {
				mesh.Indices = append(mesh.Indices, [3]int{indices[0], indices[k], indices[k+1]})
			}
		}
	}
	return nil
}

func skipPLYElement(values plyValueReader, el PLYElement) error {
	for i := 0; i < el.Count; i++ {
		for _, p := range el.Properties {
			if err := skipPLYProperty(values, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipPLYProperty(values plyValueReader, p PLYProperty) error {
	if p.IsList {
		return skipPLYList(values, p)
	}
	_, err := values.Read(p.Type)
	return err
}

func skipPLYList(values plyValueReader, p PLYProperty) error {
	n, err := values.Read(p.ListType)
	if err != nil {
		return err
	}
	for k := 0; k < int(n); k++ {
		if _, err := values.Read(p.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyValueReader decodes one scalar of a PLY type as float64
type plyValueReader interface {
	Read(plyType string) (float64, error)
}

type asciiValueReader struct {
	r *bufio.Reader
}

// Read parses the next whitespace separated token
func (a *asciiValueReader) Read(_ string) (float64, error) {
	var sb strings.Builder
	for {
		c, err := a.r.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				break
			}
			if err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if sb.Len() > 0 {
				break
			}
			continue
		}
		sb.WriteByte(c)
	}
	v, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", sb.String())
	}
	return v, nil
}

type binaryValueReader struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

// Read decodes one binary scalar in the file's byte order
func (b *binaryValueReader) Read(plyType string) (float64, error) {
	size := plyTypeSize(plyType)
	if size == 0 {
		return 0, fmt.Errorf("%w: type %s", ErrUnsupportedPLYFormat, plyType)
	}
	buf := b.buf[:size]
	if _, err := io.ReadFull(b.r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	switch plyType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(buf))), nil
	default:
		return math.Float64frombits(b.order.Uint64(buf)), nil
	}
}
