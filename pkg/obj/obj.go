// Package obj reads Wavefront OBJ meshes into model container vertices.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// OBJ parse errors.
var (
	ErrFieldCount   = errors.New("wrong number of fields")
	ErrNotTriangle  = errors.New("face is not a triangle")
	ErrBadIndex     = errors.New("face index out of range")
	ErrTooManyVerts = errors.New("too many unique vertices")
)

// ParseError reports a problem on one line of the input.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("obj: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse reads positions (v), texture coordinates (vt), normals (vn) and
// triangular faces (f) from r. Texture V is flipped to 1-v. Identical
// vertices are merged, so the returned index list refers into a
// deduplicated vertex list in first-use order. Other statements are ignored.
func Parse(r io.Reader) ([]rmdl.Vertex, []uint32, error) {
	var (
		positions [][3]float32
		texCoords [][2]float32
		normals   [][3]float32

		vertices []rmdl.Vertex
		indices  []uint32
		seen     = make(map[rmdl.Vertex]uint32)
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		args := fields[1:]
		fail := func(err error) error { return &ParseError{Line: line, Err: err} }

		switch fields[0] {
		case "v":
			if len(args) != 3 && len(args) != 4 {
				return nil, nil, fail(ErrFieldCount)
			}
			p, err := parseFloats(args[:3])
			if err != nil {
				return nil, nil, fail(err)
			}
			positions = append(positions, [3]float32{p[0], p[1], p[2]})

		case "vt":
			if len(args) != 2 && len(args) != 3 {
				return nil, nil, fail(ErrFieldCount)
			}
			uv, err := parseFloats(args[:2])
			if err != nil {
				return nil, nil, fail(err)
			}
			texCoords = append(texCoords, [2]float32{uv[0], 1 - uv[1]})

		case "vn":
			if len(args) != 3 {
				return nil, nil, fail(ErrFieldCount)
			}
			n, err := parseFloats(args)
			if err != nil {
				return nil, nil, fail(err)
			}
			normals = append(normals, [3]float32{n[0], n[1], n[2]})

		case "f":
			if len(args) != 3 {
				return nil, nil, fail(ErrNotTriangle)
			}
			for _, corner := range args {
				v, err := resolveCorner(corner, positions, texCoords, normals)
				if err != nil {
					return nil, nil, fail(err)
				}
				idx, ok := seen[v]
				if !ok {
					if uint64(len(vertices)) >= 1<<32-1 {
						return nil, nil, fail(ErrTooManyVerts)
					}
					idx = uint32(len(vertices))
					vertices = append(vertices, v)
					seen[v] = idx
				}
				indices = append(indices, idx)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading obj: %w", err)
	}
	return vertices, indices, nil
}

// ParseFile reads an OBJ file from disk.
func ParseFile(path string) ([]rmdl.Vertex, []uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Parse(f)
}

// ParseMesh reads an OBJ file into a mesh with identity transform and no
// material.
func ParseMesh(path string) (rmdl.Mesh, error) {
	mesh := rmdl.NewMesh()
	var err error
	mesh.Vertices, mesh.Indices, err = ParseFile(path)
	return mesh, err
}

func parseFloats(fields []string) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, s := range fields {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

// resolveCorner builds the vertex for one "p", "p/t", "p//n" or "p/t/n"
// face corner. Missing texture coordinates and normals are zero.
func resolveCorner(corner string, positions [][3]float32, texCoords [][2]float32, normals [][3]float32) (rmdl.Vertex, error) {
	var v rmdl.Vertex
	parts := strings.Split(corner, "/")
	if len(parts) > 3 {
		return v, fmt.Errorf("%w: %q", ErrFieldCount, corner)
	}

	pi, err := resolveIndex(parts[0], len(positions))
	if err != nil {
		return v, err
	}
	v.Position = positions[pi]

	if len(parts) > 1 && parts[1] != "" {
		ti, err := resolveIndex(parts[1], len(texCoords))
		if err != nil {
			return v, err
		}
		v.TexCoord = texCoords[ti]
	}
	if len(parts) > 2 && parts[2] != "" {
		ni, err := resolveIndex(parts[2], len(normals))
		if err != nil {
			return v, err
		}
		v.Normal = normals[ni]
	}
	return v, nil
}

// resolveIndex converts a 1-based (or negative, relative to the end) OBJ
// index to a 0-based one.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("%w: %d of %d", ErrBadIndex, i, n)
}
