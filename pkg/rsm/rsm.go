// Package rsm reads version 1.x RSM models, the node-tree mesh format of
// older level editors, and converts them into model containers.
package rsm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/riomodel/pkg/encoding"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// RSM format errors.
var (
	ErrInvalidMagic       = errors.New("invalid RSM magic: expected 'GRSM'")
	ErrUnsupportedVersion = errors.New("unsupported RSM version")
	ErrTruncated          = errors.New("truncated RSM data")
	ErrCount              = errors.New("RSM element count out of range")
)

const (
	magic      = "GRSM"
	nameLength = 40

	// Record sizes used to bound counts before allocating.
	vertexSize   = 12
	texCoordSize = 8
	faceSize     = 20
	posKeySize   = 16
	rotKeySize   = 20
	scaleKeySize = 16
)

// DefaultEncoding is the text encoding of names in files from the
// original tools.
const DefaultEncoding = "euc-kr"

// Version is the file version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is major.minor or later.
func (v Version) AtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// Shading is the lighting mode of a model.
type Shading int32

const (
	ShadingNone   Shading = 0
	ShadingFlat   Shading = 1
	ShadingSmooth Shading = 2
)

// String returns a human-readable shading name.
func (s Shading) String() string {
	switch s {
	case ShadingNone:
		return "None"
	case ShadingFlat:
		return "Flat"
	case ShadingSmooth:
		return "Smooth"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}

// TexCoord is a texture coordinate with its vertex color.
type TexCoord struct {
	Color [4]uint8 // white before 1.2
	U, V  float32
}

// Face is a triangle of a node.
type Face struct {
	VertexIDs   [3]uint16
	TexCoordIDs [3]uint16
	TextureID   uint16 // index into Node.TextureIDs
	TwoSided    bool
	SmoothGroup int32
}

// RotKey is a rotation keyframe. The first one replaces the node's
// axis-angle rotation.
type RotKey struct {
	Frame int32
	Quat  [4]float32 // X, Y, Z, W
}

// Node is one element of the model tree.
type Node struct {
	Name       string
	Parent     string
	TextureIDs []int32 // indices into Model.Textures

	// Matrix (3x3, column-major) and Offset place the vertices inside the
	// node; Position, the rotation and Scale place the node in its parent.
	Matrix   [9]float32
	Offset   [3]float32
	Position [3]float32
	RotAngle float32
	RotAxis  [3]float32
	Scale    [3]float32

	Vertices  [][3]float32
	TexCoords []TexCoord
	Faces     []Face
	RotKeys   []RotKey
}

// Model is a parsed RSM file.
type Model struct {
	Version    Version
	AnimLength int32 // milliseconds
	Shading    Shading
	Alpha      float32 // 0-1, 1 before 1.4
	Textures   []string
	Root       string
	Nodes      []Node
}

// Parse decodes an RSM file. Names are converted from textEncoding to
// UTF-8; an empty encoding means DefaultEncoding.
func Parse(data []byte, textEncoding string) (*Model, error) {
	if textEncoding == "" {
		textEncoding = DefaultEncoding
	}
	if len(data) < len(magic)+2 {
		return nil, ErrTruncated
	}
	if !bytes.Equal(data[:len(magic)], []byte(magic)) {
		return nil, ErrInvalidMagic
	}

	p := &parser{
		r:   rmdl.NewReader(data, binary.LittleEndian, len(magic)),
		enc: textEncoding,
	}
	m := &Model{Version: Version{Major: p.u8(), Minor: p.u8()}}
	if m.Version.Major != 1 || m.Version.Minor < 1 || m.Version.Minor > 5 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, m.Version)
	}
	p.version = m.Version

	m.AnimLength = p.r.I32()
	m.Shading = Shading(p.r.I32())
	m.Alpha = 1
	if m.Version.AtLeast(1, 4) {
		m.Alpha = float32(p.u8()) / 255
	}
	p.r.Skip(16)

	n := p.count(nameLength)
	for i := 0; i < n; i++ {
		m.Textures = append(m.Textures, p.name())
	}
	m.Root = p.name()

	n = p.count(0)
	for i := 0; i < n && p.err == nil; i++ {
		m.Nodes = append(m.Nodes, p.node())
	}
	// Trailing volume boxes are collision data and not read.

	if err := p.failure(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseFile reads and decodes an RSM file.
func ParseFile(path, textEncoding string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RSM file: %w", err)
	}
	m, err := Parse(data, textEncoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

type parser struct {
	r       *rmdl.Reader
	enc     string
	version Version
	err     error
}

func (p *parser) failure() error {
	if p.err != nil {
		return p.err
	}
	if errors.Is(p.r.Err(), rmdl.ErrTruncated) {
		return fmt.Errorf("%w at 0x%x", ErrTruncated, p.r.Pos())
	}
	return p.r.Err()
}

func (p *parser) u8() uint8 {
	b := p.r.Raw(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// count reads an element count and checks that count records of size
// bytes still fit in the data. A zero size only rejects negative counts.
// Counts that overrun the data are also truncation errors.
func (p *parser) count(size int) int {
	n := p.r.I32()
	if p.err != nil || p.r.Err() != nil {
		return 0
	}
	switch {
	case n < 0:
		p.err = fmt.Errorf("%w: %d at 0x%x", ErrCount, n, p.r.Pos()-4)
		return 0
	case size > 0 && int64(n)*int64(size) > int64(p.r.Len()):
		p.err = fmt.Errorf("%w: %d at 0x%x: %w", ErrCount, n, p.r.Pos()-4, ErrTruncated)
		return 0
	}
	return int(n)
}

// name reads a fixed-size NUL-terminated name.
func (p *parser) name() string {
	raw := p.r.Raw(nameLength)
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	s, err := encoding.ToUTF8(raw, p.enc)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("name at 0x%x: %w", p.r.Pos()-nameLength, err)
	}
	return string(s)
}

func (p *parser) vec3() [3]float32 {
	var v [3]float32
	p.r.F32s(v[:])
	return v
}

func (p *parser) node() Node {
	var n Node
	n.Name = p.name()
	n.Parent = p.name()

	count := p.count(4)
	for i := 0; i < count; i++ {
		n.TextureIDs = append(n.TextureIDs, p.r.I32())
	}

	p.r.F32s(n.Matrix[:])
	n.Offset = p.vec3()
	n.Position = p.vec3()
	n.RotAngle = p.r.F32()
	n.RotAxis = p.vec3()
	n.Scale = p.vec3()

	count = p.count(vertexSize)
	for i := 0; i < count; i++ {
		n.Vertices = append(n.Vertices, p.vec3())
	}

	tcSize := texCoordSize
	if p.version.AtLeast(1, 2) {
		tcSize += 4
	}
	count = p.count(tcSize)
	for i := 0; i < count; i++ {
		tc := TexCoord{Color: [4]uint8{255, 255, 255, 255}}
		if p.version.AtLeast(1, 2) {
			copy(tc.Color[:], p.r.Raw(4))
		}
		tc.U = p.r.F32()
		tc.V = p.r.F32()
		n.TexCoords = append(n.TexCoords, tc)
	}

	fSize := faceSize
	if p.version.AtLeast(1, 2) {
		fSize += 4
	}
	count = p.count(fSize)
	for i := 0; i < count; i++ {
		var f Face
		for k := range f.VertexIDs {
			f.VertexIDs[k] = p.r.U16()
		}
		for k := range f.TexCoordIDs {
			f.TexCoordIDs[k] = p.r.U16()
		}
		f.TextureID = p.r.U16()
		p.r.Skip(2)
		f.TwoSided = p.r.I32() != 0
		if p.version.AtLeast(1, 2) {
			f.SmoothGroup = p.r.I32()
		}
		n.Faces = append(n.Faces, f)
	}

	if !p.version.AtLeast(1, 5) {
		p.r.Skip(p.count(posKeySize) * posKeySize)
	}

	count = p.count(rotKeySize)
	for i := 0; i < count; i++ {
		var k RotKey
		k.Frame = p.r.I32()
		p.r.F32s(k.Quat[:])
		n.RotKeys = append(n.RotKeys, k)
	}

	if p.version.AtLeast(1, 5) {
		p.r.Skip(p.count(scaleKeySize) * scaleKeySize)
	}
	return n
}

// VertexCount returns the number of vertices across all nodes.
func (m *Model) VertexCount() int {
	total := 0
	for i := range m.Nodes {
		total += len(m.Nodes[i].Vertices)
	}
	return total
}

// FaceCount returns the number of faces across all nodes.
func (m *Model) FaceCount() int {
	total := 0
	for i := range m.Nodes {
		total += len(m.Nodes[i].Faces)
	}
	return total
}

// Node returns the node with the given name, or nil.
func (m *Model) Node(name string) *Node {
	for i := range m.Nodes {
		if m.Nodes[i].Name == name {
			return &m.Nodes[i]
		}
	}
	return nil
}

// Children returns the nodes whose parent is name, in file order.
func (m *Model) Children(name string) []*Node {
	var children []*Node
	for i := range m.Nodes {
		if n := &m.Nodes[i]; n.Parent == name && n.Name != name {
			children = append(children, n)
		}
	}
	return children
}
