// Package rmdl reads and writes rio model containers (.rmdl).
//
// A container stores meshes with their vertex and index buffers, materials
// with their render state, and texture references. Every offset inside the
// file is self-relative: the stored value is the distance from the offset
// field itself to its target.
package rmdl

import (
	"encoding/binary"
	"fmt"
)

// Magic identifies a model container.
const Magic = "riomodel"

// Supported format versions.
const (
	VersionCurrent uint32 = 0x01000000
	VersionMin     uint32 = 0x01000000
)

// Header field positions.
const (
	headerVersionPos = 0x08
	headerSizePos    = 0x0C
	headerMeshDirPos = 0x10
	headerMatDirPos  = 0x18
)

// Header holds the fixed fields at the start of a container.
type Header struct {
	Version       uint32
	FileSize      uint32
	MeshDir       int // absolute position
	MeshCount     uint32
	MaterialDir   int // absolute position
	MaterialCount uint32
}

// ValidateModel checks the structural invariants the encoder relies on:
// every index addresses a vertex of its own mesh, every material index is
// NoMaterial or in range, and every name is storable.
func ValidateModel(m *Model) error {
	for i := range m.Meshes {
		mesh := &m.Meshes[i]
		n := uint64(len(mesh.Vertices))
		for _, idx := range mesh.Indices {
			if uint64(idx) >= n {
				return &InvalidModelError{Mesh: i, Material: -1, Field: "index", Value: int64(idx), Err: ErrIndexOutOfRange}
			}
		}
		if mesh.MaterialIndex != NoMaterial &&
			(mesh.MaterialIndex < 0 || int(mesh.MaterialIndex) >= len(m.Materials)) {
			return &InvalidModelError{Mesh: i, Material: -1, Field: "materialIndex", Value: int64(mesh.MaterialIndex), Err: ErrMaterialOutOfRange}
		}
	}
	for i := range m.Materials {
		if err := validateMaterial(&m.Materials[i]); err != nil {
			err.Material = i
			return err
		}
	}
	return nil
}

type enumCheck struct {
	field string
	ok    bool
}

func validateMaterial(mat *Material) *InvalidModelError {
	bad := func(field string, err error) *InvalidModelError {
		return &InvalidModelError{Mesh: -1, Field: field, Err: err}
	}
	if !validName(mat.Name) {
		return bad("name", ErrInvalidName)
	}
	if !validName(mat.ShaderName) {
		return bad("shaderName", ErrInvalidName)
	}
	enums := []enumCheck{
		{"depthFunc", mat.DepthFunc.Valid()},
		{"cullingMode", mat.CullingMode.Valid()},
		{"blendFactorSrcRGB", mat.BlendFactorSrcRGB.Valid()},
		{"blendFactorSrcA", mat.BlendFactorSrcA.Valid()},
		{"blendFactorDstRGB", mat.BlendFactorDstRGB.Valid()},
		{"blendFactorDstA", mat.BlendFactorDstA.Valid()},
		{"blendEquationRGB", mat.BlendEquationRGB.Valid()},
		{"blendEquationA", mat.BlendEquationA.Valid()},
		{"alphaTestFunc", mat.AlphaTestFunc.Valid()},
		{"stencilTestFunc", mat.StencilTestFunc.Valid()},
		{"stencilOpFail", mat.StencilOpFail.Valid()},
		{"stencilOpZFail", mat.StencilOpZFail.Valid()},
		{"stencilOpZPass", mat.StencilOpZPass.Valid()},
		{"polygonMode", mat.PolygonMode.Valid()},
	}
	for j := range mat.Textures {
		t := &mat.Textures[j]
		prefix := fmt.Sprintf("textures[%d].", j)
		if !validName(t.Name) {
			return bad(prefix+"name", ErrInvalidName)
		}
		if !validName(t.SamplerName) {
			return bad(prefix+"samplerName", ErrInvalidName)
		}
		enums = append(enums, []enumCheck{
			{prefix + "magFilter", t.MagFilter.Valid()},
			{prefix + "minFilter", t.MinFilter.Valid()},
			{prefix + "mipFilter", t.MipFilter.Valid()},
			{prefix + "maxAniso", t.MaxAniso.Valid()},
			{prefix + "wrapX", t.WrapX.Valid()},
			{prefix + "wrapY", t.WrapY.Valid()},
			{prefix + "wrapZ", t.WrapZ.Valid()},
		}...)
	}
	for _, e := range enums {
		if !e.ok {
			return bad(e.field, ErrInvalidEnum)
		}
	}
	return nil
}

// Encode serializes a model in the given byte order. The layout is planned
// from the model's counts before any byte is written, so the output is fully
// determined by the model.
func Encode(m *Model, order binary.ByteOrder) ([]byte, error) {
	if err := ValidateModel(m); err != nil {
		return nil, err
	}
	l, err := PlanLayout(CountsOf(m))
	if err != nil {
		return nil, err
	}

	w := NewWriter(order, l.FileSize)
	check := func(region string, want int) error {
		if w.Pos() != want {
			return &LayoutError{Region: region, Want: want, Got: w.Pos(), Err: ErrLayoutDrift}
		}
		return nil
	}

	// Header
	w.Raw([]byte(Magic))
	w.U32(VersionCurrent)
	w.U32(uint32(l.FileSize))
	w.Offset(l.Region(RegionMeshes).Start)
	w.U32(uint32(len(m.Meshes)))
	w.Offset(l.Region(RegionMaterials).Start)
	w.U32(uint32(len(m.Materials)))
	if err := check(RegionMeshes, l.Region(RegionMeshes).Start); err != nil {
		return nil, err
	}

	for i := range m.Meshes {
		if err := check(RegionMeshes, l.Meshes[i].Record); err != nil {
			return nil, err
		}
		encodeMesh(w, &m.Meshes[i], &l.Meshes[i])
	}

	if len(m.Meshes) > 0 {
		if err := w.PadTo(VertexAlign); err != nil {
			return nil, err
		}
	}
	for i := range m.Meshes {
		if err := w.PadTo(VertexAlign); err != nil {
			return nil, err
		}
		if err := check(RegionVertices, l.Meshes[i].VertexBuf); err != nil {
			return nil, err
		}
		for j := range m.Meshes[i].Vertices {
			encodeVertex(w, &m.Meshes[i].Vertices[j])
		}
	}

	if len(m.Meshes) > 0 {
		if err := w.PadTo(IndexAlign); err != nil {
			return nil, err
		}
	}
	for i := range m.Meshes {
		if err := w.PadTo(IndexAlign); err != nil {
			return nil, err
		}
		if err := check(RegionIndices, l.Meshes[i].IndexBuf); err != nil {
			return nil, err
		}
		for _, idx := range m.Meshes[i].Indices {
			w.U32(idx)
		}
	}

	for i := range m.Materials {
		if err := check(RegionMaterials, l.Materials[i].Record); err != nil {
			return nil, err
		}
		encodeMaterial(w, &m.Materials[i], &l.Materials[i])
	}

	for i := range m.Materials {
		mat := &m.Materials[i]
		for j := range mat.Textures {
			if err := check(RegionTextures, l.Materials[i].Textures[j].Record); err != nil {
				return nil, err
			}
			encodeTexture(w, &mat.Textures[j], &l.Materials[i].Textures[j])
		}
	}

	if err := check(RegionStrings, l.Region(RegionStrings).Start); err != nil {
		return nil, err
	}
	writeString := func(s string, ref StringRef) error {
		if err := check(RegionStrings, ref.Pos); err != nil {
			return err
		}
		w.Raw([]byte(s))
		w.Zeros(1)
		return nil
	}
	for i := range m.Materials {
		mat := &m.Materials[i]
		mp := &l.Materials[i]
		if err := writeString(mat.Name, mp.Name); err != nil {
			return nil, err
		}
		if err := writeString(mat.ShaderName, mp.ShaderName); err != nil {
			return nil, err
		}
		for j := range mat.Textures {
			if err := writeString(mat.Textures[j].Name, mp.Textures[j].Name); err != nil {
				return nil, err
			}
			if err := writeString(mat.Textures[j].SamplerName, mp.Textures[j].SamplerName); err != nil {
				return nil, err
			}
		}
	}

	if err := check(RegionStrings, l.FileSize); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// ReadHeader parses and checks the fixed header: magic, version range and
// declared size against len(data).
func ReadHeader(data []byte, order binary.ByteOrder) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, formatErr(recHeader, -1, "", len(data), ErrTruncated)
	}
	if string(data[:len(Magic)]) != Magic {
		return nil, formatErr(recHeader, -1, "magic", 0, ErrInvalidMagic)
	}

	r := NewReader(data, order, headerVersionPos)
	h := &Header{}
	h.Version = r.U32()
	if h.Version < VersionMin || h.Version > VersionCurrent {
		return nil, formatErr(recHeader, -1, "version", headerVersionPos,
			fmt.Errorf("%w: 0x%08x", ErrUnsupportedVersion, h.Version))
	}
	h.FileSize = r.U32()
	if uint64(h.FileSize) != uint64(len(data)) {
		return nil, formatErr(recHeader, -1, "fileSize", headerSizePos,
			fmt.Errorf("%w: header says %d, buffer has %d", ErrSizeMismatch, h.FileSize, len(data)))
	}
	h.MeshDir = r.Offset()
	h.MeshCount = r.U32()
	h.MaterialDir = r.Offset()
	h.MaterialCount = r.U32()
	if err := r.Err(); err != nil {
		return nil, formatErr(recHeader, -1, "", 0, err)
	}

	if !fits(r, h.MeshDir, h.MeshCount, MeshRecordSize) {
		return nil, formatErr(recHeader, -1, "meshDirOffset", headerMeshDirPos, ErrBadOffset)
	}
	if !fits(r, h.MaterialDir, h.MaterialCount, MaterialRecordSize) {
		return nil, formatErr(recHeader, -1, "materialDirOffset", headerMatDirPos, ErrBadOffset)
	}
	return h, nil
}

// Decode parses a container in the given byte order. Positions are derived
// only from offsets; padding and region order are not assumed. Regions may
// be shared between records as long as the decoded data does not exceed
// len(data), else ErrRegionOverlap. Empty sequences decode as nil slices.
func Decode(data []byte, order binary.ByteOrder) (*Model, error) {
	h, err := ReadHeader(data, order)
	if err != nil {
		return nil, err
	}

	m := &Model{}
	if h.MeshCount > 0 {
		m.Meshes = make([]Mesh, h.MeshCount)
	}
	if h.MaterialCount > 0 {
		m.Materials = make([]Material, h.MaterialCount)
	}

	b := newBudget(data)
	r := NewReader(data, order, h.MeshDir)
	for i := range m.Meshes {
		if m.Meshes[i], err = decodeMesh(r, i, len(m.Materials), b); err != nil {
			return nil, fmt.Errorf("parsing mesh %d: %w", i, err)
		}
	}

	r = NewReader(data, order, h.MaterialDir)
	for i := range m.Materials {
		if m.Materials[i], err = decodeMaterial(r, i, b); err != nil {
			return nil, fmt.Errorf("parsing material %d: %w", i, err)
		}
	}
	return m, nil
}
