package rmdl

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Info summarizes a container without exposing its geometry.
type Info struct {
	ByteOrder   string         `json:"byteOrder"`
	Version     uint32         `json:"version"`
	FileSize    uint32         `json:"fileSize"`
	Fingerprint uint64         `json:"fingerprint"`
	Regions     []Region       `json:"regions"`
	Meshes      []MeshInfo     `json:"meshes"`
	Materials   []MaterialInfo `json:"materials"`
}

// MeshInfo locates one mesh and its buffers.
type MeshInfo struct {
	Record        int   `json:"record"`
	VertexBuf     int   `json:"vertexBuf"`
	Vertices      int   `json:"vertices"`
	IndexBuf      int   `json:"indexBuf"`
	Indices       int   `json:"indices"`
	MaterialIndex int32 `json:"materialIndex"`
}

// MaterialInfo locates one material and names its textures.
type MaterialInfo struct {
	Record     int      `json:"record"`
	Name       string   `json:"name"`
	ShaderName string   `json:"shaderName"`
	TextureDir int      `json:"textureDir"`
	Textures   []string `json:"textures"`
}

// span grows a region to cover [start, end).
type span struct {
	set        bool
	start, end int
}

func (s *span) add(start, end int) {
	if end <= start {
		return
	}
	if !s.set || start < s.start {
		s.start = start
	}
	if !s.set || end > s.end {
		s.end = end
	}
	s.set = true
}

func (s *span) region(name string) Region {
	return Region{Name: name, Start: s.start, Size: s.end - s.start}
}

// Inspect decodes data and reports where each region actually lies in the
// file, following the stored offsets rather than replanning.
func Inspect(data []byte, order binary.ByteOrder) (*Info, error) {
	h, err := ReadHeader(data, order)
	if err != nil {
		return nil, err
	}
	m, err := Decode(data, order)
	if err != nil {
		return nil, err
	}

	info := &Info{
		ByteOrder:   ByteOrderName(order),
		Version:     h.Version,
		FileSize:    h.FileSize,
		Fingerprint: xxhash.Sum64(data),
	}

	var meshes, vertices, indices, materials, textures, strs span
	meshes.add(h.MeshDir, h.MeshDir+int(h.MeshCount)*MeshRecordSize)
	materials.add(h.MaterialDir, h.MaterialDir+int(h.MaterialCount)*MaterialRecordSize)

	// Decode has bounds-checked every offset read below.
	r := NewReader(data, order, h.MeshDir)
	for i := range m.Meshes {
		mi := MeshInfo{Record: r.Pos()}
		mi.VertexBuf = r.Offset()
		mi.Vertices = int(r.U32())
		mi.IndexBuf = r.Offset()
		mi.Indices = int(r.U32())
		r.Skip(MeshRecordSize - 16)
		mi.MaterialIndex = m.Meshes[i].MaterialIndex
		vertices.add(mi.VertexBuf, mi.VertexBuf+mi.Vertices*VertexSize)
		indices.add(mi.IndexBuf, mi.IndexBuf+mi.Indices*IndexSize)
		info.Meshes = append(info.Meshes, mi)
	}

	r = NewReader(data, order, h.MaterialDir)
	for i := range m.Materials {
		mat := &m.Materials[i]
		mi := MaterialInfo{Record: r.Pos(), Name: mat.Name, ShaderName: mat.ShaderName}
		namePos := r.Offset()
		nameLen := int(r.U32())
		shaderPos := r.Offset()
		shaderLen := int(r.U32())
		mi.TextureDir = r.Offset()
		texCount := int(r.U32())
		r.Skip(MaterialRecordSize - 24)
		strs.add(namePos, namePos+nameLen)
		strs.add(shaderPos, shaderPos+shaderLen)
		textures.add(mi.TextureDir, mi.TextureDir+texCount*TextureRecordSize)

		tr := r.At(mi.TextureDir)
		for j := 0; j < texCount; j++ {
			tNamePos := tr.Offset()
			tNameLen := int(tr.U32())
			sampPos := tr.Offset()
			sampLen := int(tr.U32())
			tr.Skip(TextureRecordSize - 16)
			strs.add(tNamePos, tNamePos+tNameLen)
			strs.add(sampPos, sampPos+sampLen)
			mi.Textures = append(mi.Textures, mat.Textures[j].Name)
		}
		info.Materials = append(info.Materials, mi)
	}

	info.Regions = []Region{
		{Name: RegionHeader, Start: 0, Size: HeaderSize},
		meshes.region(RegionMeshes),
		vertices.region(RegionVertices),
		indices.region(RegionIndices),
		materials.region(RegionMaterials),
		textures.region(RegionTextures),
		strs.region(RegionStrings),
	}
	return info, nil
}
