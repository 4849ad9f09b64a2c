package rmdl

import "math"

// Record sizes and region alignments.
const (
	HeaderSize         = 0x20
	MeshRecordSize     = 0x38
	VertexSize         = 0x20
	IndexSize          = 4
	MaterialRecordSize = 0x80
	TextureRecordSize  = 0x48

	VertexAlign = 0x40
	IndexAlign  = 0x20

	// Offsets are stored as signed 32-bit deltas, so files are capped below 2 GiB.
	maxFileSize = math.MaxInt32
)

// Region names, in file order.
const (
	RegionHeader    = "header"
	RegionMeshes    = "meshes"
	RegionVertices  = "vertices"
	RegionIndices   = "indices"
	RegionMaterials = "materials"
	RegionTextures  = "textures"
	RegionStrings   = "strings"
)

// Counts is everything the planner needs to know about a model.
type Counts struct {
	Meshes    []MeshCounts
	Materials []MaterialCounts
}

// MeshCounts holds the buffer sizes of one mesh.
type MeshCounts struct {
	Vertices int
	Indices  int
}

// MaterialCounts holds the string lengths (in bytes, terminator excluded)
// and textures of one material.
type MaterialCounts struct {
	NameLen       int
	ShaderNameLen int
	Textures      []TextureCounts
}

// TextureCounts holds the string lengths of one texture.
type TextureCounts struct {
	NameLen        int
	SamplerNameLen int
}

// CountsOf derives planner input from a model.
func CountsOf(m *Model) Counts {
	c := Counts{
		Meshes:    make([]MeshCounts, len(m.Meshes)),
		Materials: make([]MaterialCounts, len(m.Materials)),
	}
	for i := range m.Meshes {
		c.Meshes[i] = MeshCounts{
			Vertices: len(m.Meshes[i].Vertices),
			Indices:  len(m.Meshes[i].Indices),
		}
	}
	for i := range m.Materials {
		mat := &m.Materials[i]
		mc := MaterialCounts{
			NameLen:       len(mat.Name),
			ShaderNameLen: len(mat.ShaderName),
			Textures:      make([]TextureCounts, len(mat.Textures)),
		}
		for j := range mat.Textures {
			mc.Textures[j] = TextureCounts{
				NameLen:        len(mat.Textures[j].Name),
				SamplerNameLen: len(mat.Textures[j].SamplerName),
			}
		}
		c.Materials[i] = mc
	}
	return c
}

// Region is a contiguous span of the file.
type Region struct {
	Name  string
	Start int
	Size  int
}

// End returns the first position past the region.
func (r Region) End() int { return r.Start + r.Size }

// MeshPlan holds the absolute positions planned for one mesh.
type MeshPlan struct {
	Record    int
	VertexBuf int
	IndexBuf  int
}

// TexturePlan holds the absolute positions planned for one texture.
type TexturePlan struct {
	Record      int
	Name        StringRef
	SamplerName StringRef
}

// MaterialPlan holds the absolute positions planned for one material.
type MaterialPlan struct {
	Record     int
	TextureDir int
	Name       StringRef
	ShaderName StringRef
	Textures   []TexturePlan
}

// Layout is the complete placement of a model container: every region and
// every record start, computed before any byte is written.
type Layout struct {
	Regions   []Region
	Meshes    []MeshPlan
	Materials []MaterialPlan
	FileSize  int
}

// Region returns the region with the given name.
func (l *Layout) Region(name string) Region {
	for _, r := range l.Regions {
		if r.Name == name {
			return r
		}
	}
	return Region{Name: name}
}

func (l *Layout) addRegion(name string, start, end int) error {
	if end > maxFileSize {
		return &LayoutError{Region: name, Want: maxFileSize, Got: end, Err: ErrLayoutOverflow}
	}
	l.Regions = append(l.Regions, Region{Name: name, Start: start, Size: end - start})
	return nil
}

// PlanLayout computes the position of every region and record.
//
// Order: header, mesh directory, vertex buffers (each aligned to 0x40),
// index buffers (each aligned to 0x20), material directory, texture
// directory, string table. The region-level alignment before the vertex and
// index buffers only applies when there is at least one mesh, so an empty
// model is exactly the header.
func PlanLayout(c Counts) (*Layout, error) {
	if err := checkCounts(c); err != nil {
		return nil, err
	}

	l := &Layout{
		Meshes:    make([]MeshPlan, len(c.Meshes)),
		Materials: make([]MaterialPlan, len(c.Materials)),
	}
	if err := l.addRegion(RegionHeader, 0, HeaderSize); err != nil {
		return nil, err
	}

	pos := HeaderSize
	start := pos
	for i := range c.Meshes {
		l.Meshes[i].Record = pos
		pos += MeshRecordSize
	}
	if err := l.addRegion(RegionMeshes, start, pos); err != nil {
		return nil, err
	}

	if len(c.Meshes) > 0 {
		pos = Align(pos, VertexAlign)
	}
	start = pos
	for i, mc := range c.Meshes {
		pos = Align(pos, VertexAlign)
		l.Meshes[i].VertexBuf = pos
		pos += VertexSize * mc.Vertices
	}
	if err := l.addRegion(RegionVertices, start, pos); err != nil {
		return nil, err
	}

	if len(c.Meshes) > 0 {
		pos = Align(pos, IndexAlign)
	}
	start = pos
	for i, mc := range c.Meshes {
		pos = Align(pos, IndexAlign)
		l.Meshes[i].IndexBuf = pos
		pos += IndexSize * mc.Indices
	}
	if err := l.addRegion(RegionIndices, start, pos); err != nil {
		return nil, err
	}

	start = pos
	for i := range c.Materials {
		l.Materials[i].Record = pos
		pos += MaterialRecordSize
	}
	if err := l.addRegion(RegionMaterials, start, pos); err != nil {
		return nil, err
	}

	start = pos
	for i, mc := range c.Materials {
		mp := &l.Materials[i]
		mp.TextureDir = pos
		mp.Textures = make([]TexturePlan, len(mc.Textures))
		for j := range mc.Textures {
			mp.Textures[j].Record = pos
			pos += TextureRecordSize
		}
	}
	if err := l.addRegion(RegionTextures, start, pos); err != nil {
		return nil, err
	}

	st := NewStringTable(pos)
	for i, mc := range c.Materials {
		mp := &l.Materials[i]
		mp.Name = st.Add(mc.NameLen)
		mp.ShaderName = st.Add(mc.ShaderNameLen)
		for j, tc := range mc.Textures {
			mp.Textures[j].Name = st.Add(tc.NameLen)
			mp.Textures[j].SamplerName = st.Add(tc.SamplerNameLen)
		}
	}
	if err := l.addRegion(RegionStrings, st.Start(), st.End()); err != nil {
		return nil, err
	}

	l.FileSize = st.End()
	return l, nil
}

// checkCounts rejects negative counts and counts that cannot fit a u32
// field before any arithmetic is done on them.
func checkCounts(c Counts) error {
	bad := func(region string, n int) error {
		if n < 0 || n > maxFileSize {
			return &LayoutError{Region: region, Want: maxFileSize, Got: n, Err: ErrLayoutOverflow}
		}
		return nil
	}
	if err := bad(RegionMeshes, len(c.Meshes)); err != nil {
		return err
	}
	for _, mc := range c.Meshes {
		if err := bad(RegionVertices, mc.Vertices); err != nil {
			return err
		}
		if err := bad(RegionIndices, mc.Indices); err != nil {
			return err
		}
	}
	for _, mc := range c.Materials {
		if err := bad(RegionStrings, mc.NameLen); err != nil {
			return err
		}
		if err := bad(RegionStrings, mc.ShaderNameLen); err != nil {
			return err
		}
		for _, tc := range mc.Textures {
			if err := bad(RegionStrings, tc.NameLen); err != nil {
				return err
			}
			if err := bad(RegionStrings, tc.SamplerNameLen); err != nil {
				return err
			}
		}
	}
	return nil
}
