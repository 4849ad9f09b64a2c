package rmdl

// Record names used in FormatError.
const (
	recHeader   = "header"
	recMesh     = "mesh"
	recVertex   = "vertex"
	recIndex    = "index"
	recMaterial = "material"
	recTexture  = "texture"
)

func encodeVertex(w *Writer, v *Vertex) {
	w.F32s(v.Position[:]...)
	w.F32s(v.TexCoord[:]...)
	w.F32s(v.Normal[:]...)
}

func decodeVertex(r *Reader, v *Vertex) {
	r.F32s(v.Position[:])
	r.F32s(v.TexCoord[:])
	r.F32s(v.Normal[:])
}

func encodeMesh(w *Writer, m *Mesh, p *MeshPlan) {
	w.Offset(p.VertexBuf)
	w.U32(uint32(len(m.Vertices)))
	w.Offset(p.IndexBuf)
	w.U32(uint32(len(m.Indices)))
	w.F32s(m.Scale[:]...)
	w.F32s(m.Rotate[:]...)
	w.F32s(m.Translate[:]...)
	w.U32(materialIndexToWire(m.MaterialIndex))
}

func materialIndexToWire(idx int32) uint32 {
	if idx == NoMaterial {
		return noMaterialWire
	}
	return uint32(idx)
}

// decodeMesh reads the mesh record at r and resolves its vertex and index
// buffers. materialCount bounds the material index; b is charged for both
// buffers.
func decodeMesh(r *Reader, index, materialCount int, b *budget) (Mesh, error) {
	var m Mesh
	start := r.Pos()

	vtxField := r.Pos()
	vtxPos := r.Offset()
	vtxCount := r.U32()
	idxField := r.Pos()
	idxPos := r.Offset()
	idxCount := r.U32()
	r.F32s(m.Scale[:])
	r.F32s(m.Rotate[:])
	r.F32s(m.Translate[:])
	matField := r.Pos()
	matIdx := r.U32()
	if err := r.Err(); err != nil {
		return m, formatErr(recMesh, index, "", start, err)
	}
	if r.Pos()-start != MeshRecordSize {
		return m, formatErr(recMesh, index, "", start, ErrRecordSize)
	}

	switch {
	case matIdx == noMaterialWire:
		m.MaterialIndex = NoMaterial
	case uint64(matIdx) >= uint64(materialCount):
		return m, formatErr(recMesh, index, "materialIndex", matField, ErrMaterialOutOfRange)
	default:
		m.MaterialIndex = int32(matIdx)
	}

	if !fits(r, vtxPos, vtxCount, VertexSize) {
		return m, formatErr(recMesh, index, "vertexBufOffset", vtxField, ErrBadOffset)
	}
	if !b.take(vtxCount, VertexSize) {
		return m, formatErr(recMesh, index, "vertexBufOffset", vtxField, ErrRegionOverlap)
	}
	vr := r.At(vtxPos)
	if vtxCount > 0 {
		m.Vertices = make([]Vertex, vtxCount)
	}
	for i := range m.Vertices {
		vstart := vr.Pos()
		decodeVertex(vr, &m.Vertices[i])
		if err := vr.Err(); err != nil {
			return m, formatErr(recVertex, i, "", vstart, err)
		}
		if vr.Pos()-vstart != VertexSize {
			return m, formatErr(recVertex, i, "", vstart, ErrRecordSize)
		}
	}

	if !fits(r, idxPos, idxCount, IndexSize) {
		return m, formatErr(recMesh, index, "indexBufOffset", idxField, ErrBadOffset)
	}
	if !b.take(idxCount, IndexSize) {
		return m, formatErr(recMesh, index, "indexBufOffset", idxField, ErrRegionOverlap)
	}
	ir := r.At(idxPos)
	if idxCount > 0 {
		m.Indices = make([]uint32, idxCount)
	}
	for i := range m.Indices {
		v := ir.U32()
		if v >= vtxCount {
			return m, formatErr(recIndex, i, "", ir.Pos()-IndexSize, ErrIndexOutOfRange)
		}
		m.Indices[i] = v
	}
	if err := ir.Err(); err != nil {
		return m, formatErr(recMesh, index, "indexBufOffset", idxField, err)
	}
	return m, nil
}

// fits reports whether count records of size bytes starting at pos lie
// inside the buffer.
func fits(r *Reader, pos int, count uint32, size int) bool {
	n := len(r.data)
	if pos < 0 || pos > n {
		return false
	}
	return uint64(count)*uint64(size) <= uint64(n-pos)
}

// budget bounds the bytes Decode materialises. The regions of a valid file
// are disjoint, so their sizes add up to at most the buffer length; offsets
// that reuse a region overdraw it.
type budget struct {
	left uint64
}

func newBudget(data []byte) *budget {
	return &budget{left: uint64(len(data))}
}

// take charges count records of size bytes and reports whether they fit.
func (b *budget) take(count uint32, size int) bool {
	n := uint64(count) * uint64(size)
	if n > b.left {
		return false
	}
	b.left -= n
	return true
}

// str extracts a string and charges its stored length.
func (b *budget) str(data []byte, pos int, n uint32) (string, error) {
	s, err := sliceString(data, pos, n)
	if err != nil {
		return "", err
	}
	if !b.take(n, 1) {
		return "", ErrRegionOverlap
	}
	return s, nil
}

func encodeMaterial(w *Writer, m *Material, p *MaterialPlan) {
	w.Offset(p.Name.Pos)
	w.U32(uint32(p.Name.Len))
	w.Offset(p.ShaderName.Pos)
	w.U32(uint32(p.ShaderName.Len))
	w.Offset(p.TextureDir)
	w.U32(uint32(len(m.Textures)))

	// Reserved: uniform variable and uniform block directories.
	w.Zeros(16)

	var flags MaterialFlags
	if m.Visible {
		flags |= MaterialVisible
	}
	w.U16(uint16(flags))
	w.U16(uint16(m.renderFlags()))

	w.U32(uint32(m.DepthFunc))
	w.U32(uint32(m.CullingMode))
	w.U32(uint32(m.BlendFactorSrcRGB))
	w.U32(uint32(m.BlendFactorSrcA))
	w.U32(uint32(m.BlendFactorDstRGB))
	w.U32(uint32(m.BlendFactorDstA))
	w.U32(uint32(m.BlendEquationRGB))
	w.U32(uint32(m.BlendEquationA))
	for _, c := range m.BlendConstantColor {
		w.F32(ChannelToFloat(c))
	}

	w.U32(uint32(m.AlphaTestFunc))
	w.F32(m.AlphaTestRef)
	w.U32(uint32(m.StencilTestFunc))
	w.I32(m.StencilTestRef)
	w.U32(m.StencilTestMask)
	w.U32(uint32(m.StencilOpFail))
	w.U32(uint32(m.StencilOpZFail))
	w.U32(uint32(m.StencilOpZPass))
	w.U32(uint32(m.PolygonMode))
}

// enumReader reads enum fields and remembers the first invalid one, so the
// record is consumed in full before validation fails.
type enumReader struct {
	r        *Reader
	badField string
	badPos   int
}

func (e *enumReader) u32(field string, valid func(uint32) bool) uint32 {
	pos := e.r.Pos()
	v := e.r.U32()
	if e.r.Err() == nil && !valid(v) && e.badField == "" {
		e.badField, e.badPos = field, pos
	}
	return v
}

func decodeMaterial(r *Reader, index int, b *budget) (Material, error) {
	var m Material
	start := r.Pos()

	nameField := r.Pos()
	namePos := r.Offset()
	nameLen := r.U32()
	shaderField := r.Pos()
	shaderPos := r.Offset()
	shaderLen := r.U32()
	texField := r.Pos()
	texPos := r.Offset()
	texCount := r.U32()

	r.Skip(16)

	flagsField := r.Pos()
	flags := MaterialFlags(r.U16())
	renderField := r.Pos()
	render := RenderFlags(r.U16())

	e := &enumReader{r: r}
	m.DepthFunc = CompareFunc(e.u32("depthFunc", validCompare))
	m.CullingMode = CullingMode(e.u32("cullingMode", func(v uint32) bool { return CullingMode(v).Valid() }))
	m.BlendFactorSrcRGB = BlendFactor(e.u32("blendFactorSrcRGB", validBlendFactor))
	m.BlendFactorSrcA = BlendFactor(e.u32("blendFactorSrcA", validBlendFactor))
	m.BlendFactorDstRGB = BlendFactor(e.u32("blendFactorDstRGB", validBlendFactor))
	m.BlendFactorDstA = BlendFactor(e.u32("blendFactorDstA", validBlendFactor))
	m.BlendEquationRGB = BlendEquation(e.u32("blendEquationRGB", validBlendEquation))
	m.BlendEquationA = BlendEquation(e.u32("blendEquationA", validBlendEquation))
	for i := range m.BlendConstantColor {
		m.BlendConstantColor[i] = FloatToChannel(r.F32())
	}

	m.AlphaTestFunc = CompareFunc(e.u32("alphaTestFunc", validCompare))
	m.AlphaTestRef = r.F32()
	m.StencilTestFunc = CompareFunc(e.u32("stencilTestFunc", validCompare))
	m.StencilTestRef = r.I32()
	m.StencilTestMask = r.U32()
	m.StencilOpFail = StencilOp(e.u32("stencilOpFail", validStencilOp))
	m.StencilOpZFail = StencilOp(e.u32("stencilOpZFail", validStencilOp))
	m.StencilOpZPass = StencilOp(e.u32("stencilOpZPass", validStencilOp))
	m.PolygonMode = PolygonMode(e.u32("polygonMode", func(v uint32) bool { return PolygonMode(v).Valid() }))

	if err := r.Err(); err != nil {
		return m, formatErr(recMaterial, index, "", start, err)
	}
	if r.Pos()-start != MaterialRecordSize {
		return m, formatErr(recMaterial, index, "", start, ErrRecordSize)
	}
	if e.badField != "" {
		return m, formatErr(recMaterial, index, e.badField, e.badPos, ErrInvalidEnum)
	}
	if flags&^materialFlagsKnown != 0 {
		return m, formatErr(recMaterial, index, "flags", flagsField, ErrInvalidFlags)
	}
	if render&^renderFlagsKnown != 0 {
		return m, formatErr(recMaterial, index, "renderFlags", renderField, ErrInvalidFlags)
	}
	m.Visible = flags&MaterialVisible != 0
	m.setRenderFlags(render)

	var err error
	if m.Name, err = b.str(r.data, namePos, nameLen); err != nil {
		return m, formatErr(recMaterial, index, "name", nameField, err)
	}
	if m.ShaderName, err = b.str(r.data, shaderPos, shaderLen); err != nil {
		return m, formatErr(recMaterial, index, "shaderName", shaderField, err)
	}

	if !fits(r, texPos, texCount, TextureRecordSize) {
		return m, formatErr(recMaterial, index, "textureDirOffset", texField, ErrBadOffset)
	}
	if !b.take(texCount, TextureRecordSize) {
		return m, formatErr(recMaterial, index, "textureDirOffset", texField, ErrRegionOverlap)
	}
	if texCount > 0 {
		m.Textures = make([]Texture, texCount)
	}
	tr := r.At(texPos)
	for i := range m.Textures {
		if m.Textures[i], err = decodeTexture(tr, i, b); err != nil {
			return m, err
		}
	}
	return m, nil
}

func validCompare(v uint32) bool       { return CompareFunc(v).Valid() }
func validBlendFactor(v uint32) bool   { return BlendFactor(v).Valid() }
func validBlendEquation(v uint32) bool { return BlendEquation(v).Valid() }
func validStencilOp(v uint32) bool     { return StencilOp(v).Valid() }
func validFilter(v uint32) bool        { return TexFilter(v).Valid() }
func validWrap(v uint32) bool          { return TexWrapMode(v).Valid() }

func encodeTexture(w *Writer, t *Texture, p *TexturePlan) {
	w.Offset(p.Name.Pos)
	w.U32(uint32(p.Name.Len))
	w.Offset(p.SamplerName.Pos)
	w.U32(uint32(p.SamplerName.Len))

	w.U32(uint32(t.MagFilter))
	w.U32(uint32(t.MinFilter))
	w.U32(uint32(t.MipFilter))
	w.U32(uint32(t.MaxAniso))

	w.U32(uint32(t.WrapX))
	w.U32(uint32(t.WrapY))
	w.U32(uint32(t.WrapZ))

	for _, c := range t.BorderColor {
		w.F32(ChannelToFloat(c))
	}

	w.F32(t.MinLOD)
	w.F32(t.MaxLOD)
	w.F32(t.LODBias)
}

// decodeTexture reads the texture record at r and leaves r at the next one.
func decodeTexture(r *Reader, index int, b *budget) (Texture, error) {
	var t Texture
	start := r.Pos()

	nameField := r.Pos()
	namePos := r.Offset()
	nameLen := r.U32()
	samplerField := r.Pos()
	samplerPos := r.Offset()
	samplerLen := r.U32()

	e := &enumReader{r: r}
	t.MagFilter = TexFilter(e.u32("magFilter", validFilter))
	t.MinFilter = TexFilter(e.u32("minFilter", validFilter))
	t.MipFilter = TexMipFilter(e.u32("mipFilter", func(v uint32) bool { return TexMipFilter(v).Valid() }))
	t.MaxAniso = TexAnisoRatio(e.u32("maxAniso", func(v uint32) bool { return TexAnisoRatio(v).Valid() }))
	t.WrapX = TexWrapMode(e.u32("wrapX", validWrap))
	t.WrapY = TexWrapMode(e.u32("wrapY", validWrap))
	t.WrapZ = TexWrapMode(e.u32("wrapZ", validWrap))

	for i := range t.BorderColor {
		t.BorderColor[i] = FloatToChannel(r.F32())
	}
	t.MinLOD = r.F32()
	t.MaxLOD = r.F32()
	t.LODBias = r.F32()

	if err := r.Err(); err != nil {
		return t, formatErr(recTexture, index, "", start, err)
	}
	if r.Pos()-start != TextureRecordSize {
		return t, formatErr(recTexture, index, "", start, ErrRecordSize)
	}
	if e.badField != "" {
		return t, formatErr(recTexture, index, e.badField, e.badPos, ErrInvalidEnum)
	}

	var err error
	if t.Name, err = b.str(r.data, namePos, nameLen); err != nil {
		return t, formatErr(recTexture, index, "name", nameField, err)
	}
	if t.SamplerName, err = b.str(r.data, samplerPos, samplerLen); err != nil {
		return t, formatErr(recTexture, index, "samplerName", samplerField, err)
	}
	return t, nil
}
