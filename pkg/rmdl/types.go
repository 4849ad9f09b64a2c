package rmdl

import "math"

// NoMaterial marks a mesh without a material. It is stored on the wire as
// 0xFFFFFFFF.
const NoMaterial int32 = -1

const noMaterialWire uint32 = 0xFFFFFFFF

// Model is a scene made of meshes and the materials they reference.
type Model struct {
	Meshes    []Mesh     `json:"meshes"`
	Materials []Material `json:"materials"`
}

// Vertex is one entry of a mesh vertex pool.
type Vertex struct {
	Position [3]float32 `json:"position"`
	TexCoord [2]float32 `json:"texCoord"`
	Normal   [3]float32 `json:"normal"`
}

// Mesh is an indexed triangle list with a local SRT transform.
type Mesh struct {
	Vertices      []Vertex   `json:"vertices"`
	Indices       []uint32   `json:"indices"`
	Scale         [3]float32 `json:"scale"`
	Rotate        [3]float32 `json:"rotate"` // Euler angles in radians
	Translate     [3]float32 `json:"translate"`
	MaterialIndex int32      `json:"materialIndex"`
}

// NewMesh returns an empty mesh with identity transform and no material.
func NewMesh() Mesh {
	return Mesh{
		Scale:         [3]float32{1, 1, 1},
		MaterialIndex: NoMaterial,
	}
}

// Texture describes a texture reference and its sampler state.
type Texture struct {
	Name        string        `json:"name"`
	SamplerName string        `json:"samplerName"`
	MagFilter   TexFilter     `json:"magFilter"`
	MinFilter   TexFilter     `json:"minFilter"`
	MipFilter   TexMipFilter  `json:"mipFilter"`
	MaxAniso    TexAnisoRatio `json:"maxAniso"`
	WrapX       TexWrapMode   `json:"wrapX"`
	WrapY       TexWrapMode   `json:"wrapY"`
	WrapZ       TexWrapMode   `json:"wrapZ"`
	BorderColor [4]uint8      `json:"borderColor"`
	MinLOD      float32       `json:"minLOD"`
	MaxLOD      float32       `json:"maxLOD"`
	LODBias     float32       `json:"lodBias"`
}

// NewTexture returns a texture with the default sampler state.
func NewTexture(name, samplerName string) Texture {
	return Texture{
		Name:        name,
		SamplerName: samplerName,
		MagFilter:   TexFilterLinear,
		MinFilter:   TexFilterLinear,
		MipFilter:   TexMipFilterLinear,
		MaxAniso:    TexAniso1To1,
		WrapX:       TexWrapClamp,
		WrapY:       TexWrapClamp,
		WrapZ:       TexWrapClamp,
		BorderColor: [4]uint8{0, 0, 0, 255},
		MinLOD:      0,
		MaxLOD:      14,
		LODBias:     0,
	}
}

// Material holds shader binding, textures and fixed-function render state.
type Material struct {
	Name       string    `json:"name"`
	ShaderName string    `json:"shaderName"`
	Textures   []Texture `json:"textures"`
	Visible    bool      `json:"visible"`

	Translucent bool `json:"translucent"`

	DepthTest  bool        `json:"depthTest"`
	DepthWrite bool        `json:"depthWrite"`
	DepthFunc  CompareFunc `json:"depthFunc"`

	CullingMode CullingMode `json:"cullingMode"`

	BlendEnable        bool          `json:"blendEnable"`
	BlendFactorSrcRGB  BlendFactor   `json:"blendFactorSrcRGB"`
	BlendFactorSrcA    BlendFactor   `json:"blendFactorSrcA"`
	BlendFactorDstRGB  BlendFactor   `json:"blendFactorDstRGB"`
	BlendFactorDstA    BlendFactor   `json:"blendFactorDstA"`
	BlendEquationRGB   BlendEquation `json:"blendEquationRGB"`
	BlendEquationA     BlendEquation `json:"blendEquationA"`
	BlendConstantColor [4]uint8      `json:"blendConstantColor"`

	AlphaTest     bool        `json:"alphaTest"`
	AlphaTestFunc CompareFunc `json:"alphaTestFunc"`
	AlphaTestRef  float32     `json:"alphaTestRef"`

	ColorMaskR bool `json:"colorMaskR"`
	ColorMaskG bool `json:"colorMaskG"`
	ColorMaskB bool `json:"colorMaskB"`
	ColorMaskA bool `json:"colorMaskA"`

	StencilTest     bool        `json:"stencilTest"`
	StencilTestFunc CompareFunc `json:"stencilTestFunc"`
	StencilTestRef  int32       `json:"stencilTestRef"`
	StencilTestMask uint32      `json:"stencilTestMask"`
	StencilOpFail   StencilOp   `json:"stencilOpFail"`
	StencilOpZFail  StencilOp   `json:"stencilOpZFail"`
	StencilOpZPass  StencilOp   `json:"stencilOpZPass"`

	PolygonMode            PolygonMode `json:"polygonMode"`
	PolygonOffset          bool        `json:"polygonOffset"`
	PolygonOffsetPointLine bool        `json:"polygonOffsetPointLine"`
}

// NewMaterial returns a visible material with the default render state.
func NewMaterial(name, shaderName string) Material {
	return Material{
		Name:       name,
		ShaderName: shaderName,
		Visible:    true,

		DepthTest:  true,
		DepthWrite: true,
		DepthFunc:  CompareLEqual,

		CullingMode: CullBack,

		BlendEnable:        true,
		BlendFactorSrcRGB:  BlendSrcAlpha,
		BlendFactorSrcA:    BlendSrcAlpha,
		BlendFactorDstRGB:  BlendOneMinusSrcAlpha,
		BlendFactorDstA:    BlendOneMinusSrcAlpha,
		BlendEquationRGB:   BlendFuncAdd,
		BlendEquationA:     BlendFuncAdd,
		BlendConstantColor: [4]uint8{255, 255, 255, 255},

		AlphaTestFunc: CompareGreater,

		ColorMaskR: true,
		ColorMaskG: true,
		ColorMaskB: true,
		ColorMaskA: true,

		StencilTestFunc: CompareNever,
		StencilTestMask: 0xFFFFFFFF,
		StencilOpFail:   StencilKeep,
		StencilOpZFail:  StencilKeep,
		StencilOpZPass:  StencilKeep,

		PolygonMode: PolygonFill,
	}
}

// renderFlags packs the boolean render state.
func (m *Material) renderFlags() RenderFlags {
	var f RenderFlags
	set := func(on bool, bit RenderFlags) {
		if on {
			f |= bit
		}
	}
	set(m.Translucent, RenderTranslucent)
	set(m.DepthTest, RenderDepthTest)
	set(m.DepthWrite, RenderDepthWrite)
	set(m.BlendEnable, RenderBlend)
	set(m.AlphaTest, RenderAlphaTest)
	set(m.ColorMaskR, RenderColorMaskR)
	set(m.ColorMaskG, RenderColorMaskG)
	set(m.ColorMaskB, RenderColorMaskB)
	set(m.ColorMaskA, RenderColorMaskA)
	set(m.StencilTest, RenderStencilTest)
	set(m.PolygonOffset, RenderPolygonOffset)
	set(m.PolygonOffsetPointLine, RenderPolygonOffsetPtLine)
	return f
}

func (m *Material) setRenderFlags(f RenderFlags) {
	m.Translucent = f&RenderTranslucent != 0
	m.DepthTest = f&RenderDepthTest != 0
	m.DepthWrite = f&RenderDepthWrite != 0
	m.BlendEnable = f&RenderBlend != 0
	m.AlphaTest = f&RenderAlphaTest != 0
	m.ColorMaskR = f&RenderColorMaskR != 0
	m.ColorMaskG = f&RenderColorMaskG != 0
	m.ColorMaskB = f&RenderColorMaskB != 0
	m.ColorMaskA = f&RenderColorMaskA != 0
	m.StencilTest = f&RenderStencilTest != 0
	m.PolygonOffset = f&RenderPolygonOffset != 0
	m.PolygonOffsetPointLine = f&RenderPolygonOffsetPtLine != 0
}

// ChannelToFloat converts a 0-255 color channel to its wire value in [0,1].
func ChannelToFloat(c uint8) float32 {
	return float32(float64(c) / 255)
}

// FloatToChannel converts a wire color value back to a 0-255 channel,
// rounding to nearest and clamping. NaN maps to 0.
func FloatToChannel(f float32) uint8 {
	v := math.Round(float64(f) * 255)
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// TotalVertexCount returns the number of vertices across all meshes.
func (m *Model) TotalVertexCount() int {
	total := 0
	for i := range m.Meshes {
		total += len(m.Meshes[i].Vertices)
	}
	return total
}

// TotalIndexCount returns the number of indices across all meshes.
func (m *Model) TotalIndexCount() int {
	total := 0
	for i := range m.Meshes {
		total += len(m.Meshes[i].Indices)
	}
	return total
}

// TotalTextureCount returns the number of textures across all materials.
func (m *Model) TotalTextureCount() int {
	total := 0
	for i := range m.Materials {
		total += len(m.Materials[i].Textures)
	}
	return total
}

// MaterialByName returns the index of the first material with the given
// name, or -1.
func (m *Model) MaterialByName(name string) int {
	for i := range m.Materials {
		if m.Materials[i].Name == name {
			return i
		}
	}
	return -1
}
