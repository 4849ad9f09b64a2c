// Package manifest describes how rmdltool packs source meshes and
// material settings into a model container.
//
// A manifest lists materials by name and meshes by source file. Every
// setting is optional: materials and textures start from the runtime
// defaults and only the keys present in the file change them. Enum values
// use the names the container dump prints ("LEQUAL", "CLAMP", "4:1").
//
//	materials:
//	  - name: bark
//	    cull: NONE
//	    alpha_test: {func: GEQUAL, ref: 0.5}
//	    textures:
//	      - name: bark_diffuse
//	        wrap: REPEAT
//	meshes:
//	  - source: tree.obj
//	    material: bark
//	    scale: [2, 2, 2]
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/riomodel/pkg/encoding"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// Manifest errors.
var (
	ErrUnknownFormat   = errors.New("unknown manifest format")
	ErrUnknownMaterial = errors.New("unknown material")
	ErrDuplicateName   = errors.New("duplicate material name")
	ErrNoSource        = errors.New("mesh has no source")
	ErrColorMask       = errors.New("color mask may only contain R, G, B and A")
)

// Manifest is the top-level document.
type Manifest struct {
	Materials []MaterialSpec `yaml:"materials" json:"materials"`
	Meshes    []MeshSpec     `yaml:"meshes" json:"meshes"`
}

// MaterialSpec overrides the default material state.
type MaterialSpec struct {
	Name     string        `yaml:"name" json:"name"`
	Shader   string        `yaml:"shader" json:"shader"`
	Visible  *bool         `yaml:"visible" json:"visible"`
	Textures []TextureSpec `yaml:"textures" json:"textures"`

	Translucent *bool             `yaml:"translucent" json:"translucent"`
	DepthTest   *bool             `yaml:"depth_test" json:"depth_test"`
	DepthWrite  *bool             `yaml:"depth_write" json:"depth_write"`
	DepthFunc   *rmdl.CompareFunc `yaml:"depth_func" json:"depth_func"`
	Cull        *rmdl.CullingMode `yaml:"cull" json:"cull"`
	ColorMask   *string           `yaml:"color_mask" json:"color_mask"` // e.g. "RGB"

	Blend     *BlendSpec     `yaml:"blend" json:"blend"`
	AlphaTest *AlphaTestSpec `yaml:"alpha_test" json:"alpha_test"`
	Stencil   *StencilSpec   `yaml:"stencil" json:"stencil"`

	PolygonMode            *rmdl.PolygonMode `yaml:"polygon_mode" json:"polygon_mode"`
	PolygonOffset          *bool             `yaml:"polygon_offset" json:"polygon_offset"`
	PolygonOffsetPointLine *bool             `yaml:"polygon_offset_point_line" json:"polygon_offset_point_line"`
}

// BlendSpec overrides blending. Its presence enables blending unless
// Enable says otherwise.
type BlendSpec struct {
	Enable        *bool               `yaml:"enable" json:"enable"`
	SrcRGB        *rmdl.BlendFactor   `yaml:"src_rgb" json:"src_rgb"`
	SrcA          *rmdl.BlendFactor   `yaml:"src_a" json:"src_a"`
	DstRGB        *rmdl.BlendFactor   `yaml:"dst_rgb" json:"dst_rgb"`
	DstA          *rmdl.BlendFactor   `yaml:"dst_a" json:"dst_a"`
	EquationRGB   *rmdl.BlendEquation `yaml:"equation_rgb" json:"equation_rgb"`
	EquationA     *rmdl.BlendEquation `yaml:"equation_a" json:"equation_a"`
	ConstantColor *[4]uint8           `yaml:"constant_color" json:"constant_color"`
}

// AlphaTestSpec enables the alpha test.
type AlphaTestSpec struct {
	Func rmdl.CompareFunc `yaml:"func" json:"func"`
	Ref  float32          `yaml:"ref" json:"ref"`
}

// StencilSpec enables the stencil test.
type StencilSpec struct {
	Func  rmdl.CompareFunc `yaml:"func" json:"func"`
	Ref   int32            `yaml:"ref" json:"ref"`
	Mask  *uint32          `yaml:"mask" json:"mask"`
	Fail  *rmdl.StencilOp  `yaml:"fail" json:"fail"`
	ZFail *rmdl.StencilOp  `yaml:"zfail" json:"zfail"`
	ZPass *rmdl.StencilOp  `yaml:"zpass" json:"zpass"`
}

// TextureSpec overrides the default sampler state. Wrap sets all three
// axes; WrapX, WrapY and WrapZ then refine single axes.
type TextureSpec struct {
	Name        string              `yaml:"name" json:"name"`
	Sampler     string              `yaml:"sampler" json:"sampler"`
	MagFilter   *rmdl.TexFilter     `yaml:"mag_filter" json:"mag_filter"`
	MinFilter   *rmdl.TexFilter     `yaml:"min_filter" json:"min_filter"`
	MipFilter   *rmdl.TexMipFilter  `yaml:"mip_filter" json:"mip_filter"`
	MaxAniso    *rmdl.TexAnisoRatio `yaml:"max_aniso" json:"max_aniso"`
	Wrap        *rmdl.TexWrapMode   `yaml:"wrap" json:"wrap"`
	WrapX       *rmdl.TexWrapMode   `yaml:"wrap_x" json:"wrap_x"`
	WrapY       *rmdl.TexWrapMode   `yaml:"wrap_y" json:"wrap_y"`
	WrapZ       *rmdl.TexWrapMode   `yaml:"wrap_z" json:"wrap_z"`
	BorderColor *[4]uint8           `yaml:"border_color" json:"border_color"`
	MinLOD      *float32            `yaml:"min_lod" json:"min_lod"`
	MaxLOD      *float32            `yaml:"max_lod" json:"max_lod"`
	LODBias     *float32            `yaml:"lod_bias" json:"lod_bias"`
}

// MeshSpec names a source file and how to place it. Sources are OBJ
// (.obj), glTF (.gltf, .glb) or RSM (.rsm) files relative to the
// manifest. glTF and RSM sources contribute every mesh of their scene.
type MeshSpec struct {
	Source    string      `yaml:"source" json:"source"`
	Material  string      `yaml:"material" json:"material"`
	Scale     *[3]float32 `yaml:"scale" json:"scale"`
	Rotate    *[3]float32 `yaml:"rotate" json:"rotate"` // radians
	Translate *[3]float32 `yaml:"translate" json:"translate"`
}

// Load reads a manifest, converting it from textEncoding to UTF-8 first.
// The format follows the extension: .yaml, .yml or .json. Unknown keys
// are errors.
func Load(path, textEncoding string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = encoding.ToUTF8(data, textEncoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var m Manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&m)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// Material builds the material described by s. Empty shader and sampler
// names fall back to the given defaults.
func (s *MaterialSpec) Material(defaultShader, defaultSampler string) (rmdl.Material, error) {
	shader := s.Shader
	if shader == "" {
		shader = defaultShader
	}
	m := rmdl.NewMaterial(s.Name, shader)

	set(&m.Visible, s.Visible)
	set(&m.Translucent, s.Translucent)
	set(&m.DepthTest, s.DepthTest)
	set(&m.DepthWrite, s.DepthWrite)
	set(&m.DepthFunc, s.DepthFunc)
	set(&m.CullingMode, s.Cull)
	set(&m.PolygonMode, s.PolygonMode)
	set(&m.PolygonOffset, s.PolygonOffset)
	set(&m.PolygonOffsetPointLine, s.PolygonOffsetPointLine)

	if s.ColorMask != nil {
		mask := strings.ToUpper(*s.ColorMask)
		if strings.Trim(mask, "RGBA") != "" {
			return m, fmt.Errorf("material %q: %w: %q", s.Name, ErrColorMask, *s.ColorMask)
		}
		m.ColorMaskR = strings.Contains(mask, "R")
		m.ColorMaskG = strings.Contains(mask, "G")
		m.ColorMaskB = strings.Contains(mask, "B")
		m.ColorMaskA = strings.Contains(mask, "A")
	}

	if b := s.Blend; b != nil {
		m.BlendEnable = true
		set(&m.BlendEnable, b.Enable)
		set(&m.BlendFactorSrcRGB, b.SrcRGB)
		set(&m.BlendFactorSrcA, b.SrcA)
		set(&m.BlendFactorDstRGB, b.DstRGB)
		set(&m.BlendFactorDstA, b.DstA)
		set(&m.BlendEquationRGB, b.EquationRGB)
		set(&m.BlendEquationA, b.EquationA)
		set(&m.BlendConstantColor, b.ConstantColor)
	}
	if a := s.AlphaTest; a != nil {
		m.AlphaTest = true
		m.AlphaTestFunc = a.Func
		m.AlphaTestRef = a.Ref
	}
	if st := s.Stencil; st != nil {
		m.StencilTest = true
		m.StencilTestFunc = st.Func
		m.StencilTestRef = st.Ref
		set(&m.StencilTestMask, st.Mask)
		set(&m.StencilOpFail, st.Fail)
		set(&m.StencilOpZFail, st.ZFail)
		set(&m.StencilOpZPass, st.ZPass)
	}

	for i := range s.Textures {
		m.Textures = append(m.Textures, s.Textures[i].Texture(defaultSampler))
	}
	return m, nil
}

// Texture builds the texture described by s.
func (s *TextureSpec) Texture(defaultSampler string) rmdl.Texture {
	sampler := s.Sampler
	if sampler == "" {
		sampler = defaultSampler
	}
	t := rmdl.NewTexture(s.Name, sampler)

	set(&t.MagFilter, s.MagFilter)
	set(&t.MinFilter, s.MinFilter)
	set(&t.MipFilter, s.MipFilter)
	set(&t.MaxAniso, s.MaxAniso)
	if s.Wrap != nil {
		t.WrapX, t.WrapY, t.WrapZ = *s.Wrap, *s.Wrap, *s.Wrap
	}
	set(&t.WrapX, s.WrapX)
	set(&t.WrapY, s.WrapY)
	set(&t.WrapZ, s.WrapZ)
	set(&t.BorderColor, s.BorderColor)
	set(&t.MinLOD, s.MinLOD)
	set(&t.MaxLOD, s.MaxLOD)
	set(&t.LODBias, s.LODBias)
	return t
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

