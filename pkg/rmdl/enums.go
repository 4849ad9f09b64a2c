package rmdl

import (
	"fmt"
	"strings"
)

// TexFilter is the min/mag filter of a texture sampler.
type TexFilter uint32

const (
	TexFilterPoint  TexFilter = 0
	TexFilterLinear TexFilter = 1
)

// TexMipFilter is the mipmap filter of a texture sampler.
type TexMipFilter uint32

const (
	TexMipFilterNone   TexMipFilter = 0
	TexMipFilterPoint  TexMipFilter = 1
	TexMipFilterLinear TexMipFilter = 2
)

// TexAnisoRatio is the maximum anisotropy of a texture sampler.
type TexAnisoRatio uint32

const (
	TexAniso1To1  TexAnisoRatio = 0
	TexAniso2To1  TexAnisoRatio = 1
	TexAniso4To1  TexAnisoRatio = 2
	TexAniso8To1  TexAnisoRatio = 3
	TexAniso16To1 TexAnisoRatio = 4
)

// TexWrapMode is the addressing mode of one texture axis.
type TexWrapMode uint32

const (
	TexWrapRepeat               TexWrapMode = 0
	TexWrapMirror               TexWrapMode = 1
	TexWrapClamp                TexWrapMode = 2
	TexWrapMirrorOnce           TexWrapMode = 3
	TexWrapClampHalfBorder      TexWrapMode = 4
	TexWrapMirrorOnceHalfBorder TexWrapMode = 5
	TexWrapClampBorder          TexWrapMode = 6
	TexWrapMirrorOnceBorder     TexWrapMode = 7
)

// CompareFunc is a depth, alpha or stencil comparison function.
type CompareFunc uint32

const (
	CompareNever    CompareFunc = 0
	CompareLess     CompareFunc = 1
	CompareEqual    CompareFunc = 2
	CompareLEqual   CompareFunc = 3
	CompareGreater  CompareFunc = 4
	CompareNotEqual CompareFunc = 5
	CompareGEqual   CompareFunc = 6
	CompareAlways   CompareFunc = 7
)

// CullingMode selects which faces are discarded.
type CullingMode uint32

const (
	CullFront CullingMode = 0
	CullBack  CullingMode = 1
	CullNone  CullingMode = 2
	CullAll   CullingMode = 3
)

// BlendFactor is a source or destination blend factor.
type BlendFactor uint32

const (
	BlendZero                  BlendFactor = 0
	BlendOne                   BlendFactor = 1
	BlendSrcColor              BlendFactor = 2
	BlendOneMinusSrcColor      BlendFactor = 3
	BlendSrcAlpha              BlendFactor = 4
	BlendOneMinusSrcAlpha      BlendFactor = 5
	BlendDstAlpha              BlendFactor = 6
	BlendOneMinusDstAlpha      BlendFactor = 7
	BlendDstColor              BlendFactor = 8
	BlendOneMinusDstColor      BlendFactor = 9
	BlendSrcAlphaSaturate      BlendFactor = 10
	BlendConstantColor         BlendFactor = 11
	BlendOneMinusConstantColor BlendFactor = 12
	BlendConstantAlpha         BlendFactor = 13
	BlendOneMinusConstantAlpha BlendFactor = 14
)

// BlendEquation combines source and destination terms.
type BlendEquation uint32

const (
	BlendFuncAdd        BlendEquation = 0
	BlendFuncSub        BlendEquation = 1
	BlendFuncMin        BlendEquation = 2
	BlendFuncMax        BlendEquation = 3
	BlendFuncReverseSub BlendEquation = 4
)

// StencilOp is the action taken on the stencil buffer.
type StencilOp uint32

const (
	StencilKeep     StencilOp = 0
	StencilZero     StencilOp = 1
	StencilReplace  StencilOp = 2
	StencilIncr     StencilOp = 3
	StencilDecr     StencilOp = 4
	StencilInvert   StencilOp = 5
	StencilIncrWrap StencilOp = 6
	StencilDecrWrap StencilOp = 7
)

// PolygonMode is the rasterization mode.
type PolygonMode uint32

const (
	PolygonPoint PolygonMode = 0
	PolygonLine  PolygonMode = 1
	PolygonFill  PolygonMode = 2
)

var (
	texFilterNames     = []string{"POINT", "LINEAR"}
	texMipFilterNames  = []string{"NONE", "POINT", "LINEAR"}
	texAnisoNames      = []string{"1:1", "2:1", "4:1", "8:1", "16:1"}
	texWrapNames       = []string{"REPEAT", "MIRROR", "CLAMP", "MIRROR_ONCE", "CLAMP_HALF_BORDER", "MIRROR_ONCE_HALF_BORDER", "CLAMP_BORDER", "MIRROR_ONCE_BORDER"}
	compareFuncNames   = []string{"NEVER", "LESS", "EQUAL", "LEQUAL", "GREATER", "NOTEQUAL", "GEQUAL", "ALWAYS"}
	cullingModeNames   = []string{"FRONT", "BACK", "NONE", "ALL"}
	blendFactorNames   = []string{"ZERO", "ONE", "SRC_COLOR", "ONE_MINUS_SRC_COLOR", "SRC_ALPHA", "ONE_MINUS_SRC_ALPHA", "DST_ALPHA", "ONE_MINUS_DST_ALPHA", "DST_COLOR", "ONE_MINUS_DST_COLOR", "SRC_ALPHA_SATURATE", "CONSTANT_COLOR", "ONE_MINUS_CONSTANT_COLOR", "CONSTANT_ALPHA", "ONE_MINUS_CONSTANT_ALPHA"}
	blendEquationNames = []string{"ADD", "SUB", "MIN", "MAX", "REVERSE_SUB"}
	stencilOpNames     = []string{"KEEP", "ZERO", "REPLACE", "INCR", "DECR", "INVERT", "INCR_WRAP", "DECR_WRAP"}
	polygonModeNames   = []string{"POINT", "LINE", "FILL"}
)

func enumString(names []string, v uint32) string {
	if v < uint32(len(names)) {
		return names[v]
	}
	return fmt.Sprintf("Unknown(%d)", v)
}

func enumMarshal(names []string, v uint32) ([]byte, error) {
	if v >= uint32(len(names)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEnum, v)
	}
	return []byte(names[v]), nil
}

func enumUnmarshal(names []string, text []byte, dst *uint32) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	for i, name := range names {
		if name == s {
			*dst = uint32(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidEnum, string(text))
}

func (f TexFilter) String() string { return enumString(texFilterNames, uint32(f)) }
func (f TexFilter) Valid() bool    { return uint32(f) < uint32(len(texFilterNames)) }
func (f TexFilter) MarshalText() ([]byte, error) {
	return enumMarshal(texFilterNames, uint32(f))
}
func (f *TexFilter) UnmarshalText(b []byte) error {
	return enumUnmarshal(texFilterNames, b, (*uint32)(f))
}

func (f TexMipFilter) String() string { return enumString(texMipFilterNames, uint32(f)) }
func (f TexMipFilter) Valid() bool    { return uint32(f) < uint32(len(texMipFilterNames)) }
func (f TexMipFilter) MarshalText() ([]byte, error) {
	return enumMarshal(texMipFilterNames, uint32(f))
}
func (f *TexMipFilter) UnmarshalText(b []byte) error {
	return enumUnmarshal(texMipFilterNames, b, (*uint32)(f))
}

func (a TexAnisoRatio) String() string { return enumString(texAnisoNames, uint32(a)) }
func (a TexAnisoRatio) Valid() bool    { return uint32(a) < uint32(len(texAnisoNames)) }
func (a TexAnisoRatio) MarshalText() ([]byte, error) {
	return enumMarshal(texAnisoNames, uint32(a))
}
func (a *TexAnisoRatio) UnmarshalText(b []byte) error {
	return enumUnmarshal(texAnisoNames, b, (*uint32)(a))
}

func (m TexWrapMode) String() string { return enumString(texWrapNames, uint32(m)) }
func (m TexWrapMode) Valid() bool    { return uint32(m) < uint32(len(texWrapNames)) }
func (m TexWrapMode) MarshalText() ([]byte, error) {
	return enumMarshal(texWrapNames, uint32(m))
}
func (m *TexWrapMode) UnmarshalText(b []byte) error {
	return enumUnmarshal(texWrapNames, b, (*uint32)(m))
}

func (f CompareFunc) String() string { return enumString(compareFuncNames, uint32(f)) }
func (f CompareFunc) Valid() bool    { return uint32(f) < uint32(len(compareFuncNames)) }
func (f CompareFunc) MarshalText() ([]byte, error) {
	return enumMarshal(compareFuncNames, uint32(f))
}
func (f *CompareFunc) UnmarshalText(b []byte) error {
	return enumUnmarshal(compareFuncNames, b, (*uint32)(f))
}

func (m CullingMode) String() string { return enumString(cullingModeNames, uint32(m)) }
func (m CullingMode) Valid() bool    { return uint32(m) < uint32(len(cullingModeNames)) }
func (m CullingMode) MarshalText() ([]byte, error) {
	return enumMarshal(cullingModeNames, uint32(m))
}
func (m *CullingMode) UnmarshalText(b []byte) error {
	return enumUnmarshal(cullingModeNames, b, (*uint32)(m))
}

func (f BlendFactor) String() string { return enumString(blendFactorNames, uint32(f)) }
func (f BlendFactor) Valid() bool    { return uint32(f) < uint32(len(blendFactorNames)) }
func (f BlendFactor) MarshalText() ([]byte, error) {
	return enumMarshal(blendFactorNames, uint32(f))
}
func (f *BlendFactor) UnmarshalText(b []byte) error {
	return enumUnmarshal(blendFactorNames, b, (*uint32)(f))
}

func (e BlendEquation) String() string { return enumString(blendEquationNames, uint32(e)) }
func (e BlendEquation) Valid() bool    { return uint32(e) < uint32(len(blendEquationNames)) }
func (e BlendEquation) MarshalText() ([]byte, error) {
	return enumMarshal(blendEquationNames, uint32(e))
}
func (e *BlendEquation) UnmarshalText(b []byte) error {
	return enumUnmarshal(blendEquationNames, b, (*uint32)(e))
}

func (o StencilOp) String() string { return enumString(stencilOpNames, uint32(o)) }
func (o StencilOp) Valid() bool    { return uint32(o) < uint32(len(stencilOpNames)) }
func (o StencilOp) MarshalText() ([]byte, error) {
	return enumMarshal(stencilOpNames, uint32(o))
}
func (o *StencilOp) UnmarshalText(b []byte) error {
	return enumUnmarshal(stencilOpNames, b, (*uint32)(o))
}

func (m PolygonMode) String() string { return enumString(polygonModeNames, uint32(m)) }
func (m PolygonMode) Valid() bool    { return uint32(m) < uint32(len(polygonModeNames)) }
func (m PolygonMode) MarshalText() ([]byte, error) {
	return enumMarshal(polygonModeNames, uint32(m))
}
func (m *PolygonMode) UnmarshalText(b []byte) error {
	return enumUnmarshal(polygonModeNames, b, (*uint32)(m))
}

// RenderFlags is the render state bitfield of a material record.
type RenderFlags uint16

const (
	RenderDepthTest           RenderFlags = 0x0001
	RenderDepthWrite          RenderFlags = 0x0002
	RenderBlend               RenderFlags = 0x0004
	RenderAlphaTest           RenderFlags = 0x0008
	RenderColorMaskR          RenderFlags = 0x0010
	RenderColorMaskG          RenderFlags = 0x0020
	RenderColorMaskB          RenderFlags = 0x0040
	RenderColorMaskA          RenderFlags = 0x0080
	RenderStencilTest         RenderFlags = 0x0100
	RenderPolygonOffset       RenderFlags = 0x0200
	RenderPolygonOffsetPtLine RenderFlags = 0x0400
	RenderTranslucent         RenderFlags = 0x0800

	renderFlagsKnown RenderFlags = 0x0FFF
)

// MaterialFlags is the flags field of a material record.
type MaterialFlags uint16

const (
	MaterialVisible MaterialFlags = 0x0001

	materialFlagsKnown MaterialFlags = 0x0001
)
