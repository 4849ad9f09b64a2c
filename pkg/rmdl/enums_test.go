package rmdl

import (
	"errors"
	"testing"
)

func TestEnum_String(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"compare", CompareLEqual.String(), "LEQUAL"},
		{"cull", CullBack.String(), "BACK"},
		{"blend factor", BlendOneMinusSrcAlpha.String(), "ONE_MINUS_SRC_ALPHA"},
		{"blend equation", BlendFuncReverseSub.String(), "REVERSE_SUB"},
		{"stencil", StencilDecrWrap.String(), "DECR_WRAP"},
		{"polygon", PolygonFill.String(), "FILL"},
		{"filter", TexFilterPoint.String(), "POINT"},
		{"mip filter", TexMipFilterNone.String(), "NONE"},
		{"aniso", TexAniso16To1.String(), "16:1"},
		{"wrap", TexWrapMirrorOnceHalfBorder.String(), "MIRROR_ONCE_HALF_BORDER"},
		{"unknown", CullingMode(9).String(), "Unknown(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEnum_Valid(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		want  bool
	}{
		{"last compare", CompareAlways.Valid(), true},
		{"past compare", CompareFunc(8).Valid(), false},
		{"last blend factor", BlendOneMinusConstantAlpha.Valid(), true},
		{"past blend factor", BlendFactor(15).Valid(), false},
		{"past blend equation", BlendEquation(5).Valid(), false},
		{"past aniso", TexAnisoRatio(5).Valid(), false},
		{"past wrap", TexWrapMode(8).Valid(), false},
		{"past mip filter", TexMipFilter(3).Valid(), false},
		{"past polygon", PolygonMode(3).Valid(), false},
		{"huge stencil", StencilOp(0xFFFFFFFF).Valid(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.valid != tt.want {
				t.Errorf("Valid() = %v, want %v", tt.valid, tt.want)
			}
		})
	}
}

func TestEnum_Text(t *testing.T) {
	var f CompareFunc
	if err := f.UnmarshalText([]byte(" gequal ")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if f != CompareGEqual {
		t.Errorf("got %v, want GEQUAL", f)
	}
	if err := f.UnmarshalText([]byte("sometimes")); !errors.Is(err, ErrInvalidEnum) {
		t.Errorf("got error %v, want %v", err, ErrInvalidEnum)
	}

	var a TexAnisoRatio
	if err := a.UnmarshalText([]byte("4:1")); err != nil || a != TexAniso4To1 {
		t.Errorf("aniso = %v, err %v", a, err)
	}

	text, err := TexWrapClampBorder.MarshalText()
	if err != nil || string(text) != "CLAMP_BORDER" {
		t.Errorf("MarshalText = %q, %v", text, err)
	}
	if _, err := BlendEquation(42).MarshalText(); !errors.Is(err, ErrInvalidEnum) {
		t.Errorf("got error %v, want %v", err, ErrInvalidEnum)
	}
}
