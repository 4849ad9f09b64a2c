package manifest

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/riomodel/pkg/encoding"
	"github.com/Faultbox/riomodel/pkg/rmdl"
	"github.com/Faultbox/riomodel/pkg/rsm"
)

const triangleOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1
`

const barkYAML = `
materials:
  - name: bark
    shader: tree
    cull: NONE
    depth_func: LESS
    color_mask: rgb
    alpha_test: {func: GEQUAL, ref: 0.5}
    textures:
      - name: bark_diffuse
        wrap: REPEAT
        wrap_z: CLAMP
        max_aniso: "4:1"
        border_color: [255, 0, 0, 255]
  - name: leaves
    translucent: true
    blend:
      src_rgb: ONE
      dst_rgb: ONE
      equation_a: MAX
    stencil:
      func: EQUAL
      ref: 3
      zpass: REPLACE
meshes:
  - source: tri.obj
    material: bark
  - source: tri.obj
    material: leaves
    scale: [2, 2, 2]
    translate: [0, 5, 0]
`

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func defaultBuild(dir string) BuildOptions {
	return BuildOptions{BaseDir: dir, ShaderName: "basic", SamplerName: "texture0"}
}

func TestLoad_YAML(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"tree.yaml": []byte(barkYAML)})
	man, err := Load(filepath.Join(dir, "tree.yaml"), "utf-8")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(man.Materials) != 2 || len(man.Meshes) != 2 {
		t.Fatalf("got %d materials, %d meshes", len(man.Materials), len(man.Meshes))
	}

	bark := man.Materials[0]
	if bark.Cull == nil || *bark.Cull != rmdl.CullNone {
		t.Errorf("cull = %v, want NONE", bark.Cull)
	}
	if bark.AlphaTest == nil || bark.AlphaTest.Func != rmdl.CompareGEqual {
		t.Errorf("alpha test = %+v", bark.AlphaTest)
	}
	tex := bark.Textures[0]
	if tex.MaxAniso == nil || *tex.MaxAniso != rmdl.TexAniso4To1 {
		t.Errorf("max aniso = %v, want 4:1", tex.MaxAniso)
	}
	if tex.MagFilter != nil {
		t.Error("absent key should stay nil")
	}
}

func TestLoad_JSON(t *testing.T) {
	js := `{
  "materials": [{"name": "stone", "depth_func": "ALWAYS", "textures": [{"name": "stone_d", "mip_filter": "NONE"}]}],
  "meshes": [{"source": "tri.obj", "material": "stone", "rotate": [0, 1.5, 0]}]
}`
	dir := writeFiles(t, map[string][]byte{"stone.json": []byte(js)})
	man, err := Load(filepath.Join(dir, "stone.json"), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f := man.Materials[0].DepthFunc; f == nil || *f != rmdl.CompareAlways {
		t.Errorf("depth func = %v, want ALWAYS", f)
	}
	if m := man.Materials[0].Textures[0].MipFilter; m == nil || *m != rmdl.TexMipFilterNone {
		t.Errorf("mip filter = %v, want NONE", m)
	}
	if r := man.Meshes[0].Rotate; r == nil || r[1] != 1.5 {
		t.Errorf("rotate = %v", r)
	}
}

func TestLoad_Encoding(t *testing.T) {
	src := "materials:\n  - name: 木の皮\n"
	data, err := encoding.FromUTF8(src, "shift-jis")
	if err != nil {
		t.Fatal(err)
	}
	dir := writeFiles(t, map[string][]byte{"sjis.yml": data})

	man, err := Load(filepath.Join(dir, "sjis.yml"), "shift-jis")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if man.Materials[0].Name != "木の皮" {
		t.Errorf("name = %q, want 木の皮", man.Materials[0].Name)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"unknown extension", "m.toml", "", ErrUnknownFormat},
		{"unknown enum yaml", "m.yaml", "materials:\n  - name: a\n    cull: SIDEWAYS\n", rmdl.ErrInvalidEnum},
		{"unknown enum json", "m.json", `{"materials": [{"name": "a", "depth_func": "SOMETIMES"}]}`, nil},
		{"unknown key yaml", "m.yaml", "materials:\n  - name: a\n    glow: true\n", nil},
		{"unknown key json", "m.json", `{"shaders": []}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string][]byte{tt.file: []byte(tt.content)})
			_, err := Load(filepath.Join(dir, tt.file), "utf-8")
			if err == nil {
				t.Fatal("Load succeeded")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaterialSpec(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{"tree.yaml": []byte(barkYAML)})
	man, err := Load(filepath.Join(dir, "tree.yaml"), "utf-8")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bark, err := man.Materials[0].Material("basic", "texture0")
	if err != nil {
		t.Fatalf("Material failed: %v", err)
	}
	want := rmdl.NewMaterial("bark", "tree")
	want.CullingMode = rmdl.CullNone
	want.DepthFunc = rmdl.CompareLess
	want.ColorMaskA = false
	want.AlphaTest = true
	want.AlphaTestFunc = rmdl.CompareGEqual
	want.AlphaTestRef = 0.5
	tex := rmdl.NewTexture("bark_diffuse", "texture0")
	tex.WrapX, tex.WrapY = rmdl.TexWrapRepeat, rmdl.TexWrapRepeat
	tex.MaxAniso = rmdl.TexAniso4To1
	tex.BorderColor = [4]uint8{255, 0, 0, 255}
	want.Textures = []rmdl.Texture{tex}
	if !reflect.DeepEqual(bark, want) {
		t.Errorf("bark = %+v\nwant %+v", bark, want)
	}

	leaves, err := man.Materials[1].Material("basic", "texture0")
	if err != nil {
		t.Fatalf("Material failed: %v", err)
	}
	if leaves.ShaderName != "basic" {
		t.Errorf("default shader = %q", leaves.ShaderName)
	}
	if !leaves.Translucent || !leaves.BlendEnable {
		t.Error("leaves should be translucent and blended")
	}
	if leaves.BlendFactorSrcRGB != rmdl.BlendOne || leaves.BlendFactorDstRGB != rmdl.BlendOne ||
		leaves.BlendFactorSrcA != rmdl.BlendSrcAlpha || leaves.BlendEquationA != rmdl.BlendFuncMax {
		t.Errorf("blend state = %v %v %v %v", leaves.BlendFactorSrcRGB, leaves.BlendFactorDstRGB,
			leaves.BlendFactorSrcA, leaves.BlendEquationA)
	}
	if !leaves.StencilTest || leaves.StencilTestFunc != rmdl.CompareEqual || leaves.StencilTestRef != 3 ||
		leaves.StencilOpZPass != rmdl.StencilReplace || leaves.StencilOpFail != rmdl.StencilKeep ||
		leaves.StencilTestMask != 0xFFFFFFFF {
		t.Errorf("stencil state = %+v", leaves)
	}

	bad := "RGBX"
	if _, err := (&MaterialSpec{Name: "x", ColorMask: &bad}).Material("basic", "s"); !errors.Is(err, ErrColorMask) {
		t.Errorf("got error %v, want ErrColorMask", err)
	}
}

func TestBuild_OBJ(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"tree.yaml": []byte(barkYAML),
		"tri.obj":   []byte(triangleOBJ),
	})
	man, err := Load(filepath.Join(dir, "tree.yaml"), "utf-8")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	model, err := Build(man, defaultBuild(dir))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(model.Meshes) != 2 || len(model.Materials) != 2 {
		t.Fatalf("got %d meshes, %d materials", len(model.Meshes), len(model.Materials))
	}
	if model.Meshes[0].MaterialIndex != 0 || model.Meshes[1].MaterialIndex != 1 {
		t.Errorf("material indices = %d, %d", model.Meshes[0].MaterialIndex, model.Meshes[1].MaterialIndex)
	}
	if model.Meshes[0].Scale != [3]float32{1, 1, 1} {
		t.Errorf("unplaced mesh scale = %v", model.Meshes[0].Scale)
	}
	placed := model.Meshes[1]
	if !near3(placed.Scale, [3]float32{2, 2, 2}) || !near3(placed.Translate, [3]float32{0, 5, 0}) {
		t.Errorf("placed mesh = scale %v translate %v", placed.Scale, placed.Translate)
	}

	if _, err := rmdl.Encode(model, binary.BigEndian); err != nil {
		t.Errorf("built model does not encode: %v", err)
	}
}

func TestBuild_Errors(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"tri.obj": []byte(triangleOBJ),
		"bad.rsm": []byte("XRSM\x01\x05"),
	})
	tests := []struct {
		name    string
		man     Manifest
		wantErr error
	}{
		{"unknown material", Manifest{Meshes: []MeshSpec{{Source: "tri.obj", Material: "glass"}}}, ErrUnknownMaterial},
		{"duplicate", Manifest{Materials: []MaterialSpec{{Name: "a"}, {Name: "a"}}}, ErrDuplicateName},
		{"no source", Manifest{Meshes: []MeshSpec{{}}}, ErrNoSource},
		{"bad source type", Manifest{Meshes: []MeshSpec{{Source: "tri.fbx"}}}, ErrUnknownFormat},
		{"missing source", Manifest{Meshes: []MeshSpec{{Source: "gone.obj"}}}, os.ErrNotExist},
		{"bad rsm", Manifest{Meshes: []MeshSpec{{Source: "bad.rsm"}}}, rsm.ErrInvalidMagic},
		{"bad name", Manifest{Materials: []MaterialSpec{{Name: "nul\x00"}}}, rmdl.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(&tt.man, defaultBuild(dir))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// triangleGLTF is a one-triangle scene whose node moves it to (0,0,4) and
// whose primitive uses a material of its own.
func triangleGLTF() []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, [9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return []byte(`{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0, "translation": [0, 0, 4]}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "material": 0}]}],
  "materials": [{"name": "gltf_mat", "doubleSided": true}],
  "buffers": [{"byteLength": 36, "uri": "` + uri + `"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}]
}`)
}

func TestBuild_GLTF(t *testing.T) {
	dir := writeFiles(t, map[string][]byte{
		"tri.obj":   []byte(triangleOBJ),
		"tri.gltf":  triangleGLTF(),
		"own.yaml":  []byte("materials:\n  - name: first\nmeshes:\n  - source: tri.obj\n    material: first\n  - source: tri.gltf\n    translate: [1, 0, 0]\n"),
		"over.yaml": []byte("materials:\n  - name: first\nmeshes:\n  - source: tri.gltf\n    material: first\n"),
	})

	// glTF materials follow the manifest ones and indices are shifted.
	man, err := Load(filepath.Join(dir, "own.yaml"), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	model, err := Build(man, defaultBuild(dir))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(model.Materials) != 2 || model.Materials[1].Name != "gltf_mat" {
		t.Fatalf("materials = %+v", model.Materials)
	}
	if model.Materials[1].CullingMode != rmdl.CullNone {
		t.Error("glTF material lost double sided state")
	}
	g := model.Meshes[1]
	if g.MaterialIndex != 1 {
		t.Errorf("glTF mesh material = %d, want 1", g.MaterialIndex)
	}
	// Node translation (0,0,4) under manifest translation (1,0,0).
	if !near3(g.Translate, [3]float32{1, 0, 4}) {
		t.Errorf("glTF mesh translate = %v, want [1 0 4]", g.Translate)
	}

	// An explicit material replaces the imported ones.
	man, err = Load(filepath.Join(dir, "over.yaml"), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	model, err = Build(man, defaultBuild(dir))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(model.Materials) != 1 || model.Meshes[0].MaterialIndex != 0 {
		t.Errorf("override: %d materials, mesh material %d", len(model.Materials), model.Meshes[0].MaterialIndex)
	}
}

func TestDump(t *testing.T) {
	mat := rmdl.NewMaterial("stone", "basic")
	mat.Textures = []rmdl.Texture{rmdl.NewTexture("stone_d", "texture0")}
	model := &rmdl.Model{Materials: []rmdl.Material{mat}}

	out, err := Dump(model)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	s := string(out)
	for _, want := range []string{`"stone"`, `"LEQUAL"`, `"BACK"`, `"CLAMP"`, `"1:1"`, `"ONE_MINUS_SRC_ALPHA"`} {
		if !strings.Contains(s, want) {
			t.Errorf("dump is missing %s", want)
		}
	}
}

func near3(a, b [3]float32) bool {
	for i := range a {
		if gomath.Abs(float64(a[i]-b[i])) > 0.001 {
			return false
		}
	}
	return true
}
