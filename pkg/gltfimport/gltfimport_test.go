package gltfimport

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// sceneBuffer holds one triangle:
//
//	0x00 positions  3 x VEC3 float
//	0x24 normals    3 x VEC3 float
//	0x48 texcoords  3 x VEC2 float
//	0x60 indices    3 x uint16 (0, 2, 1), padded to 0x68
func sceneBuffer() string {
	var buf bytes.Buffer
	put := func(v any) { binary.Write(&buf, binary.LittleEndian, v) }
	put([9]float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	put([9]float32{0, 0, 1, 0, 0, 1, 0, 0, 1})
	put([6]float32{0, 0, 1, 0, 0, 1})
	put([4]uint16{0, 2, 1, 0})
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

const sceneViews = `
  "buffers": [{"byteLength": 104, "uri": "BUFFER"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 36},
    {"buffer": 0, "byteOffset": 72, "byteLength": 24},
    {"buffer": 0, "byteOffset": 96, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5126, "count": 3, "type": "VEC2"},
    {"bufferView": 3, "componentType": 5123, "count": 3, "type": "SCALAR"},
    {"bufferView": 3, "componentType": 5123, "count": 2, "type": "SCALAR"}
  ]`

// Root node: scale 2, 90 degrees about Z, move to (1,2,3), carries the
// unindexed mesh 1. Child node: offset (1,0,0), carries mesh 0.
const sceneJSON = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "root", "mesh": 1, "children": [1],
     "translation": [1, 2, 3],
     "rotation": [0, 0, 0.70710677, 0.70710677],
     "scale": [2, 2, 2]},
    {"name": "child", "mesh": 0, "translation": [1, 0, 0]}
  ],
  "meshes": [
    {"primitives": [{"attributes": {"POSITION": 0, "NORMAL": 1, "TEXCOORD_0": 2}, "indices": 3, "material": 0}]},
    {"primitives": [{"attributes": {"POSITION": 0}}]}
  ],
  "materials": [
    {"name": "brick_mat", "doubleSided": true, "alphaMode": "MASK", "alphaCutoff": 0.25,
     "pbrMetallicRoughness": {"baseColorTexture": {"index": 0}}},
    {"alphaMode": "BLEND"}
  ],
  "textures": [{"sampler": 0, "source": 0}],
  "samplers": [{"magFilter": 9728, "minFilter": 9986, "wrapS": 33648, "wrapT": 33071}],
  "images": [{"uri": "textures/brick.png"}],
` + sceneViews + `
}`

func decodeDoc(t *testing.T, js string) *gltf.Document {
	t.Helper()
	js = strings.Replace(js, "BUFFER", sceneBuffer(), 1)
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(strings.NewReader(js)).Decode(doc); err != nil {
		t.Fatalf("decoding glTF: %v", err)
	}
	return doc
}

func near3(a, b [3]float32) bool {
	for i := range a {
		if gomath.Abs(float64(a[i]-b[i])) > 0.001 {
			return false
		}
	}
	return true
}

func TestImport_Scene(t *testing.T) {
	model, err := Import(decodeDoc(t, sceneJSON), DefaultOptions())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(model.Meshes) != 2 || len(model.Materials) != 2 {
		t.Fatalf("got %d meshes, %d materials; want 2, 2", len(model.Meshes), len(model.Materials))
	}

	// Depth first: root mesh, then child mesh.
	root, child := model.Meshes[0], model.Meshes[1]

	halfPi := float32(gomath.Pi / 2)
	for _, m := range []rmdl.Mesh{root, child} {
		if !near3(m.Scale, [3]float32{2, 2, 2}) {
			t.Errorf("scale = %v, want [2 2 2]", m.Scale)
		}
		if !near3(m.Rotate, [3]float32{0, 0, halfPi}) {
			t.Errorf("rotate = %v, want [0 0 pi/2]", m.Rotate)
		}
	}
	if !near3(root.Translate, [3]float32{1, 2, 3}) {
		t.Errorf("root translate = %v, want [1 2 3]", root.Translate)
	}
	// (1,0,0) scaled by 2 and turned onto +Y.
	if !near3(child.Translate, [3]float32{1, 4, 3}) {
		t.Errorf("child translate = %v, want [1 4 3]", child.Translate)
	}

	if child.MaterialIndex != 0 {
		t.Errorf("child material = %d, want 0", child.MaterialIndex)
	}
	if root.MaterialIndex != rmdl.NoMaterial {
		t.Errorf("root material = %d, want none", root.MaterialIndex)
	}

	if want := []uint32{0, 2, 1}; len(child.Indices) != 3 || child.Indices[0] != want[0] || child.Indices[1] != want[1] || child.Indices[2] != want[2] {
		t.Errorf("child indices = %v, want %v", child.Indices, want)
	}
	if v := child.Vertices[2]; v.Position != [3]float32{0, 1, 0} || v.TexCoord != [2]float32{0, 1} || v.Normal != [3]float32{0, 0, 1} {
		t.Errorf("child vertex 2 = %+v", v)
	}
}

func TestImport_FlatNormals(t *testing.T) {
	model, err := Import(decodeDoc(t, sceneJSON), DefaultOptions())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	root := model.Meshes[0]
	if len(root.Vertices) != 3 || len(root.Indices) != 3 {
		t.Fatalf("got %d vertices, %d indices; want 3, 3", len(root.Vertices), len(root.Indices))
	}
	for i, v := range root.Vertices {
		if v.Normal != [3]float32{0, 0, 1} {
			t.Errorf("vertex %d normal = %v, want [0 0 1]", i, v.Normal)
		}
	}
}

func TestImport_Materials(t *testing.T) {
	model, err := Import(decodeDoc(t, sceneJSON), Options{ShaderName: "lit", SamplerName: "diffuse"})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	mask := model.Materials[0]
	if mask.Name != "brick_mat" || mask.ShaderName != "lit" {
		t.Errorf("names = %q/%q", mask.Name, mask.ShaderName)
	}
	if mask.CullingMode != rmdl.CullNone {
		t.Errorf("culling = %v, want NONE", mask.CullingMode)
	}
	if !mask.AlphaTest || mask.AlphaTestFunc != rmdl.CompareGEqual || mask.AlphaTestRef != 0.25 {
		t.Errorf("alpha test = %v %v %v", mask.AlphaTest, mask.AlphaTestFunc, mask.AlphaTestRef)
	}
	if mask.BlendEnable || mask.Translucent {
		t.Error("mask material should not blend")
	}

	if len(mask.Textures) != 1 {
		t.Fatalf("got %d textures, want 1", len(mask.Textures))
	}
	tex := mask.Textures[0]
	want := rmdl.NewTexture("brick", "diffuse")
	want.MagFilter = rmdl.TexFilterPoint
	want.MinFilter = rmdl.TexFilterPoint
	want.MipFilter = rmdl.TexMipFilterLinear
	want.WrapX = rmdl.TexWrapMirror
	want.WrapY = rmdl.TexWrapClamp
	if tex != want {
		t.Errorf("texture = %+v\nwant %+v", tex, want)
	}

	blend := model.Materials[1]
	if blend.Name != "material_1" {
		t.Errorf("unnamed material = %q, want material_1", blend.Name)
	}
	if !blend.Translucent || !blend.BlendEnable || blend.DepthWrite {
		t.Errorf("blend material state = translucent %v blend %v depthWrite %v",
			blend.Translucent, blend.BlendEnable, blend.DepthWrite)
	}
	if blend.CullingMode != rmdl.CullBack {
		t.Errorf("single sided culling = %v, want BACK", blend.CullingMode)
	}
}

func TestImport_EncodesAndDecodes(t *testing.T) {
	model, err := Import(decodeDoc(t, sceneJSON), DefaultOptions())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	data, err := rmdl.Encode(model, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := rmdl.Decode(data, binary.LittleEndian)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(back.Meshes) != 2 || back.Materials[0].Textures[0].Name != "brick" {
		t.Errorf("decoded model does not match import")
	}
}

func TestImport_NoScenes(t *testing.T) {
	js := `{
  "asset": {"version": "2.0"},
  "nodes": [
    {"children": [1]},
    {"mesh": 0},
    {"mesh": 0, "translation": [5, 0, 0]}
  ],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 3}]}],
` + sceneViews + `
}`
	model, err := Import(decodeDoc(t, js), DefaultOptions())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	// Roots are nodes 0 and 2; node 1 is reached through node 0.
	if len(model.Meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(model.Meshes))
	}
	if !near3(model.Meshes[1].Translate, [3]float32{5, 0, 0}) {
		t.Errorf("second root translate = %v", model.Meshes[1].Translate)
	}
}

func TestImport_NodeMatrix(t *testing.T) {
	js := `{
  "asset": {"version": "2.0"},
  "nodes": [{"mesh": 0, "matrix": [3,0,0,0, 0,3,0,0, 0,0,3,0, 7,8,9,1]}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
` + sceneViews + `
}`
	model, err := Import(decodeDoc(t, js), DefaultOptions())
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	m := model.Meshes[0]
	if !near3(m.Scale, [3]float32{3, 3, 3}) || !near3(m.Translate, [3]float32{7, 8, 9}) || !near3(m.Rotate, [3]float32{}) {
		t.Errorf("transform = %v %v %v", m.Scale, m.Rotate, m.Translate)
	}
}

func TestImport_Errors(t *testing.T) {
	mesh := func(prim string) string {
		return `{
  "asset": {"version": "2.0"},
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [` + prim + `]}],
` + sceneViews + `
}`
	}
	tests := []struct {
		name    string
		js      string
		wantErr error
	}{
		{"points", mesh(`{"attributes": {"POSITION": 0}, "mode": 0}`), ErrPrimitiveMode},
		{"no positions", mesh(`{"attributes": {"NORMAL": 1}}`), ErrNoPositions},
		{"missing accessor", mesh(`{"attributes": {"POSITION": 9}}`), ErrBadReference},
		{"missing material", mesh(`{"attributes": {"POSITION": 0}, "material": 4}`), ErrBadReference},
		{"index count", mesh(`{"attributes": {"POSITION": 0}, "indices": 4}`), ErrIndexCount},
		{"node cycle", `{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"children": [1]}, {"children": [0]}],
` + sceneViews + `
}`, ErrNodeCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(decodeDoc(t, tt.js), DefaultOptions())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.gltf")
	js := strings.Replace(sceneJSON, "BUFFER", sceneBuffer(), 1)
	if err := os.WriteFile(path, []byte(js), 0o644); err != nil {
		t.Fatal(err)
	}
	model, err := ImportFile(path, DefaultOptions())
	if err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}
	if len(model.Meshes) != 2 {
		t.Errorf("got %d meshes, want 2", len(model.Meshes))
	}

	if _, err := ImportFile(filepath.Join(t.TempDir(), "missing.gltf"), DefaultOptions()); err == nil {
		t.Error("ImportFile of a missing file succeeded")
	}
}

func TestImageName(t *testing.T) {
	tests := []struct {
		img  gltf.Image
		want string
	}{
		{gltf.Image{Name: "named", URI: "other.png"}, "named"},
		{gltf.Image{URI: "dir/wood.jpg"}, "wood"},
		{gltf.Image{URI: "data:image/png;base64,AAAA"}, ""},
		{gltf.Image{}, ""},
	}
	for _, tt := range tests {
		if got := imageName(&tt.img); got != tt.want {
			t.Errorf("imageName(%+v) = %q, want %q", tt.img, got, tt.want)
		}
	}
}
