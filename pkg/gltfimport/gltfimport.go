// Package gltfimport converts glTF 2.0 scenes into model containers.
//
// Every triangle primitive becomes one mesh. Node transforms are baked
// down the hierarchy and stored as the mesh's scale, Euler rotation and
// translation; vertex data is copied untransformed. Materials keep the
// glTF render state that has a fixed-function equivalent: double sided,
// alpha mode and the base color texture with its sampler.
package gltfimport

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/riomodel/pkg/math"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// Import errors.
var (
	ErrPrimitiveMode = errors.New("primitive is not a triangle list")
	ErrNoPositions   = errors.New("primitive has no POSITION attribute")
	ErrIndexCount    = errors.New("index count is not a multiple of 3")
	ErrIndexRange    = errors.New("index out of range")
	ErrBadReference  = errors.New("reference out of range")
	ErrNodeCycle     = errors.New("node hierarchy has a cycle")
)

// Options controls names the glTF document does not carry.
type Options struct {
	ShaderName  string // shader bound to every imported material
	SamplerName string // sampler uniform of the base color texture
}

// DefaultOptions returns the names used by the stock model shader.
func DefaultOptions() Options {
	return Options{
		ShaderName:  "basic",
		SamplerName: "texture0",
	}
}

// ImportFile opens a .gltf or .glb file and imports its default scene.
func ImportFile(file string, opts Options) (*rmdl.Model, error) {
	doc, err := gltf.Open(file)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	return Import(doc, opts)
}

// Import converts the default scene of doc. Documents without scenes
// import every root node. Materials are imported in document order, so
// glTF material i becomes model material i.
func Import(doc *gltf.Document, opts Options) (*rmdl.Model, error) {
	model := &rmdl.Model{}
	for i, mat := range doc.Materials {
		m, err := importMaterial(doc, i, mat, opts)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		model.Materials = append(model.Materials, m)
	}

	roots, err := sceneRoots(doc)
	if err != nil {
		return nil, err
	}
	w := walker{doc: doc, model: model, visiting: make(map[int]bool)}
	for _, n := range roots {
		if err := w.node(n, math.Identity()); err != nil {
			return nil, err
		}
	}

	if err := rmdl.ValidateModel(model); err != nil {
		return nil, err
	}
	return model, nil
}

func sceneRoots(doc *gltf.Document) ([]int, error) {
	if len(doc.Scenes) > 0 {
		s := 0
		if doc.Scene != nil {
			s = int(*doc.Scene)
		}
		if s < 0 || s >= len(doc.Scenes) {
			return nil, fmt.Errorf("scene %d: %w", s, ErrBadReference)
		}
		roots := make([]int, 0, len(doc.Scenes[s].Nodes))
		for _, n := range doc.Scenes[s].Nodes {
			roots = append(roots, int(n))
		}
		return roots, nil
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if int(c) >= 0 && int(c) < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

type walker struct {
	doc      *gltf.Document
	model    *rmdl.Model
	visiting map[int]bool
}

func (w *walker) node(index int, parent math.Mat4) error {
	if index < 0 || index >= len(w.doc.Nodes) {
		return fmt.Errorf("node %d: %w", index, ErrBadReference)
	}
	if w.visiting[index] {
		return fmt.Errorf("node %d: %w", index, ErrNodeCycle)
	}
	w.visiting[index] = true
	defer delete(w.visiting, index)

	n := w.doc.Nodes[index]
	world := parent.Mul(localTransform(n))

	if n.Mesh != nil {
		if err := w.mesh(int(*n.Mesh), world); err != nil {
			return fmt.Errorf("node %d: %w", index, err)
		}
	}
	for _, c := range n.Children {
		if err := w.node(int(c), world); err != nil {
			return err
		}
	}
	return nil
}

// localTransform returns the node matrix, or T * R * S when the node uses
// separate components.
func localTransform(n *gltf.Node) math.Mat4 {
	var m math.Mat4
	for i, v := range n.MatrixOrDefault() {
		m[i] = float32(v)
	}
	if m != math.Identity() {
		return m
	}

	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := math.Quat{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	return math.SRT(
		math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
		q.Euler(),
		math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
	)
}

func (w *walker) mesh(index int, world math.Mat4) error {
	if index < 0 || index >= len(w.doc.Meshes) {
		return fmt.Errorf("mesh %d: %w", index, ErrBadReference)
	}
	scale, rotate, translate := world.Decompose()

	for p, prim := range w.doc.Meshes[index].Primitives {
		mesh, err := w.primitive(prim)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", index, p, err)
		}
		mesh.Scale = scale.Array()
		mesh.Rotate = rotate.Array()
		mesh.Translate = translate.Array()
		w.model.Meshes = append(w.model.Meshes, mesh)
	}
	return nil
}

func (w *walker) accessor(index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(w.doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", index, ErrBadReference)
	}
	return w.doc.Accessors[index], nil
}

func (w *walker) primitive(prim *gltf.Primitive) (rmdl.Mesh, error) {
	mesh := rmdl.NewMesh()
	if prim.Mode != gltf.PrimitiveTriangles {
		return mesh, ErrPrimitiveMode
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return mesh, ErrNoPositions
	}
	acr, err := w.accessor(int(posIdx))
	if err != nil {
		return mesh, err
	}
	positions, err := modeler.ReadPosition(w.doc, acr, nil)
	if err != nil {
		return mesh, fmt.Errorf("reading positions: %w", err)
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if acr, err = w.accessor(int(idx)); err != nil {
			return mesh, err
		}
		if normals, err = modeler.ReadNormal(w.doc, acr, nil); err != nil {
			return mesh, fmt.Errorf("reading normals: %w", err)
		}
	}
	var texCoords [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if acr, err = w.accessor(int(idx)); err != nil {
			return mesh, err
		}
		if texCoords, err = modeler.ReadTextureCoord(w.doc, acr, nil); err != nil {
			return mesh, fmt.Errorf("reading texture coordinates: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if acr, err = w.accessor(int(*prim.Indices)); err != nil {
			return mesh, err
		}
		if indices, err = modeler.ReadIndices(w.doc, acr, nil); err != nil {
			return mesh, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return mesh, fmt.Errorf("%w: %d", ErrIndexCount, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return mesh, fmt.Errorf("%w: %d of %d vertices", ErrIndexRange, idx, len(positions))
		}
	}

	vertices := make([]rmdl.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = p
		if i < len(normals) {
			vertices[i].Normal = normals[i]
		}
		if i < len(texCoords) {
			vertices[i].TexCoord = texCoords[i]
		}
	}
	if normals == nil {
		vertices, indices = flatShade(vertices, indices)
	}
	if len(vertices) > 0 {
		mesh.Vertices = vertices
		mesh.Indices = indices
	}

	if prim.Material != nil {
		mi := int(*prim.Material)
		if mi < 0 || mi >= len(w.model.Materials) {
			return mesh, fmt.Errorf("material %d: %w", mi, ErrBadReference)
		}
		mesh.MaterialIndex = int32(mi)
	}
	return mesh, nil
}

// flatShade gives every triangle its own three vertices carrying the face
// normal.
func flatShade(vertices []rmdl.Vertex, indices []uint32) ([]rmdl.Vertex, []uint32) {
	outV := make([]rmdl.Vertex, 0, len(indices))
	outI := make([]uint32, 0, len(indices))
	for t := 0; t+2 < len(indices); t += 3 {
		a, b, c := vertices[indices[t]], vertices[indices[t+1]], vertices[indices[t+2]]
		n := math.FaceNormal(math.Vec3Of(a.Position), math.Vec3Of(b.Position), math.Vec3Of(c.Position)).Array()
		for _, v := range [3]rmdl.Vertex{a, b, c} {
			v.Normal = n
			outI = append(outI, uint32(len(outV)))
			outV = append(outV, v)
		}
	}
	return outV, outI
}

func importMaterial(doc *gltf.Document, index int, mat *gltf.Material, opts Options) (rmdl.Material, error) {
	name := mat.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", index)
	}
	m := rmdl.NewMaterial(name, opts.ShaderName)

	if mat.DoubleSided {
		m.CullingMode = rmdl.CullNone
	}
	switch mat.AlphaMode {
	case gltf.AlphaOpaque:
		m.BlendEnable = false
	case gltf.AlphaBlend:
		m.Translucent = true
		m.DepthWrite = false
	case gltf.AlphaMask:
		m.BlendEnable = false
		m.AlphaTest = true
		m.AlphaTestFunc = rmdl.CompareGEqual
		m.AlphaTestRef = 0.5
		if mat.AlphaCutoff != nil {
			m.AlphaTestRef = float32(*mat.AlphaCutoff)
		}
	}

	pbr := mat.PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return m, nil
	}
	tex, err := importTexture(doc, int(pbr.BaseColorTexture.Index), opts)
	if err != nil {
		return m, fmt.Errorf("base color texture: %w", err)
	}
	m.Textures = []rmdl.Texture{tex}
	return m, nil
}

func importTexture(doc *gltf.Document, index int, opts Options) (rmdl.Texture, error) {
	if index < 0 || index >= len(doc.Textures) {
		return rmdl.Texture{}, fmt.Errorf("texture %d: %w", index, ErrBadReference)
	}
	src := doc.Textures[index]

	name := fmt.Sprintf("texture_%d", index)
	if src.Source != nil {
		si := int(*src.Source)
		if si < 0 || si >= len(doc.Images) {
			return rmdl.Texture{}, fmt.Errorf("image %d: %w", si, ErrBadReference)
		}
		if n := imageName(doc.Images[si]); n != "" {
			name = n
		}
	}

	tex := rmdl.NewTexture(name, opts.SamplerName)
	// glTF samplers repeat unless told otherwise.
	tex.WrapX, tex.WrapY = rmdl.TexWrapRepeat, rmdl.TexWrapRepeat
	if src.Sampler == nil {
		return tex, nil
	}
	si := int(*src.Sampler)
	if si < 0 || si >= len(doc.Samplers) {
		return rmdl.Texture{}, fmt.Errorf("sampler %d: %w", si, ErrBadReference)
	}
	s := doc.Samplers[si]

	if s.MagFilter == gltf.MagNearest {
		tex.MagFilter = rmdl.TexFilterPoint
	}
	switch s.MinFilter {
	case gltf.MinNearest:
		tex.MinFilter, tex.MipFilter = rmdl.TexFilterPoint, rmdl.TexMipFilterNone
	case gltf.MinLinear:
		tex.MinFilter, tex.MipFilter = rmdl.TexFilterLinear, rmdl.TexMipFilterNone
	case gltf.MinNearestMipMapNearest:
		tex.MinFilter, tex.MipFilter = rmdl.TexFilterPoint, rmdl.TexMipFilterPoint
	case gltf.MinLinearMipMapNearest:
		tex.MinFilter, tex.MipFilter = rmdl.TexFilterLinear, rmdl.TexMipFilterPoint
	case gltf.MinNearestMipMapLinear:
		tex.MinFilter, tex.MipFilter = rmdl.TexFilterPoint, rmdl.TexMipFilterLinear
	case gltf.MinLinearMipMapLinear:
		tex.MinFilter, tex.MipFilter = rmdl.TexFilterLinear, rmdl.TexMipFilterLinear
	}
	tex.WrapX = wrapMode(s.WrapS)
	tex.WrapY = wrapMode(s.WrapT)
	return tex, nil
}

func wrapMode(w gltf.WrappingMode) rmdl.TexWrapMode {
	switch w {
	case gltf.WrapClampToEdge:
		return rmdl.TexWrapClamp
	case gltf.WrapMirroredRepeat:
		return rmdl.TexWrapMirror
	}
	return rmdl.TexWrapRepeat
}

// imageName prefers the image name, then the file name of a non-data URI
// without its extension.
func imageName(img *gltf.Image) string {
	if img.Name != "" {
		return img.Name
	}
	if img.URI == "" || strings.HasPrefix(img.URI, "data:") {
		return ""
	}
	base := path.Base(img.URI)
	return strings.TrimSuffix(base, path.Ext(base))
}
