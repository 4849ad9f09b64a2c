package rsm

import (
	"errors"
	"fmt"

	"github.com/Faultbox/riomodel/pkg/math"
	"github.com/Faultbox/riomodel/pkg/rmdl"
)

// Conversion errors.
var (
	ErrBadReference = errors.New("RSM index out of range")
	ErrNoRoot       = errors.New("RSM root node not found")
	ErrNodeCycle    = errors.New("RSM node tree contains a cycle")
)

// Options controls conversion.
type Options struct {
	ShaderName  string
	SamplerName string
}

// DefaultOptions returns the names used by the runtime's basic shader.
func DefaultOptions() Options {
	return Options{ShaderName: "basic", SamplerName: "texture0"}
}

// materialKey selects the material of a face. Two-sided faces get a
// culling-free copy of their texture's material.
type materialKey struct {
	texture  int32
	twoSided bool
}

type converter struct {
	src       *Model
	opts      Options
	out       *rmdl.Model
	materials map[materialKey]int32
	visiting  map[*Node]bool
}

// ToModel bakes the node tree under the root into one mesh per node and
// material. Each node's own matrix and offset are applied to its vertices;
// the node's place in the tree becomes the mesh transform. Materials are
// created in first-use order, one per texture and sidedness.
func ToModel(m *Model, opts Options) (*rmdl.Model, error) {
	root := m.Node(m.Root)
	if root == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoRoot, m.Root)
	}
	c := &converter{
		src:       m,
		opts:      opts,
		out:       &rmdl.Model{},
		materials: make(map[materialKey]int32),
		visiting:  make(map[*Node]bool),
	}
	if err := c.node(root, math.Identity()); err != nil {
		return nil, err
	}
	if err := rmdl.ValidateModel(c.out); err != nil {
		return nil, err
	}
	return c.out, nil
}

func (c *converter) node(n *Node, parent math.Mat4) error {
	if c.visiting[n] {
		return fmt.Errorf("%w at %q", ErrNodeCycle, n.Name)
	}
	c.visiting[n] = true
	defer delete(c.visiting, n)

	world := parent.Mul(nodeTransform(n))
	if err := c.meshes(n, world); err != nil {
		return fmt.Errorf("node %q: %w", n.Name, err)
	}
	for _, child := range c.src.Children(n.Name) {
		if err := c.node(child, world); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform places a node in its parent: scale, then rotation, then
// translation. The first rotation keyframe wins over the axis-angle pair.
func nodeTransform(n *Node) math.Mat4 {
	rot := math.QuatIdentity()
	switch axis := math.Vec3Of(n.RotAxis); {
	case len(n.RotKeys) > 0:
		k := n.RotKeys[0].Quat
		rot = math.Quat{X: k[0], Y: k[1], Z: k[2], W: k[3]}.Normalize()
	case axis.Length() > 0:
		rot = math.QuatFromAxisAngle(axis.Normalize(), n.RotAngle)
	}
	t := math.Translate(n.Position[0], n.Position[1], n.Position[2])
	s := math.Scale(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul(rot.ToMat4()).Mul(s)
}

// innerTransform is the node matrix followed by the offset.
func innerTransform(n *Node) math.Mat4 {
	a := n.Matrix
	return math.Mat4{
		a[0], a[1], a[2], 0,
		a[3], a[4], a[5], 0,
		a[6], a[7], a[8], 0,
		n.Offset[0], n.Offset[1], n.Offset[2], 1,
	}
}

func (c *converter) meshes(n *Node, world math.Mat4) error {
	if len(n.Faces) == 0 {
		return nil
	}
	inner := innerTransform(n)
	positions := make([]math.Vec3, len(n.Vertices))
	for i, v := range n.Vertices {
		positions[i] = math.Vec3Of(inner.TransformPoint(v))
	}

	normals, err := c.faceNormals(n, positions)
	if err != nil {
		return err
	}
	var smooth map[smoothKey]math.Vec3
	if c.src.Shading == ShadingSmooth {
		smooth = smoothNormals(n, normals)
	}

	scale, rotate, translate := world.Decompose()
	byMaterial := make(map[int32]*meshBuilder)
	var order []int32
	for fi := range n.Faces {
		f := &n.Faces[fi]
		mat, err := c.material(n, f)
		if err != nil {
			return fmt.Errorf("face %d: %w", fi, err)
		}
		b := byMaterial[mat]
		if b == nil {
			b = newMeshBuilder()
			b.mesh.MaterialIndex = mat
			b.mesh.Scale, b.mesh.Rotate, b.mesh.Translate = scale.Array(), rotate.Array(), translate.Array()
			byMaterial[mat] = b
			order = append(order, mat)
		}
		for k := 0; k < 3; k++ {
			tcID := int(f.TexCoordIDs[k])
			if tcID >= len(n.TexCoords) {
				return fmt.Errorf("face %d: texcoord %d: %w", fi, tcID, ErrBadReference)
			}
			tc := n.TexCoords[tcID]
			normal := normals[fi]
			if smooth != nil {
				normal = smooth[smoothKey{f.VertexIDs[k], f.SmoothGroup}]
			}
			b.add(rmdl.Vertex{
				Position: positions[f.VertexIDs[k]].Array(),
				TexCoord: [2]float32{tc.U, tc.V},
				Normal:   normal.Array(),
			})
		}
	}
	for _, mat := range order {
		c.out.Meshes = append(c.out.Meshes, byMaterial[mat].mesh)
	}
	return nil
}

// faceNormals checks vertex references and returns one normal per face.
func (c *converter) faceNormals(n *Node, positions []math.Vec3) ([]math.Vec3, error) {
	normals := make([]math.Vec3, len(n.Faces))
	for fi := range n.Faces {
		ids := n.Faces[fi].VertexIDs
		for _, id := range ids {
			if int(id) >= len(positions) {
				return nil, fmt.Errorf("face %d: vertex %d: %w", fi, id, ErrBadReference)
			}
		}
		normals[fi] = math.FaceNormal(positions[ids[0]], positions[ids[1]], positions[ids[2]])
	}
	return normals, nil
}

type smoothKey struct {
	vertex uint16
	group  int32
}

// smoothNormals averages the normals of the faces that share a vertex
// within a smoothing group.
func smoothNormals(n *Node, faceNormals []math.Vec3) map[smoothKey]math.Vec3 {
	sums := make(map[smoothKey]math.Vec3)
	for fi := range n.Faces {
		f := &n.Faces[fi]
		for _, id := range f.VertexIDs {
			key := smoothKey{id, f.SmoothGroup}
			sums[key] = sums[key].Add(faceNormals[fi])
		}
	}
	for k, v := range sums {
		sums[k] = v.Normalize()
	}
	return sums
}

// material returns the output material index for a face, creating it on
// first use.
func (c *converter) material(n *Node, f *Face) (int32, error) {
	if int(f.TextureID) >= len(n.TextureIDs) {
		return 0, fmt.Errorf("texture slot %d: %w", f.TextureID, ErrBadReference)
	}
	tex := n.TextureIDs[f.TextureID]
	if tex < 0 || int(tex) >= len(c.src.Textures) {
		return 0, fmt.Errorf("texture %d: %w", tex, ErrBadReference)
	}
	key := materialKey{texture: tex, twoSided: f.TwoSided}
	if i, ok := c.materials[key]; ok {
		return i, nil
	}

	name := c.src.Textures[tex]
	mat := rmdl.NewMaterial(name, c.opts.ShaderName)
	if f.TwoSided {
		mat.CullingMode = rmdl.CullNone
	}
	if c.src.Alpha < 1 {
		mat.Translucent = true
		mat.DepthWrite = false
		mat.BlendConstantColor[3] = rmdl.FloatToChannel(c.src.Alpha)
	}
	t := rmdl.NewTexture(name, c.opts.SamplerName)
	t.WrapX, t.WrapY = rmdl.TexWrapRepeat, rmdl.TexWrapRepeat
	mat.Textures = []rmdl.Texture{t}

	i := int32(len(c.out.Materials))
	c.out.Materials = append(c.out.Materials, mat)
	c.materials[key] = i
	return i, nil
}

// meshBuilder merges identical vertices the way the OBJ reader does.
type meshBuilder struct {
	mesh  rmdl.Mesh
	index map[rmdl.Vertex]uint32
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{mesh: rmdl.NewMesh(), index: make(map[rmdl.Vertex]uint32)}
}

func (b *meshBuilder) add(v rmdl.Vertex) {
	i, ok := b.index[v]
	if !ok {
		i = uint32(len(b.mesh.Vertices))
		b.mesh.Vertices = append(b.mesh.Vertices, v)
		b.index[v] = i
	}
	b.mesh.Indices = append(b.mesh.Indices, i)
}
