package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Faultbox/riomodel/pkg/gltfimport"
	"github.com/Faultbox/riomodel/pkg/math"
	"github.com/Faultbox/riomodel/pkg/obj"
	"github.com/Faultbox/riomodel/pkg/rmdl"
	"github.com/Faultbox/riomodel/pkg/rsm"
)

// BuildOptions supplies the names a manifest may leave out.
type BuildOptions struct {
	BaseDir       string // sources are resolved against it
	ShaderName    string
	SamplerName   string
	ModelEncoding string // encoding of names inside RSM sources
}

// Build loads every mesh source and assembles the model. Manifest
// materials come first, in order; materials brought in by glTF or RSM
// sources without an explicit material follow. The result is validated.
func Build(man *Manifest, opts BuildOptions) (*rmdl.Model, error) {
	model := &rmdl.Model{}
	for i := range man.Materials {
		spec := &man.Materials[i]
		if model.MaterialByName(spec.Name) >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, spec.Name)
		}
		mat, err := spec.Material(opts.ShaderName, opts.SamplerName)
		if err != nil {
			return nil, err
		}
		model.Materials = append(model.Materials, mat)
	}

	for i := range man.Meshes {
		if err := addMeshes(model, &man.Meshes[i], opts); err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
	}

	if err := rmdl.ValidateModel(model); err != nil {
		return nil, err
	}
	return model, nil
}

func addMeshes(model *rmdl.Model, spec *MeshSpec, opts BuildOptions) error {
	if spec.Source == "" {
		return ErrNoSource
	}
	matIndex := rmdl.NoMaterial
	if spec.Material != "" {
		i := model.MaterialByName(spec.Material)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrUnknownMaterial, spec.Material)
		}
		matIndex = int32(i)
	}

	src := spec.Source
	if !filepath.IsAbs(src) {
		src = filepath.Join(opts.BaseDir, src)
	}

	var meshes []rmdl.Mesh
	switch strings.ToLower(filepath.Ext(src)) {
	case ".obj":
		m, err := obj.ParseMesh(src)
		if err != nil {
			return err
		}
		m.MaterialIndex = matIndex
		meshes = append(meshes, m)

	case ".gltf", ".glb":
		scene, err := gltfimport.ImportFile(src, gltfimport.Options{
			ShaderName:  opts.ShaderName,
			SamplerName: opts.SamplerName,
		})
		if err != nil {
			return err
		}
		meshes = appendScene(model, scene, matIndex)

	case ".rsm":
		tree, err := rsm.ParseFile(src, opts.ModelEncoding)
		if err != nil {
			return err
		}
		scene, err := rsm.ToModel(tree, rsm.Options{
			ShaderName:  opts.ShaderName,
			SamplerName: opts.SamplerName,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", spec.Source, err)
		}
		meshes = appendScene(model, scene, matIndex)

	default:
		return fmt.Errorf("%s: %w", spec.Source, ErrUnknownFormat)
	}

	place := placement(spec)
	for i := range meshes {
		if place != math.Identity() {
			applyPlacement(&meshes[i], place)
		}
		model.Meshes = append(model.Meshes, meshes[i])
	}
	return nil
}

// appendScene takes the meshes of an imported scene. With matIndex set
// every mesh uses it and the scene materials are dropped; otherwise the
// scene materials are appended and mesh references shifted to match.
func appendScene(model *rmdl.Model, scene *rmdl.Model, matIndex int32) []rmdl.Mesh {
	base := int32(len(model.Materials))
	if matIndex == rmdl.NoMaterial {
		model.Materials = append(model.Materials, scene.Materials...)
	}
	meshes := make([]rmdl.Mesh, 0, len(scene.Meshes))
	for _, m := range scene.Meshes {
		switch {
		case matIndex != rmdl.NoMaterial:
			m.MaterialIndex = matIndex
		case m.MaterialIndex != rmdl.NoMaterial:
			m.MaterialIndex += base
		}
		meshes = append(meshes, m)
	}
	return meshes
}

// placement returns the manifest transform of a mesh entry.
func placement(spec *MeshSpec) math.Mat4 {
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	var r, t math.Vec3
	if spec.Scale != nil {
		s = math.Vec3Of(*spec.Scale)
	}
	if spec.Rotate != nil {
		r = math.Vec3Of(*spec.Rotate)
	}
	if spec.Translate != nil {
		t = math.Vec3Of(*spec.Translate)
	}
	return math.SRT(s, r, t)
}

// applyPlacement puts the mesh's own transform under place.
func applyPlacement(m *rmdl.Mesh, place math.Mat4) {
	local := math.SRT(math.Vec3Of(m.Scale), math.Vec3Of(m.Rotate), math.Vec3Of(m.Translate))
	s, r, t := place.Mul(local).Decompose()
	m.Scale, m.Rotate, m.Translate = s.Array(), r.Array(), t.Array()
}

// Dump renders a model as indented JSON with enum names, the view
// rmdltool dump prints.
func Dump(m *rmdl.Model) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
