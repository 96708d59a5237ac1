package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"dda-extractor/internal/mesh"
)

// RawNormalAttribute carries car normals. They are stored unnormalised in
// 0..1 and cannot go in NORMAL.
const RawNormalAttribute = "_RAWNORMAL"

// SceneFile is the name of the scene written next to the textures.
const SceneFile = "scene.glb"

// Scene builds a glTF document with one node per mesh, named Mesh_<i>, and
// one material per texture name. Material indices outside the list fall back
// to the first material.
func Scene(meshes []mesh.Mesh, materials []string, ext string) *gltf.Document {
	doc := gltf.NewDocument()

	for i, name := range materials {
		doc.Images = append(doc.Images, &gltf.Image{Name: name, URI: name + ext})
		doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(uint32(i))})
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name:        name,
			DoubleSided: true,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorTexture: &gltf.TextureInfo{Index: uint32(i)},
			},
		})
	}

	for i := range meshes {
		node := &gltf.Node{Name: fmt.Sprintf("Mesh_%d", i)}
		if prims := primitives(doc, &meshes[i], len(materials)); len(prims) > 0 {
			doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: node.Name, Primitives: prims})
			node.Mesh = gltf.Index(uint32(len(doc.Meshes) - 1))
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	}
	return doc
}

func primitives(doc *gltf.Document, m *mesh.Mesh, materials int) []*gltf.Primitive {
	var out []*gltf.Primitive
	for i := range m.SubMeshes {
		sm := &m.SubMeshes[i]
		if len(sm.Triangles) == 0 {
			continue
		}
		attrs := map[string]uint32{
			gltf.POSITION:   modeler.WritePosition(doc, vec3s(sm.Positions)),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, vec2s(sm.UVs)),
		}
		if sm.Colors != nil {
			attrs[gltf.COLOR_0] = modeler.WriteColor(doc, clampedColors(sm))
		}
		if sm.Normals != nil {
			attrs[RawNormalAttribute] = modeler.WriteAccessor(doc, gltf.TargetArrayBuffer, vec3s(sm.Normals))
		}
		p := &gltf.Primitive{
			Attributes: attrs,
			Indices:    gltf.Index(modeler.WriteIndices(doc, sm.Indices())),
		}
		if materials > 0 {
			mat := sm.Material
			if mat < 0 || mat >= materials {
				mat = 0
			}
			p.Material = gltf.Index(uint32(mat))
		}
		out = append(out, p)
	}
	return out
}

func vec3s[T ~[3]float32](in []T) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func vec2s[T ~[2]float32](in []T) [][2]float32 {
	out := make([][2]float32, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// clampedColors limits vertex colours to the 0..1 glTF range. Map colours are
// brightened up to 2.
func clampedColors(sm *mesh.SubMesh) [][4]float32 {
	out := make([][4]float32, len(sm.Colors))
	for i, c := range sm.Colors {
		for j := range c {
			out[i][j] = min(max(c[j], 0), 1)
		}
	}
	return out
}

// WriteScene saves meshes as a binary glTF file in dir.
func WriteScene(dir string, meshes []mesh.Mesh, materials []string, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrap(err, "create output folder")
	}
	path := filepath.Join(dir, SceneFile)
	if err := gltf.SaveBinary(Scene(meshes, materials, f.Ext()), path); err != nil {
		return "", errors.Wrapf(err, "save %s", path)
	}
	return path, nil
}
