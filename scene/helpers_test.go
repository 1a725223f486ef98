package scene

import (
	"testing"

	"github.com/andrej6/bokeh/mesh"
	"github.com/andrej6/bokeh/types"
)

func meshByIDForTest(t *testing.T, id mesh.ID) *mesh.Mesh {
	t.Helper()
	m := mesh.ByID(id)
	if m == nil {
		t.Fatalf("mesh id %d not registered", id)
	}
	return m
}

// Reset the process-wide registries between tests.
func resetRegistries() {
	mesh.ClearRegistry()
	ClearMtlRegistry()
}

// Register a unit quad mesh spanning [-1,1]^2 in the z=0 plane with a
// +z normal.
func registerQuad(name string) mesh.ID {
	return registerQuadVerts(name, [4]types.Vec3{
		types.XYZ(-1, -1, 0),
		types.XYZ(1, -1, 0),
		types.XYZ(1, 1, 0),
		types.XYZ(-1, 1, 0),
	})
}

// Register a unit quad mesh spanning [-1,1]^2 in the z=0 plane with a
// -z normal.
func registerQuadFlipped(name string) mesh.ID {
	return registerQuadVerts(name, [4]types.Vec3{
		types.XYZ(-1, -1, 0),
		types.XYZ(-1, 1, 0),
		types.XYZ(1, 1, 0),
		types.XYZ(1, -1, 0),
	})
}

func registerQuadVerts(name string, verts [4]types.Vec3) mesh.ID {
	m := mesh.New()
	for _, v := range verts {
		m.AddVert(v)
	}
	if err := m.AddQuad(0, 1, 2, 3); err != nil {
		panic(err)
	}
	m.ComputeVertNorms()
	m.BuildTree()
	return mesh.Register(name, m)
}

// Register a plain diffuse material.
func registerDiffuseMtl(name string, diffuse, ambient types.Vec3) MtlID {
	mtl := &Material{}
	mtl.SetDiffuse(diffuse)
	mtl.SetAmbient(ambient)
	mtl.SetIllumMode(IllumAmbient)
	return RegisterMtl(name, mtl)
}

// Register an emitting material.
func registerLightMtl(name string, emitted types.Vec3, power float32) MtlID {
	mtl := &Material{}
	mtl.SetEmitted(emitted)
	mtl.SetEmittancePower(power)
	return RegisterMtl(name, mtl)
}
