package scene

import (
	"math"
	"sync"

	"github.com/andrej6/bokeh/types"
)

// Illumination mode bitmask.
type IllumMode uint8

const (
	IllumAmbient IllumMode = 1 << iota
	IllumReflect
	IllumRefract
)

// Stable identifier for a registered material. The zero value means
// "no material".
type MtlID uint32

const NoMtl MtlID = 0

// Phong material parameters plus emission and illumination flags.
type Material struct {
	diffuse  types.Vec3
	ambient  types.Vec3
	specular types.Vec3
	shiny    float32

	emitted        types.Vec3
	emittancePower float32

	illum IllumMode
}

func (m *Material) Diffuse() types.Vec3     { return m.diffuse }
func (m *Material) Ambient() types.Vec3     { return m.ambient }
func (m *Material) Specular() types.Vec3    { return m.specular }
func (m *Material) Shiny() float32          { return m.shiny }
func (m *Material) Emitted() types.Vec3     { return m.emitted }
func (m *Material) EmittancePower() float32 { return m.emittancePower }

func (m *Material) SetDiffuse(v types.Vec3)     { m.diffuse = v }
func (m *Material) SetAmbient(v types.Vec3)     { m.ambient = v }
func (m *Material) SetSpecular(v types.Vec3)    { m.specular = v }
func (m *Material) SetShiny(s float32)          { m.shiny = s }
func (m *Material) SetEmitted(v types.Vec3)     { m.emitted = v }
func (m *Material) SetEmittancePower(p float32) { m.emittancePower = p }
func (m *Material) SetIllumMode(mode IllumMode) { m.illum = mode }

func (m *Material) AmbientOn() bool { return m.illum&IllumAmbient != 0 }
func (m *Material) ReflectOn() bool { return m.illum&IllumReflect != 0 }
func (m *Material) RefractOn() bool { return m.illum&IllumRefract != 0 }

// Shade a surface hit lit by one shadow ray. The incoming hit supplies
// the surface normal and eye direction; the light ray points from the
// surface towards the light sample and carries the light's material.
func (m *Material) Shade(incoming, lightray *RayHit) types.Vec3 {
	norm := incoming.Norm()
	eye := incoming.Ray().Direction().Neg()
	light := lightray.Ray().Direction()
	lightColor := lightray.Material().Emitted()

	color := m.emitted

	dotNL := norm.Dot(light)
	if dotNL < 0 {
		dotNL = 0
	}
	color = color.Add(lightColor.MulVec(m.diffuse).Mul(dotNL))

	reflect := norm.Mul(2 * dotNL).Sub(light).Normalize()
	dotER := eye.Dot(reflect)
	if dotER < 0 {
		dotER = 0
	}
	spec := float32(math.Pow(float64(dotER), float64(m.shiny)))
	color = color.Add(lightColor.MulVec(m.specular).Mul(spec * dotNL))

	return color
}

// Process-scoped material registry. Populated during scene loading and
// read-only once a scene is live.
var mtlRegistry = struct {
	sync.Mutex
	mtls  map[MtlID]*Material
	names map[string]MtlID
	next  MtlID
}{
	mtls:  make(map[MtlID]*Material),
	names: make(map[string]MtlID),
	next:  1,
}

// Register a material under a name and return its id.
func RegisterMtl(name string, m *Material) MtlID {
	mtlRegistry.Lock()
	defer mtlRegistry.Unlock()

	id := mtlRegistry.next
	mtlRegistry.next++
	mtlRegistry.mtls[id] = m
	mtlRegistry.names[name] = id
	return id
}

// Look up a material by id. Returns nil for unknown ids.
func MtlByID(id MtlID) *Material {
	mtlRegistry.Lock()
	defer mtlRegistry.Unlock()
	return mtlRegistry.mtls[id]
}

// Look up a material id by name. Returns NoMtl for unknown names.
func MtlIDByName(name string) MtlID {
	mtlRegistry.Lock()
	defer mtlRegistry.Unlock()
	return mtlRegistry.names[name]
}

// Drop every registered material. Intended for tests and scene
// reloads.
func ClearMtlRegistry() {
	mtlRegistry.Lock()
	defer mtlRegistry.Unlock()
	mtlRegistry.mtls = make(map[MtlID]*Material)
	mtlRegistry.names = make(map[string]MtlID)
	mtlRegistry.next = 1
}
