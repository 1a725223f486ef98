package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/andrej6/bokeh/mesh"
	scenePkg "github.com/andrej6/bokeh/scene"
	"github.com/andrej6/bokeh/types"
)

// Parse a triangle/quad wavefront object stream into a half-edge mesh.
// Vertex normals present in the input are attached to their half-edges;
// any left unset are filled in by averaging adjacent face normals.
func (r *sceneReader) readMeshObj(res *resource) (*mesh.Mesh, error) {
	m := mesh.New()

	var vertexList []types.Vec3
	var normalList []types.Vec3
	uvCount := 0

	lineNum := 0
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, r.emitError(res.Path(), lineNum, err.Error())
			}
			vertexList = append(vertexList, v)
			m.AddVert(v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return nil, r.emitError(res.Path(), lineNum, err.Error())
			}
			normalList = append(normalList, v)
		case "vt":
			// Accepted and ignored; the shading model is textureless.
			uvCount++
		case "f":
			if err := r.parseFace(m, lineTokens, vertexList, normalList); err != nil {
				return nil, r.emitError(res.Path(), lineNum, err.Error())
			}
		default:
			return nil, r.emitError(res.Path(), lineNum, "unsupported directive '%s' in OBJ", lineTokens[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, r.emitError(res.Path(), lineNum, err.Error())
	}

	m.ComputeVertNorms()
	m.BuildTree()
	return m, nil
}

// Parse a face definition with 3 or 4 vertex arguments of the form
// v, v/t, v//n or v/t/n. Indices start at 1; negative indices resolve
// relative to the current list length. Quads are triangulated by the
// mesh itself.
func (r *sceneReader) parseFace(m *mesh.Mesh, lineTokens []string, vertexList, normalList []types.Vec3) error {
	nargs := len(lineTokens) - 1
	if nargs != 3 && nargs != 4 {
		return fmt.Errorf("unsupported syntax for 'f'; expected 3 or 4 arguments; got %d", nargs)
	}

	verts := make([]int, nargs)
	norms := make([]types.Vec3, nargs)
	hasNorm := make([]bool, nargs)

	expIndices := 0
	for arg := 0; arg < nargs; arg++ {
		vTokens := strings.Split(lineTokens[arg+1], "/")

		// The first arg defines the format for the following args
		if arg == 0 {
			expIndices = len(vTokens)
		} else if len(vTokens) != expIndices {
			return fmt.Errorf("expected each face argument to contain %d indices; arg %d contains %d indices", expIndices, arg, len(vTokens))
		}

		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		vOffset, err := selectFaceCoordIndex(vTokens[0], len(vertexList))
		if err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err.Error())
		}
		verts[arg] = vOffset

		if len(vTokens) == 3 && vTokens[2] != "" {
			nOffset, err := selectFaceCoordIndex(vTokens[2], len(normalList))
			if err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err.Error())
			}
			norms[arg] = normalList[nOffset]
			hasNorm[arg] = true
		}
	}

	var err error
	if nargs == 3 {
		_, err = m.AddTri(verts[0], verts[1], verts[2])
	} else {
		err = m.AddQuad(verts[0], verts[1], verts[2], verts[3])
	}
	if err != nil {
		return err
	}

	// Attach supplied normals to the half-edges pointing at each
	// vertex of the new face(s).
	for i := 0; i < nargs; i++ {
		if !hasNorm[i] {
			continue
		}
		root := verts[(i+nargs-1)%nargs]
		if e, ok := m.EdgeBetween(root, verts[i]); ok {
			e.SetNorm(norms[i])
		}
		// Quads share the (v0, v2) diagonal between their two halves.
		if nargs == 4 && (i == 0 || i == 2) {
			if e, ok := m.EdgeBetween(verts[(i+2)%4], verts[i]); ok {
				e.SetNorm(norms[i])
			}
		}
	}

	return nil
}

// Parse a wavefront material library, registering every material in
// the process-wide store.
func (r *sceneReader) readMaterials(res *resource) error {
	lineNum := 0
	scanner := bufio.NewScanner(res)

	var curMaterial *scenePkg.Material
	var matName string

	registerCurrent := func() {
		if curMaterial != nil {
			scenePkg.RegisterMtl(matName, curMaterial)
		}
	}

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		if lineTokens[0] == "newmtl" {
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			registerCurrent()
			curMaterial = &scenePkg.Material{}
			matName = lineTokens[1]
			continue
		}

		if curMaterial == nil {
			return r.emitError(res.Path(), lineNum, "got '%s' without a 'newmtl'", lineTokens[0])
		}

		var err error
		switch lineTokens[0] {
		case "Ka":
			var v types.Vec3
			if v, err = parseVec3(lineTokens); err == nil {
				curMaterial.SetAmbient(v)
			}
		case "Kd":
			var v types.Vec3
			if v, err = parseVec3(lineTokens); err == nil {
				curMaterial.SetDiffuse(v)
			}
		case "Ks":
			var v types.Vec3
			if v, err = parseVec3(lineTokens); err == nil {
				curMaterial.SetSpecular(v)
			}
		case "Ns":
			var v float32
			if v, err = parseFloat32(lineTokens); err == nil {
				curMaterial.SetShiny(v)
			}
		case "Ke":
			var v types.Vec3
			if v, err = parseVec3(lineTokens); err == nil {
				curMaterial.SetEmitted(v)
			}
		case "Ne":
			var v float32
			if v, err = parseFloat32(lineTokens); err == nil {
				curMaterial.SetEmittancePower(v)
			}
		case "illum":
			var mode int64
			mode, err = strconv.ParseInt(lineTokens[1], 10, 32)
			if err == nil {
				var illum scenePkg.IllumMode
				switch mode {
				case 0: // no ambient, no reflection, no refraction
					illum = 0
				case 1: // ambient only
					illum = scenePkg.IllumAmbient
				case 3: // ambient + reflection
					illum = scenePkg.IllumAmbient | scenePkg.IllumReflect
				case 6: // ambient + refraction
					illum = scenePkg.IllumAmbient | scenePkg.IllumRefract
				default:
					return r.emitError(res.Path(), lineNum, "unsupported illumination mode %d in MTL", mode)
				}
				curMaterial.SetIllumMode(illum)
			}
		default:
			return r.emitError(res.Path(), lineNum, "unsupported material property '%s' in MTL", lineTokens[0])
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	registerCurrent()
	return nil
}

// Given an index for a face coord type (vertex, normal) calculate the
// proper offset into the coord list. Wavefront format can also use
// negative indices to reference elements from the end of the list.
func selectFaceCoordIndex(indexToken string, coordListLen int) (int, error) {
	index, err := strconv.ParseInt(indexToken, 10, 32)
	if err != nil {
		return -1, err
	}

	var vOffset int
	if index < 0 {
		vOffset = coordListLen + int(index)
	} else {
		vOffset = int(index - 1)
	}
	if vOffset < 0 || vOffset >= coordListLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return vOffset, nil
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}
