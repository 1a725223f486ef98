// Package reader loads scenes from text scene (.scn) files together
// with the wavefront geometry (.obj), material (.mtl) and lens
// assembly (.la) files they reference.
package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andrej6/bokeh/log"
	"github.com/andrej6/bokeh/mesh"
	scenePkg "github.com/andrej6/bokeh/scene"
	"github.com/andrej6/bokeh/types"
)

type sceneReader struct {
	logger log.Logger

	// The scene being assembled.
	sc *scenePkg.Scene

	// The most recently added mesh instance, target of mtl/transform
	// directives.
	curInstance *scenePkg.MeshInstance

	// An error stack that provides additional error information when
	// scene files include other files (models, mat libs e.t.c)
	errStack []string
}

// Read a scene definition from a .scn file. Referenced obj, mtl and la
// paths are resolved relative to the scene file.
func ReadScene(pathToScene string) (*scenePkg.Scene, error) {
	res, err := newResource(pathToScene, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	r := &sceneReader{
		logger: log.New("reader"),
		sc:     scenePkg.New(),
	}

	r.logger.Noticef("parsing scene from %s", res.Path())
	start := time.Now()

	if err = r.parse(res); err != nil {
		return nil, err
	}

	r.sc.FindLights()
	r.logger.Noticef("parsed scene in %d ms", time.Since(start).Nanoseconds()/1000000)

	return r.sc, nil
}

// Generate an error message that also includes any data in the error
// stack.
func (r *sceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = strings.Trim(
			fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	} else {
		errMsg = strings.Trim(
			fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n")),
			"\n",
		)
	}

	return fmt.Errorf("%s", errMsg)
}

// Push a frame to the error stack.
func (r *sceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *sceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Parse the line-based scene format: '#' comments, whitespace
// separated tokens, one directive per line.
func (r *sceneReader) parse(res *resource) error {
	lineNum := 0
	scanner := bufio.NewScanner(res)

	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		var err error
		switch lineTokens[0] {
		case "mesh":
			err = r.parseMesh(res, lineNum, lineTokens)
		case "materials":
			err = r.parseMaterialLib(res, lineNum, lineTokens)
		case "bgc":
			var c types.Vec3
			if c, err = parseVec3(lineTokens); err == nil {
				if len(lineTokens) != 4 {
					err = fmt.Errorf("too many parameters to bgc definition")
				} else {
					r.sc.SetBgColor(c)
				}
			}
		case "camera":
			err = r.parseCamera(res, lineNum, lineTokens)
		case "cam_position", "cam_poi", "cam_up":
			err = r.parseCameraVector(lineTokens)
		case "mesh_instance":
			err = r.parseMeshInstance(lineTokens)
		case "mtl", "translate", "translate+", "rotate", "rotate+", "scale", "scale+":
			err = r.parseInstanceProperty(lineTokens)
		default:
			err = fmt.Errorf("unrecognized directive '%s' in SCN", lineTokens[0])
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, err.Error())
		}
	}
	if err := scanner.Err(); err != nil {
		return r.emitError(res.Path(), lineNum, err.Error())
	}

	return nil
}

// mesh <name> <obj-path>
func (r *sceneReader) parseMesh(res *resource, lineNum int, lineTokens []string) error {
	if len(lineTokens) != 3 {
		return fmt.Errorf("incorrect number of arguments for new mesh in SCN")
	}

	r.pushFrame(fmt.Sprintf("referenced from %s:%d [mesh]", res.Path(), lineNum))
	defer r.popFrame()

	objRes, err := newResource(lineTokens[2], res)
	if err != nil {
		return err
	}
	defer objRes.Close()

	m, err := r.readMeshObj(objRes)
	if err != nil {
		return err
	}

	mesh.Register(lineTokens[1], m)
	r.logger.Infof("loaded mesh '%s': %d verts, %d faces", lineTokens[1], m.NumVerts(), m.NumFaces())
	return nil
}

// materials <mtl-path>
func (r *sceneReader) parseMaterialLib(res *resource, lineNum int, lineTokens []string) error {
	if len(lineTokens) != 2 {
		return fmt.Errorf("incorrect number of arguments for new MTL file in SCN")
	}

	r.pushFrame(fmt.Sprintf("referenced from %s:%d [materials]", res.Path(), lineNum))
	defer r.popFrame()

	mtlRes, err := newResource(lineTokens[1], res)
	if err != nil {
		return err
	}
	defer mtlRes.Close()

	return r.readMaterials(mtlRes)
}

// camera {orthographic|perspective|lens} <size-or-fov> [la-path]
func (r *sceneReader) parseCamera(res *resource, lineNum int, lineTokens []string) error {
	if len(lineTokens) != 3 && len(lineTokens) != 4 {
		return fmt.Errorf("incorrect number of parameters for camera specification in SCN")
	}

	if r.sc.Camera() != nil {
		return fmt.Errorf("multiple camera specifications in SCN")
	}

	sizeAngle, err := strconv.ParseFloat(lineTokens[2], 32)
	if err != nil {
		return err
	}

	switch lineTokens[1] {
	case "orthographic":
		c := scenePkg.NewOrthographicCamera()
		c.SetSize(float32(sizeAngle))
		r.sc.SetCamera(c)
	case "perspective":
		c := scenePkg.NewPerspectiveCamera()
		c.SetAngle(float32(sizeAngle))
		r.sc.SetCamera(c)
	case "lens":
		if len(lineTokens) != 4 {
			return fmt.Errorf("lens camera requires a lens assembly file")
		}

		r.pushFrame(fmt.Sprintf("referenced from %s:%d [camera]", res.Path(), lineNum))
		defer r.popFrame()

		laRes, err := newResource(lineTokens[3], res)
		if err != nil {
			return err
		}
		defer laRes.Close()

		assembly, err := r.readLensAssembly(laRes)
		if err != nil {
			return err
		}

		c := scenePkg.NewLensCamera(assembly)
		c.SetAngle(float32(sizeAngle))
		r.sc.SetCamera(c)
	default:
		return fmt.Errorf("unknown camera type '%s'", lineTokens[1])
	}

	return nil
}

// cam_position | cam_poi | cam_up x y z
func (r *sceneReader) parseCameraVector(lineTokens []string) error {
	if r.sc.Camera() == nil {
		return fmt.Errorf("setting %s before camera specification", lineTokens[0])
	}

	v, err := parseVec3(lineTokens)
	if err != nil {
		return err
	}
	if len(lineTokens) > 4 {
		return fmt.Errorf("too many parameters to %s", lineTokens[0])
	}

	switch lineTokens[0] {
	case "cam_position":
		r.sc.Camera().SetPosition(v)
	case "cam_poi":
		r.sc.Camera().SetPointOfInterest(v)
	case "cam_up":
		r.sc.Camera().SetUp(v)
	}
	return nil
}

// mesh_instance <mesh-name>
func (r *sceneReader) parseMeshInstance(lineTokens []string) error {
	if len(lineTokens) != 2 {
		return fmt.Errorf("incorrect number of parameters for mesh_instance")
	}

	id := mesh.IDByName(lineTokens[1])
	if id == mesh.None {
		return fmt.Errorf("unknown mesh with name '%s'", lineTokens[1])
	}

	r.curInstance = scenePkg.NewMeshInstance(id)
	r.sc.AddPrimitive(r.curInstance)
	return nil
}

// mtl/translate/rotate/scale directives modifying the most recently
// added instance. The '+' variants compose onto the existing
// transform; the plain variants replace it.
func (r *sceneReader) parseInstanceProperty(lineTokens []string) error {
	if r.curInstance == nil {
		return fmt.Errorf("setting mesh instance properties without a mesh instance")
	}

	compose := strings.HasSuffix(lineTokens[0], "+")
	directive := strings.TrimSuffix(lineTokens[0], "+")

	switch directive {
	case "mtl":
		if len(lineTokens) != 2 {
			return fmt.Errorf("incorrect number of parameters for mtl")
		}
		id := scenePkg.MtlIDByName(lineTokens[1])
		if id == scenePkg.NoMtl {
			return fmt.Errorf("unknown material with name '%s'", lineTokens[1])
		}
		r.curInstance.SetMtl(id)

	case "translate":
		v, err := parseVec3(lineTokens)
		if err != nil {
			return err
		}
		if len(lineTokens) > 4 {
			return fmt.Errorf("too many parameters for translate")
		}
		if compose {
			r.curInstance.Translate(v)
		} else {
			r.curInstance.SetTranslate(v)
		}

	case "rotate":
		if len(lineTokens) != 5 {
			return fmt.Errorf("incorrect number of parameters for rotate")
		}
		axis, err := parseVec3(lineTokens)
		if err != nil {
			return err
		}
		angleDeg, err := strconv.ParseFloat(lineTokens[4], 32)
		if err != nil {
			return err
		}
		angle := types.DegToRad(float32(angleDeg))
		if compose {
			r.curInstance.Rotate(angle, axis)
		} else {
			r.curInstance.SetRotate(angle, axis)
		}

	case "scale":
		v, err := parseVec3(lineTokens)
		if err != nil {
			return err
		}
		if len(lineTokens) > 4 {
			return fmt.Errorf("too many parameters for scale")
		}
		if compose {
			r.curInstance.Scale(v)
		} else {
			r.curInstance.SetScale(v)
		}
	}

	return nil
}
