package renderer

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/andrej6/bokeh/log"
	"github.com/andrej6/bokeh/scene"
	"github.com/andrej6/bokeh/types"
)

// Time budget per frame for progressive refinement work.
const refineBudget = 12 * time.Millisecond

const (
	leftMouseButton = iota
	middleMouseButton
	rightMouseButton
)

// An interactive opengl-based renderer: the progressively ray-traced
// image is blitted to the window while debug overlays (world axes,
// k-d tree boxes, captured ray trees) draw on top as colored lines.
type interactiveGLRenderer struct {
	logger log.Logger

	sc          *scene.Scene
	img         *Image
	opts        Options
	progressive *Progressive

	// opengl handles
	window    *glfw.Window
	fbTexture uint32
	texFbo    uint32

	// input state
	lastCursorPos types.Vec2
	mousePressed  [3]bool

	// display options
	raytracing bool
	showAxes   bool
	showKd     bool
	depthTest  bool

	axisViz *LineViz
	kdViz   *LineViz
	treeViz *LineViz

	stats FrameStats
}

// Create a new interactive renderer. Must be called from the main OS
// thread with no other GL context current.
func NewInteractive(sc *scene.Scene, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera() == nil {
		return nil, ErrCameraNotDefined
	}

	opts = opts.withDefaults()
	sc.Camera().SetAspect(float32(opts.FrameW) / float32(opts.FrameH))
	sc.SetShadowSamples(opts.ShadowSamples)
	sc.SetLensSamples(opts.LensSamples)
	sc.SetRayBounces(opts.RayDepth)

	img := NewImage(opts.FrameW, opts.FrameH)
	img.Clear(sc.BgColor())

	r := &interactiveGLRenderer{
		logger:      log.New("renderer"),
		sc:          sc,
		img:         img,
		opts:        opts,
		progressive: NewProgressive(sc, img),
		axisViz:     NewLineViz(),
		kdViz:       NewLineViz(),
		treeViz:     NewLineViz(),
	}
	r.buildAxisLines()

	if err := r.initGL(); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *interactiveGLRenderer) initGL() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize glfw: %s", err.Error())
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)

	var err error
	r.window, err = glfw.CreateWindow(r.opts.FrameW, r.opts.FrameH, "bokeh", nil, nil)
	if err != nil {
		return fmt.Errorf("could not create opengl window: %s", err.Error())
	}
	r.window.MakeContextCurrent()

	if err = gl.Init(); err != nil {
		return fmt.Errorf("could not init opengl: %s", err.Error())
	}

	// Setup texture for image data
	gl.GenTextures(1, &r.fbTexture)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(r.opts.FrameW), int32(r.opts.FrameH), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	// Attach texture to FBO
	gl.GenFramebuffers(1, &r.texFbo)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, r.fbTexture, 0)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	// Bind event callbacks
	r.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	r.window.SetKeyCallback(r.onKeyEvent)
	r.window.SetMouseButtonCallback(r.onMouseEvent)
	r.window.SetCursorPosCallback(r.onCursorPosEvent)

	return nil
}

func (r *interactiveGLRenderer) Close() {
	if r.window != nil {
		r.window.SetShouldClose(true)
	}
}

func (r *interactiveGLRenderer) Stats() FrameStats {
	return r.stats
}

// The interactive loop: poll input, refine the progressive image for a
// slice of the frame budget, then blit and overlay.
func (r *interactiveGLRenderer) Render() error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()

		if r.raytracing {
			deadline := time.Now().Add(refineBudget)
			for time.Now().Before(deadline) {
				if !r.progressive.TraceNextPixel() {
					break
				}
			}
		}

		if r.img.Dirty() {
			gl.BindTexture(gl.TEXTURE_2D, r.fbTexture)
			gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(r.opts.FrameW), int32(r.opts.FrameH),
				gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&r.img.Pix()[0]))
			r.img.ClearDirty()
		}

		gl.ClearColor(0, 0, 0, 1)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

		// Copy texture data to framebuffer
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, r.texFbo)
		gl.BlitFramebuffer(0, 0, int32(r.opts.FrameW), int32(r.opts.FrameH), 0, 0, int32(r.opts.FrameW), int32(r.opts.FrameH), gl.COLOR_BUFFER_BIT, gl.LINEAR)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

		r.drawOverlays()

		r.window.SwapBuffers()
	}

	glfw.Terminate()
	return nil
}

func (r *interactiveGLRenderer) drawOverlays() {
	view, proj := r.sc.Camera().ViewProjection()

	if r.showAxes {
		r.axisViz.Draw(view, proj, r.depthTest)
	}
	if r.showKd {
		r.kdViz.Draw(view, proj, r.depthTest)
	}
	if !r.treeViz.Empty() {
		r.treeViz.Draw(view, proj, r.depthTest)
	}
}

// World axis overlay: two-unit axes at the origin, RGB for XYZ.
func (r *interactiveGLRenderer) buildAxisLines() {
	origin := types.Vec3{}
	r.axisViz.AddLine(origin, types.XYZ(2, 0, 0), types.XYZW(1, 0, 0, 1))
	r.axisViz.AddLine(origin, types.XYZ(0, 2, 0), types.XYZW(0, 1, 0, 1))
	r.axisViz.AddLine(origin, types.XYZ(0, 0, 2), types.XYZW(0, 0, 1, 1))
}

// Rebuild the k-d overlay from every instance's leaf boxes.
func (r *interactiveGLRenderer) buildKdLines() {
	r.kdViz.Clear()
	color := types.XYZW(0.7, 0.9, 1.0, 1.0)
	for i := 0; i < r.sc.NumPrimitives(); i++ {
		inst := r.sc.Primitive(i).Instance()
		m := inst.Mesh()
		if m == nil {
			continue
		}
		for _, box := range m.Tree().LeafBoxes() {
			r.kdViz.AddBBox(box, inst.ModelMat(), color)
		}
	}
}

// Restart progressive refinement, e.g. after a camera move.
func (r *interactiveGLRenderer) restartRefinement() {
	r.progressive.Reset()
	r.img.Clear(r.sc.BgColor())
}

func (r *interactiveGLRenderer) onKeyEvent(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeyQ, glfw.KeyEscape:
		r.window.SetShouldClose(true)
	case glfw.KeyA:
		r.showAxes = !r.showAxes
	case glfw.KeyD:
		r.depthTest = !r.depthTest
	case glfw.KeyK:
		r.showKd = !r.showKd
		if r.showKd {
			r.buildKdLines()
		}
	case glfw.KeyR:
		r.restartRefinement()
		r.raytracing = !r.raytracing
		if r.raytracing {
			r.logger.Notice("progressive ray-tracing on")
		} else {
			r.logger.Notice("progressive ray-tracing off")
		}
	case glfw.KeyT:
		x, y := r.window.GetCursorPos()
		px, py := int(x), int(y)
		if px >= 0 && px < r.opts.FrameW && py >= 0 && py < r.opts.FrameH {
			r.sc.VisualizeRayTree(px, py, r.opts.FrameW, r.opts.FrameH)
			r.treeViz.Clear()
			r.treeViz.AddLines(r.sc.RayTree().Lines())
		}
	}
}

func (r *interactiveGLRenderer) onMouseEvent(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mod glfw.ModifierKey) {
	var buttonIndex int
	switch button {
	case glfw.MouseButtonLeft:
		buttonIndex = leftMouseButton
	case glfw.MouseButtonMiddle:
		buttonIndex = middleMouseButton
	case glfw.MouseButtonRight:
		buttonIndex = rightMouseButton
	default:
		return
	}

	if action == glfw.Press {
		xPos, yPos := w.GetCursorPos()
		r.lastCursorPos[0], r.lastCursorPos[1] = float32(xPos), float32(yPos)
		r.mousePressed[buttonIndex] = true
	} else {
		r.mousePressed[buttonIndex] = false
	}
}

func (r *interactiveGLRenderer) onCursorPosEvent(w *glfw.Window, xPos, yPos float64) {
	if !r.mousePressed[leftMouseButton] && !r.mousePressed[middleMouseButton] && !r.mousePressed[rightMouseButton] {
		return
	}

	newPos := types.Vec2{float32(xPos), float32(yPos)}
	delta := r.lastCursorPos.Sub(newPos)
	r.lastCursorPos = newPos

	camera := r.sc.Camera()
	if r.mousePressed[leftMouseButton] {
		camera.Rotate(delta[0], delta[1])
	}
	if r.mousePressed[middleMouseButton] {
		camera.Truck(delta[0], -delta[1])
	}
	if r.mousePressed[rightMouseButton] {
		camera.Dolly(delta[1])
	}

	if r.raytracing {
		r.restartRefinement()
	}
}
