package renderer

import (
	"github.com/go-gl/gl/v2.1/gl"

	"github.com/andrej6/bokeh/mesh"
	"github.com/andrej6/bokeh/scene"
	"github.com/andrej6/bokeh/types"
)

// An immediate-mode line visualizer for debug overlays: ray trees,
// k-d tree boxes and the world axes. Lines are world-space segments
// with per-endpoint colors.
type LineViz struct {
	lines []scene.VizLine
}

func NewLineViz() *LineViz {
	return &LineViz{}
}

func (v *LineViz) Clear() {
	v.lines = v.lines[:0]
}

func (v *LineViz) Empty() bool {
	return len(v.lines) == 0
}

// Add one line with a single color.
func (v *LineViz) AddLine(from, to types.Vec3, color types.Vec4) {
	v.AddLine2(from, to, color, color)
}

// Add one line with distinct endpoint colors.
func (v *LineViz) AddLine2(from, to types.Vec3, fromColor, toColor types.Vec4) {
	v.lines = append(v.lines, scene.VizLine{
		From: from, To: to,
		FromColor: fromColor, ToColor: toColor,
	})
}

// Append a batch of pre-built segments.
func (v *LineViz) AddLines(lines []scene.VizLine) {
	v.lines = append(v.lines, lines...)
}

// Add the twelve edges of a bounding box transformed by modelmat.
func (v *LineViz) AddBBox(box mesh.BBox, modelmat types.Mat4, color types.Vec4) {
	corners := box.Corners()
	var pts [8]types.Vec3
	for i, c := range corners {
		pts[i] = modelmat.ApplyToPoint(c)
	}
	for _, e := range mesh.BoxEdges {
		v.AddLine(pts[e[0]], pts[e[1]], color)
	}
}

// Draw the lines under the given view and projection matrices.
func (v *LineViz) Draw(view, proj types.Mat4, depthTest bool) {
	if len(v.lines) == 0 {
		return
	}

	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixf(&proj[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixf(&view[0])

	if depthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.LineWidth(1.5)

	gl.Begin(gl.LINES)
	for _, line := range v.lines {
		gl.Color4f(line.FromColor[0], line.FromColor[1], line.FromColor[2], line.FromColor[3])
		gl.Vertex3f(line.From[0], line.From[1], line.From[2])
		gl.Color4f(line.ToColor[0], line.ToColor[1], line.ToColor[2], line.ToColor[3])
		gl.Vertex3f(line.To[0], line.To[1], line.To[2])
	}
	gl.End()

	gl.Disable(gl.BLEND)
	gl.Disable(gl.DEPTH_TEST)
}
