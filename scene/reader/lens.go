package reader

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	scenePkg "github.com/andrej6/bokeh/scene"
)

// Parse a lens assembly (.la) stream. Surfaces are listed sensor-side
// first; the axial position starts at zero and decreases by each
// surface's thickness, so the assembly extends towards negative z.
//
//	lens_assembly <film_to_rear_distance>
//	lens_surface  <radius> <thickness> <index> <aperture_diameter>
func (r *sceneReader) readLensAssembly(res *resource) (*scenePkg.LensAssembly, error) {
	var dist float32
	var surfaces []scenePkg.LensSurface

	z := float32(0.0)

	lineNum := 0
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "lens_assembly":
			if len(lineTokens) != 2 {
				return nil, r.emitError(res.Path(), lineNum, "incorrect number of arguments for lens_assembly")
			}
			v, err := strconv.ParseFloat(lineTokens[1], 32)
			if err != nil {
				return nil, r.emitError(res.Path(), lineNum, err.Error())
			}
			dist = float32(v)

		case "lens_surface":
			if len(lineTokens) != 5 {
				return nil, r.emitError(res.Path(), lineNum, "incorrect number of arguments for lens_surface")
			}

			var vals [4]float32
			for i := 0; i < 4; i++ {
				v, err := strconv.ParseFloat(lineTokens[i+1], 32)
				if err != nil {
					return nil, r.emitError(res.Path(), lineNum, err.Error())
				}
				vals[i] = float32(v)
			}

			radius, thickness, index, aperture := vals[0], vals[1], vals[2], vals[3]
			surfaces = append(surfaces, scenePkg.NewLensSurface(z, radius, index, aperture/2.0))
			z -= thickness

		default:
			return nil, r.emitError(res.Path(), lineNum, "unrecognized directive '%s' in LA", lineTokens[0])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, r.emitError(res.Path(), lineNum, err.Error())
	}

	if len(surfaces) == 0 {
		return nil, r.emitError(res.Path(), 0, fmt.Sprintf("lens assembly %s defines no surfaces", res.Path()))
	}

	return scenePkg.NewLensAssembly(dist, surfaces), nil
}
