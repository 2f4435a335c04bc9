package labeling

import (
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/image/math/f64"
)

// Affine transformations are kept as f64.Aff3, i.e. the top two rows of a
// 3×3 matrix in row major order:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	|  0    0    1   |

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

func translation(tx, ty float64) f64.Aff3 {
	return f64.Aff3{1, 0, tx, 0, 1, ty}
}

func rotation(angle float64) f64.Aff3 {
	sin, cos := math.Sincos(angle)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// concat returns the product a·b, which applies b first.
func concat(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func transformPoint(m f64.Aff3, p orb.Point) orb.Point {
	return orb.Point{
		m[0]*p[0] + m[1]*p[1] + m[2],
		m[3]*p[0] + m[4]*p[1] + m[5],
	}
}

// transform appends a transformed copy of every polygon of mp to out.
func transform(m f64.Aff3, mp orb.MultiPolygon, out orb.MultiPolygon) orb.MultiPolygon {
	for _, poly := range mp {
		tpoly := make(orb.Polygon, len(poly))
		for i, ring := range poly {
			tring := make(orb.Ring, len(ring))
			for j, p := range ring {
				tring[j] = transformPoint(m, p)
			}
			tpoly[i] = tring
		}
		out = append(out, tpoly)
	}
	return out
}
