// 指示: miu200521358
package decoder

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// fallbackNormal は面に属さない頂点へ与える法線。
var fallbackNormal = mgl64.Vec3{0, 0, 1}

// ReconstructNormals は面積と頂点角で重み付けした頂点法線を求める。
// 面の外積(長さは面積の2倍)に各頂点の内角を掛けて合算し、正規化する。
func ReconstructNormals(vertices []mgl64.Vec3, faces [][3]uint32) []mgl64.Vec3 {
	sums := make([]r3.Vec, len(vertices))
	for _, face := range faces {
		p := [3]r3.Vec{
			toR3(vertices[face[0]]),
			toR3(vertices[face[1]]),
			toR3(vertices[face[2]]),
		}
		faceNormal := r3.Cross(r3.Sub(p[1], p[0]), r3.Sub(p[2], p[0]))
		if r3.Norm(faceNormal) == 0 {
			continue
		}
		for corner := 0; corner < 3; corner++ {
			angle := cornerAngle(p[corner], p[(corner+1)%3], p[(corner+2)%3])
			vertexIndex := face[corner]
			sums[vertexIndex] = r3.Add(sums[vertexIndex], r3.Scale(angle, faceNormal))
		}
	}

	normals := make([]mgl64.Vec3, len(vertices))
	for i, sum := range sums {
		length := r3.Norm(sum)
		if length == 0 || math.IsNaN(length) {
			normals[i] = fallbackNormal
			continue
		}
		unit := r3.Scale(1/length, sum)
		normals[i] = mgl64.Vec3{unit.X, unit.Y, unit.Z}
	}
	return normals
}

// cornerAngle は頂点originでの内角を返す。
func cornerAngle(origin r3.Vec, a r3.Vec, b r3.Vec) float64 {
	u := r3.Sub(a, origin)
	v := r3.Sub(b, origin)
	nu := r3.Norm(u)
	nv := r3.Norm(v)
	if nu == 0 || nv == 0 {
		return 0
	}
	cos := r3.Dot(u, v) / (nu * nv)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

func toR3(v mgl64.Vec3) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
