package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cube returns an unindexed unit cube centred on the origin: six faces, two
// triangles each, with per-face normals, colours and texture coordinates.
func Cube() *Mesh {
	type face struct {
		normal mgl32.Vec3
		right  mgl32.Vec3
		up     mgl32.Vec3
		colour mgl32.Vec4
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec4{1, 0, 0, 1}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}, mgl32.Vec4{0, 1, 0, 1}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec4{0, 0, 1, 1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}, mgl32.Vec4{1, 1, 0, 1}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec4{1, 0, 1, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec4{0, 1, 1, 1}},
	}
	corners := [6][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, -1}, {1, 1}, {-1, 1}}

	m := New()
	for _, f := range faces {
		centre := f.normal.Mul(0.5)
		for _, c := range corners {
			p := centre.Add(f.right.Mul(c[0] * 0.5)).Add(f.up.Mul(c[1] * 0.5))
			m.positions = append(m.positions, p)
			m.normals = append(m.normals, f.normal)
			m.colours = append(m.colours, f.colour)
			m.texCoords = append(m.texCoords, mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2})
		}
	}
	return m
}

// Sphere returns an indexed unit-radius UV sphere. stacks and slices are
// clamped to at least 2 and 3.
func Sphere(stacks, slices int) *Mesh {
	if stacks < 2 {
		stacks = 2
	}
	if slices < 3 {
		slices = 3
	}

	m := New()
	for i := 0; i <= stacks; i++ {
		v := float32(i) / float32(stacks)
		theta := float64(v) * math.Pi
		for j := 0; j <= slices; j++ {
			u := float32(j) / float32(slices)
			phi := float64(u) * 2 * math.Pi
			n := mgl32.Vec3{
				float32(math.Sin(theta) * math.Cos(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			m.positions = append(m.positions, n)
			m.normals = append(m.normals, n)
			m.texCoords = append(m.texCoords, mgl32.Vec2{u, 1 - v})
			m.colours = append(m.colours, mgl32.Vec4{(n[0] + 1) / 2, (n[1] + 1) / 2, (n[2] + 1) / 2, 1})
		}
	}

	row := uint32(slices + 1)
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			a := uint32(i)*row + uint32(j)
			b := a + row
			m.indices = append(m.indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}
