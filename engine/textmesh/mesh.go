package textmesh

import (
	"image/color"
	"math"

	"golang.org/x/image/math/f32"
)

// Mesh is an indexed triangle mesh of textured, colored quads.
// Every quad has four vertices in the order top-right, bottom-right, top-left,
// bottom-left and two triangles (0,1,2) and (2,1,3).
type Mesh struct {
	Vertices  []f32.Vec3
	UV        []f32.Vec2
	Colors    []color.RGBA
	Triangles []uint32 // indices into Vertices, three per triangle
	Normals   []f32.Vec3
	Bounds    Bounds
}

// Bounds is an axis aligned bounding box.
type Bounds struct {
	Min, Max f32.Vec3
}

// Size returns the extent of the box.
func (b Bounds) Size() f32.Vec3 {
	return f32.Vec3{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

// Clear removes all geometry, keeping allocated buffers.
func (m *Mesh) Clear() {
	m.Vertices = m.Vertices[:0]
	m.UV = m.UV[:0]
	m.Colors = m.Colors[:0]
	m.Triangles = m.Triangles[:0]
	m.Normals = m.Normals[:0]
	m.Bounds = Bounds{}
}

// QuadCount returns the number of quads in the mesh.
func (m *Mesh) QuadCount() int {
	return len(m.Vertices) / 4
}

// addQuad appends a quad with corners (x0,y0) top-left and (x1,y1)
// bottom-right and texture box (u0,v0)–(u1,v1).
func (m *Mesh) addQuad(x0, y0, x1, y1, u0, v0, u1, v1 float32, c color.RGBA) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices,
		f32.Vec3{x1, y0, 0},
		f32.Vec3{x1, y1, 0},
		f32.Vec3{x0, y0, 0},
		f32.Vec3{x0, y1, 0},
	)
	m.UV = append(m.UV,
		f32.Vec2{u1, v0},
		f32.Vec2{u1, v1},
		f32.Vec2{u0, v0},
		f32.Vec2{u0, v1},
	)
	m.Colors = append(m.Colors, c, c, c, c)
	m.Triangles = append(m.Triangles,
		base, base+1, base+2,
		base+2, base+1, base+3,
	)
}

// shiftX moves every vertex horizontally.
func (m *Mesh) shiftX(dx float32) {
	if dx == 0 {
		return
	}
	for i := range m.Vertices {
		m.Vertices[i][0] += dx
	}
}

// RecalculateNormals sets every vertex normal to the normalized sum of the
// face normals of the triangles sharing the vertex.
func (m *Mesh) RecalculateNormals() {
	if cap(m.Normals) >= len(m.Vertices) {
		m.Normals = m.Normals[:len(m.Vertices)]
		for i := range m.Normals {
			m.Normals[i] = f32.Vec3{}
		}
	} else {
		m.Normals = make([]f32.Vec3, len(m.Vertices))
	}
	for t := 0; t+2 < len(m.Triangles); t += 3 {
		a, b, c := m.Triangles[t], m.Triangles[t+1], m.Triangles[t+2]
		n := faceNormal(m.Vertices[a], m.Vertices[b], m.Vertices[c])
		for _, i := range [3]uint32{a, b, c} {
			m.Normals[i] = add(m.Normals[i], n)
		}
	}
	for i := range m.Normals {
		m.Normals[i] = normalize(m.Normals[i])
	}
}

// RecalculateBounds sets Bounds to enclose all vertices.
func (m *Mesh) RecalculateBounds() {
	if len(m.Vertices) == 0 {
		m.Bounds = Bounds{}
		return
	}
	min, max := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	m.Bounds = Bounds{Min: min, Max: max}
}

func faceNormal(a, b, c f32.Vec3) f32.Vec3 {
	u := f32.Vec3{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := f32.Vec3{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	return f32.Vec3{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
}

func add(a, b f32.Vec3) f32.Vec3 {
	return f32.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func normalize(v f32.Vec3) f32.Vec3 {
	l := math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))
	if l == 0 {
		return v
	}
	return f32.Vec3{float32(float64(v[0]) / l), float32(float64(v[1]) / l), float32(float64(v[2]) / l)}
}
