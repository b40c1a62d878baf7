package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

type glGeometry struct {
	vao uint32
	vbo uint32
	ebo uint32
}

func (r *OpenGLRenderer) CreateGeometry(config *metadata.GeometryConfig) (*metadata.Geometry, error) {
	if len(config.Vertices) == 0 {
		return nil, fmt.Errorf("geometry %s has no vertices", config.Name)
	}
	g := &glGeometry{}
	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	stride := int32(unsafe.Sizeof(math.Vertex3D{}))
	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(config.Vertices)*int(stride), unsafe.Pointer(&config.Vertices[0]), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(math.Vertex3D{}.Position))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(math.Vertex3D{}.Normal))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, unsafe.Offsetof(math.Vertex3D{}.Texcoord))

	if len(config.Indices) > 0 {
		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(config.Indices)*4, gl.Ptr(config.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	return &metadata.Geometry{
		Name:         config.Name,
		VertexCount:  uint32(len(config.Vertices)),
		IndexCount:   uint32(len(config.Indices)),
		InternalData: g,
	}, nil
}

func (r *OpenGLRenderer) DestroyGeometry(geometry *metadata.Geometry) {
	g, ok := geometry.InternalData.(*glGeometry)
	if !ok {
		return
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteVertexArrays(1, &g.vao)
	geometry.InternalData = nil
}

// DrawGeometry draws with whatever program and textures are currently bound.
func (r *OpenGLRenderer) DrawGeometry(geometry *metadata.Geometry) error {
	g, ok := geometry.InternalData.(*glGeometry)
	if !ok {
		return fmt.Errorf("%w: geometry %s has no device handle", core.ErrInvalidHandle, geometry.Name)
	}
	gl.BindVertexArray(g.vao)
	if geometry.IndexCount > 0 {
		gl.DrawElements(gl.TRIANGLES, int32(geometry.IndexCount), gl.UNSIGNED_INT, gl.PtrOffset(0))
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(geometry.VertexCount))
	}
	gl.BindVertexArray(0)
	return nil
}
