package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

func glStage(stage metadata.ShaderStage) (uint32, error) {
	switch stage {
	case metadata.ShaderStageVertex:
		return gl.VERTEX_SHADER, nil
	case metadata.ShaderStageGeometry:
		return gl.GEOMETRY_SHADER, nil
	case metadata.ShaderStageFragment:
		return gl.FRAGMENT_SHADER, nil
	}
	return 0, fmt.Errorf("shader stage %d is not supported by OpenGL 4.1", stage)
}

func compileStage(source string, stage uint32, name string) (uint32, error) {
	shader := gl.CreateShader(stage)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s: %s", core.ErrShaderCompile, name, strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func glUniformType(xtype uint32) metadata.ShaderUniformType {
	switch xtype {
	case gl.INT:
		return metadata.ShaderUniformTypeInt32
	case gl.UNSIGNED_INT:
		return metadata.ShaderUniformTypeUint32
	case gl.FLOAT:
		return metadata.ShaderUniformTypeFloat32
	case gl.FLOAT_VEC3:
		return metadata.ShaderUniformTypeVec3
	case gl.FLOAT_MAT3:
		return metadata.ShaderUniformTypeMatrix3
	case gl.FLOAT_MAT4:
		return metadata.ShaderUniformTypeMatrix4
	case gl.BOOL:
		return metadata.ShaderUniformTypeBool
	case gl.SAMPLER_2D, gl.SAMPLER_CUBE:
		return metadata.ShaderUniformTypeSampler
	}
	return metadata.ShaderUniformTypeFloat32
}

/**
 * @brief Compiles every stage, links the program and enumerates the
 * uniforms the linker kept. Members of uniform blocks have no location
 * and are left out.
 */
func (r *OpenGLRenderer) ShaderCreate(config *metadata.ShaderConfig) (*metadata.Shader, []metadata.ActiveUniform, error) {
	if len(config.Stages) != len(config.StageSources) {
		return nil, nil, fmt.Errorf("shader %s: %d stages but %d sources", config.Name, len(config.Stages), len(config.StageSources))
	}

	program := gl.CreateProgram()
	stages := make([]uint32, 0, len(config.Stages))
	defer func() {
		for _, s := range stages {
			gl.DetachShader(program, s)
			gl.DeleteShader(s)
		}
	}()

	for i, stage := range config.Stages {
		kind, err := glStage(stage)
		if err != nil {
			gl.DeleteProgram(program)
			return nil, nil, err
		}
		s, err := compileStage(config.StageSources[i], kind, fmt.Sprintf("%s/%s", config.Name, config.StageNames[i]))
		if err != nil {
			gl.DeleteProgram(program)
			return nil, nil, err
		}
		gl.AttachShader(program, s)
		stages = append(stages, s)
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return nil, nil, fmt.Errorf("%w: %s: %s", core.ErrShaderLink, config.Name, strings.TrimRight(log, "\x00"))
	}

	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	nameBuf := make([]uint8, maxLen+1)

	uniforms := make([]metadata.ActiveUniform, 0, count)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), int32(len(nameBuf)), &length, &size, &xtype, &nameBuf[0])
		name := string(nameBuf[:length])
		location := gl.GetUniformLocation(program, gl.Str(name+"\x00"))
		if location < 0 {
			continue
		}
		uniforms = append(uniforms, metadata.ActiveUniform{
			Name:     name,
			Location: location,
			Type:     glUniformType(xtype),
			Size:     size,
		})
	}

	shader := &metadata.Shader{
		Name:         config.Name,
		State:        metadata.SHADER_STATE_UNINITIALIZED,
		Config:       config,
		InternalData: program,
	}
	return shader, uniforms, nil
}

func (r *OpenGLRenderer) ShaderDestroy(shader *metadata.Shader) {
	if program, ok := shader.InternalData.(uint32); ok {
		gl.DeleteProgram(program)
	}
	shader.InternalData = nil
	shader.State = metadata.SHADER_STATE_NOT_CREATED
}

func (r *OpenGLRenderer) ShaderUse(shader *metadata.Shader) error {
	program, ok := shader.InternalData.(uint32)
	if !ok {
		return fmt.Errorf("%w: shader %s is not created", core.ErrInvalidHandle, shader.Name)
	}
	gl.UseProgram(program)
	return nil
}

// SetUniform writes to the program currently in use.
func (r *OpenGLRenderer) SetUniform(shader *metadata.Shader, location int32, value metadata.UniformValue) error {
	switch value.Type {
	case metadata.UniformTypeInt:
		gl.Uniform1i(location, value.Int())
	case metadata.UniformTypeUint:
		gl.Uniform1ui(location, value.Uint())
	case metadata.UniformTypeFloat:
		gl.Uniform1f(location, value.Float())
	case metadata.UniformTypeVec3:
		f := value.Floats()
		gl.Uniform3f(location, f[0], f[1], f[2])
	case metadata.UniformTypeMat3:
		f := value.Floats()
		gl.UniformMatrix3fv(location, 1, false, &f[0])
	case metadata.UniformTypeMat4:
		f := value.Floats()
		gl.UniformMatrix4fv(location, 1, false, &f[0])
	default:
		return fmt.Errorf("shader %s: unsupported uniform type %s", shader.Name, value.Type)
	}
	return nil
}
