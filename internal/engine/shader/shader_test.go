package shader

import (
	"strings"
	"testing"
)

// The renderer binds attributes by location and uniforms by name; keep the
// embedded sources in step with it.
func TestVoxelShaderInterface(t *testing.T) {
	for _, want := range []string{
		"#version 410 core",
		"layout (location = 0) in vec3 aPos;",
		"layout (location = 1) in vec2 aUV;",
		"layout (location = 2) in vec3 aNormal;",
		"uniform mat4 uModel;",
		"uniform mat4 uView;",
		"uniform mat4 uProjection;",
	} {
		if !strings.Contains(VoxelVertexShader, want) {
			t.Errorf("vertex shader missing %q", want)
		}
	}

	for _, want := range []string{
		"#version 410 core",
		"uniform sampler2D uAtlas;",
		"uniform vec3 uLightDir;",
		"uniform vec3 uFogColor;",
		"uniform float uFogStart;",
		"uniform float uFogEnd;",
	} {
		if !strings.Contains(VoxelFragmentShader, want) {
			t.Errorf("fragment shader missing %q", want)
		}
	}
}
