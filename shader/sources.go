// Package shader compiles GLSL programs and resolves their uniforms.
package shader

import "github.com/richinsley/oglrender/gpu"

// ─────────────────────────────── Debug text ───────────────────────────────

const debugVertexSource = `#version 410 core
layout (location = 0) in vec3 position;
layout (location = 1) in vec4 colour;
layout (location = 2) in vec2 texCoord;

out Vertex {
    vec4 colour;
    vec2 texCoord;
} OUT;

void main() {
    OUT.colour   = colour;
    OUT.texCoord = texCoord;
    gl_Position  = vec4(position, 1.0);
}
`

const debugFragmentSource = `#version 410 core
uniform sampler2D mainTex;

in Vertex {
    vec4 colour;
    vec2 texCoord;
} IN;

out vec4 fragColour;

void main() {
    fragColour = texture(mainTex, IN.texCoord) * IN.colour;
}
`

// ───────────────────────────────── Scene ─────────────────────────────────

const sceneVertexSource = `#version 410 core
uniform mat4 modelMatrix;
uniform mat4 viewMatrix;
uniform mat4 projMatrix;

layout (location = 0) in vec3 position;
layout (location = 1) in vec4 colour;
layout (location = 2) in vec2 texCoord;
layout (location = 3) in vec3 normal;

out Vertex {
    vec4 colour;
    vec2 texCoord;
    vec3 normal;
    vec3 worldPos;
} OUT;

void main() {
    vec4 world    = modelMatrix * vec4(position, 1.0);
    OUT.worldPos  = world.xyz;
    OUT.normal    = normalize(mat3(transpose(inverse(modelMatrix))) * normal);
    OUT.colour    = colour;
    OUT.texCoord  = texCoord;
    gl_Position   = projMatrix * viewMatrix * world;
}
`

// Blinn-Phong with linear falloff to zero at lightRadius.
const sceneFragmentSource = `#version 410 core
uniform sampler2D mainTex;
uniform int  hasTexture;
uniform vec3 lightPos;
uniform vec3 lightColour;
uniform float lightRadius;
uniform vec3 cameraPos;

in Vertex {
    vec4 colour;
    vec2 texCoord;
    vec3 normal;
    vec3 worldPos;
} IN;

out vec4 fragColour;

void main() {
    vec4 albedo = IN.colour;
    if (hasTexture != 0) {
        albedo *= texture(mainTex, IN.texCoord);
    }

    vec3 incident = normalize(lightPos - IN.worldPos);
    vec3 viewDir  = normalize(cameraPos - IN.worldPos);
    vec3 halfDir  = normalize(incident + viewDir);
    vec3 n        = normalize(IN.normal);

    float lambert     = max(dot(incident, n), 0.0);
    float dist        = length(lightPos - IN.worldPos);
    float attenuation = lightRadius > 0.0 ? 1.0 - clamp(dist / lightRadius, 0.0, 1.0) : 1.0;
    float specular    = pow(max(dot(halfDir, n), 0.0), 50.0);

    vec3 lit = albedo.rgb * 0.1
             + albedo.rgb * lightColour * lambert * attenuation
             + lightColour * specular * attenuation * 0.33;
    fragColour = vec4(lit, albedo.a);
}
`

// ─────────────────────────────── Public API ───────────────────────────────

// NewDebug builds the program the debug text overlay draws with.
func NewDebug(dev gpu.Device) (*Shader, error) {
	return New(dev, debugVertexSource, debugFragmentSource)
}

// NewDefault builds the lit, optionally textured program used for render
// objects without a shader of their own.
func NewDefault(dev gpu.Device) (*Shader, error) {
	return New(dev, sceneVertexSource, sceneFragmentSource)
}
