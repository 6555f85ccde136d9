// shaders.go - embedded GLSL program source
//
// One vertex/fragment program pair services every target kind; the fragment
// shader branches on the small "special" selector uniform rather than the
// renderer switching programs per draw call (spec.md §4.5 Design Notes: target
// switches must not stall the pipeline with program or VAO rebinds).

package gl

import _ "embed"

//go:embed shaders/target.vert
var VertexShaderSource string

//go:embed shaders/target.frag
var FragmentShaderSource string
