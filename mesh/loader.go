package mesh

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunk tags of the MeshGeometry text format. Each is a single bit so a
// writer could OR them into a mask; the reader only ever sees one at a time.
const (
	chunkPositions     = 1
	chunkNormals       = 2
	chunkTangents      = 4
	chunkColours       = 8
	chunkTex0          = 16
	chunkTex1          = 32
	chunkWeightValues  = 64
	chunkWeightIndices = 128
	chunkIndices       = 256
	chunkJointNames    = 512
	chunkJointParents  = 1024
	chunkBindPose      = 2048
	chunkBindPoseInv   = 4096
	chunkMaterial      = 8192
	chunkSubMeshes     = 16384
	chunkSubMeshNames  = 32768
)

const meshFileVersion = 1

// maxElements bounds every header count so a corrupt file fails before
// anything is allocated for it.
const maxElements = 1 << 24

// Load reads a MeshGeometry (.msh) file.
func Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh %s: %w", path, err)
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh %s: %w", path, err)
	}
	log.Printf("Loaded mesh %s: %d vertices, %d indices", path, m.VertexCount(), m.IndexCount())
	return m, nil
}

// Read parses the whitespace separated MeshGeometry text format:
//
//	MeshGeometry
//	<version> <numMeshes> <numVertices> <numIndices> <numChunks>
//	<chunkType> <payload> ...
//
// Vertex chunks carry numVertices entries, the index chunk numIndices and
// the sub-mesh chunk numMeshes (start, count) pairs. Skinning, tangent and
// material chunks are parsed and dropped.
func Read(r io.Reader) (*Mesh, error) {
	t := newTokens(r)

	filetype, err := t.word()
	if err != nil {
		return nil, err
	}
	if filetype != "MeshGeometry" {
		return nil, fmt.Errorf("not a MeshGeometry file (header %q)", filetype)
	}

	var version, numMeshes, numVertices, numIndices, numChunks int
	for _, dst := range []*int{&version, &numMeshes, &numVertices, &numIndices, &numChunks} {
		if *dst, err = t.int(); err != nil {
			return nil, fmt.Errorf("bad header: %w", err)
		}
	}
	if version != meshFileVersion {
		return nil, fmt.Errorf("unsupported MeshGeometry version %d", version)
	}
	for _, c := range []struct {
		name string
		n    int
	}{
		{"mesh", numMeshes}, {"vertex", numVertices}, {"index", numIndices}, {"chunk", numChunks},
	} {
		if c.n < 0 || c.n > maxElements {
			return nil, fmt.Errorf("invalid %s count %d", c.name, c.n)
		}
	}

	m := New()
	for i := 0; i < numChunks; i++ {
		chunkType, err := t.int()
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", i, err)
		}
		switch chunkType {
		case chunkPositions:
			f, err := t.floats(numVertices * 3)
			if err != nil {
				return nil, fmt.Errorf("positions: %w", err)
			}
			m.positions = toVec3(f)
		case chunkNormals:
			f, err := t.floats(numVertices * 3)
			if err != nil {
				return nil, fmt.Errorf("normals: %w", err)
			}
			m.normals = toVec3(f)
		case chunkColours:
			f, err := t.floats(numVertices * 4)
			if err != nil {
				return nil, fmt.Errorf("colours: %w", err)
			}
			m.colours = toVec4(f)
		case chunkTex0:
			f, err := t.floats(numVertices * 2)
			if err != nil {
				return nil, fmt.Errorf("texture coordinates: %w", err)
			}
			m.texCoords = toVec2(f)
		case chunkIndices:
			idx, err := t.uints(numIndices)
			if err != nil {
				return nil, fmt.Errorf("indices: %w", err)
			}
			for j, v := range idx {
				if int(v) >= numVertices {
					return nil, fmt.Errorf("index %d references vertex %d of %d", j, v, numVertices)
				}
			}
			m.indices = idx
		case chunkSubMeshes:
			ranges, err := t.uints(numMeshes * 2)
			if err != nil {
				return nil, fmt.Errorf("sub-meshes: %w", err)
			}
			m.subMeshes = make([]SubMesh, numMeshes)
			for j := range m.subMeshes {
				m.subMeshes[j] = SubMesh{Start: int(ranges[j*2]), Count: int(ranges[j*2+1])}
			}
		case chunkTangents, chunkWeightValues:
			if _, err := t.floats(numVertices * 4); err != nil {
				return nil, fmt.Errorf("chunk %d: %w", chunkType, err)
			}
		case chunkTex1:
			if _, err := t.floats(numVertices * 2); err != nil {
				return nil, fmt.Errorf("chunk %d: %w", chunkType, err)
			}
		case chunkWeightIndices:
			if _, err := t.uints(numVertices * 4); err != nil {
				return nil, fmt.Errorf("chunk %d: %w", chunkType, err)
			}
		case chunkJointNames, chunkJointParents, chunkBindPose, chunkBindPoseInv, chunkMaterial, chunkSubMeshNames:
			return nil, fmt.Errorf("chunk type %d is not supported", chunkType)
		default:
			return nil, fmt.Errorf("unknown chunk type %d", chunkType)
		}
	}
	if err := checkSubMeshes(m); err != nil {
		return nil, err
	}
	return m, nil
}

// checkSubMeshes rejects ranges that run past the index buffer, or past the
// vertices when the mesh has no indices.
func checkSubMeshes(m *Mesh) error {
	limit := len(m.positions)
	if len(m.indices) > 0 {
		limit = len(m.indices)
	}
	for i, sub := range m.subMeshes {
		if sub.Start < 0 || sub.Count < 0 || sub.Start+sub.Count > limit {
			return fmt.Errorf("sub-mesh %d range [%d, %d) exceeds %d elements", i, sub.Start, sub.Start+sub.Count, limit)
		}
	}
	return nil
}

type tokens struct {
	s *bufio.Scanner
}

func newTokens(r io.Reader) *tokens {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 1024*1024)
	s.Split(bufio.ScanWords)
	return &tokens{s: s}
}

func (t *tokens) word() (string, error) {
	if !t.s.Scan() {
		if err := t.s.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return t.s.Text(), nil
}

func (t *tokens) int() (int, error) {
	w, err := t.word()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(w)
}

// floats reads n numbers. The slice grows as tokens arrive so a count the
// file cannot back never allocates up front.
func (t *tokens) floats(n int) ([]float32, error) {
	if n < 0 || n > 4*maxElements {
		return nil, fmt.Errorf("invalid element count %d", n)
	}
	out := make([]float32, 0, min(n, 4096))
	for len(out) < n {
		w, err := t.word()
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(w, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(f))
	}
	return out, nil
}

func (t *tokens) uints(n int) ([]uint32, error) {
	if n < 0 || n > 4*maxElements {
		return nil, fmt.Errorf("invalid element count %d", n)
	}
	out := make([]uint32, 0, min(n, 4096))
	for len(out) < n {
		w, err := t.word()
		if err != nil {
			return nil, err
		}
		u, err := strconv.ParseUint(w, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, uint32(u))
	}
	return out, nil
}

func toVec2(f []float32) []mgl32.Vec2 {
	out := make([]mgl32.Vec2, len(f)/2)
	for i := range out {
		out[i] = mgl32.Vec2{f[i*2], f[i*2+1]}
	}
	return out
}

func toVec3(f []float32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(f)/3)
	for i := range out {
		out[i] = mgl32.Vec3{f[i*3], f[i*3+1], f[i*3+2]}
	}
	return out
}

func toVec4(f []float32) []mgl32.Vec4 {
	out := make([]mgl32.Vec4, len(f)/4)
	for i := range out {
		out[i] = mgl32.Vec4{f[i*4], f[i*4+1], f[i*4+2], f[i*4+3]}
	}
	return out
}
