package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/richinsley/oglrender/gpu/gputest"
)

type fakeTranslator struct {
	stages []string
	err    error
}

func (f *fakeTranslator) Translate(source, stage string) (Translation, error) {
	f.stages = append(f.stages, stage)
	if f.err != nil {
		return Translation{}, f.err
	}
	return Translation{
		Code:     "#version 410 core\n// " + stage,
		Uniforms: map[string]string{"mainTex": "_umainTex"},
	}, nil
}

func TestIsESSL(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"#version 300 es\nvoid main(){}", true},
		{"\n// comment\n#version 100\n", true},
		{"#version 410 core\n", false},
		{"#version\n", false},
		{"void main(){}", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsESSL(tt.src); got != tt.want {
			t.Errorf("IsESSL(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestUniformLocationIsCached(t *testing.T) {
	dev := gputest.New().WithUniforms("projMatrix")
	s, err := NewDefault(dev)
	if err != nil {
		t.Fatal(err)
	}
	if s.ProgramID() == 0 {
		t.Fatal("program id is 0")
	}
	for i := 0; i < 3; i++ {
		if loc := s.UniformLocation("projMatrix"); loc != 0 {
			t.Fatalf("projMatrix location = %d", loc)
		}
		if loc := s.UniformLocation("missing"); loc != -1 {
			t.Fatalf("missing location = %d", loc)
		}
	}
	if n := dev.Count("GetUniformLocation"); n != 2 {
		t.Errorf("GetUniformLocation called %d times, want 2", n)
	}

	s.Destroy()
	s.Destroy()
	if dev.Deleted["program"] != 1 || s.ProgramID() != 0 {
		t.Errorf("Destroy: deleted=%d program=%d", dev.Deleted["program"], s.ProgramID())
	}
}

func TestTranslatedUniformNames(t *testing.T) {
	dev := gputest.New().WithUniforms("_umainTex")
	tr := &fakeTranslator{}
	s, err := FromSource(dev, tr, "#version 300 es\nvoid main(){}", "#version 410 core\nvoid main(){}")
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.stages) != 1 || tr.stages[0] != "vertex" {
		t.Errorf("translated stages = %v, want [vertex]", tr.stages)
	}
	if loc := s.UniformLocation("mainTex"); loc != 0 {
		t.Errorf("mainTex resolved to %d, want the mapped name's location", loc)
	}
	if src := dev.Programs[s.ProgramID()][0]; !strings.HasPrefix(src, "#version 410 core") {
		t.Errorf("vertex source not replaced by translation: %q", src)
	}
}

func TestTranslationErrors(t *testing.T) {
	dev := gputest.New()
	essl := "#version 300 es\nvoid main(){}"
	if _, err := FromSource(dev, nil, essl, essl); err == nil {
		t.Error("ESSL accepted without a translator")
	}
	boom := errors.New("boom")
	if _, err := FromSource(dev, &fakeTranslator{err: boom}, essl, essl); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
	if dev.Count("CompileProgram") != 0 {
		t.Error("program compiled after a translation failure")
	}
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "v.glsl")
	frag := filepath.Join(dir, "f.glsl")
	os.WriteFile(vert, []byte(sceneVertexSource), 0o644)
	os.WriteFile(frag, []byte(sceneFragmentSource), 0o644)

	dev := gputest.New()
	if _, err := Load(dev, nil, vert, frag); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := Load(dev, nil, vert, filepath.Join(dir, "nope.glsl")); err == nil {
		t.Error("missing fragment shader accepted")
	}

	dev.CompileErr = errors.New("syntax error")
	if _, err := Load(dev, nil, vert, frag); err == nil {
		t.Error("compile failure not reported")
	}
}
