package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func TestCLIValidate(t *testing.T) {
	out, err := run(t, "", "validate", rackPath)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(out, "7 primitives, 0 errors, 0 warnings") {
		t.Errorf("unexpected summary: %q", out)
	}
}

func TestCLIValidateReportsErrors(t *testing.T) {
	out, err := run(t, `(box :name "a" :size (vec3 1 -1 1))`, "validate", "-")
	if err == nil {
		t.Fatal("expected validate to fail")
	}
	if !strings.Contains(out, "length y must not be negative") {
		t.Errorf("finding not printed: %q", out)
	}
}

func TestCLITessellate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rack.obj")
	if _, err := run(t, "", "tessellate", rackPath, "-o", path); err != nil {
		t.Fatalf("tessellate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	obj := string(data)
	if !strings.HasPrefix(obj, "o column-lower\n") {
		t.Errorf("OBJ should start with the first primitive, got %q", obj[:min(len(obj), 40)])
	}
	if n := strings.Count(obj, "\no "); n != 4 {
		t.Errorf("expected 5 objects, got %d", n+1)
	}
	if n := strings.Count(obj, "\nf "); n != 40 {
		t.Errorf("expected 40 faces, got %d", n)
	}
}

func TestCLIInstance(t *testing.T) {
	out, err := run(t, "", "instance", rackPath)
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	var m struct {
		Instances []struct {
			Primitive string `json:"primitive"`
			Template  string `json:"template"`
		} `json:"instances"`
		Templates []struct {
			Primitive string `json:"primitive"`
			Uses      int    `json:"uses"`
		} `json:"templates"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(m.Instances) != 2 || m.Instances[1].Template != "valve-a" {
		t.Errorf("unexpected instances: %+v", m.Instances)
	}
	if len(m.Templates) != 1 || m.Templates[0].Uses != 2 {
		t.Errorf("unexpected templates: %+v", m.Templates)
	}
}

func TestCLIConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plantmesh.toml")
	if err := os.WriteFile(path, []byte("[connect]\ntolerance = 0.25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "", "config", "--config", path)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "[connect]") || !strings.Contains(out, "0.25") {
		t.Errorf("effective config not printed: %q", out)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[connect]\ntolerance = -1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "config", "--config", bad); err == nil {
		t.Error("expected invalid config to fail")
	}
}

func TestCLIMissingScene(t *testing.T) {
	if _, err := run(t, "", "tessellate", filepath.Join(t.TempDir(), "absent.plant")); err == nil {
		t.Error("expected missing scene file to fail")
	}
}
