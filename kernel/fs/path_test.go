package fs

import (
	"reflect"
	"testing"
)

func TestPathClean(t *testing.T) {
	cases := map[Path]Path{
		"":                 "/",
		"/":                "/",
		"/a/b":             "/a/b",
		"a/b/":             "/a/b",
		"/a/./b":           "/a/b",
		"/a/../b":          "/b",
		"///a//b///":       "/a/b",
	}

	for in, want := range cases {
		if got := in.Clean(); got != want {
			t.Errorf("Path(%q).Clean() = %q; want %q", in, got, want)
		}
	}
}

func TestPathComponents(t *testing.T) {
	got := Path("/a/b/c").Components()
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Components() = %v; want %v", got, want)
	}
}

func TestPathFileNameAndExtension(t *testing.T) {
	p := Path("/bin/editor.run")
	if got := p.FileName(); got != "editor.run" {
		t.Errorf("FileName() = %q; want %q", got, "editor.run")
	}
	if got := p.FileExtension(); got != "run" {
		t.Errorf("FileExtension() = %q; want %q", got, "run")
	}

	if got := Path("/bin/noext").FileExtension(); got != "" {
		t.Errorf("FileExtension() of extensionless path = %q; want empty", got)
	}
}

func TestPathAppendAndParent(t *testing.T) {
	if got := Path("/a").Append("b"); got != "/a/b" {
		t.Errorf("Append() = %q; want /a/b", got)
	}
	if got := Path("/a/b").Parent(); got != "/a" {
		t.Errorf("Parent() = %q; want /a", got)
	}
}
