package docstring

import (
	"testing"
)

func TestParse_Google(t *testing.T) {
	doc := Parse(`Compute something useful.

    Longer explanation that spans
    two lines.

    Args:
        a (int): The first value. Defaults to 3.
        b (str, optional): The second value,
            continued on the next line.
        verbose: Print more.

    Returns:
        Nothing at all.
    `)

	if got, _ := doc.ShortDescription(); got != "Compute something useful." {
		t.Errorf("ShortDescription() = %q", got)
	}
	if got, _ := doc.LongDescription(); got != "Longer explanation that spans\ntwo lines." {
		t.Errorf("LongDescription() = %q", got)
	}
	if got, ok := doc.ParameterTypename("a"); !ok || got != "int" {
		t.Errorf("ParameterTypename(a) = %q, %v", got, ok)
	}
	if got, ok := doc.ParameterDefault("a"); !ok || got != "3" {
		t.Errorf("ParameterDefault(a) = %q, %v", got, ok)
	}
	if got, ok := doc.ParameterTypename("b"); !ok || got != "str" {
		t.Errorf("ParameterTypename(b) = %q, %v", got, ok)
	}
	if got, _ := doc.ParameterDescription("b"); got != "The second value, continued on the next line." {
		t.Errorf("ParameterDescription(b) = %q", got)
	}
	if _, ok := doc.ParameterTypename("verbose"); ok {
		t.Error("verbose should have no typename")
	}
	if _, ok := doc.ParameterDefault("b"); ok {
		t.Error("b should have no default")
	}

	want := []string{"a", "b", "verbose"}
	got := doc.Parameters()
	if len(got) != len(want) {
		t.Fatalf("Parameters() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Parameters()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestParse_Rest(t *testing.T) {
	doc := Parse(`Resize an image.

:param int width: Target width (default: 640)
:param height: Target height
    in pixels.
:type height: int
:returns: nothing
`)

	if got, _ := doc.ParameterTypename("width"); got != "int" {
		t.Errorf("ParameterTypename(width) = %q", got)
	}
	if got, _ := doc.ParameterDefault("width"); got != "640" {
		t.Errorf("ParameterDefault(width) = %q", got)
	}
	if got, _ := doc.ParameterTypename("height"); got != "int" {
		t.Errorf("ParameterTypename(height) = %q", got)
	}
	if got, _ := doc.ParameterDescription("height"); got != "Target height in pixels." {
		t.Errorf("ParameterDescription(height) = %q", got)
	}
	if got, _ := doc.ShortDescription(); got != "Resize an image." {
		t.Errorf("ShortDescription() = %q", got)
	}
}

func TestParse_Numpy(t *testing.T) {
	doc := Parse(`Sum values.

Parameters
----------
values : list, default [1, 2]
    Numbers to add.
scale : float
    Multiplier.
`)

	if got, _ := doc.ParameterTypename("values"); got != "list" {
		t.Errorf("ParameterTypename(values) = %q", got)
	}
	if got, _ := doc.ParameterDefault("values"); got != "[1, 2]" {
		t.Errorf("ParameterDefault(values) = %q", got)
	}
	if got, _ := doc.ParameterDescription("scale"); got != "Multiplier." {
		t.Errorf("ParameterDescription(scale) = %q", got)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "   \n\n  ", "Args:\n"} {
		doc := Parse(text)
		if _, ok := doc.ShortDescription(); ok {
			t.Errorf("Parse(%q).ShortDescription() should be empty", text)
		}
		if _, ok := doc.ParameterDescription("x"); ok {
			t.Errorf("Parse(%q).ParameterDescription(x) should be empty", text)
		}
	}
}

func TestClean(t *testing.T) {
	got := Clean("  First line.\n\n      indented\n    body\n")
	want := "First line.\n\n  indented\nbody"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}
