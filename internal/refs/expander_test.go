package refs

import (
	"fmt"
	"testing"
)

func TestExpandSimpleRange(t *testing.T) {
	errs := Errors{}
	got := Expand("GEO/ADD/32/12-13", "r1", errs)
	want := []string{"GEO/ADD/32/12", "GEO/ADD/32/13"}
	if len(got) != len(want) {
		t.Fatalf("unexpected refs: %#v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ref %d: got %q, want %q", i, got[i], want[i])
		}
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %#v", errs)
	}
}

func TestExpandNoRangeRoundTrip(t *testing.T) {
	for _, ref := range []string{"GEO/MAIN/25050", "RCIN 1028949", "MS 123"} {
		errs := Errors{}
		got := Expand(ref, "r1", errs)
		if len(got) != 1 || got[0] != ref {
			t.Fatalf("%q: got %#v", ref, got)
		}
	}
}

func TestExpandMultipleRanges(t *testing.T) {
	errs := Errors{}
	got := Expand("GEO/MAIN/25050-29643, 30724-32700", "r1", errs)
	wantCount := (29643 - 25050 + 1) + (32700 - 30724 + 1)
	if len(got) != wantCount {
		t.Fatalf("got %d refs, want %d", len(got), wantCount)
	}
	if got[0] != "GEO/MAIN/25050" {
		t.Fatalf("first ref of first range: %q", got[0])
	}
	if got[29643-25050] != "GEO/MAIN/29643" {
		t.Fatalf("last ref of first range: %q", got[29643-25050])
	}
	if got[29643-25050+1] != "GEO/MAIN/30724" {
		t.Fatalf("first ref of second range: %q", got[29643-25050+1])
	}
	if got[len(got)-1] != "GEO/MAIN/32700" {
		t.Fatalf("last ref of second range: %q", got[len(got)-1])
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %#v", errs)
	}
}

func TestExpandImproperSpaceInRange(t *testing.T) {
	errs := Errors{}
	got := Expand("GEO/MAIN/100-102, 200 -201", "r1", errs)
	want := []string{"GEO/MAIN/100", "GEO/MAIN/101", "GEO/MAIN/102",
		"GEO/MAIN/200", "GEO/MAIN/201"}
	if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestExpandPartCarriesBase(t *testing.T) {
	errs := Errors{}
	got := Expand("GEO/ADD/32/2/2-4, 6", "r1", errs)
	want := []string{"GEO/ADD/32/2/2", "GEO/ADD/32/2/3", "GEO/ADD/32/2/4",
		"GEO/ADD/32/2/6"}
	if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestExpandMixedFullCitations(t *testing.T) {
	// A full path-style citation after a comma replaces the base, so it is
	// emitted verbatim.
	errs := Errors{}
	got := Expand("GEO/ADD/32/2/2, GEO/ADD/32/3/1", "r1", errs)
	want := []string{"GEO/ADD/32/2/2", "GEO/ADD/32/3/1"}
	if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestExpandRCINRange(t *testing.T) {
	errs := Errors{}
	got := Expand("RCIN 100-102", "r1", errs)
	want := []string{"RCIN 100", "RCIN 101", "RCIN 102"}
	if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestExpandNonNumericBoundsReported(t *testing.T) {
	errs := Errors{}
	got := Expand("GEO/MAIN/32922A-33264, 33498-33500", "r7", errs)
	// The malformed range is skipped; the rest of the string is still
	// processed.
	want := []string{"GEO/MAIN/33498", "GEO/MAIN/33499", "GEO/MAIN/33500"}
	if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if errs["GEO/MAIN/32922A-33264"] != "r7" {
		t.Fatalf("error not recorded: %#v", errs)
	}
}

func TestStripZeros(t *testing.T) {
	cases := map[string]string{
		"GEO/MAIN/025050": "GEO/MAIN/25050",
		"GEO/0001/0":      "GEO/1/0",
		"GEO//25":         "GEO/0/25",
		"ABC":             "ABC",
	}
	for in, want := range cases {
		if got := StripZeros(in); got != want {
			t.Fatalf("StripZeros(%q) = %q, want %q", in, got, want)
		}
	}
}
