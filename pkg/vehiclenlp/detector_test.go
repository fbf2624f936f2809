package vehiclenlp

import (
	"reflect"
	"testing"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		make_, model, want string
	}{
		{"Honda", "Civic", "honda-civic"},
		{"Mazda", "MX-5", "mazda-mx5"},
		{"Honda", "CR-V", "honda-crv"},
		{"Jeep", "Grand Cherokee", "jeep-grand-cherokee"},
		{"Volkswagen", "ID.4", "volkswagen-id4"},
		{"Tesla", "Model 3", "tesla-model-3"},
	}
	for _, c := range cases {
		if got := Slug(c.make_, c.model); got != c.want {
			t.Errorf("Slug(%q, %q) = %q, want %q", c.make_, c.model, got, c.want)
		}
	}
}

func TestDetectMakeModelPhrase(t *testing.T) {
	d := NewDetector()
	got := d.Detect("Just bought a 2019 Honda Civic, loving it so far", nil)
	if !reflect.DeepEqual(got, []string{"honda-civic"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectAlias(t *testing.T) {
	d := NewDetector()
	got := d.Detect("my chevy silverado tows great", nil)
	if !reflect.DeepEqual(got, []string{"chevrolet-silverado"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectStandaloneUniqueModel(t *testing.T) {
	d := NewDetector()
	got := d.Detect("Wrangler owners: what tires do you run?", nil)
	if !reflect.DeepEqual(got, []string{"jeep-wrangler"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectAmbiguousModelNeedsMake(t *testing.T) {
	d := NewDetector()
	// "1500" on its own is too ambiguous to match
	if got := d.Detect("looking at a 1500 for towing", nil); got != nil {
		t.Fatalf("expected no match, got %v", got)
	}
	got := d.Detect("looking at a Ram 1500 for towing", nil)
	if !reflect.DeepEqual(got, []string{"ram-1500"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectLongestPhraseWins(t *testing.T) {
	d := NewDetector()
	got := d.Detect("Jeep Grand Cherokee transmission problems", nil)
	if len(got) == 0 || got[0] != "jeep-grand-cherokee" {
		t.Fatalf("got %v", got)
	}
	for _, s := range got {
		if s == "jeep-cherokee" {
			t.Fatalf("shorter phrase should not also match: %v", got)
		}
	}
}

func TestDetectMaskedRegionBlocksSubPhrase(t *testing.T) {
	d := NewDetector()
	// Both occurrences of the longer phrase must be masked, or the second
	// one leaks a spurious standalone "cherokee" match.
	got := d.Detect("Grand Cherokee towing setup, same grand cherokee as last year", nil)
	if !reflect.DeepEqual(got, []string{"jeep-grand-cherokee"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectStandaloneAndLongerPhraseCoexist(t *testing.T) {
	d := NewDetector()
	// Masking must not swallow a genuine standalone mention elsewhere.
	got := d.Detect("traded my Cherokee in for a Grand Cherokee", nil)
	if !reflect.DeepEqual(got, []string{"jeep-cherokee", "jeep-grand-cherokee"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectMaskingIgnoresAllowlist(t *testing.T) {
	d := NewDetector()
	// The text names a Grand Cherokee; filtering that slug out must not
	// let the shorter phrase reinterpret the same region.
	got := d.Detect("Jeep Grand Cherokee transmission problems", []string{"jeep-cherokee"})
	if got != nil {
		t.Fatalf("expected no match, got %v", got)
	}
}

func TestDetectDeduplicates(t *testing.T) {
	d := NewDetector()
	got := d.Detect("Civic vs civic vs Honda Civic: the Civic wins", nil)
	if !reflect.DeepEqual(got, []string{"honda-civic"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectOrderIndependent(t *testing.T) {
	d := NewDetector()
	a := d.Detect("Corolla or Civic?", nil)
	b := d.Detect("Civic or Corolla?", nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("detection should be order independent: %v vs %v", a, b)
	}
	if !reflect.DeepEqual(a, []string{"honda-civic", "toyota-corolla"}) {
		t.Fatalf("got %v", a)
	}
}

func TestDetectAllowlistFilters(t *testing.T) {
	d := NewDetector()
	text := "Comparing the Outback against the Forester and a CX-5"
	all := d.Detect(text, nil)
	if len(all) != 3 {
		t.Fatalf("expected 3 detections, got %v", all)
	}
	got := d.Detect(text, []string{"subaru-outback"})
	if !reflect.DeepEqual(got, []string{"subaru-outback"}) {
		t.Fatalf("got %v", got)
	}
	if got := d.Detect(text, []string{}); got != nil {
		t.Fatalf("empty allowlist should retain nothing, got %v", got)
	}
}

func TestDetectWordBoundaries(t *testing.T) {
	d := NewDetector()
	if got := d.Detect("civicduty is my username", nil); got != nil {
		t.Fatalf("expected no match inside a longer word, got %v", got)
	}
}

func TestDetectEmptyText(t *testing.T) {
	d := NewDetector()
	if got := d.Detect("", []string{"honda-civic"}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestDetectCustomKeywords(t *testing.T) {
	d := NewDetectorWithKeywords(map[string]string{
		"miata": "mazda-mx5",
		"MX-5":  "mazda-mx5",
	})
	got := d.Detect("the miata is always the answer", nil)
	if !reflect.DeepEqual(got, []string{"mazda-mx5"}) {
		t.Fatalf("got %v", got)
	}
}

func TestDetectNickname(t *testing.T) {
	d := NewDetector()
	got := d.Detect("the miata is always the answer", nil)
	if !reflect.DeepEqual(got, []string{"mazda-mx5"}) {
		t.Fatalf("got %v", got)
	}
}
