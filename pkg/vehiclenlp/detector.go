// Package vehiclenlp detects vehicle mentions in unstructured text and maps
// them to canonical vehicle slugs using a keyword dictionary. No external
// dependencies.
package vehiclenlp

import (
	"sort"
	"strings"
	"unicode"
)

// makeAliases maps abbreviations/nicknames to canonical make names.
var makeAliases = map[string]string{
	"chevy":         "Chevrolet",
	"chevrolet":     "Chevrolet",
	"merc":          "Mercedes-Benz",
	"benz":          "Mercedes-Benz",
	"mercedes":      "Mercedes-Benz",
	"mercedes-benz": "Mercedes-Benz",
	"vw":            "Volkswagen",
	"volkswagen":    "Volkswagen",
	"toyota":        "Toyota",
	"honda":         "Honda",
	"ford":          "Ford",
	"bmw":           "BMW",
	"audi":          "Audi",
	"nissan":        "Nissan",
	"hyundai":       "Hyundai",
	"kia":           "Kia",
	"subaru":        "Subaru",
	"mazda":         "Mazda",
	"jeep":          "Jeep",
	"ram":           "Ram",
	"gmc":           "GMC",
	"dodge":         "Dodge",
	"lexus":         "Lexus",
	"acura":         "Acura",
	"tesla":         "Tesla",
	"porsche":       "Porsche",
	"volvo":         "Volvo",
	"cadillac":      "Cadillac",
	"infiniti":      "Infiniti",
	"genesis":       "Genesis",
	"mitsubishi":    "Mitsubishi",
	"mini":          "Mini",
	"rivian":        "Rivian",
	"polestar":      "Polestar",
}

// makeModels maps canonical make to its model lineup.
var makeModels = map[string][]string{
	"Toyota":        {"Camry", "Corolla", "RAV4", "Highlander", "Tacoma", "Tundra", "Prius", "4Runner", "Supra", "GR86", "Land Cruiser"},
	"Honda":         {"Civic", "Accord", "CR-V", "Pilot", "Odyssey", "Ridgeline", "Fit"},
	"Ford":          {"F-150", "F-250", "Mustang", "Explorer", "Escape", "Ranger", "Bronco", "Maverick", "Focus", "Fiesta"},
	"Chevrolet":     {"Silverado", "Equinox", "Tahoe", "Suburban", "Camaro", "Colorado", "Bolt", "Cruze"},
	"BMW":           {"3 Series", "5 Series", "X3", "X5", "M3", "M5", "i4", "iX"},
	"Mercedes-Benz": {"C-Class", "E-Class", "S-Class", "GLC", "GLE", "CLA", "EQS"},
	"Audi":          {"A4", "A6", "A3", "Q5", "Q7", "Q3", "e-tron", "RS5", "S4", "TT"},
	"Nissan":        {"Altima", "Sentra", "Rogue", "Pathfinder", "Frontier", "Titan", "Leaf"},
	"Hyundai":       {"Elantra", "Sonata", "Tucson", "Santa Fe", "Kona", "Palisade", "Ioniq 5"},
	"Kia":           {"Forte", "K5", "Sportage", "Telluride", "Sorento", "EV6", "Soul", "Stinger"},
	"Volkswagen":    {"Golf", "Jetta", "Tiguan", "Atlas", "Passat", "ID.4", "GTI", "Beetle"},
	"Subaru":        {"Outback", "Forester", "Crosstrek", "Impreza", "WRX", "Legacy", "Ascent", "BRZ"},
	"Mazda":         {"Mazda3", "Mazda6", "CX-5", "CX-30", "CX-50", "MX-5", "CX-90"},
	"Jeep":          {"Wrangler", "Grand Cherokee", "Cherokee", "Compass", "Renegade", "Gladiator"},
	"Ram":           {"1500", "2500", "3500"},
	"GMC":           {"Sierra", "Terrain", "Acadia", "Yukon", "Canyon"},
	"Dodge":         {"Charger", "Challenger", "Durango"},
	"Lexus":         {"RX", "ES", "NX", "IS", "GX", "LX"},
	"Acura":         {"TLX", "MDX", "RDX", "Integra", "NSX"},
	"Tesla":         {"Model 3", "Model Y", "Model S", "Model X", "Cybertruck"},
	"Porsche":       {"911", "Cayenne", "Macan", "Taycan", "Panamera", "Cayman"},
	"Volvo":         {"XC90", "XC60", "XC40", "S60", "V60"},
	"Cadillac":      {"Escalade", "CT5", "XT5", "Lyriq"},
	"Infiniti":      {"Q50", "QX60", "QX80"},
	"Genesis":       {"G70", "G80", "GV70", "GV80"},
	"Mitsubishi":    {"Outlander", "Mirage"},
	"Mini":          {"Cooper", "Countryman"},
	"Rivian":        {"R1T", "R1S"},
	"Polestar":      {"Polestar 2", "Polestar 3"},
}

// modelAliases maps nicknames to the make/model they canonically refer to.
var modelAliases = map[string][2]string{
	"miata": {"Mazda", "MX-5"},
	"vette": {"Chevrolet", "Corvette"},
	"stang": {"Ford", "Mustang"},
}

// Slug builds the canonical slug for a make/model pair, e.g.
// Slug("Mazda", "MX-5") == "mazda-mx5".
func Slug(make_, model string) string {
	return slugToken(make_) + "-" + slugToken(model)
}

// slugToken lowercases a name and collapses separators: spaces become
// hyphens, punctuation inside a word is dropped ("CR-V" -> "crv").
func slugToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Detector maps keyword phrases found in text to vehicle slugs.
type Detector struct {
	keywords map[string]string // lowercased phrase -> slug
	ordered  []string          // phrases sorted longest first
}

// NewDetector builds a detector over the default make/model dictionary.
// Model names unique to a single make match on their own ("wrangler");
// ambiguous ones only match as a "make model" phrase ("ram 1500").
func NewDetector() *Detector {
	keywords := make(map[string]string)

	modelCount := make(map[string]int)
	for _, models := range makeModels {
		for _, m := range models {
			modelCount[strings.ToLower(m)]++
		}
	}

	for make_, models := range makeModels {
		for _, m := range models {
			slug := Slug(make_, m)
			ml := strings.ToLower(m)
			// all-digit names ("1500", "911") are too ambiguous standalone
			if modelCount[ml] == 1 && len(ml) > 2 && !allDigits(ml) {
				keywords[ml] = slug
			}
			// every alias of the make forms a phrase keyword
			for alias, canonical := range makeAliases {
				if canonical == make_ {
					keywords[alias+" "+ml] = slug
				}
			}
		}
	}
	for nick, mm := range modelAliases {
		keywords[nick] = Slug(mm[0], mm[1])
	}
	return NewDetectorWithKeywords(keywords)
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// NewDetectorWithKeywords builds a detector over an explicit dictionary.
// Keys are matched case-insensitively on word boundaries.
func NewDetectorWithKeywords(keywords map[string]string) *Detector {
	kw := make(map[string]string, len(keywords))
	ordered := make([]string, 0, len(keywords))
	for k, v := range keywords {
		kl := strings.ToLower(k)
		kw[kl] = v
		ordered = append(ordered, kl)
	}
	// longest phrase first so "grand cherokee" wins over "cherokee"
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})
	return &Detector{keywords: kw, ordered: ordered}
}

// span is a matched byte range within the scanned text.
type span struct{ start, end int }

func (s span) overlaps(o span) bool { return s.start < o.end && o.start < s.end }

// Detect scans text for dictionary keywords and returns the deduplicated,
// sorted set of matched slugs. Phrases are tried longest first and every
// matched region is masked, so "grand cherokee" consumes its text before
// the standalone "cherokee" keyword is tried against it. Masking applies
// before the allowlist: a region names the vehicle its longest phrase
// names, whether or not that slug is retained. When allow is non-nil only
// slugs present in the allowlist are retained; a nil allowlist retains
// everything.
func (d *Detector) Detect(text string, allow []string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	var allowed map[string]bool
	if allow != nil {
		allowed = make(map[string]bool, len(allow))
		for _, s := range allow {
			allowed[s] = true
		}
	}

	var taken []span
	seen := make(map[string]bool)
	for _, phrase := range d.ordered {
		hit := false
		for _, sp := range wordSpans(lower, phrase) {
			if overlapsAny(taken, sp) {
				continue
			}
			taken = append(taken, sp)
			hit = true
		}
		if !hit {
			continue
		}
		slug := d.keywords[phrase]
		if allowed != nil && !allowed[slug] {
			continue
		}
		seen[slug] = true
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// wordSpans returns every word-boundary occurrence of phrase in s.
func wordSpans(s, phrase string) []span {
	var out []span
	for start := 0; ; {
		idx := strings.Index(s[start:], phrase)
		if idx < 0 {
			return out
		}
		idx += start
		end := idx + len(phrase)
		okBefore := idx == 0 || !isWordRune(rune(s[idx-1]))
		okAfter := end == len(s) || !isWordRune(rune(s[end]))
		if okBefore && okAfter {
			out = append(out, span{start: idx, end: end})
			start = end
		} else {
			start = idx + 1
		}
	}
}

func overlapsAny(taken []span, sp span) bool {
	for _, t := range taken {
		if t.overlaps(sp) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
