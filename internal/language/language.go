package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographic maps ISO 639-2/B codes to their terminology equivalents.
var bibliographic = map[string]string{
	"alb": "sqi",
	"arm": "hye",
	"baq": "eus",
	"bur": "mya",
	"chi": "zho",
	"cze": "ces",
	"dut": "nld",
	"fre": "fra",
	"geo": "kat",
	"ger": "deu",
	"gre": "ell",
	"ice": "isl",
	"mac": "mkd",
	"mao": "mri",
	"may": "msa",
	"per": "fas",
	"rum": "ron",
	"slo": "slk",
	"tib": "bod",
	"wel": "cym",
}

// Canonical converts a language tag to its ISO 639-2/T code. Bibliographic
// codes map to their terminology form (fre becomes fra). Empty and
// undetermined tags return "". Well-formed tags x/text does not know are
// kept as supplied, lowercased.
func Canonical(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	switch code {
	case "", "und", "unk", "zxx", "mis", "mul":
		return ""
	}
	if alt, ok := bibliographic[code]; ok {
		return alt
	}
	tag, err := language.Parse(code)
	if err != nil {
		return passthrough(code)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return passthrough(code)
	}
	iso3 := base.ISO3()
	if iso3 == "und" {
		return passthrough(code)
	}
	return iso3
}

// passthrough keeps a source tag that is shaped like a BCP 47 or ISO 639
// code, so it is safe in file names and packager descriptors.
func passthrough(code string) string {
	for _, part := range strings.Split(code, "-") {
		if len(part) == 0 || len(part) > 8 {
			return ""
		}
		for _, r := range part {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return ""
			}
		}
	}
	return code
}

// DisplayName returns the English name for a language tag, or "Unknown".
func DisplayName(code string) string {
	canonical := Canonical(code)
	if canonical == "" {
		return "Unknown"
	}
	tag, err := language.Parse(canonical)
	if err != nil {
		return strings.ToUpper(canonical)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(canonical)
}
