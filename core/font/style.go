package font

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
)

// Descriptor describes a font family available from some location, together
// with the variants present.
type Descriptor struct {
	Family   string
	Path     string
	Variants []string
}

// GuessStyleAndWeight trys to guess a font's style and weight from a
// font's name or file name. Separators may be blanks, hyphens or
// underscores.
func GuessStyleAndWeight(fontname string) (xfont.Style, xfont.Weight) {
	fontname = path.Base(fontname)
	if ext := path.Ext(fontname); len(ext) > 1 && len(ext) <= 5 {
		fontname = fontname[:len(fontname)-len(ext)]
	}
	fontname = strings.ToLower(fontname)
	style, weight := xfont.StyleNormal, xfont.WeightNormal
	for _, part := range strings.FieldsFunc(fontname, isSeparator) {
		switch part {
		case "italic":
			style = xfont.StyleItalic
		case "oblique":
			style = xfont.StyleOblique
		case "thin", "hairline":
			weight = xfont.WeightThin
		case "light", "xlight":
			weight = xfont.WeightLight
		case "medium":
			weight = xfont.WeightMedium
		case "semibold":
			weight = xfont.WeightSemiBold
		case "bold", "b":
			weight = xfont.WeightBold
		case "xbold", "extrabold":
			weight = xfont.WeightExtraBold
		case "black":
			weight = xfont.WeightBlack
		}
	}
	return style, weight
}

// FamilyName strips style and weight indicators off a font name.
func FamilyName(fontname string) string {
	fontname = strings.ToLower(path.Base(fontname))
	if ext := path.Ext(fontname); len(ext) > 1 && len(ext) <= 5 {
		fontname = fontname[:len(fontname)-len(ext)]
	}
	var fam []string
	for _, part := range strings.FieldsFunc(fontname, isSeparator) {
		switch part {
		case "regular", "normal", "italic", "oblique", "thin", "hairline", "light",
			"xlight", "medium", "semibold", "bold", "b", "r", "xbold", "extrabold", "black":
			continue
		}
		fam = append(fam, part)
	}
	return strings.Join(fam, " ")
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '-' || r == '_'
}

// Matches returns true if a font's filename contains pattern and indicators
// for a given style and weight.
func Matches(fontfilename, pattern string, style xfont.Style, weight xfont.Weight) bool {
	basename := path.Base(fontfilename)
	basename = basename[:len(basename)-len(path.Ext(basename))]
	basename = strings.ToLower(basename)
	if !strings.Contains(NormalizeFontname(basename), NormalizeFontname(pattern)) {
		return false
	}
	s, w := GuessStyleAndWeight(basename)
	return s == style && w == weight
}

// MatchConfidence is a type for expressing the confidence level of font matching.
type MatchConfidence int

const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

// ClosestMatch scans a list of font desriptors and returns the closest match
// for a given set of parameters.
// If no variant matches, returns `NoConfidence`.
//
func ClosestMatch(fdescs []Descriptor, pattern string, style xfont.Style,
	weight xfont.Weight) (match Descriptor, variant string, confidence MatchConfidence) {
	//
	r, err := regexp.Compile(strings.ToLower(pattern))
	if err != nil {
		tracer().Errorf("invalid font name pattern")
		return
	}
	for _, fdesc := range fdescs {
		if !r.MatchString(strings.ToLower(fdesc.Family)) {
			continue
		}
		for _, v := range fdesc.Variants {
			s := MatchStyle(v, style)
			w := MatchWeight(v, weight)
			if (s+w)/2 > confidence {
				confidence = (s + w) / 2
				variant = v
				match = fdesc
			}
		}
	}
	return
}

// MatchStyle trys to match a font-variant to a given style.
func MatchStyle(variantName string, style xfont.Style) MatchConfidence {
	variantName = strings.ToLower(variantName)
	switch style {
	case xfont.StyleNormal:
		switch variantName {
		case "regular", "400":
			return PerfectConfidence
		case "100", "200", "300", "500", "light", "bold", "700":
			return HighConfidence
		}
		return NoConfidence
	case xfont.StyleItalic:
		if strings.Contains(variantName, "italic") {
			return PerfectConfidence
		}
		if strings.Contains(variantName, "obliq") {
			return HighConfidence
		}
		return NoConfidence
	case xfont.StyleOblique:
		if strings.Contains(variantName, "obliq") {
			return PerfectConfidence
		}
		if strings.Contains(variantName, "italic") {
			return HighConfidence
		}
		return NoConfidence
	}
	return NoConfidence
}

// MatchWeight trys to match a font-variant to a given weight.
// Variant names may carry a style suffix, as in "700italic".
func MatchWeight(variantName string, weight xfont.Weight) MatchConfidence {
	variantName = strings.ToLower(variantName)
	if v := strings.TrimSuffix(strings.TrimSuffix(variantName, "italic"), "oblique"); v == "" {
		variantName = "regular"
	} else {
		variantName = v
	}
	// CSS font-weight values are 100 (thin) to 900 (black), with 400 = normal
	if strconv.Itoa(int(weight)*100+400) == variantName {
		return PerfectConfidence
	}
	switch variantName {
	case "regular", "400", "italic", "oblique", "normal", "text":
		switch weight {
		case xfont.WeightNormal, xfont.WeightMedium:
			return PerfectConfidence
		case xfont.WeightThin, xfont.WeightExtraLight, xfont.WeightLight:
			return LowConfidence
		}
		return NoConfidence
	case "100", "200", "300", "light":
		switch weight {
		case xfont.WeightThin, xfont.WeightExtraLight, xfont.WeightLight:
			return PerfectConfidence
		case xfont.WeightNormal, xfont.WeightMedium:
			return LowConfidence
		}
		return NoConfidence
	case "500":
		switch weight {
		case xfont.WeightMedium:
			return PerfectConfidence
		case xfont.WeightSemiBold:
			return HighConfidence
		case xfont.WeightNormal, xfont.WeightBold:
			return LowConfidence
		}
		return NoConfidence
	case "bold", "700":
		switch weight {
		case xfont.WeightBold:
			return PerfectConfidence
		case xfont.WeightSemiBold, xfont.WeightExtraBold:
			return HighConfidence
		}
		return NoConfidence
	case "extrabold", "600", "800", "900":
		switch weight {
		case xfont.WeightSemiBold:
			return LowConfidence
		case xfont.WeightBold:
			return HighConfidence
		}
		return NoConfidence
	}
	return NoConfidence
}
