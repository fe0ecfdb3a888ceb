package culture

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LocaleData is what the locale database knows about a culture.
type LocaleData struct {
	// Name is the normalized culture name, e.g. "ja-JP" or "de-DE_phoneb".
	Name string
	// Tag is the BCP 47 tag without any collation extension.
	Tag language.Tag
	// SortName is the alternate sort suffix, e.g. "phoneb", empty for the default sort.
	SortName string
	// Collation is the BCP 47 "co" key value backing SortName.
	Collation string

	EnglishName string
	NativeName  string
}

// Database resolves culture names into locale data.
type Database interface {
	Lookup(name string) (LocaleData, error)
}

type sortVariant struct {
	name      string
	collation string
	languages []string
}

func (v sortVariant) supports(base string) bool {
	for _, lang := range v.languages {
		if lang == base {
			return true
		}
	}
	return false
}

func lookupSortVariant(name string) (sortVariant, bool) {
	switch strings.ToLower(name) {
	case "phoneb":
		return sortVariant{name: "phoneb", collation: "phonebk", languages: []string{"de"}}, true
	case "tradnl":
		return sortVariant{name: "tradnl", collation: "trad", languages: []string{"es"}}, true
	case "stroke":
		return sortVariant{name: "stroke", collation: "stroke", languages: []string{"zh"}}, true
	case "pronun":
		return sortVariant{name: "pronun", collation: "zhuyin", languages: []string{"zh"}}, true
	case "radstr":
		return sortVariant{name: "radstr", collation: "unihan", languages: []string{"zh", "ja"}}, true
	case "technl":
		return sortVariant{name: "technl", languages: []string{"hu"}}, true
	case "modern":
		return sortVariant{name: "modern", languages: []string{"ka"}}, true
	default:
		return sortVariant{}, false
	}
}

// TextDatabase is a Database backed by the CLDR data shipped with golang.org/x/text.
type TextDatabase struct {
	supported map[string]struct{}
}

// NewDatabase creates a TextDatabase. When supported names are given, only those
// cultures (and the invariant culture) resolve.
func NewDatabase(supported ...string) *TextDatabase {
	db := &TextDatabase{}

	for _, name := range supported {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if db.supported == nil {
			db.supported = make(map[string]struct{}, len(supported))
		}
		db.supported[strings.ToLower(name)] = struct{}{}
	}

	return db
}

func (db *TextDatabase) Lookup(name string) (LocaleData, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invariantData(), nil
	}

	tagPart, sortPart, hasSort := strings.Cut(trimmed, "_")

	tag, err := language.Parse(tagPart)
	if err != nil {
		return LocaleData{}, unknownCulture(name, err)
	}

	base, confidence := tag.Base()
	if tag == language.Und || confidence == language.No {
		return LocaleData{}, unknownCulture(name, nil)
	}

	data := LocaleData{
		Name:        tag.String(),
		Tag:         tag,
		EnglishName: display.English.Tags().Name(tag),
		NativeName:  display.Self.Name(tag),
	}

	if hasSort {
		variant, ok := lookupSortVariant(sortPart)
		if !ok || !variant.supports(base.String()) {
			return LocaleData{}, unknownCulture(name, fmt.Errorf("sort %q is not defined for %s", sortPart, base))
		}

		data.Name = data.Name + "_" + variant.name
		data.SortName = variant.name
		data.Collation = variant.collation
	}

	if db.supported != nil {
		if _, ok := db.supported[strings.ToLower(data.Name)]; !ok {
			return LocaleData{}, unknownCulture(name, fmt.Errorf("%s is not in the supported culture list", data.Name))
		}
	}

	return data, nil
}

func invariantData() LocaleData {
	return LocaleData{
		Tag:         language.Und,
		EnglishName: "Invariant Language (Invariant Country)",
		NativeName:  "Invariant Language (Invariant Country)",
	}
}
