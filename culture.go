package culture

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Culture is an immutable handle on a resolved locale.
// Two cultures are equal when their normalized names match, ignoring case.
type Culture struct {
	data LocaleData
	// db resolved the culture; its parents are resolved against it too.
	db Database
}

func newCulture(db Database, data LocaleData) *Culture {
	return &Culture{data: data, db: db}
}

// Invariant returns the culture that is associated with no language or region.
func Invariant() *Culture {
	return newCulture(nil, invariantData())
}

// Name returns the normalized culture name, "" for the invariant culture.
func (c *Culture) Name() string {
	return c.data.Name
}

func (c *Culture) String() string {
	if c.IsInvariant() {
		return "invariant"
	}
	return c.data.Name
}

// Tag returns the BCP 47 language tag of the culture, without collation extensions.
func (c *Culture) Tag() language.Tag {
	return c.data.Tag
}

func (c *Culture) IsInvariant() bool {
	return c.data.Name == ""
}

func (c *Culture) EnglishName() string {
	return c.data.EnglishName
}

func (c *Culture) NativeName() string {
	return c.data.NativeName
}

// Equal reports whether both cultures carry the same normalized name.
func (c *Culture) Equal(other *Culture) bool {
	if c == nil || other == nil {
		return c == other
	}
	return strings.EqualFold(c.data.Name, other.data.Name)
}

// Parent returns the culture this one falls back to: "ja" for "ja-JP",
// "de-DE" for "de-DE_phoneb" and the invariant culture for neutral cultures.
// The parent is looked up in the database that resolved c, so a parent that
// database rejects yields the invariant culture.
func (c *Culture) Parent() *Culture {
	if c.IsInvariant() {
		return c
	}

	name := c.data.Tag.String()
	if c.data.SortName == "" {
		parent := c.data.Tag.Parent()
		if parent == language.Und {
			return Invariant()
		}
		name = parent.String()
	}

	db := c.db
	if db == nil {
		db = NewDatabase()
	}

	data, err := db.Lookup(name)
	if err != nil {
		return Invariant()
	}
	return newCulture(db, data)
}

// Printer returns a printer formatting values with the culture's conventions.
func (c *Culture) Printer() *message.Printer {
	return message.NewPrinter(c.data.Tag)
}

// CompareInfo returns the string comparison rules of the culture.
func (c *Culture) CompareInfo() *CompareInfo {
	tag := c.data.Tag
	if c.data.Collation != "" {
		if withCollation, err := tag.SetTypeForKey("co", c.data.Collation); err == nil {
			tag = withCollation
		}
	}

	return &CompareInfo{name: c.data.Name, tag: tag}
}

// CompareInfo compares strings using a culture's collation.
type CompareInfo struct {
	name string
	tag  language.Tag
}

// Name returns the culture name including any sort suffix, e.g. "de-DE_phoneb".
func (ci *CompareInfo) Name() string {
	return ci.name
}

// Compare returns -1, 0 or 1 depending on the collation order of a and b.
func (ci *CompareInfo) Compare(a, b string, opts ...collate.Option) int {
	return collate.New(ci.tag, opts...).CompareString(a, b)
}

// Sort orders values in place according to the culture's collation.
func (ci *CompareInfo) Sort(values []string, opts ...collate.Option) {
	collate.New(ci.tag, opts...).SortStrings(values)
}
