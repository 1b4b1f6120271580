package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Character classes grouping each base letter with every Vietnamese
// diacritic variant, both cases. Used to search the catalog without
// requiring the caller to type accents.
var vnClasses = []string{
	"aàáạảãâầấậẩẫăằắặẳẵAÀÁẠẢÃÂẦẤẬẨẪĂẰẮẶẲẴ",
	"eèéẹẻẽêềếệểễEÈÉẸẺẼÊỀẾỆỂỄ",
	"iìíịỉĩIÌÍỊỈĨ",
	"oòóọỏõôồốộổỗơờớợởỡOÒÓỌỎÕÔỒỐỘỔỖƠỜỚỢỞỠ",
	"uùúụủũưừứựửữUÙÚỤỦŨƯỪỨỰỬỮ",
	"yỳýỵỷỹYỲÝỴỶỸ",
	"dđDĐ",
}

// vnClassOf maps every rune of every class back to its class, so an
// accented query rune expands the same way its base letter does.
var vnClassOf = func() map[rune]string {
	m := make(map[rune]string)
	for _, class := range vnClasses {
		for _, r := range class {
			m[r] = class
		}
	}
	return m
}()

// AccentInsensitivePattern builds a case-insensitive regular expression
// pattern matching the query regardless of Vietnamese diacritics: each
// letter, accented or not, expands to its diacritic class and each run of
// whitespace matches any run of whitespace. Returns "" for an empty
// query. The pattern is valid for both Go's regexp and MongoDB's $regex.
func AccentInsensitivePattern(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return ""
	}

	var b strings.Builder
	inSpace := false
	for _, ch := range query {
		if unicode.IsSpace(ch) {
			if !inSpace {
				b.WriteString(`\s+`)
			}
			inSpace = true
			continue
		}
		inSpace = false
		if class, ok := vnClassOf[ch]; ok {
			b.WriteString("[")
			b.WriteString(regexp.QuoteMeta(class))
			b.WriteString("]")
		} else {
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	return b.String()
}

// foldDiacritics strips combining marks after NFD decomposition. Đ does
// not decompose, so it is mapped explicitly.
func foldDiacritics(s string) string {
	s = strings.NewReplacer("đ", "d", "Đ", "D").Replace(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a display name: diacritics folded,
// lowercased, runs of anything non-alphanumeric collapsed to single dashes.
func Slugify(name string) string {
	s := strings.ToLower(foldDiacritics(name))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
