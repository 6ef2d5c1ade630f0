package media

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// UnorderedSortKey sorts entries without a leading number after every
// numbered one.
const UnorderedSortKey = math.MaxInt32

// TitleFromFilename derives a display title from a file name: extension
// stripped, underscores turned into spaces, surrounding whitespace trimmed.
// Falls back to the raw name when derivation leaves nothing.
func TitleFromFilename(name string) string {
	title := strings.TrimSuffix(name, filepath.Ext(name))
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.TrimSpace(title)
	if title == "" {
		return name
	}
	return title
}

// SortKeyFromName parses the leading run of digits in a file or folder name
// as its course ordering. Names without a leading number get
// UnorderedSortKey so they sort last.
func SortKeyFromName(name string) int {
	i := 0
	for i < len(name) && unicode.IsDigit(rune(name[i])) {
		i++
	}
	if i == 0 {
		return UnorderedSortKey
	}
	key := 0
	for _, r := range name[:i] {
		d := int(r - '0')
		if key > (UnorderedSortKey-d)/10 {
			return UnorderedSortKey
		}
		key = key*10 + d
	}
	return key
}
