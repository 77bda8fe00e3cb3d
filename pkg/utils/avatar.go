package utils

import "strings"

var avatarPalette = []string{
	"#7E57C2", // purple
	"#EC407A", // pink
	"#26A69A", // teal
	"#42A5F5", // light blue
	"#FFA726", // orange
	"#78909C", // blue grey
	"#5C6BC0", // indigo
}

// AvatarColor maps a name to a stable palette entry: the sum of its UTF-16
// code units modulo the palette size.
func AvatarColor(name string) string {
	if name == "" {
		return avatarPalette[0]
	}
	sum := 0
	for _, r := range name {
		if r >= 0x10000 {
			// surrogate pair
			r -= 0x10000
			sum += 0xD800 + int(r>>10)
			sum += 0xDC00 + int(r&0x3FF)
			continue
		}
		sum += int(r)
	}
	return avatarPalette[sum%len(avatarPalette)]
}

// Initials takes the first letter of every word of name, falling back to
// the upper-cased first letter of fallback.
func Initials(name, fallback string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r := []rune(word)
		b.WriteRune(r[0])
	}
	if b.Len() > 0 {
		return b.String()
	}
	if fallback == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(fallback)[0]))
}
