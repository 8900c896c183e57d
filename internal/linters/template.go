package linters

import "strings"

const erbSuffix = ".erb"

// IsTemplated reports whether filename carries the embedded-templating
// compound extension.
func IsTemplated(filename string) bool {
	return strings.HasSuffix(filename, erbSuffix)
}

// StripTemplating blanks every <% ... %> tag in templated content, replacing
// the tag's bytes with spaces in place. Line count and column layout are
// preserved so line numbers reported by the engine still correspond 1:1 to
// the original file. Non-templated filenames return content unchanged.
func StripTemplating(content, filename string) string {
	if !IsTemplated(filename) {
		return content
	}
	b := []byte(content)
	for i := 0; i+1 < len(b); i++ {
		if b[i] != '<' || b[i+1] != '%' {
			continue
		}
		// An unterminated tag blanks to end of content.
		end := len(b)
		for j := i + 2; j+1 < len(b); j++ {
			if b[j] == '%' && b[j+1] == '>' {
				end = j + 2
				break
			}
		}
		for k := i; k < end; k++ {
			if b[k] != '\n' {
				b[k] = ' '
			}
		}
		i = end - 1
	}
	return string(b)
}
