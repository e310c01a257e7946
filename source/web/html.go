package web

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// skipTags are elements whose entire content is chrome, not prose:
// scripts, styles, and page navigation. Text inside them never reaches
// the chunker.
var skipTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
}

// StripHTML removes tags, drops script/style/navigation content, and
// decodes common entities. It is the fallback extractor for pages that
// readability cannot parse, and the body extractor for h2 sections.
func StripHTML(content string) string {
	var result strings.Builder
	result.Grow(len(content))

	inTag := false
	skipDepth := 0
	var tagName strings.Builder
	collectingTagName := false

	i := 0
	for i < len(content) {
		r, size := utf8.DecodeRuneInString(content[i:])

		if r == '<' {
			inTag = true
			tagName.Reset()
			collectingTagName = true
			i += size
			continue
		}

		if inTag {
			if collectingTagName {
				if unicode.IsSpace(r) || r == '>' || (r == '/' && tagName.Len() > 0) {
					collectingTagName = false
					lower := strings.ToLower(tagName.String())
					if closing := strings.TrimPrefix(lower, "/"); skipTags[closing] {
						if strings.HasPrefix(lower, "/") {
							if skipDepth > 0 {
								skipDepth--
							}
						} else {
							skipDepth++
						}
					}
					if skipDepth == 0 && isBlockTag(lower) {
						result.WriteByte('\n')
					}
				} else {
					tagName.WriteRune(r)
				}
			}
			if r == '>' {
				inTag = false
			}
			i += size
			continue
		}

		if skipDepth > 0 {
			i += size
			continue
		}

		if r == '&' {
			if decoded, skip := decodeEntity(content, i); skip > 0 {
				result.WriteString(decoded)
				i += skip
				continue
			}
		}

		result.WriteRune(r)
		i += size
	}

	return collapseWhitespace(result.String())
}

func isBlockTag(tag string) bool {
	tag = strings.TrimPrefix(tag, "/")
	switch tag {
	case "p", "div", "br", "hr", "h1", "h2", "h3", "h4", "h5", "h6",
		"li", "ul", "ol", "table", "tr", "blockquote", "pre",
		"section", "article", "main":
		return true
	}
	return false
}

func decodeEntity(content string, start int) (string, int) {
	if start >= len(content) || content[start] != '&' {
		return "", 0
	}
	end := start + 12
	if end > len(content) {
		end = len(content)
	}
	for j := start + 1; j < end; j++ {
		ch := content[j]
		if ch == ';' {
			entity := content[start : j+1]
			consumed := j - start + 1
			if decoded, ok := namedEntities[entity]; ok {
				return decoded, consumed
			}
			// Numeric entities: &#123; or &#x7B;
			if len(entity) > 3 && entity[1] == '#' {
				inner := entity[2 : len(entity)-1]
				var codepoint int64
				var err error
				if inner[0] == 'x' || inner[0] == 'X' {
					codepoint, err = strconv.ParseInt(inner[1:], 16, 32)
				} else {
					codepoint, err = strconv.ParseInt(inner, 10, 32)
				}
				if err == nil && codepoint > 0 && codepoint <= 0x10FFFF {
					return string(rune(codepoint)), consumed
				}
			}
			return "", 0
		}
		// Only ASCII letters, digits, and '#' are valid in entity references.
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '#') {
			return "", 0
		}
	}
	return "", 0
}

var namedEntities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   "\"",
	"&#39;":    "'",
	"&apos;":   "'",
	"&nbsp;":   " ",
	"&mdash;":  "—",
	"&ndash;":  "–",
	"&hellip;": "…",
	"&bull;":   "•",
	"&middot;": "·",
	"&copy;":   "©",
}

// collapseWhitespace trims every line and squeezes runs of blank lines
// down to a single separator.
func collapseWhitespace(text string) string {
	var result strings.Builder
	emptyCount := 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if result.Len() > 0 {
				emptyCount++
			}
			continue
		}
		if emptyCount > 0 {
			result.WriteByte('\n')
			if emptyCount > 1 {
				result.WriteByte('\n')
			}
		} else if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(trimmed)
		emptyCount = 0
	}

	return strings.TrimSpace(result.String())
}

// section is one h2-delimited slice of a page: its heading text and the
// raw HTML up to the next h2.
type section struct {
	title string
	body  string
}

// splitH2Sections carves raw HTML into h2-delimited sections. Content
// before the first h2 is dropped.
func splitH2Sections(html string) []section {
	lower := strings.ToLower(html)
	var sections []section

	pos := 0
	for {
		open := indexTag(lower, pos, "<h2")
		if open < 0 {
			break
		}
		openEnd := strings.IndexByte(lower[open:], '>')
		if openEnd < 0 {
			break
		}
		titleStart := open + openEnd + 1

		closeIdx := strings.Index(lower[titleStart:], "</h2>")
		if closeIdx < 0 {
			break
		}
		titleEnd := titleStart + closeIdx
		bodyStart := titleEnd + len("</h2>")

		next := indexTag(lower, bodyStart, "<h2")
		bodyEnd := len(html)
		if next >= 0 {
			bodyEnd = next
		}

		sections = append(sections, section{
			title: strings.TrimSpace(StripHTML(html[titleStart:titleEnd])),
			body:  html[bodyStart:bodyEnd],
		})

		if next < 0 {
			break
		}
		pos = next
	}
	return sections
}

// indexTag finds the next occurrence of prefix (e.g. "<h2") at pos or
// later that opens a real tag: followed by whitespace, '>', or an
// attribute boundary, so "<h2o" does not match.
func indexTag(lower string, pos int, prefix string) int {
	for {
		i := strings.Index(lower[pos:], prefix)
		if i < 0 {
			return -1
		}
		abs := pos + i
		after := abs + len(prefix)
		if after >= len(lower) {
			return -1
		}
		c := lower[after]
		if c == '>' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			return abs
		}
		pos = after
	}
}
