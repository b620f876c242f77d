package banner

import (
	"strings"

	"go.trai.ch/zerr"
)

// CommentStyle selects how banner text is turned into a comment block.
type CommentStyle string

const (
	// StyleRegular wraps the text in a /** ... */ block.
	StyleRegular CommentStyle = "regular"
	// StyleIgnored uses /*! ... */, which minifiers keep.
	StyleIgnored CommentStyle = "ignored"
	// StyleSlash prefixes every line with //.
	StyleSlash CommentStyle = "slash"
	// StyleNone leaves the text untouched.
	StyleNone CommentStyle = "none"
)

// ErrCommentStyle is returned for unknown style names.
var ErrCommentStyle = zerr.New("unknown comment style")

// ParseCommentStyle validates a style name; "" means regular.
func ParseCommentStyle(s string) (CommentStyle, error) {
	switch CommentStyle(s) {
	case "":
		return StyleRegular, nil
	case StyleRegular, StyleIgnored, StyleSlash, StyleNone:
		return CommentStyle(s), nil
	}
	return "", zerr.With(zerr.Wrap(ErrCommentStyle, ""), "style", s)
}

// Wrap turns text into a comment in the given style. Text that is already a
// comment is only trimmed.
func Wrap(text string, style CommentStyle) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return ""
	}
	if style == StyleNone || strings.HasPrefix(text, "/*") || strings.HasPrefix(text, "//") {
		return text
	}
	lines := strings.Split(text, "\n")
	var b strings.Builder
	switch style {
	case StyleSlash:
		for i, l := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(strings.TrimRight("// "+l, " "))
		}
		return b.String()
	case StyleIgnored:
		b.WriteString("/*!\n")
	default:
		b.WriteString("/**\n")
	}
	for _, l := range lines {
		b.WriteString(strings.TrimRight(" * "+l, " "))
		b.WriteByte('\n')
	}
	b.WriteString(" */")
	return b.String()
}
