package extract

import "strings"

// extractPlain decodes content as UTF-8, replacing invalid sequences with U+FFFD.
func extractPlain(content []byte) string {
	return strings.ToValidUTF8(string(content), "\ufffd")
}
