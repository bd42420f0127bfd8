package mathspan

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ClientSideDelegate defers actual typesetting to the browser: it emits a
// span carrying the raw notation for a client-side engine to pick up. It
// still rejects notation the client engine is known to choke on, so the
// renderer's error fallback path sees malformed spans server-side.
type ClientSideDelegate struct{}

// RenderMath validates the notation and wraps it for client-side typesetting.
func (ClientSideDelegate) RenderMath(notation string) (string, error) {
	trimmed := strings.TrimSpace(notation)
	if trimmed == "" {
		return "", errors.New("empty math span")
	}

	depth := 0
	for _, r := range notation {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return "", errors.New("unbalanced braces in math span")
			}
		}
	}
	if depth != 0 {
		return "", errors.New("unbalanced braces in math span")
	}

	return fmt.Sprintf(`<span class="math" data-notation="%s"></span>`, html.EscapeString(notation)), nil
}
