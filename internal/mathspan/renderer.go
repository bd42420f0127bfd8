package mathspan

import (
	"fmt"
	"html"
)

// Delegate typesets a single math-notation span. The engine does not
// implement typesetting itself; a delegate (KaTeX sidecar, MathML converter,
// ...) owns the rendering of math segments.
type Delegate interface {
	RenderMath(notation string) (string, error)
}

// DelegateFunc adapts a plain function to the Delegate interface.
type DelegateFunc func(notation string) (string, error)

func (f DelegateFunc) RenderMath(notation string) (string, error) {
	return f(notation)
}

// RenderedSegment is a display-ready segment. HTML holds escaped text for
// plain segments and delegate output for math segments. Failed reports that
// the delegate rejected the notation and HTML carries the inline fallback.
type RenderedSegment struct {
	Kind   SegmentKind `json:"kind"`
	HTML   string      `json:"html"`
	Failed bool        `json:"failed,omitempty"`
}

// Renderer splits mixed text and renders each segment for display.
type Renderer struct {
	delegate Delegate
}

// NewRenderer creates a Renderer backed by the given math delegate.
func NewRenderer(delegate Delegate) *Renderer {
	return &Renderer{delegate: delegate}
}

// Render splits s and produces one display-ready segment per span.
//
// Plain segments are HTML-escaped so option text cannot inject markup. Math
// segments are passed to the delegate verbatim; the delegate owns their
// escaping. A malformed span never fails the whole text: it is replaced by a
// visible inline error marker and rendering continues with the next segment.
func (r *Renderer) Render(s string) []RenderedSegment {
	segs := Split(s)
	out := make([]RenderedSegment, 0, len(segs))

	for _, seg := range segs {
		switch seg.Kind {
		case KindMath:
			rendered, err := r.delegate.RenderMath(seg.Text)
			if err != nil {
				out = append(out, RenderedSegment{
					Kind:   KindMath,
					HTML:   errorFallback(seg.Text),
					Failed: true,
				})
				continue
			}
			out = append(out, RenderedSegment{Kind: KindMath, HTML: rendered})
		default:
			out = append(out, RenderedSegment{Kind: KindPlain, HTML: html.EscapeString(seg.Text)})
		}
	}

	return out
}

// errorFallback builds the visible marker shown in place of a math span the
// delegate could not typeset. The original notation is escaped and kept so
// the student still sees what the author wrote.
func errorFallback(notation string) string {
	return fmt.Sprintf(`<span class="math-error" title="invalid math notation">%s</span>`, html.EscapeString(notation))
}
