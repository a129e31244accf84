package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
)

// IdentityRow is one stored identity in the status report.
type IdentityRow struct {
	Identity      string
	SegmentLength int
	Chars         int
	HasMatrix     bool
	CreatedAt     time.Time
}

// Status is the data behind the status report.
type Status struct {
	Identity      string
	SegmentLength int
	MappedChars   int
	AlphabetSize  int
	MatrixRows    int
	RepeatCount   int
	Mismatches    int
	DatabasePath  string
	CacheEnabled  bool
	CachedReplies int64
	Identities    []IdentityRow
}

// StatusMarkdown builds the markdown source of the status report.
func StatusMarkdown(st Status) string {
	var b strings.Builder
	b.WriteString("# Session status\n\n")

	if st.Identity == "" {
		b.WriteString("No identity is active. Run `probe map <identity>` to build a map.\n\n")
	} else {
		b.WriteString("| Field | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Identity | `%s` |\n", st.Identity)
		fmt.Fprintf(&b, "| Decryption map | %d/%d chars mapped |\n", st.MappedChars, st.AlphabetSize)
		if st.SegmentLength > 0 {
			fmt.Fprintf(&b, "| Segment length | %d |\n", st.SegmentLength)
		} else {
			b.WriteString("| Segment length | not determined |\n")
		}
		if st.MatrixRows > 0 {
			fmt.Fprintf(&b, "| Matrix data | %d chars x%d |\n", st.MatrixRows, st.RepeatCount)
			if st.Mismatches > 0 {
				fmt.Fprintf(&b, "| Cross-check | %d disagreement(s) |\n", st.Mismatches)
			} else {
				b.WriteString("| Cross-check | ok |\n")
			}
		} else {
			b.WriteString("| Matrix data | none |\n")
		}
		b.WriteString("\n")
	}

	if len(st.Identities) > 0 {
		b.WriteString("## Stored identities\n\n")
		b.WriteString("| Identity | Segment length | Chars | Matrix | Built |\n|---|---|---|---|---|\n")
		for _, row := range st.Identities {
			matrix := "no"
			if row.HasMatrix {
				matrix = "yes"
			}
			fmt.Fprintf(&b, "| `%s` | %d | %d | %s | %s |\n",
				row.Identity, row.SegmentLength, row.Chars, matrix, row.CreatedAt.Format(time.DateTime))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Store\n\n")
	fmt.Fprintf(&b, "- Database: `%s`\n", st.DatabasePath)
	if st.CacheEnabled {
		fmt.Fprintf(&b, "- Oracle cache: on (%d replies)\n", st.CachedReplies)
	} else {
		fmt.Fprintf(&b, "- Oracle cache: off (%d replies stored)\n", st.CachedReplies)
	}
	return b.String()
}

// Status renders the status report through glamour.
func (r *Renderer) Status(st Status) (string, error) {
	style := glamour.WithStandardStyle("notty")
	if r.Color {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(r.Width))
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(StatusMarkdown(st))
	if err != nil {
		return "", fmt.Errorf("failed to render status: %w", err)
	}
	return out, nil
}
