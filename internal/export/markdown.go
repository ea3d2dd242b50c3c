package export

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// writeMarkdown renders a pipe table with columns padded to their display
// width, so wide (CJK) and combining characters line up in a terminal.
func writeMarkdown(w io.Writer, t Tabular) error {
	header := t.Header()
	rows := t.Rows()
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(3, runewidth.StringWidth(mdEscape(h)))
	}
	for _, r := range rows {
		for i := 0; i < len(r) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(mdEscape(r[i])))
		}
	}

	var b strings.Builder
	line := func(cells []string) {
		b.WriteByte('|')
		for i, wd := range widths {
			c := ""
			if i < len(cells) {
				c = mdEscape(cells[i])
			}
			b.WriteByte(' ')
			b.WriteString(runewidth.FillRight(c, wd))
			b.WriteString(" |")
		}
		b.WriteByte('\n')
	}
	line(header)
	b.WriteByte('|')
	for _, wd := range widths {
		b.WriteByte(' ')
		b.WriteString(strings.Repeat("-", wd))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
	for _, r := range rows {
		line(r)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

var mdReplacer = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func mdEscape(s string) string { return mdReplacer.Replace(s) }
