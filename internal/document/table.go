package document

import (
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/albapepper/bbref-data/internal/frame"
)

const maxColspan = 64

// Frame reads a table element into a frame of text cells.
//
// depth is the number of header rows; the last of them supplies the column
// labels. When the table has no thead the leading depth rows are the header.
// Blank labels become "Unnamed: <position>" and repeated labels get ".1",
// ".2" suffixes in order of appearance. Empty cells are nil. Body rows that
// repeat the header labels, or are classed as header rows (thead,
// over_header), are skipped.
func (f *Fragment) Frame(depth int) *frame.Frame {
	if depth < 1 {
		depth = 1
	}
	header := rows(f.sel.ChildrenFiltered("thead"), false)
	// Without a thead the header rows lead the body and keep their classes.
	headless := len(header) == 0
	var body [][]string
	body = append(body, rows(f.sel.ChildrenFiltered("tbody"), !headless)...)
	body = append(body, rows(f.sel.ChildrenFiltered("tfoot"), !headless)...)

	if headless {
		n := min(depth, len(body))
		header, body = body[:n], body[n:]
	}
	if len(header) == 0 {
		return frame.New()
	}

	raw := header[min(depth, len(header))-1]
	out := frame.New(labels(raw)...)
	for _, cells := range body {
		if len(cells) == 0 || sameCells(cells, raw) {
			continue
		}
		row := make([]any, len(raw))
		for i := range row {
			if i < len(cells) && cells[i] != "" {
				row[i] = cells[i]
			}
		}
		out.Append(row...)
	}
	return out
}

// rows expands every tr of a table section into cell texts, repeating a
// cell once per spanned column. skipHeaders drops rows the site marks as
// repeated header rows.
func rows(section *goquery.Selection, skipHeaders bool) [][]string {
	var out [][]string
	section.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		if skipHeaders && headerRow(tr) {
			return
		}
		var cells []string
		tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
			text := clean(cell.Text())
			for range colspan(cell) {
				cells = append(cells, text)
			}
		})
		out = append(out, cells)
	})
	return out
}

func headerRow(tr *goquery.Selection) bool {
	return tr.HasClass("thead") || tr.HasClass("over_header")
}

func colspan(cell *goquery.Selection) int {
	v, ok := cell.Attr("colspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return min(n, maxColspan)
}

func labels(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, label := range raw {
		if label == "" {
			out[i] = fmt.Sprintf("%s %d", frame.PlaceholderPrefix, i)
			continue
		}
		n := seen[label]
		seen[label] = n + 1
		if n > 0 {
			label = fmt.Sprintf("%s.%d", label, n)
		}
		out[i] = label
	}
	return out
}

func sameCells(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
