package xlgraph

import (
	"fmt"
	"strings"
)

// Describe returns a human-readable tree of the part graph: every part
// under the part that owns it, with its content type, relationship id
// and logical name. Useful for debugging package structure.
func (d *Document) Describe() string {
	var b strings.Builder
	b.WriteString("Document: ")
	if d.path != "" {
		b.WriteString(d.path)
	} else {
		b.WriteString("<unsaved>")
	}
	b.WriteByte('\n')

	if d.workbook != nil {
		fmt.Fprintf(&b, "Sheets: %s\n", strings.Join(d.workbook.SheetNames(), ", "))
	}
	for _, pp := range d.order {
		if p := d.parts[pp]; p.parent == "" {
			d.describePart(&b, p, 0)
		}
	}
	return b.String()
}

func (d *Document) describePart(b *strings.Builder, p *Part, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%s%s [%s]%s\n", prefix, p.path, p.kind, describePartAttrs(p))
	for _, child := range p.children {
		if c, ok := d.parts[child]; ok {
			d.describePart(b, c, indent+1)
		} else {
			fmt.Fprintf(b, "%s  %s [missing]\n", prefix, child)
		}
	}
}

func describePartAttrs(p *Part) string {
	var parts []string
	if p.relsID != "" {
		parts = append(parts, fmt.Sprintf("id=%q", p.relsID))
	}
	if p.name != "" {
		parts = append(parts, fmt.Sprintf("name=%q", p.name))
	}
	if p.doc == nil {
		parts = append(parts, "unparsed")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}
