package render

import (
	"strings"
)

const missingMarker = "[MISSING]"

// Text serializes doc as indented plain text for terminals and logs.
func Text(doc Document) string {
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte('\n')
	writeField(&b, doc.VisitDate, 0)
	for _, s := range doc.Sections {
		b.WriteByte('\n')
		b.WriteString(s.Title)
		b.WriteByte('\n')
		for _, f := range s.Fields {
			writeField(&b, f, 1)
		}
	}
	if len(doc.Findings) > 0 {
		b.WriteString("\nREVIEW FINDINGS\n")
		for _, f := range doc.Findings {
			b.WriteString("  ! ")
			b.WriteString(f)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, f Field, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	if f.Label == "" {
		b.WriteString("- ")
	} else {
		b.WriteString(f.Label)
		b.WriteString(":")
	}
	switch {
	case f.Missing:
		b.WriteString(" " + missingMarker + "\n")
	case len(f.Items) > 0:
		if f.Label == "" && f.Value != "" {
			b.WriteString(f.Value)
		}
		b.WriteByte('\n')
		for _, item := range f.Items {
			writeField(b, item, depth+1)
		}
	default:
		if f.Label != "" {
			b.WriteByte(' ')
		}
		b.WriteString(f.Value)
		b.WriteByte('\n')
	}
}
