package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCaser renders field and variant names in title case for the
// human-readable Print output, mirroring the teacher's code generator's use
// of golang.org/x/text for identifier casing.
var titleCaser = cases.Title(language.English)

// Print renders s as an indented, human-readable tree, primarily useful in
// test failure messages and schema-mismatch diagnostics.
func Print(s Schema) string {
	var b strings.Builder
	printNode(&b, s, 0)
	return b.String()
}

func printNode(b *strings.Builder, s Schema, depth int) {
	indent := strings.Repeat("  ", depth)
	switch s.Kind {
	case KindScalar:
		fmt.Fprintf(b, "%s%s\n", indent, s.Scalar)
	case KindStr:
		fmt.Fprintf(b, "%sstr\n", indent)
	case KindBytes:
		fmt.Fprintf(b, "%sbytes\n", indent)
	case KindUnit:
		fmt.Fprintf(b, "%sunit\n", indent)
	case KindOption:
		fmt.Fprintf(b, "%soption {\n", indent)
		printNode(b, *s.Inner, depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	case KindSeq:
		if s.SeqLen != nil {
			fmt.Fprintf(b, "%sseq[%d] {\n", indent, *s.SeqLen)
		} else {
			fmt.Fprintf(b, "%sseq {\n", indent)
		}
		printNode(b, *s.Inner, depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	case KindTuple:
		fmt.Fprintf(b, "%stuple {\n", indent)
		for _, e := range s.Elems {
			printNode(b, e, depth+1)
		}
		fmt.Fprintf(b, "%s}\n", indent)
	case KindStruct:
		fmt.Fprintf(b, "%sstruct {\n", indent)
		for _, f := range s.Fields {
			fmt.Fprintf(b, "%s  %s (%s):\n", indent, f.Name, titleCaser.String(f.Name))
			printNode(b, f.Schema, depth+2)
		}
		fmt.Fprintf(b, "%s}\n", indent)
	case KindEnum:
		fmt.Fprintf(b, "%senum {\n", indent)
		for _, v := range s.Variants {
			fmt.Fprintf(b, "%s  %s (%s):\n", indent, v.Name, titleCaser.String(v.Name))
			printNode(b, v.Schema, depth+2)
		}
		fmt.Fprintf(b, "%s}\n", indent)
	case KindRecurse:
		fmt.Fprintf(b, "%srecurse(%d)\n", indent, s.RecurseLevel)
	default:
		fmt.Fprintf(b, "%s<invalid kind %d>\n", indent, int(s.Kind))
	}
}
