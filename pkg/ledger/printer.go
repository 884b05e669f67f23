package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DateLayout is the date format used in printed directives.
const DateLayout = "2006-01-02"

// Print writes the directives in ledger syntax, separated by blank lines.
func Print(w io.Writer, entries []Directive) error {
	for i, d := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := PrintDirective(w, d); err != nil {
			return err
		}
	}
	return nil
}

// Sprint renders the directives to a string.
func Sprint(entries []Directive) string {
	var sb strings.Builder
	_ = Print(&sb, entries)
	return sb.String()
}

// PrintDirective writes a single directive in ledger syntax, terminated by
// a newline.
func PrintDirective(w io.Writer, d Directive) error {
	var sb strings.Builder
	switch d := d.(type) {
	case *Transaction:
		printTransaction(&sb, d)
	case *Balance:
		fmt.Fprintf(&sb, "%s balance %s  %s\n", d.Date.Format(DateLayout), d.Account, d.Amount)
		printMeta(&sb, d.Meta)
	case *Note:
		fmt.Fprintf(&sb, "%s note %s %q\n", d.Date.Format(DateLayout), d.Account, d.Comment)
		printMeta(&sb, d.Meta)
	default:
		return fmt.Errorf("ledger: cannot print %T", d)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func printTransaction(sb *strings.Builder, t *Transaction) {
	flag := t.Flag
	if flag == "" {
		flag = FlagOK
	}
	sb.WriteString(t.Date.Format(DateLayout))
	sb.WriteString(" ")
	sb.WriteString(flag)
	if t.Payee != "" {
		fmt.Fprintf(sb, " %q", t.Payee)
	}
	fmt.Fprintf(sb, " %q", t.Narration)
	tags := append([]string(nil), t.Tags...)
	sort.Strings(tags)
	for _, tag := range tags {
		sb.WriteString(" #")
		sb.WriteString(tag)
	}
	sb.WriteString("\n")
	printMeta(sb, t.Meta)

	// Align the amount column across the postings of this transaction.
	accw, numw := 0, 0
	for _, p := range t.Postings {
		if p.Amount == nil {
			continue
		}
		if n := len(p.Account); n > accw {
			accw = n
		}
		if n := len(p.Amount.Number.String()); n > numw {
			numw = n
		}
	}
	for _, p := range t.Postings {
		if p.Amount == nil {
			fmt.Fprintf(sb, "  %s\n", p.Account)
			continue
		}
		fmt.Fprintf(sb, "  %-*s  %*s %s\n",
			accw, p.Account, numw, p.Amount.Number.String(), p.Amount.Currency)
	}
}

// printMeta writes metadata lines in sorted key order, skipping internal
// "__" markers.
func printMeta(sb *strings.Builder, meta Meta) {
	if len(meta) == 0 {
		return
	}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if strings.HasPrefix(k, "__") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(sb, "  %s: %q\n", k, meta[k])
	}
}
