package ledger

import "testing"

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("-25.50 USD")
	if err != nil {
		t.Fatalf("ParseAmount: %v", err)
	}
	if got := a.String(); got != "-25.50 USD" {
		t.Errorf("String = %q, want -25.50 USD", got)
	}
	if a.Currency != "USD" {
		t.Errorf("Currency = %q, want USD", a.Currency)
	}
}

func TestParseAmountKeepsScale(t *testing.T) {
	a := MustParseAmount("25.50 EUR")
	if got := a.String(); got != "25.50 EUR" {
		t.Errorf("String = %q, want 25.50 EUR", got)
	}
	b := MustParseAmount("25.5 EUR")
	if !a.Equal(b) {
		t.Errorf("Equal(%v, %v) = false, want true", a, b)
	}
	if a.String() == b.String() {
		t.Errorf("distinct scales rendered identically: %q", a.String())
	}
}

func TestParseAmountErrors(t *testing.T) {
	for _, s := range []string{"", "25.50", "abc USD", "25.50 USD extra"} {
		if _, err := ParseAmount(s); err == nil {
			t.Errorf("ParseAmount(%q) = nil error, want error", s)
		}
	}
}

func TestAmountNeg(t *testing.T) {
	a := MustParseAmount("4.50 USD")
	if got := a.Neg().String(); got != "-4.50 USD" {
		t.Errorf("Neg = %q, want -4.50 USD", got)
	}
	if got := a.Neg().Neg(); !got.Equal(a) {
		t.Errorf("Neg.Neg = %v, want %v", got, a)
	}
	if !MustParseAmount("0.00 USD").IsZero() {
		t.Error("IsZero(0.00 USD) = false, want true")
	}
}
