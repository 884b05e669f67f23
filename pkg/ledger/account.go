package ledger

import (
	"regexp"
	"strings"
)

// Sep separates the components of an account name.
const Sep = ":"

var accountRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9-]*(:[A-Z0-9][A-Za-z0-9-]*)*$`)

// Account is a colon-separated, hierarchical account name such as
// "Assets:US:BofA:Checking".
type Account string

// Valid reports whether the account name is well formed: at least one
// component, each starting with an upper-case letter or a digit.
func (a Account) Valid() bool {
	return accountRe.MatchString(string(a))
}

// Components splits the account into its colon-separated parts.
func (a Account) Components() []string {
	if a == "" {
		return nil
	}
	return strings.Split(string(a), Sep)
}

// Root returns the first component of the account name.
func (a Account) Root() string {
	s := string(a)
	if i := strings.Index(s, Sep); i >= 0 {
		return s[:i]
	}
	return s
}

// Leaf returns the last component of the account name.
func (a Account) Leaf() string {
	s := string(a)
	if i := strings.LastIndex(s, Sep); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Parent returns the account with its leaf component removed, or "" when
// the account has a single component.
func (a Account) Parent() Account {
	s := string(a)
	i := strings.LastIndex(s, Sep)
	if i < 0 {
		return ""
	}
	return Account(s[:i])
}
