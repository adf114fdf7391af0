package service

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup from shopper and pharmacist text. The policy output
// is unescaped again so that "&" or "<10" survive exactly as typed.
type plainText struct {
	policy *bluemonday.Policy
}

func newPlainText() plainText {
	return plainText{policy: bluemonday.StrictPolicy()}
}

func (p plainText) clean(s string) string {
	return html.UnescapeString(p.policy.Sanitize(s))
}
