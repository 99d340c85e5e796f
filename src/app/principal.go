package app

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Claim is one typed assertion inside a principal, e.g. an email claim.
type Claim struct {
	Typ string `json:"typ"`
	Val string `json:"val"`
}

// Principal is the identity the authenticating proxy asserts for the
// current request. It lives for one request and is never stored.
type Principal struct {
	AuthTyp string  `json:"auth_typ"`
	Claims  []Claim `json:"claims"`
	NameTyp string  `json:"name_typ"`
	RoleTyp string  `json:"role_typ"`
}

// emailClaimTypes is the preference order for resolving an email-like
// identifier out of the claim set. The last entry is the legacy SOAP
// email-address claim URI some providers still emit.
var emailClaimTypes = []string{
	"emails",
	"email",
	"preferred_username",
	"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress",
}

// DecodePrincipal parses the raw value of the trusted identity header:
// base64-encoded JSON injected by the platform proxy in front of this
// service. The proxy strips any caller-supplied copy of the header, and
// that upstream guarantee is the entire trust model — nothing is
// cryptographically verified here.
//
// Every decode failure means "not signed in": the second return is false
// and no error is ever surfaced.
func DecodePrincipal(raw string) (*Principal, bool) {
	if raw == "" {
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(raw)
		if err != nil {
			return nil, false
		}
	}
	var p Principal
	if err := json.Unmarshal(decoded, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// Email resolves the principal's email-like identifier by scanning the
// claims in preference order. Returns false when no claim type matches.
func (p *Principal) Email() (string, bool) {
	if p == nil {
		return "", false
	}
	for _, typ := range emailClaimTypes {
		for _, claim := range p.Claims {
			if claim.Typ == typ && claim.Val != "" {
				return claim.Val, true
			}
		}
	}
	return "", false
}

// NormalizeEmail lower-cases and trims an identifier for allow-list
// comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
