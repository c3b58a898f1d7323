/*
Package x contains the building blocks shared by all extensions: the
Authenticator used to find out who signed a transaction, and the
decorators in x/utils.
*/
package x

import (
	tokenswap "github.com/iov-one/tokenswap"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding x/sigs for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(tokenswap.Context) []tokenswap.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(tokenswap.Context, tokenswap.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx tokenswap.Context) []tokenswap.Condition {
	var res []tokenswap.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !hasCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx tokenswap.Context, addr tokenswap.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx tokenswap.Context, auth Authenticator) []tokenswap.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]tokenswap.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// MainSigner returns the first condition if any, otherwise nil
func MainSigner(ctx tokenswap.Context, auth Authenticator) tokenswap.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx tokenswap.Context, auth Authenticator, required []tokenswap.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAllConditions returns true if all elements in required are
// also in context.
func HasAllConditions(ctx tokenswap.Context, auth Authenticator, required []tokenswap.Condition) bool {
	conds := auth.GetConditions(ctx)
	for _, r := range required {
		if !hasCondition(conds, r) {
			return false
		}
	}
	return true
}

func hasCondition(conds []tokenswap.Condition, c tokenswap.Condition) bool {
	for _, p := range conds {
		if p.Equals(c) {
			return true
		}
	}
	return false
}
