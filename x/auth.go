package x

import (
	"github.com/custodia-one/custos"
)

// Authenticator is an interface we can use to extract authentication
// info from the context. This should be passed into the constructor
// of handlers, so we can plug in another authentication system, rather
// than hard-coding one extension for all others.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want the GetAddresses helper
	GetConditions(custos.Context) []custos.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(custos.Context, custos.Address) bool
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
func (m MultiAuth) GetConditions(ctx custos.Context) []custos.Condition {
	var res []custos.Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator supports this address
func (m MultiAuth) HasAddress(ctx custos.Context, addr custos.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx custos.Context, auth Authenticator) []custos.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]custos.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first condition if any, otherwise nil
func MainSigner(ctx custos.Context, auth Authenticator) custos.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx custos.Context, auth Authenticator, required []custos.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasNAddresses returns true if at least n elements in required are
// also in context.
// Useful for threshold conditions (1 of 3, 3 of 5, etc...)
func HasNAddresses(ctx custos.Context, auth Authenticator, required []custos.Address, n int) bool {
	if n <= 0 {
		return true
	}

	for _, r := range required {
		if auth.HasAddress(ctx, r) {
			n--
			if n == 0 {
				return true
			}
		}
	}
	return false
}
