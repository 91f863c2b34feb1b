package wallet

import (
	"github.com/custodia-one/custos"
)

// The policy evaluator is the single source of authorization truth.
// Every predicate here is pure, it reads the passed state and nothing
// else. The operation state machine never inlines these decisions.

// ApproveCount returns how many approve votes were cast by addresses
// in the current signer set. Votes of removed signers do not count.
func ApproveCount(votes []Vote, w *Wallet) int {
	var n int
	for _, v := range votes {
		if v.Disposition == Approve && w.IsSigner(v.Signer) {
			n++
		}
	}
	return n
}

// DisapproveCount returns how many disapprove votes were cast by
// addresses in the current signer set.
func DisapproveCount(votes []Vote, w *Wallet) int {
	var n int
	for _, v := range votes {
		if v.Disposition == Disapprove && w.IsSigner(v.Signer) {
			n++
		}
	}
	return n
}

// QuorumMet returns true if the approve votes reach the threshold.
func QuorumMet(votes []Vote, w *Wallet, threshold uint8) bool {
	return ApproveCount(votes, w) >= int(threshold)
}

// QuorumFailed returns true if so many signers disapproved that the
// threshold is mathematically unreachable.
func QuorumFailed(votes []Vote, w *Wallet, threshold uint8) bool {
	return DisapproveCount(votes, w) > len(w.Signers)-int(threshold)
}

// WithinWindow returns true if the operation has not expired yet.
// Expiry is inclusive, an operation with deadline equal to now is
// already expired.
func WithinWindow(now custos.UnixTime, deadline custos.UnixTime) bool {
	return now < deadline
}

// DestinationAllowed returns true if the account permits a transfer
// to the destination. With the whitelist disabled any destination is
// allowed.
func DestinationAllowed(a *BalanceAccount, dest custos.Address) bool {
	if !a.WhitelistEnabled {
		return true
	}
	return a.Whitelisted(dest)
}

// ProgramAllowed returns true if the dapp book permits invoking the
// program.
func ProgramAllowed(b *DAppBook, programID []byte) bool {
	return b.Allows(programID)
}

// GuardianApproved returns true if the high risk guardian rule is
// satisfied: either the wallet declares no guardians, or at least one
// approve vote was cast by a guardian signer.
func GuardianApproved(votes []Vote, w *Wallet) bool {
	if w.GuardianMask == 0 {
		return true
	}
	for _, v := range votes {
		if v.Disposition == Approve && w.IsGuardian(v.Signer) {
			return true
		}
	}
	return false
}

// HighRisk returns true for kinds that additionally require a
// guardian approval when the wallet declares guardians.
func HighRisk(k OpKind) bool {
	return k == KindConfigUpdate || k == KindDAppBookUpdate
}

// EffectiveThreshold returns the quorum for an operation kind, taking
// the per account transfer override into account. The account may be
// nil for wallet scoped kinds.
func EffectiveThreshold(w *Wallet, a *BalanceAccount, k OpKind) uint8 {
	if a != nil && a.TransferThreshold > 0 {
		switch k {
		case KindTransfer, KindTokenTransfer:
			t := a.TransferThreshold
			if int(t) > len(w.Signers) {
				return w.Threshold
			}
			return t
		}
	}
	return w.Threshold
}

// EffectiveWindow returns the approval window for an operation,
// preferring the account override over the wallet setting. The
// account may be nil for wallet scoped kinds.
func EffectiveWindow(w *Wallet, a *BalanceAccount) custos.UnixDuration {
	if a != nil && a.ApprovalWindow != 0 {
		return a.ApprovalWindow
	}
	return w.Window()
}
