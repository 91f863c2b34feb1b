package wallet

import (
	"bytes"
	"time"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/orm"
)

const (
	// MaxSigners is the signer slot capacity of a wallet.
	MaxSigners = 24

	// MaxWhitelistEntries is the destination slot capacity of a
	// balance account whitelist.
	MaxWhitelistEntries = 128

	// MaxDAppBookEntries is the program slot capacity of the wallet
	// dapp book.
	MaxDAppBookEntries = 32

	// MaxPendingPayload is the payload slot size of a pending
	// operation record. The packed action of every kind must fit.
	MaxPendingPayload = 768

	// MaxDAppPayload limits the instruction payload carried by a dapp
	// transaction.
	MaxDAppPayload = 256

	// HashSize is the length of account GUID hashes, name hashes,
	// program identities, token mint references and params hashes.
	HashSize = 32

	// MaxLabelSize is the length of a dapp book entry label slot.
	MaxLabelSize = 16
)

// Approval window bounds. Every operation must expire between one
// minute and one year after creation.
const (
	MinApprovalWindow = custos.UnixDuration(60)
	MaxApprovalWindow = custos.UnixDuration(365 * 24 * 60 * 60)

	// DefaultApprovalWindow is used when neither the wallet nor the
	// balance account declares one.
	DefaultApprovalWindow = custos.UnixDuration(24 * 60 * 60)
)

// Asset types a balance account can be bound to.
const (
	AssetNative byte = 0
	AssetToken  byte = 1
)

// Wallet is the root authorization record. It is created once by the
// init instruction and afterwards mutated only by a finalized config
// update operation.
type Wallet struct {
	// Signers is the ordered set of unique signer addresses.
	Signers []custos.Address
	// Threshold is the approve vote count required to finalize an
	// operation. Always 1 <= Threshold <= len(Signers).
	Threshold uint8
	// GuardianMask marks signer slots as guardians, bit i for slot i.
	// When not zero, high risk operations additionally require at
	// least one guardian approval.
	GuardianMask uint32
	// ApprovalWindow is the validity window of operations under this
	// wallet, unless the balance account overrides it.
	ApprovalWindow custos.UnixDuration
	// Version increments with every finalized mutation of wallet
	// state and is returned to the caller.
	Version uint32
	// ConfigLocked is set while a config update operation is pending,
	// so that no second config update can be initiated.
	ConfigLocked bool
}

var _ orm.CloneableData = (*Wallet)(nil)

// Validate ensures the wallet invariants hold.
func (w *Wallet) Validate() error {
	if len(w.Signers) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no signers")
	}
	if len(w.Signers) > MaxSigners {
		return errors.Wrapf(errors.ErrInput, "at most %d signers", MaxSigners)
	}
	for i, s := range w.Signers {
		if err := s.Validate(); err != nil {
			return errors.Wrapf(err, "signer %d", i)
		}
		for _, prev := range w.Signers[:i] {
			if s.Equals(prev) {
				return errors.Wrapf(errors.ErrDuplicate, "signer %s", s)
			}
		}
	}
	if w.Threshold < 1 || int(w.Threshold) > len(w.Signers) {
		return errors.Wrapf(errors.ErrInput, "threshold %d outside 1..%d", w.Threshold, len(w.Signers))
	}
	if w.GuardianMask>>uint(len(w.Signers)) != 0 {
		return errors.Wrap(errors.ErrInput, "guardian mask beyond signer slots")
	}
	if err := validateWindow(w.ApprovalWindow); err != nil {
		return err
	}
	return nil
}

// Copy produces an independent deep copy.
func (w *Wallet) Copy() orm.CloneableData {
	signers := make([]custos.Address, len(w.Signers))
	for i, s := range w.Signers {
		signers[i] = s.Clone()
	}
	return &Wallet{
		Signers:        signers,
		Threshold:      w.Threshold,
		GuardianMask:   w.GuardianMask,
		ApprovalWindow: w.ApprovalWindow,
		Version:        w.Version,
		ConfigLocked:   w.ConfigLocked,
	}
}

// SignerIndex returns the slot of the given address, or -1.
func (w *Wallet) SignerIndex(addr custos.Address) int {
	for i, s := range w.Signers {
		if s.Equals(addr) {
			return i
		}
	}
	return -1
}

// IsSigner returns true if the address is in the current signer set.
func (w *Wallet) IsSigner(addr custos.Address) bool {
	return w.SignerIndex(addr) >= 0
}

// IsGuardian returns true if the address occupies a slot marked in
// the guardian mask.
func (w *Wallet) IsGuardian(addr custos.Address) bool {
	i := w.SignerIndex(addr)
	return i >= 0 && w.GuardianMask&(1<<uint(i)) != 0
}

// Window returns the wallet approval window, falling back to the
// default when unset.
func (w *Wallet) Window() custos.UnixDuration {
	if w.ApprovalWindow == 0 {
		return DefaultApprovalWindow
	}
	return w.ApprovalWindow
}

// applyConfigUpdate replaces the wallet configuration with the
// proposed one. Called only by the operation state machine after
// quorum. The version bump and config unlock happen here so that no
// other code path can mutate the record.
func (w *Wallet) applyConfigUpdate(signers []custos.Address, threshold uint8, guardianMask uint32, window custos.UnixDuration) error {
	next := &Wallet{
		Signers:        signers,
		Threshold:      threshold,
		GuardianMask:   guardianMask,
		ApprovalWindow: window,
		Version:        w.Version + 1,
		ConfigLocked:   false,
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*w = *next
	return nil
}

// validateWindow checks the approval window bounds. Zero is allowed
// and means "inherit the default".
func validateWindow(d custos.UnixDuration) error {
	if d == 0 {
		return nil
	}
	if d < MinApprovalWindow || d > MaxApprovalWindow {
		return errors.Wrapf(errors.ErrInput, "approval window outside %s..%s",
			MinApprovalWindow.Duration(), MaxApprovalWindow.Duration())
	}
	return nil
}

// BalanceAccount is a named sub ledger under a wallet, bound to one
// asset, with its own transfer policy.
type BalanceAccount struct {
	// GUIDHash identifies the account under its wallet.
	GUIDHash []byte
	// NameHash is a hash of the human readable account name. Plain
	// names never touch the chain.
	NameHash []byte
	// AssetType is AssetNative or AssetToken.
	AssetType byte
	// Mint references the token denomination for AssetToken accounts,
	// all zero otherwise.
	Mint []byte
	// WhitelistEnabled restricts transfers to whitelisted
	// destinations when set.
	WhitelistEnabled bool
	// DAppsEnabled allows dapp transactions from this account.
	DAppsEnabled bool
	// Active is cleared instead of deleting the record.
	Active bool
	// TransferThreshold overrides the wallet threshold for transfers
	// from this account. Zero inherits.
	TransferThreshold uint8
	// ApprovalWindow overrides the wallet approval window for
	// operations on this account. Zero inherits.
	ApprovalWindow custos.UnixDuration
	// Whitelist holds the allowed destination addresses.
	Whitelist []custos.Address
}

var _ orm.CloneableData = (*BalanceAccount)(nil)

// Validate ensures the balance account invariants hold.
func (a *BalanceAccount) Validate() error {
	if len(a.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	if len(a.NameHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "name hash size")
	}
	switch a.AssetType {
	case AssetNative:
		if !isZeroHash(a.Mint) {
			return errors.Wrap(errors.ErrInput, "native account with mint")
		}
	case AssetToken:
		if len(a.Mint) != HashSize || isZeroHash(a.Mint) {
			return errors.Wrap(errors.ErrInput, "token account without mint")
		}
	default:
		return errors.Wrapf(errors.ErrInput, "asset type %d", a.AssetType)
	}
	if len(a.Whitelist) > MaxWhitelistEntries {
		return errors.Wrapf(errors.ErrInput, "at most %d whitelist entries", MaxWhitelistEntries)
	}
	for i, d := range a.Whitelist {
		if err := d.Validate(); err != nil {
			return errors.Wrapf(err, "whitelist entry %d", i)
		}
		for _, prev := range a.Whitelist[:i] {
			if d.Equals(prev) {
				return errors.Wrapf(errors.ErrDuplicate, "whitelist entry %s", d)
			}
		}
	}
	if a.TransferThreshold > MaxSigners {
		return errors.Wrap(errors.ErrInput, "transfer threshold beyond signer capacity")
	}
	if err := validateWindow(a.ApprovalWindow); err != nil {
		return err
	}
	return nil
}

// Copy produces an independent deep copy.
func (a *BalanceAccount) Copy() orm.CloneableData {
	whitelist := make([]custos.Address, len(a.Whitelist))
	for i, d := range a.Whitelist {
		whitelist[i] = d.Clone()
	}
	return &BalanceAccount{
		GUIDHash:          append([]byte(nil), a.GUIDHash...),
		NameHash:          append([]byte(nil), a.NameHash...),
		AssetType:         a.AssetType,
		Mint:              append([]byte(nil), a.Mint...),
		WhitelistEnabled:  a.WhitelistEnabled,
		DAppsEnabled:      a.DAppsEnabled,
		Active:            a.Active,
		TransferThreshold: a.TransferThreshold,
		ApprovalWindow:    a.ApprovalWindow,
		Whitelist:         whitelist,
	}
}

// Whitelisted returns true if the destination is in the whitelist.
func (a *BalanceAccount) Whitelisted(dest custos.Address) bool {
	for _, d := range a.Whitelist {
		if d.Equals(dest) {
			return true
		}
	}
	return false
}

// Asset returns the asset this account is bound to.
func (a *BalanceAccount) Asset() Asset {
	return Asset{Type: a.AssetType, Mint: a.Mint}
}

// applyWhitelistUpdate removes and then adds destination addresses.
// Called only by the operation state machine after quorum.
func (a *BalanceAccount) applyWhitelistUpdate(add, remove []custos.Address) error {
	next := make([]custos.Address, 0, len(a.Whitelist)+len(add))
entries:
	for _, d := range a.Whitelist {
		for _, r := range remove {
			if d.Equals(r) {
				continue entries
			}
		}
		next = append(next, d)
	}
	for _, d := range add {
		for _, have := range next {
			if d.Equals(have) {
				return errors.Wrapf(errors.ErrDuplicate, "whitelist entry %s", d)
			}
		}
		next = append(next, d)
	}
	if len(next) > MaxWhitelistEntries {
		return errors.Wrapf(errors.ErrInput, "at most %d whitelist entries", MaxWhitelistEntries)
	}
	a.Whitelist = next
	return nil
}

// isZeroHash returns true for a nil or all zero reference.
func isZeroHash(h []byte) bool {
	for _, b := range h {
		if b != 0 {
			return false
		}
	}
	return true
}

// Asset identifies what a balance account holds.
type Asset struct {
	Type byte
	Mint []byte
}

// Key returns a stable byte representation used as part of ledger
// record keys.
func (a Asset) Key() []byte {
	out := make([]byte, 1+HashSize)
	out[0] = a.Type
	copy(out[1:], a.Mint)
	return out
}

// Equals compares two assets.
func (a Asset) Equals(b Asset) bool {
	return a.Type == b.Type && bytes.Equal(a.Key(), b.Key())
}

// DAppEntry is one allowed external program.
type DAppEntry struct {
	// ProgramID is the external program identity.
	ProgramID []byte
	// Label is a short human readable tag, at most MaxLabelSize
	// bytes.
	Label string
}

// Validate ensures the entry is well formed.
func (e DAppEntry) Validate() error {
	if len(e.ProgramID) != HashSize || isZeroHash(e.ProgramID) {
		return errors.Wrap(errors.ErrInput, "program id")
	}
	if len(e.Label) > MaxLabelSize {
		return errors.Wrapf(errors.ErrInput, "label longer than %d bytes", MaxLabelSize)
	}
	return nil
}

// DAppBook is the wallet wide whitelist of external programs.
type DAppBook struct {
	Entries []DAppEntry
}

var _ orm.CloneableData = (*DAppBook)(nil)

// Validate ensures the book invariants hold.
func (b *DAppBook) Validate() error {
	if len(b.Entries) > MaxDAppBookEntries {
		return errors.Wrapf(errors.ErrInput, "at most %d dapp book entries", MaxDAppBookEntries)
	}
	for i, e := range b.Entries {
		if err := e.Validate(); err != nil {
			return errors.Wrapf(err, "entry %d", i)
		}
		for _, prev := range b.Entries[:i] {
			if bytes.Equal(e.ProgramID, prev.ProgramID) {
				return errors.Wrapf(errors.ErrDuplicate, "program %X", e.ProgramID)
			}
		}
	}
	return nil
}

// Copy produces an independent deep copy.
func (b *DAppBook) Copy() orm.CloneableData {
	entries := make([]DAppEntry, len(b.Entries))
	for i, e := range b.Entries {
		entries[i] = DAppEntry{
			ProgramID: append([]byte(nil), e.ProgramID...),
			Label:     e.Label,
		}
	}
	return &DAppBook{Entries: entries}
}

// Allows returns true if the program is in the book.
func (b *DAppBook) Allows(programID []byte) bool {
	for _, e := range b.Entries {
		if bytes.Equal(e.ProgramID, programID) {
			return true
		}
	}
	return false
}

// applyBookUpdate removes and then adds entries. Called only by the
// operation state machine after quorum.
func (b *DAppBook) applyBookUpdate(add []DAppEntry, remove [][]byte) error {
	next := make([]DAppEntry, 0, len(b.Entries)+len(add))
entries:
	for _, e := range b.Entries {
		for _, r := range remove {
			if bytes.Equal(e.ProgramID, r) {
				continue entries
			}
		}
		next = append(next, e)
	}
	for _, e := range add {
		for _, have := range next {
			if bytes.Equal(e.ProgramID, have.ProgramID) {
				return errors.Wrapf(errors.ErrDuplicate, "program %X", e.ProgramID)
			}
		}
		next = append(next, e)
	}
	if len(next) > MaxDAppBookEntries {
		return errors.Wrapf(errors.ErrInput, "at most %d dapp book entries", MaxDAppBookEntries)
	}
	b.Entries = next
	return nil
}

// OpKind is the closed enum of instruction kinds a pending operation
// can carry.
type OpKind byte

const (
	// KindWalletInit exists for completeness of the enum. Wallet
	// initialization executes immediately and is never persisted as a
	// pending operation.
	KindWalletInit OpKind = iota
	KindConfigUpdate
	KindAccountCreate
	KindAccountUpdate
	KindWhitelistUpdate
	KindTransfer
	KindTokenTransfer
	KindDAppTransaction
	KindDAppBookUpdate
)

// Valid returns true for kinds that can be persisted.
func (k OpKind) Valid() bool {
	return k > KindWalletInit && k <= KindDAppBookUpdate
}

func (k OpKind) String() string {
	switch k {
	case KindWalletInit:
		return "wallet-init"
	case KindConfigUpdate:
		return "config-update"
	case KindAccountCreate:
		return "account-create"
	case KindAccountUpdate:
		return "account-update"
	case KindWhitelistUpdate:
		return "whitelist-update"
	case KindTransfer:
		return "transfer"
	case KindTokenTransfer:
		return "token-transfer"
	case KindDAppTransaction:
		return "dapp-transaction"
	case KindDAppBookUpdate:
		return "dapp-book-update"
	default:
		return "invalid"
	}
}

// OpStatus is the lifecycle state of a pending operation. Transitions
// out of Pending are terminal, the record is deleted in the same
// instruction.
type OpStatus byte

const (
	StatusInvalid OpStatus = iota
	StatusPending
	StatusApproved
	StatusRejected
	StatusExpired
)

func (s OpStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// Disposition is a single signer vote.
type Disposition byte

const (
	DispositionInvalid Disposition = iota
	Approve
	Disapprove
)

func (d Disposition) String() string {
	switch d {
	case Approve:
		return "approve"
	case Disapprove:
		return "disapprove"
	default:
		return "invalid"
	}
}

// Vote is one recorded (signer, disposition) pair.
type Vote struct {
	Signer      custos.Address
	Disposition Disposition
}

// PendingOp is the transient authorization record tracking votes on
// one proposed action. The payload is immutable after creation, every
// vote carries the params hash to prove it refers to the action as
// originally proposed.
type PendingOp struct {
	Kind OpKind
	// WalletID references the wallet this operation belongs to.
	WalletID []byte
	// ParamsHash binds votes to the proposed action.
	ParamsHash []byte
	CreatedAt  custos.UnixTime
	Deadline   custos.UnixTime
	Status     OpStatus
	Votes      []Vote
	// Payload is the packed initiating message.
	Payload []byte
}

var _ orm.CloneableData = (*PendingOp)(nil)

// Validate ensures the operation invariants hold.
func (op *PendingOp) Validate() error {
	if !op.Kind.Valid() {
		return errors.Wrapf(errors.ErrInput, "kind %d", op.Kind)
	}
	if err := orm.ValidateSequence(op.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(op.ParamsHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "params hash size")
	}
	if op.Status != StatusPending {
		return errors.Wrapf(errors.ErrState, "cannot persist status %s", op.Status)
	}
	if op.Deadline <= op.CreatedAt {
		return errors.Wrap(errors.ErrInput, "deadline before creation")
	}
	if len(op.Votes) > MaxSigners {
		return errors.Wrapf(errors.ErrInput, "at most %d votes", MaxSigners)
	}
	for i, v := range op.Votes {
		if err := v.Signer.Validate(); err != nil {
			return errors.Wrapf(err, "vote %d", i)
		}
		if v.Disposition != Approve && v.Disposition != Disapprove {
			return errors.Wrapf(errors.ErrInput, "vote %d disposition", i)
		}
		for _, prev := range op.Votes[:i] {
			if v.Signer.Equals(prev.Signer) {
				return errors.Wrapf(errors.ErrDuplicate, "vote of %s", v.Signer)
			}
		}
	}
	if len(op.Payload) == 0 {
		return errors.Wrap(errors.ErrEmpty, "payload")
	}
	if len(op.Payload) > MaxPendingPayload {
		return errors.Wrapf(errors.ErrInput, "payload larger than %d bytes", MaxPendingPayload)
	}
	return nil
}

// Copy produces an independent deep copy.
func (op *PendingOp) Copy() orm.CloneableData {
	votes := make([]Vote, len(op.Votes))
	for i, v := range op.Votes {
		votes[i] = Vote{Signer: v.Signer.Clone(), Disposition: v.Disposition}
	}
	return &PendingOp{
		Kind:       op.Kind,
		WalletID:   append([]byte(nil), op.WalletID...),
		ParamsHash: append([]byte(nil), op.ParamsHash...),
		CreatedAt:  op.CreatedAt,
		Deadline:   op.Deadline,
		Status:     op.Status,
		Votes:      votes,
		Payload:    append([]byte(nil), op.Payload...),
	}
}

// VoteOf returns the recorded vote of the given signer, or nil.
func (op *PendingOp) VoteOf(addr custos.Address) *Vote {
	for i := range op.Votes {
		if op.Votes[i].Signer.Equals(addr) {
			return &op.Votes[i]
		}
	}
	return nil
}

// recordVote appends a vote. The caller must have checked for
// duplicates already.
func (op *PendingOp) recordVote(signer custos.Address, d Disposition) error {
	if len(op.Votes) >= MaxSigners {
		return errors.Wrapf(errors.ErrState, "at most %d votes", MaxSigners)
	}
	op.Votes = append(op.Votes, Vote{Signer: signer, Disposition: d})
	return nil
}

// ExpiresAt computes the deadline for an operation created now with
// the given window.
func ExpiresAt(now custos.UnixTime, window custos.UnixDuration) custos.UnixTime {
	return now.Add(time.Duration(window) * time.Second)
}
