package wallet

import (
	"bytes"

	"golang.org/x/crypto/blake2b"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// Operations is the pending operation state machine. All wallet state
// transitions flow through it: a signer initiates an operation, other
// signers vote, and once the quorum decision falls the packed payload
// is applied (or dropped) and the operation record deleted. Policy
// inputs are always read from the wallet record as it is at decision
// time, not as it was at proposal time.
type Operations struct {
	wallets  WalletBucket
	accounts AccountBucket
	books    BookBucket
	ops      OpBucket
	mover    Mover
}

// NewOperations returns a state machine moving funds through the
// given mover.
func NewOperations(mover Mover) *Operations {
	return &Operations{
		wallets:  NewWalletBucket(),
		accounts: NewAccountBucket(),
		books:    NewBookBucket(),
		ops:      NewOpBucket(),
		mover:    mover,
	}
}

// OpResult reports the outcome of initiating or voting.
type OpResult struct {
	// OpID is set while the operation is still pending. It is empty
	// once the operation reached a terminal status.
	OpID []byte
	// Status is StatusPending, StatusApproved or StatusRejected.
	Status OpStatus
	// WalletVersion is the wallet version after this instruction.
	WalletVersion uint32
}

// ParamsHash binds a vote to the proposed action. It commits to the
// operation kind, the wallet and the packed payload.
func ParamsHash(kind OpKind, walletID, payload []byte) []byte {
	h, _ := blake2b.New256(nil)
	h.Write([]byte{byte(kind)})
	h.Write(walletID)
	h.Write(payload)
	return h.Sum(nil)
}

// InitWallet creates a new wallet. This is the only mutation that
// bypasses the pending operation flow, there is no quorum before the
// first configuration exists.
func (o *Operations) InitWallet(db custos.KVStore, msg *InitWalletMsg) ([]byte, *Wallet, error) {
	w := &Wallet{
		Signers:        msg.Signers,
		Threshold:      msg.Threshold,
		GuardianMask:   msg.GuardianMask,
		ApprovalWindow: msg.ApprovalWindow,
		Version:        1,
	}
	id, err := o.wallets.Create(db, w)
	if err != nil {
		return nil, nil, err
	}
	return id, w, nil
}

// Initiate opens a pending operation proposing the given message. The
// proposer must be a current signer and their approve vote is recorded
// immediately, so with a threshold of one the operation finalizes in
// the same instruction.
func (o *Operations) Initiate(db custos.KVStore, now custos.UnixTime, proposer custos.Address, kind OpKind, walletID []byte, msg custos.Msg) (*OpResult, error) {
	w, err := o.wallets.GetWallet(db, walletID)
	if err != nil {
		return nil, err
	}
	if !w.IsSigner(proposer) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "proposer is not a signer")
	}

	acct, err := o.checkInitiate(db, w, kind, walletID, msg)
	if err != nil {
		return nil, err
	}

	payload, err := msg.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "pack payload")
	}
	if len(payload) > MaxPendingPayload {
		return nil, errors.Wrapf(errors.ErrInput, "payload larger than %d bytes", MaxPendingPayload)
	}

	window := EffectiveWindow(w, acct)
	op := &PendingOp{
		Kind:       kind,
		WalletID:   walletID,
		ParamsHash: ParamsHash(kind, walletID, payload),
		CreatedAt:  now,
		Deadline:   ExpiresAt(now, window),
		Status:     StatusPending,
		Votes:      []Vote{{Signer: proposer, Disposition: Approve}},
		Payload:    payload,
	}

	threshold := EffectiveThreshold(w, acct, kind)
	if QuorumMet(op.Votes, w, threshold) && (!HighRisk(kind) || GuardianApproved(op.Votes, w)) {
		version, err := o.finalize(db, walletID, w, op)
		if err != nil {
			return nil, err
		}
		return &OpResult{Status: StatusApproved, WalletVersion: version}, nil
	}

	if kind == KindConfigUpdate {
		w.ConfigLocked = true
		if err := o.wallets.Save(db, walletID, w); err != nil {
			return nil, err
		}
	}
	id, err := o.ops.Create(db, op)
	if err != nil {
		return nil, err
	}
	return &OpResult{OpID: id, Status: StatusPending, WalletVersion: w.Version}, nil
}

// checkInitiate verifies the proposal against current state and
// returns the balance account the operation targets, if any. Checks
// that depend on live state are repeated at finalization.
func (o *Operations) checkInitiate(db custos.KVStore, w *Wallet, kind OpKind, walletID []byte, msg custos.Msg) (*BalanceAccount, error) {
	switch m := msg.(type) {
	case *UpdateConfigMsg:
		if kind != KindConfigUpdate {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		if w.ConfigLocked {
			return nil, errors.Wrap(errors.ErrState, "config update already pending")
		}
		return nil, nil

	case *CreateAccountMsg:
		if kind != KindAccountCreate {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		ok, err := o.accounts.Has(db, walletID, m.GUIDHash)
		if err != nil {
			return nil, err
		}
		if ok {
			return nil, errors.Wrapf(errors.ErrDuplicate, "balance account %X", m.GUIDHash)
		}
		return nil, nil

	case *UpdateAccountMsg:
		if kind != KindAccountUpdate {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		return o.accounts.GetAccount(db, walletID, m.GUIDHash)

	case *UpdateWhitelistMsg:
		if kind != KindWhitelistUpdate {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return nil, err
		}
		// Dry run on a copy so that a doomed proposal fails here
		// instead of after collecting votes.
		scratch := acct.Copy().(*BalanceAccount)
		if err := scratch.applyWhitelistUpdate(m.Add, m.Remove); err != nil {
			return nil, err
		}
		return acct, nil

	case *TransferMsg:
		if kind != KindTransfer {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return nil, err
		}
		if err := checkTransferTarget(acct, AssetNative, nil, m.Destination); err != nil {
			return nil, err
		}
		return acct, nil

	case *TokenTransferMsg:
		if kind != KindTokenTransfer {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return nil, err
		}
		if err := checkTransferTarget(acct, AssetToken, m.Mint, m.Destination); err != nil {
			return nil, err
		}
		return acct, nil

	case *DAppTransactionMsg:
		if kind != KindDAppTransaction {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return nil, err
		}
		book, err := o.books.GetBook(db, walletID)
		if err != nil {
			return nil, err
		}
		if err := checkDAppTarget(acct, book, m.ProgramID); err != nil {
			return nil, err
		}
		return acct, nil

	case *UpdateDAppBookMsg:
		if kind != KindDAppBookUpdate {
			return nil, errors.Wrap(errors.ErrHuman, "kind mismatch")
		}
		book, err := o.books.GetBook(db, walletID)
		if err != nil {
			return nil, err
		}
		scratch := book.Copy().(*DAppBook)
		if err := scratch.applyBookUpdate(m.Add, m.Remove); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, errors.Wrapf(errors.ErrHuman, "cannot initiate %T", msg)
}

// checkTransferTarget verifies a transfer proposal against the
// current account state.
func checkTransferTarget(acct *BalanceAccount, assetType byte, mint []byte, dest custos.Address) error {
	if !acct.Active {
		return errors.Wrap(errors.ErrState, "account is deactivated")
	}
	if acct.AssetType != assetType {
		return errors.Wrap(ErrPolicy, "asset type mismatch")
	}
	if assetType == AssetToken && !bytes.Equal(acct.Mint, mint) {
		return errors.Wrap(ErrPolicy, "mint mismatch")
	}
	if !DestinationAllowed(acct, dest) {
		return errors.Wrapf(ErrPolicy, "destination %s not whitelisted", dest)
	}
	return nil
}

// checkDAppTarget verifies a dapp invocation against the current
// account and book state.
func checkDAppTarget(acct *BalanceAccount, book *DAppBook, programID []byte) error {
	if !acct.Active {
		return errors.Wrap(errors.ErrState, "account is deactivated")
	}
	if !acct.DAppsEnabled {
		return errors.Wrap(ErrPolicy, "dapps disabled for account")
	}
	if !ProgramAllowed(book, programID) {
		return errors.Wrapf(ErrPolicy, "program %X not in dapp book", programID)
	}
	return nil
}

// Vote records an approve or disapprove vote and resolves the
// operation if the decision falls. The voter must be a signer of the
// wallet configuration as it is now, votes of since removed signers
// stop counting and freshly added signers may vote right away.
func (o *Operations) Vote(db custos.KVStore, now custos.UnixTime, voter custos.Address, msg *VoteMsg) (*OpResult, error) {
	op, err := o.ops.GetOp(db, msg.OpID)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(msg.ParamsHash, op.ParamsHash) {
		return nil, errors.Wrap(errors.ErrInput, "params hash mismatch")
	}
	if !WithinWindow(now, op.Deadline) {
		return nil, errors.Wrapf(errors.ErrExpired, "operation %X", msg.OpID)
	}
	w, err := o.wallets.GetWallet(db, op.WalletID)
	if err != nil {
		return nil, err
	}
	if !w.IsSigner(voter) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "voter is not a signer")
	}
	if v := op.VoteOf(voter); v != nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "already voted %s", v.Disposition)
	}
	if err := op.recordVote(voter, msg.Disposition); err != nil {
		return nil, err
	}

	acct, err := o.opAccount(db, op)
	if err != nil {
		return nil, err
	}
	threshold := EffectiveThreshold(w, acct, op.Kind)

	switch {
	case QuorumMet(op.Votes, w, threshold) && (!HighRisk(op.Kind) || GuardianApproved(op.Votes, w)):
		if err := o.ops.Delete(db, msg.OpID); err != nil {
			return nil, err
		}
		version, err := o.finalize(db, op.WalletID, w, op)
		if err != nil {
			return nil, err
		}
		return &OpResult{Status: StatusApproved, WalletVersion: version}, nil

	case QuorumFailed(op.Votes, w, threshold):
		if err := o.ops.Delete(db, msg.OpID); err != nil {
			return nil, err
		}
		version, err := o.drop(db, op.WalletID, w, op)
		if err != nil {
			return nil, err
		}
		return &OpResult{Status: StatusRejected, WalletVersion: version}, nil

	default:
		if err := o.ops.Save(db, msg.OpID, op); err != nil {
			return nil, err
		}
		return &OpResult{OpID: msg.OpID, Status: StatusPending, WalletVersion: w.Version}, nil
	}
}

// opAccount loads the balance account an operation targets, or nil
// for wallet scoped kinds.
func (o *Operations) opAccount(db custos.ReadOnlyKVStore, op *PendingOp) (*BalanceAccount, error) {
	var guid []byte
	switch op.Kind {
	case KindTransfer:
		var m TransferMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return nil, errors.Wrap(errors.ErrSchema, "payload")
		}
		guid = m.GUIDHash
	case KindTokenTransfer:
		var m TokenTransferMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return nil, errors.Wrap(errors.ErrSchema, "payload")
		}
		guid = m.GUIDHash
	default:
		return nil, nil
	}
	acct, err := o.accounts.GetAccount(db, op.WalletID, guid)
	if errors.ErrNotFound.Is(err) {
		return nil, nil
	}
	return acct, err
}

// Reap deletes an expired pending operation and releases any lock it
// held. Anyone may reap, no signer authority is required.
func (o *Operations) Reap(db custos.KVStore, now custos.UnixTime, opID []byte) error {
	op, err := o.ops.GetOp(db, opID)
	if err != nil {
		return err
	}
	if WithinWindow(now, op.Deadline) {
		return errors.Wrapf(errors.ErrState, "operation %X has not expired", opID)
	}
	w, err := o.wallets.GetWallet(db, op.WalletID)
	if err != nil {
		return err
	}
	if err := o.ops.Delete(db, opID); err != nil {
		return err
	}
	if _, err := o.drop(db, op.WalletID, w, op); err != nil {
		return err
	}
	return nil
}

// finalize applies the packed payload of an approved operation. Live
// policy checks are repeated here, state may have drifted since the
// proposal.
func (o *Operations) finalize(db custos.KVStore, walletID []byte, w *Wallet, op *PendingOp) (uint32, error) {
	switch op.Kind {
	case KindConfigUpdate:
		var m UpdateConfigMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		if err := w.applyConfigUpdate(m.Signers, m.Threshold, m.GuardianMask, m.ApprovalWindow); err != nil {
			return 0, err
		}
		if err := o.wallets.Save(db, walletID, w); err != nil {
			return 0, err
		}
		return w.Version, nil

	case KindAccountCreate:
		var m CreateAccountMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		ok, err := o.accounts.Has(db, walletID, m.GUIDHash)
		if err != nil {
			return 0, err
		}
		if ok {
			return 0, errors.Wrapf(errors.ErrDuplicate, "balance account %X", m.GUIDHash)
		}
		if err := o.accounts.Save(db, walletID, m.Account()); err != nil {
			return 0, err
		}
		return o.bumpVersion(db, walletID, w)

	case KindAccountUpdate:
		var m UpdateAccountMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return 0, err
		}
		if len(m.NameHash) != 0 {
			acct.NameHash = m.NameHash
		}
		if m.SetOverrides {
			acct.TransferThreshold = m.TransferThreshold
			acct.ApprovalWindow = m.ApprovalWindow
		}
		acct.WhitelistEnabled = m.WhitelistToggle.Apply(acct.WhitelistEnabled)
		acct.DAppsEnabled = m.DAppsToggle.Apply(acct.DAppsEnabled)
		acct.Active = m.ActiveToggle.Apply(acct.Active)
		if err := o.accounts.Save(db, walletID, acct); err != nil {
			return 0, err
		}
		return o.bumpVersion(db, walletID, w)

	case KindWhitelistUpdate:
		var m UpdateWhitelistMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return 0, err
		}
		if err := acct.applyWhitelistUpdate(m.Add, m.Remove); err != nil {
			return 0, err
		}
		if err := o.accounts.Save(db, walletID, acct); err != nil {
			return 0, err
		}
		return o.bumpVersion(db, walletID, w)

	case KindTransfer:
		var m TransferMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return 0, err
		}
		if err := checkTransferTarget(acct, AssetNative, nil, m.Destination); err != nil {
			return 0, err
		}
		src := AccountAddress(walletID, m.GUIDHash)
		if err := o.mover.Move(db, src, m.Destination, acct.Asset(), m.Amount); err != nil {
			return 0, err
		}
		return o.bumpVersion(db, walletID, w)

	case KindTokenTransfer:
		var m TokenTransferMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return 0, err
		}
		if err := checkTransferTarget(acct, AssetToken, m.Mint, m.Destination); err != nil {
			return 0, err
		}
		src := AccountAddress(walletID, m.GUIDHash)
		if err := o.mover.Move(db, src, m.Destination, acct.Asset(), m.Amount); err != nil {
			return 0, err
		}
		return o.bumpVersion(db, walletID, w)

	case KindDAppTransaction:
		var m DAppTransactionMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		acct, err := o.accounts.GetAccount(db, walletID, m.GUIDHash)
		if err != nil {
			return 0, err
		}
		book, err := o.books.GetBook(db, walletID)
		if err != nil {
			return 0, err
		}
		if err := checkDAppTarget(acct, book, m.ProgramID); err != nil {
			return 0, err
		}
		// The runtime does not execute external programs. Approval is
		// recorded by the version bump, the payload reaches the target
		// chain through the instruction result.
		return o.bumpVersion(db, walletID, w)

	case KindDAppBookUpdate:
		var m UpdateDAppBookMsg
		if err := m.Unmarshal(op.Payload); err != nil {
			return 0, errors.Wrap(errors.ErrSchema, "payload")
		}
		book, err := o.books.GetBook(db, walletID)
		if err != nil {
			return 0, err
		}
		if err := book.applyBookUpdate(m.Add, m.Remove); err != nil {
			return 0, err
		}
		if err := o.books.Save(db, walletID, book); err != nil {
			return 0, err
		}
		return o.bumpVersion(db, walletID, w)
	}
	return 0, errors.Wrapf(errors.ErrHuman, "cannot finalize kind %s", op.Kind)
}

// drop resolves an operation without applying it, releasing the
// config lock if this was the pending config update.
func (o *Operations) drop(db custos.KVStore, walletID []byte, w *Wallet, op *PendingOp) (uint32, error) {
	if op.Kind == KindConfigUpdate && w.ConfigLocked {
		w.ConfigLocked = false
		if err := o.wallets.Save(db, walletID, w); err != nil {
			return 0, err
		}
	}
	return w.Version, nil
}

// bumpVersion increments the wallet version after a finalized
// mutation outside the wallet record itself.
func (o *Operations) bumpVersion(db custos.KVStore, walletID []byte, w *Wallet) (uint32, error) {
	w.Version++
	if err := o.wallets.Save(db, walletID, w); err != nil {
		return 0, err
	}
	return w.Version, nil
}
