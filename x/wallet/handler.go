package wallet

import (
	"encoding/binary"

	"github.com/tendermint/tendermint/libs/common"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x"
)

// Gas costs charged per instruction.
const (
	initWalletCost = 300
	proposalCost   = 200
	voteCost       = 100
	reapCost       = 50
)

// RegisterRoutes installs all wallet handlers on the router.
func RegisterRoutes(r custos.Registry, auth x.Authenticator, mover Mover) {
	ops := NewOperations(mover)
	r.Handle(PathInitWallet, initWalletHandler{auth: auth, ops: ops})
	for _, path := range []string{
		PathUpdateConfig,
		PathCreateAccount,
		PathUpdateAccount,
		PathUpdateWhitelistStatus,
		PathUpdateWhitelist,
		PathTransfer,
		PathTokenTransfer,
		PathUpdateDAppBook,
		PathDAppTransaction,
	} {
		r.Handle(path, proposalHandler{auth: auth, ops: ops})
	}
	r.Handle(PathVote, voteHandler{auth: auth, ops: ops})
	r.Handle(PathReap, reapHandler{ops: ops})
}

// RegisterQuery installs the wallet buckets on the query router.
func RegisterQuery(qr custos.QueryRouter) {
	NewWalletBucket().Register("wallets", qr)
	NewAccountBucket().Register("accounts", qr)
	NewBookBucket().Register("dappbooks", qr)
	NewOpBucket().Register("operations", qr)
}

// blockNow extracts the consensus time from the context. Handlers must
// never read the system clock.
func blockNow(ctx custos.Context) (custos.UnixTime, error) {
	t, ok := custos.BlockTime(ctx)
	if !ok {
		return 0, errors.Wrap(errors.ErrState, "block time not set")
	}
	return custos.AsUnixTime(t), nil
}

// versionData encodes the wallet version returned to the caller.
func versionData(version uint32) []byte {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, version)
	return data
}

// resultTags builds the indexable tags of a resolved instruction.
func resultTags(kind OpKind, status OpStatus) []common.KVPair {
	return []common.KVPair{
		{Key: []byte("wallet:action"), Value: []byte(kind.String())},
		{Key: []byte("wallet:status"), Value: []byte(status.String())},
	}
}

// asProposal maps a routed message onto the operation kind, the target
// wallet and the canonical payload message. The whitelist status
// shortcut folds into an account update here.
func asProposal(msg custos.Msg) (OpKind, []byte, custos.Msg, error) {
	switch m := msg.(type) {
	case *UpdateConfigMsg:
		return KindConfigUpdate, m.WalletID, m, nil
	case *CreateAccountMsg:
		return KindAccountCreate, m.WalletID, m, nil
	case *UpdateAccountMsg:
		return KindAccountUpdate, m.WalletID, m, nil
	case *UpdateWhitelistStatusMsg:
		return KindAccountUpdate, m.WalletID, m.AsUpdate(), nil
	case *UpdateWhitelistMsg:
		return KindWhitelistUpdate, m.WalletID, m, nil
	case *TransferMsg:
		return KindTransfer, m.WalletID, m, nil
	case *TokenTransferMsg:
		return KindTokenTransfer, m.WalletID, m, nil
	case *UpdateDAppBookMsg:
		return KindDAppBookUpdate, m.WalletID, m, nil
	case *DAppTransactionMsg:
		return KindDAppTransaction, m.WalletID, m, nil
	}
	return 0, nil, nil, errors.Wrapf(errors.ErrMsg, "unknown proposal %T", msg)
}

// initWalletHandler creates wallets. The instruction must be signed by
// one of the declared signers so nobody can open a wallet on behalf of
// strangers.
type initWalletHandler struct {
	auth x.Authenticator
	ops  *Operations
}

var _ custos.Handler = initWalletHandler{}

func (h initWalletHandler) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	var res custos.CheckResult
	var msg InitWalletMsg
	if err := custos.LoadMsg(tx, &msg); err != nil {
		return res, err
	}
	res.GasAllocated = initWalletCost
	return res, nil
}

func (h initWalletHandler) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	var res custos.DeliverResult
	var msg InitWalletMsg
	if err := custos.LoadMsg(tx, &msg); err != nil {
		return res, err
	}
	var signed bool
	for _, s := range msg.Signers {
		if h.auth.HasAddress(ctx, s) {
			signed = true
			break
		}
	}
	if !signed {
		return res, errors.Wrap(errors.ErrUnauthorized, "not signed by a declared signer")
	}
	id, _, err := h.ops.InitWallet(db, &msg)
	if err != nil {
		return res, err
	}
	res.Data = id
	res.Tags = []common.KVPair{
		{Key: []byte("wallet:action"), Value: []byte(KindWalletInit.String())},
		{Key: []byte("wallet:id"), Value: id},
	}
	res.Log = "wallet created"
	return res, nil
}

// proposalHandler initiates pending operations for every instruction
// that is subject to the quorum flow.
type proposalHandler struct {
	auth x.Authenticator
	ops  *Operations
}

var _ custos.Handler = proposalHandler{}

func (h proposalHandler) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	var res custos.CheckResult
	msg, err := tx.GetMsg()
	if err != nil {
		return res, errors.Wrap(err, "cannot get message")
	}
	if err := msg.Validate(); err != nil {
		return res, err
	}
	if _, _, _, err := asProposal(msg); err != nil {
		return res, err
	}
	res.GasAllocated = proposalCost
	return res, nil
}

func (h proposalHandler) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	var res custos.DeliverResult
	msg, err := tx.GetMsg()
	if err != nil {
		return res, errors.Wrap(err, "cannot get message")
	}
	if err := msg.Validate(); err != nil {
		return res, err
	}
	kind, walletID, payload, err := asProposal(msg)
	if err != nil {
		return res, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return res, err
	}
	proposer := x.MainSigner(ctx, h.auth)
	if proposer == nil {
		return res, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	opRes, err := h.ops.Initiate(db, now, proposer.Address(), kind, walletID, payload)
	if err != nil {
		return res, err
	}
	res.Tags = resultTags(kind, opRes.Status)
	switch opRes.Status {
	case StatusPending:
		res.Data = opRes.OpID
		res.Log = "operation pending"
	default:
		res.Data = versionData(opRes.WalletVersion)
		res.Log = "operation " + opRes.Status.String()
	}
	return res, nil
}

// voteHandler records signer votes on pending operations.
type voteHandler struct {
	auth x.Authenticator
	ops  *Operations
}

var _ custos.Handler = voteHandler{}

func (h voteHandler) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	var res custos.CheckResult
	var msg VoteMsg
	if err := custos.LoadMsg(tx, &msg); err != nil {
		return res, err
	}
	res.GasAllocated = voteCost
	return res, nil
}

func (h voteHandler) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	var res custos.DeliverResult
	var msg VoteMsg
	if err := custos.LoadMsg(tx, &msg); err != nil {
		return res, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return res, err
	}
	voter := x.MainSigner(ctx, h.auth)
	if voter == nil {
		return res, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	opRes, err := h.ops.Vote(db, now, voter.Address(), &msg)
	if err != nil {
		return res, err
	}
	res.Tags = []common.KVPair{
		{Key: []byte("wallet:status"), Value: []byte(opRes.Status.String())},
	}
	switch opRes.Status {
	case StatusPending:
		res.Data = opRes.OpID
		res.Log = "vote recorded"
	default:
		res.Data = versionData(opRes.WalletVersion)
		res.Log = "operation " + opRes.Status.String()
	}
	return res, nil
}

// reapHandler removes expired operations. No signer authority is
// required, reaping is housekeeping.
type reapHandler struct {
	ops *Operations
}

var _ custos.Handler = reapHandler{}

func (h reapHandler) Check(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.CheckResult, error) {
	var res custos.CheckResult
	var msg ReapMsg
	if err := custos.LoadMsg(tx, &msg); err != nil {
		return res, err
	}
	res.GasAllocated = reapCost
	return res, nil
}

func (h reapHandler) Deliver(ctx custos.Context, db custos.KVStore, tx custos.Tx) (custos.DeliverResult, error) {
	var res custos.DeliverResult
	var msg ReapMsg
	if err := custos.LoadMsg(tx, &msg); err != nil {
		return res, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return res, err
	}
	if err := h.ops.Reap(db, now, msg.OpID); err != nil {
		return res, err
	}
	res.Tags = []common.KVPair{
		{Key: []byte("wallet:status"), Value: []byte(StatusExpired.String())},
	}
	res.Log = "operation reaped"
	return res, nil
}
