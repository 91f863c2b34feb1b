package wallet

import (
	"github.com/tendermint/go-amino"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/orm"
)

// Routing paths of all wallet instructions.
const (
	PathInitWallet            = "wallet/init"
	PathUpdateConfig          = "wallet/update_config"
	PathCreateAccount         = "wallet/create_account"
	PathUpdateAccount         = "wallet/update_account"
	PathUpdateWhitelistStatus = "wallet/update_whitelist_status"
	PathUpdateWhitelist       = "wallet/update_whitelist"
	PathTransfer              = "wallet/transfer"
	PathTokenTransfer         = "wallet/token_transfer"
	PathUpdateDAppBook        = "wallet/update_dapp_book"
	PathDAppTransaction       = "wallet/dapp_transaction"
	PathVote                  = "wallet/vote"
	PathReap                  = "wallet/reap"
)

// Delta limits keep the packed payload of list editing operations
// within the pending operation payload slot.
const (
	// MaxWhitelistDelta bounds added plus removed destinations in one
	// whitelist update.
	MaxWhitelistDelta = 24
	// MaxBookDelta bounds added plus removed entries in one dapp book
	// update.
	MaxBookDelta = 8
)

// msgCodec serializes instruction messages. The encoding is
// deterministic, the packed bytes double as the payload stored inside
// a pending operation and as the input of the params hash.
var msgCodec = amino.NewCodec()

// RegisterCodec registers all wallet message types on a transaction
// envelope codec.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&InitWalletMsg{}, PathInitWallet, nil)
	cdc.RegisterConcrete(&UpdateConfigMsg{}, PathUpdateConfig, nil)
	cdc.RegisterConcrete(&CreateAccountMsg{}, PathCreateAccount, nil)
	cdc.RegisterConcrete(&UpdateAccountMsg{}, PathUpdateAccount, nil)
	cdc.RegisterConcrete(&UpdateWhitelistStatusMsg{}, PathUpdateWhitelistStatus, nil)
	cdc.RegisterConcrete(&UpdateWhitelistMsg{}, PathUpdateWhitelist, nil)
	cdc.RegisterConcrete(&TransferMsg{}, PathTransfer, nil)
	cdc.RegisterConcrete(&TokenTransferMsg{}, PathTokenTransfer, nil)
	cdc.RegisterConcrete(&UpdateDAppBookMsg{}, PathUpdateDAppBook, nil)
	cdc.RegisterConcrete(&DAppTransactionMsg{}, PathDAppTransaction, nil)
	cdc.RegisterConcrete(&VoteMsg{}, PathVote, nil)
	cdc.RegisterConcrete(&ReapMsg{}, PathReap, nil)
}

// Toggle is a tri state switch used by account updates so that a
// partial update does not clobber flags it does not mention.
type Toggle byte

const (
	ToggleKeep Toggle = iota
	ToggleOn
	ToggleOff
)

// Validate returns an error for unknown toggle values.
func (t Toggle) Validate() error {
	if t > ToggleOff {
		return errors.Wrapf(errors.ErrInput, "toggle %d", t)
	}
	return nil
}

// Apply resolves the toggle against the current flag value.
func (t Toggle) Apply(current bool) bool {
	switch t {
	case ToggleOn:
		return true
	case ToggleOff:
		return false
	default:
		return current
	}
}

// InitWalletMsg creates a new wallet. It executes immediately, there
// is no quorum before the first configuration exists.
type InitWalletMsg struct {
	Signers        []custos.Address
	Threshold      uint8
	GuardianMask   uint32
	ApprovalWindow custos.UnixDuration
}

var _ custos.Msg = (*InitWalletMsg)(nil)

func (m *InitWalletMsg) Path() string { return PathInitWallet }

func (m *InitWalletMsg) Validate() error {
	w := Wallet{
		Signers:        m.Signers,
		Threshold:      m.Threshold,
		GuardianMask:   m.GuardianMask,
		ApprovalWindow: m.ApprovalWindow,
	}
	return w.Validate()
}

func (m *InitWalletMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *InitWalletMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// UpdateConfigMsg proposes a full replacement of the wallet
// configuration.
type UpdateConfigMsg struct {
	WalletID       []byte
	Signers        []custos.Address
	Threshold      uint8
	GuardianMask   uint32
	ApprovalWindow custos.UnixDuration
}

var _ custos.Msg = (*UpdateConfigMsg)(nil)

func (m *UpdateConfigMsg) Path() string { return PathUpdateConfig }

func (m *UpdateConfigMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	w := Wallet{
		Signers:        m.Signers,
		Threshold:      m.Threshold,
		GuardianMask:   m.GuardianMask,
		ApprovalWindow: m.ApprovalWindow,
	}
	return w.Validate()
}

func (m *UpdateConfigMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *UpdateConfigMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// CreateAccountMsg proposes a new balance account.
type CreateAccountMsg struct {
	WalletID          []byte
	GUIDHash          []byte
	NameHash          []byte
	AssetType         byte
	Mint              []byte
	WhitelistEnabled  bool
	DAppsEnabled      bool
	TransferThreshold uint8
	ApprovalWindow    custos.UnixDuration
}

var _ custos.Msg = (*CreateAccountMsg)(nil)

func (m *CreateAccountMsg) Path() string { return PathCreateAccount }

func (m *CreateAccountMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	a := m.Account()
	return a.Validate()
}

// Account builds the record this message proposes. A new account is
// always active and starts with an empty whitelist.
func (m *CreateAccountMsg) Account() *BalanceAccount {
	mint := m.Mint
	if m.AssetType == AssetNative && len(mint) == 0 {
		mint = make([]byte, HashSize)
	}
	return &BalanceAccount{
		GUIDHash:          m.GUIDHash,
		NameHash:          m.NameHash,
		AssetType:         m.AssetType,
		Mint:              mint,
		WhitelistEnabled:  m.WhitelistEnabled,
		DAppsEnabled:      m.DAppsEnabled,
		Active:            true,
		TransferThreshold: m.TransferThreshold,
		ApprovalWindow:    m.ApprovalWindow,
	}
}

func (m *CreateAccountMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *CreateAccountMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// UpdateAccountMsg proposes a partial update of a balance account.
// Zero values leave the corresponding field untouched.
type UpdateAccountMsg struct {
	WalletID []byte
	GUIDHash []byte
	// NameHash replaces the stored name hash when not empty.
	NameHash []byte
	// SetOverrides makes TransferThreshold and ApprovalWindow take
	// effect, including resetting them to zero (inherit).
	SetOverrides      bool
	TransferThreshold uint8
	ApprovalWindow    custos.UnixDuration
	WhitelistToggle   Toggle
	DAppsToggle       Toggle
	ActiveToggle      Toggle
}

var _ custos.Msg = (*UpdateAccountMsg)(nil)

func (m *UpdateAccountMsg) Path() string { return PathUpdateAccount }

func (m *UpdateAccountMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	if len(m.NameHash) != 0 && len(m.NameHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "name hash size")
	}
	if m.SetOverrides {
		if m.TransferThreshold > MaxSigners {
			return errors.Wrap(errors.ErrInput, "transfer threshold beyond signer capacity")
		}
		if err := validateWindow(m.ApprovalWindow); err != nil {
			return err
		}
	} else if m.TransferThreshold != 0 || m.ApprovalWindow != 0 {
		return errors.Wrap(errors.ErrInput, "overrides given without set flag")
	}
	for _, t := range []Toggle{m.WhitelistToggle, m.DAppsToggle, m.ActiveToggle} {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (m *UpdateAccountMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *UpdateAccountMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// UpdateWhitelistStatusMsg proposes switching the whitelist
// enforcement of a balance account on or off. It is a convenience
// wrapper over an account update.
type UpdateWhitelistStatusMsg struct {
	WalletID []byte
	GUIDHash []byte
	Enabled  bool
}

var _ custos.Msg = (*UpdateWhitelistStatusMsg)(nil)

func (m *UpdateWhitelistStatusMsg) Path() string { return PathUpdateWhitelistStatus }

func (m *UpdateWhitelistStatusMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	return nil
}

// AsUpdate converts into the account update this message stands for.
func (m *UpdateWhitelistStatusMsg) AsUpdate() *UpdateAccountMsg {
	toggle := ToggleOff
	if m.Enabled {
		toggle = ToggleOn
	}
	return &UpdateAccountMsg{
		WalletID:        m.WalletID,
		GUIDHash:        m.GUIDHash,
		WhitelistToggle: toggle,
	}
}

func (m *UpdateWhitelistStatusMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *UpdateWhitelistStatusMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// UpdateWhitelistMsg proposes adding and removing destination
// addresses of a balance account whitelist.
type UpdateWhitelistMsg struct {
	WalletID []byte
	GUIDHash []byte
	Add      []custos.Address
	Remove   []custos.Address
}

var _ custos.Msg = (*UpdateWhitelistMsg)(nil)

func (m *UpdateWhitelistMsg) Path() string { return PathUpdateWhitelist }

func (m *UpdateWhitelistMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	if len(m.Add)+len(m.Remove) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no changes")
	}
	if len(m.Add)+len(m.Remove) > MaxWhitelistDelta {
		return errors.Wrapf(errors.ErrInput, "at most %d changes per update", MaxWhitelistDelta)
	}
	for i, d := range m.Add {
		if err := d.Validate(); err != nil {
			return errors.Wrapf(err, "add %d", i)
		}
	}
	for i, d := range m.Remove {
		if err := d.Validate(); err != nil {
			return errors.Wrapf(err, "remove %d", i)
		}
	}
	return nil
}

func (m *UpdateWhitelistMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *UpdateWhitelistMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// TransferMsg proposes moving native funds out of a balance account.
type TransferMsg struct {
	WalletID    []byte
	GUIDHash    []byte
	Destination custos.Address
	Amount      uint64
}

var _ custos.Msg = (*TransferMsg)(nil)

func (m *TransferMsg) Path() string { return PathTransfer }

func (m *TransferMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return nil
}

func (m *TransferMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *TransferMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// TokenTransferMsg proposes moving token funds out of a balance
// account. The mint must match the account asset.
type TokenTransferMsg struct {
	WalletID    []byte
	GUIDHash    []byte
	Destination custos.Address
	Mint        []byte
	Amount      uint64
}

var _ custos.Msg = (*TokenTransferMsg)(nil)

func (m *TokenTransferMsg) Path() string { return PathTokenTransfer }

func (m *TokenTransferMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if len(m.Mint) != HashSize || isZeroHash(m.Mint) {
		return errors.Wrap(errors.ErrInput, "mint")
	}
	if m.Amount == 0 {
		return errors.Wrap(errors.ErrAmount, "zero amount")
	}
	return nil
}

func (m *TokenTransferMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *TokenTransferMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// UpdateDAppBookMsg proposes adding and removing dapp book entries.
type UpdateDAppBookMsg struct {
	WalletID []byte
	Add      []DAppEntry
	Remove   [][]byte
}

var _ custos.Msg = (*UpdateDAppBookMsg)(nil)

func (m *UpdateDAppBookMsg) Path() string { return PathUpdateDAppBook }

func (m *UpdateDAppBookMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.Add)+len(m.Remove) == 0 {
		return errors.Wrap(errors.ErrEmpty, "no changes")
	}
	if len(m.Add)+len(m.Remove) > MaxBookDelta {
		return errors.Wrapf(errors.ErrInput, "at most %d changes per update", MaxBookDelta)
	}
	for i, e := range m.Add {
		if err := e.Validate(); err != nil {
			return errors.Wrapf(err, "add %d", i)
		}
	}
	for i, r := range m.Remove {
		if len(r) != HashSize {
			return errors.Wrapf(errors.ErrInput, "remove %d program id", i)
		}
	}
	return nil
}

func (m *UpdateDAppBookMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *UpdateDAppBookMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// DAppTransactionMsg proposes invoking an external program from a
// balance account. The program must be whitelisted in the dapp book.
type DAppTransactionMsg struct {
	WalletID  []byte
	GUIDHash  []byte
	ProgramID []byte
	Payload   []byte
}

var _ custos.Msg = (*DAppTransactionMsg)(nil)

func (m *DAppTransactionMsg) Path() string { return PathDAppTransaction }

func (m *DAppTransactionMsg) Validate() error {
	if err := orm.ValidateSequence(m.WalletID); err != nil {
		return errors.Wrap(err, "wallet id")
	}
	if len(m.GUIDHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "guid hash size")
	}
	if len(m.ProgramID) != HashSize || isZeroHash(m.ProgramID) {
		return errors.Wrap(errors.ErrInput, "program id")
	}
	if len(m.Payload) == 0 {
		return errors.Wrap(errors.ErrEmpty, "payload")
	}
	if len(m.Payload) > MaxDAppPayload {
		return errors.Wrapf(errors.ErrInput, "payload larger than %d bytes", MaxDAppPayload)
	}
	return nil
}

func (m *DAppTransactionMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *DAppTransactionMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// VoteMsg casts an approve or disapprove vote on a pending operation.
// The params hash must match the stored operation, proving the voter
// refers to the action as originally proposed.
type VoteMsg struct {
	OpID        []byte
	ParamsHash  []byte
	Disposition Disposition
}

var _ custos.Msg = (*VoteMsg)(nil)

func (m *VoteMsg) Path() string { return PathVote }

func (m *VoteMsg) Validate() error {
	if err := orm.ValidateSequence(m.OpID); err != nil {
		return errors.Wrap(err, "operation id")
	}
	if len(m.ParamsHash) != HashSize {
		return errors.Wrap(errors.ErrInput, "params hash size")
	}
	if m.Disposition != Approve && m.Disposition != Disapprove {
		return errors.Wrapf(errors.ErrInput, "disposition %d", m.Disposition)
	}
	return nil
}

func (m *VoteMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *VoteMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}

// ReapMsg removes an expired pending operation. Anyone may send it.
type ReapMsg struct {
	OpID []byte
}

var _ custos.Msg = (*ReapMsg)(nil)

func (m *ReapMsg) Path() string { return PathReap }

func (m *ReapMsg) Validate() error {
	if err := orm.ValidateSequence(m.OpID); err != nil {
		return errors.Wrap(err, "operation id")
	}
	return nil
}

func (m *ReapMsg) Marshal() ([]byte, error) { return msgCodec.MarshalBinaryBare(m) }
func (m *ReapMsg) Unmarshal(raw []byte) error {
	return msgCodec.UnmarshalBinaryBare(raw, m)
}
