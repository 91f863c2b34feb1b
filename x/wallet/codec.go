package wallet

import (
	"encoding/binary"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
)

// Every record serializes into a fixed size byte image with a one
// byte record discriminant and a one byte schema version in front.
// Unmarshal fails on a wrong discriminant, an unknown schema, any
// size mismatch, or occupancy counts beyond the slot capacity. There
// is no truncation and no best effort parsing.
const (
	recWallet  byte = 1
	recAccount byte = 2
	recBook    byte = 3
	recOp      byte = 4

	schemaV1 byte = 1
)

const (
	addrSize = 20

	walletSize = 2 + 1 + MaxSigners*addrSize + 1 + 4 + 8 + 4 + 1

	accountSize = 2 + HashSize + HashSize + 1 + HashSize +
		1 + 1 + 1 + 1 + 8 + 1 + MaxWhitelistEntries*addrSize

	bookSize = 2 + 1 + MaxDAppBookEntries*(HashSize+MaxLabelSize)

	opSize = 2 + 1 + 8 + HashSize + 8 + 8 + 1 + 1 +
		MaxSigners*(addrSize+1) + 2 + MaxPendingPayload
)

// checkHeader verifies length, discriminant and schema of a record
// image.
func checkHeader(raw []byte, size int, disc byte) error {
	if len(raw) != size {
		return errors.Wrapf(errors.ErrSchema, "record size %d, want %d", len(raw), size)
	}
	if raw[0] != disc {
		return errors.Wrapf(errors.ErrSchema, "record discriminant %d, want %d", raw[0], disc)
	}
	if raw[1] != schemaV1 {
		return errors.Wrapf(errors.ErrSchema, "schema version %d", raw[1])
	}
	return nil
}

// Marshal implements custos.Persistent.
func (w *Wallet) Marshal() ([]byte, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, walletSize)
	raw[0] = recWallet
	raw[1] = schemaV1
	raw[2] = byte(len(w.Signers))
	at := 3
	for _, s := range w.Signers {
		copy(raw[at:at+addrSize], s)
		at += addrSize
	}
	at = 3 + MaxSigners*addrSize
	raw[at] = w.Threshold
	binary.BigEndian.PutUint32(raw[at+1:], w.GuardianMask)
	binary.BigEndian.PutUint64(raw[at+5:], uint64(w.ApprovalWindow))
	binary.BigEndian.PutUint32(raw[at+13:], w.Version)
	if w.ConfigLocked {
		raw[at+17] = 1
	}
	return raw, nil
}

// Unmarshal implements custos.Persistent.
func (w *Wallet) Unmarshal(raw []byte) error {
	if err := checkHeader(raw, walletSize, recWallet); err != nil {
		return err
	}
	count := int(raw[2])
	if count > MaxSigners {
		return errors.Wrapf(errors.ErrSchema, "signer count %d", count)
	}
	signers := make([]custos.Address, count)
	at := 3
	for i := 0; i < count; i++ {
		signers[i] = custos.Address(append([]byte(nil), raw[at:at+addrSize]...))
		at += addrSize
	}
	at = 3 + MaxSigners*addrSize
	w.Signers = signers
	w.Threshold = raw[at]
	w.GuardianMask = binary.BigEndian.Uint32(raw[at+1:])
	w.ApprovalWindow = custos.UnixDuration(binary.BigEndian.Uint64(raw[at+5:]))
	w.Version = binary.BigEndian.Uint32(raw[at+13:])
	w.ConfigLocked = raw[at+17] == 1
	return nil
}

// Marshal implements custos.Persistent.
func (a *BalanceAccount) Marshal() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, accountSize)
	raw[0] = recAccount
	raw[1] = schemaV1
	at := 2
	copy(raw[at:], a.GUIDHash)
	at += HashSize
	copy(raw[at:], a.NameHash)
	at += HashSize
	raw[at] = a.AssetType
	at++
	copy(raw[at:], a.Mint)
	at += HashSize
	raw[at] = boolByte(a.WhitelistEnabled)
	raw[at+1] = boolByte(a.DAppsEnabled)
	raw[at+2] = boolByte(a.Active)
	raw[at+3] = a.TransferThreshold
	binary.BigEndian.PutUint64(raw[at+4:], uint64(a.ApprovalWindow))
	raw[at+12] = byte(len(a.Whitelist))
	at += 13
	for _, d := range a.Whitelist {
		copy(raw[at:at+addrSize], d)
		at += addrSize
	}
	return raw, nil
}

// Unmarshal implements custos.Persistent.
func (a *BalanceAccount) Unmarshal(raw []byte) error {
	if err := checkHeader(raw, accountSize, recAccount); err != nil {
		return err
	}
	at := 2
	a.GUIDHash = append([]byte(nil), raw[at:at+HashSize]...)
	at += HashSize
	a.NameHash = append([]byte(nil), raw[at:at+HashSize]...)
	at += HashSize
	a.AssetType = raw[at]
	at++
	a.Mint = append([]byte(nil), raw[at:at+HashSize]...)
	at += HashSize
	a.WhitelistEnabled = raw[at] == 1
	a.DAppsEnabled = raw[at+1] == 1
	a.Active = raw[at+2] == 1
	a.TransferThreshold = raw[at+3]
	a.ApprovalWindow = custos.UnixDuration(binary.BigEndian.Uint64(raw[at+4:]))
	count := int(raw[at+12])
	if count > MaxWhitelistEntries {
		return errors.Wrapf(errors.ErrSchema, "whitelist count %d", count)
	}
	at += 13
	whitelist := make([]custos.Address, count)
	for i := 0; i < count; i++ {
		whitelist[i] = custos.Address(append([]byte(nil), raw[at:at+addrSize]...))
		at += addrSize
	}
	a.Whitelist = whitelist
	return nil
}

// Marshal implements custos.Persistent.
func (b *DAppBook) Marshal() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, bookSize)
	raw[0] = recBook
	raw[1] = schemaV1
	raw[2] = byte(len(b.Entries))
	at := 3
	for _, e := range b.Entries {
		copy(raw[at:], e.ProgramID)
		copy(raw[at+HashSize:at+HashSize+MaxLabelSize], e.Label)
		at += HashSize + MaxLabelSize
	}
	return raw, nil
}

// Unmarshal implements custos.Persistent.
func (b *DAppBook) Unmarshal(raw []byte) error {
	if err := checkHeader(raw, bookSize, recBook); err != nil {
		return err
	}
	count := int(raw[2])
	if count > MaxDAppBookEntries {
		return errors.Wrapf(errors.ErrSchema, "dapp book count %d", count)
	}
	entries := make([]DAppEntry, count)
	at := 3
	for i := 0; i < count; i++ {
		entries[i] = DAppEntry{
			ProgramID: append([]byte(nil), raw[at:at+HashSize]...),
			Label:     trimLabel(raw[at+HashSize : at+HashSize+MaxLabelSize]),
		}
		at += HashSize + MaxLabelSize
	}
	b.Entries = entries
	return nil
}

// trimLabel cuts the zero padding off a label slot.
func trimLabel(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	return string(raw[:end])
}

// Marshal implements custos.Persistent.
func (op *PendingOp) Marshal() ([]byte, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}
	raw := make([]byte, opSize)
	raw[0] = recOp
	raw[1] = schemaV1
	raw[2] = byte(op.Kind)
	at := 3
	copy(raw[at:], op.WalletID)
	at += 8
	copy(raw[at:], op.ParamsHash)
	at += HashSize
	binary.BigEndian.PutUint64(raw[at:], uint64(op.CreatedAt))
	binary.BigEndian.PutUint64(raw[at+8:], uint64(op.Deadline))
	raw[at+16] = byte(op.Status)
	raw[at+17] = byte(len(op.Votes))
	at += 18
	for _, v := range op.Votes {
		copy(raw[at:at+addrSize], v.Signer)
		raw[at+addrSize] = byte(v.Disposition)
		at += addrSize + 1
	}
	at = 3 + 8 + HashSize + 18 + MaxSigners*(addrSize+1)
	binary.BigEndian.PutUint16(raw[at:], uint16(len(op.Payload)))
	copy(raw[at+2:], op.Payload)
	return raw, nil
}

// Unmarshal implements custos.Persistent.
func (op *PendingOp) Unmarshal(raw []byte) error {
	if err := checkHeader(raw, opSize, recOp); err != nil {
		return err
	}
	op.Kind = OpKind(raw[2])
	if !op.Kind.Valid() {
		return errors.Wrapf(errors.ErrSchema, "operation kind %d", raw[2])
	}
	at := 3
	op.WalletID = append([]byte(nil), raw[at:at+8]...)
	at += 8
	op.ParamsHash = append([]byte(nil), raw[at:at+HashSize]...)
	at += HashSize
	op.CreatedAt = custos.UnixTime(binary.BigEndian.Uint64(raw[at:]))
	op.Deadline = custos.UnixTime(binary.BigEndian.Uint64(raw[at+8:]))
	op.Status = OpStatus(raw[at+16])
	count := int(raw[at+17])
	if count > MaxSigners {
		return errors.Wrapf(errors.ErrSchema, "vote count %d", count)
	}
	at += 18
	votes := make([]Vote, count)
	for i := 0; i < count; i++ {
		votes[i] = Vote{
			Signer:      custos.Address(append([]byte(nil), raw[at:at+addrSize]...)),
			Disposition: Disposition(raw[at+addrSize]),
		}
		at += addrSize + 1
	}
	op.Votes = votes
	at = 3 + 8 + HashSize + 18 + MaxSigners*(addrSize+1)
	size := int(binary.BigEndian.Uint16(raw[at:]))
	if size > MaxPendingPayload {
		return errors.Wrapf(errors.ErrSchema, "payload size %d", size)
	}
	op.Payload = append([]byte(nil), raw[at+2:at+2+size]...)
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
