package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/custtest"
	"github.com/custodia-one/custos/errors"
)

var walletID1 = []byte{0, 0, 0, 0, 0, 0, 0, 1}

func TestMsgValidate(t *testing.T) {
	dest := custtest.NewAddress()

	cases := map[string]struct {
		msg     custos.Msg
		wantErr *errors.Error
	}{
		"valid transfer": {
			msg: &TransferMsg{WalletID: walletID1, GUIDHash: hashN(1), Destination: dest, Amount: 5},
		},
		"transfer zero amount": {
			msg:     &TransferMsg{WalletID: walletID1, GUIDHash: hashN(1), Destination: dest},
			wantErr: errors.ErrAmount,
		},
		"transfer bad wallet id": {
			msg:     &TransferMsg{WalletID: []byte{1}, GUIDHash: hashN(1), Destination: dest, Amount: 5},
			wantErr: errors.ErrInput,
		},
		"transfer bad guid": {
			msg:     &TransferMsg{WalletID: walletID1, GUIDHash: []byte{1, 2}, Destination: dest, Amount: 5},
			wantErr: errors.ErrInput,
		},
		"valid token transfer": {
			msg: &TokenTransferMsg{WalletID: walletID1, GUIDHash: hashN(1), Destination: dest, Mint: hashN(2), Amount: 5},
		},
		"token transfer zero mint": {
			msg:     &TokenTransferMsg{WalletID: walletID1, GUIDHash: hashN(1), Destination: dest, Mint: make([]byte, HashSize), Amount: 5},
			wantErr: errors.ErrInput,
		},
		"valid config update": {
			msg: &UpdateConfigMsg{WalletID: walletID1, Signers: manyAddresses(2), Threshold: 2},
		},
		"config update bad threshold": {
			msg:     &UpdateConfigMsg{WalletID: walletID1, Signers: manyAddresses(2), Threshold: 3},
			wantErr: errors.ErrInput,
		},
		"valid whitelist update": {
			msg: &UpdateWhitelistMsg{WalletID: walletID1, GUIDHash: hashN(1), Add: manyAddresses(2)},
		},
		"whitelist update empty": {
			msg:     &UpdateWhitelistMsg{WalletID: walletID1, GUIDHash: hashN(1)},
			wantErr: errors.ErrEmpty,
		},
		"whitelist update too many changes": {
			msg:     &UpdateWhitelistMsg{WalletID: walletID1, GUIDHash: hashN(1), Add: manyAddresses(MaxWhitelistDelta + 1)},
			wantErr: errors.ErrInput,
		},
		"valid book update": {
			msg: &UpdateDAppBookMsg{WalletID: walletID1, Add: []DAppEntry{{ProgramID: hashN(2), Label: "dex"}}},
		},
		"book update label too long": {
			msg:     &UpdateDAppBookMsg{WalletID: walletID1, Add: []DAppEntry{{ProgramID: hashN(2), Label: "seventeen chars!!"}}},
			wantErr: errors.ErrInput,
		},
		"valid dapp transaction": {
			msg: &DAppTransactionMsg{WalletID: walletID1, GUIDHash: hashN(1), ProgramID: hashN(2), Payload: []byte("x")},
		},
		"dapp transaction payload too large": {
			msg:     &DAppTransactionMsg{WalletID: walletID1, GUIDHash: hashN(1), ProgramID: hashN(2), Payload: make([]byte, MaxDAppPayload+1)},
			wantErr: errors.ErrInput,
		},
		"valid vote": {
			msg: &VoteMsg{OpID: walletID1, ParamsHash: hashN(1), Disposition: Approve},
		},
		"vote bad disposition": {
			msg:     &VoteMsg{OpID: walletID1, ParamsHash: hashN(1), Disposition: 9},
			wantErr: errors.ErrInput,
		},
		"valid reap": {
			msg: &ReapMsg{OpID: walletID1},
		},
		"account update overrides without flag": {
			msg:     &UpdateAccountMsg{WalletID: walletID1, GUIDHash: hashN(1), TransferThreshold: 2},
			wantErr: errors.ErrInput,
		},
		"account update with overrides": {
			msg: &UpdateAccountMsg{WalletID: walletID1, GUIDHash: hashN(1), SetOverrides: true, TransferThreshold: 2},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, tc.wantErr.Is(err), "got %+v", err)
			}
		})
	}
}

func TestMsgRoundTrip(t *testing.T) {
	msg := &TransferMsg{
		WalletID:    walletID1,
		GUIDHash:    hashN(1),
		Destination: custtest.NewAddress(),
		Amount:      1234,
	}
	raw, err := msg.Marshal()
	require.NoError(t, err)

	var got TransferMsg
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, *msg, got)
}

func TestParamsHashBindsContent(t *testing.T) {
	payload := []byte("payload")
	h := ParamsHash(KindTransfer, walletID1, payload)
	assert.Len(t, h, HashSize)

	// any change to kind, wallet or payload changes the hash
	assert.NotEqual(t, h, ParamsHash(KindTokenTransfer, walletID1, payload))
	assert.NotEqual(t, h, ParamsHash(KindTransfer, []byte{0, 0, 0, 0, 0, 0, 0, 2}, payload))
	assert.NotEqual(t, h, ParamsHash(KindTransfer, walletID1, []byte("other")))
	// and the same input hashes the same
	assert.Equal(t, h, ParamsHash(KindTransfer, walletID1, payload))
}

func TestWhitelistStatusAsUpdate(t *testing.T) {
	on := &UpdateWhitelistStatusMsg{WalletID: walletID1, GUIDHash: hashN(1), Enabled: true}
	up := on.AsUpdate()
	assert.Equal(t, ToggleOn, up.WhitelistToggle)
	assert.Equal(t, ToggleKeep, up.ActiveToggle)
	assert.NoError(t, up.Validate())

	off := &UpdateWhitelistStatusMsg{WalletID: walletID1, GUIDHash: hashN(1)}
	assert.Equal(t, ToggleOff, off.AsUpdate().WhitelistToggle)
}

func TestMsgPaths(t *testing.T) {
	assert.Equal(t, "wallet/init", (&InitWalletMsg{}).Path())
	assert.Equal(t, "wallet/update_config", (&UpdateConfigMsg{}).Path())
	assert.Equal(t, "wallet/create_account", (&CreateAccountMsg{}).Path())
	assert.Equal(t, "wallet/update_account", (&UpdateAccountMsg{}).Path())
	assert.Equal(t, "wallet/update_whitelist_status", (&UpdateWhitelistStatusMsg{}).Path())
	assert.Equal(t, "wallet/update_whitelist", (&UpdateWhitelistMsg{}).Path())
	assert.Equal(t, "wallet/transfer", (&TransferMsg{}).Path())
	assert.Equal(t, "wallet/token_transfer", (&TokenTransferMsg{}).Path())
	assert.Equal(t, "wallet/update_dapp_book", (&UpdateDAppBookMsg{}).Path())
	assert.Equal(t, "wallet/dapp_transaction", (&DAppTransactionMsg{}).Path())
	assert.Equal(t, "wallet/vote", (&VoteMsg{}).Path())
	assert.Equal(t, "wallet/reap", (&ReapMsg{}).Path())
}
