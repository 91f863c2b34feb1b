package app

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"

	"github.com/custodia-one/custos"
	"github.com/custodia-one/custos/errors"
	"github.com/custodia-one/custos/x/sigs"
)

// GenInitOptions produces a basic dev mode app state: one wallet with
// a single signer and a funded balance for that signer.
//
// The signer address can be given as the first argument, otherwise a
// fresh key is generated and its secret printed out.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var addr string
	if len(args) > 0 {
		addr = args[0]
	} else {
		generated, secret, err := GenerateWalletKey()
		if err != nil {
			return nil, err
		}
		addr = generated.String()
		fmt.Printf("secret key: %s\n", secret)
	}

	type (
		dict  map[string]interface{}
		array []interface{}
	)
	return json.Marshal(dict{
		"wallet": array{
			dict{
				"signers":         array{addr},
				"threshold":       1,
				"guardian_mask":   0,
				"approval_window": "24h",
			},
		},
		"ledger": array{
			dict{
				"address": addr,
				"amount":  123456789,
			},
		},
	})
}

// GenerateApp is used to create a stub for the server start command.
func GenerateApp(home string, logger log.Logger, debug bool) (types.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "abci.db")
	}

	application, err := Application("custos", Stack(), TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}

// GenerateWalletKey creates a fresh ed25519 key and returns the
// signer address along with the hex encoded secret needed to sign.
func GenerateWalletKey() (custos.Address, string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", errors.Wrap(err, "cannot generate key")
	}
	addr := sigs.PubKeyCondition(pub).Address()
	return addr, hex.EncodeToString(priv), nil
}
