// Package server implements the commands shared by every node binary
// built on this framework: genesis initialization and running the
// ABCI server.
package server

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	cfg "github.com/tendermint/tendermint/config"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/p2p"
	"github.com/tendermint/tendermint/privval"
	tmtypes "github.com/tendermint/tendermint/types"
	tmtime "github.com/tendermint/tendermint/types/time"

	"github.com/custodia-one/custos/errors"
)

// AppStateKey is the genesis file key holding application options.
const AppStateKey = "app_state"

// GenOptions can parse command line arguments into the default
// app_state for the genesis file. This is application specific.
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd creates all files a node needs: the tendermint config, the
// validator key and a genesis file with application options produced
// by gen.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	config := cfg.DefaultConfig()
	config.SetRoot(home)
	cfg.EnsureRoot(home)

	if err := initFiles(config, logger); err != nil {
		return err
	}
	if gen == nil {
		return nil
	}

	options, err := gen(args)
	if err != nil {
		return err
	}
	return addGenesisOptions(config.GenesisFile(), options)
}

func initFiles(config *cfg.Config, logger log.Logger) error {
	keyFile := config.PrivValidatorKeyFile()
	stateFile := config.PrivValidatorStateFile()
	var pv *privval.FilePV
	if fileExists(keyFile) {
		pv = privval.LoadFilePV(keyFile, stateFile)
		logger.Info("Found private validator", "path", keyFile)
	} else {
		pv = privval.GenFilePV(keyFile, stateFile)
		pv.Save()
		logger.Info("Generated private validator", "path", keyFile)
	}

	nodeKeyFile := config.NodeKeyFile()
	if fileExists(nodeKeyFile) {
		logger.Info("Found node key", "path", nodeKeyFile)
	} else {
		if _, err := p2p.LoadOrGenNodeKey(nodeKeyFile); err != nil {
			return err
		}
		logger.Info("Generated node key", "path", nodeKeyFile)
	}

	genFile := config.GenesisFile()
	if fileExists(genFile) {
		logger.Info("Found genesis file", "path", genFile)
		return nil
	}
	genDoc := tmtypes.GenesisDoc{
		ChainID:         fmt.Sprintf("local-chain-%v", cmn.RandStr(6)),
		GenesisTime:     tmtime.Now(),
		ConsensusParams: tmtypes.DefaultConsensusParams(),
		Validators: []tmtypes.GenesisValidator{{
			Address: pv.GetPubKey().Address(),
			PubKey:  pv.GetPubKey(),
			Power:   10,
		}},
	}
	if err := genDoc.SaveAs(genFile); err != nil {
		return err
	}
	logger.Info("Generated genesis file", "path", genFile)
	return nil
}

func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// GenesisDoc involves some tendermint specific structures we do not
// want to parse, so we grab it into a raw object format to add one
// key.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return err
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return err
	}
	if opts, ok := doc[AppStateKey]; ok && len(opts) > 0 {
		return errors.Wrap(errors.ErrState, "genesis app state already defined")
	}

	doc[AppStateKey] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, out, 0600)
}
