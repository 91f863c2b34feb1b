package custos

import "regexp"

// chain id must be upper/lowercase letters, numbers, '_' and '-',
// between 6 and 20 characters long
var validChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString

// IsValidChainID checks if this is a valid tendermint chain id
func IsValidChainID(chainID string) bool {
	return validChainID(chainID)
}
