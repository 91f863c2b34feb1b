/*
Package wallet implements a custodial multisignature wallet.

A wallet holds an ordered set of signer addresses and an approval
threshold. Any state changing action, moving funds out of a balance
account, changing the wallet configuration, editing a destination
whitelist or the dapp book, must first be proposed as a pending
operation and collect enough approve votes to satisfy the threshold.
Only then is the action applied, atomically in the same instruction
that cast the deciding vote. Operations that collect too many
disapprovals are rejected, and operations that outlive their approval
window expire and can be reaped by anyone.

Balance accounts are sub ledgers under a wallet, each bound to one
asset and optionally restricted to a destination whitelist and a per
account transfer quorum. The dapp book is a wallet wide whitelist of
external program identities that gate dapp transactions.
*/
package wallet
