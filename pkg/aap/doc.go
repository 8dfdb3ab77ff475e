// Package aap is the anonymous-asset primitive library the wallet is built on.
//
// Overview:
//   - Asset codes, asset policies and asset definitions
//   - User key pairs (spend key + memo encryption key) on secp256k1
//   - Record openings and their MiMC (BN254) commitments
//   - Nullifiers, transfer notes, receiver memos and memo signatures
//
// Commitments and nullifiers are computed over BN254 scalar field elements so
// that the same values can be re-derived inside a gnark circuit (see the
// circuits package).
package aap
