// Package slot derives Solidity storage slots.
package slot

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MappingKey returns keccak256( pad32(holder) ‖ pad32(slotIndex) ), the
// storage slot of mapping[holder] for a mapping declared at slotIndex.
// OpenZeppelin's ERC20 keeps _balances at index 0.
func MappingKey(holder common.Address, slotIndex uint64) common.Hash {
	var buf [64]byte

	// first 32 bytes = left-padded address
	copy(buf[12:32], holder[:])

	// last 32 bytes = slot index (big-endian)
	for i := 0; i < 8; i++ {
		buf[56+i] = byte(slotIndex >> (8 * (7 - i)))
	}

	return crypto.Keccak256Hash(buf[:])
}
