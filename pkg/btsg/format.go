// Package btsg implements the BTSG container: a magic and version header
// followed by typed, length-prefixed blocks, each holding an independently
// compressed slice of TSG text.
package btsg

import "fmt"

// Container constants
const (
	Magic   = "BTSG"
	Version = uint32(1)

	// DefaultMaxBlockSize is the largest block payload a decoder accepts
	DefaultMaxBlockSize = 100_000_000

	// DefaultMaxDecodedSize bounds the decompressed size of one block
	DefaultMaxDecodedSize = 1 << 30

	blockHeaderSize = 5 // type byte + u32 length
)

// BlockType tags each block in the container
type BlockType uint8

const (
	BlockHeader     BlockType = 0x01
	BlockGraph      BlockType = 0x02
	BlockNode       BlockType = 0x03
	BlockEdge       BlockType = 0x04
	BlockAttribute  BlockType = 0x05
	BlockChain      BlockType = 0x06
	BlockPath       BlockType = 0x07
	BlockLink       BlockType = 0x08
	BlockDictionary BlockType = 0x09
)

// Known reports whether t is a block type this version understands
func (t BlockType) Known() bool {
	return t >= BlockHeader && t <= BlockDictionary
}

func (t BlockType) String() string {
	switch t {
	case BlockHeader:
		return "header"
	case BlockGraph:
		return "graph"
	case BlockNode:
		return "node"
	case BlockEdge:
		return "edge"
	case BlockAttribute:
		return "attribute"
	case BlockChain:
		return "chain"
	case BlockPath:
		return "path"
	case BlockLink:
		return "link"
	case BlockDictionary:
		return "dictionary"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

// blockTypeForTag maps a record tag to the block that carries it. H and G
// are handled by the encoder directly.
func blockTypeForTag(tag string) (BlockType, bool) {
	switch tag {
	case "N":
		return BlockNode, true
	case "E":
		return BlockEdge, true
	case "A":
		return BlockAttribute, true
	case "U", "P", "C":
		return BlockChain, true
	case "L":
		return BlockLink, true
	}
	return 0, false
}

// sectionBlockOrder is the order in which a section's blocks are written.
// Groups precede attribute lines so that group attributes resolve on parse.
var sectionBlockOrder = []BlockType{
	BlockGraph, BlockNode, BlockEdge, BlockChain, BlockPath, BlockAttribute, BlockLink,
}
