package btsg

// Stats summarises one encode or decode run
type Stats struct {
	Blocks            int
	BlocksByType      map[BlockType]int
	Sections          int
	Lines             int
	BytesUncompressed uint64
	BytesCompressed   uint64
	SkippedBlocks     int // unknown or unreadable blocks passed over by the decoder
}

func newStats() Stats {
	return Stats{BlocksByType: make(map[BlockType]int)}
}

func (s *Stats) addBlock(t BlockType, compressed, uncompressed int) {
	s.Blocks++
	s.BlocksByType[t]++
	s.BytesCompressed += uint64(compressed)
	s.BytesUncompressed += uint64(uncompressed)
}

// CompressionRatio is the fraction of payload bytes saved, e.g. 0.75 for a
// block set compressed to a quarter of its size
func (s Stats) CompressionRatio() float64 {
	if s.BytesUncompressed == 0 {
		return 0
	}
	return 1.0 - float64(s.BytesCompressed)/float64(s.BytesUncompressed)
}
