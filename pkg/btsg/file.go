package btsg

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
)

// CompressFile encodes the TSG file at inPath into a container at outPath.
// A failed run removes the partial output.
func CompressFile(inPath, outPath string, opts Options) (Stats, error) {
	enc, err := NewEncoder(opts)
	if err != nil {
		return Stats{}, err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to open TSG file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create BTSG file: %w", err)
	}

	stats, err := enc.Encode(bufio.NewReaderSize(in, 1<<20), out)
	if err != nil {
		out.Close()
		os.Remove(outPath)
		return stats, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return stats, fmt.Errorf("failed to sync BTSG file: %w", err)
	}
	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("failed to close BTSG file: %w", err)
	}
	return stats, nil
}

// openMapped maps path read-only and returns a reader over the whole file
func openMapped(path string) (*mmap.ReaderAt, io.Reader, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to map BTSG file: %w", err)
	}
	return ra, io.NewSectionReader(ra, 0, int64(ra.Len())), nil
}

// DecompressFileToString decodes the container at path
func DecompressFileToString(path string, opts Options) (string, error) {
	ra, r, err := openMapped(path)
	if err != nil {
		return "", err
	}
	defer ra.Close()
	return NewDecoder(opts).Decode(r)
}

// DecompressFile decodes the container at inPath into a TSG file at
// outPath. The output file is only created once decoding has succeeded.
func DecompressFile(inPath, outPath string, opts Options) (Stats, error) {
	ra, r, err := openMapped(inPath)
	if err != nil {
		return Stats{}, err
	}
	defer ra.Close()

	decoded, err := NewDecoder(opts).DecodeAll(r)
	if err != nil {
		return Stats{}, err
	}
	if err := os.WriteFile(outPath, []byte(decoded.Text), 0644); err != nil {
		return decoded.Stats, fmt.Errorf("failed to write TSG file: %w", err)
	}
	logging.OrNop(opts.Logger).Debug("container decompressed",
		logging.Path(outPath), logging.Bytes("size", len(decoded.Text)))
	return decoded.Stats, nil
}

// IsBTSGFile reports whether the file at path starts with the container magic
func IsBTSGFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	var magic [len(Magic)]byte
	n, err := io.ReadFull(f, magic[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	return n == len(Magic) && string(magic[:]) == Magic, nil
}
