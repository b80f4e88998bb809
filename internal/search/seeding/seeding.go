// Package seeding derives the master GA seed and per-reel sequencer seeds
// for one search run from an operator-supplied campaign key and a run
// label, so a campaign can be replayed deterministically from a short
// secret instead of a list of raw integer seeds. Grounded on
// internal/game/rng/hkdf_rng.go's Extract/Expand RFC 5869 construction:
// here the "master key" is expanded once per reel index (domain-separated
// by the same "reel:<n>" info string idiom) and folded down to an int64
// seed rather than kept as raw key material, since the Sequencer and GA
// RNGs both consume int64 seeds.
package seeding

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Derivation holds the seeds derived for one run: a GA master seed plus one
// sequencer seed per reel.
type Derivation struct {
	GASeed    int64
	ReelSeeds []int64
}

// Derive runs HKDF-Extract (salt=campaignKey, IKM=runLabel) to obtain a
// pseudorandom key, then HKDF-Expand once per domain-separated "info"
// string to obtain the GA master seed and reelCount reel seeds.
func Derive(campaignKey, runLabel string, reelCount int) (*Derivation, error) {
	prk := hkdf.Extract(sha256.New, []byte(runLabel), []byte(campaignKey))

	gaSeed, err := expandSeed(prk, "ga-master-v1")
	if err != nil {
		return nil, fmt.Errorf("seeding: deriving ga seed: %w", err)
	}

	reelSeeds := make([]int64, reelCount)
	for r := 0; r < reelCount; r++ {
		seed, err := expandSeed(prk, fmt.Sprintf("reel:%d", r))
		if err != nil {
			return nil, fmt.Errorf("seeding: deriving reel %d seed: %w", r, err)
		}
		reelSeeds[r] = seed
	}

	return &Derivation{GASeed: gaSeed, ReelSeeds: reelSeeds}, nil
}

// expandSeed expands prk under the given domain-separation info string and
// folds the first 8 bytes into an int64.
func expandSeed(prk []byte, info string) (int64, error) {
	reader := hkdf.Expand(sha256.New, prk, []byte(info))
	buf := make([]byte, 8)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf) & 0x7FFFFFFFFFFFFFFF), nil
}
