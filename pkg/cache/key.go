package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/gfatools/getblunted/pkg/poa"
)

// AlignmentKey identifies one alignment problem: the inputs in the order the
// aligner receives them, each with its orientation flag, plus the scoring
// scheme. Input names are deliberately absent -- they embed run-specific node
// ids, and the caller rebinds path names positionally on a hit.
type AlignmentKey struct {
	inputs []keyedInput
	scores poa.Scores
}

type keyedInput struct {
	seq      string
	reversed bool
}

// NewAlignmentKey builds the key for an alignment of inputs under sc.
func NewAlignmentKey(inputs []poa.Input, sc poa.Scores) AlignmentKey {
	k := AlignmentKey{scores: sc}
	for _, in := range inputs {
		k.inputs = append(k.inputs, keyedInput{seq: string(in.Sequence), reversed: in.Reversed})
	}
	return k
}

// Digest returns the key's 64-character hex digest. The encoding is
// canonical: each field is length-prefixed, so no two distinct keys share an
// encoding (unlike joining sequences with a separator, which "AC"+"GT" and
// "ACG"+"T" would collide on).
func (k AlignmentKey) Digest() string {
	h := sha256.New()
	var scratch [8]byte

	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(scratch[:], uint64(int64(v)))
		h.Write(scratch[:])
	}

	writeInt(k.scores.Match)
	writeInt(k.scores.Mismatch)
	writeInt(k.scores.Gap)
	writeInt(len(k.inputs))
	for _, in := range k.inputs {
		writeInt(len(in.seq))
		h.Write([]byte(in.seq))
		if in.reversed {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
