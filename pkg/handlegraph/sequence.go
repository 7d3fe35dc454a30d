package handlegraph

var complement = [256]byte{}

func init() {
	for i := 0; i < 256; i++ {
		complement[i] = byte(i)
	}
	pairs := map[byte]byte{
		'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
		'a': 't', 't': 'a', 'c': 'g', 'g': 'c',
		'U': 'A', 'u': 'a',
	}
	for from, to := range pairs {
		complement[from] = to
	}
}

// ReverseComplement returns the reverse complement of seq as a new slice.
// Characters without a defined complement (e.g. N) map to themselves.
func ReverseComplement(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, c := range seq {
		out[len(seq)-1-i] = complement[c]
	}
	return out
}
