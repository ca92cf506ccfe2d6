// Package shuffle provides a small seeded PRNG whose sequence is stable
// across platforms and releases, so a seed always yields the same plugin.
package shuffle

import "math/bits"

// Xoshiro256 is the xoshiro256** generator seeded through splitmix64.
type Xoshiro256 struct {
	state [4]uint64
}

// New seeds a generator.
func New(seed uint64) *Xoshiro256 {
	sm := splitMix64{state: seed}
	var x Xoshiro256
	for i := range x.state {
		x.state[i] = sm.next()
	}
	return &x
}

// Next returns the next 64-bit value.
func (x *Xoshiro256) Next() uint64 {
	s := &x.state
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// Range returns a value in [min, max) using rejection sampling.
// When the range is empty it returns min.
func (x *Xoshiro256) Range(min, max uint64) uint64 {
	if max <= min {
		return min
	}
	span := max - min
	width := uint(bits.Len64(span))
	if width >= 64 {
		return x.Next()
	}
	mask := uint64(1)<<width - 1
	for {
		n := x.Next() & mask
		if n < span {
			return n + min
		}
	}
}

// Indices returns a Fisher-Yates permutation of [0, n) for the seed.
func Indices(n int, seed uint64) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	rng := New(seed)
	for i := n - 1; i > 0; i-- {
		j := int(rng.Range(0, uint64(i)+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type splitMix64 struct {
	state uint64
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
