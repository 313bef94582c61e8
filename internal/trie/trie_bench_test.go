package trie

import (
	"math/rand"
	"testing"
)

func generateRandomSequences(count, maxLength int) [][]string {
	sequences := make([][]string, count)
	for i := range count {
		length := rand.Intn(maxLength) + 1
		sequence := make([]string, length)
		for j := range length {
			sequence[j] = string(rune('a' + rand.Intn(26)))
		}
		sequences[i] = sequence
	}
	return sequences
}

var benchSizes = []struct {
	name      string
	count     int
	maxLength int
}{
	{"Small", 100, 5},
	{"Medium", 1000, 10},
	{"Large", 10000, 20},
}

func BenchmarkInsert(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			sequences := generateRandomSequences(size.count, size.maxLength)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				tr := New()
				for _, seq := range sequences {
					tr.Insert(seq)
				}
			}
		})
	}
}

func BenchmarkHasPrefix(b *testing.B) {
	for _, size := range benchSizes {
		b.Run(size.name, func(b *testing.B) {
			tr := New()
			for _, seq := range generateRandomSequences(size.count, size.maxLength) {
				tr.Insert(seq)
			}
			queries := generateRandomSequences(size.count, size.maxLength*2)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				tr.HasPrefix(queries[i%len(queries)])
			}
		})
	}
}
