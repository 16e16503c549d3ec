//go:build !amd64

package accumulator

func addVector(t *Table, ids []uint32, delta uint32) {
	addVectorScalar(t, ids, delta)
}
