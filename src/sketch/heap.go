package sketch

// IntHeap is a max-heap of uint64s, so the largest value of a bottom-k sketch sits at index 0
type IntHeap []uint64

func (IntHeap IntHeap) Less(i, j int) bool { return IntHeap[i] > IntHeap[j] }
func (IntHeap IntHeap) Swap(i, j int)      { IntHeap[i], IntHeap[j] = IntHeap[j], IntHeap[i] }
func (IntHeap IntHeap) Len() int           { return len(IntHeap) }

// Push is a method to add an element to the heap
func (IntHeap *IntHeap) Push(x interface{}) {
	*IntHeap = append(*IntHeap, x.(uint64))
}

// Pop is a method to remove the largest element from the heap
func (IntHeap *IntHeap) Pop() interface{} {
	old := *IntHeap
	n := len(old)
	x := old[n-1]
	*IntHeap = old[0 : n-1]
	return x
}
