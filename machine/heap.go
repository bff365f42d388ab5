package machine

const (
	ALLOC_COST = 50 // Words allocated per unit of pseudo-time.
	LOAD_COST  = 25 // Words loaded per unit of pseudo-time.
)

// FreeList is a stack of reclaimed slot numbers.
type FreeList struct {
	Data []uint32
}

func (s *FreeList) Push(value uint32) {
	s.Data = append(s.Data, value)
}

func (s *FreeList) Pop() (value uint32, ok bool) {
	value, ok = s.Peek()
	if ok {
		s.Data = s.Data[:len(s.Data)-1]
	}
	return
}

func (s *FreeList) Empty() bool {
	return len(s.Data) == 0
}

func (s *FreeList) Peek() (value uint32, ok bool) {
	if s.Empty() {
		return
	}

	return s.Data[len(s.Data)-1], true
}

// Heap is the arena of word arrays addressed by slot number.
//
// An empty slot is a nil array. Allocated arrays are never nil, even when
// they hold zero words.
type Heap struct {
	Slot []([]uint32) // Slot 0 is the executing program.
	Free FreeList     // Reclaimed slots, reused last-in first-out.
}

// NewHeap creates a heap with the program installed in slot 0.
func NewHeap(program []uint32) (heap *Heap) {
	image := make([]uint32, len(program))
	copy(image, program)

	heap = &Heap{
		Slot: [][]uint32{image},
	}

	return
}

// Program returns the executing program.
func (heap *Heap) Program() []uint32 {
	return heap.Slot[0]
}

// Array returns the array in a slot.
func (heap *Heap) Array(index uint32) (array []uint32, err error) {
	if uint64(index) >= uint64(len(heap.Slot)) || heap.Slot[index] == nil {
		err = ErrInvalidMemory
		return
	}

	array = heap.Slot[index]
	return
}

// Allocate installs a zero filled array of size words, and returns its slot.
// Reclaimed slots are reused before the heap grows. Slot 0 is never returned.
func (heap *Heap) Allocate(size uint32) (index uint32) {
	array := make([]uint32, size)

	index, ok := heap.Free.Pop()
	if ok {
		heap.Slot[index] = array
		return
	}

	heap.Slot = append(heap.Slot, array)
	index = uint32(len(heap.Slot) - 1)

	return
}

// Reclaim empties a slot and makes it available for reuse.
// The program slot, and slots that are already empty, can not be reclaimed.
func (heap *Heap) Reclaim(index uint32) (err error) {
	if index == 0 {
		err = ErrInvalidMemory
		return
	}

	_, err = heap.Array(index)
	if err != nil {
		return
	}

	heap.Slot[index] = nil
	heap.Free.Push(index)

	return
}

// Read a word from a slot.
func (heap *Heap) Read(index uint32, offset uint32) (value uint32, err error) {
	array, err := heap.Array(index)
	if err != nil {
		return
	}

	if uint64(offset) >= uint64(len(array)) {
		err = ErrInvalidMemory
		return
	}

	value = array[offset]
	return
}

// Write a word to a slot.
func (heap *Heap) Write(index uint32, offset uint32, value uint32) (err error) {
	array, err := heap.Array(index)
	if err != nil {
		return
	}

	if uint64(offset) >= uint64(len(array)) {
		err = ErrInvalidMemory
		return
	}

	array[offset] = value
	return
}

// ReplaceProgram makes slot 0 an independent copy of the array in a slot,
// and returns the length of the new program.
func (heap *Heap) ReplaceProgram(index uint32) (size int, err error) {
	array, err := heap.Array(index)
	if err != nil {
		return
	}

	image := make([]uint32, len(array))
	copy(image, array)
	heap.Slot[0] = image

	size = len(image)
	return
}

// Live returns the number of allocated slots, including the program.
func (heap *Heap) Live() (count int) {
	for _, array := range heap.Slot {
		if array != nil {
			count++
		}
	}

	return
}
