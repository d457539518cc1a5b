package canonical

// partition is an arena of vertex classes with two consistent views:
// classes[c] lists the vertices of class c and colour[v] is the class of vertex v.
//
// Both views only ever change together, through moveVertex.
type partition struct {
	classes [][]int
	colour  []int
	pos     []int // pos[v] is the index of v within classes[colour[v]]
}

func (P *partition) reset(numVerts, numClasses int) {
	if cap(P.classes) < numClasses {
		P.classes = make([][]int, numClasses)
	} else {
		P.classes = P.classes[:numClasses]
	}
	for c := range P.classes {
		P.classes[c] = P.classes[c][:0]
	}

	P.colour = resizeInts(P.colour, numVerts)
	P.pos = resizeInts(P.pos, numVerts)
}

func (P *partition) add(v, c int) {
	P.colour[v] = c
	P.pos[v] = len(P.classes[c])
	P.classes[c] = append(P.classes[c], v)
}

// moveVertex moves v from class "from" to class "to" in O(1).
func (P *partition) moveVertex(v, from, to int) {
	if P.colour[v] != from {
		panic("moveVertex: vertex is not in the source class")
	}

	// Swap-remove v from its current class
	Cf := P.classes[from]
	last := len(Cf) - 1
	i := P.pos[v]
	moved := Cf[last]
	Cf[i] = moved
	P.pos[moved] = i
	P.classes[from] = Cf[:last]

	P.add(v, to)
}

func (P *partition) size(c int) int {
	return len(P.classes[c])
}

func resizeInts(buf []int, N int) []int {
	if cap(buf) < N {
		return make([]int, N)
	}
	buf = buf[:N]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}
