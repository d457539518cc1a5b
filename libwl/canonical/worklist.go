package canonical

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// worklist is the LIFO stack of classes pending refinement, with O(1) membership.
type worklist struct {
	stack   *arraystack.Stack
	inStack []bool
}

func (W *worklist) reset(numClasses int) {
	if W.stack == nil {
		W.stack = arraystack.New()
	} else {
		W.stack.Clear()
	}
	if cap(W.inStack) < numClasses {
		W.inStack = make([]bool, numClasses)
	} else {
		W.inStack = W.inStack[:numClasses]
		for i := range W.inStack {
			W.inStack[i] = false
		}
	}
}

func (W *worklist) push(c int) {
	if W.inStack[c] {
		return
	}
	W.inStack[c] = true
	W.stack.Push(c)
}

func (W *worklist) pop() int {
	top, ok := W.stack.Pop()
	if !ok {
		panic("pop() on empty refinement stack")
	}
	c := top.(int)
	W.inStack[c] = false
	return c
}

func (W *worklist) contains(c int) bool {
	return W.inStack[c]
}

func (W *worklist) empty() bool {
	return W.stack.Empty()
}

func (W *worklist) values() []interface{} {
	return W.stack.Values()
}
