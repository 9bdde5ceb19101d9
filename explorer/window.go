package explorer

import (
	"github.com/emirpasic/gods/lists/doublylinkedlist"

	"lina-genesis/wire"
)

// BlockWindow is a FIFO of recent blocks, oldest first.
type BlockWindow struct {
	list *doublylinkedlist.List
}

func NewBlockWindow() *BlockWindow {
	return &BlockWindow{list: doublylinkedlist.New()}
}

// Push appends the newest block.
func (w *BlockWindow) Push(block *wire.Block) {
	w.list.Add(block)
}

// Oldest returns the oldest block, or nil if the window is empty.
func (w *BlockWindow) Oldest() *wire.Block {
	v, ok := w.list.Get(0)
	if !ok {
		return nil
	}
	return v.(*wire.Block)
}

// Evict drops and returns the oldest block.
func (w *BlockWindow) Evict() *wire.Block {
	oldest := w.Oldest()
	if oldest != nil {
		w.list.Remove(0)
	}
	return oldest
}

func (w *BlockWindow) Len() int {
	return w.list.Size()
}
