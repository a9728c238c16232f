package util

import "github.com/dragonation/rogiso-go/base"

// pageShift/pageItems mirror the three-level sparse index the isolate's
// region table is built on: this keeps PageMap's addressing scheme close to
// a fixed-capacity arena without actually preallocating Go slices that large.
const (
	pageShift = 10
	pageItems = 1 << pageShift
)

// PageItemFactory creates a fresh item for a page map slot the first time
// that slot is touched by GainItem.
type PageItemFactory[T any] interface {
	CreateItem(id int) *T
}

type page[T any] struct {
	items [pageItems]*T
}

type pageTable[T any] struct {
	pages [pageItems]*page[T]
}

// PageMap is a sparse, monotonically-growing index from small integer ids to
// owned items, used to hold the isolate's regions. Capacity grows lazily in
// page-sized chunks instead of needing one large contiguous allocation.
type PageMap[T any, F PageItemFactory[T]] struct {
	factory  F
	nextID   int
	size     int
	tables   map[int]*pageTable[T]
	occupied map[int]bool
}

func NewPageMap[T any, F PageItemFactory[T]](factory F) *PageMap[T, F] {
	return &PageMap[T, F]{
		factory:  factory,
		tables:   make(map[int]*pageTable[T]),
		occupied: make(map[int]bool),
	}
}

func split(index int) (tableIndex, pageIndex, itemIndex int) {
	tableIndex = (index >> (pageShift * 2)) & (pageItems - 1)
	pageIndex = (index >> pageShift) & (pageItems - 1)
	itemIndex = index & (pageItems - 1)
	return
}

// GainItem allocates the next free id and lazily creates the item backing it.
func (m *PageMap[T, F]) GainItem() (int, error) {
	var index int
	for {
		index = m.nextID
		m.nextID++
		if m.Get(index) == nil {
			break
		}
	}

	tableIndex, pageIndex, itemIndex := split(index)

	table, ok := m.tables[tableIndex]
	if !ok {
		table = &pageTable[T]{}
		m.tables[tableIndex] = table
	}
	if table.pages[pageIndex] == nil {
		table.pages[pageIndex] = &page[T]{}
	}
	if table.pages[pageIndex].items[itemIndex] == nil {
		table.pages[pageIndex].items[itemIndex] = m.factory.CreateItem(index)
	}

	m.size++
	m.occupied[index] = true

	return index, nil
}

// RecycleItem frees index for reuse. Fails FatalError if nothing was there.
func (m *PageMap[T, F]) RecycleItem(index int) error {
	tableIndex, pageIndex, itemIndex := split(index)

	table, ok := m.tables[tableIndex]
	if !ok {
		return base.NewError(base.FatalError, "page map item not found")
	}
	pg := table.pages[pageIndex]
	if pg == nil || pg.items[itemIndex] == nil {
		return base.NewError(base.FatalError, "page map item not found")
	}

	pg.items[itemIndex] = nil
	m.size--
	delete(m.occupied, index)

	return nil
}

func (m *PageMap[T, F]) Size() int { return m.size }

func (m *PageMap[T, F]) PeekNextItemIndex() int { return m.nextID }

// ShrinkNextItemIndex lowers the bump pointer after compaction frees the
// tail of the index space, mirroring the collector's refragment phase.
func (m *PageMap[T, F]) ShrinkNextItemIndex(from, to int) int {
	if m.nextID == from && to < from {
		m.nextID = to
	}
	return m.nextID
}

// Get returns the item at index, or nil if nothing is there.
func (m *PageMap[T, F]) Get(index int) *T {
	tableIndex, pageIndex, itemIndex := split(index)
	table, ok := m.tables[tableIndex]
	if !ok {
		return nil
	}
	pg := table.pages[pageIndex]
	if pg == nil {
		return nil
	}
	return pg.items[itemIndex]
}

// Iterate calls fn for every currently occupied index, in unspecified order.
func (m *PageMap[T, F]) Iterate(fn func(index int, item *T)) {
	for index := range m.occupied {
		fn(index, m.Get(index))
	}
}
