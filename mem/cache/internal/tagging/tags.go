// Package tagging provides the tag arrays and the replacement policies of the
// cache models.
package tagging

// A TagArray holds the tags of a cache, organized as sets of ways.
type TagArray interface {
	Lookup(setID int, tag uint64) (Block, bool)
	Update(block Block)
	Visit(block Block, now int64)
	GetSet(setID int) *Set
	NumSets() int
	NumWays() int
	Reset()
}

// NewTagArray creates a tag array in which every block is invalid.
func NewTagArray(numSets, numWays int) TagArray {
	t := &tagArrayImpl{
		numSets: numSets,
		numWays: numWays,
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line.
// LastUsed is the logical time of the last access that touched the block.
type Block struct {
	Tag      uint64
	SetID    int
	WayID    int
	IsValid  bool
	LastUsed int64
}

// A Set is a list of blocks where a certain piece memory can be stored at.
type Set struct {
	Blocks []Block
}

type tagArrayImpl struct {
	numSets int
	numWays int
	sets    []Set
}

func (d *tagArrayImpl) NumSets() int {
	return d.numSets
}

func (d *tagArrayImpl) NumWays() int {
	return d.numWays
}

// GetSet returns the set with the given index.
func (d *tagArrayImpl) GetSet(setID int) *Set {
	return &d.sets[setID]
}

// Lookup finds the first valid block of the set that holds the tag.
func (d *tagArrayImpl) Lookup(setID int, tag uint64) (Block, bool) {
	for _, block := range d.sets[setID].Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

// Update updates the block information
func (d *tagArrayImpl) Update(block Block) {
	d.sets[block.SetID].Blocks[block.WayID] = block
}

// Visit marks the block as used at the given time.
func (d *tagArrayImpl) Visit(block Block, now int64) {
	d.sets[block.SetID].Blocks[block.WayID].LastUsed = now
}

// Reset will mark all the blocks in the directory invalid
func (d *tagArrayImpl) Reset() {
	blocks := make([]Block, d.numSets*d.numWays)
	d.sets = make([]Set, d.numSets)

	for i := 0; i < d.numSets; i++ {
		row := blocks[i*d.numWays : (i+1)*d.numWays : (i+1)*d.numWays]
		for j := range row {
			row[j] = Block{SetID: i, WayID: j}
		}

		d.sets[i].Blocks = row
	}
}
