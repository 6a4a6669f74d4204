package ir

import "fmt"

// BasicBlock is a named, non-empty instruction sequence ending in a
// terminator (spec.md §3.6). It exclusively owns its Instructions slice.
type BasicBlock struct {
	Name         string
	Instructions []*Instruction
}

// NewBasicBlock returns an empty block named name. The caller is
// responsible for appending a terminator before the enclosing function is
// handed to the semantic analyzer (invariant F3).
func NewBasicBlock(name string) *BasicBlock {
	return &BasicBlock{Name: name}
}

// Append adds inst as the block's new last instruction.
func (b *BasicBlock) Append(inst *Instruction) {
	b.Instructions = append(b.Instructions, inst)
}

// Terminator returns the block's last instruction, or nil if the block is
// empty.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	return b.Instructions[len(b.Instructions)-1]
}

// EntryBlockName is the required name of a non-external function's first
// block (spec.md §3.5, invariant F2).
const EntryBlockName = "ENTRY"

func (b *BasicBlock) String() string {
	return fmt.Sprintf("%s: (%d instructions)", b.Name, len(b.Instructions))
}
