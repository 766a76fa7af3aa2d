package reorder

import "github.com/sarchlab/rv32sim/insts"

// Class is the scheduling class of an instruction word.
type Class int

const (
	// Independent words can be issued ahead of everything else.
	Independent Class = iota
	// Dependent words wait until their dependencies are scheduled.
	Dependent
)

func (c Class) String() string {
	if c == Independent {
		return "independent"
	}
	return "dependent"
}

// Classify marks every word with one of the ten defined opcodes as
// dependent and anything else as independent.
func Classify(word uint32) Class {
	if insts.OpcodeOf(word).IsDefined() {
		return Dependent
	}
	return Independent
}

// Schedule returns words with independent words first, in their original
// relative order, followed by dependent words. No dependency edges are
// tracked, so every dependent word is ready as soon as the independent
// ones are issued and dependent words keep their original order too.
func Schedule(words []uint32) []uint32 {
	scheduled := make([]uint32, 0, len(words))
	var dependent []uint32

	for _, w := range words {
		if Classify(w) == Independent {
			scheduled = append(scheduled, w)
		} else {
			dependent = append(dependent, w)
		}
	}

	return append(scheduled, dependent...)
}
