package debugger

import "fmt"

// watchKind distinguishes a register watch from a memory-cell watch, the
// two addressable things HERA's expression language can name (`R3` vs
// `@0xC001`).
type watchKind int

const (
	watchRegister watchKind = iota
	watchMemory
)

// Watchpoint records a watched register or memory cell and its last seen
// value; WatchSet.Check reports when that value has changed.
type Watchpoint struct {
	ID       int
	Kind     watchKind
	Location int // register index, or memory address
	last     uint16
	armed    bool
}

// WatchSet manages the debugger's watchpoints.
type WatchSet struct {
	points []*Watchpoint
	nextID int
}

func NewWatchSet() *WatchSet {
	return &WatchSet{nextID: 1}
}

func (w *WatchSet) AddRegister(reg int, initial uint16) *Watchpoint {
	wp := &Watchpoint{ID: w.nextID, Kind: watchRegister, Location: reg, last: initial, armed: true}
	w.points = append(w.points, wp)
	w.nextID++
	return wp
}

func (w *WatchSet) AddMemory(addr int, initial uint16) *Watchpoint {
	wp := &Watchpoint{ID: w.nextID, Kind: watchMemory, Location: addr, last: initial, armed: true}
	w.points = append(w.points, wp)
	w.nextID++
	return wp
}

func (w *WatchSet) Delete(id int) error {
	for i, wp := range w.points {
		if wp.ID == id {
			w.points = append(w.points[:i], w.points[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no watchpoint numbered %d", id)
}

func (w *WatchSet) All() []*Watchpoint { return w.points }

// Check reads every armed watchpoint's current value against its last
// known value and reports the first one that changed, updating `last` for
// all of them in the process. Debugger's Next, Step and Continue do not
// call it, so a watchpoint never stops execution by itself.
func (w *WatchSet) Check(registers func(int) uint16, memory func(int) uint16) (*Watchpoint, bool) {
	var hit *Watchpoint
	for _, wp := range w.points {
		if !wp.armed {
			continue
		}
		var cur uint16
		if wp.Kind == watchRegister {
			cur = registers(wp.Location)
		} else {
			cur = memory(wp.Location)
		}
		if cur != wp.last && hit == nil {
			hit = wp
		}
		wp.last = cur
	}
	return hit, hit != nil
}
