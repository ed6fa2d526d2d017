package proc

import "sort"

// Entry is one row of a process table snapshot.
type Entry struct {
	PID     int
	PPID    int
	Name    string
	Cmdline string
}

// Table is a point-in-time view of the OS process list plus the TCP
// listener map. It is built once per scan; all lookups afterwards are
// in-memory and read-only, so a Table is safe to share across goroutines.
type Table struct {
	entries   []Entry
	byPID     map[int]int
	children  map[int][]int
	listeners map[int][]int
}

// NewTable builds a Table from pre-collected rows and a pid->ports
// listener map. listeners may be nil when port information is unavailable.
func NewTable(entries []Entry, listeners map[int][]int) *Table {
	t := &Table{
		entries:   entries,
		byPID:     make(map[int]int, len(entries)),
		children:  make(map[int][]int),
		listeners: make(map[int][]int, len(listeners)),
	}
	for i, e := range entries {
		t.byPID[e.PID] = i
		if e.PPID > 0 {
			t.children[e.PPID] = append(t.children[e.PPID], e.PID)
		}
	}
	for pid, ports := range listeners {
		cp := append([]int(nil), ports...)
		sort.Ints(cp)
		t.listeners[pid] = cp
	}
	for _, kids := range t.children {
		sort.Ints(kids)
	}
	return t
}

// Lookup returns the entry for pid.
func (t *Table) Lookup(pid int) (Entry, bool) {
	i, ok := t.byPID[pid]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Children returns the direct child pids of pid, ascending.
func (t *Table) Children(pid int) []int {
	return t.children[pid]
}

// ListenPorts returns the TCP ports pid is listening on, ascending.
func (t *Table) ListenPorts(pid int) []int {
	return t.listeners[pid]
}

// Listeners returns every pid listening on port, ascending. Several
// processes can share a port (SO_REUSEPORT, forked workers), so the
// lookup is a list, not a single pick.
func (t *Table) Listeners(port int) []int {
	var pids []int
	for pid, ports := range t.listeners {
		for _, p := range ports {
			if p == port {
				pids = append(pids, pid)
				break
			}
		}
	}
	sort.Ints(pids)
	return pids
}

// Entries returns all rows in enumeration order.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Len reports the number of rows.
func (t *Table) Len() int {
	return len(t.entries)
}
