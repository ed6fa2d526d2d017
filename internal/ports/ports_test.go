package ports

import (
	"testing"

	"devdeck/internal/proc"
)

func TestFromCommand(t *testing.T) {
	cases := []struct {
		cmdline string
		want    int
	}{
		{"next dev -p 3000", 0}, // flag form without the colon marker
		{"node server.js --port :8080", 8080},
		{"vite --host :51730", 51730},
		{"python -m http.server", 0},
		{"curl http://localhost:443/x", 0},    // 3 digits
		{"tail -f /var/log/x:123456.log", 0},  // 6 digits
		{"serve :99999", 0},                   // out of range
		{"serve :99999 then :4000 too", 4000}, // first valid match wins
		{"", 0},
	}
	for _, tc := range cases {
		if got := FromCommand(tc.cmdline); got != tc.want {
			t.Errorf("FromCommand(%q) = %d, want %d", tc.cmdline, got, tc.want)
		}
	}
}

func TestResolveCommandBeatsListener(t *testing.T) {
	tbl := proc.NewTable(
		[]proc.Entry{{PID: 10, PPID: 1, Name: "node", Cmdline: "node server.js :3000"}},
		map[int][]int{10: {8080}},
	)
	if got := Resolve(tbl, 10); got != 3000 {
		t.Fatalf("Resolve = %d, want command-line port 3000", got)
	}

	// The command line wins regardless of which side holds the smaller
	// number: :5173 in argv beats a socket bound on 3000.
	tbl = proc.NewTable(
		[]proc.Entry{{PID: 10, PPID: 1, Name: "node", Cmdline: "vite --port :5173"}},
		map[int][]int{10: {3000}},
	)
	if got := Resolve(tbl, 10); got != 5173 {
		t.Fatalf("Resolve = %d, want command-line port 5173", got)
	}
}

func TestResolveListenerWhenNoCommandMatch(t *testing.T) {
	tbl := proc.NewTable(
		[]proc.Entry{{PID: 10, PPID: 1, Name: "node", Cmdline: "node server.js"}},
		map[int][]int{10: {8080}},
	)
	if got := Resolve(tbl, 10); got != 8080 {
		t.Fatalf("Resolve = %d, want listener port 8080", got)
	}
}

func TestResolveChildListenerFallback(t *testing.T) {
	// npm wrapper holds no socket; the node child does.
	tbl := proc.NewTable(
		[]proc.Entry{
			{PID: 10, PPID: 1, Name: "npm", Cmdline: "npm run dev"},
			{PID: 20, PPID: 10, Name: "sh", Cmdline: "sh -c vite"},
			{PID: 30, PPID: 20, Name: "node", Cmdline: "node /x/vite.js"},
		},
		map[int][]int{30: {5173}},
	)
	if got := Resolve(tbl, 10); got != 5173 {
		t.Fatalf("Resolve = %d, want descendant port 5173", got)
	}
}

func TestResolveNothing(t *testing.T) {
	tbl := proc.NewTable(
		[]proc.Entry{{PID: 10, PPID: 1, Name: "bash", Cmdline: "bash"}},
		nil,
	)
	if got := Resolve(tbl, 10); got != 0 {
		t.Fatalf("Resolve = %d, want 0", got)
	}
}

func TestResolveUnknownPid(t *testing.T) {
	tbl := proc.NewTable(nil, nil)
	if got := Resolve(tbl, 42); got != 0 {
		t.Fatalf("Resolve = %d, want 0", got)
	}
}

func TestResolveCyclicTableTerminates(t *testing.T) {
	// Recycled pids can make a snapshot's parent links loop; the walk
	// must still terminate and find nothing.
	tbl := proc.NewTable(
		[]proc.Entry{
			{PID: 10, PPID: 20, Name: "a"},
			{PID: 20, PPID: 10, Name: "b"},
		},
		nil,
	)
	if got := Resolve(tbl, 10); got != 0 {
		t.Fatalf("Resolve = %d, want 0", got)
	}
}
