package container

import "hash/fnv"

// Containers have no host pid the app may manage, but list entries and
// kill requests speak pids. Each container id is hashed into a reserved
// range far above real kernel pids (pid_max caps at 2^22 on Linux), so
// a pseudo-pid can never collide with a live process and a kill request
// carrying one can be routed back to the runtime by recomputing hashes.
const (
	pseudoPIDBase  = 1 << 30
	pseudoPIDRange = 1 << 20
)

// PseudoPID derives the stable pseudo-pid for a container id.
func PseudoPID(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return pseudoPIDBase + int(h.Sum32()%pseudoPIDRange)
}

// IsPseudoPID reports whether pid lies in the reserved container range.
func IsPseudoPID(pid int) bool {
	return pid >= pseudoPIDBase && pid < pseudoPIDBase+pseudoPIDRange
}

// FindByPseudoPID locates the container whose id hashes to pid.
func FindByPseudoPID(cs []Container, pid int) (Container, bool) {
	for _, c := range cs {
		if PseudoPID(c.ID) == pid {
			return c, true
		}
	}
	return Container{}, false
}
