// Package kill terminates tracked processes and project containers.
//
// Real processes get the usual two-step treatment: SIGTERM now, SIGKILL
// after a grace period if they ignored it. The caller hears "success"
// as soon as SIGTERM is delivered; the escalation runs detached because
// the dashboards driving this API cannot block for seconds per kill.
// Container pseudo-pids are routed to the container runtime and never
// reach the OS signal path.
package kill

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"devdeck/internal/container"
	"devdeck/internal/proc"
	"devdeck/internal/registry"
)

// Result reports one termination attempt. Signal failures are data, not
// errors: a dead-on-arrival pid or a permission wall must not abort a
// caller iterating a whole project.
type Result struct {
	PID     int
	Success bool
	Err     error
}

// Containers is the slice of the container client the controller needs.
type Containers interface {
	Running(ctx context.Context) ([]container.Container, error)
	Stop(ctx context.Context, id string) error
}

type signalFunc func(pid int, sig syscall.Signal) error

// Controller owns termination policy. The registry handle is injected
// once at construction; the detached escalations reuse it, so they
// always see the same ledger the rest of the daemon mutates.
type Controller struct {
	reg        *registry.Registry
	containers Containers
	grace      time.Duration
	log        *zap.Logger

	signal signalFunc
	alive  func(pid int) bool

	wg sync.WaitGroup
}

// NewController builds a Controller. containers may be nil when
// container correlation is disabled.
func NewController(reg *registry.Registry, containers Containers, grace time.Duration, logger *zap.Logger) *Controller {
	if grace <= 0 {
		grace = 3 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		reg:        reg,
		containers: containers,
		grace:      grace,
		log:        logger,
		signal:     defaultSignal,
		alive:      proc.Alive,
	}
}

// Kill terminates pid. force skips the grace period and SIGKILLs
// immediately. Pseudo-pids are resolved back to their container and
// stopped through the runtime.
func (c *Controller) Kill(ctx context.Context, pid int, force bool) Result {
	if pid <= 0 {
		return Result{PID: pid, Err: errors.New("pid must be > 0")}
	}
	if container.IsPseudoPID(pid) {
		return c.stopContainer(ctx, pid)
	}
	if force {
		return c.forceKill(pid)
	}
	return c.gracefulKill(pid)
}

func (c *Controller) forceKill(pid int) Result {
	if err := c.signal(pid, syscall.SIGKILL); err != nil {
		return Result{PID: pid, Err: err}
	}
	c.reg.Unregister(pid)
	return Result{PID: pid, Success: true}
}

// gracefulKill sends SIGTERM and reports success as soon as the signal
// is delivered. A vanished pid is a failure result like any other send
// error; the caller decides whether already-gone counts as done, and
// the registry sweep reclaims the entry either way. A detached timer
// rechecks after the grace period and SIGKILLs at most once;
// unregistering twice is harmless by design of the registry.
func (c *Controller) gracefulKill(pid int) Result {
	if err := c.signal(pid, syscall.SIGTERM); err != nil {
		return Result{PID: pid, Err: err}
	}

	c.wg.Add(1)
	time.AfterFunc(c.grace, func() {
		defer c.wg.Done()
		if c.alive(pid) {
			if err := c.signal(pid, syscall.SIGKILL); err != nil && !alreadyGone(err) {
				c.log.Warn("kill escalation failed", zap.Int("pid", pid), zap.Error(err))
			}
		}
		c.reg.Unregister(pid)
	})

	return Result{PID: pid, Success: true}
}

func (c *Controller) stopContainer(ctx context.Context, pid int) Result {
	if c.containers == nil {
		return Result{PID: pid, Err: errors.New("container support disabled")}
	}
	running, err := c.containers.Running(ctx)
	if err != nil {
		return Result{PID: pid, Err: err}
	}
	cont, ok := container.FindByPseudoPID(running, pid)
	if !ok {
		return Result{PID: pid, Err: errors.New("no running container matches pid")}
	}
	if err := c.containers.Stop(ctx, cont.ID); err != nil {
		return Result{PID: pid, Err: err}
	}
	return Result{PID: pid, Success: true}
}

// Drain blocks until every scheduled escalation has run. Shutdown and
// tests use it; request paths never do.
func (c *Controller) Drain() {
	c.wg.Wait()
}

func alreadyGone(err error) bool {
	return errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone)
}
