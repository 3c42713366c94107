// Package dispatch runs batches of commands, either one after the other on the calling go routine or
// each in its own go routine.
package dispatch

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

// Command is a unit of work with a reference counted lifecycle
// The dispatcher calls Use before Execute and Forget after it.
type Command interface {
	Use()
	Forget()
	Execute() error
}

// Dispatcher runs commands and then a post treatment, which always runs on the calling go routine
type Dispatcher interface {
	DispatchCommands(cmds []Command, post Command) error
	NewSynchronizer() sync.Locker
	NbUnits() int
}

// RefCount is embedded by commands to get the Use/Forget lifecycle
// The release hook is called when the count drops back to zero.
type RefCount struct {
	count   int32
	release func()
}

// SetRelease sets the function called when the last reference is forgotten
func (r *RefCount) SetRelease(fn func()) {
	r.release = fn
}

// Use adds a reference
func (r *RefCount) Use() {
	atomic.AddInt32(&r.count, 1)
}

// Forget drops a reference
func (r *RefCount) Forget() {
	n := atomic.AddInt32(&r.count, -1)
	if n < 0 {
		panic("dispatch: Forget called more times than Use")
	}
	if n == 0 && r.release != nil {
		r.release()
	}
}

// References returns the current number of references
func (r *RefCount) References() int {
	return int(atomic.LoadInt32(&r.count))
}

// Func wraps a function as a Command
type Func func() error

func (f Func) Use()           {}
func (f Func) Forget()        {}
func (f Func) Execute() error { return f() }

// run executes one command inside its lifecycle
func run(cmd Command) error {
	if cmd == nil {
		return nil
	}
	cmd.Use()
	defer cmd.Forget()
	return cmd.Execute()
}

// collect turns the per command errors into one error
func collect(errs []error) error {
	var first error
	failed := 0
	for _, err := range errs {
		if err != nil {
			if first == nil {
				first = err
			}
			failed++
		}
	}
	if failed == 0 {
		return nil
	}
	return errors.Wrapf(first, "%d of %d commands failed, first error", failed, len(errs))
}

// finish runs the post treatment, even if commands failed, and returns the combined error
func finish(errs []error, post Command) error {
	err := collect(errs)
	if perr := run(post); perr != nil {
		if err == nil {
			return errors.Wrap(perr, "post treatment failed")
		}
		log.Printf("\tpost treatment failed: %v", perr)
	}
	return err
}

// Serial runs the commands in order on the calling go routine
type Serial struct{}

// NewSerial is the Serial constructor
func NewSerial() *Serial {
	return &Serial{}
}

// DispatchCommands runs every command, then post
func (d *Serial) DispatchCommands(cmds []Command, post Command) error {
	errs := make([]error, len(cmds))
	for i, cmd := range cmds {
		errs[i] = run(cmd)
	}
	return finish(errs, post)
}

// NewSynchronizer returns a lock that does nothing, as nothing runs concurrently
func (d *Serial) NewSynchronizer() sync.Locker {
	return nopLocker{}
}

// NbUnits is always 1
func (d *Serial) NbUnits() int {
	return 1
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Parallel runs each command in its own go routine and waits for all of them
// A failing command does not stop the others.
type Parallel struct {
	nbUnits int
}

// NewParallel is the Parallel constructor, 0 units means one per CPU
func NewParallel(nbUnits int) *Parallel {
	if nbUnits <= 0 {
		nbUnits = runtime.NumCPU()
	}
	return &Parallel{nbUnits: nbUnits}
}

// DispatchCommands starts every command, waits for them all to finish and then runs post
func (d *Parallel) DispatchCommands(cmds []Command, post Command) error {
	var wg sync.WaitGroup
	errs := make([]error, len(cmds))
	wg.Add(len(cmds))
	for i, cmd := range cmds {
		go func(i int, cmd Command) {
			defer wg.Done()
			errs[i] = run(cmd)
		}(i, cmd)
	}
	wg.Wait()
	return finish(errs, post)
}

// NewSynchronizer returns a mutex
func (d *Parallel) NewSynchronizer() sync.Locker {
	return &sync.Mutex{}
}

// NbUnits returns the number of execution units commands should be split over
func (d *Parallel) NbUnits() int {
	return d.nbUnits
}

// New returns a Parallel dispatcher for more than one unit, a Serial one otherwise
func New(nbUnits int) Dispatcher {
	if nbUnits == 1 {
		return NewSerial()
	}
	return NewParallel(nbUnits)
}
