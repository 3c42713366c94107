package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
)

var errTest = errors.New("command failed")

// sumCommand adds its value to a shared total
type sumCommand struct {
	RefCount
	value    int
	total    *int
	lock     sync.Locker
	fail     bool
	released *int32
	peak     int
}

func newSumCommand(value int, total *int, lock sync.Locker, released *int32) *sumCommand {
	cmd := &sumCommand{value: value, total: total, lock: lock, released: released}
	cmd.SetRelease(func() { atomic.AddInt32(released, 1) })
	return cmd
}

func (cmd *sumCommand) Execute() error {
	cmd.peak = cmd.References()
	if cmd.fail {
		return fmt.Errorf("command %d: %w", cmd.value, errTest)
	}
	cmd.lock.Lock()
	*cmd.total += cmd.value
	cmd.lock.Unlock()
	return nil
}

func testDispatcher(t *testing.T, d Dispatcher) {
	total, released := 0, int32(0)
	lock := d.NewSynchronizer()
	cmds := make([]Command, 100)
	sums := make([]*sumCommand, 100)
	for i := range cmds {
		sums[i] = newSumCommand(i+1, &total, lock, &released)
		cmds[i] = sums[i]
	}
	postTotal := -1
	post := Func(func() error {
		postTotal = total
		return nil
	})
	if err := d.DispatchCommands(cmds, post); err != nil {
		t.Fatal(err)
	}
	if total != 5050 {
		t.Fatalf("expected a total of 5050, got %d", total)
	}
	if postTotal != 5050 {
		t.Fatal("post treatment should run after every command has finished")
	}
	if released != 100 {
		t.Fatalf("every command should have been released once, got %d", released)
	}
	for _, cmd := range sums {
		if cmd.peak != 1 || cmd.References() != 0 {
			t.Fatal("commands should be used during execution and forgotten after")
		}
	}

	// failures are collected once every command has run
	total, released = 0, 0
	sums[10].fail = true
	sums[20].fail = true
	postRan := false
	err := d.DispatchCommands(cmds, Func(func() error { postRan = true; return nil }))
	if err == nil {
		t.Fatal("expected an error")
	}
	if total != 5050-11-21 || released != 100 || !postRan {
		t.Fatal("a failing command should not stop the others")
	}
}

func TestSerial(t *testing.T) {
	d := NewSerial()
	if d.NbUnits() != 1 {
		t.Fatal("serial dispatcher has 1 unit")
	}
	testDispatcher(t, d)

	// serial commands run in order
	order := []int{}
	cmds := []Command{}
	for i := 0; i < 5; i++ {
		i := i
		cmds = append(cmds, Func(func() error { order = append(order, i); return nil }))
	}
	if err := d.DispatchCommands(cmds, nil); err != nil {
		t.Fatal(err)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("serial commands ran out of order: %v", order)
		}
	}
}

func TestParallel(t *testing.T) {
	if NewParallel(0).NbUnits() < 1 {
		t.Fatal("parallel dispatcher should default to the number of CPUs")
	}
	testDispatcher(t, NewParallel(4))
	if _, ok := New(1).(*Serial); !ok {
		t.Fatal("1 unit should give a serial dispatcher")
	}
}

// all the commands are started at once, so they can wait on each other
func TestParallelStartsAll(t *testing.T) {
	var wg sync.WaitGroup
	n := 8
	wg.Add(n)
	cmds := make([]Command, n)
	for i := range cmds {
		cmds[i] = Func(func() error {
			wg.Done()
			wg.Wait()
			return nil
		})
	}
	if err := NewParallel(2).DispatchCommands(cmds, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRefCountPanics(t *testing.T) {
	r := &RefCount{}
	defer func() {
		if recover() == nil {
			t.Fatal("Forget without Use should panic")
		}
	}()
	r.Forget()
}

func TestPostFailure(t *testing.T) {
	err := NewSerial().DispatchCommands(nil, Func(func() error { return errTest }))
	if errors.Cause(err) != errTest {
		t.Fatalf("post treatment error should be returned, got %v", err)
	}
}
