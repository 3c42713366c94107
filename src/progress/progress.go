// Package progress contains the listeners that are notified as long running jobs (bank iteration, k-mer counting)
// advance, plus the Subject that iterators embed to notify them.
package progress

import (
	"io"
	"log"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// Listener receives progress notifications
// Init is called once before any work, Inc as work is done, Finish once at the end.
type Listener interface {
	Init()
	Inc(n uint64)
	Finish()
}

// Subject holds a list of listeners and notifies them
type Subject struct {
	listeners []Listener
}

// AddListener registers a listener, nil listeners are ignored
func (s *Subject) AddListener(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// RemoveListener unregisters a listener
func (s *Subject) RemoveListener(l Listener) {
	for i, registered := range s.listeners {
		if registered == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// NotifyInit calls Init on every listener
func (s *Subject) NotifyInit() {
	for _, l := range s.listeners {
		l.Init()
	}
}

// NotifyInc calls Inc on every listener
func (s *Subject) NotifyInc(n uint64) {
	for _, l := range s.listeners {
		l.Inc(n)
	}
}

// NotifyFinish calls Finish on every listener
func (s *Subject) NotifyFinish() {
	for _, l := range s.listeners {
		l.Finish()
	}
}

// Bar is a Listener that draws a progress bar
type Bar struct {
	total  int64
	writer io.Writer
	bar    *pb.ProgressBar
}

// NewBar is the Bar constructor, total can be 0 if the amount of work is not known
func NewBar(total int64, w io.Writer) *Bar {
	return &Bar{total: total, writer: w}
}

// Init starts the bar
func (b *Bar) Init() {
	b.bar = pb.New64(b.total)
	if b.total > 0 {
		b.bar.SetTemplate(pb.Full)
	} else {
		b.bar.SetTemplateString(`{{counters . }} {{etime . }}`)
	}
	if b.writer != nil {
		b.bar.SetWriter(b.writer)
	}
	b.bar.Start()
}

// Inc moves the bar on
func (b *Bar) Inc(n uint64) {
	if b.bar != nil {
		b.bar.Add64(int64(n))
	}
}

// Finish stops the bar
func (b *Bar) Finish() {
	if b.bar != nil {
		if b.total > 0 {
			b.bar.SetCurrent(b.total)
		}
		b.bar.Finish()
	}
}

// Current returns the amount of work done so far
func (b *Bar) Current() int64 {
	if b.bar == nil {
		return 0
	}
	return b.bar.Current()
}

// Log is a Listener that writes progress to the log, every hundredth of the total
// If the total is not known only the start and the end of the job are logged.
type Log struct {
	message string
	todo    uint64
	done    uint64
	partial uint64
	step    uint64
	start   time.Time
}

// NewLog is the Log constructor
func NewLog(message string, todo uint64) *Log {
	step := todo / 100
	if step == 0 {
		step = 1
	}
	return &Log{message: message, todo: todo, step: step}
}

// Init logs the start of the job
func (l *Log) Init() {
	l.done, l.partial = 0, 0
	l.start = time.Now()
	log.Printf("\t%v: started", l.message)
}

// Inc logs each hundredth of the job
func (l *Log) Inc(n uint64) {
	l.done += n
	if l.todo == 0 {
		return
	}
	l.partial += n
	if l.partial >= l.step {
		l.partial %= l.step
		log.Printf("\t%v: %d/%d (%d%%)", l.message, l.done, l.todo, 100*l.done/l.todo)
	}
}

// Finish logs the amount of work done and the time taken
func (l *Log) Finish() {
	log.Printf("\t%v: finished %d in %v", l.message, l.done, time.Since(l.start).Round(time.Millisecond))
}

// Done returns the amount of work done so far
func (l *Log) Done() uint64 {
	return l.done
}
