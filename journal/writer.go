package journal

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	queueSize     = 1024
	flushBatch    = 50
	flushInterval = 5 * time.Second
)

// Writer batches events and writes them from its own goroutine so the
// simulation tick never waits on the database.
type Writer struct {
	j        *Journal
	log      logrus.FieldLogger
	session  string
	events   chan Event
	stop     chan struct{}
	wg       sync.WaitGroup
	interval time.Duration
	dropped  atomic.Int64
	written  atomic.Int64
}

// NewWriter starts a writer that stamps every event with session.
func NewWriter(j *Journal, session string, log logrus.FieldLogger) *Writer {
	return newWriter(j, session, log, flushInterval)
}

func newWriter(j *Journal, session string, log logrus.FieldLogger, interval time.Duration) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	w := &Writer{
		j:        j,
		log:      log.WithField("session", session),
		session:  session,
		events:   make(chan Event, queueSize),
		stop:     make(chan struct{}),
		interval: interval,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Session is the id events are written under.
func (w *Writer) Session() string { return w.session }

// Record queues an event. It never blocks; when the queue is full the
// event is dropped and counted.
func (w *Writer) Record(e Event) {
	e.Session = w.session
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case w.events <- e:
	default:
		w.dropped.Add(1)
	}
}

// Dropped is the number of events lost to a full queue.
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Written is the number of events committed so far.
func (w *Writer) Written() int64 { return w.written.Load() }

// Stop flushes what is queued and waits for the writer to finish.
// Record must not be called after Stop.
func (w *Writer) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Writer) run() {
	defer w.wg.Done()

	batch := make([]Event, 0, flushBatch)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case e := <-w.events:
			batch = append(batch, e)
			if len(batch) >= flushBatch {
				batch = w.flush(batch)
			}
		case <-ticker.C:
			batch = w.flush(batch)
		case <-w.stop:
			for {
				select {
				case e := <-w.events:
					batch = append(batch, e)
					continue
				default:
				}
				break
			}
			w.flush(batch)
			return
		}
	}
}

func (w *Writer) flush(batch []Event) []Event {
	if len(batch) == 0 {
		return batch
	}
	if err := w.j.Append(batch); err != nil {
		w.log.WithError(err).WithField("events", len(batch)).Error("journal flush failed")
	} else {
		w.written.Add(int64(len(batch)))
	}
	return batch[:0]
}
