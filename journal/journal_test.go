package journal

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSessionLifecycle(t *testing.T) {
	j := openTemp(t)
	id, err := j.StartSession("blocks.map", "grid")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected a uuid session id, got %q", id)
	}
	s, err := j.GetSession(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if s.Map != "blocks.map" || s.Engine != "grid" || s.Ended.Valid {
		t.Errorf("unexpected session %+v", s)
	}
	if err := j.EndSession(id); err != nil {
		t.Fatalf("end: %v", err)
	}
	if s, _ = j.GetSession(id); !s.Ended.Valid {
		t.Error("session should be ended")
	}
	if err := j.EndSession("nope"); !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestAppendAndQuery(t *testing.T) {
	j := openTemp(t)
	sid, _ := j.StartSession("m", "polygon")
	err := j.Append([]Event{
		{Session: sid, Kind: KindScore, Frame: 1, Player: "Ann", Delta: 5},
		{Session: sid, Kind: KindScore, Frame: 2, Player: "Ann", Delta: -2},
		{Session: sid, Kind: KindScore, Frame: 2, Player: "Bob", Delta: 10},
		{Session: sid, Kind: KindTeamScore, Frame: 3, Team: 0, Delta: 1},
		{Session: sid, Kind: KindMessage, Frame: 4, Text: "Ann smashed against a wall."},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	totals, err := j.ScoreTotals(sid)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals["Ann"] != 3 || totals["Bob"] != 10 || len(totals) != 2 {
		t.Errorf("unexpected totals %v", totals)
	}

	recent, err := j.Recent(sid, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Kind != KindTeamScore || recent[1].Text != "Ann smashed against a wall." {
		t.Errorf("unexpected recent events %+v", recent)
	}

	counts, _ := j.CountByKind(sid)
	if counts[KindScore] != 3 || counts[KindMessage] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestAppendRejectsUnknownSession(t *testing.T) {
	j := openTemp(t)
	err := j.Append([]Event{{Session: "missing", Kind: KindKill}})
	if err == nil {
		t.Error("events must belong to a session")
	}
}

func TestWriterFlushesOnStop(t *testing.T) {
	j := openTemp(t)
	sid, _ := j.StartSession("m", "grid")
	log, _ := test.NewNullLogger()
	w := newWriter(j, sid, log, time.Hour)
	for i := 0; i < 7; i++ {
		w.Record(Event{Kind: KindKill, Frame: int64(i), Player: "Ann"})
	}
	w.Stop()
	if w.Written() != 7 || w.Dropped() != 0 {
		t.Errorf("written %d dropped %d", w.Written(), w.Dropped())
	}
	counts, _ := j.CountByKind(sid)
	if counts[KindKill] != 7 {
		t.Errorf("expected 7 kills in the journal, got %v", counts)
	}
}

func TestWriterFlushesFullBatch(t *testing.T) {
	j := openTemp(t)
	sid, _ := j.StartSession("m", "grid")
	log, _ := test.NewNullLogger()
	w := newWriter(j, sid, log, time.Hour)
	defer w.Stop()
	for i := 0; i < flushBatch; i++ {
		w.Record(Event{Kind: KindScore, Player: "Bob", Delta: 1})
	}
	deadline := time.Now().Add(2 * time.Second)
	for w.Written() < flushBatch && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if w.Written() != flushBatch {
		t.Fatalf("a full batch should be written without waiting for the ticker, written %d", w.Written())
	}
}

func TestWriterLogsFailedFlush(t *testing.T) {
	j := openTemp(t)
	log, hook := test.NewNullLogger()
	w := newWriter(j, "no-such-session", log, time.Hour)
	w.Record(Event{Kind: KindMessage, Text: "lost"})
	w.Stop()
	if w.Written() != 0 {
		t.Error("nothing should be written for a missing session")
	}
	if e := hook.LastEntry(); e == nil || e.Message != "journal flush failed" {
		t.Errorf("expected a flush error log, got %+v", e)
	}
}
