package events_test

import (
	"testing"

	"github.com/ardanlabs/ledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	t.Log("Given the need to fan out events to subscribers.")
	{
		evts := events.New()

		a := evts.Acquire("a")
		b := evts.Acquire("b")
		if evts.Len() != 2 {
			t.Fatalf("\t%s\tShould have 2 subscribers, got %d.", failed, evts.Len())
		}
		t.Logf("\t%s\tShould have 2 subscribers.", success)

		if again := evts.Acquire("a"); again != a {
			t.Fatalf("\t%s\tShould get the same channel for the same id.", failed)
		}
		t.Logf("\t%s\tShould get the same channel for the same id.", success)

		evts.Send("blk[1]: appended")
		for name, ch := range map[string]<-chan string{"a": a, "b": b} {
			if msg := <-ch; msg != "blk[1]: appended" {
				t.Fatalf("\t%s\tShould deliver the event to %s, got %q.", failed, name, msg)
			}
		}
		t.Logf("\t%s\tShould deliver the event to every subscriber.", success)

		if err := evts.Release("a"); err != nil {
			t.Fatalf("\t%s\tShould be able to release a subscriber: %v", failed, err)
		}
		if _, open := <-a; open {
			t.Fatalf("\t%s\tShould close a released channel.", failed)
		}
		t.Logf("\t%s\tShould close a released channel.", success)

		if err := evts.Release("a"); err == nil {
			t.Fatalf("\t%s\tShould not be able to release twice.", failed)
		}
		t.Logf("\t%s\tShould not be able to release twice.", success)

		for i := 0; i < 500; i++ {
			evts.Send("flood")
		}
		t.Logf("\t%s\tShould not block on a full subscriber.", success)

		evts.Shutdown()
		if _, open := <-evts.Acquire("c"); open {
			t.Fatalf("\t%s\tShould get a closed channel after shutdown.", failed)
		}
		if evts.Len() != 0 {
			t.Fatalf("\t%s\tShould have no subscribers after shutdown.", failed)
		}
		t.Logf("\t%s\tShould have no subscribers after shutdown.", success)
	}
}
