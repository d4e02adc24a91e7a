package models

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{RequestPending, RequestAssigned},
		{RequestPending, RequestCancelled},
		{RequestPending, RequestExpired},
		{RequestAssigned, RequestScheduled},
		{RequestAssigned, RequestCompleted},
		{RequestAssigned, RequestCancelled},
		{RequestScheduled, RequestCompleted},
		{RequestScheduled, RequestExpired},
	}
	for _, c := range allowed {
		if !CanTransition(c.from, c.to) {
			t.Errorf("%s -> %s should be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to string }{
		{RequestPending, RequestScheduled},
		{RequestPending, RequestCompleted},
		{RequestCompleted, RequestAssigned},
		{RequestCancelled, RequestPending},
		{RequestExpired, RequestAssigned},
		{RequestAssigned, RequestPending},
	}
	for _, c := range denied {
		if CanTransition(c.from, c.to) {
			t.Errorf("%s -> %s should be rejected", c.from, c.to)
		}
	}

	if CanTransition("bogus", RequestAssigned) {
		t.Error("unknown source status should reject everything")
	}
}
