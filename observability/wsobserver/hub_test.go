package wsobserver

import (
	"testing"
	"time"

	"github.com/mrjk/resourcegraph/link"
)

func TestOnMatch_BroadcastsToRegisteredClients(t *testing.T) {
	h := NewHub()
	ch := make(chan Event, 1)
	h.register(ch)
	defer h.unregister(ch)

	req := link.RequirementLink{Kind: "database", Instance: "main", HasInstance: true, Mod: "!", Owner: "app"}
	prov := link.ProviderLink{Kind: "database", Instance: "main", HasInstance: true, Owner: "db"}

	h.OnMatch(1, "app", req, req, []link.ProviderLink{prov}, []link.ProviderLink{prov})

	select {
	case evt := <-ch:
		if evt.Resource != "app" || evt.Requirement != "database.main!" || len(evt.Chosen) != 1 {
			t.Fatalf("got unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast event")
	}
}

func TestOnMatch_NeverBlocksOnFullClientBuffer(t *testing.T) {
	h := NewHub()
	ch := make(chan Event) // unbuffered, nothing reads from it
	h.register(ch)
	defer h.unregister(ch)

	req := link.RequirementLink{Kind: "x", Mod: "!", Owner: "a"}
	done := make(chan struct{})
	go func() {
		h.OnMatch(0, "a", req, req, nil, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("OnMatch blocked on a stalled client")
	}
}
