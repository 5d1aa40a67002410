package state

import (
	"testing"

	"revoltgo/pkg/revolt"
)

func ringMessage(id, channelID string) *revolt.Message {
	return &revolt.Message{
		ID:      id,
		Channel: &revolt.Channel{ID: channelID, Type: revolt.ChannelTypeGroup},
	}
}

func TestMessageRingEviction(t *testing.T) {
	t.Parallel()

	ring := newMessageRing(2)
	ring.Add(ringMessage("msg-1", "ch-1"))
	ring.Add(ringMessage("msg-2", "ch-1"))
	ring.Add(ringMessage("msg-3", "ch-1"))

	if ring.Len() != 2 {
		t.Fatalf("len = %d, want 2", ring.Len())
	}
	if ring.Get("msg-1") != nil {
		t.Fatal("oldest entry not evicted")
	}
	all := ring.All()
	if all[0].ID != "msg-2" || all[1].ID != "msg-3" {
		t.Fatalf("order = [%s %s], want [msg-2 msg-3]", all[0].ID, all[1].ID)
	}
}

func TestMessageRingZeroCapacityDisablesCaching(t *testing.T) {
	t.Parallel()

	ring := newMessageRing(0)
	ring.Add(ringMessage("msg-1", "ch-1"))

	if ring.Len() != 0 {
		t.Fatalf("len = %d, want 0", ring.Len())
	}
}

func TestMessageRingGetReturnsNewestDuplicate(t *testing.T) {
	t.Parallel()

	ring := newMessageRing(4)
	older := ringMessage("msg-1", "ch-1")
	newer := ringMessage("msg-1", "ch-1")
	ring.Add(older)
	ring.Add(newer)

	if got := ring.Get("msg-1"); got != newer {
		t.Fatal("get did not return the newest entry")
	}
}

func TestMessageRingRemove(t *testing.T) {
	t.Parallel()

	ring := newMessageRing(4)
	ring.Add(ringMessage("msg-1", "ch-1"))
	ring.Add(ringMessage("msg-2", "ch-1"))

	if !ring.Remove("msg-1") {
		t.Fatal("remove reported absent for present entry")
	}
	if ring.Remove("msg-1") {
		t.Fatal("remove reported present for absent entry")
	}
	if ring.Len() != 1 {
		t.Fatalf("len = %d, want 1", ring.Len())
	}
}

func TestMessageRingRemoveChannel(t *testing.T) {
	t.Parallel()

	ring := newMessageRing(4)
	ring.Add(ringMessage("msg-1", "ch-1"))
	ring.Add(ringMessage("msg-2", "ch-2"))
	ring.Add(ringMessage("msg-3", "ch-1"))

	ring.RemoveChannel("ch-1")

	if ring.Len() != 1 || ring.Get("msg-2") == nil {
		t.Fatalf("len = %d, want only msg-2 left", ring.Len())
	}
}
