package manager

import (
	"testing"

	"wifihal/internal/hal"
)

func TestRegistryCreateAndDestroy(t *testing.T) {
	r := newRegistry()
	sta := &Iface{name: "sta0", typ: hal.IfaceSTA}
	p2p := &Iface{name: "p2p0", typ: hal.IfaceP2P, chipID: 1}
	r.recordCreated(sta, nil, 0)
	r.recordCreated(p2p, nil, 0)

	if r.byName("p2p0") == nil || r.lookup(sta) == nil {
		t.Fatalf("lookup failed")
	}
	if got := r.countsByChip(0); got[hal.IfaceSTA] != 1 || got.Total() != 1 {
		t.Fatalf("unexpected counts on chip 0: %v", got)
	}
	if !r.registerDestroyedListener(sta, DestroyedFunc(func() {}), nil) {
		t.Fatalf("register on live iface failed")
	}
	regs, ok := r.recordDestroyed(sta)
	if !ok || len(regs) != 1 {
		t.Fatalf("expected one listener back, got %d (ok=%t)", len(regs), ok)
	}
	if _, ok := r.recordDestroyed(sta); ok {
		t.Fatalf("second destroy must report unknown")
	}
	if r.registerDestroyedListener(sta, DestroyedFunc(func() {}), nil) {
		t.Fatalf("register on removed iface must fail")
	}
}

func TestRegistryAvailableListeners(t *testing.T) {
	r := newRegistry()
	log := &callLog{}
	a := &fakeAvailable{name: "a", log: log}
	r.registerAvailableListener(hal.IfaceNAN, a, nil)
	r.registerAvailableListener(hal.IfaceNAN, a, nil)
	r.registerAvailableListener(hal.IfaceNAN, nil, nil)
	r.registerAvailableListener(hal.IfaceType(7), a, nil)

	pending := r.pendingAvailable()
	if len(pending) != 1 || pending[0] != hal.IfaceNAN {
		t.Fatalf("unexpected pending types %v", pending)
	}
	if regs := r.takeAvailable(hal.IfaceNAN); len(regs) != 1 {
		t.Fatalf("expected one deduplicated listener, got %d", len(regs))
	}
	if len(r.pendingAvailable()) != 0 {
		t.Fatalf("take must clear the listeners")
	}
}

func TestRegistryPurge(t *testing.T) {
	r := newRegistry()
	log := &callLog{}
	for _, name := range []string{"sta0", "ap0"} {
		iface := &Iface{name: name}
		r.recordCreated(iface, nil, 0)
		r.registerDestroyedListener(iface, &fakeDestroyed{name: name, log: log}, nil)
	}
	r.registerAvailableListener(hal.IfaceP2P, &fakeAvailable{name: "p", log: log}, nil)

	entries, regs := r.purge()
	if len(entries) != 2 || entries[0].iface.name != "sta0" {
		t.Fatalf("expected entries oldest first, got %d", len(entries))
	}
	if len(regs) != 2 {
		t.Fatalf("expected 2 listeners, got %d", len(regs))
	}
	if len(r.all()) != 0 || len(r.pendingAvailable()) != 0 {
		t.Fatalf("purge must empty the registry")
	}
}
