package manager

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"wifihal/internal/hal"
)

// chipView is the planning snapshot of one chip.
type chipView struct {
	state     *chipState
	mode      hal.ModeID
	modeValid bool
	live      [hal.NumIfaceTypes][]*ifaceEntry
}

// proposal is one way to satisfy a request on a chip.
type proposal struct {
	chip       *chipState
	mode       hal.ModeID
	changeMode bool
	removals   []*ifaceEntry
	removed    hal.IfaceCounts
}

func (p *proposal) remove(e *ifaceEntry) {
	p.removals = append(p.removals, e)
	p.removed[e.iface.typ]++
}

func (p *proposal) betterThan(q *proposal) bool {
	if better, decided := betterRemovals(p.removed, q.removed); decided {
		return better
	}
	if p.changeMode != q.changeMode {
		return !p.changeMode
	}
	return p.chip.id < q.chip.id
}

func (m *Manager) viewsLocked(s *Session) []chipView {
	views := make([]chipView, 0, len(s.chips))
	for _, c := range s.chips {
		v := chipView{state: c, mode: c.mode, modeValid: c.modeValid}
		for _, e := range m.reg.listByChip(c.id) {
			v.live[e.iface.typ] = append(v.live[e.iface.typ], e)
		}
		views = append(views, v)
	}
	return views
}

// planCreate returns the best proposal for one more interface of type t, or nil.
func planCreate(views []chipView, t hal.IfaceType) *proposal {
	var best *proposal
	for _, v := range views {
		for i, mode := range v.state.modes {
			if !mode.Supports(t) {
				continue
			}
			same := v.modeValid && v.mode == mode.ID
			for _, max := range v.state.expanded[i] {
				p := propose(v, mode.ID, same, max, t)
				if p == nil {
					continue
				}
				if best == nil || p.betterThan(best) {
					best = p
				}
			}
		}
	}
	return best
}

// propose fits a request for t into one expanded combination. In the current
// mode only the per-type excess is removed; switching mode removes everything on
// the chip. Removals are listed lowest priority first.
func propose(v chipView, mode hal.ModeID, same bool, max hal.IfaceCounts, t hal.IfaceType) *proposal {
	if max[t] == 0 {
		return nil
	}
	p := &proposal{chip: v.state, mode: mode, changeMode: !same}
	if same && len(v.live[t])+1 > max[t] {
		return nil
	}
	for i := len(priorityOrder) - 1; i >= 0; i-- {
		typ := priorityOrder[i]
		live := v.live[typ]
		excess := len(live)
		if same {
			if typ == t {
				continue
			}
			excess -= max[typ]
		}
		if excess <= 0 {
			continue
		}
		if !allowedToEvict(t, typ, len(live)) {
			return nil
		}
		for _, e := range evictionOrder(live)[:excess] {
			p.remove(e)
		}
	}
	return p
}

// CreateIface creates an interface of type t, tearing down lower priority
// interfaces and switching the chip mode when needed. dl is registered as the
// new interface's destruction listener. If the request fails, al is told once
// when t becomes creatable again; unsupported types never register al. A nil
// executor delivers on the manager's default queue.
func (m *Manager) CreateIface(ctx context.Context, t hal.IfaceType, dl DestroyedListener, al AvailableListener, ex Executor) (*Iface, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := m.tracer.Start(ctx, "manager.CreateIface", trace.WithAttributes(attribute.String("iface.type", t.String())))
	defer span.End()
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	n := &notifications{}
	m.mu.Lock()
	iface, err := m.createIfaceLocked(span, t, dl, al, ex, n)
	m.updateLiveGaugeLocked()
	m.mu.Unlock()
	m.deliver(n)

	ifaceRequestsTotal.WithLabelValues(t.String(), resultLabel(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.log.Warn().Str("type", t.String()).Err(err).Msg("interface request failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("iface.name", iface.name), attribute.Int("chip.id", int(iface.chipID)))
	m.log.Info().Str("type", t.String()).Str("iface", iface.name).Uint32("chip", uint32(iface.chipID)).Msg("interface created")
	return iface, nil
}

func (m *Manager) createIfaceLocked(span trace.Span, t hal.IfaceType, dl DestroyedListener, al AvailableListener, ex Executor, n *notifications) (*Iface, error) {
	if !t.Valid() {
		return nil, ErrUnsupportedType(t)
	}
	s := m.session
	if s == nil || m.status != StatusStarted {
		return nil, ErrNotStarted
	}
	if !s.supports(t) {
		return nil, ErrUnsupportedType(t)
	}

	destroyed := false
	fail := func(err error) (*Iface, error) {
		if destroyed {
			m.dispatchAvailableLocked(n)
		}
		m.reg.registerAvailableListener(t, al, ex)
		n.publish(Event{Name: EventRequestFailed, Fields: map[string]any{"type": t.String(), "error": err.Error()}})
		return nil, err
	}

	if err := m.refreshChipsLocked(s); err != nil {
		if IsCacheMismatch(err) {
			m.log.Error().Err(err).Msg("interface cache out of sync with chip, forcing stop")
			n.publish(Event{Name: EventCacheMismatch, Fields: map[string]any{"detail": err.Error()}})
			m.forceStopLocked(n, reasonCacheMismatch)
			return nil, err
		}
		return fail(err)
	}

	p := planCreate(m.viewsLocked(s), t)
	if p == nil {
		return fail(ErrNoViableMode(t))
	}
	span.SetAttributes(
		attribute.Int("chip.id", int(p.chip.id)),
		attribute.Int("chip.mode", int(p.mode)),
		attribute.Bool("chip.mode_change", p.changeMode),
		attribute.Int("removals", len(p.removals)),
	)

	for _, e := range p.removals {
		m.destroyLocked(e, n, reasonEvicted)
		destroyed = true
	}
	chip := p.chip
	if p.changeMode {
		if err := chip.chip.ConfigureChip(p.mode); err != nil {
			chip.clearMode()
			return fail(ErrHalFailure("configureChip", err))
		}
		from := -1
		if chip.modeValid {
			from = int(chip.mode)
		}
		chip.setMode(p.mode)
		chipModeChangesTotal.Inc()
		n.publish(Event{Name: EventChipConfigured, Chip: int(chip.id), Fields: map[string]any{"from": from, "to": int(p.mode)}})
	}

	remote, err := chip.chip.CreateIface(t)
	if err != nil {
		return fail(ErrHalFailure(fmt.Sprintf("create%sIface", t), err))
	}
	name, err := remote.Name()
	if err != nil {
		return fail(ErrHalFailure("getName", err))
	}
	iface := &Iface{name: name, typ: t, chipID: chip.id, remote: remote}
	m.reg.recordCreated(iface, chip.chip, chip.mode)
	if dl != nil {
		m.reg.registerDestroyedListener(iface, dl, ex)
	}
	n.publish(Event{Name: EventIfaceCreated, Iface: name, Chip: int(chip.id), Fields: map[string]any{"type": t.String(), "mode": int(chip.mode)}})
	if destroyed {
		m.dispatchAvailableLocked(n)
	}
	return iface, nil
}

// refreshChipsLocked queries every chip for its mode and live interfaces and
// checks them against the registry. On agreement the reported modes are adopted.
func (m *Manager) refreshChipsLocked(s *Session) error {
	type report struct {
		mode  hal.ModeID
		valid bool
	}
	reports := make([]report, len(s.chips))
	for i, c := range s.chips {
		mode, valid, err := currentMode(c.chip)
		if err != nil {
			return err
		}
		reports[i] = report{mode: mode, valid: valid}
		for _, t := range hal.IfaceTypes {
			names, err := c.chip.IfaceNames(t)
			if err != nil {
				return ErrHalFailure(fmt.Sprintf("get%sIfaceNames", t), err)
			}
			var cached []string
			for _, e := range m.reg.listByChip(c.id) {
				if e.iface.typ == t {
					cached = append(cached, e.iface.name)
				}
			}
			if !sameNames(cached, names) {
				return cacheMismatchError{detail: fmt.Sprintf("chip %d %s: cached %v, chip reports %v", c.id, t, cached, names)}
			}
		}
	}
	for i, c := range s.chips {
		if reports[i].valid {
			c.setMode(reports[i].mode)
		} else {
			c.clearMode()
		}
	}
	return nil
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

// RemoveIface destroys iface. It returns false for unknown handles, without side
// effects, and when the HAL refuses the removal. The destruction listeners fire
// in either case once the handle was known.
func (m *Manager) RemoveIface(iface *Iface) bool {
	known, ok := m.removeIface(iface)
	return known && ok
}

func (m *Manager) removeIface(iface *Iface) (known, ok bool) {
	_, span := m.tracer.Start(context.Background(), "manager.RemoveIface")
	defer span.End()

	n := &notifications{}
	m.mu.Lock()
	e := m.reg.lookup(iface)
	if e == nil {
		m.mu.Unlock()
		span.SetStatus(codes.Error, "unknown interface")
		m.log.Warn().Msg("remove of unknown interface")
		return false, false
	}
	span.SetAttributes(attribute.String("iface.name", iface.name), attribute.String("iface.type", iface.typ.String()))
	ok = m.destroyLocked(e, n, reasonRemoved)
	m.dispatchAvailableLocked(n)
	m.updateLiveGaugeLocked()
	m.mu.Unlock()
	m.deliver(n)
	if !ok {
		span.SetStatus(codes.Error, "hal refused removal")
	}
	return true, ok
}

// destroyLocked removes e from the chip and the registry and queues its
// destruction listeners. It reports whether the HAL removal succeeded.
func (m *Manager) destroyLocked(e *ifaceEntry, n *notifications, reason string) bool {
	err := e.chip.RemoveIface(e.iface.typ, e.iface.name)
	if err != nil {
		m.log.Error().Str("iface", e.iface.name).Str("code", hal.StatusCodeOf(err).String()).Err(err).Msg("hal remove failed")
	}
	regs, _ := m.reg.recordDestroyed(e.iface)
	for _, d := range regs {
		n.post(d.ex, d.l.OnDestroyed)
	}
	ifacesDestroyedTotal.WithLabelValues(e.iface.typ.String(), reason).Inc()
	n.publish(Event{Name: EventIfaceDestroyed, Iface: e.iface.name, Chip: int(e.iface.chipID), Fields: map[string]any{"type": e.iface.typ.String(), "reason": reason}})
	return err == nil
}

// dispatchAvailableLocked fires the availability listeners of every type that
// is creatable again. Only cached state is consulted.
func (m *Manager) dispatchAvailableLocked(n *notifications) {
	s := m.session
	if s == nil {
		return
	}
	pending := m.reg.pendingAvailable()
	if len(pending) == 0 {
		return
	}
	views := m.viewsLocked(s)
	for _, t := range pending {
		if planCreate(views, t) == nil {
			continue
		}
		regs := m.reg.takeAvailable(t)
		for _, a := range regs {
			n.post(a.ex, a.l.OnAvailableForRequest)
		}
		n.publish(Event{Name: EventAvailable, Fields: map[string]any{"type": t.String(), "listeners": len(regs)}})
	}
}

// CreateStaIface is CreateIface for a station interface; it returns nil on failure.
func (m *Manager) CreateStaIface(dl DestroyedListener, al AvailableListener, ex Executor) *Iface {
	return m.createTyped(hal.IfaceSTA, dl, al, ex)
}

func (m *Manager) CreateApIface(dl DestroyedListener, al AvailableListener, ex Executor) *Iface {
	return m.createTyped(hal.IfaceAP, dl, al, ex)
}

func (m *Manager) CreateP2pIface(dl DestroyedListener, al AvailableListener, ex Executor) *Iface {
	return m.createTyped(hal.IfaceP2P, dl, al, ex)
}

func (m *Manager) CreateNanIface(dl DestroyedListener, al AvailableListener, ex Executor) *Iface {
	return m.createTyped(hal.IfaceNAN, dl, al, ex)
}

func (m *Manager) createTyped(t hal.IfaceType, dl DestroyedListener, al AvailableListener, ex Executor) *Iface {
	iface, _ := m.CreateIface(context.Background(), t, dl, al, ex)
	return iface
}

// RegisterDestroyedListener adds l to iface. It returns false for unknown handles.
func (m *Manager) RegisterDestroyedListener(iface *Iface, l DestroyedListener, ex Executor) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.registerDestroyedListener(iface, l, ex)
}

// GetChip returns the chip hosting iface, or nil for unknown handles.
func (m *Manager) GetChip(iface *Iface) hal.Chip {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.reg.lookup(iface); e != nil {
		return e.chip
	}
	return nil
}

// CreateRttController creates a ranging controller bound to iface.
func (m *Manager) CreateRttController(iface *Iface) (hal.RttController, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.reg.lookup(iface)
	if e == nil {
		name := "<nil>"
		if iface != nil {
			name = iface.name
		}
		return nil, ErrIfaceNotFound(name)
	}
	rtt, err := e.chip.CreateRttController(e.iface.remote)
	if err != nil {
		return nil, ErrHalFailure("createRttController", err)
	}
	return rtt, nil
}

// IfaceByName returns the live interface called name, or nil.
func (m *Manager) IfaceByName(name string) *Iface {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.reg.byName(name); e != nil {
		return e.iface
	}
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsUnsupportedType(err):
		return "unsupported"
	case IsNotStarted(err):
		return "not_started"
	case IsNoViableMode(err):
		return "no_viable_mode"
	case IsCacheMismatch(err):
		return "cache_mismatch"
	case IsHalFailure(err):
		return "hal_failure"
	default:
		return "error"
	}
}
