package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/specialistvlad/tickgrid/internal/binding"
	"github.com/specialistvlad/tickgrid/internal/owner"
	"github.com/specialistvlad/tickgrid/internal/phase"
	"github.com/specialistvlad/tickgrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// actor is a minimal owner used throughout these tests.
type actor struct {
	*owner.Handle
	name  string
	ticks int
}

func newActor(name string) *actor {
	return &actor{Handle: owner.NewHandle(), name: name}
}

// Tick is exported on purpose: binding it is a visibility violation.
func (a *actor) Tick() { a.ticks++ }

func (a *actor) tick() { a.ticks++ }

// tableProvider maps owner IDs to the descriptors they contribute.
type tableProvider map[uuid.UUID][]binding.Descriptor

func (p tableProvider) DescribeCallbacks(o owner.Owner) []binding.Descriptor {
	return p[o.ID()]
}

type fixture struct {
	reg      *Registry
	provider tableProvider
	rec      *testutil.Recorder
	logs     *testutil.SafeBuffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger, logs := testutil.NewLogger(t)
	provider := tableProvider{}
	opts = append([]Option{WithLogger(logger)}, opts...)
	return &fixture{
		reg:      New(provider, opts...),
		provider: provider,
		rec:      &testutil.Recorder{},
		logs:     logs,
	}
}

// declare makes a contribute one recorded callback per phase in p.
func (f *fixture) declare(a *actor, p phase.Phase, order int, persistent bool) {
	f.provider[a.ID()] = append(f.provider[a.ID()], binding.Descriptor{
		Phase:      p,
		Order:      order,
		Persistent: persistent,
		Procedure:  f.rec.Record(a.name),
	})
}

func (f *fixture) dispatch(p phase.Phase) []string {
	f.rec.Reset()
	f.reg.Dispatch(p)
	return f.rec.Calls()
}

func TestDispatch_OrdersByGroupThenRegistration(t *testing.T) {
	f := newFixture(t)
	actors := map[string]*actor{}
	for _, spec := range []struct {
		name  string
		order int
	}{
		{"late-1", 10}, {"early-1", -5}, {"mid-1", 0}, {"late-2", 10}, {"mid-2", 0}, {"early-2", -5},
	} {
		a := newActor(spec.name)
		actors[spec.name] = a
		f.declare(a, phase.Update, spec.order, false)
		require.Equal(t, 1, f.reg.RegisterObject(a))
	}

	want := []string{"early-1", "early-2", "mid-1", "mid-2", "late-1", "late-2"}
	if diff := cmp.Diff(want, f.dispatch(phase.Update)); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, f.dispatch(phase.LateUpdate), "phases are independent")
}

func TestRegister_SameOwnerTwiceReplaces(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.declare(a, phase.Update, 0, false)

	f.reg.RegisterObject(a)
	f.reg.RegisterObject(a)

	assert.Equal(t, 1, f.reg.Len(phase.Update))
	assert.Equal(t, []string{"a"}, f.dispatch(phase.Update), "no duplicate invocation")
}

func TestRegister_DuplicatePhaseDeclarationLaterWins(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.provider[a.ID()] = []binding.Descriptor{
		{Phase: phase.Update, Order: 1, Procedure: f.rec.Record("first")},
		{Phase: phase.Update, Order: 2, Procedure: f.rec.Record("second")},
	}

	require.Equal(t, 1, f.reg.RegisterObject(a))
	assert.Equal(t, []string{"second"}, f.dispatch(phase.Update))
	testutil.AssertLogged(t, f.logs.String(), "level=WARN", "more than one callback for a phase")
}

func TestRegister_MultiplePhases(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.declare(a, phase.Update, 0, false)
	f.declare(a, phase.FixedUpdate, 3, false)
	f.declare(a, phase.DebugDraw, 0, false)

	require.Equal(t, 3, f.reg.RegisterObject(a))
	assert.True(t, f.reg.Registered(a))
	for _, p := range []phase.Phase{phase.Update, phase.FixedUpdate, phase.DebugDraw} {
		assert.Equal(t, []string{"a"}, f.dispatch(p), "phase %s", p)
	}
	assert.Empty(t, f.dispatch(phase.LateUpdate))
}

func TestRegister_NilAndDeadOwnersAreIgnored(t *testing.T) {
	f := newFixture(t)
	var nilActor *actor

	assert.Zero(t, f.reg.RegisterObject(nil))
	assert.Zero(t, f.reg.RegisterObject(nilActor))

	dead := newActor("dead")
	f.declare(dead, phase.Update, 0, false)
	dead.Invalidate()
	assert.Zero(t, f.reg.RegisterObject(dead))
	assert.Zero(t, f.reg.Len(phase.Update))
}

func TestRegister_SkipsDescriptorWithoutProcedure(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.provider[a.ID()] = []binding.Descriptor{{Phase: phase.Update, Name: "missing"}}

	assert.Zero(t, f.reg.RegisterObject(a))
	testutil.AssertLogged(t, f.logs.String(), "level=WARN", "without a procedure", "name=missing")
}

func TestRegister_CompactsDeadBindings(t *testing.T) {
	f := newFixture(t)
	stale, fresh := newActor("stale"), newActor("fresh")
	f.declare(stale, phase.Update, 0, false)
	f.declare(fresh, phase.Update, 0, false)

	f.reg.RegisterObject(stale)
	stale.Invalidate()
	require.Equal(t, 1, f.reg.Len(phase.Update), "dead binding lingers until compaction")

	f.reg.RegisterObject(fresh)
	assert.Equal(t, 1, f.reg.Len(phase.Update))
	assert.False(t, f.reg.Registered(stale))
}

func TestUnregister_RemovesFromAllPhases(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("a"), newActor("b")
	for _, p := range phase.All() {
		f.declare(a, p, 0, true)
	}
	f.declare(b, phase.Update, 0, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)

	assert.Equal(t, phase.Count(), f.reg.UnregisterObject(a))
	assert.False(t, f.reg.Registered(a))
	for _, p := range phase.All() {
		assert.NotContains(t, f.dispatch(p), "a", "phase %s", p)
	}
	assert.Equal(t, []string{"b"}, f.dispatch(phase.Update))
}

func TestUnregister_UnknownOwnerIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.Zero(t, f.reg.UnregisterObject(newActor("ghost")))
	assert.Zero(t, f.reg.UnregisterObject(nil))

	a := newActor("a")
	f.declare(a, phase.Update, 0, false)
	f.reg.RegisterObject(a)
	require.Equal(t, 1, f.reg.UnregisterObject(a))
	assert.Zero(t, f.reg.UnregisterObject(a), "second unregister is a no-op")
}

func TestClear_NonForcedKeepsPersistentScenario(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("A"), newActor("B")
	f.declare(a, phase.Update, 0, false)
	f.declare(b, phase.Update, 5, true)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)

	assert.Equal(t, []string{"A", "B"}, f.dispatch(phase.Update))

	assert.Equal(t, 1, f.reg.Clear(false))
	assert.Equal(t, []string{"B"}, f.dispatch(phase.Update))
	assert.False(t, f.reg.Registered(a))
	assert.True(t, f.reg.Registered(b))
	testutil.AssertLogged(t, f.logs.String(), "level=INFO", "registry cleared", "forced=false", "removed=1")
}

func TestClear_ForcedRemovesEverything(t *testing.T) {
	f := newFixture(t)
	for i, name := range []string{"a", "b", "c"} {
		a := newActor(name)
		f.declare(a, phase.Update, i, i%2 == 0)
		f.declare(a, phase.LateUpdate, i, true)
		f.reg.RegisterObject(a)
	}

	assert.Equal(t, 6, f.reg.Clear(true))
	for _, p := range phase.All() {
		assert.Zero(t, f.reg.Len(p), "phase %s", p)
		assert.Empty(t, f.dispatch(p), "phase %s", p)
	}
}

func TestDispatch_SkipsOwnerInvalidatedAfterRegistration(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("a"), newActor("b")
	f.declare(a, phase.Update, 0, false)
	f.declare(b, phase.Update, 1, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)

	a.Invalidate()

	var got []string
	require.NotPanics(t, func() { got = f.dispatch(phase.Update) })
	assert.Equal(t, []string{"b"}, got)
}

func TestRegister_ExportedProcedureIsViolationButRuns(t *testing.T) {
	f := newFixture(t)
	c := newActor("C")
	f.provider[c.ID()] = []binding.Descriptor{{Phase: phase.Update, Procedure: c.Tick}}

	require.Equal(t, 1, f.reg.RegisterObject(c))
	testutil.AssertLogged(t, f.logs.String(), "level=ERROR", "violation=visibility", "phase=update", "(*actor).Tick")

	assert.Equal(t, 1, f.reg.Dispatch(phase.Update))
	assert.Equal(t, 1, c.ticks)
}

func TestRegister_PublicFlagIsViolation(t *testing.T) {
	f := newFixture(t)
	c := newActor("C")
	f.provider[c.ID()] = []binding.Descriptor{{Phase: phase.Update, Procedure: f.rec.Record("C"), Public: true, Name: "OnTick"}}

	f.reg.RegisterObject(c)
	testutil.AssertLogged(t, f.logs.String(), "violation=visibility", "procedure=OnTick")
	assert.Equal(t, []string{"C"}, f.dispatch(phase.Update))
}

func TestRegister_InternalProceduresAreNotViolations(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.provider[a.ID()] = []binding.Descriptor{
		{Phase: phase.Update, Procedure: a.tick},
		{Phase: phase.LateUpdate, Procedure: func() { a.ticks++ }},
	}

	f.reg.RegisterObject(a)
	testutil.AssertNotLogged(t, f.logs.String(), "violation=visibility")

	f.reg.Dispatch(phase.Update)
	f.reg.Dispatch(phase.LateUpdate)
	assert.Equal(t, 2, a.ticks)
}

func TestDispatch_OwnerUnregistersItselfMidPass(t *testing.T) {
	f := newFixture(t)
	d, e, g := newActor("D"), newActor("E"), newActor("G")
	f.provider[d.ID()] = []binding.Descriptor{{
		Phase: phase.Update,
		Order: 0,
		Procedure: func() {
			f.rec.Record("D")()
			f.reg.UnregisterObject(d)
			f.reg.UnregisterObject(e)
		},
	}}
	f.declare(e, phase.Update, 10, false)
	f.declare(g, phase.Update, 10, false)
	f.reg.RegisterObject(d)
	f.reg.RegisterObject(e)
	f.reg.RegisterObject(g)

	var got []string
	require.NotPanics(t, func() { got = f.dispatch(phase.Update) })
	assert.Equal(t, []string{"D", "G"}, got, "removed bindings are not invoked later in the pass")
	assert.Equal(t, []string{"G"}, f.dispatch(phase.Update))
}

func TestDispatch_RemovalWithinCurrentGroup(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("a"), newActor("b")
	f.provider[a.ID()] = []binding.Descriptor{{
		Phase:     phase.Update,
		Procedure: func() { f.rec.Record("a")(); f.reg.UnregisterObject(b) },
	}}
	f.declare(b, phase.Update, 0, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)

	assert.Equal(t, []string{"a"}, f.dispatch(phase.Update))
}

func TestDispatch_RegistrationMidPassRunsNextPass(t *testing.T) {
	f := newFixture(t)
	spawner, child := newActor("spawner"), newActor("child")
	spawned := false
	f.provider[spawner.ID()] = []binding.Descriptor{{
		Phase: phase.Update,
		Procedure: func() {
			f.rec.Record("spawner")()
			if !spawned {
				spawned = true
				f.reg.RegisterObject(child)
			}
		},
	}}
	f.declare(child, phase.Update, 50, false)
	f.reg.RegisterObject(spawner)

	assert.Equal(t, []string{"spawner"}, f.dispatch(phase.Update), "new order-group is not part of the running pass")
	assert.Equal(t, []string{"spawner", "child"}, f.dispatch(phase.Update))
}

func TestDispatch_ReRegistrationMidPassDoesNotRunTwice(t *testing.T) {
	f := newFixture(t)
	x, y := newActor("x"), newActor("y")
	moved := false
	var tickX binding.Procedure
	tickX = func() {
		f.rec.Record("x")()
		if !moved {
			moved = true
			f.provider[x.ID()] = []binding.Descriptor{{Phase: phase.Update, Order: 10, Procedure: tickX}}
			f.reg.RegisterObject(x)
		}
	}
	f.provider[x.ID()] = []binding.Descriptor{{Phase: phase.Update, Order: 0, Procedure: tickX}}
	f.declare(y, phase.Update, 10, false)
	f.reg.RegisterObject(x)
	f.reg.RegisterObject(y)

	assert.Equal(t, []string{"x", "y"}, f.dispatch(phase.Update), "the moved binding waits for the next pass")
	assert.Equal(t, []string{"y", "x"}, f.dispatch(phase.Update))
	assert.Equal(t, 1, f.reg.Len(phase.Update))
}

func TestDispatch_RegistrationIntoPendingGroupRunsNextPass(t *testing.T) {
	f := newFixture(t)
	spawner, child, z := newActor("spawner"), newActor("child"), newActor("z")
	spawned := false
	f.provider[spawner.ID()] = []binding.Descriptor{{
		Phase: phase.Update,
		Procedure: func() {
			f.rec.Record("spawner")()
			if !spawned {
				spawned = true
				f.reg.RegisterObject(child)
			}
		},
	}}
	f.declare(child, phase.Update, 10, false)
	f.declare(z, phase.Update, 10, false)
	f.reg.RegisterObject(spawner)
	f.reg.RegisterObject(z)

	assert.Equal(t, []string{"spawner", "z"}, f.dispatch(phase.Update), "group 10 exists but the new binding waits")
	assert.Equal(t, []string{"spawner", "z", "child"}, f.dispatch(phase.Update))
}

func TestLive_ExcludesDeadOwners(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("a"), newActor("b")
	f.declare(a, phase.Update, 0, false)
	f.declare(b, phase.Update, 1, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)

	a.Invalidate()
	assert.Equal(t, 2, f.reg.Len(phase.Update), "stored count includes the dead binding")
	assert.Equal(t, 1, f.reg.Live(phase.Update))

	f.reg.UnregisterObject(b)
	assert.Zero(t, f.reg.Live(phase.Update))
}

func TestDispatch_EmptyGroupSkippedByDefault(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("a"), newActor("b")
	f.declare(a, phase.Update, 0, false)
	f.declare(b, phase.Update, 5, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)
	f.reg.UnregisterObject(a)

	assert.Equal(t, SkipEmptyGroups, f.reg.Policy())
	assert.Equal(t, []string{"b"}, f.dispatch(phase.Update))
}

func TestDispatch_EmptyGroupStopsPhaseWithStopPolicy(t *testing.T) {
	f := newFixture(t, WithEmptyGroupPolicy(StopAtEmptyGroup))
	a, b := newActor("a"), newActor("b")
	f.declare(a, phase.Update, 0, false)
	f.declare(b, phase.Update, 5, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)
	f.reg.UnregisterObject(a)

	assert.Empty(t, f.dispatch(phase.Update), "stop policy ends the phase at the first empty group")

	// Clear drops empty groups, so the phase runs again afterwards.
	f.reg.Clear(false)
	f.reg.RegisterObject(b)
	assert.Equal(t, []string{"b"}, f.dispatch(phase.Update))
}

func TestDispatch_UnknownPhaseFailsFast(t *testing.T) {
	f := newFixture(t)
	require.PanicsWithError(t,
		"unknown phase value 9: must be one of update, fixed_update, late_update, debug_draw",
		func() { f.reg.Dispatch(phase.Phase(9)) },
	)
}

func TestRegister_UnknownPhaseFailsFast(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.provider[a.ID()] = []binding.Descriptor{{Phase: phase.Phase(-1), Procedure: func() {}}}

	require.Panics(t, func() { f.reg.RegisterObject(a) })
}

func TestDispatch_CallbackPanicPropagates(t *testing.T) {
	f := newFixture(t)
	a := newActor("a")
	f.provider[a.ID()] = []binding.Descriptor{{Phase: phase.Update, Procedure: func() { panic("boom") }}}
	f.reg.RegisterObject(a)

	require.PanicsWithValue(t, "boom", func() { f.reg.Dispatch(phase.Update) })
}

func TestNew_NilProviderPanics(t *testing.T) {
	require.Panics(t, func() { New(nil) })
}

func TestBindings_SnapshotInDispatchOrder(t *testing.T) {
	f := newFixture(t)
	a, b := newActor("a"), newActor("b")
	f.declare(a, phase.FixedUpdate, 2, true)
	f.declare(b, phase.FixedUpdate, 1, false)
	f.reg.RegisterObject(a)
	f.reg.RegisterObject(b)

	bs := f.reg.Bindings(phase.FixedUpdate)
	require.Len(t, bs, 2)
	assert.Equal(t, b.ID(), bs[0].Owner().ID())
	assert.Equal(t, a.ID(), bs[1].Owner().ID())
	assert.True(t, bs[1].Persistent())
}
