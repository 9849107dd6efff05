package kernel_test

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"

	kernel "github.com/coreproc/cm4rtos"
	"github.com/coreproc/cm4rtos/internal/simport"
	"github.com/stretchr/testify/require"
)

var scenarioPath = flag.String("scenariopath", "testdata/scenarios", "directory containing scenario JSON fixtures")

// scenarioSkip lists fixtures not yet backed by a runner case, the same
// role sstSkip plays for the reference codebase's instruction fixtures.
var scenarioSkip = map[string]string{}

type scenarioFile struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`

	SleepTicks        uint32 `json:"sleep_ticks"`
	Advances          []uint32 `json:"advances"`
	WantSleepingAfter []bool   `json:"want_sleeping_after"`

	Releases           int   `json:"releases"`
	WantCountAfterEach []int `json:"want_count_after_each"`

	RegisterCount int `json:"register_count"`

	Iterations int `json:"iterations"`

	TimeoutTicks  uint32 `json:"timeout_ticks"`
	ReleaseAtTick uint32 `json:"release_at_tick"`
}

func TestScenarioFixtures(t *testing.T) {
	entries, err := os.ReadDir(*scenarioPath)
	require.NoError(t, err)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		name := entry.Name()
		t.Run(name, func(t *testing.T) {
			if reason, skip := scenarioSkip[name]; skip {
				t.Skip(reason)
			}

			data, err := os.ReadFile(filepath.Join(*scenarioPath, name))
			require.NoError(t, err)
			var sc scenarioFile
			require.NoError(t, json.Unmarshal(data, &sc))

			switch sc.Kind {
			case "sleep_wake":
				runSleepWakeScenario(t, sc)
			case "binary_semaphore_release_clamps":
				runBinarySemaphoreReleaseScenario(t, sc)
			case "capacity_exceeded":
				runCapacityExceededScenario(t, sc)
			case "idle_fallback":
				runIdleFallbackScenario(t, sc)
			case "ping_pong_binary_semaphore":
				runPingPongBinarySemaphoreScenario(t, sc)
			case "timed_acquire_succeeds_late":
				runTimedAcquireSucceedsLateScenario(t, sc)
			case "timed_acquire_expires":
				runTimedAcquireExpiresScenario(t, sc)
			default:
				t.Fatalf("unknown scenario kind %q", sc.Kind)
			}
		})
	}
}

func runSleepWakeScenario(t *testing.T, sc scenarioFile) {
	require.Equal(t, len(sc.Advances), len(sc.WantSleepingAfter), "fixture malformed: advances and want_sleeping_after must be the same length")

	port := simport.New()
	clock := &kernel.SystemClock{}
	sched := kernel.NewScheduler(port, clock)

	a, err := kernel.NewThread(sched, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)
	_, err = kernel.NewThread(sched, port, func() {}, 2, newStack(), 0)
	require.NoError(t, err)
	sched.SetIdleThread(kernel.NewIdleThread(port))

	sched.SleepThread(sc.SleepTicks)
	port.SwitchPending()

	for i, delta := range sc.Advances {
		clock.Update(delta)
		sched.Run()
		require.Equal(t, sc.WantSleepingAfter[i], a.State() == kernel.StateSleeping, "after advance %d", i)
	}
}

func runBinarySemaphoreReleaseScenario(t *testing.T, sc scenarioFile) {
	require.Equal(t, sc.Releases, len(sc.WantCountAfterEach), "fixture malformed: releases and want_count_after_each must be the same length")

	port := simport.New()
	sched := kernel.NewScheduler(port, &kernel.SystemClock{})
	sem, err := kernel.NewBinarySemaphore(sched, port, 0)
	require.NoError(t, err)

	for i := 0; i < sc.Releases; i++ {
		sem.Release()
		require.EqualValues(t, sc.WantCountAfterEach[i], sem.Count(), "after release %d", i)
	}
}

func runCapacityExceededScenario(t *testing.T, sc scenarioFile) {
	port := simport.New()
	sched := kernel.NewScheduler(port, &kernel.SystemClock{})

	var lastErr error
	for i := 0; i < sc.RegisterCount; i++ {
		_, lastErr = kernel.NewThread(sched, port, func() {}, uint32(i), newStack(), 0)
		if lastErr != nil {
			break
		}
	}
	require.Error(t, lastErr)
	_, ok := lastErr.(kernel.CapacityExceededError)
	require.True(t, ok, "got %T", lastErr)
}

func runIdleFallbackScenario(t *testing.T, sc scenarioFile) {
	port := simport.New()
	sched := kernel.NewScheduler(port, &kernel.SystemClock{})
	for i := 0; i < sc.RegisterCount; i++ {
		_, err := kernel.NewThread(sched, port, func() {}, uint32(i+1), newStack(), 0)
		require.NoError(t, err)
	}
	idle := kernel.NewIdleThread(port)
	sched.SetIdleThread(idle)

	sched.SuspendThread()

	pending := port.PendingTCB()
	require.NotNil(t, pending)
	require.Equal(t, idle.ID(), pending.Thread().ID())
}

// runPingPongBinarySemaphoreScenario drives the ping-pong exchange named by
// the fixture without real concurrency: each iteration's Acquire call on an
// empty semaphore queues the caller and yields to the other, Pending,
// thread; the matching Release hands the unit straight back to the queued
// waiter (ref semaphore.go's doc comment). Count must stay at 0 across every
// iteration — the regression this scenario exists to guard is the one in
// the design notes' "Semaphore double-decrement" entry, where a stray
// decrement on resume wraps count instead.
func runPingPongBinarySemaphoreScenario(t *testing.T, sc scenarioFile) {
	port := simport.New()
	sched := kernel.NewScheduler(port, &kernel.SystemClock{})
	a, err := kernel.NewThread(sched, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)
	b, err := kernel.NewThread(sched, port, func() {}, 2, newStack(), 0)
	require.NoError(t, err)
	sched.SetIdleThread(kernel.NewIdleThread(port))

	sem, err := kernel.NewBinarySemaphore(sched, port, 0)
	require.NoError(t, err)

	for i := 0; i < sc.Iterations; i++ {
		sem.Acquire()
		sem.Release()
		require.EqualValuesf(t, 0, sem.Count(), "count drifted from 0 after iteration %d", i)
	}

	require.NotEqual(t, kernel.StateSuspended, a.State(), "no thread should be left parked at the end")
	require.NotEqual(t, kernel.StateSuspended, b.State(), "no thread should be left parked at the end")
}

// runTimedAcquireSucceedsLateScenario and runTimedAcquireExpiresScenario
// exercise the same tick-by-tick contract Semaphore.TryAcquireFor promises
// on real hardware, where a tick ISR advances the clock between the
// primitive's internal sleep-and-recheck iterations. On the host nothing
// drives the clock concurrently with a single blocked call (ref DESIGN.md's
// "Host-synchronous execution model"), so calling TryAcquireFor directly
// here with count staying at 0 would spin forever: elapsed can never grow
// between its loop iterations without an external tick source. These
// scenarios instead play the tick ISR's role explicitly, checking
// availability once per simulated tick with TryAcquire, the same
// non-blocking primitive TryAcquireFor itself polls on each iteration.
func runTimedAcquireSucceedsLateScenario(t *testing.T, sc scenarioFile) {
	port := simport.New()
	clock := &kernel.SystemClock{}
	sched := kernel.NewScheduler(port, clock)
	_, err := kernel.NewThread(sched, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)
	sched.SetIdleThread(kernel.NewIdleThread(port))

	sem, err := kernel.NewSemaphore(sched, port, 0, 1)
	require.NoError(t, err)

	var acquiredAtTick uint32
	for tick := uint32(1); tick <= sc.TimeoutTicks; tick++ {
		clock.Update(1)
		if tick == sc.ReleaseAtTick {
			sem.Release()
		}
		if sem.TryAcquire() {
			acquiredAtTick = tick
			break
		}
	}

	require.NotZero(t, acquiredAtTick, "expected the acquire to succeed within the timeout")
	require.GreaterOrEqual(t, acquiredAtTick, sc.ReleaseAtTick)

	// The one branch of TryAcquireFor's retry loop the host model can drive
	// directly: a unit already available on entry returns true immediately,
	// without ever sleeping. The loop above consumed the released unit, so
	// one more is released first.
	sem.Release()
	require.True(t, sem.TryAcquireFor(sc.TimeoutTicks))
}

func runTimedAcquireExpiresScenario(t *testing.T, sc scenarioFile) {
	port := simport.New()
	clock := &kernel.SystemClock{}
	sched := kernel.NewScheduler(port, clock)
	_, err := kernel.NewThread(sched, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)
	sched.SetIdleThread(kernel.NewIdleThread(port))

	sem, err := kernel.NewSemaphore(sched, port, 0, 1)
	require.NoError(t, err)

	acquired := false
	for tick := uint32(1); tick <= sc.TimeoutTicks; tick++ {
		clock.Update(1)
		if sem.TryAcquire() {
			acquired = true
			break
		}
	}
	require.False(t, acquired, "no release occurred; the acquire must never succeed")

	// The other branch TryAcquireFor's retry loop can reach directly on the
	// host: an immediate timeout (no ticks to wait out) returns false
	// without sleeping.
	require.False(t, sem.TryAcquireFor(0))
}
