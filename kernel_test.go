package kernel_test

import (
	"testing"

	kernel "github.com/coreproc/cm4rtos"
	"github.com/coreproc/cm4rtos/internal/simport"
	"github.com/stretchr/testify/require"
)

func TestSetupRejectsEmptyScheduler(t *testing.T) {
	port := simport.New()
	k := kernel.New(port)
	err := k.Setup()
	require.Error(t, err)
	_, ok := err.(kernel.InvalidConfigurationError)
	require.True(t, ok, "got %T", err)
}

func TestSetupRejectsMissingIdleThread(t *testing.T) {
	port := simport.New()
	k := kernel.New(port)
	_, err := kernel.NewThread(k.Scheduler, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)

	err = k.Setup()
	require.Error(t, err)
}

func TestSetupActivatesFirstThread(t *testing.T) {
	port := simport.New()
	k := kernel.New(port)
	th, err := kernel.NewThread(k.Scheduler, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)
	k.Scheduler.SetIdleThread(kernel.NewIdleThread(port))

	require.NoError(t, k.Setup())
	require.Equal(t, kernel.StateActive, th.State())
}

func TestEnterRunsTheActiveThreadsEntry(t *testing.T) {
	port := simport.New()
	k := kernel.New(port)

	ran := make(chan struct{})
	_, err := kernel.NewThread(k.Scheduler, port, func() { close(ran) }, 1, newStack(), 0)
	require.NoError(t, err)
	k.Scheduler.SetIdleThread(kernel.NewIdleThread(port))
	require.NoError(t, k.Setup())

	k.Enter()

	select {
	case <-ran:
	default:
		t.Error("Enter did not run the active thread's entry function")
	}
}

func TestSleepForDelegatesToScheduler(t *testing.T) {
	port := simport.New()
	k := kernel.New(port)
	active, err := kernel.NewThread(k.Scheduler, port, func() {}, 1, newStack(), 0)
	require.NoError(t, err)
	k.Scheduler.SetIdleThread(kernel.NewIdleThread(port))
	require.NoError(t, k.Setup())

	k.ThisThread().SleepFor(3)
	require.Equal(t, kernel.StateSleeping, active.State())
}

func TestSetTickFrequencyConfiguresThePort(t *testing.T) {
	port := simport.New()
	k := kernel.New(port)
	k.SetTickFrequency(16_000)
	require.EqualValues(t, 16_000, port.TickCycles())
}
