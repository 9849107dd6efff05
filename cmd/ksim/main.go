// Command ksim drives the kernel against the simulated port on the host,
// the way a target-less CI run exercises this kind of firmware: it builds a
// small fixed scenario, ticks the clock by hand, and prints a snapshot of
// scheduler state after each tick. The worker bodies are registered but
// never invoked: ksim only advances the clock and runs the scheduling pass,
// so the workers never sleep and the -sleep value does not affect the
// printed states. It has no real hardware counterpart —
// see port/cm4 for that — and exists purely so the scheduling policy can be
// watched without flashing a board.
//
// Grounded on the reference codebase's -sstpath flag-driven test runner
// idiom (sst_runner_test.go): a small flag.Int/flag.String surface rather
// than a subcommand framework, matching the scale of the tool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	kernel "github.com/coreproc/cm4rtos"
	"github.com/coreproc/cm4rtos/internal/simport"
)

func main() {
	ticks := flag.Int("ticks", 20, "number of simulated clock ticks to run")
	threads := flag.Int("threads", 3, "number of worker threads to register, in addition to idle")
	sleepTicks := flag.Uint("sleep", 4, "ticks each worker sleeps between iterations")
	flag.Parse()

	if *threads < 1 {
		fmt.Fprintln(os.Stderr, "ksim: -threads must be at least 1")
		os.Exit(2)
	}

	port := simport.New()
	k := kernel.New(port)

	var iterations []int
	for i := 0; i < *threads; i++ {
		id := uint32(i + 1)
		idx := i
		iterations = append(iterations, 0)
		entry := func() {
			iterations[idx]++
			k.ThisThread().SleepFor(uint32(*sleepTicks))
		}
		if _, err := kernel.NewThread(k.Scheduler, port, entry, id, make([]uint32, kernel.MinStackWords), 0); err != nil {
			log.Fatalf("ksim: registering thread %d: %v", id, err)
		}
	}
	k.Scheduler.SetIdleThread(kernel.NewIdleThread(port))

	if err := k.Setup(); err != nil {
		log.Fatalf("ksim: setup: %v", err)
	}

	for i := 0; i < *ticks; i++ {
		k.Clock.Update(1)
		k.Scheduler.Run()

		snap := k.Scheduler.Snapshot()
		fmt.Printf("tick=%d active=%d locked=%v\n", snap.LastTick, snap.ActiveID, snap.Locked)
		for _, th := range snap.Threads {
			fmt.Printf("  thread %d: %s (remaining_sleep=%d)\n", th.ID, th.State, th.RemainingSleepTicks)
		}
	}
}
