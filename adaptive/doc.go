// Package adaptive implements closed-loop quality control for generation
// pipelines. When measured throughput falls below a configured threshold the
// controller degrades a work budget multiplicatively until it reaches a
// protective floor, trading output volume for responsiveness.
//
// # Core Components
//
// Controller holds the budget and reacts to throughput samples:
//
//	ctrl, err := adaptive.New(100, 30,
//	    adaptive.WithFloor(20),
//	    adaptive.WithDegradeFactor(0.75),
//	    adaptive.WithApply(func(budget int) { runner.SetBudget(budget) }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl.OnSample(22.5) // below threshold: degrade and notify
//
// Sampler counts processed units and converts them into per-second rates on a
// fixed interval, delivering each rate to the controller from a single
// goroutine:
//
//	sampler, _ := adaptive.NewSampler(ctrl, time.Second)
//	sampler.Start(ctx)
//	defer sampler.Stop(5 * time.Second)
//
//	// in the hot path
//	sampler.Mark()
//
// # Degradation Contract
//
// Every sample below the threshold triggers the warn callback, even when the
// budget is already pinned at the floor. The apply callback fires only when
// the budget actually decreases. New budgets are computed by multiplying the
// current budget by the degrade factor, truncating toward zero, and clamping
// to the floor. With the defaults (factor 0.75, floor 20) a budget of 100
// under sustained low throughput steps through 75, 56, 42, 31, 23, 20.
//
// Samples at or above the threshold are ignored; the budget never recovers on
// its own. Hosts that want recovery re-enable or reconstruct the controller
// with a fresh budget.
//
// # Thread Safety
//
// All Controller and Sampler methods are safe for concurrent use. Callbacks
// are invoked outside the controller's lock, so they may call back into the
// controller without deadlocking.
package adaptive
