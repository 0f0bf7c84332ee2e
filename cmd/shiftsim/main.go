// README: Shift simulator CLI; runs simulated trips for one driver and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roadie/internal/config"
	"roadie/internal/events"
	"roadie/internal/logging"
	"roadie/internal/modules/location"
	"roadie/internal/modules/pricing"
	"roadie/internal/modules/shift"
	"roadie/internal/types"
)

type options struct {
	Trips       int
	DeclineEach int
	Interval    time.Duration
	Seed        uint64
	Verbose     bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var opts options
	flag.IntVar(&opts.Trips, "trips", 5, "number of trips to complete")
	flag.IntVar(&opts.DeclineEach, "decline-every", 0, "decline every Nth offer (0 never declines)")
	flag.DurationVar(&opts.Interval, "interval", time.Millisecond, "animation tick")
	flag.Uint64Var(&opts.Seed, "seed", cfg.Shift.Seed, "random seed")
	flag.BoolVar(&opts.Verbose, "v", false, "log domain events")
	flag.Parse()

	level := cfg.Log.Level
	if opts.Verbose {
		level = "debug"
	}
	log := logging.NewLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := &events.Memory{}
	pricingSvc := pricing.NewService(pricing.NewStore(pricing.RateFromConfig(pricing.KindShift, cfg.Shift.Pricing)))
	svc := shift.NewService(shift.NewStore(), pricingSvc, location.NewSampler(opts.Seed), cfg.Shift, recorder)

	const driver types.ID = "simulator"
	if _, err := svc.StartShift(ctx, driver); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println("== Trips ==")
	offers := 0
	for completed := 0; completed < opts.Trips; {
		trip, err := svc.RequestTrip(ctx, driver)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		offers++
		if opts.DeclineEach > 0 && offers%opts.DeclineEach == 0 {
			if _, err := svc.Decline(ctx, driver); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			fmt.Printf("DECLINE %s %.2f km fare=%.2f\n", trip.ID, trip.DistanceKm, trip.Fare)
			continue
		}
		if _, err := svc.Accept(ctx, driver); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := svc.RunAnimation(ctx, driver, opts.Interval, nil); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		completed++
		fmt.Printf("DONE    %s %.2f km eta=%.1fmin fare=%.2f\n", trip.ID, trip.DistanceKm, trip.EtaMin, trip.Fare)
	}

	sess, err := svc.Get(ctx, driver)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts.Verbose {
		for _, e := range recorder.Events() {
			log.Debug("domain_event", "type", e.Type, "from", e.From, "to", e.To)
		}
	}

	fmt.Println("\n== Summary ==")
	fmt.Printf("TRIPS=%d DECLINED=%d EARNINGS=%.2f %s\n", sess.TripsCompleted, sess.TripsDeclined, sess.Earnings, cfg.Shift.Pricing.Currency)
	fmt.Printf("POSITION=%.5f,%.5f EVENTS=%d\n", sess.Position.Lat, sess.Position.Lng, len(recorder.Events()))
}
