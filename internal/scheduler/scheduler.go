package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/jmle94/openaq-dashboard/internal/airquality"
	"github.com/jmle94/openaq-dashboard/internal/openaq"
)

// Scheduler periodically invalidates the query cache and re-primes the
// reference listings the dashboard reads on every interaction, so
// interactive requests mostly hit warm cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *airquality.Service
	countries []string
	interval  time.Duration
}

// New creates a Scheduler warming the given country codes.
func New(countries []string, interval time.Duration, service *airquality.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		countries: countries,
		interval:  interval,
	}
}

// Start schedules the periodic warm job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running cache warm job")
		s.warm()
		log.Println("scheduler: completed cache warm job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) warm() {
	s.service.Refresh()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.service.Countries(ctx); err != nil {
		log.Printf("scheduler: warm countries failed: %v", err)
	}
	if _, err := s.service.Parameters(ctx); err != nil {
		log.Printf("scheduler: warm parameters failed: %v", err)
	}

	var wg sync.WaitGroup
	for _, country := range s.countries {
		country := country
		wg.Add(1)
		go func() {
			defer wg.Done()

			locCtx, locCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer locCancel()

			if _, err := s.service.Locations(locCtx, openaq.LocationFilter{Country: country}); err != nil {
				log.Printf("scheduler: warm locations failed for %s: %v", country, err)
			}
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
