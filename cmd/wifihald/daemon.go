package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"wifihal/internal/chipdb"
	"wifihal/internal/eventlog"
	"wifihal/internal/hal"
	"wifihal/internal/hal/simhal"
	"wifihal/internal/httpapi"
	"wifihal/internal/manager"
	"wifihal/pkg/types"
)

// daemon owns the simulated HAL, the manager bound to it and the HTTP handler.
type daemon struct {
	opts    *options
	log     zerolog.Logger
	profile types.ChipProfile
	sm      *simhal.ServiceManager
	wifi    *simhal.Wifi
	mgr     *manager.Manager
	journal *eventlog.Journal
	handler http.Handler
}

func loadProfile(dir, device string) (types.ChipProfile, error) {
	var profiles []types.ChipProfile
	if dir != "" {
		var err error
		if profiles, err = chipdb.LoadDir(dir); err != nil {
			return types.ChipProfile{}, fmt.Errorf("load chip profiles: %w", err)
		}
	}
	return chipdb.Select(profiles, device)
}

func newDaemon(o *options, logger zerolog.Logger) (*daemon, error) {
	prof, err := loadProfile(o.profilesDir, o.device)
	if err != nil {
		return nil, err
	}
	specs, err := chipdb.Chips(prof)
	if err != nil {
		return nil, err
	}
	chips := make([]*simhal.Chip, 0, len(specs))
	for _, c := range specs {
		chips = append(chips, simhal.NewChip(c.ID, c.Modes...))
	}

	d := &daemon{
		opts:    o,
		log:     logger,
		profile: prof,
		sm:      simhal.NewServiceManager(),
		wifi:    simhal.NewWifi(chips...),
	}
	var events httpapi.EventSource
	var pub manager.EventPublisher
	if o.eventDB != "" {
		j, err := eventlog.Open(o.eventDB, eventlog.Options{Logger: &logger})
		if err != nil {
			return nil, err
		}
		d.journal = j
		events = j
		pub = j
	}

	d.mgr = manager.NewWithConfig(manager.ManagerConfig{
		ServiceManager: d.sm,
		ServiceName:    o.serviceName,
		Logger:         &logger,
		Publisher:      pub,
		StartRetries:   o.startRetries,
	})
	if err := d.mgr.Initialize(); err != nil {
		d.close()
		return nil, err
	}
	name := o.serviceName
	if name == "" {
		name = hal.ServiceName
	}
	d.sm.Publish(name, d.wifi)
	if !d.mgr.IsReady() {
		d.close()
		return nil, fmt.Errorf("wifi service %s did not bind", name)
	}
	if o.autoStart && !d.mgr.Start() {
		logger.Warn().Msg("auto start failed; use POST /start to retry")
	}

	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(o.maxBodyBytes)
	httpapi.SetRequestTimeout(o.requestTimeout)
	origins := splitCSV(o.corsOrigins)
	httpapi.SetCORSOptions(len(origins) > 0, origins,
		[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		[]string{"Content-Type", "X-Log-Level"})
	d.handler = httpapi.NewMux(d.mgr, events)
	return d, nil
}

// serve runs the HTTP server until ctx is canceled, then shuts it down and
// stops the Wi-Fi service.
func (d *daemon) serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	httpapi.SetBaseContext(gctx)
	defer httpapi.SetBaseContext(nil)
	srv := &http.Server{
		Addr:              d.opts.addr,
		Handler:           d.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		d.log.Info().
			Str("addr", d.opts.addr).
			Str("device", d.profile.Device).
			Int("chips", len(d.profile.Chips)).
			Msg("wifihald listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := d.opts.shutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			d.log.Error().Err(err).Msg("graceful shutdown error")
		}
		d.mgr.Stop()
		return nil
	})
	return g.Wait()
}

func (d *daemon) close() {
	if d.mgr != nil {
		_ = d.mgr.Close()
	}
	if err := d.journal.Close(); err != nil {
		d.log.Warn().Err(err).Msg("close event journal")
	}
}
