// Command relay_load opens many bet stream subscribers against a running relay
// while writers post bets, and reports how many events reached the subscribers.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vadiminshakov/roulette/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type loadConfig struct {
	baseURL     string
	subscribers int
	writers     int
	betEvery    time.Duration
	duration    time.Duration
	rampUp      time.Duration
}

type counters struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	events      atomic.Int64
	posted      atomic.Int64
	postErrs    atomic.Int64
}

func main() {
	var cfg loadConfig

	cmd := &cobra.Command{
		Use:          "relay_load",
		Short:        "Load test the bet history relay",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return run(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&cfg.baseURL, "url", "http://localhost:3000", "relay base URL")
	cmd.Flags().IntVar(&cfg.subscribers, "conns", 500, "number of concurrent stream subscribers")
	cmd.Flags().IntVar(&cfg.writers, "writers", 2, "number of concurrent bet writers")
	cmd.Flags().DurationVar(&cfg.betEvery, "every", 500*time.Millisecond, "pause between bets of one writer")
	cmd.Flags().DurationVar(&cfg.duration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	cmd.Flags().DurationVar(&cfg.rampUp, "ramp", 0, "spread subscriber starts across this window")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg loadConfig, logger *zap.Logger) error {
	if cfg.subscribers <= 0 {
		return fmt.Errorf("invalid conns: %d", cfg.subscribers)
	}
	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")

	if cfg.rampUp == 0 && cfg.subscribers > 100 {
		cfg.rampUp = max(time.Duration(cfg.subscribers/500)*time.Second, time.Second)
		logger.Info("using default ramp-up", zap.Duration("ramp", cfg.rampUp))
	}

	if cfg.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.duration)
		defer cancel()
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     cfg.subscribers + cfg.writers + 100,
			MaxIdleConnsPerHost: cfg.subscribers + cfg.writers + 100,
			DisableCompression:  true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	logger.Info("starting relay load",
		zap.String("url", cfg.baseURL),
		zap.Int("subscribers", cfg.subscribers),
		zap.Int("writers", cfg.writers),
		zap.Duration("duration", cfg.duration))

	var stats counters
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		report(ctx, &stats, start, logger)
		return nil
	})

	for i := 0; i < cfg.writers; i++ {
		player := fmt.Sprintf("0xload%04d", i)
		g.Go(func() error {
			write(ctx, client, cfg, player, &stats)
			return nil
		})
	}

	var interval time.Duration
	if cfg.rampUp > 0 {
		interval = cfg.rampUp / time.Duration(cfg.subscribers)
	}

	for i := 0; i < cfg.subscribers && ctx.Err() == nil; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
		g.Go(func() error {
			subscribe(ctx, client, cfg.baseURL+"/api/bets/stream", &stats)
			return nil
		})
	}

	_ = g.Wait()

	elapsed := max(time.Since(start), time.Millisecond)
	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d events=%d posted=%d post_errs=%d elapsed=%s events/s=%.2f\n",
		stats.connected.Load(),
		stats.connectErrs.Load(),
		stats.streamErrs.Load(),
		stats.events.Load(),
		stats.posted.Load(),
		stats.postErrs.Load(),
		elapsed.Truncate(time.Millisecond),
		float64(stats.events.Load())/elapsed.Seconds(),
	)

	return nil
}

// subscribe counts bet events until ctx is done. Heartbeats and no_data are not counted.
func subscribe(ctx context.Context, client *http.Client, url string, stats *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		stats.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		stats.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		stats.connectErrs.Add(1)
		return
	}
	stats.connected.Add(1)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		if scanner.Text() == "event: bet" {
			stats.events.Add(1)
		}
	}
	if ctx.Err() == nil {
		stats.streamErrs.Add(1)
	}
}

func write(ctx context.Context, client *http.Client, cfg loadConfig, player string, stats *counters) {
	ticker := time.NewTicker(cfg.betEvery)
	defer ticker.Stop()

	categories := domain.Categories()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		result := rand.Intn(domain.MaxNumber + 1)
		rec := domain.NewBetRecord(player, 0.01, string(categories[rand.Intn(len(categories))]), result, rand.Intn(2) == 0)

		body, _ := json.Marshal(rec)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+"/api/bets", bytes.NewReader(body))
		if err != nil {
			stats.postErrs.Add(1)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() == nil {
				stats.postErrs.Add(1)
			}
			continue
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			stats.postErrs.Add(1)
			continue
		}
		stats.posted.Add(1)
	}
}

func report(ctx context.Context, stats *counters, start time.Time, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("status",
				zap.Int64("connected", stats.connected.Load()),
				zap.Int64("connect_errs", stats.connectErrs.Load()),
				zap.Int64("stream_errs", stats.streamErrs.Load()),
				zap.Int64("events", stats.events.Load()),
				zap.Int64("posted", stats.posted.Load()),
				zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))
		}
	}
}
