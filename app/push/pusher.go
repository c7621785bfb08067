package push

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lysyi3m/rss-push/app/database"
	"github.com/lysyi3m/rss-push/app/feed"
	"github.com/lysyi3m/rss-push/app/notify"
	"github.com/lysyi3m/rss-push/app/render"
)

const (
	// PacingInterval is slept before every destination send, to stay under
	// externally imposed rate limits.
	PacingInterval = 2 * time.Second

	enrichTimeout = 20 * time.Second
)

// Pusher drives one delivery pass: every subscribed feed is fetched, new
// entries are selected against the dedup store, and each entry is delivered
// to the feed's destinations in chronological order.
type Pusher struct {
	subRepo      database.SubscriptionRepository
	deliveryRepo database.DeliveryRepository
	fetcher      feed.FetcherInterface
	detector     *feed.Detector
	renderer     render.RendererInterface
	notifier     notify.Notifier
	extractor    *feed.ContentExtractor
	httpClient   *http.Client
	userAgent    string
	pacing       time.Duration
	sleep        func(ctx context.Context, d time.Duration) error
}

func NewPusher(subRepo database.SubscriptionRepository, deliveryRepo database.DeliveryRepository,
	fetcher feed.FetcherInterface, detector *feed.Detector, renderer render.RendererInterface,
	notifier notify.Notifier, httpClient *http.Client, userAgent string) *Pusher {
	return &Pusher{
		subRepo:      subRepo,
		deliveryRepo: deliveryRepo,
		fetcher:      fetcher,
		detector:     detector,
		renderer:     renderer,
		notifier:     notifier,
		extractor:    feed.NewContentExtractor(),
		httpClient:   httpClient,
		userAgent:    userAgent,
		pacing:       PacingInterval,
		sleep:        sleepContext,
	}
}

// RunCycle executes one full push pass. Failures are isolated to their
// narrowest scope and reported in the returned outcome; the cycle itself
// never fails.
func (p *Pusher) RunCycle(ctx context.Context) CycleOutcome {
	outcome := CycleOutcome{StartedAt: time.Now()}

	subs, err := p.subRepo.List()
	if err != nil {
		slog.Error("Failed to load subscriptions, skipping cycle", "error", err)
		outcome.Duration = time.Since(outcome.StartedAt)
		return outcome
	}

	for _, sub := range subs {
		if len(sub.Destinations) == 0 {
			continue
		}
		outcome.Feeds = append(outcome.Feeds, p.pushFeed(ctx, sub))
	}

	outcome.Duration = time.Since(outcome.StartedAt)

	slog.Info("Push cycle completed",
		"feeds", len(outcome.Feeds),
		"skipped_feeds", outcome.SkippedFeeds(),
		"delivered", outcome.Delivered(),
		"failed", outcome.Failed(),
		"duration", outcome.Duration.String())

	return outcome
}

func (p *Pusher) pushFeed(ctx context.Context, sub database.Subscription) FeedOutcome {
	outcome := FeedOutcome{FeedURL: sub.URL}

	entries, err := p.fetcher.Fetch(ctx, sub.URL)
	if err != nil {
		slog.Warn("Feed fetch failed, skipping for this cycle", "feed", sub.URL, "error", err)
		outcome.Err = err
		return outcome
	}

	selected, err := p.detector.Run(sub.URL, entries)
	if err != nil {
		slog.Warn("Update detection failed, skipping for this cycle", "feed", sub.URL, "error", err)
		outcome.Err = err
		return outcome
	}

	for _, entry := range selected {
		// Commit the dedup record before any delivery attempt. A crash after
		// this point loses the entry instead of duplicating it; no-duplicate
		// wins over guaranteed delivery.
		if err := p.deliveryRepo.MarkDelivered(sub.URL, entry.Link); err != nil {
			slog.Error("Failed to commit dedup record, skipping entry",
				"feed", sub.URL, "entry", entry.Link, "error", err)
			continue
		}

		outcome.Entries = append(outcome.Entries, p.pushEntry(ctx, sub, entry))
	}

	return outcome
}

func (p *Pusher) pushEntry(ctx context.Context, sub database.Subscription, entry feed.Entry) EntryOutcome {
	outcome := EntryOutcome{Link: entry.Link, Title: entry.Title}

	if sub.RenderAsImage {
		entry = p.enrichEntry(ctx, entry)
	}

	for _, destination := range sub.Destinations {
		if err := p.sleep(ctx, p.pacing); err != nil {
			outcome.Destinations = append(outcome.Destinations,
				DestinationOutcome{Destination: destination, Err: err})
			continue
		}

		outcome.Destinations = append(outcome.Destinations, p.deliverTo(ctx, sub, entry, destination))
	}

	return outcome
}

// deliverTo sends one entry to one destination. Render and delivery errors
// are confined here: siblings still get their sends.
func (p *Pusher) deliverTo(ctx context.Context, sub database.Subscription, entry feed.Entry, destination string) DestinationOutcome {
	outcome := DestinationOutcome{Destination: destination}

	if !sub.RenderAsImage {
		text := fmt.Sprintf("[RSS] %s\n%s", entry.Title, entry.Link)
		if err := p.notifier.SendText(ctx, destination, text); err != nil {
			slog.Error("Delivery failed", "feed", sub.URL, "destination", destination, "error", err)
			outcome.Err = err
		}
		return outcome
	}

	slog.Info("Pushing entry", "feed", sub.URL, "entry", entry.Title, "destination", destination)

	source := entry.SourceTitle
	if source == "" {
		source = "订阅更新"
	}
	notice := fmt.Sprintf("[RSS] %s\n%s", source, entry.Title)
	if err := p.notifier.SendText(ctx, destination, notice); err != nil {
		slog.Error("Delivery failed", "feed", sub.URL, "destination", destination, "error", err)
		outcome.Err = err
		return outcome
	}

	imagePath, err := p.renderer.RenderEntry(ctx, entry)
	if err != nil {
		// Rendering is best-effort; the text notice above already went out.
		slog.Error("Entry render failed", "feed", sub.URL, "entry", entry.Link, "error", err)
		return outcome
	}
	defer func() {
		if err := os.Remove(imagePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove temporary render output", "path", imagePath, "error", err)
		}
	}()

	if err := p.notifier.SendImage(ctx, destination, imagePath); err != nil {
		slog.Error("Image delivery failed", "feed", sub.URL, "destination", destination, "error", err)
		outcome.Err = err
		return outcome
	}

	outcome.Rendered = true
	return outcome
}

// enrichEntry fills an empty entry body with the readable content of the
// linked page. Best-effort: on any failure the entry is returned as-is.
func (p *Pusher) enrichEntry(ctx context.Context, entry feed.Entry) feed.Entry {
	if entry.Body() != "" || entry.Link == "" {
		return entry
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", entry.Link, nil)
	if err != nil {
		return entry
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		slog.Debug("Entry page fetch failed", "entry", entry.Link, "error", err)
		return entry
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entry
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return entry
	}

	content, err := p.extractor.Run(data)
	if err != nil {
		slog.Debug("Entry content extraction failed", "entry", entry.Link, "error", err)
		return entry
	}

	entry.Content = content
	return entry
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
