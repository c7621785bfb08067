package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/rss-push/app/database"
)

// SyncSubscriptionsTask imports subscriptions from a YAML seed file into the
// store at startup. Existing subscriptions gain any destinations the file
// lists; nothing is ever removed.
type SyncSubscriptionsTask struct {
	Task
	filePath string
	subRepo  database.SubscriptionRepository
}

type seedFile struct {
	Subscriptions []seedSubscription `yaml:"subscriptions"`
}

type seedSubscription struct {
	URL           string   `yaml:"url"`
	Destinations  []string `yaml:"destinations"`
	RenderAsImage *bool    `yaml:"render_as_image"`
}

func NewSyncSubscriptionsTask(filePath string, subRepo database.SubscriptionRepository) *SyncSubscriptionsTask {
	return &SyncSubscriptionsTask{
		Task:     NewTask(TaskTypeSyncSubscriptions),
		filePath: filePath,
		subRepo:  subRepo,
	}
}

func (t *SyncSubscriptionsTask) Execute(ctx context.Context) error {
	data, err := os.ReadFile(t.filePath)
	if err != nil {
		return fmt.Errorf("failed to read subscriptions file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse subscriptions file: %w", err)
	}

	imported := 0
	for _, sub := range seed.Subscriptions {
		if sub.URL == "" {
			slog.Warn("Skipping seed subscription without URL")
			continue
		}

		renderAsImage := true
		if sub.RenderAsImage != nil {
			renderAsImage = *sub.RenderAsImage
		}

		for _, destination := range sub.Destinations {
			_, _, added, err := t.subRepo.Add(sub.URL, destination, renderAsImage)
			if err != nil {
				return fmt.Errorf("failed to import subscription %s: %w", sub.URL, err)
			}
			if added {
				imported++
			}
		}
	}

	slog.Info("Task completed",
		"type", "SyncSubscriptions",
		"file", t.filePath,
		"duration", t.GetDuration(),
		"imported", imported)

	return nil
}
