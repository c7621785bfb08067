package api

import (
	"context"

	"github.com/lysyi3m/rss-push/app/database"
	"github.com/lysyi3m/rss-push/app/push"
	"github.com/lysyi3m/rss-push/app/render"
)

// PullerInterface is the manual-pull surface of the push pipeline.
type PullerInterface interface {
	Pull(ctx context.Context, url string) (*push.PullResult, error)
}

var _ PullerInterface = (*push.Pusher)(nil)

type Handler struct {
	subRepo      database.SubscriptionRepository
	deliveryRepo database.DeliveryRepository
	puller       PullerInterface
	renderer     render.RendererInterface
}

type CommandRequest struct {
	Destination string `json:"destination" binding:"required"`
	Text        string `json:"text" binding:"required"`
}

type CommandResponse struct {
	Reply       string `json:"reply"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type RenderCodeRequest struct {
	Code     string `json:"code" binding:"required"`
	Language string `json:"language"`
}

type RenderMarkdownRequest struct {
	Markdown string `json:"markdown" binding:"required"`
}

type SubscribeRequest struct {
	URL           string `json:"url" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	RenderAsImage *bool  `json:"render_as_image"`
}
