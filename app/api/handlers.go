package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/rss-push/app/database"
	"github.com/lysyi3m/rss-push/app/push"
	"github.com/lysyi3m/rss-push/app/render"
)

func NewHandler(subRepo database.SubscriptionRepository, deliveryRepo database.DeliveryRepository,
	puller PullerInterface, renderer render.RendererInterface) *Handler {
	return &Handler{
		subRepo:      subRepo,
		deliveryRepo: deliveryRepo,
		puller:       puller,
		renderer:     renderer,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if subCount, err := h.subRepo.GetSubscriptionCount(); err == nil {
		health["subscriptions"] = subCount
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{}

	if subCount, err := h.subRepo.GetSubscriptionCount(); err == nil {
		stats["subscriptions"] = subCount
	}
	if deliveryCount, err := h.deliveryRepo.GetDeliveryCount(); err == nil {
		stats["deliveries"] = deliveryCount
	}

	c.JSON(http.StatusOK, stats)
}

// HandleCommand is the chat-style command surface: a destination sends a
// text message, the reply text (plus an optional preview image) goes back.
func (h *Handler) HandleCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing destination or text"})
		return
	}

	command, ok := ParseCommand(req.Text)
	if !ok {
		c.JSON(http.StatusOK, CommandResponse{Reply: "未知指令，可用：#rss添加 #rss移除 #rss拉取 #rss列表"})
		return
	}

	switch command.Kind {
	case CommandAdd, CommandAutoAdd:
		c.JSON(http.StatusOK, h.addSubscription(command.Arg, req.Destination))
	case CommandRemove:
		c.JSON(http.StatusOK, h.removeSubscription(command.Arg, req.Destination))
	case CommandList:
		c.JSON(http.StatusOK, h.listSubscriptions(req.Destination))
	case CommandPull:
		c.JSON(http.StatusOK, h.pullFeed(c, command.Arg))
	}
}

func (h *Handler) addSubscription(feedURL, destination string) CommandResponse {
	if !isValidFeedURL(feedURL) {
		return CommandResponse{Reply: "请输入有效的RSS链接"}
	}

	sub, subCreated, destAdded, err := h.subRepo.Add(feedURL, destination, true)
	if err != nil {
		slog.Error("Failed to add subscription", "url", feedURL, "destination", destination, "error", err)
		return CommandResponse{Reply: "订阅失败，请稍后重试"}
	}

	switch {
	case subCreated:
		slog.Info("Subscription created", "id", sub.ID, "url", feedURL, "destination", destination)
		return CommandResponse{Reply: "rss解析流设置成功.."}
	case destAdded:
		return CommandResponse{Reply: "群已添加到该rss订阅中.."}
	default:
		return CommandResponse{Reply: "该rss已存在并包含在该群聊.."}
	}
}

func (h *Handler) removeSubscription(id, destination string) CommandResponse {
	sub, err := h.subRepo.GetByID(id)
	if err != nil {
		slog.Error("Failed to look up subscription", "id", id, "error", err)
		return CommandResponse{Reply: "移除失败，请稍后重试"}
	}
	if sub == nil {
		return CommandResponse{Reply: "未找到该订阅，请发送 #rss列表 查看订阅ID"}
	}

	removed, err := h.subRepo.RemoveDestination(sub.ID, destination)
	if err != nil {
		slog.Error("Failed to remove destination", "id", id, "destination", destination, "error", err)
		return CommandResponse{Reply: "移除失败，请稍后重试"}
	}
	if !removed {
		return CommandResponse{Reply: "当前群组未订阅此源，无需移除。"}
	}

	return CommandResponse{Reply: fmt.Sprintf("已取消订阅：%s", sub.URL)}
}

func (h *Handler) listSubscriptions(destination string) CommandResponse {
	subs, err := h.subRepo.ListForDestination(destination)
	if err != nil {
		slog.Error("Failed to list subscriptions", "destination", destination, "error", err)
		return CommandResponse{Reply: "查询失败，请稍后重试"}
	}
	if len(subs) == 0 {
		return CommandResponse{Reply: "当前群组暂无任何RSS订阅。"}
	}

	lines := []string{fmt.Sprintf("≡ 当前群组订阅列表 (%d) ≡", len(subs))}
	for _, sub := range subs {
		lines = append(lines, fmt.Sprintf("[%s] %s", sub.ID, sub.URL))
	}
	lines = append(lines, "----------------", "提示: 使用 #rss移除+订阅ID 取消订阅")

	return CommandResponse{Reply: strings.Join(lines, "\n")}
}

// pullFeed renders a preview of the most recent entry. It bypasses the
// dedup store entirely: a preview is not a delivery.
func (h *Handler) pullFeed(c *gin.Context, feedURL string) CommandResponse {
	if !isValidFeedURL(feedURL) {
		return CommandResponse{Reply: "请提供RSS链接"}
	}

	result, err := h.puller.Pull(c.Request.Context(), feedURL)
	if err != nil {
		if errors.Is(err, push.ErrNoEntries) {
			return CommandResponse{Reply: "拉取成功但无内容.."}
		}
		slog.Error("Manual pull failed", "url", feedURL, "error", err)
		return CommandResponse{Reply: fmt.Sprintf("拉取失败: %v", err)}
	}

	response := CommandResponse{Reply: fmt.Sprintf("最新文章：%s", result.Entry.Title)}

	if result.ImagePath != "" {
		defer func() {
			if err := os.Remove(result.ImagePath); err != nil && !os.IsNotExist(err) {
				slog.Warn("Failed to remove preview image", "path", result.ImagePath, "error", err)
			}
		}()

		data, err := os.ReadFile(result.ImagePath)
		if err != nil {
			slog.Error("Failed to read preview image", "path", result.ImagePath, "error", err)
			response.Reply += "\n生成预览图失败.."
		} else {
			response.ImageBase64 = base64.StdEncoding.EncodeToString(data)
		}
	} else {
		response.Reply += "\n生成预览图失败.."
	}

	return response
}

func (h *Handler) APIListSubscriptions(c *gin.Context) {
	subs, err := h.subRepo.List()
	if err != nil {
		slog.Error("Database error", "operation", "list_subscriptions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list subscriptions"})
		return
	}

	list := make([]map[string]interface{}, 0, len(subs))
	for _, sub := range subs {
		list = append(list, map[string]interface{}{
			"id":              sub.ID,
			"url":             sub.URL,
			"render_as_image": sub.RenderAsImage,
			"destinations":    sub.Destinations,
			"created_at":      sub.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": list})
}

func (h *Handler) APISubscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url or destination"})
		return
	}

	if !isValidFeedURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed URL"})
		return
	}

	renderAsImage := true
	if req.RenderAsImage != nil {
		renderAsImage = *req.RenderAsImage
	}

	sub, subCreated, _, err := h.subRepo.Add(req.URL, req.Destination, renderAsImage)
	if err != nil {
		slog.Error("Failed to add subscription", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add subscription"})
		return
	}

	status := http.StatusOK
	if subCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"id": sub.ID, "url": sub.URL, "destinations": sub.Destinations})
}

func (h *Handler) APIUnsubscribe(c *gin.Context) {
	id := c.Param("id")
	destination := c.Param("destination")

	removed, err := h.subRepo.RemoveDestination(id, destination)
	if err != nil {
		slog.Error("Failed to remove destination", "id", id, "destination", destination, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove destination"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Destination not subscribed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) APIRenderCode(c *gin.Context) {
	var req RenderCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing code"})
		return
	}

	h.serveRendered(c, func() (string, error) {
		return h.renderer.RenderCode(c.Request.Context(), req.Code, req.Language)
	})
}

func (h *Handler) APIRenderMarkdown(c *gin.Context) {
	var req RenderMarkdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing markdown"})
		return
	}

	h.serveRendered(c, func() (string, error) {
		return h.renderer.RenderMarkdown(c.Request.Context(), req.Markdown)
	})
}

// serveRendered streams a render result and removes the temporary file on
// every exit path.
func (h *Handler) serveRendered(c *gin.Context, renderFn func() (string, error)) {
	imagePath, err := renderFn()
	if err != nil {
		slog.Error("Render failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Render failed"})
		return
	}
	defer func() {
		if err := os.Remove(imagePath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove render output", "path", imagePath, "error", err)
		}
	}()

	data, err := os.ReadFile(imagePath)
	if err != nil {
		slog.Error("Failed to read render output", "path", imagePath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Render failed"})
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

func isValidFeedURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
