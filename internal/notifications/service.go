package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"spool/internal/config"
)

const userAgent = "Spool-Go/0.1.0"

// Event identifies a job milestone worth telling the user about.
type Event string

const (
	EventJobQueued         Event = "job_queued"
	EventDownloadCompleted Event = "download_completed"
	EventSliceCompleted    Event = "slice_completed"
	EventPrintStarted      Event = "print_started"
	EventJobCompleted      Event = "job_completed"
	EventJobReview         Event = "job_review"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries event-specific values referenced by message templates.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		jobEvents:  cfg.Notifications.Jobs,
		errorEvent: cfg.Notifications.Errors,
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	jobEvents  bool
	errorEvent bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if payload == nil {
		payload = Payload{}
	}
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	title := strings.TrimSpace(payload["title"])
	if title == "" {
		title = "model"
	}

	switch event {
	case EventJobQueued:
		if !n.jobEvents {
			return message{}, false
		}
		return message{
			title: "Spool - Queued",
			body:  fmt.Sprintf("Queued for printing: %s", title),
			tags:  []string{"spool", "queue", "added"},
		}, true
	case EventDownloadCompleted:
		// Download completion is a noisy intermediate step; stay quiet.
		return message{}, false
	case EventSliceCompleted:
		if !n.jobEvents {
			return message{}, false
		}
		body := fmt.Sprintf("Sliced: %s", title)
		if estimate := strings.TrimSpace(payload["estimate"]); estimate != "" {
			body = fmt.Sprintf("%s\nEstimated print time: %s", body, estimate)
		}
		return message{
			title: "Spool - Sliced",
			body:  body,
			tags:  []string{"spool", "slice", "completed"},
		}, true
	case EventPrintStarted:
		if !n.jobEvents {
			return message{}, false
		}
		return message{
			title: "Spool - Printing",
			body:  fmt.Sprintf("Print started: %s", title),
			tags:  []string{"spool", "print", "started"},
		}, true
	case EventJobCompleted:
		if !n.jobEvents {
			return message{}, false
		}
		return message{
			title:    "Spool - Complete",
			body:     fmt.Sprintf("Print job handed to printer: %s", title),
			tags:     []string{"spool", "print", "completed"},
			priority: "high",
		}, true
	case EventJobReview:
		if !n.jobEvents {
			return message{}, false
		}
		body := fmt.Sprintf("Needs attention: %s", title)
		if reason := strings.TrimSpace(payload["reason"]); reason != "" {
			body = fmt.Sprintf("%s\n%s", body, reason)
		}
		return message{
			title:    "Spool - Review",
			body:     body,
			tags:     []string{"spool", "review", "warning"},
			priority: "high",
		}, true
	case EventError:
		if !n.errorEvent {
			return message{}, false
		}
		var builder strings.Builder
		builder.WriteString("Error")
		if contextLabel := strings.TrimSpace(payload["context"]); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := strings.TrimSpace(payload["error"]); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Spool - Error",
			body:     builder.String(),
			tags:     []string{"spool", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Spool - Test",
			body:     "Notification system test",
			tags:     []string{"spool", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
