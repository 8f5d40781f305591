package handler

import (
	"time"

	"peerhelp/internal/notification/models"
)

type NotificationResponse struct {
	ID        string          `json:"id"`
	Category  models.Category `json:"category"`
	Body      string          `json:"body"`
	URL       string          `json:"url,omitempty"`
	SenderID  string          `json:"sender_id,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt time.Time       `json:"created_at"`
}

type ListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Total  int                    `json:"total"`
	Unread int                    `json:"unread"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

type SubscriptionResponse struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	CreatedAt time.Time `json:"created_at"`
}

type DispatchResponse struct {
	NotificationID string            `json:"notification_id"`
	CreatedAt      time.Time         `json:"created_at"`
	Channels       map[string]string `json:"channels"`
}

func toNotificationResponse(n models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Category:  n.Category,
		Body:      n.Body,
		URL:       n.URL,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.SenderID != nil {
		resp.SenderID = n.SenderID.String()
	}
	return resp
}

func toListResponse(p *models.Page, q models.ListQuery) ListResponse {
	items := make([]NotificationResponse, 0, len(p.Items))
	for _, n := range p.Items {
		items = append(items, toNotificationResponse(n))
	}
	return ListResponse{Items: items, Total: p.Total, Unread: p.Unread, Limit: q.Limit, Offset: q.Offset}
}

func toDispatchResponse(r *models.DispatchResult) DispatchResponse {
	channels := make(map[string]string, len(r.Channels))
	for _, c := range r.Channels {
		channels[string(c.Channel)] = string(c.Outcome)
	}
	return DispatchResponse{
		NotificationID: r.Notification.ID.String(),
		CreatedAt:      r.Notification.CreatedAt,
		Channels:       channels,
	}
}
