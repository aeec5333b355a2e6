package dto

import "github.com/SscSPs/autoledger/internal/core/domain"

// EnqueueRequest queues a source record for posting.
type EnqueueRequest struct {
	SourceType string `json:"sourceType" binding:"required,sourcetype"`
	SourceID   string `json:"sourceID" binding:"required,max=128"`
}

// SyncQueueParams are the query parameters of a manual queue sync.
type SyncQueueParams struct {
	Limit int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Kind  string `form:"kind" binding:"omitempty,sourcetype"`
}

// ListOutboxParams are the query parameters of the queue listing.
type ListOutboxParams struct {
	Status     string  `form:"status" binding:"omitempty,oneof=pending processing synced error"`
	SourceType string  `form:"sourceType" binding:"omitempty,sourcetype"`
	Limit      int     `form:"limit" binding:"omitempty,min=1,max=500"`
	NextToken  *string `form:"nextToken"`
}

// ToFilter converts the query parameters to a repository filter.
func (p ListOutboxParams) ToFilter() domain.OutboxFilter {
	return domain.OutboxFilter{
		Status:     domain.OutboxStatus(p.Status),
		SourceType: domain.SourceType(p.SourceType),
		Limit:      p.Limit,
		NextToken:  p.NextToken,
	}
}

// ListOutboxResponse is one page of queue items.
type ListOutboxResponse struct {
	Items     []domain.OutboxItem `json:"items"`
	NextToken *string             `json:"nextToken,omitempty"`
}
