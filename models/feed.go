package models

// FeedItem is one open service request as shown to a provider, carrying the
// provider's own outstanding offer when there is one.
type FeedItem struct {
	ServiceRequest
	MyBid *ServiceFillRequest `json:"myBid,omitempty"`
}
