package handlers

// HandlerBundle groups all endpoint handlers into one struct so route
// registration takes a single dependency.
type HandlerBundle struct {
	Requests     *RequestHandler
	Bids         *BidHandler
	Feed         *FeedHandler
	Users        *UserHandler
	Providers    *ProviderHandler
	Devices      *DeviceHandler
	Intelligence *IntelligenceHandler
	Legal        *LegalHandler
}
