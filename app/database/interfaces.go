package database

type SubscriptionRepository interface {
	// Add registers a destination for a feed URL, creating the subscription
	// when the URL is new. Reports whether the subscription and the
	// destination registration were newly created.
	Add(url, destination string, renderAsImage bool) (*Subscription, bool, bool, error)

	GetByID(id string) (*Subscription, error)
	GetByURL(url string) (*Subscription, error)
	List() ([]Subscription, error)
	ListForDestination(destination string) ([]Subscription, error)
	GetSubscriptionCount() (int, error)

	// RemoveDestination discards a destination from the subscription's set.
	// The subscription record itself is never deleted.
	RemoveDestination(id, destination string) (bool, error)
}

type DeliveryRepository interface {
	Has(feedURL, entryLink string) (bool, error)
	MarkDelivered(feedURL, entryLink string) error
	GetDeliveryCount() (int, error)
}
