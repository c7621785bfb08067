package cfg

type Cfg struct {
	// Storage configuration
	DataDir string

	// Application configuration
	Port              string
	SubscriptionsFile string
	PushInterval      int
	APIAccessKey      string
	WebhookURL        string
	ChromePath        string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
