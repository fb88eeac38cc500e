package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port          string
	BaseUrl       string
	SourceProfile string
	APIAccessKey  string

	// Scraping behavior
	FetchTimeout      int // seconds
	PolitenessDelay   int // seconds between fetches of distinct remote pages
	SchedulerInterval int // seconds
	BatchLimit        int
	RespectRobots     bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
