package submhttp

type Subm struct {
	SubmUUID string  `json:"subm_uuid"`
	Status   string  `json:"status"`
	Athlete  Person  `json:"athlete"`
	Coach    *Person `json:"coach"`

	Title     string `json:"title"`
	Sport     string `json:"sport"`
	Context   string `json:"context"`
	Goals     string `json:"goals"`
	Questions string `json:"questions"`

	Video Video `json:"video"`

	ReviewUUID        *string `json:"review_uuid"`
	FollowupRequested bool    `json:"followup_requested"`
	SlaBreach         bool    `json:"sla_breach"`

	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	SubmittedAt      *string `json:"submitted_at"`
	SlaDeadline      *string `json:"sla_deadline"`
	ClaimedAt        *string `json:"claimed_at"`
	CompletedAt      *string `json:"completed_at"`
	FollowupDeadline *string `json:"followup_deadline"`
}

type Person struct {
	UUID        string `json:"uuid"`
	DisplayName string `json:"display_name"`
}

type Video struct {
	StoragePath string `json:"storage_path"`
	PlaybackURL string `json:"playback_url"`
	DurationSec int    `json:"duration_sec"`
}

type Review struct {
	ReviewUUID    string   `json:"review_uuid"`
	SubmUUID      string   `json:"subm_uuid"`
	Coach         Person   `json:"coach"`
	Status        string   `json:"status"`
	Summary       string   `json:"summary"`
	Feedback      string   `json:"feedback"`
	Drills        []string `json:"drills"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	PublishedAt   *string  `json:"published_at"`
	RepublishedAt *string  `json:"republished_at"`
}

type PublishReviewResponse struct {
	Review Review `json:"review"`
	Subm   Subm   `json:"submission"`
}
