package submddbrepo

import (
	"time"

	"github.com/coachhub/backend/subm/submdomain"
	"github.com/google/uuid"
)

const athleteIndex = "athlete_uuid-index"

type submRow struct {
	UUID        string  `dynamo:"uuid,hash"`
	AthleteUUID string  `dynamo:"athlete_uuid" index:"athlete_uuid-index,hash"`
	CoachUUID   *string `dynamo:"coach_uuid"`
	ClaimedBy   *string `dynamo:"claimed_by"`

	Title     string `dynamo:"title"`
	Sport     string `dynamo:"sport"`
	Context   string `dynamo:"context"`
	Goals     string `dynamo:"goals"`
	Questions string `dynamo:"questions"`

	VideoStoragePath string `dynamo:"video_storage_path"`
	VideoPlaybackURL string `dynamo:"video_playback_url"`
	VideoDurationSec int    `dynamo:"video_duration_sec"`

	Status     string  `dynamo:"status"`
	ReviewUUID *string `dynamo:"review_uuid"`
	// ReviewItem points at the submission's review from the first draft save on.
	// Only SaveReview sets it; full-item puts carry it over.
	ReviewItem *string `dynamo:"review_item_uuid"`

	FollowupRequested bool `dynamo:"followup_requested"`
	SlaBreach         bool `dynamo:"sla_breach"`

	CreatedAt           time.Time  `dynamo:"created_at"`
	UpdatedAt           time.Time  `dynamo:"updated_at"`
	SubmittedAt         *time.Time `dynamo:"submitted_at"`
	SlaDeadline         *time.Time `dynamo:"sla_deadline"`
	ClaimedAt           *time.Time `dynamo:"claimed_at"`
	CompletedAt         *time.Time `dynamo:"completed_at"`
	ReviewedAt          *time.Time `dynamo:"reviewed_at"`
	FollowupRequestedAt *time.Time `dynamo:"followup_requested_at"`
	FollowupDeadline    *time.Time `dynamo:"followup_deadline"`

	Version int64 `dynamo:"version"` // for optimistic locking
}

type reviewRow struct {
	UUID      string `dynamo:"uuid,hash"`
	SubmUUID  string `dynamo:"subm_uuid" index:"subm_uuid-index,hash"`
	CoachUUID string `dynamo:"coach_uuid"`
	Status    string `dynamo:"status"`

	Summary  string   `dynamo:"summary"`
	Feedback string   `dynamo:"feedback"`
	Drills   []string `dynamo:"drills"`

	CreatedAt     time.Time  `dynamo:"created_at"`
	UpdatedAt     time.Time  `dynamo:"updated_at"`
	PublishedAt   *time.Time `dynamo:"published_at"`
	RepublishedAt *time.Time `dynamo:"republished_at"`

	Version int64 `dynamo:"version"` // for optimistic locking
}

func uuidStr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toSubmRow(s submdomain.Subm) submRow {
	return submRow{
		UUID:                s.UUID.String(),
		AthleteUUID:         s.AthleteUUID.String(),
		CoachUUID:           uuidStr(s.CoachUUID),
		ClaimedBy:           uuidStr(s.ClaimedBy),
		Title:               s.Title,
		Sport:               s.Sport,
		Context:             s.Context,
		Goals:               s.Goals,
		Questions:           s.Questions,
		VideoStoragePath:    s.Video.StoragePath,
		VideoPlaybackURL:    s.Video.PlaybackURL,
		VideoDurationSec:    s.Video.DurationSec,
		Status:              string(s.Status),
		ReviewUUID:          uuidStr(s.ReviewUUID),
		FollowupRequested:   s.FollowupRequested,
		SlaBreach:           s.SlaBreach,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		SubmittedAt:         s.SubmittedAt,
		SlaDeadline:         s.SlaDeadline,
		ClaimedAt:           s.ClaimedAt,
		CompletedAt:         s.CompletedAt,
		ReviewedAt:          s.ReviewedAt,
		FollowupRequestedAt: s.FollowupRequestedAt,
		FollowupDeadline:    s.FollowupDeadline,
		Version:             s.Version,
	}
}

func (row submRow) toDomain() (submdomain.Subm, error) {
	var err error
	s := submdomain.Subm{
		Content: submdomain.Content{
			Title:     row.Title,
			Sport:     row.Sport,
			Context:   row.Context,
			Goals:     row.Goals,
			Questions: row.Questions,
		},
		Video: submdomain.VideoRef{
			StoragePath: row.VideoStoragePath,
			PlaybackURL: row.VideoPlaybackURL,
			DurationSec: row.VideoDurationSec,
		},
		FollowupRequested:   row.FollowupRequested,
		SlaBreach:           row.SlaBreach,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
		SubmittedAt:         row.SubmittedAt,
		SlaDeadline:         row.SlaDeadline,
		ClaimedAt:           row.ClaimedAt,
		CompletedAt:         row.CompletedAt,
		ReviewedAt:          row.ReviewedAt,
		FollowupRequestedAt: row.FollowupRequestedAt,
		FollowupDeadline:    row.FollowupDeadline,
		Version:             row.Version,
	}
	if s.UUID, err = uuid.Parse(row.UUID); err != nil {
		return submdomain.Subm{}, err
	}
	if s.AthleteUUID, err = uuid.Parse(row.AthleteUUID); err != nil {
		return submdomain.Subm{}, err
	}
	if s.CoachUUID, err = parseUUIDPtr(row.CoachUUID); err != nil {
		return submdomain.Subm{}, err
	}
	if s.ClaimedBy, err = parseUUIDPtr(row.ClaimedBy); err != nil {
		return submdomain.Subm{}, err
	}
	if s.ReviewUUID, err = parseUUIDPtr(row.ReviewUUID); err != nil {
		return submdomain.Subm{}, err
	}
	if s.Status, err = submdomain.ParseStatus(row.Status); err != nil {
		return submdomain.Subm{}, err
	}
	return s, nil
}

func toReviewRow(r submdomain.Review, version int64) reviewRow {
	return reviewRow{
		UUID:          r.UUID.String(),
		SubmUUID:      r.SubmUUID.String(),
		CoachUUID:     r.CoachUUID.String(),
		Status:        string(r.Status),
		Summary:       r.Summary,
		Feedback:      r.Feedback,
		Drills:        r.Drills,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		PublishedAt:   r.PublishedAt,
		RepublishedAt: r.RepublishedAt,
		Version:       version,
	}
}

func (row reviewRow) toDomain() (submdomain.Review, error) {
	var err error
	r := submdomain.Review{
		Status: submdomain.ReviewStatus(row.Status),
		ReviewContent: submdomain.ReviewContent{
			Summary:  row.Summary,
			Feedback: row.Feedback,
			Drills:   row.Drills,
		},
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
		PublishedAt:   row.PublishedAt,
		RepublishedAt: row.RepublishedAt,
	}
	if r.UUID, err = uuid.Parse(row.UUID); err != nil {
		return submdomain.Review{}, err
	}
	if r.SubmUUID, err = uuid.Parse(row.SubmUUID); err != nil {
		return submdomain.Review{}, err
	}
	if r.CoachUUID, err = uuid.Parse(row.CoachUUID); err != nil {
		return submdomain.Review{}, err
	}
	return r, nil
}
