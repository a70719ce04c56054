package submcmd

import (
	"context"
	"fmt"
	"time"

	"github.com/coachhub/backend/notify"
	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/srvcerror"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/user/auth"
	"github.com/coachhub/backend/validation"
	"github.com/google/uuid"
)

type CompleteUploadCmd decorator.CmdHandler[CompleteUploadParams, submdomain.Subm]

type CompleteUploadParams struct {
	SubmUUID uuid.UUID
	Athlete  auth.Identity
	Video    submdomain.VideoRef
}

// NewCompleteUploadCmd returns the upload completion command. videos may be nil,
// in which case the uploaded object is neither checked nor presigned.
func NewCompleteUploadCmd(
	getSubm getSubmFunc,
	updateSubm updateSubmFunc,
	videos VideoStore,
	presignTTL time.Duration,
	notifyUser notifyFunc,
	notifyInbox func(ctx context.Context, kind notify.Kind, p notify.Payload),
	policy submdomain.Policy,
	now nowFunc,
) CompleteUploadCmd {
	return completeUploadHandler{
		getSubm:     getSubm,
		updateSubm:  updateSubm,
		videos:      videos,
		presignTTL:  presignTTL,
		notifyUser:  notifyUser,
		notifyInbox: notifyInbox,
		policy:      policy,
		now:         now,
	}
}

type completeUploadHandler struct {
	getSubm     getSubmFunc
	updateSubm  updateSubmFunc
	videos      VideoStore
	presignTTL  time.Duration
	notifyUser  notifyFunc
	notifyInbox func(ctx context.Context, kind notify.Kind, p notify.Payload)
	policy      submdomain.Policy
	now         nowFunc
}

func (h completeUploadHandler) Handle(ctx context.Context, p CompleteUploadParams) (submdomain.Subm, error) {
	if err := validation.Struct(p.Video); err != nil {
		return submdomain.Subm{}, err
	}

	if h.videos != nil {
		video, err := h.checkUploaded(ctx, p)
		if err != nil {
			return submdomain.Subm{}, err
		}
		p.Video = video
	}

	s, err := h.updateSubm(ctx, p.SubmUUID, func(s *submdomain.Subm) error {
		return s.CompleteUpload(p.Athlete, p.Video, h.now(), h.policy)
	})
	if err != nil {
		return submdomain.Subm{}, err
	}

	if s.CoachUUID != nil {
		h.notifyUser(ctx, notify.KindSubmissionReceived, *s.CoachUUID, submPayload(s))
	} else {
		h.notifyInbox(ctx, notify.KindSubmissionReceived, submPayload(s))
	}
	return s, nil
}

// checkUploaded verifies the video object exists and fills in a playback URL.
// Ownership and status are checked first so object existence does not leak.
func (h completeUploadHandler) checkUploaded(ctx context.Context, p CompleteUploadParams) (submdomain.VideoRef, error) {
	cur, err := h.getSubm(ctx, p.SubmUUID)
	if err != nil {
		return submdomain.VideoRef{}, err
	}
	if !cur.IsOwnedBy(p.Athlete) {
		return submdomain.VideoRef{}, srvcerror.ErrForbidden("only the athlete who created the submission may do this")
	}
	if !submdomain.CanTransition(cur.Status, submdomain.EventUploadCompleted) {
		return submdomain.VideoRef{}, submdomain.ErrInvalidTransition(cur.Status, submdomain.EventUploadCompleted)
	}

	video := p.Video
	if video.StoragePath == "" {
		video.StoragePath = cur.Video.StoragePath
	}
	exists, err := h.videos.Exists(ctx, video.StoragePath)
	if err != nil {
		return submdomain.VideoRef{}, fmt.Errorf("failed to check uploaded video: %w", err)
	}
	if !exists {
		return submdomain.VideoRef{}, srvcerror.ErrInvalidRequest("the video has not been uploaded yet")
	}
	if video.PlaybackURL == "" {
		url, err := h.videos.PresignGet(ctx, video.StoragePath, h.presignTTL)
		if err != nil {
			return submdomain.VideoRef{}, fmt.Errorf("failed to presign video: %w", err)
		}
		video.PlaybackURL = url
	}
	return video, nil
}
