package submsrvc

import (
	"context"
	"time"

	"github.com/coachhub/backend/notify"
	decorator "github.com/coachhub/backend/srvccqs"
	"github.com/coachhub/backend/subm/submdomain"
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/subm/submsrvc/submquery"
	"github.com/coachhub/backend/user"
	"github.com/coachhub/backend/user/auth"
	"github.com/google/uuid"
)

type UserSrvcFacade interface {
	GetUserByUUID(ctx context.Context, uuid uuid.UUID) (user.User, error)
}

type Notifier interface {
	Notify(ctx context.Context, kind notify.Kind, recipient uuid.UUID, p notify.Payload)
	NotifyInbox(ctx context.Context, kind notify.Kind, p notify.Payload)
}

type Config struct {
	Policy submdomain.Policy
	// Videos is optional; without it uploads are trusted and purges leave objects alone.
	Videos     submcmd.VideoStore
	PresignTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewSubmSrvc(repo SubmRepo, userSrvc UserSrvcFacade, notifier Notifier, conf Config) *SubmSrvc {
	now := conf.Now
	if now == nil {
		now = time.Now
	}
	presignTTL := conf.PresignTTL
	if presignTTL <= 0 {
		presignTTL = 12 * time.Hour
	}

	return &SubmSrvc{
		CreateSubm: decorator.LogCmd[submcmd.CreateSubmParams, submdomain.Subm]("CreateSubm",
			submcmd.NewCreateSubmCmd(repo.StoreSubm, getUserRoleFunc(userSrvc), now)),
		CompleteUpload: decorator.LogCmd[submcmd.CompleteUploadParams, submdomain.Subm]("CompleteUpload",
			submcmd.NewCompleteUploadCmd(
				repo.GetSubm,
				repo.UpdateSubm,
				conf.Videos,
				presignTTL,
				notifier.Notify,
				notifier.NotifyInbox,
				conf.Policy,
				now,
			)),
		ClaimSubm: decorator.LogCmd[submcmd.ClaimSubmParams, submdomain.Subm]("ClaimSubm",
			submcmd.NewClaimSubmCmd(repo.GetSubm, repo.ClaimSubm, now)),
		MarkInReview: decorator.LogCmd[submcmd.MarkInReviewParams, submdomain.Subm]("MarkInReview",
			submcmd.NewMarkInReviewCmd(repo.UpdateSubm, now)),
		SaveReviewDraft: decorator.LogCmd[submcmd.SaveReviewDraftParams, submdomain.Review]("SaveReviewDraft",
			submcmd.NewSaveReviewDraftCmd(repo.SaveReview, now)),
		PublishReview: decorator.LogCmd[submcmd.PublishReviewParams, submcmd.PublishReviewResult]("PublishReview",
			submcmd.NewPublishReviewCmd(repo.PublishReview, notifier.Notify, now)),
		RequestFollowup: decorator.LogCmd[submcmd.RequestFollowupParams, submdomain.Subm]("RequestFollowup",
			submcmd.NewRequestFollowupCmd(repo.GetReviewBySubm, repo.UpdateSubm, notifier.Notify, conf.Policy, now)),
		PatchSubm: decorator.LogCmd[submcmd.PatchSubmParams, submdomain.Subm]("PatchSubm",
			submcmd.NewPatchSubmCmd(repo.UpdateSubm, now)),

		ReassignSubm: decorator.LogCmd[submcmd.ReassignSubmParams, submdomain.Subm]("ReassignSubm",
			submcmd.NewReassignSubmCmd(getUserRoleFunc(userSrvc), repo.UpdateSubm, notifier.Notify, now)),
		PurgeDrafts: decorator.LogCmd[submcmd.PurgeDraftsParams, submcmd.PurgeDraftsResult]("PurgeDrafts",
			submcmd.NewPurgeDraftsCmd(repo.ListSubms, repo.DeleteDraft, conf.Videos, conf.Policy, now)),
		FlagSlaBreaches: decorator.LogCmd[submcmd.FlagSlaBreachesParams, submcmd.FlagSlaBreachesResult]("FlagSlaBreaches",
			submcmd.NewFlagSlaBreachesCmd(repo.ListSubms, repo.UpdateSubm, now)),

		GetSubm: decorator.LogQuery[submquery.GetSubmParams, submdomain.Subm]("GetSubm",
			submquery.NewGetSubmQuery(repo.GetSubm)),
		GetReview: decorator.LogQuery[submquery.GetReviewParams, submdomain.Review]("GetReview",
			submquery.NewGetReviewQuery(repo.GetReview, repo.GetReviewBySubm, repo.GetSubm)),
		ListSubms: decorator.LogQuery[submquery.ListSubmsParams, []submdomain.Subm]("ListSubms",
			submquery.NewListSubmsQuery(repo.ListSubms)),
	}
}

func getUserRoleFunc(userSrvc UserSrvcFacade) func(ctx context.Context, userUuid uuid.UUID) (auth.Role, error) {
	return func(ctx context.Context, userUuid uuid.UUID) (auth.Role, error) {
		u, err := userSrvc.GetUserByUUID(ctx, userUuid)
		if err != nil {
			return "", err
		}
		return u.Role, nil
	}
}
