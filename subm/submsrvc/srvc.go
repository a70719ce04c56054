package submsrvc

import (
	"github.com/coachhub/backend/subm/submsrvc/submcmd"
	"github.com/coachhub/backend/subm/submsrvc/submquery"
)

type SubmSrvc struct {
	CreateSubm      submcmd.CreateSubmCmd
	CompleteUpload  submcmd.CompleteUploadCmd
	ClaimSubm       submcmd.ClaimSubmCmd
	MarkInReview    submcmd.MarkInReviewCmd
	SaveReviewDraft submcmd.SaveReviewDraftCmd
	PublishReview   submcmd.PublishReviewCmd
	RequestFollowup submcmd.RequestFollowupCmd
	PatchSubm       submcmd.PatchSubmCmd

	// admin
	ReassignSubm    submcmd.ReassignSubmCmd
	PurgeDrafts     submcmd.PurgeDraftsCmd
	FlagSlaBreaches submcmd.FlagSlaBreachesCmd

	GetSubm   submquery.GetSubmQuery
	GetReview submquery.GetReviewQuery
	ListSubms submquery.ListSubmsQuery
}
