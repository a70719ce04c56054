package submhttp

import (
	"fmt"
	"net/http"

	"github.com/coachhub/backend/srvcerror"
)

const ErrCodeTooManyRequests = "too_many_requests"

func errSubmTooFrequent(interval int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeTooManyRequests,
		fmt.Sprintf("please wait %d seconds between submissions", interval),
	).SetHttpStatusCode(http.StatusTooManyRequests)
}

func errInvalidUUID(param string) *srvcerror.Error {
	return srvcerror.ErrInvalidRequest(fmt.Sprintf("%s is not a valid uuid", param))
}
