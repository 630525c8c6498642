package bizerror

import (
	"errors"
	"net/http"
)

var ErrUnauthenticated = errors.New("unauthenticated")
var ErrForbidden = errors.New("forbidden")
var ErrInvalidPassword = errors.New("invalid password")

var ErrTemplateNotFound = errors.New("sequence template not found")
var ErrTemplateExisted = errors.New("sequence template existed")
var ErrOrderInvalid = errors.New("step orders are not contiguous")

var ErrUnknownDecision = errors.New("unknown decision")
var ErrStateInvalid = errors.New("detail is not the active step")
var ErrAlreadyFinalized = errors.New("workflow is already finalized")
var ErrConcurrentModification = errors.New("concurrent modification")
var ErrTenantUnavailable = errors.New("tenant database unavailable")

var ErrScheduleNotDue = errors.New("maintenance schedule is not due")

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
