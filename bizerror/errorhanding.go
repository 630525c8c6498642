package bizerror

import (
	"assetflow/common"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body).
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &common.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &common.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidPassword) {
		c.JSON(http.StatusUnauthorized, &common.ErrorBody{Code: "security.invalid_password", Message: "invalid password"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrTemplateNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "sequence.template_not_found", Message: "sequence template not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrTemplateExisted) {
		c.JSON(http.StatusConflict, &common.ErrorBody{Code: "sequence.template_existed", Message: "sequence template existed"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrOrderInvalid) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "sequence.order_invalid", Message: "step orders are not contiguous"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrUnknownDecision) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "workflow.unknown_decision", Message: "unknown decision"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrStateInvalid) {
		c.JSON(http.StatusConflict, &common.ErrorBody{Code: "workflow.state_invalid", Message: "detail is not the active step"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrAlreadyFinalized) {
		c.JSON(http.StatusConflict, &common.ErrorBody{Code: "workflow.already_finalized", Message: "workflow is already finalized"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrConcurrentModification) {
		c.JSON(http.StatusConflict, &common.ErrorBody{Code: "workflow.concurrent_modification",
			Message: "concurrent modification", Data: "retriable"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrTenantUnavailable) {
		c.JSON(http.StatusServiceUnavailable, &common.ErrorBody{Code: "tenant.unavailable",
			Message: "tenant database unavailable", Data: "retriable"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrScheduleNotDue) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "maintenance.schedule_not_due", Message: "maintenance schedule is not due"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
