package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"worksite/common"

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

	if bizErr, ok := genericErr.(common.BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
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
	if errors.Is(genericErr, ErrNotProjectMember) {
		c.JSON(http.StatusForbidden, &common.ErrorBody{Code: "security.not_project_member", Message: "Not a project member"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInsufficientRole) {
		c.JSON(http.StatusForbidden, &common.ErrorBody{Code: "security.insufficient_project_role", Message: "Insufficient project role"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) || errors.Is(genericErr, common.ErrForbidden) {
		c.JSON(http.StatusForbidden, &common.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrMissingID) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.missing_id", Message: "missing or malformed resource identifier"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrNoActiveAssignment) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "tool.no_active_assignment", Message: "Tool has no active assignment"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "Project not found"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrCorruptProjectRef) {
		c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "integrity.corrupt_project_ref", Message: "stored project reference is invalid"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrOwnerAsMember) || errors.Is(genericErr, ErrMemberSelfGrant) ||
		errors.Is(genericErr, ErrAlreadyAssigned) || errors.Is(genericErr, ErrStockBelowZero) ||
		errors.Is(genericErr, ErrInvalidArguments) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "common.bad_param", Message: genericErr.Error()})
		c.Abort()
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
