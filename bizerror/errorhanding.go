package bizerror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"lattice/domain"
	"lattice/misc"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// authorization decision outcomes
	ErrScopeNotSpecified = errors.New("scope not specified")
	ErrScopeIdMissing    = errors.New("scope id missing")
	ErrNotAMember        = errors.New("not a member")
	ErrInsufficientRole  = errors.New("insufficient role")

	ErrNotFound          = errors.New("not found")
	ErrInvalidArguments  = errors.New("invalid arguments")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrMemberSelfGrant   = errors.New("member can not grant for themselves")
	ErrLastOwnerDelete   = errors.New("the last owner can not be removed")
	ErrSlugAlreadyExists = errors.New("slug already exists")
)

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
			err = fmt.Errorf("%s", ret)
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
		c.JSON(respond.Status, &misc.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	if errors.Is(genericErr, ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, &misc.ErrorBody{Code: "common.unauthenticated", Message: "unauthenticated"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrScopeNotSpecified) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "security.scope_not_specified", Message: "scope not specified"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrScopeIdMissing) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "security.scope_id_missing", Message: "scope id missing"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrNotAMember) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "security.not_a_member", Message: "not a member of the scope"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInsufficientRole) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "security.insufficient_role", Message: "insufficient role"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrForbidden) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "security.forbidden", Message: "access forbidden"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrMemberSelfGrant) {
		c.JSON(http.StatusForbidden, &misc.ErrorBody{Code: "membership.self_grant", Message: "member can not grant for themselves"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrLastOwnerDelete) {
		c.JSON(http.StatusConflict, &misc.ErrorBody{Code: "membership.last_owner_delete", Message: "the last owner can not be removed"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrInvalidPassword) {
		c.JSON(http.StatusBadRequest, &misc.ErrorBody{Code: "account.invalid_password", Message: "invalid password"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, ErrSlugAlreadyExists) {
		c.JSON(http.StatusConflict, &misc.ErrorBody{Code: "project.slug_existed", Message: "slug already exists"})
		c.Abort()
		return
	}
	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, domain.ErrNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &misc.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &misc.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
