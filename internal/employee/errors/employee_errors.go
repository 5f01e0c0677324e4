package employeeerrors

import (
	"net/http"

	"go-leavedesk/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee_not_found",
		http.StatusNotFound,
	)
	ErrNameRequired = apperror.New(
		apperror.CodeInvalidInput,
		"name required",
		http.StatusBadRequest,
	)
	ErrNegativeBalance = apperror.New(
		apperror.CodeInvalidInput,
		"total_leave_balance must not be negative",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
)
