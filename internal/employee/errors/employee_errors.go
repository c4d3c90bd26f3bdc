package employeeerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	// ErrLeaveBalanceOutOfRange guards the used-leave counter: an adjustment
	// that would push it below zero or past the entitlement is refused without
	// touching the row.
	ErrLeaveBalanceOutOfRange = apperror.New(
		apperror.CodeInvalidState,
		"Leave balance adjustment would leave the valid range",
		http.StatusConflict,
	)
)
