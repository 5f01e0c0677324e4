package employee

import (
	"errors"

	employeeerrors "go-leavedesk/internal/employee/errors"
	"go-leavedesk/internal/shared/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperror.Wrap(err, apperror.CodeConflict, "employee already exists", 409)
		case "23514":
			return employeeerrors.ErrNegativeBalance
		}
	}

	return err
}
