// Package repository contains the MySQL data access layer. Sentinel errors
// defined here let the service layer distinguish missing rows and unique
// key conflicts from real database failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrUserNotFound is returned when no non-deleted user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when an insert or update hits the unique
	// email index.
	ErrEmailExists = errors.New("email already exists")
	// ErrTokenNotFound is returned when no active session row matches.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTaskNotFound is returned when a task does not exist or belongs to
	// another user.
	ErrTaskNotFound = errors.New("task not found")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
