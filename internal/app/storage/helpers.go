package storage

import (
	"database/sql"
	"errors"
)

func convertGetError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
