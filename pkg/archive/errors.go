package archive

import "errors"

var (
	ErrStoreNotFound       = errors.New("database file not found")
	ErrArchiveMalformed    = errors.New("archive does not contain a database snapshot")
	ErrStoreLocked         = errors.New("database file is in use, close the application and retry")
	ErrRestoreNotConfirmed = errors.New("restore replaces all current data and must be confirmed")
)
