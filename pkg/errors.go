package recal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCalibration is returned when no SPE calibration run exists
	// at or before a data run.
	ErrNoCalibration = errors.New("no prior SPE calibration run")
	// ErrMissingGain is returned when a channel has no usable gain.
	ErrMissingGain = errors.New("missing or invalid channel gain")
	// ErrRunMismatch is returned when a batch holds hits from a run
	// other than the one expected for its source file.
	ErrRunMismatch = errors.New("run number mismatch")
	// ErrBadChannel is returned when a hit channel is out of range.
	ErrBadChannel = errors.New("channel out of range")
	// ErrRunFailed flags batches of a run whose calibration could not be loaded.
	ErrRunFailed = errors.New("run calibration failed")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

// ErrParseRun represents a file name from which no run number could be extracted.
type ErrParseRun struct {
	Filename string
	Err      error
}

func (e *ErrParseRun) Error() string {
	return fmt.Sprintf("error parsing run number from %q: %v", e.Filename, e.Err)
}

func (e *ErrParseRun) Unwrap() error { return e.Err }
