package leads

import "errors"

var (
	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidPhone is returned when the phone is missing
	ErrInvalidPhone = errors.New("phone is required")

	// ErrInvalidTaxID is returned when the RUC is not exactly 11 digits
	ErrInvalidTaxID = errors.New("tax id must be exactly 11 numeric digits")

	// ErrInvalidArea is returned when the declared area is not positive
	ErrInvalidArea = errors.New("area must be greater than zero")

	// ErrInvalidIntent is returned when the service intent is unknown
	ErrInvalidIntent = errors.New("a concrete service intent is required")

	// ErrDuplicateTaxID is returned when a lead with the same RUC already exists
	ErrDuplicateTaxID = errors.New("a lead with this tax id is already registered")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidStatus is returned on a status value or transition outside
	// new -> contacted -> scheduled -> closed
	ErrInvalidStatus = errors.New("invalid lead status transition")
)
