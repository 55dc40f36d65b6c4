package constants

import "fmt"

// ============================================================================
// FILE UPLOAD ERRORS
// ============================================================================

const (
	ErrNoFileSent         = "No file was sent"
	ErrNoFileSelected     = "No file selected"
	ErrFileTypeNotAllowed = "File type not allowed. Upload a .xlsx, .xls or .csv report"
	ErrFileTooLarge       = "File size exceeds the maximum limit"
	ErrFileParsingFailed  = "Failed to parse file contents. Please check the file format"
	ErrEmptyFile          = "Uploaded file is empty"
)

// ============================================================================
// DATASET ERRORS
// ============================================================================

const (
	ErrNoDataAvailable = "No data available. Upload a report first"
	ErrRecordNotFound  = "Record not found"
	ErrExportNotFound  = "Export not found or expired"
	ErrExportFailed    = "Failed to export data"
)

// ============================================================================
// INPUT VALIDATION ERRORS
// ============================================================================

const (
	ErrMissingRequiredField = "Required field '%s' is missing"
	ErrInvalidFieldValue    = "Invalid value for field '%s': %s"
	ErrInvalidDateFormat    = "Invalid date format for '%s'. Expected format: YYYY-MM-DD"
	ErrInvalidRowIndex      = "Invalid row index"
)

// ============================================================================
// GENERAL ERRORS
// ============================================================================

const (
	ErrInternalServer = "Internal server error. Please contact support"
)

// ============================================================================
// SUCCESS MESSAGES
// ============================================================================

const (
	SuccessUploaded = "File uploaded and processed successfully. %d records processed"
	SuccessAdded    = "Record added successfully"
	SuccessUpdated  = "Record updated successfully"
	SuccessExported = "Data exported successfully"
)

// ============================================================================
// HELPER FUNCTIONS TO FORMAT ERRORS WITH CONTEXT
// ============================================================================

// FormatError formats an error message with additional context
func FormatError(baseError string, context ...interface{}) string {
	if len(context) == 0 {
		return baseError
	}
	return fmt.Sprintf(baseError, context...)
}

// FormatFieldError formats an error for a specific field
func FormatFieldError(fieldName string, reason string) string {
	return fmt.Sprintf(ErrInvalidFieldValue, fieldName, reason)
}

// FormatMissingFieldError formats a missing field error
func FormatMissingFieldError(fieldName string) string {
	return fmt.Sprintf(ErrMissingRequiredField, fieldName)
}

// FormatDateError formats an invalid date error for a request field
func FormatDateError(fieldName string) string {
	return fmt.Sprintf(ErrInvalidDateFormat, fieldName)
}
