package errors

import (
	"github.com/sirupsen/logrus"
)

// Process exit codes returned by Reporter.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2
	ExitBitstream  = 3
	ExitPersistent = 4
)

// Reporter logs command failures and maps them to exit codes.
type Reporter struct {
	logger *logrus.Logger
}

// NewReporter creates a new error reporter.
func NewReporter(logger *logrus.Logger) *Reporter {
	return &Reporter{
		logger: logger,
	}
}

// Report logs err and returns the exit code for it.
func (r *Reporter) Report(err error) int {
	if err == nil {
		return ExitOK
	}

	appErr, ok := GetAppError(err)
	if !ok {
		appErr = WrapInternalError(err, "an unexpected error occurred")
	}

	fields := logrus.Fields{
		"error_type": appErr.Type,
	}
	if appErr.Code != "" {
		fields["error_code"] = appErr.Code
	}
	for k, v := range appErr.Details {
		fields[k] = v
	}

	r.logger.WithFields(fields).WithError(err).Error("Command failed")

	return ExitCode(appErr.Type)
}

// ExitCode maps an error type to a process exit code.
func ExitCode(errType ErrorType) int {
	switch errType {
	case ErrorTypeValidation:
		return ExitUsage
	case ErrorTypeUnresolvedReference, ErrorTypeEncodingOverflow,
		ErrorTypeInvalidSyntax, ErrorTypeMissingModel, ErrorTypeCursorExhausted:
		return ExitBitstream
	case ErrorTypeStorage:
		return ExitPersistent
	default:
		return ExitFailure
	}
}
