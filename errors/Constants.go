package errors

// Sentinel errors. Compare with errors.Is; never compare on Message, which
// is formatted per call site.
var (
	ErrUnknown           = &Error{ErrCode: ERR_UNKNOWN, ErrMessage: "unknown error"}
	ErrInvalidArgument   = &Error{ErrCode: ERR_INVALID_ARGUMENT, ErrMessage: "invalid argument"}
	ErrNotFound          = &Error{ErrCode: ERR_NOT_FOUND, ErrMessage: "not found"}
	ErrStorage           = &Error{ErrCode: ERR_STORAGE, ErrMessage: "storage error"}
	ErrProcessing        = &Error{ErrCode: ERR_PROCESSING, ErrMessage: "processing error"}
	ErrConfiguration     = &Error{ErrCode: ERR_CONFIGURATION, ErrMessage: "configuration error"}
	ErrService           = &Error{ErrCode: ERR_SERVICE, ErrMessage: "service error"}
	ErrThresholdExceeded = &Error{ErrCode: ERR_THRESHOLD_EXCEEDED, ErrMessage: "threshold exceeded"}
	ErrContextCanceled   = &Error{ErrCode: ERR_CONTEXT_CANCELED, ErrMessage: "context canceled"}
	ErrMissingChainData  = &Error{ErrCode: ERR_MISSING_CHAIN_DATA, ErrMessage: "missing chain data"}
	ErrMalformedBurn     = &Error{ErrCode: ERR_MALFORMED_BURN, ErrMessage: "malformed burn transaction"}
	ErrDuplicateIdentity = &Error{ErrCode: ERR_DUPLICATE_IDENTITY, ErrMessage: "duplicate node identity"}
	ErrVersionMismatch   = &Error{ErrCode: ERR_VERSION_MISMATCH, ErrMessage: "snapshot version mismatch"}
)

func NewInvalidArgumentError(message string, params ...interface{}) *Error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}

func NewNotFoundError(message string, params ...interface{}) *Error {
	return New(ERR_NOT_FOUND, message, params...)
}

func NewStorageError(message string, params ...interface{}) *Error {
	return New(ERR_STORAGE, message, params...)
}

func NewProcessingError(message string, params ...interface{}) *Error {
	return New(ERR_PROCESSING, message, params...)
}

func NewConfigurationError(message string, params ...interface{}) *Error {
	return New(ERR_CONFIGURATION, message, params...)
}

func NewServiceError(message string, params ...interface{}) *Error {
	return New(ERR_SERVICE, message, params...)
}

func NewThresholdExceededError(message string, params ...interface{}) *Error {
	return New(ERR_THRESHOLD_EXCEEDED, message, params...)
}

func NewContextCanceledError(message string, params ...interface{}) *Error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}

func NewMissingChainDataError(message string, params ...interface{}) *Error {
	return New(ERR_MISSING_CHAIN_DATA, message, params...)
}

func NewMalformedBurnError(message string, params ...interface{}) *Error {
	return New(ERR_MALFORMED_BURN, message, params...)
}

func NewDuplicateIdentityError(message string, params ...interface{}) *Error {
	return New(ERR_DUPLICATE_IDENTITY, message, params...)
}

func NewVersionMismatchError(message string, params ...interface{}) *Error {
	return New(ERR_VERSION_MISMATCH, message, params...)
}
