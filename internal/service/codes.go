package service

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument  = 1000
	ErrCodeMissingRequired  = 1001
	ErrCodeInvalidStatus    = 1002
	ErrCodeInvalidPriority  = 1003
	ErrCodeInvalidParentID  = 1004
	ErrCodeInvalidTag       = 1005
	ErrCodeBlockedExtension = 1010
	ErrCodeBlockedMediaType = 1011
	ErrCodeMissingExtension = 1012
	ErrCodeEmptyFile        = 1013
	ErrCodeFileTooLarge     = 1014
	ErrCodeBatchTooLarge    = 1015

	// Domain state (2xxx)
	ErrCodeTaskNotFound       = 2001
	ErrCodeAttachmentNotFound = 2002
	ErrCodeConflict           = 2101

	// Collaborators (3xxx)
	ErrCodeStoreFailure  = 3001
	ErrCodeUploadFailure = 3002
	ErrCodeDeleteFailure = 3003
	ErrCodeInvalidURL    = 3004

	// Internal (4xxx)
	ErrCodeInternal = 4001
)
