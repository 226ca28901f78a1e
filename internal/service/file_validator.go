package service

import (
	"fmt"
	"strings"
)

const (
	mib = 1 << 20

	// DefaultMaxImageBytes caps a single image upload.
	DefaultMaxImageBytes int64 = 5 * mib
	// DefaultMaxFileBytes caps a single non-image attachment.
	DefaultMaxFileBytes int64 = 25 * mib
	// DefaultMaxBatchBytes caps the summed size of one upload batch.
	DefaultMaxBatchBytes int64 = 100 * mib
)

// blockedExtensions are rejected outright: executables and archives.
var blockedExtensions = map[string]struct{}{
	"exe": {}, "bat": {}, "cmd": {}, "com": {}, "pif": {}, "scr": {},
	"vbs": {}, "js": {}, "jar": {}, "zip": {}, "rar": {}, "7z": {},
}

// blockedMediaTypeFragments reject executable/binary declared types
// even when the extension looks harmless.
var blockedMediaTypeFragments = []string{
	"application/x-msdownload",
	"application/x-executable",
	"application/x-dosexec",
	"application/x-sh",
	"application/x-bat",
	"application/java-archive",
	"application/x-ms-installer",
}

var imageMediaTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/jpg":     {},
	"image/png":     {},
	"image/gif":     {},
	"image/webp":    {},
	"image/bmp":     {},
	"image/svg+xml": {},
	"image/tiff":    {},
}

// imageExtensions is the fallback for files whose MIME type is
// missing or generic.
var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "gif": {}, "webp": {},
	"bmp": {}, "svg": {}, "tiff": {},
}

// FileMeta describes one candidate upload.
type FileMeta struct {
	Name      string
	MIMEType  string
	SizeBytes int64
}

// FileError is a single rejected-file reason. It satisfies error so
// batch errors can carry the full ordered list.
type FileError struct {
	FileName string
	Code     int
	Reason   string
}

func (e FileError) Error() string {
	if e.FileName == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.FileName, e.Reason)
}

// BatchError aggregates every rejection from one batch validation.
type BatchError struct {
	Errors []FileError
}

func (e BatchError) Error() string {
	reasons := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		reasons = append(reasons, fe.Error())
	}
	return fmt.Sprintf("%d file(s) rejected: %s", len(e.Errors), strings.Join(reasons, "; "))
}

// Limits configures the validator's size ceilings.
type Limits struct {
	MaxImageBytes int64
	MaxFileBytes  int64
	MaxBatchBytes int64
}

// DefaultLimits returns the stock ceilings: 5 MiB images, 25 MiB
// attachments, 100 MiB per batch.
func DefaultLimits() Limits {
	return Limits{
		MaxImageBytes: DefaultMaxImageBytes,
		MaxFileBytes:  DefaultMaxFileBytes,
		MaxBatchBytes: DefaultMaxBatchBytes,
	}
}

// FileValidator decides accept/reject for candidate uploads and
// classifies images. It is a pure rule engine with no I/O.
type FileValidator struct {
	limits Limits
}

// NewFileValidator constructs a validator, falling back to defaults
// for non-positive limits.
func NewFileValidator(limits Limits) *FileValidator {
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = DefaultMaxImageBytes
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = DefaultMaxFileBytes
	}
	if limits.MaxBatchBytes <= 0 {
		limits.MaxBatchBytes = DefaultMaxBatchBytes
	}
	return &FileValidator{limits: limits}
}

// Validate applies the rejection rules in order and returns the first
// match, or nil when the file is acceptable.
func (v *FileValidator) Validate(file FileMeta, isImage bool) *FileError {
	ext := extensionOf(file.Name)

	if _, blocked := blockedExtensions[ext]; blocked {
		return &FileError{
			FileName: file.Name,
			Code:     ErrCodeBlockedExtension,
			Reason:   fmt.Sprintf("file type .%s is blocked for security reasons", ext),
		}
	}

	mediaType := strings.ToLower(strings.TrimSpace(file.MIMEType))
	for _, fragment := range blockedMediaTypeFragments {
		if strings.Contains(mediaType, fragment) {
			return &FileError{
				FileName: file.Name,
				Code:     ErrCodeBlockedMediaType,
				Reason:   fmt.Sprintf("media type %s is blocked for security reasons", mediaType),
			}
		}
	}

	if ext == "" {
		return &FileError{
			FileName: file.Name,
			Code:     ErrCodeMissingExtension,
			Reason:   "file name has no extension",
		}
	}

	if file.SizeBytes == 0 {
		return &FileError{
			FileName: file.Name,
			Code:     ErrCodeEmptyFile,
			Reason:   "file is empty",
		}
	}

	limit := v.limits.MaxFileBytes
	class := "attachment"
	if isImage {
		limit = v.limits.MaxImageBytes
		class = "image"
	}
	if file.SizeBytes > limit {
		return &FileError{
			FileName: file.Name,
			Code:     ErrCodeFileTooLarge,
			Reason: fmt.Sprintf("%s is %s, limit is %s",
				class, formatMiB(file.SizeBytes), formatMiB(limit)),
		}
	}

	return nil
}

// IsImageFile classifies a file as an image. The MIME type wins;
// extension is the fallback for missing or generic types.
func (v *FileValidator) IsImageFile(file FileMeta) bool {
	mediaType := strings.ToLower(strings.TrimSpace(file.MIMEType))
	if _, ok := imageMediaTypes[mediaType]; ok {
		return true
	}
	_, ok := imageExtensions[extensionOf(file.Name)]
	return ok
}

// ValidateBatch validates each file individually without
// short-circuiting, then checks the summed size against the batch
// ceiling. An empty result means the whole batch is acceptable.
func (v *FileValidator) ValidateBatch(files []FileMeta) []FileError {
	var issues []FileError
	var total int64

	for _, file := range files {
		total += file.SizeBytes
		if fe := v.Validate(file, v.IsImageFile(file)); fe != nil {
			issues = append(issues, *fe)
		}
	}

	if total > v.limits.MaxBatchBytes {
		issues = append(issues, FileError{
			Code: ErrCodeBatchTooLarge,
			Reason: fmt.Sprintf("batch totals %s, limit is %s",
				formatMiB(total), formatMiB(v.limits.MaxBatchBytes)),
		})
	}

	return issues
}

func extensionOf(name string) string {
	name = strings.ToLower(name)
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}

func formatMiB(size int64) string {
	return fmt.Sprintf("%.2f MiB", float64(size)/float64(mib))
}
