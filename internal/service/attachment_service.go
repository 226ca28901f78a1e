package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"taskdeck/internal/blobstore"
	"taskdeck/internal/models"
)

const (
	uploadPathPrefix  = "tasks"
	uploadImagesClass = "images"
	uploadFilesClass  = "files"
)

// File is one candidate upload: metadata plus a content stream.
type File struct {
	Meta    FileMeta
	Content io.Reader
}

// AttachmentService orchestrates validation, naming, and blob
// storage for attachments. Task records never reach the blob store
// except through this service.
type AttachmentService struct {
	blobs     blobstore.BlobStore
	validator *FileValidator
}

// NewAttachmentService constructs an AttachmentService.
func NewAttachmentService(blobs blobstore.BlobStore, validator *FileValidator) *AttachmentService {
	if validator == nil {
		validator = NewFileValidator(DefaultLimits())
	}
	return &AttachmentService{blobs: blobs, validator: validator}
}

// Validator exposes the configured rule engine.
func (s *AttachmentService) Validator() *FileValidator {
	return s.validator
}

// UploadOne validates a single file, stores its bytes under a unique
// key, and returns the attachment record (without a task-scoped id;
// the task layer assigns that when linking).
func (s *AttachmentService) UploadOne(ctx context.Context, file File) (models.Attachment, error) {
	var zero models.Attachment
	if s == nil || s.blobs == nil {
		return zero, internalErr(fmt.Errorf("attachment service is not configured"))
	}
	if file.Content == nil {
		return zero, validationErr(fmt.Errorf("file content is required"), ErrCodeMissingRequired)
	}

	isImage := s.validator.IsImageFile(file.Meta)
	if fe := s.validator.Validate(file.Meta, isImage); fe != nil {
		return zero, validationErr(fe, fe.Code)
	}

	key, err := UniqueName(file.Meta.Name)
	if err != nil {
		return zero, internalErr(err)
	}
	class := uploadFilesClass
	if isImage {
		class = uploadImagesClass
	}
	path := strings.Join([]string{uploadPathPrefix, class, key}, "/")

	if _, err := s.blobs.Put(ctx, path, file.Content); err != nil {
		return zero, uploadErr(fmt.Errorf("store %s: %w", file.Meta.Name, err))
	}
	url, err := s.blobs.ResolveURL(path)
	if err != nil {
		return zero, uploadErr(fmt.Errorf("resolve url for %s: %w", file.Meta.Name, err))
	}

	return models.Attachment{
		FileName:   file.Meta.Name,
		FileURL:    url,
		FileType:   file.Meta.MIMEType,
		UploadPath: path,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// UploadMany validates the whole batch first and fails atomically
// with every rejection when any file is unacceptable. Uploads then
// run in input order; a transport failure mid-batch aborts the call
// and leaves earlier blobs in place (no rollback).
func (s *AttachmentService) UploadMany(ctx context.Context, files []File) ([]models.Attachment, error) {
	if s == nil || s.blobs == nil {
		return nil, internalErr(fmt.Errorf("attachment service is not configured"))
	}

	metas := make([]FileMeta, 0, len(files))
	for _, file := range files {
		metas = append(metas, file.Meta)
	}
	if issues := s.validator.ValidateBatch(metas); len(issues) > 0 {
		return nil, validationErr(BatchError{Errors: issues}, issues[0].Code)
	}

	results := make([]models.Attachment, 0, len(files))
	for _, file := range files {
		attachment, err := s.UploadOne(ctx, file)
		if err != nil {
			return nil, err
		}
		results = append(results, attachment)
	}
	return results, nil
}

// DeleteByURL parses the storage key back out of a resolved URL and
// deletes the blob. The two failure modes stay distinguishable: an
// unparsable URL versus a failed delete.
func (s *AttachmentService) DeleteByURL(ctx context.Context, fileURL string) error {
	if s == nil || s.blobs == nil {
		return internalErr(fmt.Errorf("attachment service is not configured"))
	}

	key, err := s.blobs.KeyFromURL(fileURL)
	if err != nil {
		return invalidURLErr(err)
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		return deleteErr(err)
	}
	return nil
}
