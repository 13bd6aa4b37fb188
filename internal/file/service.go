// Package file stores question illustrations in the database and serves them
// back to respondent clients. A question references its image through the
// imageUrl field of the survey definition.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Image, error)
	GetByID(ctx context.Context, id uuid.UUID) (Image, error)
	GetMetadataByID(ctx context.Context, id uuid.UUID) (Metadata, error)
	ListByUploader(ctx context.Context, uploadedBy uuid.UUID) ([]Metadata, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("file/service"),
	}
}

// Save reads an uploaded image, verifies it really is one, and stores it. The
// stored content type comes from format sniffing, not the upload headers.
func (s *Service) Save(ctx context.Context, content io.Reader, filename string, uploadedBy uuid.UUID) (Image, error) {
	ctx, span := s.tracer.Start(ctx, "Save")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	data, err := io.ReadAll(io.LimitReader(content, MaxImageSize+1))
	if err != nil {
		span.RecordError(err)
		return Image{}, fmt.Errorf("read image upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return Image{}, internal.ErrImageTooLarge
	}

	contentType, err := SniffImage(data)
	if err != nil {
		logger.Warn("rejected non-image upload",
			zap.String("filename", filename),
			zap.Int("size", len(data)),
		)
		return Image{}, err
	}

	image, err := s.queries.Create(ctx, CreateParams{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "store question image")
		span.RecordError(err)
		return Image{}, err
	}

	logger.Info("question image stored",
		zap.String("imageID", image.ID.String()),
		zap.String("contentType", contentType),
		zap.Int64("size", image.Size),
	)

	return image, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (Image, error) {
	ctx, span := s.tracer.Start(ctx, "GetByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	image, err := s.queries.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, internal.ErrImageNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get question image")
		span.RecordError(err)
		return Image{}, err
	}
	return image, nil
}

func (s *Service) GetMetadataByID(ctx context.Context, id uuid.UUID) (Metadata, error) {
	ctx, span := s.tracer.Start(ctx, "GetMetadataByID")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	metadata, err := s.queries.GetMetadataByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Metadata{}, internal.ErrImageNotFound
		}
		err = databaseutil.WrapDBError(err, logger, "get question image metadata")
		span.RecordError(err)
		return Metadata{}, err
	}
	return metadata, nil
}

func (s *Service) ListByUploader(ctx context.Context, uploadedBy uuid.UUID) ([]Metadata, error) {
	ctx, span := s.tracer.Start(ctx, "ListByUploader")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	items, err := s.queries.ListByUploader(ctx, uploadedBy)
	if err != nil {
		err = databaseutil.WrapDBError(err, logger, "list question images by uploader")
		span.RecordError(err)
		return nil, err
	}
	return items, nil
}

// Delete removes an image. Only the uploader may delete it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, requesterID uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	metadata, err := s.GetMetadataByID(ctx, id)
	if err != nil {
		return err
	}
	if metadata.UploadedBy != requesterID {
		return internal.ErrPermissionDenied
	}

	if err := s.queries.Delete(ctx, id); err != nil {
		err = databaseutil.WrapDBError(err, logger, "delete question image")
		span.RecordError(err)
		return err
	}

	logger.Info("question image deleted", zap.String("imageID", id.String()))
	return nil
}
