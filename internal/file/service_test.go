package file

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"gleamform/survey-backend/internal"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (Image, error) {
	args := m.Called(ctx, arg)
	image, _ := args.Get(0).(Image)
	return image, args.Error(1)
}

func (m *mockQuerier) GetByID(ctx context.Context, id uuid.UUID) (Image, error) {
	args := m.Called(ctx, id)
	image, _ := args.Get(0).(Image)
	return image, args.Error(1)
}

func (m *mockQuerier) GetMetadataByID(ctx context.Context, id uuid.UUID) (Metadata, error) {
	args := m.Called(ctx, id)
	metadata, _ := args.Get(0).(Metadata)
	return metadata, args.Error(1)
}

func (m *mockQuerier) ListByUploader(ctx context.Context, uploadedBy uuid.UUID) ([]Metadata, error) {
	args := m.Called(ctx, uploadedBy)
	items, _ := args.Get(0).([]Metadata)
	return items, args.Error(1)
}

func (m *mockQuerier) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(querier Querier) *Service {
	return &Service{
		logger:  zap.NewNop(),
		queries: querier,
		tracer:  noop.NewTracerProvider().Tracer("test"),
	}
}

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}

func TestSniffImage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngHeader, "image/png"},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg"},
		{"webp", []byte("RIFF0000WEBPVP8 "), "image/webp"},
		{"gif", []byte("GIF89a trailing"), "image/gif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SniffImage(tt.data)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects non-image data", func(t *testing.T) {
		_, err := SniffImage([]byte("<svg onload=alert(1)>"))
		require.ErrorIs(t, err, internal.ErrInvalidImageFormat)
	})
}

func TestService_Save(t *testing.T) {
	uploaderID := uuid.New()

	t.Run("stores a sniffed image", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("Create", mock.Anything, mock.MatchedBy(func(arg CreateParams) bool {
			return arg.ContentType == "image/png" &&
				arg.Size == int64(len(pngHeader)) &&
				arg.UploadedBy == uploaderID
		})).Return(Image{ID: uuid.New(), ContentType: "image/png"}, nil)

		service := newTestService(querier)

		image, err := service.Save(context.Background(), bytes.NewReader(pngHeader), "diagram.png", uploaderID)
		require.NoError(t, err)
		require.Equal(t, "image/png", image.ContentType)
		querier.AssertExpectations(t)
	})

	t.Run("rejects a fake content type", func(t *testing.T) {
		querier := new(mockQuerier)
		service := newTestService(querier)

		_, err := service.Save(context.Background(), bytes.NewReader([]byte("not an image")), "image.png", uploaderID)
		require.ErrorIs(t, err, internal.ErrInvalidImageFormat)
		querier.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects an oversized upload", func(t *testing.T) {
		big := make([]byte, MaxImageSize+1)
		copy(big, pngHeader)

		service := newTestService(new(mockQuerier))

		_, err := service.Save(context.Background(), bytes.NewReader(big), "huge.png", uploaderID)
		require.ErrorIs(t, err, internal.ErrImageTooLarge)
	})
}

func TestService_Delete(t *testing.T) {
	imageID := uuid.New()
	uploaderID := uuid.New()

	t.Run("only the uploader may delete", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("GetMetadataByID", mock.Anything, imageID).
			Return(Metadata{ID: imageID, UploadedBy: uploaderID}, nil)

		service := newTestService(querier)

		err := service.Delete(context.Background(), imageID, uuid.New())
		require.ErrorIs(t, err, internal.ErrPermissionDenied)
		querier.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes own image", func(t *testing.T) {
		querier := new(mockQuerier)
		querier.On("GetMetadataByID", mock.Anything, imageID).
			Return(Metadata{ID: imageID, UploadedBy: uploaderID}, nil)
		querier.On("Delete", mock.Anything, imageID).Return(nil)

		service := newTestService(querier)

		require.NoError(t, service.Delete(context.Background(), imageID, uploaderID))
		querier.AssertExpectations(t)
	})
}
