package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/logging"
)

// VideoContentType is the only accepted video upload type.
const VideoContentType = "video/mp4"

// Folders under which uploads are stored.
const (
	FolderAvatars    = "avatars"
	FolderCovers     = "covers"
	FolderThumbnails = "thumbnails"
	FolderVideos     = "videos"
)

// ObjectStore persists uploaded objects.
type ObjectStore interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Asset describes a stored upload.
type Asset struct {
	URL         string
	Key         string
	ContentType string
	Size        int64
	Duration    float64
}

// Uploader validates, normalises and stores multipart uploads.
type Uploader struct {
	Store     ObjectStore
	Probe     Prober
	MaxWidth  int
	MaxHeight int
	TempDir   string
}

// NewUploader constructs an Uploader for the configured media limits.
func NewUploader(store ObjectStore, cfg config.MediaConfig) *Uploader {
	return &Uploader{
		Store:     store,
		Probe:     FFProbe(cfg.ProbeTimeout),
		MaxWidth:  cfg.ImageMaxWidth,
		MaxHeight: cfg.ImageMaxHeight,
	}
}

// DeclaredType returns the media type declared for a multipart file, without parameters.
func DeclaredType(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

// CheckVideo rejects files not declared as VideoContentType.
func CheckVideo(fh *multipart.FileHeader) error {
	if DeclaredType(fh) != VideoContentType {
		return ErrInvalidFileType
	}
	return nil
}

// UploadImage decodes an image, fits it within the configured bounds and
// stores it as JPEG under folder.
func (u *Uploader) UploadImage(ctx context.Context, folder string, fh *multipart.FileHeader) (Asset, error) {
	if u.Store == nil {
		return Asset{}, ErrStorageUnavailable
	}

	ctx, span := logging.StartSpan(ctx, "media.upload_image")
	defer span.End()

	file, err := fh.Open()
	if err != nil {
		return Asset{}, errors.WithMessage(err, "open image upload")
	}
	defer file.Close()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrInvalidFileType, err)
	}

	if u.MaxWidth > 0 && u.MaxHeight > 0 {
		img = imaging.Fit(img, u.MaxWidth, u.MaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return Asset{}, errors.WithMessage(err, "encode image")
	}

	size := int64(buf.Len())
	key := path.Join(folder, uuid.NewString()+".jpg")
	location, err := u.Store.Save(ctx, key, "image/jpeg", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return Asset{}, errors.WithMessage(err, "store image")
	}

	return Asset{URL: location, Key: key, ContentType: "image/jpeg", Size: size}, nil
}

// UploadVideo stores an mp4 upload and probes its duration. A failed probe
// leaves Duration at zero.
func (u *Uploader) UploadVideo(ctx context.Context, fh *multipart.FileHeader) (Asset, error) {
	if err := CheckVideo(fh); err != nil {
		return Asset{}, err
	}
	if u.Store == nil {
		return Asset{}, ErrStorageUnavailable
	}

	ctx, span := logging.StartSpan(ctx, "media.upload_video")
	defer span.End()
	logger := logging.FromContext(ctx)

	file, err := fh.Open()
	if err != nil {
		return Asset{}, errors.WithMessage(err, "open video upload")
	}
	defer file.Close()

	tmp, err := os.CreateTemp(u.TempDir, "vidtube-upload-*.mp4")
	if err != nil {
		return Asset{}, errors.WithMessage(err, "create spool file")
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	size, err := io.Copy(tmp, file)
	if err != nil {
		return Asset{}, errors.WithMessage(err, "spool video upload")
	}

	var duration float64
	if u.Probe != nil {
		duration, err = u.Probe(ctx, tmp.Name())
		if err != nil {
			logger.Warn("probe video duration", "error", err)
			duration = 0
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return Asset{}, errors.WithMessage(err, "rewind spool file")
	}

	key := path.Join(FolderVideos, uuid.NewString()+".mp4")
	location, err := u.Store.Save(ctx, key, VideoContentType, tmp)
	if err != nil {
		return Asset{}, errors.WithMessage(err, "store video")
	}

	return Asset{URL: location, Key: key, ContentType: VideoContentType, Size: size, Duration: duration}, nil
}
