package filemgr

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"hospitality/metrics"

	"github.com/rs/zerolog"
)

// Uploader turns an image field of a multipart request into a public URL.
type Uploader struct {
	BaseDir       string
	PublicBaseURL string
	ThumbWidth    int
	MaxSize       int64

	log zerolog.Logger
}

func NewUploader(baseDir, publicBaseURL string, log zerolog.Logger) *Uploader {
	return &Uploader{
		BaseDir:       baseDir,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		ThumbWidth:    DefaultThumbWidth,
		MaxSize:       DefaultMaxSize,
		log:           log.With().Str("component", "filemgr").Logger(),
	}
}

// IsMultipart reports whether r carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// HasFile reports whether the parsed multipart form has a file under field.
func HasFile(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}

// UploadEveryImage saves the file under field and returns its public URL.
// A request without that file yields "" and no error.
func (u *Uploader) UploadEveryImage(r *http.Request, field string, entity EntityType) (string, error) {
	if r.MultipartForm == nil {
		if !IsMultipart(r) {
			return "", nil
		}
		if err := r.ParseMultipartForm(u.MaxSize); err != nil {
			return "", fmt.Errorf("parse form: %w", err)
		}
	}
	if !HasFile(r, field) {
		return "", nil
	}

	header := r.MultipartForm.File[field][0]
	file, err := header.Open()
	if err != nil {
		u.count(entity, "failed")
		return "", fmt.Errorf("open %s: %w", field, err)
	}

	name, _, err := SaveImageWithThumb(file, header, u.BaseDir, entity, u.MaxSize, u.ThumbWidth)
	if err != nil && name == "" {
		u.count(entity, "failed")
		u.log.Warn().Err(err).Str("entity", string(entity)).Str("file", header.Filename).Msg("image upload failed")
		return "", err
	}
	if err != nil {
		// the original is stored; a missing thumbnail is not fatal
		u.log.Warn().Err(err).Str("file", name).Msg("thumbnail failed")
	}

	u.count(entity, "ok")
	u.log.Info().Str("entity", string(entity)).Str("file", name).Int64("size", header.Size).Msg("image stored")
	return u.PublicURL(entity, PicPhoto, name), nil
}

// PublicURL is where the file server exposes a stored file.
func (u *Uploader) PublicURL(entity EntityType, picType PictureType, name string) string {
	p := path.Join("/uploads", strings.ToLower(string(entity)), PictureSubfolders[picType], url.PathEscape(name))
	return u.PublicBaseURL + p
}

func (u *Uploader) count(entity EntityType, status string) {
	metrics.ImageUploads.WithLabelValues(string(entity), status).Inc()
}
