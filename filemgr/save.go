package filemgr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// SaveFile writes reader into destDir after checking extension, sniffed MIME type
// and size. The picture type is inferred from the last element of destDir.
// customNameFn may return "" to fall back to a random name.
func SaveFile(reader io.Reader, header *multipart.FileHeader, destDir string, maxSize int64, customNameFn func(original string) string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	picType := detectPicType(destDir)
	if picType == "" {
		return "", fmt.Errorf("unknown picture type for folder: %s", destDir)
	}
	if !isExtensionAllowed(ext, picType) {
		return "", fmt.Errorf("%w: %q for %s", ErrInvalidExtension, ext, picType)
	}

	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read header: %w", err)
	}
	mimeType := http.DetectContentType(buf[:n])
	if mimeType == "application/octet-stream" {
		if formMime := header.Header.Get("Content-Type"); formMime != "" {
			mimeType = formMime
		}
	}
	if !isMIMEAllowed(mimeType, picType) {
		return "", fmt.Errorf("%w: %s for %s", ErrInvalidMIME, mimeType, picType)
	}

	if err := ensureDir(destDir); err != nil {
		return "", err
	}

	filename := ""
	if customNameFn != nil {
		filename = strings.TrimSpace(customNameFn(header.Filename))
	}
	if filename == "" {
		filename = uuid.New().String() + ext
	} else {
		filename = ensureSafeFilename(filename, ext)
	}

	fullPath := filepath.Join(destDir, filename)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fullPath, err)
	}
	defer out.Close()

	if _, err := out.Write(buf[:n]); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	// One byte past the limit is enough to detect an oversized upload.
	written, err := io.Copy(out, io.LimitReader(reader, maxSize-int64(n)+1))
	if err != nil {
		return "", fmt.Errorf("write body: %w", err)
	}
	if written+int64(n) > maxSize {
		out.Close()
		os.Remove(fullPath)
		return "", ErrFileTooLarge
	}
	return filename, nil
}

// SaveImageWithThumb stores the original under <entity>/photo and a thumbWidth-wide
// JPEG with the same base name under <entity>/thumb.
func SaveImageWithThumb(file multipart.File, header *multipart.FileHeader, baseDir string, entity EntityType, maxSize int64, thumbWidth int) (string, string, error) {
	defer file.Close()

	buf, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return "", "", fmt.Errorf("read %q: %w", header.Filename, err)
	}
	if int64(len(buf)) > maxSize {
		return "", "", ErrFileTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return "", "", fmt.Errorf("%w: %q: %v", ErrNotAnImage, header.Filename, err)
	}
	if err := ValidateImageDimensions(img, maxDimension, maxDimension); err != nil {
		return "", "", fmt.Errorf("image %q: %w", header.Filename, err)
	}

	origDir := ResolvePath(baseDir, entity, PicPhoto)
	origName, err := SaveFile(bytes.NewReader(buf), header, origDir, maxSize, nil)
	if err != nil {
		return "", "", fmt.Errorf("save original to %q: %w", origDir, err)
	}

	thumbName := strings.TrimSuffix(origName, filepath.Ext(origName)) + ".jpg"
	if err := writeThumbnail(img, filepath.Join(ResolvePath(baseDir, entity, PicThumb), thumbName), thumbWidth); err != nil {
		return origName, "", err
	}
	return origName, thumbName, nil
}

func writeThumbnail(img image.Image, path string, width int) error {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create thumbnail: %w", err)
	}
	defer out.Close()

	resized := imaging.Resize(img, width, 0, imaging.Lanczos) // keeps aspect ratio
	if err := jpeg.Encode(out, resized, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}
