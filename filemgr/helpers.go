package filemgr

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

func detectPicType(destDir string) PictureType {
	last := strings.ToLower(filepath.Base(destDir))
	for picType, folder := range PictureSubfolders {
		if folder == last {
			return picType
		}
	}
	return ""
}

func ensureSafeFilename(name, ext string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeName.ReplaceAllString(name, "")
	return name + ext
}

func isExtensionAllowed(ext string, picType PictureType) bool {
	return slices.Contains(AllowedExtensions[picType], ext)
}

func isMIMEAllowed(mimeType string, picType PictureType) bool {
	return slices.Contains(AllowedMIMEs[picType], mimeType)
}

// ResolvePath is the directory holding picType files of entity under baseDir,
// e.g. static/uploads/restaurant/photo.
func ResolvePath(baseDir string, entity EntityType, picType PictureType) string {
	subfolder, ok := PictureSubfolders[picType]
	if !ok || subfolder == "" {
		subfolder = "misc"
	}
	return filepath.Join(baseDir, strings.ToLower(string(entity)), subfolder)
}

func ValidateImageDimensions(img image.Image, maxWidth, maxHeight int) error {
	b := img.Bounds()
	if b.Dx() > maxWidth || b.Dy() > maxHeight {
		return fmt.Errorf("image dimensions %dx%d exceed allowed maximum %dx%d", b.Dx(), b.Dy(), maxWidth, maxHeight)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
