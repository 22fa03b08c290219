package imagegen

import (
	"mime"
	"path"
	"strings"
)

// DefaultExtension is used for MIME types outside the known image set.
const DefaultExtension = ".png"

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ExtensionForMIME maps an image MIME type to a file extension. Parameters and case are
// ignored; unknown or malformed types return DefaultExtension.
func ExtensionForMIME(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(mimeType))
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	if ext, ok := mimeExtensions[mediaType]; ok {
		return ext
	}
	return DefaultExtension
}

// OutputName appends the MIME extension only when filename has none. A bare trailing dot
// counts as no extension.
func OutputName(filename, mimeType string) string {
	if ext := path.Ext(filename); ext != "" && ext != "." {
		return filename
	}
	return strings.TrimRight(filename, ".") + ExtensionForMIME(mimeType)
}
