package domain

// MaxImageSize is the largest image payload accepted on upload, in bytes.
const MaxImageSize = 10 << 20

// allowedImageTypes lists the image content types accepted on upload.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// IsAllowedImageType checks whether the given content type may be uploaded.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// Image holds an uploaded image as stored alongside its owning record.
type Image struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"-"`
}
