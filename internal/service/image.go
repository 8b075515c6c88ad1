package service

import (
	"fmt"

	"github.com/giacuong333/marketplace/internal/domain"
	apperrors "github.com/giacuong333/marketplace/pkg/errors"
)

// validateImage checks an uploaded image against the accepted content types
// and size limit. A nil image is fine, uploads are optional.
func validateImage(image *domain.Image) error {
	if image == nil {
		return nil
	}
	if !domain.IsAllowedImageType(image.ContentType) {
		return apperrors.InvalidInput(fmt.Sprintf("unsupported image type %q", image.ContentType))
	}
	if len(image.Data) > domain.MaxImageSize {
		return apperrors.InvalidInput("image exceeds the 10MB size limit")
	}
	if len(image.Data) == 0 {
		return apperrors.InvalidInput("image payload is empty")
	}
	return nil
}
