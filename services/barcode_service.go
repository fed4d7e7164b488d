package services

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// BarcodeService decodes EAN/UPC codes from photo bytes. A photo with no
// readable barcode yields ErrNotFound, not a provider failure.
type BarcodeService struct {
	reader gozxing.Reader
}

func NewBarcodeService() *BarcodeService {
	return &BarcodeService{reader: oned.NewMultiFormatUPCEANReader(nil)}
}

func (s *BarcodeService) Decode(imageBytes []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return "", fmt.Errorf("%w: decode image: %v", ErrProvider, err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: binarize image: %v", ErrProvider, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := s.reader.Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: no barcode in image", ErrNotFound)
	}
	return result.GetText(), nil
}
