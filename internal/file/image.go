package file

import (
	"gleamform/survey-backend/internal"
)

// MaxImageSize bounds uploaded question illustrations. Images embed in the
// respondent page, anything bigger belongs on a CDN.
const MaxImageSize = 5 << 20

// SniffImage detects the actual image format from magic bytes and returns its
// content type. The client-declared Content-Type is never trusted.
func SniffImage(data []byte) (string, error) {
	switch {
	case isJPEG(data):
		return "image/jpeg", nil
	case isPNG(data):
		return "image/png", nil
	case isWebP(data):
		return "image/webp", nil
	case isGIF(data):
		return "image/gif", nil
	}
	return "", internal.ErrInvalidImageFormat
}

func isJPEG(data []byte) bool {
	return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
}

func isPNG(data []byte) bool {
	signature := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	if len(data) < len(signature) {
		return false
	}
	for i, b := range signature {
		if data[i] != b {
			return false
		}
	}
	return true
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

func isGIF(data []byte) bool {
	return len(data) >= 6 && (string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a")
}
