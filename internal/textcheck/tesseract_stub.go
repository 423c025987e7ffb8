//go:build !ocr

package textcheck

func NewTesseract(languages []string) (Recognizer, error) {
	return nil, ErrUnavailable
}
