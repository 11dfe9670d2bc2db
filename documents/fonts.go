package documents

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// pdfFamily is the name every PDF registers its UTF-8 font under.
const pdfFamily = "body"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// Fonts are TrueType files embedded into every PDF. Text is written as UTF-8,
// so Hangul renders when the font carries Hangul glyphs (NanumGothic, Noto
// Sans KR). The built-in DejaVu Sans covers Latin, Greek and Cyrillic only.
type Fonts struct {
	Regular []byte
	Bold    []byte
}

// DefaultFonts returns the built-in DejaVu Sans Condensed pair.
func DefaultFonts() Fonts {
	return Fonts{Regular: dejaVuRegular, Bold: dejaVuBold}
}

// LoadFonts reads TrueType files from disk. An empty regular path keeps the
// built-in fonts; an empty bold path reuses the regular face for bold text.
func LoadFonts(regular, bold string) (Fonts, error) {
	if regular == "" {
		return DefaultFonts(), nil
	}
	f := Fonts{}
	var err error
	if f.Regular, err = readFont(regular); err != nil {
		return Fonts{}, err
	}
	f.Bold = f.Regular
	if bold != "" {
		if f.Bold, err = readFont(bold); err != nil {
			return Fonts{}, err
		}
	}
	return f, nil
}

func readFont(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	// TrueType starts with 0x00010000 or "true"; OpenType CFF ("OTTO") and
	// collections ("ttcf") are not supported by gofpdf.
	if len(b) < 4 || !(string(b[:4]) == "\x00\x01\x00\x00" || string(b[:4]) == "true") {
		return nil, fmt.Errorf("read pdf font: %s is not a TrueType font", path)
	}
	return b, nil
}

func (f Fonts) register(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(pdfFamily, "", f.Regular)
	pdf.AddUTF8FontFromBytes(pdfFamily, "B", f.Bold)
}
