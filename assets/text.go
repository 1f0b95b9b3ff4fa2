package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"unicode"

	"github.com/go-text/typesetting/di"
	tsfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/pdfoverlay/coords"
)

// TextSupersample is the resolution multiplier text payloads are rendered
// at so the bitmap stays sharp when the viewer zooms in.
const TextSupersample = 3

// RenderText rasterizes a text payload into a transparent PNG, pre-rotated
// to compensate for the target page rotation. Glyphs are drawn at
// TextSupersample times the nominal size into an unrotated bitmap sized to
// the measured text bounds plus padding; for 90° and 270° the output
// canvas has its axes swapped by the compensation step.
func RenderText(style TextStyle, rotation coords.Rotation) ([]byte, error) {
	if style.Text == "" {
		return nil, ErrEmptyPayload
	}
	if style.Size <= 0 {
		return nil, fmt.Errorf("assets: text size %g is not positive", style.Size)
	}

	lines := parseLines(style.Text, style.Markdown)
	px := style.Size * TextSupersample

	faces, err := newFaceSet(style.FontData, px)
	if err != nil {
		return nil, err
	}
	defer faces.Close()

	metrics := faces.metrics()
	ascent := fixedToFloat(metrics.Ascent)
	lineHeight := fixedToFloat(metrics.Height)
	if lineHeight <= 0 {
		lineHeight = ascent + fixedToFloat(metrics.Descent)
	}
	pad := px * 0.25

	var maxWidth float64
	widths := make([]float64, len(lines))
	for i, line := range lines {
		w, err := faces.lineWidth(line)
		if err != nil {
			return nil, err
		}
		widths[i] = w
		maxWidth = math.Max(maxWidth, w)
	}

	w := int(math.Ceil(maxWidth + 2*pad))
	h := int(math.Ceil(lineHeight*float64(len(lines)) + 2*pad))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	tmp := image.NewNRGBA(image.Rect(0, 0, w, h))
	src := image.NewUniform(style.Color.RGBA())

	for i, line := range lines {
		dot := fixed.Point26_6{
			X: floatToFixed(pad),
			Y: floatToFixed(pad + ascent + lineHeight*float64(i)),
		}
		for _, span := range line {
			if span.Text == "" {
				continue
			}
			d := font.Drawer{
				Dst:  tmp,
				Src:  src,
				Face: faces.face(span.Bold, span.Italic),
				Dot:  dot,
			}
			d.DrawString(span.Text)
			dot = d.Dot
		}
	}

	out := compensate(tmp, rotation)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("assets: encode text bitmap: %w", err)
	}
	return buf.Bytes(), nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
func floatToFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

type faceVariant struct{ bold, italic bool }

// faceSet holds the drawing faces and shaping faces for the four style
// variants at one pixel size. With a custom font all variants share it.
type faceSet struct {
	px     float64
	draw   map[faceVariant]font.Face
	shaped map[faceVariant]*tsfont.Face
}

func newFaceSet(custom []byte, px float64) (*faceSet, error) {
	fs := &faceSet{
		px:     px,
		draw:   make(map[faceVariant]font.Face),
		shaped: make(map[faceVariant]*tsfont.Face),
	}
	for _, v := range []faceVariant{{}, {bold: true}, {italic: true}, {bold: true, italic: true}} {
		data := variantTTF(custom, v)
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("assets: parse font: %w", err)
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    px,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("assets: build font face: %w", err)
		}
		fs.draw[v] = face

		shapedFace, err := tsfont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("assets: parse font for shaping: %w", err)
		}
		fs.shaped[v] = shapedFace
	}
	return fs, nil
}

func variantTTF(custom []byte, v faceVariant) []byte {
	if len(custom) > 0 {
		return custom
	}
	switch {
	case v.bold && v.italic:
		return gobolditalic.TTF
	case v.bold:
		return gobold.TTF
	case v.italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

func (fs *faceSet) face(bold, italic bool) font.Face {
	return fs.draw[faceVariant{bold: bold, italic: italic}]
}

func (fs *faceSet) metrics() font.Metrics {
	return fs.draw[faceVariant{}].Metrics()
}

func (fs *faceSet) Close() {
	for _, f := range fs.draw {
		f.Close()
	}
}

// lineWidth measures one line. Each span is measured both by the drawing
// face and by shaping the run, and the larger result wins: shaping is
// kerning-aware, the drawer measure matches what DrawString will actually
// advance.
func (fs *faceSet) lineWidth(line []Span) (float64, error) {
	var total float64
	for _, span := range line {
		if span.Text == "" {
			continue
		}
		v := faceVariant{bold: span.Bold, italic: span.Italic}
		drawn := fixedToFloat(font.MeasureString(fs.draw[v], span.Text))
		shaped := fs.shapedAdvance(fs.shaped[v], span.Text)
		total += math.Max(drawn, shaped)
	}
	return total, nil
}

func (fs *faceSet) shapedAdvance(face *tsfont.Face, text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	script := detectScript(runes)
	shaper := &shaping.HarfbuzzShaper{}
	out := shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      face,
		Size:      floatToFixed(fs.px),
		Script:    script,
		Language:  language.DefaultLanguage(),
	})
	var advance fixed.Int26_6
	for _, g := range out.Glyphs {
		advance += g.XAdvance
	}
	return fixedToFloat(advance)
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew:
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin

	for _, r := range runes {
		script := scriptFromRune(r)
		if script == language.Unknown {
			continue
		}
		counts[script]++
		if counts[script] > maxCount {
			maxCount = counts[script]
			best = script
		}
	}
	return best
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Han, r):
		return language.Han
	}
	return language.Unknown
}
