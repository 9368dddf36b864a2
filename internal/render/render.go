// Package render собирает PDF-документ из удостоверений: одна запись — одна страница.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"idcards/internal/model"
	"idcards/internal/storage"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	pageWidth     = 612.0 // Letter
	pageHeight    = 792.0
	margin        = 72.0 // 1 inch
	titleSize     = 20.0
	bodySize      = 14.0
	lineFactor    = 1.2
	photoBox      = 150.0
	maxPhotoBytes = 10 << 20
)

// Document — то, что нужно отдать клиенту одним файлом.
type Document struct {
	FileName string
	Batch    bool // все удостоверения владельца, а не одно
	Cards    []model.IDCard
}

// Renderer строит PDF. Фотографии читаются из хранилища; отсутствующая или
// нераспознанная фотография не считается ошибкой — блок с фото пропускается.
type Renderer struct {
	files  storage.FileStore
	logger *zap.SugaredLogger
}

func NewRenderer(files storage.FileStore, logger *zap.SugaredLogger) *Renderer {
	return &Renderer{files: files, logger: logger}
}

// Render пишет документ в w и возвращает число страниц. Каждая страница уходит
// в w сразу после сборки; перед каждой страницей проверяется ctx, и если клиент
// ушёл, сборка прекращается.
func (r *Renderer) Render(ctx context.Context, w io.Writer, doc *Document) (int, error) {
	if doc == nil || len(doc.Cards) == 0 {
		return 0, errors.New("render: no cards")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fm := newFontMetrics()
	out := newPDFWriter(w)
	out.header()
	for i := range doc.Cards {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		content, img := r.card(ctx, fm, &doc.Cards[i])
		if err := out.page(content, img); err != nil {
			return 0, fmt.Errorf("write card %s: %w", doc.Cards[i].IDNumber, err)
		}
		if f, ok := w.(flusher); ok {
			f.Flush()
		}
	}
	if err := out.finish(fm.tr(strings.TrimSuffix(doc.FileName, ".pdf")), "idcards"); err != nil {
		return 0, err
	}
	return len(out.pages), nil
}

// flusher совпадает с http.Flusher.
type flusher interface {
	Flush()
}

// card собирает поток содержимого одной страницы.
func (r *Renderer) card(ctx context.Context, fm *fontMetrics, c *model.IDCard) ([]byte, *pdfImage) {
	var b contentBuilder

	y := margin
	lh := titleSize * lineFactor
	title := "ID Card"
	b.text((pageWidth-fm.width(title, titleSize))/2, baseline(y, lh, titleSize), titleSize, title)
	y += 2 * lh

	lh = bodySize * lineFactor
	for _, line := range Lines(c) {
		text := fm.clip(fm.tr(singleLine(line)), bodySize, pageWidth-2*margin)
		b.text(margin, baseline(y, lh, bodySize), bodySize, text)
		y += lh
	}

	name := c.PhotoName()
	if name == "" {
		return b.Bytes(), nil
	}
	data, format, cfg, ok := r.loadPhoto(ctx, name)
	if !ok {
		return b.Bytes(), nil
	}
	img, err := newPDFImage(data, format, cfg)
	if err != nil {
		r.logger.Warnw("render: photo rejected by pdf encoder", "photo", name, "error", err)
		return b.Bytes(), nil
	}
	y += lh

	scale := photoBox / float64(img.width)
	if s := photoBox / float64(img.height); s < scale {
		scale = s
	}
	dw, dh := float64(img.width)*scale, float64(img.height)*scale
	b.image((pageWidth-dw)/2, pageHeight-y-dh, dw, dh)
	return b.Bytes(), img
}

// baseline переводит верх строки высотой lh в координату базовой линии PDF (снизу вверх).
func baseline(top, lh, size float64) float64 {
	return pageHeight - (top + lh/2 + 0.3*size)
}

// singleLine заменяет управляющие символы пробелами: поле занимает ровно одну строку.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if r < ' ' || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

type contentBuilder struct {
	bytes.Buffer
}

func (b *contentBuilder) text(x, y, size float64, s string) {
	fmt.Fprintf(b, "BT /F1 %.2f Tf %.2f %.2f Td %s Tj ET\n", size, x, y, literal(s))
}

func (b *contentBuilder) image(x, y, w, h float64) {
	fmt.Fprintf(b, "q %.2f 0 0 %.2f %.2f %.2f cm /Im1 Do Q\n", w, h, x, y)
}

// fontMetrics меряет строки Helvetica и переводит UTF-8 в cp1252.
type fontMetrics struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newFontMetrics() *fontMetrics {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", bodySize)
	return &fontMetrics{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

// width ожидает строку уже в cp1252.
func (m *fontMetrics) width(s string, size float64) float64 {
	m.pdf.SetFontSize(size)
	return m.pdf.GetStringWidth(s)
}

// clip обрезает строку до limit пунктов, добавляя многоточие.
func (m *fontMetrics) clip(s string, size, limit float64) string {
	if m.width(s, size) <= limit {
		return s
	}
	for len(s) > 0 {
		s = s[:len(s)-1]
		if m.width(s+"...", size) <= limit {
			return s + "..."
		}
	}
	return ""
}

// loadPhoto читает фотографию и определяет её формат и размеры.
func (r *Renderer) loadPhoto(ctx context.Context, name string) ([]byte, string, image.Config, bool) {
	rc, err := r.files.Open(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			r.logger.Warnw("render: open photo failed", "photo", name, "error", err)
		}
		return nil, "", image.Config{}, false
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPhotoBytes))
	if err != nil {
		r.logger.Warnw("render: read photo failed", "photo", name, "error", err)
		return nil, "", image.Config{}, false
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		r.logger.Warnw("render: unsupported photo", "photo", name, "error", err)
		return nil, "", image.Config{}, false
	}
	switch format {
	case "jpeg", "png", "gif":
		return data, format, cfg, true
	default:
		return nil, "", image.Config{}, false
	}
}

// Lines возвращает подписанные поля удостоверения в порядке вывода.
func Lines(c *model.IDCard) []string {
	return []string{
		"Full Name: " + c.FullName,
		"Designation: " + orDash(c.Designation),
		"Department: " + orDash(c.Department),
		"ID Number: " + c.IDNumber,
		"Issue Date: " + model.FormatDate(c.IssueDate),
		"Expiry Date: " + model.FormatDate(c.ExpiryDate),
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
