package render

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
)

// Номера объектов, которые пишутся в конце документа: на них ссылаются страницы,
// а содержимое (список страниц, заголовок) известно только после последней карточки.
const (
	objCatalog = 1
	objPages   = 2
	objFont    = 3
	objInfo    = 4
	firstFree  = 5
)

// pdfWriter пишет PDF последовательно: объекты страницы уходят в w сразу,
// в памяти остаются только смещения объектов для таблицы xref.
type pdfWriter struct {
	bw      *bufio.Writer
	n       int64
	offsets map[int]int64
	next    int
	pages   []int
	err     error
}

func newPDFWriter(w io.Writer) *pdfWriter {
	return &pdfWriter{bw: bufio.NewWriter(w), offsets: map[int]int64{}, next: firstFree}
}

func (p *pdfWriter) write(b []byte) {
	if p.err != nil {
		return
	}
	n, err := p.bw.Write(b)
	p.n += int64(n)
	p.err = err
}

func (p *pdfWriter) printf(format string, args ...any) {
	p.write([]byte(fmt.Sprintf(format, args...)))
}

func (p *pdfWriter) header() {
	p.write([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n"))
	p.object(objFont, []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"))
}

func (p *pdfWriter) alloc() int {
	id := p.next
	p.next++
	return id
}

func (p *pdfWriter) object(id int, body []byte) {
	p.offsets[id] = p.n
	p.printf("%d 0 obj\n", id)
	p.write(body)
	p.write([]byte("\nendobj\n"))
}

func (p *pdfWriter) stream(id int, dict string, data []byte) {
	p.offsets[id] = p.n
	p.printf("%d 0 obj\n<< %s /Length %d >>\nstream\n", id, dict, len(data))
	p.write(data)
	p.write([]byte("\nendstream\nendobj\n"))
}

// page пишет страницу с готовым потоком содержимого и, если есть, картинкой,
// и выталкивает буфер в нижележащий writer.
func (p *pdfWriter) page(content []byte, img *pdfImage) error {
	var xobj string
	if img != nil {
		id := p.alloc()
		p.stream(id, img.dict(), img.data)
		xobj = fmt.Sprintf(" /XObject << /Im1 %d 0 R >>", id)
	}
	contentID := p.alloc()
	p.stream(contentID, "", content)

	pageID := p.alloc()
	p.object(pageID, []byte(fmt.Sprintf(
		"<< /Type /Page\n/Parent %d 0 R\n/MediaBox [0 0 %.2f %.2f]\n/Resources << /Font << /F1 %d 0 R >>%s >>\n/Contents %d 0 R >>",
		objPages, pageWidth, pageHeight, objFont, xobj, contentID)))
	p.pages = append(p.pages, pageID)
	return p.flush()
}

func (p *pdfWriter) flush() error {
	if p.err != nil {
		return p.err
	}
	p.err = p.bw.Flush()
	return p.err
}

// finish дописывает каталог, дерево страниц, xref и трейлер.
func (p *pdfWriter) finish(title, creator string) error {
	var kids strings.Builder
	for i, id := range p.pages {
		if i > 0 {
			kids.WriteByte(' ')
		}
		fmt.Fprintf(&kids, "%d 0 R", id)
	}
	p.object(objPages, []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), len(p.pages))))
	p.object(objCatalog, []byte(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", objPages)))
	p.object(objInfo, []byte(fmt.Sprintf("<< /Title %s /Creator %s /Producer %s >>",
		literal(title), literal(creator), literal(creator))))

	xref := p.n
	size := p.next
	p.printf("xref\n0 %d\n0000000000 65535 f \n", size)
	for id := 1; id < size; id++ {
		p.printf("%010d 00000 n \n", p.offsets[id])
	}
	p.printf("trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", size, objCatalog, objInfo, xref)
	return p.flush()
}

// literal кодирует строку (уже в WinAnsi) как строковый литерал PDF.
func literal(s string) string {
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

// pdfImage — картинка, готовая к записи как XObject.
type pdfImage struct {
	width, height int
	colorSpace    string
	filter        string
	data          []byte
}

func (i *pdfImage) dict() string {
	return fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8 /Filter /%s",
		i.width, i.height, i.colorSpace, i.filter)
}

// newPDFImage готовит фотографию: JPEG в RGB или оттенках серого встраивается как есть,
// остальное декодируется, накладывается на белый фон и сжимается zlib.
func newPDFImage(data []byte, format string, cfg image.Config) (*pdfImage, error) {
	if format == "jpeg" {
		switch cfg.ColorModel {
		case color.YCbCrModel:
			return &pdfImage{width: cfg.Width, height: cfg.Height, colorSpace: "DeviceRGB", filter: "DCTDecode", data: data}, nil
		case color.GrayModel:
			return &pdfImage{width: cfg.Width, height: cfg.Height, colorSpace: "DeviceGray", filter: "DCTDecode", data: data}, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	raw := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			// поверх белого: c + (1 - a)
			white := 0xffff - a
			raw = append(raw, byte((r+white)>>8), byte((g+white)>>8), byte((b+white)>>8))
		}
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return &pdfImage{width: bounds.Dx(), height: bounds.Dy(), colorSpace: "DeviceRGB", filter: "FlateDecode", data: buf.Bytes()}, nil
}
