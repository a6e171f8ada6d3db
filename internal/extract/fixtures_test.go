package extract

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>Design Review</dc:title>
  <dc:creator>Ada Lovelace</dc:creator>
  <cp:lastModifiedBy>Charles Babbage</cp:lastModifiedBy>
  <dcterms:created xsi:type="dcterms:W3CDTF">2024-03-01T09:30:00Z</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">2024-03-02T17:45:10Z</dcterms:modified>
</cp:coreProperties>`

func writeZip(t *testing.T, path string, parts map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeDOCX(t *testing.T, dir string, withCore bool, paragraphs ...string) string {
	t.Helper()
	var body bytes.Buffer
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	// a table paragraph must not count as a body paragraph
	body.WriteString(`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `<w:sectPr/></w:body></w:document>`

	parts := map[string]string{"word/document.xml": doc}
	if withCore {
		parts["docProps/core.xml"] = testCoreXML
	}
	path := filepath.Join(dir, "report.docx")
	writeZip(t, path, parts)
	return path
}

func writePPTX(t *testing.T, dir string, slides int) string {
	t.Helper()
	var ids bytes.Buffer
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+2)
	}
	pres := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><p:sldIdLst>` +
		ids.String() + `</p:sldIdLst></p:presentation>`
	path := filepath.Join(dir, "deck.pptx")
	writeZip(t, path, map[string]string{
		"ppt/presentation.xml": pres,
		"docProps/core.xml":    testCoreXML,
	})
	return path
}

func writeXLSX(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Totals")
	require.NoError(t, err)
	require.NoError(t, f.SetDocProps(&excelize.DocProperties{
		Creator:        "Grace Hopper",
		Created:        "2023-11-05T08:00:00Z",
		Modified:       "2023-11-06T10:15:30Z",
		LastModifiedBy: "Alan Turing",
	}))
	path := filepath.Join(dir, "ledger.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "scan.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func writeJPEG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// writeJPEGWithExif writes a JPEG carrying a big-endian APP1 Exif block
// with IFD0 tags Make="Canon" and XResolution=72/1.
func writeJPEGWithExif(t *testing.T, dir string) string {
	t.Helper()
	plain, err := os.ReadFile(writeJPEG(t, dir, "plain.jpg", 8, 8))
	require.NoError(t, err)

	var tiffData bytes.Buffer
	be := binary.BigEndian
	tiffData.WriteString("MM")
	_ = binary.Write(&tiffData, be, uint16(42))
	_ = binary.Write(&tiffData, be, uint32(8))
	// IFD0: entry count, two 12-byte entries, next-IFD offset
	_ = binary.Write(&tiffData, be, uint16(2))
	_ = binary.Write(&tiffData, be, []uint16{0x010F, 2})
	_ = binary.Write(&tiffData, be, []uint32{6, 38})
	_ = binary.Write(&tiffData, be, []uint16{0x011A, 5})
	_ = binary.Write(&tiffData, be, []uint32{1, 44})
	_ = binary.Write(&tiffData, be, uint32(0))
	tiffData.WriteString("Canon\x00")
	_ = binary.Write(&tiffData, be, []uint32{72, 1})

	payload := append([]byte("Exif\x00\x00"), tiffData.Bytes()...)
	var out bytes.Buffer
	out.Write(plain[:2]) // SOI
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, be, uint16(len(payload)+2))
	out.Write(payload)
	out.Write(plain[2:])

	path := filepath.Join(dir, "camera.jpg")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
	return path
}

// writePDF assembles a one-page PDF with a correct cross-reference table.
func writePDF(t *testing.T, dir string) string {
	t.Helper()
	content := "BT /F1 24 Tf 72 700 Td (Hello PDF) Tj ET"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Title (Quarterly Report) /Author (Jane Roe) /Producer (docmeta tests) >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 6 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(dir, "quarterly.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

const testEML = "From: Alice <alice@example.com>\r\n" +
	"To: Bob <bob@example.com>\r\n" +
	"Cc: Carol <carol@example.com>\r\n" +
	"Subject: Quarterly numbers\r\n" +
	"Date: Mon, 4 Mar 2024 10:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=\"XYZ\"\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"See attached.\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/csv\r\n" +
	"Content-Disposition: attachment; filename=\"q1.csv\"\r\n" +
	"\r\n" +
	"a,b\r\n1,2\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"q1.pdf\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"JVBERi0xLjQK\r\n" +
	"--XYZ--\r\n"

const testMBOX = "From alice@example.com Mon Mar  4 10:00:00 2024\n" +
	"From: alice@example.com\n" +
	"Subject: first\n" +
	"Date: Mon, 4 Mar 2024 10:00:00 +0000\n" +
	"\n" +
	"hello\n" +
	"\n" +
	"From bob@example.com Tue Mar  5 11:00:00 2024\n" +
	"From: bob@example.com\n" +
	"Subject: second\n" +
	"Date: Tue, 5 Mar 2024 11:00:00 +0000\n" +
	"MIME-Version: 1.0\n" +
	"Content-Type: multipart/mixed; boundary=\"B\"\n" +
	"\n" +
	"--B\n" +
	"Content-Type: text/plain\n" +
	"\n" +
	"body\n" +
	"--B\n" +
	"Content-Type: text/plain\n" +
	"Content-Disposition: attachment; filename=\"notes.txt\"\n" +
	"\n" +
	"notes\n" +
	"--B--\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
