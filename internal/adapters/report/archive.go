package report

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/okian/teacheval/internal/domain/types"
)

// ArchiveContentType of WriteArchive output.
const ArchiveContentType = "application/zip"

var nameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "..", "_")

// FileName names the standalone report of one teacher.
func FileName(document string, period *string) string {
	return nameReplacer.Replace(fmt.Sprintf("reporte_%s_%s.txt", document, periodSlug(period)))
}

// EntryName names the report of one teacher inside an archive.
func EntryName(document, name string) string {
	return nameReplacer.Replace(fmt.Sprintf("%s_%s.txt", document, name))
}

// ArchiveName names an export of every teacher.
func ArchiveName(period *string, at time.Time) string {
	return nameReplacer.Replace(fmt.Sprintf("reportes_profesores_%s_%s.zip", periodSlug(period), at.Format("20060102_150405")))
}

// WriteArchive writes files as a deflated ZIP archive, in order.
func WriteArchive(w io.Writer, files []types.ReportFile) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("add %s: %w", f.Name, err)
		}
		if _, err := fw.Write(f.Content); err != nil {
			return fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func periodSlug(p *string) string {
	if p == nil {
		return "todos"
	}
	return *p
}
