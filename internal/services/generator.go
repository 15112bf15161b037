package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf/v2"

	"github.com/nklact/normaai/internal/domain"
	"github.com/nklact/normaai/internal/storage"
)

// DocumentGenerator renders validated contract text into a PDF stored under
// the contracts directory. Each document gets a fresh UUID; the id is the
// handle everything else (downloads, cleanup) uses.
type DocumentGenerator struct {
	files *storage.FileManager
}

func NewDocumentGenerator(files *storage.FileManager) *DocumentGenerator {
	return &DocumentGenerator{files: files}
}

func (g *DocumentGenerator) Generate(content, contractType string) (domain.GeneratedDocument, error) {
	if strings.TrimSpace(contractType) == "" {
		contractType = DefaultContractType
	}

	now := time.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(contractType, false)
	pdf.SetAuthor("Norma AI", false)
	pdf.SetMargins(31.75, 25.4, 31.75)
	pdf.SetAutoPageBreak(true, 25.4)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont("Times", "", 9)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated with Norma AI  -  %s", now.Format("02.01.2006.")), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	pdf.SetFont("Times", "B", 16)
	pdf.MultiCell(0, 10, strings.ToUpper(contractType), "", "C", false)
	pdf.Ln(6)

	g.writeBody(pdf, content)

	id := uuid.NewString()
	path := g.files.DocumentPath(id)

	if err := os.MkdirAll(g.files.ContractsDir(), 0o755); err != nil {
		return domain.GeneratedDocument{}, fmt.Errorf("ensure contracts directory: %w", err)
	}

	// Render to a temp path first so a failed write never leaves a partial
	// file behind a retrievable id.
	tmp := path + ".tmp"
	if err := pdf.OutputFileAndClose(tmp); err != nil {
		os.Remove(tmp)
		return domain.GeneratedDocument{}, fmt.Errorf("write contract pdf: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return domain.GeneratedDocument{}, fmt.Errorf("place contract pdf: %w", err)
	}

	safeType := strings.ReplaceAll(strings.ReplaceAll(contractType, " ", "_"), "/", "-")
	filename := fmt.Sprintf("%s_%s.pdf", safeType, now.Format("2006-01-02"))

	return domain.GeneratedDocument{
		ID:        id,
		Filepath:  path,
		Filename:  filename,
		CreatedAt: now.Unix(),
	}, nil
}

// writeBody lays out the contract text block by block. Blocks are separated
// by blank lines; heading-like blocks are set bold with extra spacing,
// everything else becomes a justified paragraph with a first-line indent.
func (g *DocumentGenerator) writeBody(pdf *gofpdf.Fpdf, content string) {
	blocks := strings.Split(content, "\n\n")

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		if isHeading(block) {
			pdf.Ln(3)
			pdf.SetFont("Times", "B", 12)
			pdf.MultiCell(0, 6, block, "", "L", false)
			pdf.Ln(1)
			continue
		}

		pdf.SetFont("Times", "", 12)
		pdf.MultiCell(0, 7, "     "+block, "", "J", false)
		pdf.Ln(2)
	}
}

var headingPhrases = []string{
	"subject of the contract",
	"general provisions",
	"rights and obligations",
	"final provisions",
}

var headingPrefixes = []string{
	"article", "section",
	"i.", "ii.", "iii.", "iv.", "v.",
}

func isHeading(block string) bool {
	lower := strings.ToLower(block)

	for _, prefix := range headingPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, phrase := range headingPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}

	return len(block) < 80 && strings.HasSuffix(block, ":")
}
