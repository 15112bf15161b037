package services

import (
	"os"
	"strings"
	"testing"

	"github.com/nklact/normaai/internal/storage"
)

const sampleContract = `EMPLOYMENT CONTRACT

Concluded on ____ between TECH LLC, Belgrade (the Employer) and John Smith (the Employee).

Article 1.
The Employer concludes an open-ended employment contract with the Employee.

I. WORKING HOURS

Article 2.
Full working hours are 40 per week, Monday to Friday.

II. FINAL PROVISIONS

Article 3.
This contract is made in three identical copies, one for each party.`

func newTestGenerator(t *testing.T) (*DocumentGenerator, *storage.FileManager) {
	t.Helper()

	fm, err := storage.NewFileManager(t.TempDir())
	if err != nil {
		t.Fatalf("file manager: %v", err)
	}
	return NewDocumentGenerator(fm), fm
}

func TestGenerateProducesRetrievableFile(t *testing.T) {
	gen, fm := newTestGenerator(t)

	doc, err := gen.Generate(sampleContract, "Employment Contract")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !storage.ValidID(doc.ID) {
		t.Fatalf("expected a UUID id, got %q", doc.ID)
	}
	if doc.Filepath != fm.DocumentPath(doc.ID) {
		t.Fatalf("filepath %q does not match DocumentPath %q", doc.Filepath, fm.DocumentPath(doc.ID))
	}
	if !fm.Exists(doc.ID) {
		t.Fatal("generated document must exist immediately")
	}

	data, err := os.ReadFile(doc.Filepath)
	if err != nil {
		t.Fatalf("read generated pdf: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data), "%PDF") {
		t.Fatal("generated file is not a readable PDF")
	}
}

func TestGenerateFilename(t *testing.T) {
	gen, _ := newTestGenerator(t)

	doc, err := gen.Generate(sampleContract, "Employment Contract")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.HasPrefix(doc.Filename, "Employment_Contract_") {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}
	if !strings.HasSuffix(doc.Filename, ".pdf") {
		t.Fatalf("filename must end in .pdf, got %q", doc.Filename)
	}
}

func TestGenerateLeavesNoTempFile(t *testing.T) {
	gen, fm := newTestGenerator(t)

	if _, err := gen.Generate(sampleContract, "Contract"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	entries, err := os.ReadDir(fm.ContractsDir())
	if err != nil {
		t.Fatalf("read contracts dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestGenerateEmptyTypeFallsBack(t *testing.T) {
	gen, fm := newTestGenerator(t)

	doc, err := gen.Generate(sampleContract, "  ")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(doc.Filename, DefaultContractType+"_") {
		t.Fatalf("expected default type in filename, got %q", doc.Filename)
	}
	if !fm.Exists(doc.ID) {
		t.Fatal("generated document must exist")
	}
}
