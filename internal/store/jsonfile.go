package store

import (
	"fmt"
	"os"

	"bank-assistant-go/internal/kb"
)

// FilePersister rewrites the whole data document on every save. The write
// goes to a temp file first and replaces the original with a rename, so a
// crash mid-write cannot corrupt the document.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) Save(doc *kb.Document) error {
	raw, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("encode data document: %w", err)
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write data document: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace data document: %w", err)
	}
	return nil
}
