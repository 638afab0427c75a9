package mockapi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tensorplex-labs/synthchat/internal/syntheticapi"
)

type generatedFile struct {
	contentType string
	body        []byte
}

type fileStore struct {
	mu    sync.RWMutex
	files map[string]generatedFile
}

func newFileStore() *fileStore {
	return &fileStore{files: make(map[string]generatedFile)}
}

func (fs *fileStore) put(name string, f generatedFile) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[name] = f
}

func (fs *fileStore) get(name string) (generatedFile, bool) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	f, ok := fs.files[name]
	return f, ok
}

// renderRows produces volume placeholder records in format.
func renderRows(format syntheticapi.OutputFormat, prompt string, volume int) generatedFile {
	var b strings.Builder
	switch format {
	case syntheticapi.FormatJSON:
		b.WriteString("[")
		for i := 1; i <= volume; i++ {
			if i > 1 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `{"id":%d,"prompt":%q}`, i, prompt)
		}
		b.WriteString("]")
		return generatedFile{contentType: "application/json", body: []byte(b.String())}
	case syntheticapi.FormatXML:
		b.WriteString("<rows>")
		for i := 1; i <= volume; i++ {
			fmt.Fprintf(&b, "<row id=\"%d\"/>", i)
		}
		b.WriteString("</rows>")
		return generatedFile{contentType: "application/xml", body: []byte(b.String())}
	case syntheticapi.FormatText:
		for i := 1; i <= volume; i++ {
			fmt.Fprintf(&b, "row %d: %s\n", i, prompt)
		}
		return generatedFile{contentType: "text/plain", body: []byte(b.String())}
	default:
		b.WriteString("id,prompt\n")
		for i := 1; i <= volume; i++ {
			fmt.Fprintf(&b, "%d,%q\n", i, prompt)
		}
		return generatedFile{contentType: "text/csv", body: []byte(b.String())}
	}
}
