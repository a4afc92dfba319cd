package lsp

import (
	"sort"
	"sync"

	"github.com/aidanlsb/sld/internal/annotate"
	"github.com/aidanlsb/sld/internal/editor"
	"github.com/aidanlsb/sld/internal/replace"
)

// Document is an open document backed by its own editor view.
type Document struct {
	URI         string
	Version     int
	View        *editor.View
	Annotations *annotate.Plugin
	Replace     *replace.Plugin

	// expected holds edits sent with workspace/applyEdit whose didChange
	// echo has not arrived yet, keyed by the resulting text.
	expected map[string]editor.Transaction

	// dirty is set when the annotation set was rebuilt and not yet pushed.
	dirty bool
}

// Content returns the current text.
func (d *Document) Content() string {
	return d.View.State().Doc.String()
}

// DocumentManager tracks open documents.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[string]*Document),
	}
}

// Add registers a newly opened document, replacing any previous one.
func (dm *DocumentManager) Add(doc *Document) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if old, ok := dm.documents[doc.URI]; ok {
		old.View.Destroy()
	}
	dm.documents[doc.URI] = doc
}

// Close removes a document and detaches its plugins.
func (dm *DocumentManager) Close(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, ok := dm.documents[uri]; ok {
		doc.View.Destroy()
		delete(dm.documents, uri)
	}
}

// Get retrieves a document by URI.
func (dm *DocumentManager) Get(uri string) *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	return dm.documents[uri]
}

// All returns all open documents ordered by URI.
func (dm *DocumentManager) All() []*Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	docs := make([]*Document, 0, len(dm.documents))
	for _, doc := range dm.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}
