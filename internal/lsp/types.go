package lsp

// Custom methods understood by the server.
const (
	// MethodDidChangeSelection is sent by the client when the caret moves.
	MethodDidChangeSelection = "sld/didChangeSelection"
	// MethodDidChangeVisibleRange is sent by the client when it scrolls.
	MethodDidChangeVisibleRange = "sld/didChangeVisibleRange"
	// MethodReloadConfig asks the server to re-read the rule configuration.
	MethodReloadConfig = "sld/reloadConfig"
	// MethodAnnotations is pushed by the server with a document's annotations.
	MethodAnnotations = "sld/annotations"
)

// Position is a zero-based line and UTF-16 character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type InitializeParams struct {
	ProcessID int    `json:"processId"`
	RootURI   string `json:"rootUri"`
	RootPath  string `json:"rootPath"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type ServerCapabilities struct {
	TextDocumentSync *TextDocumentSyncOptions `json:"textDocumentSync,omitempty"`
	HoverProvider    bool                     `json:"hoverProvider,omitempty"`
}

type TextDocumentSyncOptions struct {
	OpenClose bool         `json:"openClose"`
	Change    int          `json:"change"` // 1 = full
	Save      *SaveOptions `json:"save,omitempty"`
}

type SaveOptions struct {
	IncludeText bool `json:"includeText"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// TextDocumentContentChangeEvent carries the full text; incremental sync is
// not advertised.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Text         *string                `json:"text,omitempty"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type MarkupContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes"`
}

type ApplyWorkspaceEditParams struct {
	Label string        `json:"label,omitempty"`
	Edit  WorkspaceEdit `json:"edit"`
}

type ApplyWorkspaceEditResult struct {
	Applied       bool   `json:"applied"`
	FailureReason string `json:"failureReason,omitempty"`
}

// SelectionRange is one caret or selection; Anchor stays put while Head
// moves.
type SelectionRange struct {
	Anchor Position `json:"anchor"`
	Head   Position `json:"head"`
}

// DidChangeSelectionParams is the payload of sld/didChangeSelection. The
// first selection is the main one.
type DidChangeSelectionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Selections   []SelectionRange       `json:"selections"`
}

type DidChangeVisibleRangeParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
}

// AnnotationsParams is the payload of sld/annotations.
type AnnotationsParams struct {
	URI         string            `json:"uri"`
	Version     int               `json:"version"`
	Annotations []AnnotationRange `json:"annotations"`
}

type AnnotationRange struct {
	Range      Range             `json:"range"`
	Attributes map[string]string `json:"attributes"`
}
