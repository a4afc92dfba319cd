package lsp

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/aidanlsb/sld/internal/annotate"
	"github.com/aidanlsb/sld/internal/buildinfo"
	"github.com/aidanlsb/sld/internal/config"
	"github.com/aidanlsb/sld/internal/editor"
	"github.com/aidanlsb/sld/internal/index"
	"github.com/aidanlsb/sld/internal/paths"
	"github.com/aidanlsb/sld/internal/replace"
	"github.com/aidanlsb/sld/internal/rules"
	"github.com/aidanlsb/sld/internal/vault"
)

// pendingEdit is a workspace/applyEdit request awaiting its response.
type pendingEdit struct {
	uri  string
	text string // document text once the edit is applied
}

func (s *Server) handleInitialize(msg jsonRPCMessage) error {
	var params InitializeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}

	// If rootUri is provided and we don't have a vault path, use it
	if s.vaultPath == "" && params.RootURI != "" {
		s.vaultPath = uriToPath(params.RootURI)
		if err := s.initialize(); err != nil {
			s.logDebug("Failed to initialize with rootUri: %v", err)
		}
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    1, // Full sync
				Save:      &SaveOptions{},
			},
			HoverProvider: true,
		},
		ServerInfo: &ServerInfo{Name: "sld", Version: buildinfo.Version},
	}
	return s.sendResult(msg.ID, result)
}

// currentRules returns the vault's rule set, or the global one when no
// vault is loaded.
func (s *Server) currentRules() *rules.Set {
	if s.rules == nil {
		s.rules = config.Resolve(s.global, nil, s.extraRules)
	}
	return s.rules
}

func (s *Server) handleDidOpen(msg jsonRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	doc := &Document{
		URI:      params.TextDocument.URI,
		Version:  params.TextDocument.Version,
		expected: make(map[string]editor.Transaction),
	}
	doc.Annotations = annotate.NewPlugin(annotate.DefaultTemplate)
	doc.Annotations.OnRebuild = func(*annotate.Set) { doc.dirty = true }
	doc.Replace = replace.New(replace.WithDispatcher(&editSender{s: s, doc: doc}))

	st := editor.NewState(params.TextDocument.Text, editor.Cursor(0), s.currentRules())
	doc.View = editor.NewView(st, doc.Annotations.Attach, doc.Replace.Attach)
	doc.View.Logf = s.logDebug
	s.documents.Add(doc)

	s.logDebug("Opened: %s (%d annotations)", doc.URI, doc.Annotations.Annotations().Len())
	return nil
}

func (s *Server) handleDidChange(msg jsonRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || len(params.ContentChanges) == 0 {
		return nil
	}
	doc.Version = params.TextDocument.Version

	// We use full sync, so take the last content change
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	old := doc.Content()
	if text == old {
		return nil
	}

	// our own edit coming back: replay it with its selection and user event
	if tr, ok := doc.expected[text]; ok {
		delete(doc.expected, text)
		doc.View.Dispatch(tr)
		return nil
	}

	doc.View.Dispatch(changeTransaction(old, text))
	return nil
}

// changeTransaction turns a full-text change into a single-range
// transaction. The caret is placed after the inserted text.
func changeTransaction(old, text string) editor.Transaction {
	c := diffText(old, text)
	event := editor.EventDelete
	switch {
	case c.Insert == "":
	case c.To > c.From:
		event = editor.EventInput
	case utf8.RuneCountInString(c.Insert) == 1:
		event = editor.EventType
	default:
		event = editor.EventPaste
	}
	sel := editor.Cursor(c.From + len(c.Insert))
	return editor.Transaction{
		Changes:   editor.ChangeSet{c},
		Selection: &sel,
		UserEvent: event,
	}
}

// diffText finds the smallest single change turning old into text. Both
// ends of the change fall on rune boundaries.
func diffText(old, text string) editor.Change {
	prefix := 0
	for prefix < len(old) && prefix < len(text) && old[prefix] == text[prefix] {
		prefix++
	}
	for prefix > 0 && ((prefix < len(old) && !utf8.RuneStart(old[prefix])) ||
		(prefix < len(text) && !utf8.RuneStart(text[prefix]))) {
		prefix--
	}

	maxSuffix := min(len(old), len(text)) - prefix
	suffix := 0
	for suffix < maxSuffix && old[len(old)-1-suffix] == text[len(text)-1-suffix] {
		suffix++
	}
	for suffix > 0 && !utf8.RuneStart(old[len(old)-suffix]) {
		suffix--
	}

	return editor.Change{
		From:   prefix,
		To:     len(old) - suffix,
		Insert: text[prefix : len(text)-suffix],
	}
}

func (s *Server) handleDidChangeSelection(msg jsonRPCMessage) error {
	var params DidChangeSelectionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil || len(params.Selections) == 0 {
		return nil
	}

	text := doc.Content()
	sel := editor.Selection{Ranges: make([]editor.Range, 0, len(params.Selections))}
	for _, r := range params.Selections {
		sel.Ranges = append(sel.Ranges, editor.Range{
			Anchor: positionToOffset(text, r.Anchor),
			Head:   positionToOffset(text, r.Head),
		})
	}
	if sel.Equal(doc.View.State().Selection) {
		return nil
	}
	doc.View.Dispatch(editor.Transaction{Selection: &sel, UserEvent: editor.EventSelect})
	return nil
}

func (s *Server) handleDidChangeVisibleRange(msg jsonRPCMessage) error {
	var params DidChangeVisibleRangeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	text := doc.Content()
	doc.View.SetViewport(positionToOffset(text, params.Range.Start), positionToOffset(text, params.Range.End))
	return nil
}

// handleReloadConfig re-reads the vault config and hands the new rule set
// to every open document.
func (s *Server) handleReloadConfig(msg jsonRPCMessage) error {
	var vc *config.VaultConfig
	if s.vaultPath != "" {
		loaded, err := config.LoadVaultConfig(s.vaultPath)
		if err != nil {
			s.logDebug("Failed to reload vault config: %v", err)
			return nil
		}
		vc = loaded
		s.vaultCfg = vc
	}
	s.rules = config.Resolve(s.global, vc, s.extraRules)

	for _, doc := range s.documents.All() {
		doc.View.Dispatch(editor.Transaction{Rules: s.rules})
	}
	s.logDebug("Reloaded %d rules", s.rules.Len())
	return nil
}

func (s *Server) handleDidSave(msg jsonRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.logDebug("Saved: %s", params.TextDocument.URI)

	if err := s.reindexFile(uriToPath(params.TextDocument.URI)); err != nil {
		s.logDebug("Failed to reindex: %v", err)
	}
	return nil
}

// reindexFile updates the index for one saved note.
func (s *Server) reindexFile(path string) error {
	if s.db == nil || !paths.IsMarkdown(path) {
		return nil
	}
	if err := paths.ValidateWithinVault(s.vaultPath, path); err != nil {
		return err
	}
	rel, err := filepath.Rel(s.vaultPath, path)
	if err != nil {
		return err
	}

	note, err := vault.ReadNote(path)
	if err != nil {
		return err
	}
	opts := index.IndexOptions{IncludeUnclassified: s.vaultCfg.IncludeUnclassified()}
	n, err := s.db.IndexFile(paths.NormalizeRelPath(rel), note.Content, note.FileMtime, s.currentRules(), opts)
	if err != nil {
		return err
	}
	s.logDebug("Reindexed %s: %d links", rel, n)
	return nil
}

func (s *Server) handleDidClose(msg jsonRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}

	s.documents.Close(params.TextDocument.URI)
	s.logDebug("Closed: %s", params.TextDocument.URI)
	return nil
}

// handleHover describes the classified link under the cursor.
func (s *Server) handleHover(msg jsonRPCMessage) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "Invalid params")
	}
	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(msg.ID, nil)
	}

	text := doc.Content()
	offset := positionToOffset(text, params.Position)
	for _, a := range doc.Annotations.Annotations().Between(offset, offset+1) {
		if offset < a.From || offset >= a.To {
			continue
		}
		r := toRange(text, a.From, a.To)
		return s.sendResult(msg.ID, Hover{
			Contents: MarkupContent{Kind: "markdown", Value: hoverText(doc.View.State().Rules, a)},
			Range:    &r,
		})
	}
	return s.sendResult(msg.ID, nil)
}

func hoverText(rs *rules.Set, a annotate.Annotation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** link", a.Type())
	for _, r := range rs.Rules() {
		if r.LinkType != a.Type() {
			continue
		}
		fmt.Fprintf(&b, "\n\nPrefix `%s`", r.Prefix)
		if r.Emoji != "" {
			fmt.Fprintf(&b, " → %s", r.Emoji)
		}
		break
	}
	return b.String()
}

// handleResponse handles the client's answer to workspace/applyEdit. An
// edit the client refused will never echo back, so its expectation is
// dropped.
func (s *Server) handleResponse(msg jsonRPCMessage) error {
	key := fmt.Sprint(msg.ID)
	edit, ok := s.requests[key]
	if !ok {
		return nil
	}
	delete(s.requests, key)

	var result ApplyWorkspaceEditResult
	if msg.Error == nil && len(msg.Result) > 0 {
		if err := json.Unmarshal(msg.Result, &result); err != nil {
			return fmt.Errorf("failed to parse applyEdit result: %w", err)
		}
	}
	if msg.Error == nil && result.Applied {
		return nil
	}

	if doc := s.documents.Get(edit.uri); doc != nil {
		delete(doc.expected, edit.text)
	}
	reason := result.FailureReason
	if msg.Error != nil {
		reason = msg.Error.Message
	}
	s.logDebug("Edit %s not applied: %s", key, reason)
	return nil
}

// publishAnnotations pushes the document's annotation set to the client.
func (s *Server) publishAnnotations(doc *Document) error {
	text := doc.Content()
	set := doc.Annotations.Annotations()
	out := make([]AnnotationRange, 0, set.Len())
	for _, a := range set.All() {
		out = append(out, AnnotationRange{Range: toRange(text, a.From, a.To), Attributes: a.Attributes})
	}
	return s.sendNotification(MethodAnnotations, AnnotationsParams{
		URI:         doc.URI,
		Version:     doc.Version,
		Annotations: out,
	})
}

// editSender forwards a document's alias replacements to the client as
// workspace edits. The view is updated when the edit echoes back through
// didChange.
type editSender struct {
	s   *Server
	doc *Document
}

func (e *editSender) Dispatch(trs ...editor.Transaction) {
	for _, tr := range trs {
		if err := e.s.requestApplyEdit(e.doc, tr); err != nil {
			e.s.logDebug("Failed to send edit: %v", err)
		}
	}
}

func (s *Server) requestApplyEdit(doc *Document, tr editor.Transaction) error {
	text := doc.Content()
	edits := make([]TextEdit, 0, len(tr.Changes))
	for _, c := range tr.Changes {
		edits = append(edits, TextEdit{Range: toRange(text, c.From, c.To), NewText: c.Insert})
	}

	result := tr.Changes.Apply(text)
	doc.expected[result] = tr

	params := ApplyWorkspaceEditParams{
		Label: "sld: replace alias prefix",
		Edit:  WorkspaceEdit{Changes: map[string][]TextEdit{doc.URI: edits}},
	}
	return s.sendRequest("workspace/applyEdit", pendingEdit{uri: doc.URI, text: result}, params)
}
