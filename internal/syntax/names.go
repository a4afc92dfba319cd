package syntax

import "strconv"

// Block node names.
const (
	NameDocument  = "Document"
	NameParagraph = "paragraph"
	NameList      = "hmd-list"
	NameListItem  = "hmd-list-item"
	NameQuote     = "quote"
	NameCodeBlock = "hmd-codeblock"
	NameHTMLBlock = "html-block"
	NameBlock     = "block"
)

// Inline node names. Link tokens follow the HyperMD convention: fragments
// separated by NameSeparator, one fragment naming the family and one naming
// the part.
const (
	NameInlineCode    = "inline-code"
	NameLinkStart     = "formatting-link_formatting-link-start"
	NameLinkHasAlias  = "hmd-internal-link_link-has-alias"
	NameLinkAliasPipe = "hmd-internal-link_link-alias-pipe"
	NameLinkAlias     = "hmd-internal-link_link-alias"
	NameLinkEnd       = "formatting-link_formatting-link-end"
	NameInternalLink  = "hmd-internal-link"
	nameHeadingPrefix = "header_header-"
)

// HeadingName returns the node name for a heading of the given level.
func HeadingName(level int) string {
	return nameHeadingPrefix + strconv.Itoa(level)
}
