package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/storefront/backend/internal/domain/feedsync"
	"golang.org/x/net/html/charset"
)

// ErrorMarker is the root child some vendors use to report an error in place of a catalog
const ErrorMarker = "ErrorMessage"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseDocument decodes an XML body into an array-safe tree.
//
// The returned node is a synthetic document node whose only child is the
// root element. Text is whitespace-trimmed, CDATA is kept as text and
// attributes are dropped. Declared encodings other than UTF-8 are converted.
func ParseDocument(body []byte) (*feedsync.Node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(bytes.TrimPrefix(body, utf8BOM)))
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = xml.HTMLEntity

	doc := feedsync.NewNode("")
	stack := []*feedsync.Node{doc}
	texts := []*strings.Builder{{}}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 && len(doc.ChildNames()) > 0 {
				return nil, fmt.Errorf("multiple root elements: <%s> after <%s>", t.Name.Local, doc.ChildNames()[0])
			}
			stack = append(stack, feedsync.NewNode(t.Name.Local))
			texts = append(texts, &strings.Builder{})
		case xml.CharData:
			if len(stack) > 1 {
				texts[len(texts)-1].Write(t)
				stack[len(stack)-1].AppendText(string(t))
			}
		case xml.EndElement:
			node := stack[len(stack)-1]
			node.Text = strings.TrimSpace(texts[len(texts)-1].String())
			stack = stack[:len(stack)-1]
			texts = texts[:len(texts)-1]
			stack[len(stack)-1].AddChild(node)
		}
	}

	if len(stack) != 1 {
		return nil, fmt.Errorf("unexpected end of document inside <%s>", stack[len(stack)-1].Name)
	}
	if len(doc.ChildNames()) == 0 {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

// Root returns the root element of a parsed document
func Root(doc *feedsync.Node) *feedsync.Node {
	names := doc.ChildNames()
	if len(names) == 0 {
		return nil
	}
	return doc.Child(names[0])
}

// XMLParser implements feedsync.Parser
type XMLParser struct{}

// NewXMLParser creates an XMLParser
func NewXMLParser() *XMLParser {
	return &XMLParser{}
}

// Parse decodes the body and rejects documents carrying a vendor error marker
func (p *XMLParser) Parse(source feedsync.FeedSource, body []byte) (*feedsync.Node, error) {
	doc, err := ParseDocument(body)
	if err != nil {
		return nil, &feedsync.FeedError{Source: source.Name, Err: err}
	}
	if msg := Root(doc).Value(ErrorMarker); msg != "" {
		return nil, &feedsync.FeedError{Source: source.Name, VendorMessage: msg}
	}
	return doc, nil
}
