// Package xml provides a thin pure Go XML layer over xmlquery used to read
// Paratext project settings files.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by Go's xml.Decoder, which
//     does not fetch external entities; xmlquery parses with encoding/xml
//     internally and inherits its properties.
package xml

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML node (element, text, attribute, etc.).
type Node struct {
	node *xmlquery.Node
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	reader := bytes.NewReader(data)
	root, err := xmlquery.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseFile reads and parses an XML file.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// XPath evaluates an XPath expression and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	// Validate the expression first for a better error message
	_, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression %q: %w", expr, err)
	}

	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("XPath query failed: %w", err)
	}

	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst evaluates an XPath expression and returns the first match,
// or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	_, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression %q: %w", expr, err)
	}

	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("XPath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// ElementText returns the trimmed inner text of the first element matching
// expr, or "" when the element is absent. Malformed expressions surface as
// errors; absence does not.
func (d *Document) ElementText(expr string) (string, error) {
	n, err := d.XPathFirst(expr)
	if err != nil {
		return "", err
	}
	if n == nil {
		return "", nil
	}
	return strings.TrimSpace(n.InnerText()), nil
}

// Name returns the node's element name.
func (n *Node) Name() string {
	return n.node.Data
}

// InnerText returns the concatenated text content of the node and its
// descendants.
func (n *Node) InnerText() string {
	return n.node.InnerText()
}

// Attr returns the value of the named attribute, or "" if absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.node.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
