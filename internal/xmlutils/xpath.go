package xmlutils

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/xmlpath.v2"
)

// Parse reads an XML document and returns its root node.
func Parse(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	return root, nil
}

// ExtractFromXML extracts values from an XML node using an XPath expression
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath: %w", err)
	}

	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, iter.Node().String())
	}

	return values, nil
}

// Nodes returns the nodes matched by xpath.
func Nodes(root *xmlpath.Node, xpath string) ([]*xmlpath.Node, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath: %w", err)
	}

	var nodes []*xmlpath.Node
	iter := path.Iter(root)
	for iter.Next() {
		nodes = append(nodes, iter.Node())
	}
	return nodes, nil
}

// JoinText concatenates the values selected by xpath under node.
func JoinText(node *xmlpath.Node, xpath string) (string, error) {
	values, err := ExtractFromXML(node, xpath)
	if err != nil {
		return "", err
	}
	return strings.Join(values, ""), nil
}
