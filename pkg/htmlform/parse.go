// Package htmlform reads the forms out of a sanitized HTML fragment and
// rewrites their submission target.
package htmlform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	formSelector    = cascadia.MustCompile("form")
	controlSelector = cascadia.MustCompile("input, select, textarea, button")
	optionSelector  = cascadia.MustCompile("option")
)

// Parse returns every form in fragment, in document order. A fragment
// without forms yields an empty slice.
func Parse(fragment string) ([]Form, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return nil, err
	}

	var forms []Form
	for _, root := range nodes {
		for _, node := range formSelector.MatchAll(root) {
			forms = append(forms, buildForm(node, len(forms)))
		}
	}
	return forms, nil
}

// Bind sets method="post" and the given action on every form in fragment
// and renders it back. It runs after sanitizing, on trusted output, so the
// sanitizer allowlist never has to admit action or method.
func Bind(fragment, action string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}

	for _, root := range nodes {
		for _, node := range formSelector.MatchAll(root) {
			setAttr(node, "method", "post")
			setAttr(node, "action", action)
		}
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buf, node); err != nil {
			return "", fmt.Errorf("htmlform: render fragment: %w", err)
		}
	}
	return buf.String(), nil
}

func parseFragment(fragment string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("htmlform: parse fragment: %w", err)
	}
	return nodes, nil
}

func buildForm(node *html.Node, index int) Form {
	form := Form{
		Index: index,
		Name:  firstNonEmpty(attr(node, "data-form"), attr(node, "id"), attr(node, "name")),
	}
	if form.Name == "" {
		form.Name = fmt.Sprintf("form-%d", index+1)
	}

	for _, element := range controlSelector.MatchAll(node) {
		if element == node {
			continue
		}
		form.Controls = append(form.Controls, buildControl(element))
	}
	return form
}

func buildControl(node *html.Node) Control {
	control := Control{
		Kind:        Kind(node.Data),
		Name:        strings.TrimSpace(attr(node, "name")),
		ID:          strings.TrimSpace(attr(node, "id")),
		Placeholder: attr(node, "placeholder"),
		Pattern:     attr(node, "pattern"),
		Min:         attr(node, "min"),
		Max:         attr(node, "max"),
		Step:        attr(node, "step"),
		Required:    hasAttr(node, "required"),
		Checked:     hasAttr(node, "checked"),
		Disabled:    hasAttr(node, "disabled"),
		Multiple:    hasAttr(node, "multiple"),
		Label:       labelText(node),
	}

	switch control.Kind {
	case KindInput:
		control.Type = strings.ToLower(firstNonEmpty(attr(node, "type"), "text"))
		control.Value = attr(node, "value")
		if control.IsToggle() {
			control.Caption = followingText(node)
		}
	case KindButton:
		control.Type = strings.ToLower(firstNonEmpty(attr(node, "type"), "submit"))
		control.Value = attr(node, "value")
		control.Caption = collapse(textContent(node))
	case KindSelect:
		control.Type = "select-one"
		if control.Multiple {
			control.Type = "select-multiple"
		}
		for _, option := range optionSelector.MatchAll(node) {
			text := collapse(textContent(option))
			value, ok := attrOK(option, "value")
			if !ok {
				value = text
			}
			control.Options = append(control.Options, Option{
				Value:    value,
				Label:    text,
				Selected: hasAttr(option, "selected"),
			})
		}
	case KindTextArea:
		control.Type = "textarea"
		control.Value = strings.ReplaceAll(textContent(node), "\r\n", "\n")
	}
	return control
}

// labelText returns the text of the enclosing <label> up to the first form
// control inside it, which is where the visible label sits in markup like
// <label>Name<br/><input ...></label>.
func labelText(node *html.Node) string {
	label := ancestor(node, "label")
	if label == nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && isControl(n) {
			return false
		}
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if !walk(child) {
				return false
			}
		}
		return true
	}
	for child := label.FirstChild; child != nil; child = child.NextSibling {
		if !walk(child) {
			break
		}
	}
	return collapse(strings.Join(parts, " "))
}

// followingText returns the text right after a checkbox or radio, the usual
// place for its caption.
func followingText(node *html.Node) string {
	var parts []string
	for sibling := node.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if sibling.Type == html.ElementNode {
			if isControl(sibling) || sibling.DataAtom == atom.Br {
				break
			}
			parts = append(parts, textContent(sibling))
			continue
		}
		if sibling.Type == html.TextNode {
			parts = append(parts, sibling.Data)
		}
	}
	return collapse(strings.Join(parts, " "))
}

func isControl(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Input, atom.Select, atom.Textarea, atom.Button:
		return true
	}
	return false
}

func ancestor(node *html.Node, name string) *html.Node {
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if parent.Type == html.ElementNode && parent.Data == name {
			return parent
		}
		if parent.Type == html.ElementNode && parent.DataAtom == atom.Form {
			return nil
		}
	}
	return nil
}

func textContent(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func attr(node *html.Node, key string) string {
	value, _ := attrOK(node, key)
	return value
}

func attrOK(node *html.Node, key string) (string, bool) {
	for _, a := range node.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(node *html.Node, key string) bool {
	_, ok := attrOK(node, key)
	return ok
}

func setAttr(node *html.Node, key, value string) {
	for i := range node.Attr {
		if node.Attr[i].Namespace == "" && node.Attr[i].Key == key {
			node.Attr[i].Val = value
			return
		}
	}
	node.Attr = append(node.Attr, html.Attribute{Key: key, Val: value})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
