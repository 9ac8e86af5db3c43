// Package scrape pulls a plain recipe record out of a recipe web page by
// reading its schema.org JSON-LD block.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/recipe"
)

const userAgent = "recast/1.0 (+https://github.com/cognicore/recast)"

// Fetch downloads url and extracts its recipe. A nil client uses a client
// with a 30 second timeout.
func Fetch(ctx context.Context, client *http.Client, url string) (recipe.RawRecipe, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return recipe.RawRecipe{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return recipe.RawRecipe{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return recipe.RawRecipe{}, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
	raw, err := Extract(resp.Body)
	if err != nil {
		return recipe.RawRecipe{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	return raw, nil
}

// Extract reads an HTML page and returns the first Recipe found in its
// application/ld+json scripts. Blocks that are not valid JSON are skipped.
func Extract(r io.Reader) (recipe.RawRecipe, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return recipe.RawRecipe{}, err
	}

	for _, block := range ldJSONBlocks(doc) {
		var v any
		if err := json.Unmarshal([]byte(block), &v); err != nil {
			continue
		}
		if obj := findRecipe(v); obj != nil {
			return toRawRecipe(obj)
		}
	}
	return recipe.RawRecipe{}, fmt.Errorf("no recipe data in page: %w", internalerr.ErrNotFound)
}

func ldJSONBlocks(doc *html.Node) []string {
	var blocks []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" && isLDJSON(n) {
			var buf strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					buf.WriteString(c.Data)
				}
			}
			blocks = append(blocks, buf.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks
}

func isLDJSON(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "type" && strings.EqualFold(strings.TrimSpace(a.Val), "application/ld+json") {
			return true
		}
	}
	return false
}

// findRecipe looks for an object typed Recipe at the top level, inside an
// array, or inside an @graph.
func findRecipe(v any) map[string]any {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if obj := findRecipe(item); obj != nil {
				return obj
			}
		}
	case map[string]any:
		if hasType(t, "Recipe") {
			return t
		}
		if graph, ok := t["@graph"]; ok {
			return findRecipe(graph)
		}
	}
	return nil
}

func hasType(obj map[string]any, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, s := range t {
			if s == want {
				return true
			}
		}
	}
	return false
}

func toRawRecipe(obj map[string]any) (recipe.RawRecipe, error) {
	name, err := cleanText(stringField(obj, "name"))
	if err != nil {
		return recipe.RawRecipe{}, fmt.Errorf("name: %w", err)
	}
	raw := recipe.RawRecipe{Name: name}

	if list, ok := obj["recipeIngredient"].([]any); ok {
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				continue
			}
			if s, err = cleanText(s); err != nil {
				return recipe.RawRecipe{}, fmt.Errorf("ingredient %d: %w", i, err)
			}
			if s != "" {
				raw.Ingredients = append(raw.Ingredients, s)
			}
		}
	}

	for i, text := range instructionTexts(obj["recipeInstructions"]) {
		text, err = cleanText(text)
		if err != nil {
			return recipe.RawRecipe{}, fmt.Errorf("instruction %d: %w", i, err)
		}
		raw.Instructions = append(raw.Instructions, SplitSteps(text)...)
	}
	return raw, nil
}

// instructionTexts flattens plain strings, HowToStep objects and HowToSection
// objects into step texts.
func instructionTexts(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, instructionTexts(item)...)
		}
		return out
	case map[string]any:
		if items, ok := t["itemListElement"]; ok {
			return instructionTexts(items)
		}
		if text := stringField(t, "text"); text != "" {
			return []string{text}
		}
		if name := stringField(t, "name"); name != "" {
			return []string{name}
		}
	}
	return nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// cleanText strips markup and entities and collapses whitespace.
func cleanText(s string) (string, error) {
	text, err := stripHTML(s)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(text), " "), nil
}

func stripHTML(s string) (string, error) {
	if !strings.ContainsAny(s, "<&") {
		return s, nil
	}
	div := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), div)
	if err != nil {
		return "", fmt.Errorf("strip html: %w", err)
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	for _, n := range nodes {
		extractText(n)
		buf.WriteByte(' ')
	}

	return strings.TrimSpace(buf.String()), nil
}

// SplitSteps breaks one instruction text into steps at periods and
// semicolons. A period between digits ("1.5") does not split. Each step is
// trimmed and sentence-cased; empty steps are dropped.
func SplitSteps(text string) []string {
	runes := []rune(text)
	var (
		steps []string
		cur   strings.Builder
	)
	flush := func() {
		if step := sentenceCase(strings.TrimSpace(cur.String())); step != "" {
			steps = append(steps, step)
		}
		cur.Reset()
	}
	for i, r := range runes {
		switch {
		case r == ';':
			flush()
		case r == '.' && !(i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1])):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return steps
}

func sentenceCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
