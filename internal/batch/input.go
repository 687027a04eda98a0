package batch

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadItemsFile loads work items from path. "-" reads standard input.
func ReadItemsFile(path string) ([]Item, error) {
	if path == "-" {
		return ReadItems(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	items, err := ReadItems(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return items, nil
}

// ReadItems loads work items from a JSON array, JSON Lines, or plain
// URL-per-line input. The format is chosen by the first non-space byte:
// '[' reads one array, '{' or '"' reads a JSON document per line, anything
// else treats each non-empty line as a URL.
func ReadItems(r io.Reader) ([]Item, error) {
	br := bufio.NewReader(r)

	first, err := firstNonSpace(br)
	if errors.Is(err, io.EOF) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, err
	}

	switch first {
	case '[':
		return readArray(br)
	case '{', '"':
		return readLines(br, true)
	default:
		return readLines(br, false)
	}
}

// firstNonSpace peeks past leading whitespace without consuming anything
func firstNonSpace(br *bufio.Reader) (byte, error) {
	for skip := 0; ; skip++ {
		peeked, err := br.Peek(skip + 1)
		if err != nil {
			return 0, err
		}
		switch c := peeked[skip]; c {
		case ' ', '\t', '\r', '\n':
		default:
			return c, nil
		}
	}
}

func readArray(r io.Reader) ([]Item, error) {
	var raw []any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	items := make([]Item, 0, len(raw))
	for i, element := range raw {
		item, err := asItem(element)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func readLines(br *bufio.Reader, asJSON bool) ([]Item, error) {
	items := make([]Item, 0)
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !asJSON {
			items = append(items, Item{"url": line})
			continue
		}

		var element any
		if err := json.Unmarshal([]byte(line), &element); err != nil {
			return nil, fmt.Errorf("line %d: invalid JSON: %w", lineNo, err)
		}
		item, err := asItem(element)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// asItem accepts an object as-is and promotes a bare URL string to an item
func asItem(element any) (Item, error) {
	switch v := element.(type) {
	case map[string]any:
		return Item(v), nil
	case string:
		return Item{"url": v}, nil
	default:
		return nil, fmt.Errorf("expected an object or URL string, got %T", element)
	}
}
