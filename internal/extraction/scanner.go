package extraction

import (
	"fmt"
	"strings"

	"facebook-extractor/pkg/types"
)

const dataMarker = `"data":{`

// ScanDataBlocks returns every `"data":{...}` object embedded in html, in
// document order, with the marker prefix removed. Braces are counted without
// regard to string literals. A marker whose brace never closes is an error.
func ScanDataBlocks(html string) ([]string, error) {
	var blocks []string
	offset := 0
	for {
		idx := strings.Index(html[offset:], dataMarker)
		if idx < 0 {
			return blocks, nil
		}
		open := offset + idx + len(dataMarker) - 1
		end, err := closingBrace(html, open)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, html[open:end+1])
		offset = end + 1
	}
}

// closingBrace returns the index of the brace matching the one at open.
func closingBrace(html string, open int) (int, error) {
	depth := 0
	for i := open; i < len(html); i++ {
		switch html[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: no closing brace for data block at offset %d", types.ErrMalformedData, open)
}
