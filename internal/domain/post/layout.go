package post

import "strings"

const (
	internalScheme = "webapp://"
	defaultScheme  = "https://"
)

// ParseLayout parses the authored button layout. Each line is a row, buttons
// in a row are separated by "|" and each button is "label+url". Buttons that
// do not split into exactly two parts are dropped, as are empty rows.
func ParseLayout(text string) Keyboard {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var kb Keyboard
	for _, line := range strings.Split(text, "\n") {
		var row []Button
		for _, field := range strings.Split(line, "|") {
			if b, ok := parseButton(field); ok {
				row = append(row, b)
			}
		}
		if len(row) > 0 {
			kb = append(kb, row)
		}
	}
	return kb
}

func parseButton(field string) (Button, bool) {
	parts := strings.Split(field, "+")
	if len(parts) != 2 {
		return Button{}, false
	}
	label := strings.TrimSpace(parts[0])
	url := strings.TrimSpace(parts[1])

	if rest, ok := strings.CutPrefix(url, internalScheme); ok {
		return Button{Label: label, URL: rest, Internal: true}, true
	}
	if !strings.HasPrefix(url, "http") {
		url = defaultScheme + url
	}
	return Button{Label: label, URL: url}, true
}
