package assets

import (
	"embed"
	"strings"
)

//go:embed help.txt
var FS embed.FS

// Help returns the /help text with placeholders filled from vars
// (keys without braces, e.g. "TZ").
func Help(vars map[string]string) (string, error) {
	b, err := FS.ReadFile("help.txt")
	if err != nil {
		return "", err
	}
	text := string(b)
	for k, v := range vars {
		text = strings.ReplaceAll(text, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(text), nil
}
