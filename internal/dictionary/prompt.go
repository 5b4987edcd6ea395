// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// SystemPrompt frames every definition request.
const SystemPrompt = "You are a precise and educational lexicographer writing dictionary entries " +
	"for a reading and literacy corpus. Write only the dictionary entry content — " +
	"no meta commentary, no markdown formatting. Output plain prose."

var entryPromptTmpl = template.Must(template.New("entry").Parse(
	`Write a clear, concise dictionary definition for the word "{{.Word}}". ` +
		`Include: the part of speech, a plain-English definition (1–3 sentences), ` +
		`and one example sentence. Do not include the word "{{.Word}}:" as a header — ` +
		`start directly with the part of speech label (e.g. 'noun.', 'verb.', etc.).`))

// Prompt renders the definition request for word.
func Prompt(word string) (string, error) {
	var buf bytes.Buffer
	if err := entryPromptTmpl.Execute(&buf, struct{ Word string }{Word: word}); err != nil {
		return "", fmt.Errorf("rendering prompt for %q: %w", word, err)
	}
	return buf.String(), nil
}

// Header is the first line of every entry file.
func Header(word string) string {
	return fmt.Sprintf("Dictionary entry for \"%s\".\n", Capitalize(word))
}

// Capitalize upper-cases the first letter of word and lower-cases the rest.
func Capitalize(word string) string {
	if word == "" {
		return word
	}
	r := []rune(strings.ToLower(word))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
