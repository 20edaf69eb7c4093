// Package questions fetches quiz questions by integer id from a question
// store. Ids are formatted into a lookup key and matched as a key prefix.
package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultKeyTemplate formats a question id into the store's lookup key.
const DefaultKeyTemplate = "LoLju0t00s%d"

// ErrStoreUnavailable is returned when the question store cannot be reached
// or the query fails. An empty result is not an error.
var ErrStoreUnavailable = errors.New("question store unavailable")

// Record is an immutable question snapshot.
type Record struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Answer      string `json:"answer" yaml:"answer"`
}

// NoQuestion is returned when no question matches the lookup key.
var NoQuestion = Record{
	Title:       "No question available",
	Description: "Please try again later",
	Answer:      "",
}

// Available reports whether r is a real question rather than NoQuestion.
func (r Record) Available() bool {
	return r != NoQuestion
}

// Store fetches one question for an id. Implementations return NoQuestion
// with a nil error when nothing matches.
type Store interface {
	Fetch(ctx context.Context, questionID int) (Record, error)
}

// LookupKey formats id into template. An empty template uses
// DefaultKeyTemplate.
func LookupKey(template string, id int) string {
	if template == "" {
		template = DefaultKeyTemplate
	}
	return fmt.Sprintf(template, id)
}

// ValidateKeyTemplate rejects templates that do not format exactly one
// integer id, such as a missing or extra verb.
func ValidateKeyTemplate(template string) error {
	if template == "" {
		return nil
	}
	a, b := LookupKey(template, 1), LookupKey(template, 2)
	if strings.Contains(a, "%!") || a == b {
		return fmt.Errorf("key template %q must format the question id once, e.g. %q", template, DefaultKeyTemplate)
	}
	return nil
}
