package controller

import (
	"fmt"
	"strings"

	"github.com/existflow/dayboard/internal/model"
)

// ExtractLinks returns the http and https URLs in text in order of
// appearance
func ExtractLinks(text string) []string {
	var out []string
	for _, tok := range strings.Fields(text) {
		lower := strings.ToLower(tok)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			out = append(out, tok)
		}
	}
	return out
}

// AppendLink adds url to the end of the task's links
func (c *Controller) AppendLink(id, url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return &model.ValidationError{Field: "links", Reason: "empty link"}
	}
	return c.editLinks(id, func(links []string) ([]string, error) {
		return append(links, url), nil
	})
}

// RemoveLink removes the link at index
func (c *Controller) RemoveLink(id string, index int) error {
	return c.editLinks(id, func(links []string) ([]string, error) {
		if index < 0 || index >= len(links) {
			return nil, &model.ValidationError{Field: "links", Reason: fmt.Sprintf("index %d out of range", index)}
		}
		return append(links[:index], links[index+1:]...), nil
	})
}

// PasteLinks appends every URL found in text as one edit and returns how
// many were added
func (c *Controller) PasteLinks(id, text string) (int, error) {
	found := ExtractLinks(text)
	if len(found) == 0 {
		return 0, nil
	}
	err := c.editLinks(id, func(links []string) ([]string, error) {
		return append(links, found...), nil
	})
	if err != nil {
		return 0, err
	}
	return len(found), nil
}

func (c *Controller) editLinks(id string, fn func([]string) ([]string, error)) error {
	c.mu.Lock()
	cur, ok := c.state.Task(id)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("task %s is not loaded", id)
	}

	links, err := fn(append([]string{}, cur.Links...))
	if err != nil {
		return err
	}
	return c.Edit(id, model.TaskPatch{Links: &links})
}
