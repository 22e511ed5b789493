package domain

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TaskDraft represents a task to be created from file input.
// Parent can be either a relative index (1-based, within the same file)
// or an absolute task ID written as "#<id>".
// Fields are ordered to minimize memory padding.
type TaskDraft struct {
	DueDate       *time.Time `yaml:"due_date"`
	AssigneeID    *int64     `yaml:"assignee_id"`
	Description   *string    `yaml:"description"`
	Title         string     `yaml:"title"`
	Status        string     `yaml:"status"`
	Priority      string     `yaml:"priority"`
	ParentRef     string     `yaml:"parent"`
	Tags          []string   `yaml:"tags"`
	Collaborators []int64    `yaml:"collaborators"`
}

// ParseTaskDrafts decodes task drafts from YAML. The input is either one
// sequence of drafts or a stream of documents with one draft each.
//
// Format:
//
//	- title: Ship release
//	  priority: high
//	  tags: [release]
//	- title: Write changelog
//	  parent: 1        # relative: the first draft in this file
//	- title: Update docs
//	  parent: "#12"    # absolute: existing task 12 (quoted, # starts a YAML comment)
func ParseTaskDrafts(content []byte) ([]TaskDraft, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var drafts []TaskDraft
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
		if len(node.Content) == 0 {
			continue
		}
		doc := node.Content[0]
		if doc.Kind == yaml.SequenceNode {
			var list []TaskDraft
			if err := doc.Decode(&list); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
			}
			drafts = append(drafts, list...)
			continue
		}
		var draft TaskDraft
		if err := doc.Decode(&draft); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, fmt.Errorf("%w: no tasks found", ErrInvalidDraft)
	}
	for i, d := range drafts {
		if strings.TrimSpace(d.Title) == "" {
			return nil, fmt.Errorf("task %d: %w", i+1, ErrEmptyTitle)
		}
	}
	return drafts, nil
}

// ResolveParentRef resolves a parent reference to a task ID.
// ref can be:
//   - A relative index (1-based) referring to a task earlier in the same file: "1", "2"
//   - An absolute task ID with # prefix: "#123"
//
// createdIDs maps relative index (1-based) to created task ID. A relative
// index that was not created yet is treated as an absolute ID.
func ResolveParentRef(ref string, createdIDs map[int]int64) (*int64, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}

	if rest, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParentRef, ref)
		}
		return &n, nil
	}

	n, err := strconv.Atoi(ref)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidParentRef, ref)
	}
	if id, ok := createdIDs[n]; ok {
		return &id, nil
	}
	id := int64(n)
	return &id, nil
}
