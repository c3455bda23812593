// Package validation checks request payloads against their target schemas.
// Validators are pure: they either return a normalized typed value or a
// field-keyed error report, and never touch storage.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/uschtwill/trackd/internal/types"
)

// FieldErrors maps field names to human-readable problems.
// It implements error so validators can be used in normal error flow.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// colorPattern matches 6-hex-digit color codes like #1A2B3C.
var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// IssueCreate is the normalized issue creation payload.
type IssueCreate struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Priority    types.Priority `json:"priority,omitempty"`
}

// IssuePatch is the normalized partial-update payload. Pointer fields are
// nil when the client omitted them. ClearAssignee reports an explicit
// JSON null for assignedToUserId.
type IssuePatch struct {
	Title            *string
	Description      *string
	Status           *types.Status
	Priority         *types.Priority
	AssignedToUserID *string
	ClearAssignee    bool
}

// Empty reports whether the patch carries no fields at all.
func (p *IssuePatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.AssignedToUserID == nil && !p.ClearAssignee
}

// CommentCreate is the normalized comment creation payload.
type CommentCreate struct {
	Content string `json:"content"`
}

// LabelCreate is the normalized label creation payload. IssueID optionally
// associates the new label with one existing issue.
type LabelCreate struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	IssueID *int64 `json:"issueId,omitempty"`
}

// ParseIssueCreate validates an issue creation body.
func ParseIssueCreate(body []byte) (*IssueCreate, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	out := &IssueCreate{}

	title, ok := stringField(fields, "title", errs)
	switch {
	case !ok:
		// type error already recorded
	case title == nil:
		errs["title"] = "Title is required."
	default:
		out.Title = *title
		checkLength(errs, "title", *title, "Title is required.", types.MaxTitleLen)
	}

	desc, ok := stringField(fields, "description", errs)
	switch {
	case !ok:
	case desc == nil:
		errs["description"] = "Description is required."
	default:
		out.Description = *desc
		checkLength(errs, "description", *desc, "Description is required.", types.MaxDescriptionLen)
	}

	if p, ok := stringField(fields, "priority", errs); ok && p != nil {
		priority := types.Priority(*p)
		if !priority.IsValid() {
			errs["priority"] = "Invalid priority."
		} else {
			out.Priority = priority
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// ParseIssuePatch validates a partial issue update body. All fields are
// optional but, if present, carry the same constraints as creation.
func ParseIssuePatch(body []byte) (*IssuePatch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	out := &IssuePatch{}

	if t, ok := stringField(fields, "title", errs); ok && t != nil {
		checkLength(errs, "title", *t, "Title is required.", types.MaxTitleLen)
		out.Title = t
	}
	if d, ok := stringField(fields, "description", errs); ok && d != nil {
		checkLength(errs, "description", *d, "Description is required.", types.MaxDescriptionLen)
		out.Description = d
	}
	if raw, present := fields["assignedToUserId"]; present {
		if isNull(raw) {
			out.ClearAssignee = true
		} else {
			var id string
			if err := json.Unmarshal(raw, &id); err != nil {
				errs["assignedToUserId"] = "Expected string."
			} else {
				checkLength(errs, "assignedToUserId", id, "AssignedToUserId is required.", types.MaxUserIDLen)
				out.AssignedToUserID = &id
			}
		}
	}
	if s, ok := stringField(fields, "status", errs); ok && s != nil {
		status := types.Status(*s)
		if !status.IsValid() {
			errs["status"] = "Invalid status."
		} else {
			out.Status = &status
		}
	}
	if p, ok := stringField(fields, "priority", errs); ok && p != nil {
		priority := types.Priority(*p)
		if !priority.IsValid() {
			errs["priority"] = "Invalid priority."
		} else {
			out.Priority = &priority
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// ParseCommentCreate validates a comment creation body.
func ParseCommentCreate(body []byte) (*CommentCreate, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	out := &CommentCreate{}

	content, ok := stringField(fields, "content", errs)
	switch {
	case !ok:
	case content == nil:
		errs["content"] = "Comment cannot be empty"
	default:
		out.Content = *content
		checkLength(errs, "content", *content, "Comment cannot be empty", types.MaxContentLen)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// ParseLabelCreate validates a label creation body.
func ParseLabelCreate(body []byte) (*LabelCreate, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	errs := FieldErrors{}
	out := &LabelCreate{}

	name, ok := stringField(fields, "name", errs)
	switch {
	case !ok:
	case name == nil:
		errs["name"] = "Label name is required"
	default:
		out.Name = *name
		checkLength(errs, "name", *name, "Label name is required", types.MaxLabelNameLen)
	}

	color, ok := stringField(fields, "color", errs)
	switch {
	case !ok:
	case color == nil:
		errs["color"] = "Invalid color hex code"
	default:
		out.Color = *color
		if !colorPattern.MatchString(*color) {
			errs["color"] = "Invalid color hex code"
		}
	}

	if raw, present := fields["issueId"]; present && !isNull(raw) {
		var id int64
		if err := json.Unmarshal(raw, &id); err != nil {
			errs["issueId"] = "Expected number."
		} else {
			out.IssueID = &id
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// decodeObject splits a JSON object body into raw fields so validators can
// distinguish omitted fields from explicit nulls.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, FieldErrors{"_body": "Expected a JSON object."}
	}
	return fields, nil
}

// stringField extracts an optional string field. The bool result is false
// when the field was present but not a string (a type error is recorded).
// A nil string with ok=true means the field was absent or null.
func stringField(fields map[string]json.RawMessage, name string, errs FieldErrors) (*string, bool) {
	raw, present := fields[name]
	if !present || isNull(raw) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs[name] = "Expected string."
		return nil, false
	}
	return &s, true
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// checkLength records an error when s is empty or longer than max.
func checkLength(errs FieldErrors, field, s, requiredMsg string, max int) {
	if len(s) == 0 {
		errs[field] = requiredMsg
		return
	}
	if len(s) > max {
		errs[field] = fmt.Sprintf("Must be %d characters or less.", max)
	}
}
