package access

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"taskManager/models"
)

// TaskPatch is a partial update over the mutable task fields. A nil pointer
// means the field was not part of the request.
type TaskPatch struct {
	Title       *string
	Description *string
	Category    *models.TaskCategory
	Status      *models.TaskStatus
	AssignedTo  *string
	DueDate     *time.Time
	Tags        *[]string
}

// Field names as they appear on the wire.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldStatus      = "status"
	FieldAssignedTo  = "assignedTo"
	FieldDueDate     = "dueDate"
	FieldTags        = "tags"
)

// Fields returns the wire names of the fields present in p, sorted.
func (p TaskPatch) Fields() []string {
	var out []string
	if p.Title != nil {
		out = append(out, FieldTitle)
	}
	if p.Description != nil {
		out = append(out, FieldDescription)
	}
	if p.Category != nil {
		out = append(out, FieldCategory)
	}
	if p.Status != nil {
		out = append(out, FieldStatus)
	}
	if p.AssignedTo != nil {
		out = append(out, FieldAssignedTo)
	}
	if p.DueDate != nil {
		out = append(out, FieldDueDate)
	}
	if p.Tags != nil {
		out = append(out, FieldTags)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of fields present in p.
func (p TaskPatch) Len() int {
	return len(p.Fields())
}

// DecodeTaskPatch strictly decodes a JSON object into a TaskPatch.
// Unknown keys, nulls and values of the wrong type are rejected with a
// validation rejection, so nothing shapeless reaches the engine.
func DecodeTaskPatch(data []byte) (TaskPatch, error) {
	var p TaskPatch
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return p, Invalid("request body must be a JSON object")
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return p, Invalid("request body must be a JSON object")
	}
	for key, val := range raw {
		if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
			return TaskPatch{}, Invalid("%s must not be null", key)
		}
		var err error
		switch key {
		case FieldTitle:
			p.Title = new(string)
			err = json.Unmarshal(val, p.Title)
		case FieldDescription:
			p.Description = new(string)
			err = json.Unmarshal(val, p.Description)
		case FieldCategory:
			p.Category = new(models.TaskCategory)
			err = json.Unmarshal(val, p.Category)
		case FieldStatus:
			p.Status = new(models.TaskStatus)
			err = json.Unmarshal(val, p.Status)
		case FieldAssignedTo:
			p.AssignedTo = new(string)
			err = json.Unmarshal(val, p.AssignedTo)
		case FieldDueDate:
			p.DueDate = new(time.Time)
			err = json.Unmarshal(val, p.DueDate)
		case FieldTags:
			tags := []string{}
			err = json.Unmarshal(val, &tags)
			p.Tags = &tags
		default:
			return TaskPatch{}, Invalid("unknown field %q", key)
		}
		if err != nil {
			return TaskPatch{}, Invalid("%s has an invalid value", key)
		}
	}
	return p, nil
}
