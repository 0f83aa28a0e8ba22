package store

import (
	"time"

	"taskboard/apierror"
	"taskboard/models"
)

type field struct {
	name  string
	value models.Optional[string]
}

// requireFields fails with the names of fields that are absent, null or empty.
func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if !f.value.HasValue() || f.value.Value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apierror.MissingFields(missing...)
	}
	return nil
}

// requireNonEmpty rejects a field that is present with an empty string.
// Absent and null values are left to the caller.
func requireNonEmpty(name string, value models.Optional[string]) error {
	if value.HasValue() && value.Value == "" {
		return apierror.MissingFields(name)
	}
	return nil
}

var deadlineLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
}

func validateDeadline(value models.Optional[string]) error {
	if !value.HasValue() {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if _, err := time.Parse(layout, value.Value); err == nil {
			return nil
		}
	}
	return apierror.Validation(apierror.CodeInvalidDeadline, "Invalid deadline")
}

func validateStatus(value models.Optional[models.TaskStatus]) error {
	if value.HasValue() && !value.Value.Valid() {
		return apierror.Validation(apierror.CodeInvalidStatus, "Invalid status")
	}
	return nil
}
