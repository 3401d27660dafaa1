package application

import (
	"fmt"
	"strings"

	"datasplit/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", formatFieldName(fieldName)),
		}
	}
	return nil
}

// formatFieldName converts field keys to readable words for error messages
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"wnid":                             "concept id",
		"dataRoot":                         "data root",
		"train_to_test_ratio":              "train to test ratio",
		"negative_to_positive_train_ratio": "negative to positive train ratio",
		"negative_to_positive_test_ratio":  "negative to positive test ratio",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}
	return fieldName
}

// ValidateConcept checks that a concept id names a single directory
func ValidateConcept(fieldName, concept string) error {
	if err := ValidateRequired(fieldName, concept); err != nil {
		return err
	}
	if err := domain.ValidateConceptID(concept); err != nil {
		return &ValidationError{Field: fieldName, Message: err.Error()}
	}
	return nil
}

// ValidatePositiveRatio checks that a split ratio is strictly greater than zero
func ValidatePositiveRatio(fieldName string, r domain.Ratio) error {
	if !r.IsPositive() {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be greater than 0, got %s", formatFieldName(fieldName), r),
		}
	}
	return nil
}

// ValidateSplitRatios checks all three ratios of a run
func ValidateSplitRatios(r domain.SplitRatios) error {
	checks := []struct {
		field string
		ratio domain.Ratio
	}{
		{"train_to_test_ratio", r.TrainToTest},
		{"negative_to_positive_train_ratio", r.NegativeToPositiveTrain},
		{"negative_to_positive_test_ratio", r.NegativeToPositiveTest},
	}
	for _, c := range checks {
		if err := ValidatePositiveRatio(c.field, c.ratio); err != nil {
			return err
		}
	}
	return nil
}
