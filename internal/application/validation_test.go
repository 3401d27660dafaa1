package application

import (
	"errors"
	"strings"
	"testing"

	"datasplit/internal/domain"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "wnid",
			value:     "n07840804",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "wnid",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "dataRoot",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateRequired_ReadableMessage(t *testing.T) {
	err := ValidateRequired("wnid", "")
	if err == nil || !strings.Contains(err.Error(), "concept id is required") {
		t.Errorf("expected readable field name, got %v", err)
	}
}

func TestValidateConcept(t *testing.T) {
	tests := []struct {
		name    string
		concept string
		wantErr bool
	}{
		{name: "wordnet id", concept: "n07840804", wantErr: false},
		{name: "empty", concept: "", wantErr: true},
		{name: "path traversal", concept: "..", wantErr: true},
		{name: "nested", concept: "n0/n1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConcept("wnid", tt.concept)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConcept(%q) error = %v, wantErr %v", tt.concept, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSplitRatios(t *testing.T) {
	tests := []struct {
		name      string
		ratios    domain.SplitRatios
		wantField string
	}{
		{
			name:   "defaults",
			ratios: domain.DefaultSplitRatios(),
		},
		{
			name: "zero train to test",
			ratios: domain.SplitRatios{
				TrainToTest:             domain.IntRatio(0),
				NegativeToPositiveTrain: domain.IntRatio(1),
				NegativeToPositiveTest:  domain.IntRatio(1),
			},
			wantField: "train_to_test_ratio",
		},
		{
			name: "zero test negatives",
			ratios: domain.SplitRatios{
				TrainToTest:             domain.IntRatio(1),
				NegativeToPositiveTrain: domain.IntRatio(1),
			},
			wantField: "negative_to_positive_test_ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplitRatios(tt.ratios)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var valErr *ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, valErr.Field)
			}
		})
	}
}
