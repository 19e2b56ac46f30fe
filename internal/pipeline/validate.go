package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"go-analytics-pipeline/internal/apperror"
	"go-analytics-pipeline/internal/blobstore"
	"go-analytics-pipeline/internal/model"
)

// ValidateCatalog checks that every report has a query and a unique name that
// yields a valid artifact key.
func ValidateCatalog(catalog []model.ReportSpec) error {
	if len(catalog) == 0 {
		return apperror.Config("catalog", errors.New("no reports defined"))
	}

	seen := make(map[string]bool, len(catalog))
	for i, spec := range catalog {
		if err := validateReport(spec); err != nil {
			return apperror.Config(fmt.Sprintf("catalog[%d]", i), err)
		}
		if seen[spec.Name] {
			return apperror.Config(fmt.Sprintf("catalog[%d]", i), fmt.Errorf("duplicate report %q", spec.Name))
		}
		seen[spec.Name] = true
	}
	return nil
}

func validateReport(spec model.ReportSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return errors.New("missing report name")
	}
	if strings.TrimSpace(spec.Query) == "" {
		return fmt.Errorf("report %s has an empty query", spec.Name)
	}
	if err := blobstore.ValidateKey(spec.Key()); err != nil {
		return fmt.Errorf("report %s: %w", spec.Name, err)
	}
	return nil
}
