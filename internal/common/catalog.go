package common

import (
	"fmt"
	"os"
	"path/filepath"

	"mutual-aid-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type PackageConfig struct {
	Id            string `yaml:"id"`
	Name          string `yaml:"name"`
	Amount        string `yaml:"amount"`
	ReturnPercent string `yaml:"return_percent"`
	DurationDays  int    `yaml:"duration_days"`
	Active        *bool  `yaml:"active"` // nil means active
}

type PackagesConfig struct {
	Packages []PackageConfig `yaml:"packages"`
}

// LoadPackageCatalog reads and validates the package catalog file.
func LoadPackageCatalog(packagesFile string) ([]models.Package, error) {
	var packagesPath string
	if filepath.IsAbs(packagesFile) {
		packagesPath = packagesFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		packagesPath = filepath.Join(wd, packagesFile)
	}

	data, err := os.ReadFile(packagesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", packagesFile, err)
	}

	var config PackagesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", packagesFile, err)
	}

	packages := make([]models.Package, 0, len(config.Packages))
	for i, entry := range config.Packages {
		if entry.Id == "" {
			return nil, fmt.Errorf("package at index %d missing id", i)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("package at index %d missing name", i)
		}
		if entry.DurationDays <= 0 {
			return nil, fmt.Errorf("package %s: duration_days must be positive, got %d", entry.Id, entry.DurationDays)
		}

		amount, err := decimal.NewFromString(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("package %s: invalid amount %q: %w", entry.Id, entry.Amount, err)
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("package %s: amount must be positive, got %s", entry.Id, entry.Amount)
		}

		returnPercent := decimal.Zero
		if entry.ReturnPercent != "" {
			returnPercent, err = decimal.NewFromString(entry.ReturnPercent)
			if err != nil {
				return nil, fmt.Errorf("package %s: invalid return_percent %q: %w", entry.Id, entry.ReturnPercent, err)
			}
			if returnPercent.IsNegative() {
				return nil, fmt.Errorf("package %s: return_percent cannot be negative", entry.Id)
			}
		}

		active := true
		if entry.Active != nil {
			active = *entry.Active
		}

		packages = append(packages, models.Package{
			Id:            entry.Id,
			Name:          entry.Name,
			Amount:        amount,
			ReturnPercent: returnPercent,
			DurationDays:  entry.DurationDays,
			Active:        active,
		})
	}

	return packages, nil
}
