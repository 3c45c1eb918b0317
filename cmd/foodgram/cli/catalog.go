package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/foodgram/backend/internal/service"
	"github.com/spf13/cobra"
)

func newLoadIngredientsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-ingredients",
		Short: "Import ingredients from a JSON or CSV file",
		Long: `Import ingredients from a JSON or CSV file.

JSON files hold a list of {"name", "measurement_unit"} objects. CSV files
hold one "name,measurement_unit" row per ingredient. Existing ingredients
are matched by name and get their unit updated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			var items []service.IngredientInput
			if strings.EqualFold(filepath.Ext(path), ".csv") {
				items, err = parseIngredientsCSV(f)
			} else {
				items, err = parseJSON[service.IngredientInput](f)
			}
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}

			created, err := service.NewCatalogService(a.db).UpsertIngredients(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d ingredients (%d new)\n", len(items), created)
			return nil
		},
	}

	cmd.Flags().String("file", "", "JSON or CSV file to import")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newLoadTagsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-tags",
		Short: "Import tags from a JSON file of {name, color, slug} objects",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			items, err := parseJSON[service.TagInput](f)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
			created, err := service.NewCatalogService(a.db).UpsertTags(cmd.Context(), items)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d tags (%d new)\n", len(items), created)
			return nil
		},
	}

	cmd.Flags().String("file", "", "JSON file to import")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func parseJSON[T any](r io.Reader) ([]T, error) {
	var items []T
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// parseIngredientsCSV reads name,unit rows. A leading header row is skipped.
func parseIngredientsCSV(r io.Reader) ([]service.IngredientInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var items []service.IngredientInput
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(rec[0], "name") {
			continue
		}
		items = append(items, service.IngredientInput{
			Name:            strings.TrimSpace(rec[0]),
			MeasurementUnit: strings.TrimSpace(rec[1]),
		})
	}
}
