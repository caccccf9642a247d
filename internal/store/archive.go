package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"healthconnect-api/internal/health"
	"healthconnect-api/internal/models"
)

// DayRecord is one day of a user's diary as written to the monthly archive files.
type DayRecord struct {
	Date     string                `json:"date"`
	Meals    []models.MealEntry    `json:"meals"`
	Workouts []models.WorkoutEntry `json:"workouts"`
	Summary  models.DailySummary   `json:"summary"`
}

// DayRecords groups all of a user's entries by date, oldest first.
func (s *Store) DayRecords(ctx context.Context, userID string) ([]DayRecord, error) {
	meals, err := s.ListMeals(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	workouts, err := s.ListWorkouts(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	target := 0
	if bmr, err := s.GetBMR(ctx, userID); err == nil {
		target = bmr.TDEE
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	byDate := make(map[string]*DayRecord)
	get := func(date string) *DayRecord {
		r, ok := byDate[date]
		if !ok {
			r = &DayRecord{Date: date, Meals: []models.MealEntry{}, Workouts: []models.WorkoutEntry{}}
			byDate[date] = r
		}
		return r
	}
	for _, m := range meals {
		r := get(m.Date)
		r.Meals = append(r.Meals, m)
	}
	for _, w := range workouts {
		r := get(w.Date)
		r.Workouts = append(r.Workouts, w)
	}

	out := make([]DayRecord, 0, len(byDate))
	for _, r := range byDate {
		r.Summary = health.Balance(r.Date, target, r.Meals, r.Workouts)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ExportArchive writes dir/<year>/<MM>.json files, one per month with entries, and
// returns the paths written.
func (s *Store) ExportArchive(ctx context.Context, userID, dir string) ([]string, error) {
	records, err := s.DayRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]DayRecord)
	for _, record := range records {
		// Dates are validated on save, so the first seven bytes are always YYYY-MM.
		key := record.Date[:4] + "/" + record.Date[5:7]
		grouped[key] = append(grouped[key], record)
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var written []string
	for _, key := range keys {
		parts := strings.Split(key, "/")
		year, month := parts[0], parts[1]

		data, err := json.MarshalIndent(grouped[key], "", "  ")
		if err != nil {
			return written, fmt.Errorf("encode %s: %w", key, err)
		}
		if err := os.MkdirAll(filepath.Join(dir, year), 0o755); err != nil {
			return written, fmt.Errorf("create %s: %w", year, err)
		}
		path := filepath.Join(dir, year, month+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ReadArchive loads every <year>/<MM>.json file under dir. Unreadable files are skipped
// and reported through the returned error list.
func ReadArchive(dir string) ([]DayRecord, []error) {
	var (
		records []DayRecord
		errs    []error
	)
	years, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{err}
	}
	for _, year := range years {
		if !year.IsDir() {
			continue
		}
		months, err := os.ReadDir(filepath.Join(dir, year.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, month := range months {
			if !strings.HasSuffix(month.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, year.Name(), month.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			var monthRecords []DayRecord
			if err := json.Unmarshal(data, &monthRecords); err != nil {
				errs = append(errs, fmt.Errorf("parse %s: %w", path, err))
				continue
			}
			records = append(records, monthRecords...)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, errs
}

// ImportArchive upserts every entry of the given records for userID and returns the number
// of entries saved.
func (s *Store) ImportArchive(ctx context.Context, userID string, records []DayRecord) (int, error) {
	n := 0
	for _, r := range records {
		for _, m := range r.Meals {
			if _, err := s.SaveMeal(ctx, userID, m); err != nil {
				return n, fmt.Errorf("import meal %s: %w", m.ID, err)
			}
			n++
		}
		for _, w := range r.Workouts {
			if _, err := s.SaveWorkout(ctx, userID, w); err != nil {
				return n, fmt.Errorf("import workout %s: %w", w.ID, err)
			}
			n++
		}
	}
	return n, nil
}
