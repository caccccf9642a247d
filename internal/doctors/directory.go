// Package doctors serves the built-in doctor directory and maps symptoms to it.
package doctors

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed doctors.yaml
var directoryYAML []byte

var ErrDoctorNotFound = errors.New("doctor not found")

type Doctor struct {
	ID                string   `yaml:"id" json:"id"`
	Name              string   `yaml:"name" json:"name"`
	Specialty         string   `yaml:"specialty" json:"specialty"`
	City              string   `yaml:"city" json:"city"`
	Hospital          string   `yaml:"hospital" json:"hospital"`
	Phone             string   `yaml:"phone" json:"phone"`
	Email             string   `yaml:"email" json:"email"`
	Rating            float64  `yaml:"rating" json:"rating"`
	ExperienceYears   int      `yaml:"experience_years" json:"experience_years"`
	AcceptingPatients bool     `yaml:"accepting_patients" json:"accepting_patients"`
	Languages         []string `yaml:"languages" json:"languages"`
}

// Query filters are case-insensitive substring matches; empty fields match everything.
type Query struct {
	Specialty     string
	City          string
	Name          string
	AcceptingOnly bool
}

type Directory struct {
	doctors []Doctor
	byID    map[string]Doctor
}

// Load parses the embedded directory.
func Load() (*Directory, error) {
	return Parse(directoryYAML)
}

func Parse(data []byte) (*Directory, error) {
	var doc struct {
		Doctors []Doctor `yaml:"doctors"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse doctor directory: %w", err)
	}

	d := &Directory{byID: make(map[string]Doctor, len(doc.Doctors))}
	for _, doctor := range doc.Doctors {
		if doctor.ID == "" {
			return nil, fmt.Errorf("doctor %q: id is required", doctor.Name)
		}
		if _, dup := d.byID[doctor.ID]; dup {
			return nil, fmt.Errorf("doctor %s: duplicate id", doctor.ID)
		}
		d.byID[doctor.ID] = doctor
		d.doctors = append(d.doctors, doctor)
	}
	return d, nil
}

func (d *Directory) Get(id string) (Doctor, error) {
	doctor, ok := d.byID[id]
	if !ok {
		return Doctor{}, ErrDoctorNotFound
	}
	return doctor, nil
}

// Search returns matching doctors, best rated first.
func (d *Directory) Search(q Query) []Doctor {
	out := []Doctor{}
	for _, doctor := range d.doctors {
		if q.AcceptingOnly && !doctor.AcceptingPatients {
			continue
		}
		if !containsFold(doctor.Specialty, q.Specialty) ||
			!containsFold(doctor.City, q.City) ||
			!containsFold(doctor.Name, q.Name) {
			continue
		}
		out = append(out, doctor)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Specialties lists the distinct specialties in the directory, sorted.
func (d *Directory) Specialties() []string {
	seen := map[string]bool{}
	var out []string
	for _, doctor := range d.doctors {
		if !seen[doctor.Specialty] {
			seen[doctor.Specialty] = true
			out = append(out, doctor.Specialty)
		}
	}
	sort.Strings(out)
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
