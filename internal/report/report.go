// Package report renders a user's health data as a PDF document.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"healthconnect-api/internal/models"
)

type Data struct {
	User        models.User
	Profile     models.HealthData
	BMR         *models.BMRData
	Summary     *models.DailySummary
	Meals       []models.MealEntry
	Workouts    []models.WorkoutEntry
	GeneratedAt time.Time
}

// Options tweak rendering; the zero value is what the API serves.
type Options struct {
	Uncompressed bool
}

const (
	pageMargin = 15.0
	lineHeight = 6.0
)

var brand = [3]int{16, 122, 87}

type section struct {
	title string
	lines []string
}

// Render produces the PDF bytes for d.
func Render(d Data, opts Options) ([]byte, error) {
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCompression(!opts.Uncompressed)
	pdf.SetCreationDate(d.GeneratedAt)
	pdf.SetTitle("HealthConnect Health Report", true)
	pdf.SetAuthor("HealthConnect", true)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	header(pdf, tr, d)

	for _, s := range sections(d) {
		writeSection(pdf, tr, s)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// header draws the logo block, title and generation date.
func header(pdf *fpdf.Fpdf, tr func(string) string, d Data) {
	x, y := pageMargin, pageMargin
	pdf.SetFillColor(brand[0], brand[1], brand[2])
	pdf.RoundedRect(x, y, 18, 18, 3, "1234", "F")
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(x+7.5, y+3.5, 3, 11, "F")
	pdf.Rect(x+3.5, y+7.5, 11, 3, "F")

	pdf.SetXY(x+22, y+1)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(brand[0], brand[1], brand[2])
	pdf.CellFormat(0, 9, "HealthConnect Health Report", "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(90, 90, 90)
	who := d.User.Email
	if d.User.Name != "" {
		who = d.User.Name + " <" + d.User.Email + ">"
	}
	pdf.CellFormat(0, 5, tr(who), "", 2, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Generated "+d.GeneratedAt.Format("January 2, 2006 15:04"), "", 1, "L", false, 0, "")

	pdf.SetY(y + 24)
	pdf.SetDrawColor(brand[0], brand[1], brand[2])
	pdf.SetLineWidth(0.6)
	pdf.Line(pageMargin, pdf.GetY(), 210-pageMargin, pdf.GetY())
	pdf.Ln(4)
}

func writeSection(pdf *fpdf.Fpdf, tr func(string) string, s section) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(brand[0], brand[1], brand[2])
	pdf.CellFormat(0, 8, tr(s.title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	width := 210 - 2*pageMargin - 6
	for _, line := range s.lines {
		pdf.SetX(pageMargin + 2)
		pdf.CellFormat(4, lineHeight, "-", "", 0, "L", false, 0, "")
		pdf.MultiCell(width, lineHeight, tr(line), "", "L", false)
	}
	pdf.Ln(3)
}

func sections(d Data) []section {
	p := d.Profile
	profile := section{title: "Profile"}
	add := func(s *section, format string, args ...any) {
		s.lines = append(s.lines, fmt.Sprintf(format, args...))
	}
	if p.Age != nil {
		add(&profile, "Age: %d years", *p.Age)
	}
	if p.Gender != nil {
		add(&profile, "Gender: %s", *p.Gender)
	}
	if p.Height != nil {
		add(&profile, "Height: %.0f cm", *p.Height)
	}
	if p.Weight != nil {
		add(&profile, "Weight: %.1f kg", *p.Weight)
	}
	if p.BMI != nil {
		add(&profile, "BMI: %.1f (%s)", *p.BMI, p.BMICategory)
	}
	if p.BloodGlucose != nil {
		add(&profile, "Blood glucose: %.0f mg/dL", *p.BloodGlucose)
	}
	if p.ActivityLevel != "" {
		add(&profile, "Activity level: %s", p.ActivityLevel)
	}
	if len(profile.lines) == 0 {
		add(&profile, "No profile data recorded.")
	}
	out := []section{profile}

	if d.BMR != nil {
		energy := section{title: "Energy"}
		add(&energy, "Basal metabolic rate: %d kcal/day", d.BMR.BMR)
		add(&energy, "Total daily energy expenditure: %d kcal/day", d.BMR.TDEE)
		add(&energy, "Activity: %s, workout: %s", d.BMR.ActivityLevel, d.BMR.WorkoutType)
		out = append(out, energy)
	}

	if d.Summary != nil {
		s := d.Summary
		balance := section{title: "Calorie Balance (" + s.Date + ")"}
		add(&balance, "Target: %d kcal", s.TargetCalories)
		add(&balance, "Eaten: %d kcal, burned: %d kcal, net: %d kcal", s.TotalIntakeCalories, s.TotalBurnedCalories, s.NetCalories)
		add(&balance, "Remaining: %d kcal (%s)", s.RemainingCalories, s.Status)
		add(&balance, "Macros: protein %.0f g, carbs %.0f g, fat %.0f g", s.TotalProteinG, s.TotalCarbsG, s.TotalFatG)
		out = append(out, balance)
	}

	meals := section{title: "Meals"}
	for _, m := range d.Meals {
		add(&meals, "%s %s: %s, %d kcal", m.Date, m.MealType, m.Name, m.Calories)
	}
	if len(meals.lines) == 0 {
		add(&meals, "No meals logged.")
	}
	workouts := section{title: "Workouts"}
	for _, w := range d.Workouts {
		add(&workouts, "%s %s: %d min, %d kcal burned (%s)", w.Date, w.Type, w.DurationMinutes, w.CaloriesBurned, w.Intensity)
	}
	if len(workouts.lines) == 0 {
		add(&workouts, "No workouts logged.")
	}
	out = append(out, meals, workouts)

	if len(p.Analysis) > 0 {
		analysis := section{title: "Health Analysis"}
		if p.OverallScore != nil {
			add(&analysis, "Overall score: %d/100", *p.OverallScore)
		}
		for _, a := range p.Analysis {
			add(&analysis, "%s (%d/100): %s", a.Title, a.Score, a.Content)
			if len(a.Recommendations) > 0 {
				add(&analysis, "Recommendations: %s", strings.Join(a.Recommendations, "; "))
			}
		}
		out = append(out, analysis)
	}
	return out
}
