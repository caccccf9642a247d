package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"healthconnect-api/internal/health"
	"healthconnect-api/internal/report"
	"healthconnect-api/internal/store"
)

var bmrInput health.EnergyInput

var bmrCmd = &cobra.Command{
	Use:   "bmr",
	Short: "Calculate BMR, TDEE and BMI",
	Example: `  healthconnect bmr --gender male --age 30 --weight 70 --height 170 --activity moderate
  healthconnect bmr --gender female --age 45 --weight 62 --height 160 --workout yoga`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := health.Calculate(bmrInput)
		if err != nil {
			return err
		}
		bmi, err := health.BMI(bmrInput.Weight, bmrInput.Height)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "BMR:  %d kcal/day\n", e.BMR)
		fmt.Fprintf(out, "TDEE: %d kcal/day\n", e.TDEE)
		fmt.Fprintf(out, "BMI:  %.1f (%s)\n", bmi, health.BMICategory(bmi))
		return nil
	},
}

var (
	userEmail string
	outDir    string
	outFile   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a user's diary to monthly JSON files (<dir>/<year>/<MM>.json)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.GetUserByEmail(ctx, userEmail)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", userEmail, err)
		}
		files, err := st.ExportArchive(ctx, u.ID, outDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load monthly JSON files back into a user's diary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.GetUserByEmail(ctx, userEmail)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", userEmail, err)
		}
		records, errs := store.ReadArchive(outDir)
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), "skipped:", e)
		}
		n, err := st.ImportArchive(ctx, u.ID, records)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a user's PDF health report",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		u, err := st.GetUserByEmail(ctx, userEmail)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", userEmail, err)
		}
		data, err := report.Collect(ctx, st, u)
		if err != nil {
			return err
		}
		pdf, err := report.Render(data, report.Options{})
		if err != nil {
			return err
		}
		if err := os.WriteFile(outFile, pdf, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outFile, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outFile, len(pdf))
		return nil
	},
}

func init() {
	f := bmrCmd.Flags()
	f.StringVar(&bmrInput.Gender, "gender", "", "male, female or other")
	f.IntVar(&bmrInput.Age, "age", 0, "age in years")
	f.Float64Var(&bmrInput.Weight, "weight", 0, "weight in kg")
	f.Float64Var(&bmrInput.Height, "height", 0, "height in cm")
	f.StringVar(&bmrInput.ActivityLevel, "activity", "sedentary", "sedentary, light, moderate, active or very_active")
	f.StringVar(&bmrInput.WorkoutType, "workout", "none", "regular workout type")
	for _, name := range []string{"gender", "age", "weight", "height"} {
		bmrCmd.MarkFlagRequired(name)
	}

	for _, c := range []*cobra.Command{exportCmd, importCmd, reportCmd} {
		c.Flags().StringVar(&userEmail, "email", "", "account email")
		c.MarkFlagRequired("email")
	}
	exportCmd.Flags().StringVar(&outDir, "dir", "data", "archive directory")
	importCmd.Flags().StringVar(&outDir, "dir", "data", "archive directory")
	reportCmd.Flags().StringVar(&outFile, "out", "healthconnect-report.pdf", "output PDF path")
}
