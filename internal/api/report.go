package api

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/health"
	"healthconnect-api/internal/report"
)

// report serves the PDF health report. The balance section covers ?date= (default today).
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	u := userFrom(ctx)
	if !ai.Allowed(u.Tier, ai.FeatureReport) {
		s.fail(w, r, "report", ai.ErrFeatureLocked)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.now().Format(health.DateLayout)
	}
	summary, err := s.summary(r, date)
	if err != nil {
		s.fail(w, r, "report", err)
		return
	}

	data, err := report.Collect(ctx, s.store, u)
	if err != nil {
		s.fail(w, r, "report", err)
		return
	}
	data.Summary = &summary
	data.GeneratedAt = s.now()

	pdf, err := report.Render(data, report.Options{})
	if err != nil {
		s.fail(w, r, "report", err)
		return
	}
	s.logger.Info("report generated", zap.String("user_id", u.ID), zap.Int("bytes", len(pdf)))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="healthconnect-report-%s.pdf"`, date))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
