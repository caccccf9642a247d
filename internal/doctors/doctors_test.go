package doctors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/models"
)

func loadDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := Load()
	require.NoError(t, err)
	return d
}

func TestLoad(t *testing.T) {
	d := loadDirectory(t)
	assert.Len(t, d.Search(Query{}), 12)
	assert.Contains(t, d.Specialties(), "Cardiology")
	assert.Contains(t, d.Specialties(), "General Practitioner")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("doctors: [unclosed"))
	assert.Error(t, err)

	_, err = Parse([]byte("doctors:\n  - name: No Id\n"))
	assert.ErrorContains(t, err, "id is required")

	_, err = Parse([]byte("doctors:\n  - id: a\n  - id: a\n"))
	assert.ErrorContains(t, err, "duplicate id")
}

func TestGet(t *testing.T) {
	d := loadDirectory(t)

	doc, err := d.Get("doc-002")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Michael Chen", doc.Name)

	_, err = d.Get("doc-999")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestSearch(t *testing.T) {
	d := loadDirectory(t)

	cardio := d.Search(Query{Specialty: "cardio"})
	require.Len(t, cardio, 2)
	assert.Equal(t, "doc-001", cardio[0].ID)
	assert.Equal(t, "doc-008", cardio[1].ID)

	accepting := d.Search(Query{Specialty: "cardiology", AcceptingOnly: true})
	require.Len(t, accepting, 1)
	assert.Equal(t, "doc-001", accepting[0].ID)

	ny := d.Search(Query{City: " new york "})
	require.Len(t, ny, 3)
	assert.Equal(t, []string{"doc-001", "doc-005", "doc-011"}, []string{ny[0].ID, ny[1].ID, ny[2].ID})

	// Equal ratings fall back to name order.
	all := d.Search(Query{})
	assert.Equal(t, []string{"doc-001", "doc-002", "doc-005"}, []string{all[0].ID, all[1].ID, all[2].ID})

	assert.Empty(t, d.Search(Query{Name: "nobody"}))
}

type fakeSuggester struct {
	calls    int
	out      []string
	fallback bool
	err      error
}

func (f *fakeSuggester) SuggestSpecialties(context.Context, *models.User, string) ([]string, bool, error) {
	f.calls++
	return f.out, f.fallback, f.err
}

var liteUser = &models.User{ID: "u1", Tier: models.TierLite}

func TestRecommend(t *testing.T) {
	s := &fakeSuggester{out: []string{"Endocrinology", "Nutrition"}}
	r, err := NewRecommender(loadDirectory(t), s, 8)
	require.NoError(t, err)
	u := liteUser

	rec, err := r.Recommend(context.Background(), u, "Always  THIRSTY and tired", "new york")
	require.NoError(t, err)
	assert.False(t, rec.Cached)
	assert.Equal(t, []string{"Endocrinology", "Nutrition"}, rec.Specialties)
	ids := make([]string, 0, len(rec.Doctors))
	for _, d := range rec.Doctors {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"doc-011", "doc-005"}, ids)

	rec, err = r.Recommend(context.Background(), u, "always thirsty and tired", "")
	require.NoError(t, err)
	assert.True(t, rec.Cached)
	assert.Equal(t, 1, s.calls)
	assert.Len(t, rec.Doctors, 3)
}

func TestRecommend_Errors(t *testing.T) {
	s := &fakeSuggester{err: errors.New("upstream down")}
	r, err := NewRecommender(loadDirectory(t), s, 0)
	require.NoError(t, err)

	_, err = r.Recommend(context.Background(), liteUser, "   ", "")
	assert.ErrorIs(t, err, ErrNoSymptoms)

	_, err = r.Recommend(context.Background(), liteUser, "headache", "")
	assert.EqualError(t, err, "upstream down")

	s.err = nil
	s.out = []string{"Neurology"}
	rec, err := r.Recommend(context.Background(), liteUser, "headache", "")
	require.NoError(t, err)
	assert.False(t, rec.Cached, "failed lookups are not cached")
	assert.Empty(t, rec.Doctors)
}

func TestRecommend_TierCheckedOnCacheHit(t *testing.T) {
	s := &fakeSuggester{out: []string{"Cardiology"}}
	r, err := NewRecommender(loadDirectory(t), s, 8)
	require.NoError(t, err)

	_, err = r.Recommend(context.Background(), liteUser, "chest pain", "")
	require.NoError(t, err)

	free := &models.User{ID: "u2", Tier: models.TierFree}
	_, err = r.Recommend(context.Background(), free, "Chest  PAIN", "")
	assert.ErrorIs(t, err, ai.ErrFeatureLocked)
	assert.Equal(t, 1, s.calls)
}

func TestRecommend_FallbackNotCached(t *testing.T) {
	s := &fakeSuggester{out: []string{ai.DefaultSpecialty}, fallback: true}
	r, err := NewRecommender(loadDirectory(t), s, 8)
	require.NoError(t, err)

	_, err = r.Recommend(context.Background(), liteUser, "feeling off", "")
	require.NoError(t, err)

	s.out, s.fallback = []string{"Endocrinology"}, false
	rec, err := r.Recommend(context.Background(), liteUser, "feeling off", "")
	require.NoError(t, err)
	assert.False(t, rec.Cached)
	assert.Equal(t, []string{"Endocrinology"}, rec.Specialties)
	assert.Equal(t, 2, s.calls)
}
