package doctors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"healthconnect-api/internal/ai"
	"healthconnect-api/internal/models"
)

var ErrNoSymptoms = errors.New("symptoms are required")

// SpecialtySuggester maps free-text symptoms to medical specialties. fallback marks a
// default answer given in place of one the model could not produce.
type SpecialtySuggester interface {
	SuggestSpecialties(ctx context.Context, u *models.User, symptoms string) (specialties []string, fallback bool, err error)
}

type Recommendation struct {
	Specialties []string `json:"specialties"`
	Doctors     []Doctor `json:"doctors"`
	Cached      bool     `json:"cached"`
}

// Recommender caches specialty suggestions by normalized symptom text. The cache is shared
// across users, so the tier check runs before every lookup.
type Recommender struct {
	dir       *Directory
	suggester SpecialtySuggester
	cache     *lru.Cache[string, []string]
}

func NewRecommender(dir *Directory, suggester SpecialtySuggester, cacheSize int) (*Recommender, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, []string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create recommendation cache: %w", err)
	}
	return &Recommender{dir: dir, suggester: suggester, cache: cache}, nil
}

func (r *Recommender) Recommend(ctx context.Context, u *models.User, symptoms string, city string) (Recommendation, error) {
	if !ai.Allowed(u.Tier, ai.FeatureSpecialties) {
		return Recommendation{}, ai.ErrFeatureLocked
	}
	key := normalizeSymptoms(symptoms)
	if key == "" {
		return Recommendation{}, ErrNoSymptoms
	}

	specialties, cached := r.cache.Get(key)
	if !cached {
		var (
			fallback bool
			err      error
		)
		specialties, fallback, err = r.suggester.SuggestSpecialties(ctx, u, symptoms)
		if err != nil {
			return Recommendation{}, err
		}
		if !fallback {
			r.cache.Add(key, specialties)
		}
	}

	rec := Recommendation{Specialties: specialties, Doctors: []Doctor{}, Cached: cached}
	seen := map[string]bool{}
	for _, s := range specialties {
		for _, doctor := range r.dir.Search(Query{Specialty: s, City: city}) {
			if !seen[doctor.ID] {
				seen[doctor.ID] = true
				rec.Doctors = append(rec.Doctors, doctor)
			}
		}
	}
	return rec, nil
}

func normalizeSymptoms(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
