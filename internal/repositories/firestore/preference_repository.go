package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	pfirestore "github.com/stratlink-defense/api/internal/platform/firestore"
)

const preferenceCollection = "preferences"

// PreferenceRepository persists per-user display preferences keyed by UID.
type PreferenceRepository struct {
	base *pfirestore.BaseRepository[preferenceDocument]
}

// NewPreferenceRepository constructs a Firestore-backed preference repository.
func NewPreferenceRepository(provider *pfirestore.Provider) (*PreferenceRepository, error) {
	if provider == nil {
		return nil, errors.New("preference repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[preferenceDocument](provider, preferenceCollection, nil, nil)
	return &PreferenceRepository{base: base}, nil
}

// Save writes the preference document for a UID.
func (r *PreferenceRepository) Save(ctx context.Context, uid string, prefs domain.Preferences) error {
	if r == nil || r.base == nil {
		return errors.New("preference repository not initialised")
	}
	if strings.TrimSpace(uid) == "" {
		return errors.New("preference uid is required")
	}

	doc := preferenceDocument{
		Language:       string(prefs.Language),
		ChineseVariant: string(prefs.Variant),
		Theme:          strings.TrimSpace(prefs.Theme),
		UpdatedAt:      prefs.UpdatedAt,
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now().UTC()
	}

	_, err := r.base.Set(ctx, strings.TrimSpace(uid), doc)
	return err
}

// FindByUID loads the stored preferences for a UID.
func (r *PreferenceRepository) FindByUID(ctx context.Context, uid string) (domain.Preferences, error) {
	if r == nil || r.base == nil {
		return domain.Preferences{}, errors.New("preference repository not initialised")
	}
	if strings.TrimSpace(uid) == "" {
		return domain.Preferences{}, errors.New("preference uid is required")
	}

	doc, err := r.base.Get(ctx, strings.TrimSpace(uid))
	if err != nil {
		return domain.Preferences{}, err
	}

	prefs := domain.Preferences{
		Language:  domain.Language(strings.TrimSpace(doc.Data.Language)),
		Variant:   domain.ChineseVariant(strings.TrimSpace(doc.Data.ChineseVariant)),
		Theme:     strings.TrimSpace(doc.Data.Theme),
		UpdatedAt: doc.Data.UpdatedAt,
	}
	if prefs.UpdatedAt.IsZero() {
		prefs.UpdatedAt = doc.UpdateTime
	}
	return prefs, nil
}

type preferenceDocument struct {
	Language       string    `firestore:"language"`
	ChineseVariant string    `firestore:"chineseVariant"`
	Theme          string    `firestore:"theme"`
	UpdatedAt      time.Time `firestore:"updatedAt"`
}
