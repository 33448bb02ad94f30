package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/stratlink-defense/api/internal/domain"
	pfirestore "github.com/stratlink-defense/api/internal/platform/firestore"
)

const profileCollection = "profiles"

// ProfileRepository persists buyer profiles in Firestore keyed by provider UID.
type ProfileRepository struct {
	base *pfirestore.BaseRepository[profileDocument]
}

// NewProfileRepository constructs a Firestore-backed profile repository.
func NewProfileRepository(provider *pfirestore.Provider) (*ProfileRepository, error) {
	if provider == nil {
		return nil, errors.New("profile repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[profileDocument](provider, profileCollection, nil, nil)
	return &ProfileRepository{base: base}, nil
}

// Upsert stores the profile document under its UID.
func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.Profile) error {
	if r == nil || r.base == nil {
		return errors.New("profile repository not initialised")
	}
	if strings.TrimSpace(profile.UID) == "" {
		return errors.New("profile uid is required")
	}

	now := time.Now().UTC()
	doc := fromDomainProfile(profile, now)
	_, err := r.base.Set(ctx, profile.UID, doc)
	return err
}

// FindByUID loads the profile for a provider UID.
func (r *ProfileRepository) FindByUID(ctx context.Context, uid string) (domain.Profile, error) {
	if r == nil || r.base == nil {
		return domain.Profile{}, errors.New("profile repository not initialised")
	}
	if strings.TrimSpace(uid) == "" {
		return domain.Profile{}, errors.New("profile uid is required")
	}

	doc, err := r.base.Get(ctx, uid)
	if err != nil {
		return domain.Profile{}, err
	}

	profile := toDomainProfile(doc.Data)
	profile.UID = doc.ID
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = doc.CreateTime
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = doc.UpdateTime
	}
	return profile, nil
}

type profileDocument struct {
	UID          string    `firestore:"uid"`
	Email        string    `firestore:"email"`
	DisplayName  string    `firestore:"displayName"`
	Nationality  string    `firestore:"nationality"`
	Organization string    `firestore:"organization"`
	Phone        string    `firestore:"phone"`
	Address      string    `firestore:"address"`
	DateOfBirth  string    `firestore:"dateOfBirth"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func toDomainProfile(doc profileDocument) domain.Profile {
	return domain.Profile{
		UID:          doc.UID,
		Email:        strings.TrimSpace(doc.Email),
		DisplayName:  strings.TrimSpace(doc.DisplayName),
		Nationality:  strings.TrimSpace(doc.Nationality),
		Organization: strings.TrimSpace(doc.Organization),
		Phone:        strings.TrimSpace(doc.Phone),
		Address:      strings.TrimSpace(doc.Address),
		DateOfBirth:  strings.TrimSpace(doc.DateOfBirth),
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func fromDomainProfile(profile domain.Profile, now time.Time) profileDocument {
	doc := profileDocument{
		UID:          strings.TrimSpace(profile.UID),
		Email:        strings.ToLower(strings.TrimSpace(profile.Email)),
		DisplayName:  strings.TrimSpace(profile.DisplayName),
		Nationality:  strings.TrimSpace(profile.Nationality),
		Organization: strings.TrimSpace(profile.Organization),
		Phone:        strings.TrimSpace(profile.Phone),
		Address:      strings.TrimSpace(profile.Address),
		DateOfBirth:  strings.TrimSpace(profile.DateOfBirth),
		CreatedAt:    profile.CreatedAt,
		UpdatedAt:    now,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	return doc
}
