package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sudo-init-do/campusgigs/internal/apperr"
	"github.com/sudo-init-do/campusgigs/internal/auth"
	"github.com/sudo-init-do/campusgigs/internal/models"
)

// LoginInput is a sign-in request. Credential, when present, is a Google ID
// token whose claims fill in any blank field.
type LoginInput struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Credential string `json:"credential"`
}

type LoginResult struct {
	User           models.User `json:"user"`
	AllowedDomains []string    `json:"allowedDomains"`
}

// Login signs in a campus address, creating the user on first sight and
// refreshing name and avatar afterwards.
func (m *Marketplace) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if in.Credential != "" {
		id, err := auth.DecodeCredential(in.Credential)
		if err != nil {
			return nil, apperr.BadRequest("Invalid credential.")
		}
		if strings.TrimSpace(in.Email) == "" {
			in.Email = id.Email
		}
		if strings.TrimSpace(in.Name) == "" {
			in.Name = id.Name
		}
		if strings.TrimSpace(in.Image) == "" {
			in.Image = id.Image
		}
	}
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperr.BadRequest("Email is required.")
	}
	if !CanSignIn(email) {
		return nil, apperr.Forbidden("Only BMSCE / BMSCA / BMSCL email IDs are allowed.")
	}
	name := strings.TrimSpace(in.Name)
	image := strings.TrimSpace(in.Image)

	u, err := m.store.UserByEmail(ctx, email)
	switch {
	case isNotFound(err):
		if name == "" {
			name = models.DefaultBuyerName
		}
		u = &models.User{
			ID:        m.newID(),
			Email:     email,
			Name:      name,
			Image:     image,
			IsAdmin:   IsAdmin(email),
			CreatedAt: m.now(),
		}
		if err := m.store.InsertUser(ctx, u); err != nil {
			return nil, internalErr("insert user", err)
		}
		m.events.UserSignedIn(true)
	case err != nil:
		return nil, internalErr("get user", err)
	default:
		changed := false
		if name != "" && name != u.Name {
			u.Name = name
			changed = true
		}
		if image != "" && image != u.Image {
			u.Image = image
			changed = true
		}
		if changed {
			if err := m.store.UpdateUser(ctx, u); err != nil {
				return nil, internalErr("update user", err)
			}
		}
		m.events.UserSignedIn(false)
	}

	domains := append([]string(nil), AllowedDomains...)
	return &LoginResult{User: *u, AllowedDomains: domains}, nil
}

// GetUser returns the user registered under email.
func (m *Marketplace) GetUser(ctx context.Context, email string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperr.BadRequest("Email is required.")
	}
	u, err := m.store.UserByEmail(ctx, email)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found.")
	}
	if err != nil {
		return nil, internalErr("get user", err)
	}
	return u, nil
}

// Field is one optional member of a partial update. Set reports whether the
// caller sent it at all; a nil Value with Set clears the stored value.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Value returns a Field holding v.
func Value[T any](v T) Field[T] { return Field[T]{Set: true, Value: &v} }

// Clear returns a Field that resets the stored value.
func Clear[T any]() Field[T] { return Field[T]{Set: true} }

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// FlexInt decodes from a JSON number or a numeric string. An empty string
// decodes to zero.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected an integer, got %s", data)
	}
	*n = FlexInt(v)
	return nil
}

// ProfilePatch carries the profile fields a caller wants to change.
type ProfilePatch struct {
	PhoneNumber Field[string]  `json:"phoneNumber"`
	USN         Field[string]  `json:"usn"`
	Semester    Field[FlexInt] `json:"semester"`
}

func textField(f Field[string]) *string {
	if f.Value == nil {
		return nil
	}
	v := strings.TrimSpace(*f.Value)
	if v == "" {
		return nil
	}
	return &v
}

// UpdateProfile applies patch to the user's contact fields.
func (m *Marketplace) UpdateProfile(ctx context.Context, email string, patch ProfilePatch) (*models.Profile, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, apperr.BadRequest("Email is required.")
	}

	var semester *int
	if patch.Semester.Set && patch.Semester.Value != nil && *patch.Semester.Value != 0 {
		s := int(*patch.Semester.Value)
		if s < 1 || s > 8 {
			return nil, apperr.BadRequest("Semester must be between 1 and 8.")
		}
		semester = &s
	}

	u, err := m.store.UserByEmail(ctx, email)
	if isNotFound(err) {
		return nil, apperr.NotFound("User not found.")
	}
	if err != nil {
		return nil, internalErr("get user", err)
	}

	if patch.PhoneNumber.Set {
		u.PhoneNumber = textField(patch.PhoneNumber)
	}
	if patch.USN.Set {
		u.USN = textField(patch.USN)
	}
	if patch.Semester.Set {
		u.Semester = semester
	}
	if err := m.store.UpdateUser(ctx, u); err != nil {
		return nil, internalErr("update user", err)
	}
	p := u.Profile()
	return &p, nil
}
