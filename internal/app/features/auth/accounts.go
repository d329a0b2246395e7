// internal/app/features/auth/accounts.go
package auth

import (
	"context"
	"errors"

	adminstore "github.com/Thomas-Sedhom/LMS/internal/app/store/admins"
	instructorstore "github.com/Thomas-Sedhom/LMS/internal/app/store/instructors"
	userstore "github.com/Thomas-Sedhom/LMS/internal/app/store/users"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
)

// identity is the slice of an account the auth flows need.
type identity struct {
	ID           string
	Email        string
	Role         string
	PasswordHash string
}

// accountStore adapts one identity collection to the shared auth flows.
// Registration, login, and password reset run the same way for students,
// instructors, and admins; only the backing store differs.
type accountStore interface {
	emailExists(ctx context.Context, email string) (bool, error)
	createFromStaged(ctx context.Context, reg stagedRegistration) (identity, error)
	byEmail(ctx context.Context, email string) (identity, error)
	updatePassword(ctx context.Context, email, passwordHash string) error
}

// errAccountNotFound and errEmailTaken normalize the per-store sentinels.
var (
	errAccountNotFound = errors.New("account not found")
	errEmailTaken      = errors.New("email already registered")
)

type studentAccounts struct {
	s *userstore.Store
}

func (a studentAccounts) emailExists(ctx context.Context, email string) (bool, error) {
	return a.s.EmailExists(ctx, email)
}

func (a studentAccounts) createFromStaged(ctx context.Context, reg stagedRegistration) (identity, error) {
	u, err := a.s.Create(ctx, models.User{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		PasswordHash: reg.PasswordHash,
		Phone:        reg.Phone,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return identity{}, errEmailTaken
		}
		return identity{}, err
	}
	return identity{ID: u.ID.Hex(), Email: u.Email, Role: u.Role}, nil
}

func (a studentAccounts) byEmail(ctx context.Context, email string) (identity, error) {
	u, err := a.s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return identity{}, errAccountNotFound
		}
		return identity{}, err
	}
	return identity{ID: u.ID.Hex(), Email: u.Email, Role: u.Role, PasswordHash: u.PasswordHash}, nil
}

func (a studentAccounts) updatePassword(ctx context.Context, email, passwordHash string) error {
	err := a.s.UpdatePassword(ctx, email, passwordHash)
	if errors.Is(err, userstore.ErrNotFound) {
		return errAccountNotFound
	}
	return err
}

type instructorAccounts struct {
	s *instructorstore.Store
}

func (a instructorAccounts) emailExists(ctx context.Context, email string) (bool, error) {
	return a.s.EmailExists(ctx, email)
}

func (a instructorAccounts) createFromStaged(ctx context.Context, reg stagedRegistration) (identity, error) {
	i, err := a.s.Create(ctx, models.Instructor{
		FirstName:      reg.FirstName,
		LastName:       reg.LastName,
		Email:          reg.Email,
		PasswordHash:   reg.PasswordHash,
		Phone:          reg.Phone,
		Specialization: reg.Specialization,
		Subject:        reg.Subject,
		Description:    reg.Description,
	})
	if err != nil {
		if errors.Is(err, instructorstore.ErrDuplicateEmail) {
			return identity{}, errEmailTaken
		}
		return identity{}, err
	}
	return identity{ID: i.ID.Hex(), Email: i.Email, Role: i.Role}, nil
}

func (a instructorAccounts) byEmail(ctx context.Context, email string) (identity, error) {
	i, err := a.s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, instructorstore.ErrNotFound) {
			return identity{}, errAccountNotFound
		}
		return identity{}, err
	}
	return identity{ID: i.ID.Hex(), Email: i.Email, Role: i.Role, PasswordHash: i.PasswordHash}, nil
}

func (a instructorAccounts) updatePassword(ctx context.Context, email, passwordHash string) error {
	err := a.s.UpdatePassword(ctx, email, passwordHash)
	if errors.Is(err, instructorstore.ErrNotFound) {
		return errAccountNotFound
	}
	return err
}

type adminAccounts struct {
	s *adminstore.Store
}

func (a adminAccounts) emailExists(ctx context.Context, email string) (bool, error) {
	return a.s.EmailExists(ctx, email)
}

func (a adminAccounts) createFromStaged(ctx context.Context, reg stagedRegistration) (identity, error) {
	ad, err := a.s.Create(ctx, models.Admin{
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Email:        reg.Email,
		PasswordHash: reg.PasswordHash,
		Phone:        reg.Phone,
	})
	if err != nil {
		if errors.Is(err, adminstore.ErrDuplicateEmail) {
			return identity{}, errEmailTaken
		}
		return identity{}, err
	}
	return identity{ID: ad.ID.Hex(), Email: ad.Email, Role: ad.Role}, nil
}

func (a adminAccounts) byEmail(ctx context.Context, email string) (identity, error) {
	ad, err := a.s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, adminstore.ErrNotFound) {
			return identity{}, errAccountNotFound
		}
		return identity{}, err
	}
	return identity{ID: ad.ID.Hex(), Email: ad.Email, Role: ad.Role, PasswordHash: ad.PasswordHash}, nil
}

func (a adminAccounts) updatePassword(ctx context.Context, email, passwordHash string) error {
	err := a.s.UpdatePassword(ctx, email, passwordHash)
	if errors.Is(err, adminstore.ErrNotFound) {
		return errAccountNotFound
	}
	return err
}

func (h *Handler) studentAccounts() accountStore    { return studentAccounts{s: h.Students} }
func (h *Handler) instructorAccounts() accountStore { return instructorAccounts{s: h.Instructors} }
func (h *Handler) adminAccounts() accountStore      { return adminAccounts{s: h.Admins} }
