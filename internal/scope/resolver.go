// Package scope decides which ledger rows an authenticated identity may see.
package scope

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/digikraal/ledgerview/internal/ledger"
	"github.com/digikraal/ledgerview/pkg/auth"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/logger"
	"gorm.io/gorm"
)

// UserFinder loads the user record behind an identity.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Filters are optional caller-supplied narrowing conditions.
type Filters struct {
	DealCode string
	DateFrom string
	DateTo   string
}

// Scope is the outcome of resolution.
type Scope struct {
	Predicate ledger.Predicate
	// User is the record the predicate was derived from; nil for Admin.
	User        *models.User
	DisplayName string
}

type Resolver struct {
	users UserFinder
	logg  *logger.Logger
}

func NewResolver(users UserFinder, logg *logger.Logger) (*Resolver, error) {
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Resolver{users: users, logg: logg}, nil
}

// Resolve builds the ledger predicate for identity. Admins see every row;
// investors and farmers/partners see rows attributed to their display name.
// Filters are always ANDed onto the role predicate.
func (r *Resolver) Resolve(ctx context.Context, identity auth.Identity, filters Filters) (*Scope, error) {
	var (
		scope *Scope
		err   error
	)

	switch identity.Role {
	case enums.RoleAdmin:
		scope = &Scope{Predicate: ledger.All(), DisplayName: identity.Name}
	case enums.RoleInvestor:
		scope, err = r.ownRows(ctx, identity, ledger.FieldInvestorName)
	case enums.RoleFarmer, enums.RolePartner:
		scope, err = r.ownRows(ctx, identity, ledger.FieldPartnerName)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not view transactions")
	}
	if err != nil {
		return nil, err
	}

	scope.Predicate = applyFilters(scope.Predicate, filters)
	return scope, nil
}

// LoadUser fetches the record for identity, mapping a missing record to
// USER_NOT_FOUND and any other store failure to DEPENDENCY_ERROR.
func (r *Resolver) LoadUser(ctx context.Context, identity auth.Identity) (*models.User, error) {
	user, err := r.users.FindByEmail(ctx, identity.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx = r.logg.WithFields(ctx, map[string]any{
				"user_id":    identity.ID.String(),
				"actor_role": identity.Role.String(),
			})
			r.logg.Warn(ctx, "scope.user_not_found")
			return nil, pkgerrors.Wrap(pkgerrors.CodeUserNotFound, err, "no user record for authenticated identity")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user record")
	}
	return user, nil
}

// DisplayName prefers the stored record name over the session name.
func DisplayName(user *models.User, identity auth.Identity) string {
	if name := strings.TrimSpace(user.DisplayName()); name != "" {
		return name
	}
	return strings.TrimSpace(identity.Name)
}

func (r *Resolver) ownRows(ctx context.Context, identity auth.Identity, field ledger.Field) (*Scope, error) {
	user, err := r.LoadUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	name := DisplayName(user, identity)
	if name == "" {
		// An empty name would match unattributed rows.
		return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, "user record has no display name")
	}
	return &Scope{
		Predicate:   ledger.All().Where(field, name),
		User:        user,
		DisplayName: name,
	}, nil
}

func applyFilters(p ledger.Predicate, filters Filters) ledger.Predicate {
	if code := strings.TrimSpace(filters.DealCode); code != "" {
		p = p.Where(ledger.FieldDealCode, code)
	}
	if filters.DateFrom != "" {
		p = p.SoldAfter(filters.DateFrom)
	}
	if filters.DateTo != "" {
		p = p.SoldBefore(filters.DateTo)
	}
	return p
}
