package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/digikraal/ledgerview/internal/users"
	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db"
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
	"github.com/digikraal/ledgerview/pkg/normalize"
	"github.com/digikraal/ledgerview/pkg/security"
	"gorm.io/gorm"
)

// RegisterService handles account creation, both self-service signup and
// admin provisioning.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
	Provision(ctx context.Context, req ProvisionRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	PasswordConfig  config.PasswordConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	factory := params.UserRepoFactory
	if factory == nil {
		factory = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    factory,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// NewRegisterServiceFromDB wires the service against a database client.
func NewRegisterServiceFromDB(client *db.Client, cfg config.PasswordConfig) (RegisterService, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return NewRegisterService(RegisterServiceParams{
		TxRunner:       client,
		PasswordConfig: cfg,
	})
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	role := req.Role
	if role == "" {
		role = enums.RoleInvestor
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if !role.SelfRegistrable() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot be self-assigned")
	}
	return s.create(ctx, users.CreateUserDTO{
		Email: req.Email,
		Name:  req.Name,
		Role:  role,
	}, req.Password)
}

func (s *registerService) Provision(ctx context.Context, req ProvisionRequest) (*users.UserDTO, error) {
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	capital := req.TotalInvestmentAmount
	if capital != nil {
		trimmed := strings.TrimSpace(*capital)
		if trimmed == "" {
			capital = nil
		} else {
			if normalize.ParseMoney(trimmed).IsNegative() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_investment_amount must not be negative")
			}
			capital = &trimmed
		}
	}
	return s.create(ctx, users.CreateUserDTO{
		Email:                 req.Email,
		Name:                  req.Name,
		Role:                  req.Role,
		TotalInvestmentAmount: capital,
	}, req.Password)
}

func (s *registerService) create(ctx context.Context, dto users.CreateUserDTO, password string) (*users.UserDTO, error) {
	dto.Email = users.NormalizeEmail(dto.Email)
	if dto.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	dto.PasswordHash = passwordHash

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := s.userRepo(tx)

		if _, err := userRepo.FindByEmail(ctx, dto.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
		}

		user, err := userRepo.Create(ctx, dto)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register transaction")
		}
		return nil, err
	}
	return users.FromModel(created), nil
}
