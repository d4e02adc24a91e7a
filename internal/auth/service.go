package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentboard/backend/internal/models"
	"github.com/talentboard/backend/internal/services"
)

var (
	// ErrDuplicateEmail is returned when registering with an email that
	// already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidRole is returned for roles outside the registerable set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidCredentials is returned on login failure; it does not
	// distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the account repository interface for auth.
type UserStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Service interface {
	Register(ctx context.Context, email, password, fullName string, phone *string, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	ValidateToken(ctx context.Context, token string) (uuid.UUID, string, error)
}

type service struct {
	pool     services.TxBeginner
	users    UserStore
	engine   *services.CreditEngine
	settings services.SettingsSource
	secret   []byte
}

func NewService(pool services.TxBeginner, users UserStore, engine *services.CreditEngine, settings services.SettingsSource) *service {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "supersecretdev"
	}
	return &service{pool: pool, users: users, engine: engine, settings: settings, secret: []byte(secret)}
}

var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Register creates the account and credits its role's signup bonus in one
// transaction, so a new user's ledger reconciles from the first entry.
func (s *service) Register(ctx context.Context, email, password, fullName string, phone *string, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	bonus := settings.SignupBonus(role)

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Phone:        phone,
		FullName:     fullName,
		Role:         role,
		PasswordHash: string(hash),
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.users.CreateTx(ctx, tx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	if bonus > 0 {
		entry, err := s.engine.Add(ctx, tx, services.Delta{
			UserID:      user.ID,
			Amount:      bonus,
			Type:        models.TxTypeBonus,
			Category:    models.CategorySignupBonus,
			Description: "Signup bonus",
		})
		if err != nil {
			return nil, err
		}
		user.CreditsFree = entry.BalanceFree
		user.CreditsPaid = entry.BalancePaid
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *service) issueToken(userID uuid.UUID, role string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}

func (s *service) ValidateToken(_ context.Context, token string) (uuid.UUID, string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return uuid.Nil, "", errors.New("invalid token")
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, c.Role, nil
}
