package seed

import (
	"context"
	"database/sql"
	"fmt"

	"campus-marketplace/internal/shared/database/dbgen"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userSeed struct {
	Email    string
	Name     string
	Password string
	Role     string
}

var users = []userSeed{
	{Email: "seller.one@campus.test", Name: "Seller One", Password: "seller23#", Role: "SELLER"},
	{Email: "student.one@campus.test", Name: "Student One", Password: "student23#", Role: "CUSTOMER"},
	{Email: "student.two@campus.test", Name: "Student Two", Password: "student23#", Role: "CUSTOMER"},
}

// SeedUsers upserts the demo accounts by email and returns them.
func SeedUsers(ctx context.Context, db *sql.DB, logger *zap.Logger) ([]dbgen.User, error) {
	q := dbgen.New(db)

	out := make([]dbgen.User, 0, len(users))
	for _, u := range users {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", u.Email, err)
		}

		row, err := q.CreateUser(ctx, dbgen.CreateUserParams{
			ID:       uuid.New(),
			Email:    u.Email,
			Name:     u.Name,
			Password: string(hashed),
			Role:     u.Role,
		})
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Email, err)
		}

		logger.Info("seeded user", zap.String("email", row.Email), zap.String("id", row.ID.String()))
		out = append(out, row)
	}

	return out, nil
}
