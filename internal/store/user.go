package store

import (
	"database/sql"
	"fmt"

	"github.com/medmole/medmole/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, email, name, password_hash, age, gender, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var age sql.NullInt64
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &age, &u.Gender, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if age.Valid {
		a := int(age.Int64)
		u.Age = &a
	}
	return &u, nil
}

func (s *UserStore) Create(email, name, passwordHash string) (*model.User, error) {
	result, err := s.db.Exec(
		`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`,
		email, name, passwordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateProfile sets the display name and the optional age/gender fields
// consumed by the mental health predictor.
func (s *UserStore) UpdateProfile(id int64, name string, age *int, gender string) (*model.User, error) {
	var ageVal sql.NullInt64
	if age != nil {
		ageVal = sql.NullInt64{Int64: int64(*age), Valid: true}
	}
	_, err := s.db.Exec(
		`UPDATE users SET name = ?, age = ?, gender = ? WHERE id = ?`,
		name, ageVal, gender, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
