package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// Staff manages employees and their PIN login.
type Staff struct {
	store      repository.Store
	log        *slog.Logger
	bcryptCost int
}

func NewStaff(store repository.Store, bcryptCost int, log *slog.Logger) *Staff {
	return &Staff{store: store, log: log, bcryptCost: bcryptCost}
}

// ErrLastAdmin is returned when removing the only remaining admin.
var ErrLastAdmin = fmt.Errorf("cannot remove the last admin: %w", repository.ErrConflict)

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "is required")
	}
	if len(name) > 64 {
		return "", invalid("name", "must be at most 64 characters")
	}
	return name, nil
}

func (s *Staff) newEmployee(name string, role model.Role, pin string) (model.Employee, error) {
	name, err := normalizeName(name)
	if err != nil {
		return model.Employee{}, err
	}
	if !role.Valid() {
		return model.Employee{}, invalid("role", "must be admin or staff")
	}
	if err := utils.ValidatePIN(pin); err != nil {
		return model.Employee{}, invalid("pin", "%s", err.Error())
	}
	hash, err := utils.HashPIN(pin, s.bcryptCost)
	if err != nil {
		return model.Employee{}, fmt.Errorf("hash pin: %w", err)
	}
	return model.Employee{Name: name, Role: role, PinHash: hash, CreatedAt: time.Now().UTC()}, nil
}

// BootstrapAdmin creates the first admin when none exists.  It reports
// whether an employee was created; an existing admin makes it a no-op,
// in which case pin is not inspected.
func (s *Staff) BootstrapAdmin(ctx context.Context, name, pin string) (bool, error) {
	created := false
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		n, err := tx.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		e, err := s.newEmployee(name, model.RoleAdmin, pin)
		if err != nil {
			return err
		}
		if err := tx.InsertEmployee(ctx, &e); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		s.log.Info("admin_bootstrapped", slog.String("name", strings.TrimSpace(name)))
	}
	return created, nil
}

// AddEmployee registers a new employee.  Names are unique.
func (s *Staff) AddEmployee(ctx context.Context, name string, role model.Role, pin string) (model.Employee, error) {
	e, err := s.newEmployee(name, role, pin)
	if err != nil {
		return model.Employee{}, err
	}
	err = inTx(ctx, s.store, func(tx repository.Tx) error {
		if err := tx.InsertEmployee(ctx, &e); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("employee %q exists: %w", e.Name, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return model.Employee{}, err
	}
	s.log.Info("employee_added", slog.Uint64("employee_id", e.ID), slog.String("role", string(e.Role)))
	return e, nil
}

// RemoveEmployee deletes an employee that has no order or payment
// history.  The last admin cannot be removed.
func (s *Staff) RemoveEmployee(ctx context.Context, id uint64) error {
	err := inTx(ctx, s.store, func(tx repository.Tx) error {
		e, err := tx.GetEmployee(ctx, id)
		if err != nil {
			return err
		}
		if e.Role == model.RoleAdmin {
			n, err := tx.CountAdmins(ctx)
			if err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastAdmin
			}
		}
		return tx.DeleteEmployee(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("employee_removed", slog.Uint64("employee_id", id))
	return nil
}

// ListEmployees returns every employee ordered by id.
func (s *Staff) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	var list []model.Employee
	err := inReadTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		list, err = tx.ListEmployees(ctx)
		return err
	})
	return list, err
}

// GetEmployee returns one employee or repository.ErrNotFound.
func (s *Staff) GetEmployee(ctx context.Context, id uint64) (model.Employee, error) {
	var e model.Employee
	err := inReadTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		e, err = tx.GetEmployee(ctx, id)
		return err
	})
	return e, err
}

// Authenticate checks a name and PIN.  An unknown name and a wrong PIN
// both yield repository.ErrNotFound so that names cannot be probed.
func (s *Staff) Authenticate(ctx context.Context, name, pin string) (model.Employee, error) {
	var e model.Employee
	err := inReadTx(ctx, s.store, func(tx repository.Tx) error {
		var err error
		e, err = tx.GetEmployeeByName(ctx, name)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("login_failed", slog.String("reason", "unknown_name"))
		}
		return model.Employee{}, err
	}
	if !utils.VerifyPIN(e.PinHash, pin) {
		s.log.Warn("login_failed", slog.Uint64("employee_id", e.ID), slog.String("reason", "wrong_pin"))
		return model.Employee{}, repository.ErrNotFound
	}
	s.log.Info("login", slog.Uint64("employee_id", e.ID), slog.String("role", string(e.Role)))
	return e, nil
}
