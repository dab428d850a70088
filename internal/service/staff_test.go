package service

import (
	"errors"
	"testing"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func TestBootstrapAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.staff.BootstrapAdmin(env.ctx, "Other", "9999")
	if err != nil {
		t.Fatalf("BootstrapAdmin: %v", err)
	}
	if created {
		t.Fatal("second bootstrap created an admin")
	}
	list, _ := env.staff.ListEmployees(env.ctx)
	if len(list) != 2 || list[0].Name != "Admin" || list[0].Role != model.RoleAdmin {
		t.Fatalf("employees = %+v", list)
	}
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	e, err := env.staff.Authenticate(env.ctx, "Yuki", "5678")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if e.ID != env.waiter.ID || e.Role != model.RoleStaff {
		t.Fatalf("employee = %+v", e)
	}
	_, err = env.staff.Authenticate(env.ctx, "Yuki", "0000")
	expectErr(t, err, repository.ErrNotFound)
	_, err = env.staff.Authenticate(env.ctx, "Nobody", "5678")
	expectErr(t, err, repository.ErrNotFound)
}

func TestAddEmployeeValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.staff.AddEmployee(env.ctx, "  ", model.RoleStaff, "1234")
	expectValidation(t, err, "name")
	_, err = env.staff.AddEmployee(env.ctx, "Kenji", "chef", "1234")
	expectValidation(t, err, "role")
	_, err = env.staff.AddEmployee(env.ctx, "Kenji", model.RoleStaff, "12")
	expectValidation(t, err, "pin")
	_, err = env.staff.AddEmployee(env.ctx, "Kenji", model.RoleStaff, "12ab")
	expectValidation(t, err, "pin")

	_, err = env.staff.AddEmployee(env.ctx, " Yuki ", model.RoleStaff, "4321")
	expectErr(t, err, repository.ErrConflict)
}

func TestRemoveEmployee(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.staff.Authenticate(env.ctx, "Admin", "1234")

	err := env.staff.RemoveEmployee(env.ctx, admin.ID)
	if !errors.Is(err, ErrLastAdmin) || !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("err = %v, want ErrLastAdmin", err)
	}

	second, err := env.staff.AddEmployee(env.ctx, "Hana", model.RoleAdmin, "2468")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.staff.RemoveEmployee(env.ctx, admin.ID); err != nil {
		t.Fatalf("RemoveEmployee with another admin left: %v", err)
	}
	_, err = env.staff.GetEmployee(env.ctx, admin.ID)
	expectErr(t, err, repository.ErrNotFound)
	expectErr(t, env.staff.RemoveEmployee(env.ctx, second.ID), ErrLastAdmin)
	expectErr(t, env.staff.RemoveEmployee(env.ctx, 4242), repository.ErrNotFound)
}

func TestRemoveEmployeeWithHistory(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.orders.CreateOrder(env.ctx, 1, env.waiter.ID); err != nil {
		t.Fatal(err)
	}
	expectErr(t, env.staff.RemoveEmployee(env.ctx, env.waiter.ID), repository.ErrConflict)
}
