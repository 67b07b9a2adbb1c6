package api

import (
	"fmt"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/kpi/internal/core/validate"
)

// Validate checks a task before it is sent to the backend.
func (t TaskCreate) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if t.UserID <= 0 {
		errs = errs.Append("user_id", fmt.Errorf("must be set"))
	}
	if t.ProjectID <= 0 {
		errs = errs.Append("project_id", fmt.Errorf("must be set"))
	}
	if t.Hours <= 0 || t.Hours > 24 {
		errs = errs.Append("hours", fmt.Errorf("must be between 0 and 24, got %g", t.Hours))
	}

	return criterio.ValidateStruct(
		criterio.Run("description", t.Description, validate.Required),
		criterio.Run("date", t.Date, parseDay),
		errs.ToError(),
	)
}

// Validate checks a project before it is sent to the backend.
func (p Project) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if !p.ModuleType.Valid() {
		errs = errs.Append("module_type", fmt.Errorf("unknown module type %q", p.ModuleType))
	}

	return criterio.ValidateStruct(
		criterio.Run("name", p.Name, validate.Required),
		errs.ToError(),
	)
}

// Validate checks a user before it is sent to the backend.
func (u User) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("name", u.Name, validate.Required),
		criterio.Run("email", u.Email, validate.Required),
		criterio.Run("role", u.Role, validate.Required),
	)
}
