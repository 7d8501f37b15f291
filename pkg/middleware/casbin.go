package middleware

import (
	"fmt"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Permission names an action guarded by role.
type Permission string

const PermManageJobs Permission = "jobs:manage"

// DefaultPermissions maps each permission to the roles that hold it.
var DefaultPermissions = map[Permission][]auth.Role{
	PermManageJobs: {auth.RoleRecruiter},
}

const roleGateModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

// RoleGate admits a verified identity when its role holds the permission.
// The enforcer is read-only after construction.
type RoleGate struct {
	enforcer *casbin.Enforcer
	log      *zap.Logger
}

func NewRoleGate(log *zap.Logger) (*RoleGate, error) {
	return NewRoleGateWithPermissions(DefaultPermissions, log)
}

func NewRoleGateWithPermissions(perms map[Permission][]auth.Role, log *zap.Logger) (*RoleGate, error) {
	m, err := model.NewModelFromString(roleGateModel)
	if err != nil {
		return nil, fmt.Errorf("load role gate model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	for perm, roles := range perms {
		for _, role := range roles {
			if _, err := enforcer.AddPolicy(string(role), string(perm)); err != nil {
				return nil, fmt.Errorf("add policy %s/%s: %w", role, perm, err)
			}
		}
	}
	return &RoleGate{enforcer: enforcer, log: log}, nil
}

// Allows reports whether role holds perm.
func (g *RoleGate) Allows(role auth.Role, perm Permission) (bool, error) {
	return g.enforcer.Enforce(string(role), string(perm))
}

// Require must run after RequireSession.
func (g *RoleGate) Require(perm Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, err := auth.AccountFrom(c)
			if err != nil {
				return err
			}
			allowed, err := g.Allows(account.Role, perm)
			if err != nil {
				return apperr.Wrap(apperr.ErrInternal, "Server error", err)
			}
			if !allowed {
				g.log.Debug("role gate denied",
					zap.String("account", account.ID.Hex()),
					zap.String("role", string(account.Role)),
					zap.String("permission", string(perm)),
				)
				return apperr.Forbidden("You do not have permission to perform this action")
			}
			return next(c)
		}
	}
}
