package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

type Permission string

const (
	PermReportsView    Permission = "reports.view"
	PermReportsManage  Permission = "reports.manage"
	PermReportsMerge   Permission = "reports.merge"
	PermOfficersManage Permission = "officers.manage"
	PermDirectoryEdit  Permission = "directory.edit"
	PermUsersManage    Permission = "users.manage"
	PermAuditView      Permission = "audit.view"
)

type Role struct {
	Name        string
	Permissions []Permission
}

// DefaultRoles is the policy shipped out of the box. Admin gets everything;
// dispatchers work reports but cannot touch accounts.
func DefaultRoles() []Role {
	dispatcher := []Permission{
		PermReportsView, PermReportsManage, PermReportsMerge, PermOfficersManage,
	}
	admin := append([]Permission{
		PermDirectoryEdit, PermUsersManage, PermAuditView,
	}, dispatcher...)
	return []Role{
		{Name: "admin", Permissions: admin},
		{Name: "dispatcher", Permissions: dispatcher},
		{Name: "viewer", Permissions: []Permission{PermReportsView}},
	}
}

const policyModel = `
[request_definition]
r = sub, perm

[policy_definition]
p = sub, perm

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.perm == p.perm
`

// Policy answers role/permission checks. The rule set is fixed at startup.
type Policy struct {
	enforcer *casbin.Enforcer
}

func NewPolicy(roles []Role) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("policy model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("policy enforcer: %w", err)
	}
	for _, r := range roles {
		for _, p := range r.Permissions {
			if _, err := e.AddPolicy(r.Name, string(p)); err != nil {
				return nil, fmt.Errorf("policy rule %s/%s: %w", r.Name, p, err)
			}
		}
	}
	return &Policy{enforcer: e}, nil
}

func MustPolicy(roles []Role) *Policy {
	p, err := NewPolicy(roles)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) Allowed(role string, perm Permission) bool {
	if p == nil || p.enforcer == nil {
		return false
	}
	ok, err := p.enforcer.Enforce(role, string(perm))
	return err == nil && ok
}
