// Package access holds the authenticated principal shape and the one policy
// deciding what each role may see or change.
package access

import (
	"github.com/trezcool/tuitioncenter/core"
)

type Role string

const (
	RoleAnonymous Role = ""
	RoleAdmin     Role = "admin"
	RoleTeacher   Role = "teacher"
	RoleStudent   Role = "student"
)

func (r Role) IsStaff() bool { return r == RoleAdmin || r == RoleTeacher }

// Identity is the normalized claim set every principal is reduced to.
type Identity struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName"`
}

func (id Identity) IsAnonymous() bool { return id.Role == RoleAnonymous }

// Principal is either a staff member or a student user.
type Principal interface {
	Identity() Identity
}

type Resource int

const (
	Subjects Resource = iota
	Students
	Attendance
	Payments
	Teachers
	Summaries
	Profile
	ProfilePicture
)

var resourceNames = [...]string{"subjects", "students", "attendance", "payments", "teachers", "summaries", "profile", "profile picture"}

func (r Resource) String() string { return resourceNames[r] }

type Action int

const (
	Read Action = iota
	Create
	Update
)

// Scope narrows the rows a principal may touch.
// The zero Scope is invalid; Authorize always returns one of the three shapes.
type Scope struct {
	All       bool
	TeacherID int // rows reachable from subjects owned by this teacher
	StudentID int // rows of this student only
}

func Unrestricted() Scope { return Scope{All: true} }

func (s Scope) IsTeacher() bool { return !s.All && s.TeacherID > 0 }
func (s Scope) IsStudent() bool { return !s.All && s.StudentID > 0 }

type rule func(id Identity) Scope

var (
	everything = func(Identity) Scope { return Unrestricted() }
	owned      = func(id Identity) Scope { return Scope{TeacherID: id.ID} }
	self       = func(id Identity) Scope { return Scope{StudentID: id.ID} }

	policy = map[Resource]map[Action]map[Role]rule{
		Subjects: {
			Read:   {RoleAdmin: everything, RoleTeacher: owned, RoleStudent: self},
			Create: {RoleAdmin: everything},
			Update: {RoleAdmin: everything},
		},
		Students: {
			Read:   {RoleAdmin: everything, RoleTeacher: owned},
			Create: {RoleAdmin: everything, RoleAnonymous: everything},
			Update: {RoleAdmin: everything},
		},
		Attendance: {
			Read:   {RoleAdmin: everything, RoleTeacher: owned, RoleStudent: self},
			Create: {RoleAdmin: everything, RoleTeacher: owned},
		},
		Payments: {
			Read:   {RoleAdmin: everything, RoleTeacher: owned, RoleStudent: self},
			Create: {RoleAdmin: everything, RoleStudent: self, RoleAnonymous: everything},
			Update: {RoleAdmin: everything},
		},
		Teachers: {
			Read:   {RoleAdmin: everything},
			Update: {RoleAdmin: everything},
		},
		Summaries: {
			Read: {RoleAdmin: everything, RoleTeacher: owned, RoleStudent: self},
		},
		Profile: {
			Read:   {RoleAdmin: everything, RoleTeacher: everything, RoleStudent: everything},
			Update: {RoleAdmin: everything, RoleTeacher: everything, RoleStudent: everything},
		},
		ProfilePicture: {
			Update: {RoleAdmin: everything, RoleTeacher: everything},
		},
	}
)

// Authorize maps (principal, resource, action) to the query scope the principal is allowed,
// or core.ErrForbidden.
func Authorize(id Identity, res Resource, act Action) (Scope, error) {
	if r, ok := policy[res][act][id.Role]; ok {
		return r(id), nil
	}
	return Scope{}, core.ErrForbidden
}

// Allows is Authorize without the scope.
func Allows(id Identity, res Resource, act Action) bool {
	_, err := Authorize(id, res, act)
	return err == nil
}
