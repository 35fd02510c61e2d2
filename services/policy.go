package services

import "github.com/edulink-ug/edulink/models"

// Principal is the authenticated caller of an operation.
type Principal struct {
	ID   string
	Role models.Role
}

// IsAdmin reports whether p holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Verb names a guarded operation.
type Verb string

const (
	VerbUpdateQuestion Verb = "question:update"
	VerbCloseQuestion  Verb = "question:close"
	VerbDeleteQuestion Verb = "question:delete"
	VerbUpdateAnswer   Verb = "answer:update"
	VerbDeleteAnswer   Verb = "answer:delete"
	VerbAcceptAnswer   Verb = "answer:accept"
	VerbVerifyAnswer   Verb = "answer:verify"
	VerbRejectAnswer   Verb = "answer:reject"
	VerbReviewReports  Verb = "reports:review"
	VerbViewReport     Verb = "report:view"
	VerbManageUsers    Verb = "users:manage"
	VerbManageSession  Verb = "session:manage"
)

// Authorize decides whether p may perform verb on a resource owned by owner.
// It returns nil or ErrForbidden.
func Authorize(p Principal, verb Verb, owner string) error {
	if p.ID == "" {
		return ErrForbidden
	}
	isOwner := owner != "" && p.ID == owner
	var ok bool
	switch verb {
	case VerbUpdateQuestion, VerbUpdateAnswer:
		ok = isOwner
	case VerbCloseQuestion, VerbDeleteQuestion, VerbDeleteAnswer, VerbManageSession, VerbViewReport:
		ok = isOwner || p.IsAdmin()
	case VerbAcceptAnswer:
		// owner is the question author; only they pick the accepted answer.
		ok = isOwner
	case VerbVerifyAnswer:
		ok = p.Role == models.RoleTeacher || p.IsAdmin()
	case VerbRejectAnswer, VerbReviewReports, VerbManageUsers:
		ok = p.IsAdmin()
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
