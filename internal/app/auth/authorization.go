// Package auth holds the access rules for groups and resources. The
// predicates are pure; services load the data they need and call them.
package auth

import (
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/config"
)

// Policy is the configurable part of the read rules
type Policy struct {
	GroupRetrieveRequiresAuth bool
	ResourceListRequiresAuth  bool
}

// DefaultPolicy keeps group detail and resource listing public
func DefaultPolicy() Policy {
	return Policy{
		GroupRetrieveRequiresAuth: config.DefaultGroupRetrieveRequiresAuth,
		ResourceListRequiresAuth:  config.DefaultResourceListRequiresAuth,
	}
}

// PolicyFromConfig reads the policy section
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		GroupRetrieveRequiresAuth: cfg.Policy.GroupRetrieveRequiresAuth,
		ResourceListRequiresAuth:  cfg.Policy.ResourceListRequiresAuth,
	}
}

// CanRead reports whether caller may read the group. Reads are open to
// everyone, including anonymous callers (nil). Services do not call it: the
// router enforces read access through Policy and RequireAuthIf, and this
// predicate states the rule those switches default to.
func CanRead(_ *models.StudyGroup, _ *int64) bool {
	return true
}

// CanWrite reports whether caller may update or delete the group
func CanWrite(group *models.StudyGroup, callerID int64) bool {
	return group != nil && group.IsOwner(callerID)
}

// CanPostResource reports whether caller may post into the group. Only
// members can; the owner is always a member.
func CanPostResource(group *models.StudyGroup, callerID int64) bool {
	if group == nil {
		return false
	}
	for _, m := range group.Members {
		if m.ID == callerID {
			return true
		}
	}
	return false
}
