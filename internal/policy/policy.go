// Package policy is the single home for authorization decisions. Every
// mutating operation in the application and document services calls into it
// before touching state; a denied check is a typed error, never silent
// filtering.
//
// Ownership rule: a STUDENT only touches applications and documents they own.
// Staff rule: COUNSELLOR and ADMIN read anything and review applications;
// only ADMIN performs destructive actions on other users' data.
//
// Reads denied by ownership return not_found so callers cannot probe for the
// existence of other students' applications. Role failures on staff-only
// operations return forbidden; the caller already proved the entity exists is
// not a concern there.
package policy

import (
	id "admitly/pkg/domain"
	dErrors "admitly/pkg/domain-errors"
)

// CanReadApplication authorizes reading an application owned by ownerID.
func CanReadApplication(caller id.Caller, ownerID id.UserID) error {
	if caller.Role.IsStaff() || caller.ID == ownerID {
		return nil
	}
	return dErrors.New(dErrors.CodeNotFound, "application not found")
}

// CanMutateDraft authorizes editing or submitting a draft. Only the owner may
// do either; staff review, they do not edit on a student's behalf.
func CanMutateDraft(caller id.Caller, ownerID id.UserID) error {
	if caller.ID == ownerID {
		return nil
	}
	if caller.Role.IsStaff() {
		return dErrors.New(dErrors.CodeForbidden, "only the applicant may modify this application")
	}
	return dErrors.New(dErrors.CodeNotFound, "application not found")
}

// CanReview authorizes the staff review transition.
func CanReview(caller id.Caller) error {
	if caller.Role.IsStaff() {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "review requires a staff role")
}

// CanDeleteApplication authorizes deleting an application: owner or ADMIN.
func CanDeleteApplication(caller id.Caller, ownerID id.UserID) error {
	if caller.ID == ownerID || caller.Role == id.RoleAdmin {
		return nil
	}
	if caller.Role.IsStaff() {
		return dErrors.New(dErrors.CodeForbidden, "deletion requires the owner or an admin")
	}
	return dErrors.New(dErrors.CodeNotFound, "application not found")
}

// CanManageDocuments authorizes attaching or removing documents under an
// application owned by ownerID. Owner only; staff read documents, they do not
// curate a student's uploads.
func CanManageDocuments(caller id.Caller, ownerID id.UserID) error {
	if caller.ID == ownerID {
		return nil
	}
	if caller.Role.IsStaff() {
		return dErrors.New(dErrors.CodeForbidden, "only the applicant may manage documents")
	}
	return dErrors.New(dErrors.CodeNotFound, "application not found")
}

// CanResolveDownload authorizes issuing a download link for a document under
// an application owned by ownerID: owner or any staff role.
func CanResolveDownload(caller id.Caller, ownerID id.UserID) error {
	if caller.Role.IsStaff() || caller.ID == ownerID {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "not authorized to access this document")
}

// CanListAll authorizes the cross-student application listing.
func CanListAll(caller id.Caller) error {
	if caller.Role.IsStaff() {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "listing all applications requires a staff role")
}
