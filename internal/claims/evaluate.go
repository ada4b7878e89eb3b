package claims

// Evaluate decides whether a document satisfies a requirement for the given
// company. It is pure and total: no I/O, never panics, and any missing or
// malformed piece of the document resolves to deny.
//
// An empty requirement (and a bypassing one) always allows: the caller has a
// valid session and asked for nothing more. A role requirement must match the
// document's role exactly and is independent of module grants. Every module
// listed under an action must hold the company id or the wildcard in its
// grant list; a single miss denies.
func Evaluate(req Requirement, doc Document, companyID int64) bool {
	if req.Bypass {
		return true
	}
	if req.Role != "" && doc.Role != req.Role {
		return false
	}
	for action, modules := range req.byAction() {
		for _, module := range modules {
			if !doc.Allows(module, action, companyID) {
				return false
			}
		}
	}
	return true
}
